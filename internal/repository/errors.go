// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// services and handlers to distinguish between different failure
// scenarios without inspecting driver errors.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when the addressed row does not exist.  Handlers
// should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned by AccountRepo.Create for a duplicate email.
var ErrEmailExists = errors.New("email already exists")

// ErrConflict is returned when an insert or update collides with an
// existing row, such as registering a plate twice.  Handlers should
// translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrPriceNotFound is returned when no unit price exists for a fuel type.
var ErrPriceNotFound = errors.New("harga BBM tidak ditemukan")

// ErrQuotaExceeded is returned when a purchase would take more liters than
// the recipient has left and quota enforcement is on.
var ErrQuotaExceeded = errors.New("kuota tidak mencukupi")

// isDuplicate reports whether err is a MySQL duplicate-key error (1062).
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	return err != nil && strings.Contains(err.Error(), "1062")
}
