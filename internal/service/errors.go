// Package service holds the business rules that sit between HTTP handlers
// and repositories: login and signup, refresh token rotation, and the
// transactional fuel purchase.
package service

import "errors"

// ErrNotRegistered is returned when a plate has no recipient record.
var ErrNotRegistered = errors.New("kendaraan tidak terdaftar")

// Messages shown on the login and signup pages.
const (
	MsgSelectRole       = "Silakan pilih peran Anda terlebih dahulu"
	MsgEmailNotFound    = "Email tidak ditemukan."
	MsgWrongPassword    = "Password salah."
	MsgNotApproved      = "Akun Anda belum disetujui admin."
	MsgNameRequired     = "Nama lengkap harus diisi"
	MsgEmailRequired    = "Email harus diisi"
	MsgPasswordTooShort = "Password minimal 6 karakter"
	MsgPasswordTooLong  = "Password maksimal 72 karakter"
	MsgEmailTaken       = "Email sudah terdaftar. Gunakan email lain."
	MsgSignupSuccess    = "Registrasi berhasil! Tunggu persetujuan admin sebelum dapat login."
)

// LoginError is a rejected login.  Message is safe to show to the user.
type LoginError struct{ Message string }

func (e *LoginError) Error() string { return e.Message }

// ValidationError is rejected input.  Message is safe to show to the user.
type ValidationError struct{ Message string }

func (e *ValidationError) Error() string { return e.Message }
