package database

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
)

func TestDSN(t *testing.T) {
	dsn := Options{User: "spbu", Password: "p@ss", Host: "db", Port: "3306", Name: "pos"}.DSN()
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		t.Fatalf("ParseDSN(%q): %v", dsn, err)
	}
	if cfg.Addr != "db:3306" || cfg.DBName != "pos" || cfg.Passwd != "p@ss" || !cfg.ParseTime {
		t.Errorf("unexpected config %+v", cfg)
	}
	if !cfg.ClientFoundRows {
		t.Error("expected clientFoundRows so unchanged UPDATEs still count their row")
	}
	if cfg.Loc.String() != "UTC" {
		t.Errorf("loc = %v", cfg.Loc)
	}
}

func TestCreateSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	for range schema {
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS|INSERT").WillReturnResult(sqlmock.NewResult(0, 0))
	}
	if err := CreateSchema(context.Background(), db); err != nil {
		t.Fatalf("CreateSchema: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestCreateSchemaStopsOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	mock.ExpectExec("CREATE TABLE").WillReturnError(errors.New("denied"))
	err = CreateSchema(context.Background(), db)
	if err == nil || !strings.Contains(err.Error(), "denied") {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}
