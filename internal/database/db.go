package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"time"

	"github.com/go-sql-driver/mysql"
)

// Options describes the MySQL connection and its pool.
type Options struct {
	User, Password string
	Host, Port     string
	Name           string
	MaxOpen        int           // 0 means 25
	MaxLifetime    time.Duration // 0 means 30m
}

// DSN renders the go-sql-driver DSN.  DATETIME columns scan into time.Time
// in UTC so sale timestamps and sale IDs agree on the date.
func (o Options) DSN() string {
	cfg := mysql.NewConfig()
	cfg.User = o.User
	cfg.Passwd = o.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(o.Host, o.Port)
	cfg.DBName = o.Name
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	// report matched rather than changed rows, so an UPDATE writing the
	// value a row already holds still counts it
	cfg.ClientFoundRows = true
	cfg.Params = map[string]string{"charset": "utf8mb4", "time_zone": "'+00:00'"}
	return cfg.FormatDSN()
}

// Open connects, sizes the pool and pings within ctx.
func Open(ctx context.Context, o Options) (*sql.DB, error) {
	db, err := sql.Open("mysql", o.DSN())
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	maxOpen, lifetime := o.MaxOpen, o.MaxLifetime
	if maxOpen <= 0 {
		maxOpen = 25
	}
	if lifetime <= 0 {
		lifetime = 30 * time.Minute
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxOpen)
	db.SetConnMaxLifetime(lifetime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping mysql %s: %w", net.JoinHostPort(o.Host, o.Port), err)
	}
	return db, nil
}
