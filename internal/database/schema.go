package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema lists the tables in dependency order.  Every statement is
// idempotent so CreateSchema can run on each start.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            CHAR(36)     NOT NULL PRIMARY KEY,
		name          VARCHAR(120) NOT NULL,
		email         VARCHAR(255) NOT NULL,
		password_hash VARCHAR(100) NOT NULL,
		role          ENUM('admin','operator') NOT NULL,
		is_approved   TINYINT(1)   NOT NULL DEFAULT 0,
		created_at    DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		user_id    CHAR(36)    NOT NULL,
		token_hash CHAR(64)    NOT NULL,
		expires_at DATETIME    NOT NULL,
		revoked_at DATETIME    NULL,
		created_at DATETIME    NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_refresh_token_hash (token_hash),
		KEY idx_refresh_user (user_id),
		CONSTRAINT fk_refresh_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS fuel_prices (
		fuel_type  VARCHAR(40)   NOT NULL PRIMARY KEY,
		price      DECIMAL(12,2) NOT NULL,
		updated_at DATETIME      NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS recipients (
		plate           VARCHAR(16)   NOT NULL PRIMARY KEY,
		owner           VARCHAR(120)  NOT NULL,
		daily_quota     DECIMAL(10,2) NOT NULL,
		remaining_quota DECIMAL(10,2) NOT NULL,
		fuel_type       VARCHAR(40)   NOT NULL,
		vehicle_type    VARCHAR(40)   NOT NULL DEFAULT '',
		brand           VARCHAR(60)   NOT NULL DEFAULT '',
		color           VARCHAR(40)   NOT NULL DEFAULT '',
		year            VARCHAR(4)    NOT NULL DEFAULT '',
		CHECK (remaining_quota >= 0)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS sales (
		id        VARCHAR(64)   NOT NULL PRIMARY KEY,
		station   VARCHAR(16)   NOT NULL,
		pump      VARCHAR(40)   NOT NULL,
		plate     VARCHAR(16)   NOT NULL,
		fuel_type VARCHAR(40)   NOT NULL,
		liters    DECIMAL(10,2) NOT NULL,
		nominal   BIGINT        NOT NULL,
		sold_at   DATETIME      NOT NULL,
		KEY idx_sales_sold_at (sold_at),
		KEY idx_sales_plate (plate)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS sale_sequences (
		pump      VARCHAR(40) NOT NULL,
		fuel_type VARCHAR(40) NOT NULL,
		seq       BIGINT UNSIGNED NOT NULL,
		PRIMARY KEY (pump, fuel_type)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// CreateSchema creates all tables that do not exist yet.
func CreateSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}
