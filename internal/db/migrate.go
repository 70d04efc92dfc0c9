package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

const createListingsTableSQL = `
CREATE TABLE IF NOT EXISTS listings (
    id BIGSERIAL PRIMARY KEY,
    code INTEGER NOT NULL UNIQUE,
    mode TEXT NOT NULL DEFAULT 'db_channel',
    model TEXT NOT NULL,
    name TEXT NOT NULL,
    condition TEXT NOT NULL DEFAULT '',
    storage TEXT NOT NULL DEFAULT '',
    color TEXT NOT NULL DEFAULT '',
    box TEXT NOT NULL DEFAULT '',
    battery TEXT NOT NULL DEFAULT '',
    warranty TEXT NOT NULL DEFAULT '',
    price NUMERIC(12,2) NOT NULL,
    price_formatted TEXT NOT NULL DEFAULT '',
    exchange BOOLEAN NOT NULL DEFAULT FALSE,
    rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
    images TEXT[] NOT NULL DEFAULT '{}',
    channel_message_id BIGINT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

const createBookingsTableSQL = `
CREATE TABLE IF NOT EXISTS bookings (
    id BIGSERIAL PRIMARY KEY,
    order_code TEXT NOT NULL UNIQUE,
    listing_code INTEGER NOT NULL REFERENCES listings(code) ON DELETE CASCADE,
    full_name TEXT NOT NULL,
    phone TEXT NOT NULL,
    down_payment NUMERIC(12,2) NOT NULL,
    months INTEGER NOT NULL CHECK (months BETWEEN 2 AND 12),
    monthly NUMERIC(12,2) NOT NULL,
    total NUMERIC(12,2) NOT NULL,
    status TEXT NOT NULL DEFAULT 'pending',
    requester_id BIGINT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

const createAdminsTableSQL = `
CREATE TABLE IF NOT EXISTS admins (
    telegram_id BIGINT PRIMARY KEY,
    username TEXT NOT NULL DEFAULT '',
    added_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

// Migrate bootstraps the schema. All statements are idempotent.
func Migrate(conn *sqlx.DB) error {
	for _, stmt := range []string{
		createListingsTableSQL,
		createBookingsTableSQL,
		createAdminsTableSQL,
	} {
		if _, err := conn.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
