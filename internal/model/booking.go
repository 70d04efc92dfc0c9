package model

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Booking statuses. A booking starts as pending; admins may overwrite the
// status with any other value (no transition table is enforced).
const (
	BookingPending  = "pending"
	BookingReserved = "reserved"
	BookingSold     = "sold"
	BookingCanceled = "canceled"
)

type Booking struct {
	ID          int64           `db:"id" json:"-"`
	OrderCode   string          `db:"order_code" json:"order_code"`
	ListingCode int             `db:"listing_code" json:"listing_code"`
	FullName    string          `db:"full_name" json:"full_name"`
	Phone       string          `db:"phone" json:"phone"`
	DownPayment decimal.Decimal `db:"down_payment" json:"down_payment"`
	Months      int             `db:"months" json:"months"`
	Monthly     decimal.Decimal `db:"monthly" json:"monthly"`
	Total       decimal.Decimal `db:"total" json:"total"`
	Status      string          `db:"status" json:"status"`
	RequesterID sql.NullInt64   `db:"requester_id" json:"-"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// ValidBookingStatus reports whether s is one of the recognised statuses.
func ValidBookingStatus(s string) bool {
	switch s {
	case BookingPending, BookingReserved, BookingSold, BookingCanceled:
		return true
	}
	return false
}
