package model

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Listing statuses. Never stored: always derived from the listing's
// bookings on read (see service.ResolveListingStatus).
const (
	ListingAvailable = "available"
	ListingReserved  = "reserved"
	ListingSold      = "sold"
)

// Publication modes. An only_channel listing must exist in the channel, so
// a failed publish rolls the creation back; db_channel tolerates it.
const (
	ModeDBChannel   = "db_channel"
	ModeOnlyChannel = "only_channel"
)

type Listing struct {
	ID               int64           `db:"id" json:"-"`
	Code             int             `db:"code" json:"code"`
	Mode             string          `db:"mode" json:"mode"`
	Model            string          `db:"model" json:"model"`
	Name             string          `db:"name" json:"name"`
	Condition        string          `db:"condition" json:"condition"`
	Storage          string          `db:"storage" json:"storage"`
	Color            string          `db:"color" json:"color"`
	Box              string          `db:"box" json:"box"`
	Battery          string          `db:"battery" json:"battery"`
	Warranty         string          `db:"warranty" json:"warranty"`
	Price            decimal.Decimal `db:"price" json:"price"`
	PriceFormatted   string          `db:"price_formatted" json:"price_formatted"`
	Exchange         bool            `db:"exchange" json:"exchange"`
	Rating           int             `db:"rating" json:"rating"`
	Images           pq.StringArray  `db:"images" json:"images"`
	ChannelMessageID sql.NullInt64   `db:"channel_message_id" json:"-"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`

	// Computed by the read query, never written.
	Status string `db:"status" json:"status"`
}
