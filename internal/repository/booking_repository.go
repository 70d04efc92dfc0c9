package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/FanzeeApp/sotvolbackend/internal/model"
)

// ErrDuplicateOrderCode is returned when an insert hits the unique
// constraint on order_code. The caller regenerates the code and retries.
var ErrDuplicateOrderCode = errors.New("duplicate order code")

const pqUniqueViolation = "23505"

type BookingRepository struct {
	DB *sqlx.DB
}

func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{DB: db}
}

func (r *BookingRepository) Insert(ctx context.Context, b *model.Booking) error {
	row := r.DB.QueryRowxContext(ctx, `
        INSERT INTO bookings
            (order_code, listing_code, full_name, phone, down_payment, months,
             monthly, total, status, requester_id)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING id, created_at, updated_at`,
		b.OrderCode, b.ListingCode, b.FullName, b.Phone, b.DownPayment, b.Months,
		b.Monthly, b.Total, b.Status, b.RequesterID,
	)
	if err := row.Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return fmt.Errorf("order code %s: %w", b.OrderCode, ErrDuplicateOrderCode)
		}
		return fmt.Errorf("BookingRepository.Insert: %w", err)
	}
	return nil
}

func (r *BookingRepository) GetByOrderCode(ctx context.Context, orderCode string) (*model.Booking, error) {
	var b model.Booking
	err := r.DB.GetContext(ctx, &b, `SELECT * FROM bookings WHERE order_code = $1`, orderCode)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepository) ListByListing(ctx context.Context, listingCode int) ([]model.Booking, error) {
	var bookings []model.Booking
	err := r.DB.SelectContext(ctx, &bookings, `
        SELECT * FROM bookings WHERE listing_code = $1 ORDER BY created_at DESC`, listingCode)
	if err != nil {
		return nil, fmt.Errorf("BookingRepository.ListByListing: %w", err)
	}
	return bookings, nil
}

// UpdateStatus overwrites the status unconditionally and bumps updated_at.
// Returns the number of rows touched so callers can detect a missing code.
func (r *BookingRepository) UpdateStatus(ctx context.Context, orderCode, status string) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
        UPDATE bookings SET status = $1, updated_at = now() WHERE order_code = $2`,
		status, orderCode)
	if err != nil {
		return 0, fmt.Errorf("BookingRepository.UpdateStatus: %w", err)
	}
	return res.RowsAffected()
}
