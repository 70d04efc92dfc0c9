package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/FanzeeApp/sotvolbackend/internal/apperr"
	"github.com/FanzeeApp/sotvolbackend/internal/model"
	"github.com/FanzeeApp/sotvolbackend/internal/repository"
)

// maxOrderCodeAttempts bounds the collision retry loop on booking insert.
const maxOrderCodeAttempts = 3

type ListingReader interface {
	GetByCode(ctx context.Context, code int) (*model.Listing, error)
}

type BookingStore interface {
	Insert(ctx context.Context, b *model.Booking) error
	GetByOrderCode(ctx context.Context, orderCode string) (*model.Booking, error)
	UpdateStatus(ctx context.Context, orderCode, status string) (int64, error)
}

// BookingNotifier delivers the admin notification for a new booking.
// Failures are logged and swallowed: booking creation never depends on it.
type BookingNotifier interface {
	NotifyBooking(l *model.Listing, b *model.Booking) error
}

// BookingService orchestrates booking creation and admin-driven status
// changes.
type BookingService struct {
	listings ListingReader
	bookings BookingStore
	notifier BookingNotifier
	log      *slog.Logger
}

func NewBookingService(listings ListingReader, bookings BookingStore, notifier BookingNotifier, log *slog.Logger) *BookingService {
	return &BookingService{
		listings: listings,
		bookings: bookings,
		notifier: notifier,
		log:      log,
	}
}

type CreateBookingInput struct {
	ListingCode int
	FullName    string
	Phone       string
	DownPayment decimal.Decimal
	Months      int
	RequesterID int64 // 0 when the caller supplied no verified identity
}

// Create books an available listing. The listing's resolved status is
// checked right before insert; two concurrent calls can both pass the check
// and both land as pending, which is accepted because admin confirmation is
// the real gate.
func (s *BookingService) Create(ctx context.Context, in CreateBookingInput) (*model.Booking, error) {
	if strings.TrimSpace(in.FullName) == "" {
		return nil, apperr.Validation("full_name is required")
	}
	if strings.TrimSpace(in.Phone) == "" {
		return nil, apperr.Validation("phone is required")
	}

	listing, err := s.listings.GetByCode(ctx, in.ListingCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("listing %d not found", in.ListingCode)
		}
		return nil, apperr.Internal("load listing", err)
	}
	if listing.Status != model.ListingAvailable {
		return nil, apperr.Conflict("listing %d is %s", listing.Code, listing.Status)
	}

	plan, err := CalculateInstallment(listing.Price, in.DownPayment, in.Months)
	if err != nil {
		return nil, err
	}

	b := &model.Booking{
		ListingCode: listing.Code,
		FullName:    strings.TrimSpace(in.FullName),
		Phone:       strings.TrimSpace(in.Phone),
		DownPayment: plan.DownPayment,
		Months:      in.Months,
		Monthly:     plan.Monthly,
		Total:       plan.Total,
		Status:      model.BookingPending,
	}
	if in.RequesterID != 0 {
		b.RequesterID = sql.NullInt64{Int64: in.RequesterID, Valid: true}
	}

	insertErr := fmt.Errorf("no attempt made")
	for attempt := 0; attempt < maxOrderCodeAttempts; attempt++ {
		b.OrderCode = NewOrderCode()
		insertErr = s.bookings.Insert(ctx, b)
		if insertErr == nil {
			break
		}
		if !errors.Is(insertErr, repository.ErrDuplicateOrderCode) {
			return nil, apperr.Internal("insert booking", insertErr)
		}
	}
	if insertErr != nil {
		return nil, apperr.Internal("could not create booking", insertErr)
	}

	if s.notifier != nil {
		if nerr := s.notifier.NotifyBooking(listing, b); nerr != nil {
			s.log.Warn("booking notification failed",
				"order_code", b.OrderCode, "err", nerr)
		}
	}
	return b, nil
}

func (s *BookingService) Get(ctx context.Context, orderCode string) (*model.Booking, error) {
	b, err := s.bookings.GetByOrderCode(ctx, orderCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("booking %s not found", orderCode)
		}
		return nil, apperr.Internal("load booking", err)
	}
	return b, nil
}

// UpdateStatus overwrites a booking's status. Any status may move to any
// other; the admin is trusted to apply sensible transitions.
func (s *BookingService) UpdateStatus(ctx context.Context, orderCode, status string) (*model.Booking, error) {
	if !model.ValidBookingStatus(status) {
		return nil, apperr.Validation("unknown status %q", status)
	}

	n, err := s.bookings.UpdateStatus(ctx, orderCode, status)
	if err != nil {
		return nil, apperr.Internal("update booking status", err)
	}
	if n == 0 {
		return nil, apperr.NotFound("booking %s not found", orderCode)
	}
	return s.Get(ctx, orderCode)
}
