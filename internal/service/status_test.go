package service

import (
	"testing"

	"github.com/FanzeeApp/sotvolbackend/internal/model"
)

func bookingsWith(statuses ...string) []model.Booking {
	out := make([]model.Booking, len(statuses))
	for i, s := range statuses {
		out[i] = model.Booking{Status: s}
	}
	return out
}

func TestResolveListingStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses []string
		want     string
	}{
		{"no bookings", nil, model.ListingAvailable},
		{"only pending", []string{model.BookingPending, model.BookingPending}, model.ListingAvailable},
		{"only canceled", []string{model.BookingCanceled}, model.ListingAvailable},
		{"one reserved", []string{model.BookingPending, model.BookingReserved}, model.ListingReserved},
		{"one sold", []string{model.BookingSold}, model.ListingSold},
		{"sold beats reserved", []string{model.BookingReserved, model.BookingSold}, model.ListingSold},
		{"cancel and resell cycle", []string{model.BookingCanceled, model.BookingReserved, model.BookingSold}, model.ListingSold},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveListingStatus(bookingsWith(tt.statuses...)); got != tt.want {
				t.Fatalf("ResolveListingStatus() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveListingStatus_Idempotent(t *testing.T) {
	bookings := bookingsWith(model.BookingPending, model.BookingReserved, model.BookingCanceled)
	first := ResolveListingStatus(bookings)
	second := ResolveListingStatus(bookings)
	if first != second {
		t.Fatalf("resolver not idempotent: %q then %q", first, second)
	}
	for i, b := range bookings {
		if b.Status != []string{model.BookingPending, model.BookingReserved, model.BookingCanceled}[i] {
			t.Fatalf("resolver mutated its input at %d", i)
		}
	}
}
