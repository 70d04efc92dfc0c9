package service

import "github.com/FanzeeApp/sotvolbackend/internal/model"

// ResolveListingStatus derives a listing's availability from its bookings.
// Precedence is fixed: any sold booking makes the listing sold, otherwise
// any reserved booking makes it reserved, otherwise it is available.
//
// This is the only notion of listing availability in the system; the SQL
// read queries compute the same derivation (repository.listingStatusExpr)
// so status can never drift out of sync with the bookings.
func ResolveListingStatus(bookings []model.Booking) string {
	status := model.ListingAvailable
	for _, b := range bookings {
		switch b.Status {
		case model.BookingSold:
			return model.ListingSold
		case model.BookingReserved:
			status = model.ListingReserved
		}
	}
	return status
}
