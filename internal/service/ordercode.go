package service

import (
	"fmt"
	"math/rand"
)

// OrderCodePrefix is the fixed prefix of every booking order code.
const OrderCodePrefix = "SV"

// NewOrderCode produces "SV" followed by six uniformly random digits.
// Uniqueness is not guaranteed here: the insert's unique constraint is the
// guard, and the creation path regenerates on collision.
func NewOrderCode() string {
	return fmt.Sprintf("%s%d", OrderCodePrefix, 100000+rand.Intn(900000))
}
