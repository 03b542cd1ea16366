package repositories

import (
	"time"

	"bookstore/internal/models"
)

// BookDiscountRepository defines data access for per-book discounts.
type BookDiscountRepository interface {
	Create(discount *models.BookDiscount) error

	// GetEligibleByBookID returns the best discount that applies to the book
	// at the given instant (active, on sale, inside its window), or ErrNotFound.
	GetEligibleByBookID(bookID string, now time.Time) (*models.BookDiscount, error)

	// EndExpiredSales switches off the on-sale flag for every discount whose
	// window has passed. Returns the number of rows changed.
	EndExpiredSales(now time.Time) (int64, error)
}

// MemberDiscountRepository defines data access for user-scoped single-use discounts.
type MemberDiscountRepository interface {
	Create(discount *models.MemberDiscount) error
	GetByID(id string) (*models.MemberDiscount, error)

	// GetValidByUserID returns the user's unused, unexpired discount, or ErrNotFound.
	GetValidByUserID(userID string, now time.Time) (*models.MemberDiscount, error)

	// ConsumeIfUnused marks the discount used by the given order, but only if it
	// is still unused. Returns false when another order already consumed it.
	ConsumeIfUnused(id, orderID string, now time.Time) (bool, error)
}
