package services

import (
	"log"
	"time"

	"bookstore/internal/repositories"
)

// DiscountService owns discount maintenance that runs outside a checkout.
type DiscountService struct {
	bookDiscounts repositories.BookDiscountRepository
}

// NewDiscountService creates a new DiscountService.
func NewDiscountService(bookDiscounts repositories.BookDiscountRepository) *DiscountService {
	return &DiscountService{
		bookDiscounts: bookDiscounts,
	}
}

// SweepExpiredSales switches off the on-sale flag for book discounts whose
// window has passed. Meant to run on a periodic schedule; pricing ignores
// out-of-window discounts regardless, so the sweep only keeps flags tidy.
func (s *DiscountService) SweepExpiredSales() (int64, error) {
	n, err := s.bookDiscounts.EndExpiredSales(time.Now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Printf("Ended %d expired book sale(s)", n)
	}
	return n, nil
}
