package services

import (
	"errors"
	"fmt"
	"math"
	"time"

	"bookstore/internal/repositories"
)

// ItemRequest is one (book, quantity) pair of a checkout request.
type ItemRequest struct {
	BookID   string `json:"book_id" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
}

// PriceLine is the per-line breakdown of a quote: the original price, the
// applied discount and what the line actually costs.
type PriceLine struct {
	BookID          string  `json:"book_id"`
	Title           string  `json:"title"`
	Quantity        int     `json:"quantity"`
	UnitPrice       float64 `json:"unit_price"`
	Subtotal        float64 `json:"subtotal"`
	DiscountPercent float64 `json:"discount_percent"`
	Savings         float64 `json:"savings"`
	LineTotal       float64 `json:"line_total"`
}

// PriceQuote is the full pricing result for a checkout: per-line breakdown plus
// order-level totals. MemberDiscountID is carried so the order transaction can
// consume the discount atomically with order creation.
type PriceQuote struct {
	Lines                 []PriceLine `json:"lines"`
	TotalAmount           float64     `json:"total_amount"`
	DiscountAmount        float64     `json:"discount_amount"`
	FinalAmount           float64     `json:"final_amount"`
	MemberDiscountID      string      `json:"member_discount_id,omitempty"`
	MemberDiscountPercent float64     `json:"member_discount_percent,omitempty"`
	MemberDiscountAmount  float64     `json:"member_discount_amount,omitempty"`
}

// PricingService computes checkout totals from book prices, book-level
// discounts and the requesting user's member discount.
type PricingService struct {
	bookRepo        repositories.BookRepository
	bookDiscounts   repositories.BookDiscountRepository
	memberDiscounts repositories.MemberDiscountRepository
}

// NewPricingService creates a new PricingService.
func NewPricingService(
	bookRepo repositories.BookRepository,
	bookDiscounts repositories.BookDiscountRepository,
	memberDiscounts repositories.MemberDiscountRepository,
) *PricingService {
	return &PricingService{
		bookRepo:        bookRepo,
		bookDiscounts:   bookDiscounts,
		memberDiscounts: memberDiscounts,
	}
}

// Quote prices a checkout for the given user. Every referenced book must
// exist; a missing book fails the whole quote. The quote itself mutates
// nothing — the member discount is only consumed later, inside the order
// creation transaction.
func (s *PricingService) Quote(userID string, items []ItemRequest) (*PriceQuote, error) {
	now := time.Now()

	quote := &PriceQuote{Lines: make([]PriceLine, 0, len(items))}
	var bookSavings float64

	for _, item := range items {
		book, err := s.bookRepo.GetByID(item.BookID)
		if err != nil {
			return nil, err
		}

		line := PriceLine{
			BookID:    book.ID,
			Title:     book.Title,
			Quantity:  item.Quantity,
			UnitPrice: book.Price,
			Subtotal:  round2(book.Price * float64(item.Quantity)),
		}

		discount, err := s.bookDiscounts.GetEligibleByBookID(book.ID, now)
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("failed to resolve discount for book %s: %w", book.ID, err)
		}
		if discount != nil && discount.EligibleAt(now) {
			line.DiscountPercent = discount.Percent
			line.Savings = round2(line.Subtotal * discount.Percent / 100)
		}
		line.LineTotal = round2(line.Subtotal - line.Savings)

		quote.TotalAmount = round2(quote.TotalAmount + line.Subtotal)
		bookSavings = round2(bookSavings + line.Savings)
		quote.Lines = append(quote.Lines, line)
	}

	// Member discount applies to the post-book-discount subtotal.
	member, err := s.memberDiscounts.GetValidByUserID(userID, now)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to resolve member discount for user %s: %w", userID, err)
	}
	if member != nil && member.ValidAt(now) {
		discounted := round2(quote.TotalAmount - bookSavings)
		quote.MemberDiscountID = member.ID
		quote.MemberDiscountPercent = member.Percent
		quote.MemberDiscountAmount = round2(discounted * member.Percent / 100)
	}

	quote.DiscountAmount = round2(bookSavings + quote.MemberDiscountAmount)
	// Clamp: the final amount never drops below zero.
	if quote.DiscountAmount > quote.TotalAmount {
		quote.DiscountAmount = quote.TotalAmount
	}
	quote.FinalAmount = round2(quote.TotalAmount - quote.DiscountAmount)

	return quote, nil
}

// round2 rounds a money amount to cents.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
