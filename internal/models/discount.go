package models

import "time"

// BookDiscount is a time-windowed percentage markdown on one book.
// It applies only while Active (administratively enabled) AND OnSale
// (currently eligible) AND the clock is inside [StartsAt, EndsAt].
type BookDiscount struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	BookID    string    `json:"book_id" gorm:"index;type:varchar(36)"`
	Percent   float64   `json:"percent" validate:"gte=0,lte=100"`
	StartsAt  time.Time `json:"starts_at"`
	EndsAt    time.Time `json:"ends_at"`
	Active    bool      `json:"active"`
	OnSale    bool      `json:"on_sale"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EligibleAt reports whether the discount applies at the given instant.
func (d BookDiscount) EligibleAt(now time.Time) bool {
	return d.Active && d.OnSale && !now.Before(d.StartsAt) && !now.After(d.EndsAt)
}

// MemberDiscount is a single-use, time-limited, user-scoped discount.
// Percent is an opaque policy value attached by whoever grants the discount;
// the order core does not compute tiers. Consumption is recorded by setting
// Used plus the consuming OrderID, at most once.
type MemberDiscount struct {
	ID        string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string     `json:"user_id" gorm:"index;type:varchar(36)"`
	Percent   float64    `json:"percent" validate:"gte=0,lte=100"`
	SingleUse bool       `json:"single_use"`
	Used      bool       `json:"used"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	OrderID   *string    `json:"order_id,omitempty" gorm:"type:varchar(36)"`
	ExpiresAt time.Time  `json:"expires_at"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ValidAt reports whether the discount can still be consumed at the given instant.
func (d MemberDiscount) ValidAt(now time.Time) bool {
	return !d.Used && now.Before(d.ExpiresAt)
}
