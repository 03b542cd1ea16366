package models

import "time"

// InventoryRecord is the authoritative available quantity for one book.
// Quantity must never go negative; every mutation goes through the
// inventory repository's conditional update.
type InventoryRecord struct {
	BookID    string    `json:"book_id" gorm:"primaryKey;type:varchar(36)"`
	Quantity  int       `json:"quantity" validate:"gte=0"`
	UpdatedAt time.Time `json:"updated_at"`
}
