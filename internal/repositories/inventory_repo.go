package repositories

import "bookstore/internal/models"

// InventoryRepository is the authoritative stock ledger. DecrementIfAvailable
// is the only way stock goes down and must be a conditional atomic update so
// concurrent checkouts can never jointly over-draw a book below zero.
type InventoryRepository interface {
	GetByBookID(bookID string) (*models.InventoryRecord, error)

	// SetQuantity creates or replaces the record for a book (seeding, receiving).
	SetQuantity(bookID string, quantity int) error

	// DecrementIfAvailable subtracts quantity only when enough stock exists.
	// Returns false (and mutates nothing) when stock is insufficient.
	DecrementIfAvailable(bookID string, quantity int) (bool, error)

	// Restore adds quantity back; used only when a pending order is cancelled.
	Restore(bookID string, quantity int) error
}
