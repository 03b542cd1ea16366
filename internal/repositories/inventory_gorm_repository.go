package repositories

import (
	"errors"
	"fmt"
	"time"

	"bookstore/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMInventoryRepository is a GORM implementation of InventoryRepository.
type GORMInventoryRepository struct {
	db *gorm.DB
}

// NewGORMInventoryRepository creates a new instance of GORMInventoryRepository.
func NewGORMInventoryRepository(db *gorm.DB) *GORMInventoryRepository {
	return &GORMInventoryRepository{
		db: db,
	}
}

// GetByBookID retrieves the inventory record for a book.
func (r *GORMInventoryRepository) GetByBookID(bookID string) (*models.InventoryRecord, error) {
	var rec models.InventoryRecord
	if err := r.db.First(&rec, "book_id = ?", bookID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("inventory for book %s: %w", bookID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get inventory for book %s: %w", bookID, err)
	}
	return &rec, nil
}

// SetQuantity creates or replaces the inventory record for a book.
func (r *GORMInventoryRepository) SetQuantity(bookID string, quantity int) error {
	rec := models.InventoryRecord{BookID: bookID, Quantity: quantity, UpdatedAt: time.Now()}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "book_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"quantity", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("failed to set inventory for book %s: %w", bookID, err)
	}
	return nil
}

// DecrementIfAvailable performs the conditional decrement. The WHERE clause
// carries the stock guard, so two concurrent reservations can never jointly
// push quantity below zero.
func (r *GORMInventoryRepository) DecrementIfAvailable(bookID string, quantity int) (bool, error) {
	res := r.db.Model(&models.InventoryRecord{}).
		Where("book_id = ? AND quantity >= ?", bookID, quantity).
		Updates(map[string]interface{}{
			"quantity":   gorm.Expr("quantity - ?", quantity),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to decrement inventory for book %s: %w", bookID, res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	return true, nil
}

// Restore adds previously reserved quantity back to the ledger.
func (r *GORMInventoryRepository) Restore(bookID string, quantity int) error {
	res := r.db.Model(&models.InventoryRecord{}).
		Where("book_id = ?", bookID).
		Updates(map[string]interface{}{
			"quantity":   gorm.Expr("quantity + ?", quantity),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to restore inventory for book %s: %w", bookID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("inventory for book %s: %w", bookID, ErrNotFound)
	}
	return nil
}
