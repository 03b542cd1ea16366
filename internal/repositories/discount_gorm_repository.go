package repositories

import (
	"errors"
	"fmt"
	"time"

	"bookstore/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMBookDiscountRepository is a GORM implementation of BookDiscountRepository.
type GORMBookDiscountRepository struct {
	db *gorm.DB
}

// NewGORMBookDiscountRepository creates a new instance of GORMBookDiscountRepository.
func NewGORMBookDiscountRepository(db *gorm.DB) *GORMBookDiscountRepository {
	return &GORMBookDiscountRepository{
		db: db,
	}
}

// Create creates a new book discount in the database.
func (r *GORMBookDiscountRepository) Create(discount *models.BookDiscount) error {
	if discount.ID == "" {
		discount.ID = uuid.New().String()
	}
	if err := r.db.Create(discount).Error; err != nil {
		return fmt.Errorf("failed to create book discount: %w", err)
	}
	return nil
}

// GetEligibleByBookID returns the highest eligible discount for a book.
func (r *GORMBookDiscountRepository) GetEligibleByBookID(bookID string, now time.Time) (*models.BookDiscount, error) {
	var discount models.BookDiscount
	err := r.db.
		Where("book_id = ? AND active = ? AND on_sale = ? AND starts_at <= ? AND ends_at >= ?",
			bookID, true, true, now, now).
		Order("percent DESC").
		First(&discount).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("eligible discount for book %s: %w", bookID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get discount for book %s: %w", bookID, err)
	}
	return &discount, nil
}

// EndExpiredSales clears the on-sale flag on discounts whose window has passed.
func (r *GORMBookDiscountRepository) EndExpiredSales(now time.Time) (int64, error) {
	res := r.db.Model(&models.BookDiscount{}).
		Where("on_sale = ? AND ends_at < ?", true, now).
		Update("on_sale", false)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to end expired sales: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// GORMMemberDiscountRepository is a GORM implementation of MemberDiscountRepository.
type GORMMemberDiscountRepository struct {
	db *gorm.DB
}

// NewGORMMemberDiscountRepository creates a new instance of GORMMemberDiscountRepository.
func NewGORMMemberDiscountRepository(db *gorm.DB) *GORMMemberDiscountRepository {
	return &GORMMemberDiscountRepository{
		db: db,
	}
}

// Create creates a new member discount in the database.
func (r *GORMMemberDiscountRepository) Create(discount *models.MemberDiscount) error {
	if discount.ID == "" {
		discount.ID = uuid.New().String()
	}
	if err := r.db.Create(discount).Error; err != nil {
		return fmt.Errorf("failed to create member discount: %w", err)
	}
	return nil
}

// GetByID retrieves a member discount by its ID.
func (r *GORMMemberDiscountRepository) GetByID(id string) (*models.MemberDiscount, error) {
	var discount models.MemberDiscount
	if err := r.db.First(&discount, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("member discount %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get member discount %s: %w", id, err)
	}
	return &discount, nil
}

// GetValidByUserID returns the user's unused, unexpired discount.
func (r *GORMMemberDiscountRepository) GetValidByUserID(userID string, now time.Time) (*models.MemberDiscount, error) {
	var discount models.MemberDiscount
	err := r.db.
		Where("user_id = ? AND used = ? AND expires_at > ?", userID, false, now).
		Order("percent DESC").
		First(&discount).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("valid member discount for user %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get member discount for user %s: %w", userID, err)
	}
	return &discount, nil
}

// ConsumeIfUnused marks the discount used by the given order. The used guard
// lives in the WHERE clause so at most one order can ever consume it.
func (r *GORMMemberDiscountRepository) ConsumeIfUnused(id, orderID string, now time.Time) (bool, error) {
	res := r.db.Model(&models.MemberDiscount{}).
		Where("id = ? AND used = ?", id, false).
		Updates(map[string]interface{}{
			"used":     true,
			"used_at":  now,
			"order_id": orderID,
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to consume member discount %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	return true, nil
}
