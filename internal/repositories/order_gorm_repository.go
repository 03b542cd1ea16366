package repositories

import (
	"errors"
	"fmt"
	"time"

	"bookstore/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// Create persists the order together with its items and history record.
// GORM cascades the associations, so all rows land in the caller's transaction.
func (r *GORMOrderRepository) Create(order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	for i := range order.Items {
		if order.Items[i].ID == "" {
			order.Items[i].ID = uuid.New().String()
		}
		order.Items[i].OrderID = order.ID
	}
	if order.History.ID == "" {
		order.History.ID = uuid.New().String()
	}
	order.History.OrderID = order.ID
	if err := r.db.Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// GetByID retrieves an order with its items and history.
func (r *GORMOrderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	err := r.db.Preload("Items").Preload("History").First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

// GetAll retrieves all orders, newest first.
func (r *GORMOrderRepository) GetAll() ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Preload("Items").Preload("History").Order("ordered_at DESC").Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get all orders: %w", err)
	}
	return orders, nil
}

// ListByUserIDs retrieves the orders belonging to any of the given users.
func (r *GORMOrderRepository) ListByUserIDs(userIDs []string) ([]models.Order, error) {
	if len(userIDs) == 0 {
		return []models.Order{}, nil
	}
	var orders []models.Order
	err := r.db.Preload("Items").Preload("History").
		Where("user_id IN ?", userIDs).
		Order("ordered_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders by users: %w", err)
	}
	return orders, nil
}

// ClaimCodeInUse reports whether any order already carries the code.
func (r *GORMOrderRepository) ClaimCodeInUse(code string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Order{}).Where("claim_code = ?", code).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check claim code: %w", err)
	}
	return count > 0, nil
}

// UpdateStatus updates the order's status and claim fields.
func (r *GORMOrderRepository) UpdateStatus(id string, status models.OrderStatus, claimed bool, claimedAt *time.Time) error {
	res := r.db.Model(&models.Order{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"claimed":    claimed,
			"claimed_at": claimedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update status for order %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	return nil
}

// UpdateHistory rewrites the order's single history record in place.
func (r *GORMOrderRepository) UpdateHistory(orderID string, status models.OrderStatus, notes string, changedAt time.Time) error {
	res := r.db.Model(&models.OrderHistory{}).
		Where("order_id = ?", orderID).
		Updates(map[string]interface{}{
			"status":     status,
			"notes":      notes,
			"changed_at": changedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update history for order %s: %w", orderID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("history for order %s: %w", orderID, ErrNotFound)
	}
	return nil
}
