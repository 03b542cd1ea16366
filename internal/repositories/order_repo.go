package repositories

import (
	"time"

	"bookstore/internal/models"
)

// OrderRepository defines the interface for order data access. An order is
// always written together with its items and history record; status and
// history mutations are column-level updates issued inside a transaction.
type OrderRepository interface {
	Create(order *models.Order) error
	GetByID(id string) (*models.Order, error)
	GetAll() ([]models.Order, error)
	ListByUserIDs(userIDs []string) ([]models.Order, error)

	// ClaimCodeInUse reports whether any order already carries the code.
	ClaimCodeInUse(code string) (bool, error)

	UpdateStatus(id string, status models.OrderStatus, claimed bool, claimedAt *time.Time) error
	UpdateHistory(orderID string, status models.OrderStatus, notes string, changedAt time.Time) error
}
