package models

import "time"

// OrderStatus is the closed set of lifecycle states an order can be in.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// allowedTransitions is the full transition table. Terminal states have no
// outgoing edges; anything not listed here is rejected.
var allowedTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusCompleted, OrderStatusCancelled},
	OrderStatusCompleted: {},
	OrderStatusCancelled: {},
}

// ValidOrderStatus reports whether s is a known status value.
func ValidOrderStatus(s OrderStatus) bool {
	_, ok := allowedTransitions[s]
	return ok
}

// CanTransition reports whether an order may move from its current status to next.
func CanTransition(current, next OrderStatus) bool {
	for _, s := range allowedTransitions[current] {
		if s == next {
			return true
		}
	}
	return false
}

// OrderItem is a single line within an order. UnitPrice is a frozen copy of the
// book's price at order time, independent of later catalog changes.
type OrderItem struct {
	ID              string  `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID         string  `json:"order_id" gorm:"index;type:varchar(36)"`
	BookID          string  `json:"book_id" gorm:"type:varchar(36)" validate:"required"`
	Title           string  `json:"title" gorm:"type:varchar(255)"`
	Quantity        int     `json:"quantity" validate:"required,gt=0"`
	UnitPrice       float64 `json:"unit_price"`
	DiscountPercent float64 `json:"discount_percent"`
	Savings         float64 `json:"savings"`
}

// OrderHistory is the single status record owned by an order (1:1). It is
// created with the order and rewritten in place on every transition.
type OrderHistory struct {
	ID        string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID   string      `json:"order_id" gorm:"uniqueIndex;type:varchar(36)"`
	Status    OrderStatus `json:"status" gorm:"type:varchar(20)"`
	ChangedAt time.Time   `json:"changed_at"`
	Notes     string      `json:"notes" gorm:"type:varchar(500)"`
}

// Order is a customer order. ClaimCode is set once at creation and never
// changes; Claimed/ClaimedAt are set only when the order completes.
type Order struct {
	ID             string       `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID         string       `json:"user_id" gorm:"index;type:varchar(36)"`
	OrderedAt      time.Time    `json:"ordered_at"`
	TotalAmount    float64      `json:"total_amount"`
	DiscountAmount float64      `json:"discount_amount"`
	FinalAmount    float64      `json:"final_amount"`
	Status         OrderStatus  `json:"status" gorm:"type:varchar(20);index"`
	ClaimCode      string       `json:"claim_code" gorm:"uniqueIndex;type:varchar(16)"`
	Claimed        bool         `json:"claimed"`
	ClaimedAt      *time.Time   `json:"claimed_at,omitempty"`
	Items          []OrderItem  `json:"items" gorm:"foreignKey:OrderID"`
	History        OrderHistory `json:"history" gorm:"foreignKey:OrderID"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}
