package services

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"bookstore/internal/models"
	"bookstore/internal/notify"
	"bookstore/internal/repositories"
)

// EventPublisher is the outbound messaging surface the order service needs.
// *rabbitmq.Client satisfies it.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

// OrderConfirmation is the payload returned by order creation and carried by
// every lifecycle push event.
type OrderConfirmation struct {
	OrderID        string             `json:"order_id"`
	UserID         string             `json:"user_id"`
	Status         models.OrderStatus `json:"status"`
	ClaimCode      string             `json:"claim_code"`
	OrderedAt      time.Time          `json:"ordered_at"`
	Claimed        bool               `json:"claimed"`
	ClaimedAt      *time.Time         `json:"claimed_at,omitempty"`
	Lines          []PriceLine        `json:"lines"`
	TotalAmount    float64            `json:"total_amount"`
	DiscountAmount float64            `json:"discount_amount"`
	FinalAmount    float64            `json:"final_amount"`
}

// OrderService owns the order state machine: creation, completion against a
// claim code, cancellation with inventory restore, and the post-commit
// lifecycle events.
type OrderService struct {
	tx        repositories.TransactionManager
	orderRepo repositories.OrderRepository
	userRepo  repositories.UserRepository
	pricing   *PricingService
	codes     *ClaimCodeIssuer
	hub       *notify.Hub
	mqClient  EventPublisher
}

// NewOrderService creates a new OrderService. hub and mqClient may be nil;
// events are then skipped for that channel.
func NewOrderService(
	tx repositories.TransactionManager,
	orderRepo repositories.OrderRepository,
	userRepo repositories.UserRepository,
	pricing *PricingService,
	codes *ClaimCodeIssuer,
	hub *notify.Hub,
	mqClient EventPublisher,
) *OrderService {
	return &OrderService{
		tx:        tx,
		orderRepo: orderRepo,
		userRepo:  userRepo,
		pricing:   pricing,
		codes:     codes,
		hub:       hub,
		mqClient:  mqClient,
	}
}

// CreateOrder prices the checkout, then runs one transaction that reserves
// inventory line by line, persists the order with its items and history,
// issues a claim code and consumes the member discount. Any failure rolls the
// whole unit back; the "new order" event goes out only after commit.
func (s *OrderService) CreateOrder(userID string, items []ItemRequest) (*OrderConfirmation, error) {
	if _, err := s.userRepo.GetByID(userID); err != nil {
		return nil, err
	}

	quote, err := s.pricing.Quote(userID, items)
	if err != nil {
		return nil, err
	}

	var conf *OrderConfirmation
	err = s.tx.WithinTx(func(r repositories.TxRepos) error {
		now := time.Now()

		// Re-validate stock inside the transaction. A failed line aborts the
		// transaction, which undoes the decrements already made for earlier
		// lines of this checkout.
		for _, line := range quote.Lines {
			ok, err := r.Inventory().DecrementIfAvailable(line.BookID, line.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("book %s: %w", line.BookID, ErrInventoryConflict)
			}
		}

		code, err := s.codes.Generate(r.Orders().ClaimCodeInUse)
		if err != nil {
			return err
		}

		order := &models.Order{
			UserID:         userID,
			OrderedAt:      now,
			TotalAmount:    quote.TotalAmount,
			DiscountAmount: quote.DiscountAmount,
			FinalAmount:    quote.FinalAmount,
			Status:         models.OrderStatusPending,
			ClaimCode:      code,
			History: models.OrderHistory{
				Status:    models.OrderStatusPending,
				ChangedAt: now,
				Notes:     "order placed",
			},
		}
		for _, line := range quote.Lines {
			order.Items = append(order.Items, models.OrderItem{
				BookID:          line.BookID,
				Title:           line.Title,
				Quantity:        line.Quantity,
				UnitPrice:       line.UnitPrice,
				DiscountPercent: line.DiscountPercent,
				Savings:         line.Savings,
			})
		}
		if err := r.Orders().Create(order); err != nil {
			return err
		}

		// Consume the member discount in the same transaction, never before:
		// a checkout that fails inventory must not burn the discount.
		if quote.MemberDiscountID != "" {
			ok, err := r.MemberDiscounts().ConsumeIfUnused(quote.MemberDiscountID, order.ID, now)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("member discount %s already consumed", quote.MemberDiscountID)
			}
		}

		conf = confirmationFromOrder(order)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(notify.EventNewOrder, "order.created", conf)
	return conf, nil
}

// Transition moves an order to a new status on behalf of staff. Completion
// requires the presented claim code; cancellation restores inventory.
func (s *OrderService) Transition(orderID string, next models.OrderStatus, notes, claimCode string) (*OrderConfirmation, error) {
	switch next {
	case models.OrderStatusCompleted:
		return s.CompleteOrder(orderID, claimCode, notes)
	case models.OrderStatusCancelled:
		return s.cancelOrder(orderID, notes)
	default:
		return nil, fmt.Errorf("cannot transition to %q: %w", next, ErrInvalidTransition)
	}
}

// CompleteOrder verifies the presented claim code and marks the order
// completed and claimed. Completing an already-completed order with the
// correct code is a no-op success returning the existing confirmation.
func (s *OrderService) CompleteOrder(orderID, presentedCode, notes string) (*OrderConfirmation, error) {
	var conf *OrderConfirmation
	var duplicate bool

	err := s.tx.WithinTx(func(r repositories.TxRepos) error {
		order, err := r.Orders().GetByID(orderID)
		if err != nil {
			return err
		}
		if _, err := r.Users().GetByID(order.UserID); err != nil {
			return err
		}
		if order.ClaimCode != presentedCode {
			return fmt.Errorf("order %s: %w", orderID, ErrInvalidClaimCode)
		}
		if order.Status == models.OrderStatusCompleted {
			duplicate = true
			conf = confirmationFromOrder(order)
			return nil
		}
		if !models.CanTransition(order.Status, models.OrderStatusCompleted) {
			return fmt.Errorf("%s -> %s: %w", order.Status, models.OrderStatusCompleted, ErrInvalidTransition)
		}

		now := time.Now()
		if err := r.Orders().UpdateStatus(orderID, models.OrderStatusCompleted, true, &now); err != nil {
			return err
		}
		if err := r.Orders().UpdateHistory(orderID, models.OrderStatusCompleted, notes, now); err != nil {
			return err
		}

		order.Status = models.OrderStatusCompleted
		order.Claimed = true
		order.ClaimedAt = &now
		conf = confirmationFromOrder(order)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !duplicate {
		s.publishToUser(notify.EventOrderCompleted, "order.completed", conf)
	}
	return conf, nil
}

// cancelOrder moves a pending order to cancelled and restores every line's
// quantity to the ledger. The restore is gated on the status transition, so
// it can never run twice for the same order.
func (s *OrderService) cancelOrder(orderID, notes string) (*OrderConfirmation, error) {
	var conf *OrderConfirmation

	err := s.tx.WithinTx(func(r repositories.TxRepos) error {
		order, err := r.Orders().GetByID(orderID)
		if err != nil {
			return err
		}
		if _, err := r.Users().GetByID(order.UserID); err != nil {
			return err
		}
		if !models.CanTransition(order.Status, models.OrderStatusCancelled) {
			return fmt.Errorf("%s -> %s: %w", order.Status, models.OrderStatusCancelled, ErrInvalidTransition)
		}

		for _, item := range order.Items {
			if err := r.Inventory().Restore(item.BookID, item.Quantity); err != nil {
				return err
			}
		}

		now := time.Now()
		if err := r.Orders().UpdateStatus(orderID, models.OrderStatusCancelled, false, nil); err != nil {
			return err
		}
		if err := r.Orders().UpdateHistory(orderID, models.OrderStatusCancelled, notes, now); err != nil {
			return err
		}

		order.Status = models.OrderStatusCancelled
		conf = confirmationFromOrder(order)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(notify.EventOrderCancelled, "order.cancelled", conf)
	return conf, nil
}

// GetOrder retrieves a single order as a confirmation payload. Ownership is
// enforced by the handler.
func (s *OrderService) GetOrder(orderID string) (*OrderConfirmation, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	return confirmationFromOrder(order), nil
}

// SearchOrders returns all orders, or the orders of users matching the query
// (ID, username, name or email). Staff-only at the handler.
func (s *OrderService) SearchOrders(query string) ([]OrderConfirmation, error) {
	var orders []models.Order
	var err error

	if query == "" {
		orders, err = s.orderRepo.GetAll()
	} else {
		var users []models.User
		users, err = s.userRepo.Search(query)
		if err != nil {
			return nil, err
		}
		ids := make([]string, 0, len(users))
		for _, u := range users {
			ids = append(ids, u.ID)
		}
		orders, err = s.orderRepo.ListByUserIDs(ids)
	}
	if err != nil {
		return nil, err
	}

	confs := make([]OrderConfirmation, 0, len(orders))
	for i := range orders {
		confs = append(confs, *confirmationFromOrder(&orders[i]))
	}
	return confs, nil
}

// publish fans an event out to the staff group and the message broker.
// Delivery is fire-and-forget: failures are logged, never returned.
func (s *OrderService) publish(eventType notify.EventType, routingKey string, conf *OrderConfirmation) {
	if s.hub != nil {
		s.hub.PublishStaff(notify.Event{Type: eventType, Payload: conf})
	}
	s.publishMQ(eventType, routingKey, conf)
}

// publishToUser fans an event out to the owning user's group and the broker.
func (s *OrderService) publishToUser(eventType notify.EventType, routingKey string, conf *OrderConfirmation) {
	if s.hub != nil {
		s.hub.PublishUser(conf.UserID, notify.Event{Type: eventType, Payload: conf})
	}
	s.publishMQ(eventType, routingKey, conf)
}

func (s *OrderService) publishMQ(eventType notify.EventType, routingKey string, conf *OrderConfirmation) {
	if s.mqClient == nil {
		return
	}
	body, err := json.Marshal(notify.Event{Type: eventType, Payload: conf})
	if err != nil {
		log.Printf("Failed to marshal %s event for order %s: %v", eventType, conf.OrderID, err)
		return
	}
	if err := s.mqClient.Publish(routingKey, body); err != nil {
		log.Printf("Warning: Failed to publish %s event for order %s: %v", eventType, conf.OrderID, err)
	}
}

func confirmationFromOrder(order *models.Order) *OrderConfirmation {
	conf := &OrderConfirmation{
		OrderID:        order.ID,
		UserID:         order.UserID,
		Status:         order.Status,
		ClaimCode:      order.ClaimCode,
		OrderedAt:      order.OrderedAt,
		Claimed:        order.Claimed,
		ClaimedAt:      order.ClaimedAt,
		TotalAmount:    order.TotalAmount,
		DiscountAmount: order.DiscountAmount,
		FinalAmount:    order.FinalAmount,
		Lines:          make([]PriceLine, 0, len(order.Items)),
	}
	for _, item := range order.Items {
		subtotal := round2(item.UnitPrice * float64(item.Quantity))
		conf.Lines = append(conf.Lines, PriceLine{
			BookID:          item.BookID,
			Title:           item.Title,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			Subtotal:        subtotal,
			DiscountPercent: item.DiscountPercent,
			Savings:         item.Savings,
			LineTotal:       round2(subtotal - item.Savings),
		})
	}
	return conf
}
