package handlers

import (
	"errors"
	"fmt"
	"log"

	"bookstore/internal/middleware"
	"bookstore/internal/models"
	"bookstore/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service  *services.OrderService
	validate *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler, staffOnly fiber.Handler) {
	orderRoutes := router.Group("/orders", auth)
	orderRoutes.Post("/", h.HandleCreateOrder)
	orderRoutes.Get("/", staffOnly, h.HandleSearchOrders)
	orderRoutes.Get("/:id", h.HandleGetOrder)
	orderRoutes.Patch("/:id/status", staffOnly, h.HandleUpdateOrderStatus)
}

// CreateOrderRequest is the checkout request body.
type CreateOrderRequest struct {
	Items []services.ItemRequest `json:"items" validate:"required,min=1,dive"`
}

// HandleCreateOrder creates a new order for the authenticated user.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing order request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errorMessages,
		})
	}

	userID := middleware.UserID(c)
	confirmation, err := h.service.CreateOrder(userID, req.Items)
	if err != nil {
		log.Printf("Error creating order for user %s: %v", userID, err)
		switch {
		case errors.Is(err, services.ErrInventoryConflict):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": "Order creation failed due to insufficient stock",
				"error":   err.Error(),
			})
		case errors.Is(err, services.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Referenced book or user does not exist",
				"error":   err.Error(),
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Could not create order",
				"error":   err.Error(),
			})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(confirmation)
}

// HandleGetOrder retrieves a single order. Customers only see their own
// orders; anyone else's order is reported as not found.
func (h *OrderHandler) HandleGetOrder(c *fiber.Ctx) error {
	orderID := c.Params("id")
	confirmation, err := h.service.GetOrder(orderID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": fmt.Sprintf("Order with ID %s not found", orderID),
			})
		}
		log.Printf("Error getting order %s: %v", orderID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve order",
			"error":   err.Error(),
		})
	}

	if !middleware.IsStaff(c) && confirmation.UserID != middleware.UserID(c) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": fmt.Sprintf("Order with ID %s not found", orderID),
		})
	}

	return c.JSON(confirmation)
}

// HandleSearchOrders lists orders for staff, optionally filtered by a search
// query matching the owning user's ID, username, name or email.
func (h *OrderHandler) HandleSearchOrders(c *fiber.Ctx) error {
	query := c.Query("search")
	confirmations, err := h.service.SearchOrders(query)
	if err != nil {
		log.Printf("Error searching orders with query %q: %v", query, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve orders",
			"error":   err.Error(),
		})
	}
	return c.JSON(confirmations)
}

// UpdateOrderStatusRequest is the staff transition request body. ClaimCode is
// required when moving to completed.
type UpdateOrderStatusRequest struct {
	Status    string `json:"status" validate:"required"`
	Notes     string `json:"notes" validate:"omitempty,max=500"`
	ClaimCode string `json:"claim_code"`
}

// HandleUpdateOrderStatus applies a staff-initiated lifecycle transition.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	orderID := c.Params("id")

	var req UpdateOrderStatusRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing status update body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body for status update",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Status is required for order status update",
		})
	}

	next := models.OrderStatus(req.Status)
	if !models.ValidOrderStatus(next) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": fmt.Sprintf("Unknown order status: %s", req.Status),
		})
	}

	confirmation, err := h.service.Transition(orderID, next, req.Notes, req.ClaimCode)
	if err != nil {
		log.Printf("Error updating order %s to %s: %v", orderID, next, err)
		switch {
		case errors.Is(err, services.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": fmt.Sprintf("Order with ID %s not found", orderID),
			})
		case errors.Is(err, services.ErrInvalidTransition):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"message": "Status change not permitted from the order's current state",
				"error":   err.Error(),
			})
		case errors.Is(err, services.ErrInvalidClaimCode):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"message": "Presented claim code does not match",
				"error":   err.Error(),
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Could not update order status",
				"error":   err.Error(),
			})
		}
	}

	return c.JSON(confirmation)
}
