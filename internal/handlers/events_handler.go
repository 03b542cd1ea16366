package handlers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"bookstore/internal/middleware"
	"bookstore/internal/notify"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

// keepAliveInterval is how often an SSE comment is written to detect dead
// connections and keep proxies from closing the stream.
const keepAliveInterval = 30 * time.Second

// EventsHandler exposes the notification hub as server-sent event streams.
type EventsHandler struct {
	hub *notify.Hub
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(hub *notify.Hub) *EventsHandler {
	return &EventsHandler{
		hub: hub,
	}
}

// RegisterRoutes registers the event stream routes with the Fiber app.
func (h *EventsHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler, staffOnly fiber.Handler) {
	eventRoutes := router.Group("/events", auth)
	eventRoutes.Get("/staff", staffOnly, h.HandleStaffStream)
	eventRoutes.Get("/me", h.HandleUserStream)
}

// HandleStaffStream joins the staff group for the lifetime of the connection.
func (h *EventsHandler) HandleStaffStream(c *fiber.Ctx) error {
	return h.stream(c, h.hub.SubscribeStaff())
}

// HandleUserStream joins the authenticated user's group for the lifetime of
// the connection.
func (h *EventsHandler) HandleUserStream(c *fiber.Ctx) error {
	return h.stream(c, h.hub.SubscribeUser(middleware.UserID(c)))
}

// stream writes hub events to the client as SSE until the connection drops.
// Membership is session-scoped: the subscriber is removed on any write error.
func (h *EventsHandler) stream(c *fiber.Ctx, sub *notify.Subscriber) error {
	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer h.hub.Unsubscribe(sub)

		keepAlive := time.NewTicker(keepAliveInterval)
		defer keepAlive.Stop()

		for {
			select {
			case event, ok := <-sub.Events():
				if !ok {
					return
				}
				data, err := json.Marshal(event.Payload)
				if err != nil {
					log.Printf("Failed to marshal %s event: %v", event.Type, err)
					continue
				}
				if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			case <-keepAlive.C:
				if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	}))

	return nil
}
