package notify_test

import (
	"testing"

	"bookstore/internal/notify"

	"github.com/stretchr/testify/assert"
)

func TestHub_StaffFanOut(t *testing.T) {
	hub := notify.NewHub()
	first := hub.SubscribeStaff()
	second := hub.SubscribeStaff()
	defer hub.Unsubscribe(first)
	defer hub.Unsubscribe(second)

	hub.PublishStaff(notify.Event{Type: notify.EventNewOrder, Payload: "order-1"})

	for _, sub := range []*notify.Subscriber{first, second} {
		select {
		case event := <-sub.Events():
			assert.Equal(t, notify.EventNewOrder, event.Type)
			assert.Equal(t, "order-1", event.Payload)
		default:
			t.Fatal("expected buffered event for staff subscriber")
		}
	}
}

func TestHub_UserGroupsAreIsolated(t *testing.T) {
	hub := notify.NewHub()
	alice := hub.SubscribeUser("alice")
	bob := hub.SubscribeUser("bob")
	defer hub.Unsubscribe(alice)
	defer hub.Unsubscribe(bob)

	hub.PublishUser("alice", notify.Event{Type: notify.EventOrderCompleted, Payload: "order-9"})

	select {
	case event := <-alice.Events():
		assert.Equal(t, notify.EventOrderCompleted, event.Type)
	default:
		t.Fatal("expected event for alice")
	}

	select {
	case <-bob.Events():
		t.Fatal("bob must not receive alice's events")
	default:
	}
}

func TestHub_StaffDoesNotReceiveUserEvents(t *testing.T) {
	hub := notify.NewHub()
	staff := hub.SubscribeStaff()
	defer hub.Unsubscribe(staff)

	hub.PublishUser("alice", notify.Event{Type: notify.EventOrderCompleted})

	select {
	case <-staff.Events():
		t.Fatal("staff group must not receive per-user events")
	default:
	}
}

func TestHub_SlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	hub := notify.NewHub()
	sub := hub.SubscribeStaff()
	defer hub.Unsubscribe(sub)

	// Overfill the buffer; PublishStaff must never block.
	for i := 0; i < 50; i++ {
		hub.PublishStaff(notify.Event{Type: notify.EventNewOrder, Payload: i})
	}

	received := 0
	for {
		select {
		case <-sub.Events():
			received++
			continue
		default:
		}
		break
	}
	assert.Greater(t, received, 0)
	assert.LessOrEqual(t, received, 16)
}

func TestHub_UnsubscribeClosesChannel(t *testing.T) {
	hub := notify.NewHub()
	sub := hub.SubscribeUser("alice")

	hub.Unsubscribe(sub)

	_, open := <-sub.Events()
	assert.False(t, open)

	// Publishing after unsubscribe reaches nobody and must not panic.
	hub.PublishUser("alice", notify.Event{Type: notify.EventOrderCompleted})
}
