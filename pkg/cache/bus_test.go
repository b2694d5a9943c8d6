package cache

import (
	"context"
	"testing"
	"time"
)

func waitForSize(t *testing.T, c *AnalysisCache, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if c.Size() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("cache size = %d, want %d", c.Size(), want)
}

func TestBus_PublishReachesSubscriber(t *testing.T) {
	bus := NewBus()
	defer bus.Shutdown()

	sub, err := bus.Subscribe(context.Background())
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	bus.Publish(Invalidation{EntityID: "e1", Reason: "relationship updated"})

	select {
	case ev := <-sub.Channel():
		if ev.EntityID != "e1" {
			t.Errorf("EntityID = %s, want e1", ev.EntityID)
		}
	case <-time.After(time.Second):
		t.Fatal("event never arrived")
	}
}

func TestBus_UnsubscribeStopsDelivery(t *testing.T) {
	bus := NewBus()
	defer bus.Shutdown()

	sub, err := bus.Subscribe(context.Background())
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	sub.Unsubscribe()

	if n := bus.SubscriberCount(); n != 0 {
		t.Errorf("subscriber count = %d, want 0", n)
	}
	// Channel must be closed.
	if _, open := <-sub.Channel(); open {
		t.Error("channel should be closed after unsubscribe")
	}
}

func TestAttach_EntityInvalidation(t *testing.T) {
	bus := NewBus()
	defer bus.Shutdown()

	c := New(10)
	c.Put("k1", "e1", []byte("a"))
	c.Put("k2", "e2", []byte("b"))

	stop, err := Attach(context.Background(), bus, c)
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}
	defer stop()

	bus.Publish(Invalidation{EntityID: "e1"})
	waitForSize(t, c, 1)

	if _, ok := c.Get("k2"); !ok {
		t.Error("unrelated entry must survive")
	}
}

func TestAttach_WildcardDropsEverything(t *testing.T) {
	bus := NewBus()
	defer bus.Shutdown()

	c := New(10)
	c.Put("k1", "e1", []byte("a"))
	c.Put("k2", "e2", []byte("b"))

	stop, err := Attach(context.Background(), bus, c)
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}
	defer stop()

	bus.Publish(Invalidation{})
	waitForSize(t, c, 0)
}

func TestBus_ShutdownClosesSubscribers(t *testing.T) {
	bus := NewBus()
	sub, err := bus.Subscribe(context.Background())
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	bus.Shutdown()

	select {
	case _, open := <-sub.Channel():
		if open {
			t.Error("expected closed channel after shutdown")
		}
	case <-time.After(time.Second):
		t.Fatal("channel never closed")
	}

	if _, err := bus.Subscribe(context.Background()); err == nil {
		t.Error("subscribing to a shut-down bus should fail")
	}
}
