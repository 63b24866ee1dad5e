package observer

import "testing"

func TestHubPublishesInSubscriptionOrder(t *testing.T) {
	var hub Hub[int]
	var got []string
	hub.Subscribe(func(v int) { got = append(got, "a") })
	hub.Subscribe(func(v int) { got = append(got, "b") })

	hub.Publish(1)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("delivery order = %v, want [a b]", got)
	}
}

func TestHubUnsubscribe(t *testing.T) {
	var hub Hub[string]
	calls := 0
	unsubscribe := hub.Subscribe(func(string) { calls++ })
	hub.Publish("x")
	unsubscribe()
	unsubscribe()
	hub.Publish("y")
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
	if hub.Len() != 0 {
		t.Fatalf("len = %d, want 0", hub.Len())
	}
}

func TestHubClose(t *testing.T) {
	var hub Hub[int]
	calls := 0
	hub.Subscribe(func(int) { calls++ })
	hub.Close()
	hub.Publish(1)
	if calls != 0 {
		t.Fatalf("calls after close = %d, want 0", calls)
	}
}
