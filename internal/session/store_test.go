package session

import (
	"testing"
	"time"

	"github.com/smallbiznis/couponview/internal/view"
)

func TestStoreRoundTrip(t *testing.T) {
	store := NewStore(time.Minute)
	v := view.Build(nil, nil)

	if _, ok := store.Get("0xAbC"); ok {
		t.Fatal("empty store returned a view")
	}

	store.Publish("0xAbC", v)
	got, ok := store.Get("0xabc")
	if !ok || got != v {
		t.Fatal("identity lookup is not case-insensitive")
	}

	store.Invalidate("0xABC")
	if _, ok := store.Get("0xabc"); ok {
		t.Fatal("view survived invalidation")
	}
}

func TestStoreExpiryAndSweep(t *testing.T) {
	store := NewStore(10 * time.Millisecond)
	store.Publish("0xabc", view.Build(nil, nil))

	time.Sleep(25 * time.Millisecond)

	if removed := store.Sweep(); removed != 1 {
		t.Fatalf("sweep removed %d, want 1", removed)
	}
	if store.Len() != 0 {
		t.Fatalf("len %d after sweep", store.Len())
	}
	if _, ok := store.Get("0xabc"); ok {
		t.Fatal("expired view still served")
	}
}

func TestGateSingleFlight(t *testing.T) {
	gate := NewGate()

	if !gate.TryAcquire("0xAbC") {
		t.Fatal("first acquire failed")
	}
	if gate.TryAcquire("0xabc") {
		t.Fatal("second acquire succeeded while in flight")
	}
	if !gate.TryAcquire("0xother") {
		t.Fatal("unrelated identity blocked")
	}

	gate.Release("0xABC")
	if !gate.TryAcquire("0xabc") {
		t.Fatal("acquire failed after release")
	}
}
