package eventbus

import (
	"testing"
	"time"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestBus_PublishDispatchesInRegistrationOrder(t *testing.T) {
	b := New()
	var order []string

	b.Subscribe("hit", func(e Event) error {
		order = append(order, "first")
		return nil
	})
	b.Subscribe("hit", func(e Event) error {
		order = append(order, "second")
		return nil
	})

	b.Publish("hit", map[string]any{"damage": 3})

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("expected [first second], got %v", order)
	}
}

func TestBus_SequenceNumbersStrictlyIncrease(t *testing.T) {
	b := New()
	e1 := b.Publish("a", nil)
	e2 := b.Publish("b", nil)
	e3 := b.Publish("a", nil)

	if !(e1.Sequence < e2.Sequence && e2.Sequence < e3.Sequence) {
		t.Errorf("expected strictly increasing sequence, got %d %d %d", e1.Sequence, e2.Sequence, e3.Sequence)
	}
}

func TestBus_FailingHandlerDoesNotStopDispatch(t *testing.T) {
	b := New()
	ran := false

	b.Subscribe("hit", func(e Event) error {
		panic("boom")
	})
	b.Subscribe("hit", func(e Event) error {
		ran = true
		return nil
	})

	b.Publish("hit", nil)

	if !ran {
		t.Errorf("expected second handler to still run after the first panicked")
	}
}

func TestBus_UnsubscribeTakesEffectNextPublish(t *testing.T) {
	b := New()
	calls := 0
	var id SubscriptionID

	id = b.Subscribe("hit", func(e Event) error {
		calls++
		b.Unsubscribe("hit", id)
		return nil
	})

	b.Publish("hit", nil)
	if calls != 1 {
		t.Fatalf("expected 1 call on first publish, got %d", calls)
	}

	b.Publish("hit", nil)
	if calls != 1 {
		t.Errorf("expected unsubscribe mid-dispatch to take effect on next publish, got %d calls", calls)
	}
}

func TestBus_EventsProducedDuringDispatchDeliverAfter(t *testing.T) {
	b := New()
	var order []string

	b.Subscribe("a", func(e Event) error {
		order = append(order, "a-start")
		b.Publish("b", nil)
		order = append(order, "a-end")
		return nil
	})
	b.Subscribe("b", func(e Event) error {
		order = append(order, "b")
		return nil
	})

	b.Publish("a", nil)

	want := []string{"a-start", "a-end", "b"}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], order[i])
		}
	}
}

func TestBus_HistoryRespectsMaxAndSequenceFilter(t *testing.T) {
	b := New(WithHistory(2))
	b.Publish("a", nil)
	b.Publish("b", nil)
	b.Publish("c", nil)

	all := b.GetEventsSince(0)
	if len(all) != 2 {
		t.Fatalf("expected history capped at 2, got %d", len(all))
	}
	if all[0].Type != "b" || all[1].Type != "c" {
		t.Errorf("expected oldest event evicted, got %+v", all)
	}
}

func TestBus_GetEventsByTypeFiltersOnTimestamp(t *testing.T) {
	b := New(WithHistory(10))
	b.now = fixedClock(time.Unix(100, 0))
	b.Publish("a", nil)
	b.now = fixedClock(time.Unix(200, 0))
	b.Publish("a", nil)

	since := 150.0
	filtered := b.GetEventsByType("a", &since)
	if len(filtered) != 1 {
		t.Fatalf("expected 1 event since timestamp 150, got %d", len(filtered))
	}
}

func TestBus_ReplayDoesNotReRecordHistory(t *testing.T) {
	b := New(WithHistory(10))
	b.Publish("a", nil)
	before := len(b.GetEventsSince(0))

	var seen []uint64
	b.Subscribe("a", func(e Event) error {
		seen = append(seen, e.Sequence)
		return nil
	})

	b.Replay(b.GetEventsSince(0))

	after := len(b.GetEventsSince(0))
	if before != after {
		t.Errorf("expected replay not to add to history, before=%d after=%d", before, after)
	}
	if len(seen) != 1 {
		t.Errorf("expected replay to dispatch to current subscribers, got %d calls", len(seen))
	}
}

func TestBus_SerializeSinceRoundTrips(t *testing.T) {
	b := New(WithHistory(10))
	b.Publish("terrain_changed", map[string]any{"x": float64(3), "y": float64(4)})

	data, err := b.SerializeSince(0)
	if err != nil {
		t.Fatalf("SerializeSince failed: %v", err)
	}

	target := New(WithHistory(10))
	var received []string
	target.Subscribe("terrain_changed", func(e Event) error {
		received = append(received, e.Type)
		return nil
	})

	if err := target.DeserializeAndReplay(data); err != nil {
		t.Fatalf("DeserializeAndReplay failed: %v", err)
	}
	if len(received) != 1 {
		t.Errorf("expected replayed event to dispatch, got %d", len(received))
	}
}

func TestBus_Stats(t *testing.T) {
	b := New(WithHistory(10))
	b.Subscribe("a", func(e Event) error { return nil })
	b.Subscribe("a", func(e Event) error { return nil })
	b.Publish("a", nil)
	b.Publish("a", nil)
	b.Publish("b", nil)

	stats := b.Stats()
	if stats.TotalEvents != 3 {
		t.Errorf("expected 3 total events, got %d", stats.TotalEvents)
	}
	if stats.EventTypeCounts["a"] != 2 {
		t.Errorf("expected 2 events of type a, got %d", stats.EventTypeCounts["a"])
	}
	if stats.SubscriberCount != 2 {
		t.Errorf("expected 2 subscribers, got %d", stats.SubscriberCount)
	}
}
