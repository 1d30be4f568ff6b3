package handle

import (
	"context"
	"testing"
)

type testObserver struct {
	events []Event
}

func (o *testObserver) OnHandleEvent(e Event) {
	o.events = append(o.events, e)
}

func TestOwned_SingleRelease(t *testing.T) {
	ctx := context.Background()

	releases := 0
	o := NewOwned("Mat", 0x100, func(_ context.Context, ptr uint32) {
		if ptr != 0x100 {
			t.Errorf("release called with %#x, want 0x100", ptr)
		}
		releases++
	})

	// Borrow repeatedly; borrowing must not affect the release count.
	for i := 0; i < 10; i++ {
		if o.Ptr() != 0x100 {
			t.Fatal("bad borrow")
		}
	}

	o.Release(ctx)
	o.Release(ctx)
	o.Release(ctx)

	if releases != 1 {
		t.Fatalf("destructor ran %d times, want 1", releases)
	}
}

func TestOwned_UseAfterReleasePanics(t *testing.T) {
	ctx := context.Background()
	o := NewOwned("LSDDetector", 0x40, nil)
	o.Release(ctx)

	defer func() {
		if recover() == nil {
			t.Error("Ptr after Release must panic")
		}
	}()
	o.Ptr()
}

func TestTable_RegisterRelease(t *testing.T) {
	ctx := context.Background()
	tbl := NewTable()

	released := map[uint32]int{}
	rel := func(_ context.Context, ptr uint32) { released[ptr]++ }

	a := tbl.Register("Mat", 1, rel)
	b := tbl.Register("Mat", 2, rel)
	if a == nil || b == nil {
		t.Fatal("Register returned nil on open table")
	}
	if tbl.Len() != 2 {
		t.Fatalf("Len = %d, want 2", tbl.Len())
	}

	a.Release(ctx)
	if tbl.Len() != 1 {
		t.Fatalf("Len = %d after release, want 1", tbl.Len())
	}
	if released[1] != 1 {
		t.Fatalf("object 1 released %d times, want 1", released[1])
	}
}

func TestTable_CloseReleasesStragglers(t *testing.T) {
	ctx := context.Background()
	tbl := NewTable()

	released := map[uint32]int{}
	rel := func(_ context.Context, ptr uint32) { released[ptr]++ }

	tbl.Register("BinaryDescriptor", 10, rel)
	kept := tbl.Register("Mat", 11, rel)
	kept.Release(ctx) // released before Close

	tbl.Close(ctx)
	tbl.Close(ctx) // idempotent

	if released[10] != 1 {
		t.Errorf("straggler released %d times, want 1", released[10])
	}
	if released[11] != 1 {
		t.Errorf("pre-released object released %d times, want 1", released[11])
	}
	if tbl.Len() != 0 {
		t.Errorf("Len = %d after Close, want 0", tbl.Len())
	}

	if got := tbl.Register("Mat", 12, rel); got != nil {
		t.Error("Register after Close must return nil")
	}
}

func TestTable_Observer(t *testing.T) {
	ctx := context.Background()
	tbl := NewTable()
	obs := &testObserver{}
	tbl.Subscribe(obs)

	o := tbl.Register("VectorKeyLine", 7, nil)
	o.Release(ctx)

	if len(obs.events) != 2 {
		t.Fatalf("got %d events, want 2", len(obs.events))
	}
	if obs.events[0].Type != EventRegistered || obs.events[0].Ptr != 7 {
		t.Errorf("unexpected first event %+v", obs.events[0])
	}
	if obs.events[1].Type != EventReleased || obs.events[1].Kind != "VectorKeyLine" {
		t.Errorf("unexpected second event %+v", obs.events[1])
	}

	tbl.Unsubscribe(obs)
	tbl.Register("Mat", 8, nil)
	if len(obs.events) != 2 {
		t.Error("observer notified after Unsubscribe")
	}
}

func TestTable_Each(t *testing.T) {
	tbl := NewTable()
	tbl.Register("Mat", 1, nil)
	tbl.Register("Mat", 2, nil)
	tbl.Register("Mat", 3, nil)

	seen := 0
	tbl.Each(func(o *Owned) bool {
		seen++
		return seen < 2
	})
	if seen != 2 {
		t.Errorf("Each visited %d, want early stop at 2", seen)
	}
}
