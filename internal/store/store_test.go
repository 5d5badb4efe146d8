package store

import (
	"testing"
)

func TestStore_GetSet(t *testing.T) {
	s := New(nil)

	s.Set("filters.riskThreshold", 0.6)

	v, ok := s.Get("filters.riskThreshold")
	if !ok {
		t.Fatal("expected value at filters.riskThreshold")
	}
	if v.(float64) != 0.6 {
		t.Errorf("value = %v, want 0.6", v)
	}
}

func TestStore_GetMissingPath(t *testing.T) {
	s := New(nil)

	if _, ok := s.Get("filters.timeRange"); ok {
		t.Error("expected missing path to return ok=false")
	}
	if _, ok := s.Get("filters"); ok {
		t.Error("expected missing root segment to return ok=false")
	}
}

func TestStore_SetCreatesIntermediates(t *testing.T) {
	s := New(nil)

	// No intermediate containers exist yet; Set must create them.
	s.Set("ui.charts.active", "category")

	if got := s.GetString("ui.charts.active"); got != "category" {
		t.Errorf("ui.charts.active = %q, want %q", got, "category")
	}

	// Intermediate container is addressable as a subtree.
	if _, ok := s.Get("ui.charts"); !ok {
		t.Error("expected intermediate container ui.charts to exist")
	}
}

func TestStore_SetOverwritesLeafIntermediate(t *testing.T) {
	s := New(nil)

	s.Set("ui.theme", "dark")
	s.Set("ui.theme.variant", "contrast")

	if got := s.GetString("ui.theme.variant"); got != "contrast" {
		t.Errorf("ui.theme.variant = %q, want %q", got, "contrast")
	}
}

func TestStore_SubscribeNotifies(t *testing.T) {
	s := New(nil)

	var gotPath string
	var gotValue interface{}
	s.Subscribe(func(path string, value interface{}) {
		gotPath = path
		gotValue = value
	})

	s.Set("filters.timeRange", "30d")

	if gotPath != "filters.timeRange" {
		t.Errorf("notified path = %q, want %q", gotPath, "filters.timeRange")
	}
	if gotValue.(string) != "30d" {
		t.Errorf("notified value = %v, want 30d", gotValue)
	}
}

func TestStore_NotificationOrder(t *testing.T) {
	s := New(nil)

	var seen []string
	s.Subscribe(func(path string, value interface{}) {
		seen = append(seen, path)
	})

	s.Set("a", 1)
	s.Set("b", 2)
	s.Set("c", 3)

	want := []string{"a", "b", "c"}
	if len(seen) != len(want) {
		t.Fatalf("got %d notifications, want %d", len(seen), len(want))
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("notification %d = %q, want %q", i, seen[i], want[i])
		}
	}
}

func TestStore_ReentrantSet(t *testing.T) {
	s := New(nil)

	// A subscriber that reacts to one path by setting another must not
	// deadlock and must observe the sequential ordering guarantee.
	var order []string
	s.Subscribe(func(path string, value interface{}) {
		order = append(order, path)
		if path == "filters.riskThreshold" {
			s.Set("kpi.flagged", 7)
		}
	})

	s.Set("filters.riskThreshold", 0.8)

	want := []string{"filters.riskThreshold", "kpi.flagged"}
	if len(order) != len(want) {
		t.Fatalf("got %d notifications, want %d", len(order), len(want))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("notification %d = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestStore_Unsubscribe(t *testing.T) {
	s := New(nil)

	calls := 0
	unsub := s.Subscribe(func(path string, value interface{}) {
		calls++
	})

	s.Set("a", 1)
	unsub()
	s.Set("b", 2)

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestStore_TypedGetters(t *testing.T) {
	s := New(map[string]interface{}{
		"ui": map[string]interface{}{
			"advanced": true,
		},
	})
	s.Set("filters.riskThreshold", 0.75)
	s.Set("ui.theme", "dark")

	if got := s.GetFloat("filters.riskThreshold"); got != 0.75 {
		t.Errorf("GetFloat = %v, want 0.75", got)
	}
	if got := s.GetString("ui.theme"); got != "dark" {
		t.Errorf("GetString = %q, want dark", got)
	}
	if !s.GetBool("ui.advanced") {
		t.Error("GetBool = false, want true")
	}
	if got := s.GetFloat("missing.path"); got != 0 {
		t.Errorf("GetFloat on missing path = %v, want 0", got)
	}
}
