package entities

import (
	"testing"
	"time"
)

func TestShelfLife_Limits(t *testing.T) {
	sl := DefaultShelfLife()

	tests := []struct {
		name   string
		state  StorageState
		age    int
		within bool
	}{
		{"fresh_ambient", Ambient, 0, true},
		{"ambient_at_limit", Ambient, 17, true},
		{"ambient_past_limit", Ambient, 18, false},
		{"frozen_long_hold", Frozen, 90, true},
		{"frozen_at_limit", Frozen, 120, true},
		{"frozen_past_limit", Frozen, 121, false},
		{"negative_age", Ambient, -1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sl.WithinLimit(tt.state, tt.age); got != tt.within {
				t.Errorf("WithinLimit(%s, %d) = %v, want %v", tt.state, tt.age, got, tt.within)
			}
		})
	}
}

func TestCohortKey_Age(t *testing.T) {
	pd := NewDate(2025, time.June, 2)
	key := CohortKey{Location: "PLANT", Product: "GF_WHITE", ProduceDate: pd, CurrentDate: pd.Add(5), State: Ambient}
	if key.Age() != 5 {
		t.Errorf("expected age 5, got %d", key.Age())
	}
	prev := key.Prev()
	if prev.Age() != 4 || prev.CurrentDate != pd.Add(4) {
		t.Errorf("Prev() moved to unexpected key %s", prev)
	}
}

func TestCohortInventory_AsOf(t *testing.T) {
	pd1 := NewDate(2025, time.June, 2)
	pd2 := NewDate(2025, time.June, 3)
	end := NewDate(2025, time.June, 8)

	inv := CohortInventory{}
	inv.Add(CohortKey{Location: "HUB", Product: "P1", ProduceDate: pd1, CurrentDate: end, State: Frozen}, 100)
	inv.Add(CohortKey{Location: "HUB", Product: "P1", ProduceDate: pd2, CurrentDate: end, State: Frozen}, 50)
	inv.Add(CohortKey{Location: "HUB", Product: "P1", ProduceDate: pd2, CurrentDate: end, State: Ambient}, 0) // dropped

	if len(inv) != 2 {
		t.Fatalf("expected zero quantities to be dropped, have %d entries", len(inv))
	}

	next := inv.AsOf(end.Add(1))
	if next.Total() != 150 {
		t.Errorf("expected total 150 after rekey, got %g", next.Total())
	}
	for k := range next {
		if k.CurrentDate != end.Add(1) {
			t.Errorf("cohort %s not rekeyed to next day", k)
		}
		// Production dates must survive the handoff
		if k.ProduceDate != pd1 && k.ProduceDate != pd2 {
			t.Errorf("cohort %s lost its production date", k)
		}
	}
}

func TestCohortInventory_KeysDeterministic(t *testing.T) {
	pd := NewDate(2025, time.June, 2)
	cd := pd.Add(3)
	inv := CohortInventory{}
	inv.Add(CohortKey{Location: "B", Product: "P", ProduceDate: pd, CurrentDate: cd, State: Ambient}, 1)
	inv.Add(CohortKey{Location: "A", Product: "P", ProduceDate: pd, CurrentDate: cd, State: Frozen}, 1)
	inv.Add(CohortKey{Location: "A", Product: "P", ProduceDate: pd, CurrentDate: cd, State: Ambient}, 1)

	keys := inv.Keys()
	if keys[0].Location != "A" || keys[0].State != Ambient {
		t.Errorf("unexpected first key %s", keys[0])
	}
	if keys[2].Location != "B" {
		t.Errorf("unexpected last key %s", keys[2])
	}
}
