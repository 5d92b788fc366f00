package entities

import (
	"testing"

	"github.com/shopspring/decimal"
)

func mustLocation(t *testing.T, id LocationID, locType LocationType, cap StorageCapability) *Location {
	t.Helper()
	loc, err := NewLocation(id, string(id), locType, cap, 0)
	if err != nil {
		t.Fatalf("NewLocation failed: %v", err)
	}
	return loc
}

func mustLeg(t *testing.T, from, to LocationID, depart, arrive StorageState, transit float64) *Leg {
	t.Helper()
	leg, err := NewLeg(from, to, depart, arrive, transit, decimal.NewFromFloat(0.1))
	if err != nil {
		t.Fatalf("NewLeg failed: %v", err)
	}
	return leg
}

func TestNewNetwork_Validation(t *testing.T) {
	plant := mustLocation(t, "PLANT", Manufacturing, AmbientAndFrozen)
	hub := mustLocation(t, "HUB", Storage, FrozenOnly)
	br := mustLocation(t, "BR1", Breadroom, AmbientOnly)

	t.Run("valid_network", func(t *testing.T) {
		n, err := NewNetwork(
			[]*Location{plant, hub, br},
			[]*Leg{
				mustLeg(t, "PLANT", "HUB", Frozen, Frozen, 1),
				mustLeg(t, "HUB", "BR1", Frozen, Ambient, 1),
			},
		)
		if err != nil {
			t.Fatalf("NewNetwork failed: %v", err)
		}
		if n.Plant().ID != "PLANT" {
			t.Errorf("unexpected plant %s", n.Plant().ID)
		}
		if len(n.Destinations()) != 1 || n.Destinations()[0].ID != "BR1" {
			t.Errorf("unexpected destinations %v", n.Destinations())
		}
		if len(n.LegsFrom("PLANT")) != 1 || len(n.LegsTo("BR1")) != 1 {
			t.Error("leg adjacency not built")
		}
	})

	t.Run("arrival_state_must_be_holdable", func(t *testing.T) {
		_, err := NewNetwork(
			[]*Location{plant, br},
			[]*Leg{mustLeg(t, "PLANT", "BR1", Ambient, Frozen, 1)},
		)
		if err == nil {
			t.Fatal("expected error: breadroom cannot hold frozen arrivals")
		}
	})

	t.Run("no_manufacturing_location", func(t *testing.T) {
		_, err := NewNetwork([]*Location{hub, br}, nil)
		if err == nil {
			t.Fatal("expected error for missing manufacturing location")
		}
	})

	t.Run("unknown_leg_endpoint", func(t *testing.T) {
		_, err := NewNetwork(
			[]*Location{plant, br},
			[]*Leg{mustLeg(t, "PLANT", "NOWHERE", Ambient, Ambient, 1)},
		)
		if err == nil {
			t.Fatal("expected error for unknown leg endpoint")
		}
	})
}

func TestLeg_ArrivalDate(t *testing.T) {
	tests := []struct {
		name    string
		transit float64
		days    int
	}{
		{"same_day", 0, 0},
		{"fractional_rounds_up", 0.5, 1},
		{"whole_day", 1, 1},
		{"long_fractional", 2.25, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			leg := mustLeg(t, "A", "B", Ambient, Ambient, tt.transit)
			depart := Date(20000)
			if got := leg.ArrivalDate(depart); got != depart.Add(tt.days) {
				t.Errorf("ArrivalDate = %s, want depart+%d", got, tt.days)
			}
			if got := leg.DepartureDate(depart.Add(tt.days)); got != depart {
				t.Errorf("DepartureDate round trip failed: got %s", got)
			}
		})
	}
}
