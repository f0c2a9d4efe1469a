package cell

import (
	"testing"

	"github.com/talgya/hexworks/internal/resource"
)

func TestParseVariantRoundTrip(t *testing.T) {
	for v := Variant(0); v < VariantCount; v++ {
		got, ok := ParseVariant(v.String())
		if !ok || got != v {
			t.Errorf("ParseVariant(%q) = %v, %v", v, got, ok)
		}
	}
	if v, ok := ParseVariant("woodcutter"); !ok || v != WoodCutter {
		t.Errorf("case-insensitive parse failed")
	}
	if _, ok := ParseVariant("Castle"); ok {
		t.Errorf("unknown variant parsed")
	}
}

func TestUnmarshalText(t *testing.T) {
	var v Variant
	if err := v.UnmarshalText([]byte("Hub")); err != nil || v != Hub {
		t.Fatalf("UnmarshalText = %v, %v", v, err)
	}
	if err := v.UnmarshalText([]byte("nope")); err == nil {
		t.Fatalf("expected error")
	}
}

func TestLedgerAccess(t *testing.T) {
	l := resource.NewLedger().Full(resource.Wood, 4)

	s := Stockpile(Hidden, l)
	got, ok := s.Ledger()
	if !ok || got != l {
		t.Fatalf("Stockpile ledger = %v, %v", got, ok)
	}

	cd := Countdown(WoodCutter, 3, BecomeWith(WoodCutter, l))
	if got, ok := cd.Ledger(); !ok || got != l {
		t.Fatalf("captured ledger = %v, %v", got, ok)
	}
	if _, ok := Countdown(WoodFarm, 3, Nothing()).Ledger(); ok {
		t.Fatalf("Nothing continuation should carry no ledger")
	}

	if _, ok := UnitState(Feeder).WithLedger(l); ok {
		t.Fatalf("WithLedger on Unit should fail")
	}
	drained, _ := resource.Add(resource.Wood, l, -1)
	next, ok := s.WithLedger(drained)
	if !ok {
		t.Fatalf("WithLedger on Resource should succeed")
	}
	if got, _ := next.Ledger(); got.Get(resource.Wood) != 3 {
		t.Fatalf("ledger not replaced: %v", got)
	}
}

func TestStatesAreComparable(t *testing.T) {
	a := SlotState(Hot, Empty)
	b := SlotState(Hot, Empty)
	if a != b {
		t.Fatalf("equal states compare unequal")
	}
	if a == SlotState(Hot, Done) {
		t.Fatalf("different slots compare equal")
	}
	if (State{Variant: Feeder}).Payload() != (Unit{}) {
		t.Fatalf("nil payload should read as Unit")
	}
}

func TestLeakDelta(t *testing.T) {
	cases := []struct {
		name      string
		v         Variant
		neighbors []Variant
		want      int
		ok        bool
	}{
		{"lone hot", Hot, nil, 12, true},
		{"hot cluster", Hot, []Variant{Hot, Hot, Insulation, Unused}, 3, true},
		{"insulation next to hot", Insulation, []Variant{Hot, Hot}, -2, true},
		{"feeder", Feeder, []Variant{Hot}, 0, false},
	}
	for _, tc := range cases {
		got, ok := LeakDelta(tc.v, tc.neighbors)
		if got != tc.want || ok != tc.ok {
			t.Errorf("%s: LeakDelta = %d,%v; want %d,%v", tc.name, got, ok, tc.want, tc.ok)
		}
	}
}

func TestStringForms(t *testing.T) {
	cases := map[State]string{
		SlotState(Hot, Done):                "Hot{Done}",
		Countdown(Building, 4, Become(Hub)): "Building{4->Hub}",
		Countdown(WoodFarm, 2, Nothing()):   "WoodFarm{2}",
		UnitState(Road):                     "Road",
	}
	for s, want := range cases {
		if got := s.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}
