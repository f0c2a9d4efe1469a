package cell

import (
	"fmt"

	"github.com/talgya/hexworks/internal/resource"
)

// State is one grid position's full contents.
type State struct {
	Variant Variant
	Data    Data
}

// Data is the payload of a cell. The set of implementations is closed.
type Data interface {
	isData()
}

// Unit carries nothing.
type Unit struct{}

// SlotValue is the sub-state of a single-slot producer.
type SlotValue uint8

const (
	Empty SlotValue = iota
	Done
)

func (s SlotValue) String() string {
	if s == Done {
		return "Done"
	}
	return "Empty"
}

// Slot holds a single-slot producer's sub-state.
type Slot struct {
	Value SlotValue
}

// OnDoneKind says what an InProgress countdown carries for its completion.
type OnDoneKind uint8

const (
	OnDoneNothing       OnDoneKind = iota // Restart or settle with no extra data
	OnDoneVariant                         // Become Target
	OnDoneVariantLedger                   // Become Target, merging Ledger
)

// OnDone is the continuation of a countdown.
type OnDone struct {
	Kind   OnDoneKind
	Target Variant
	Ledger resource.Ledger
}

// Nothing is the empty continuation.
func Nothing() OnDone { return OnDone{Kind: OnDoneNothing} }

// Become returns a continuation that turns the cell into target.
func Become(target Variant) OnDone {
	return OnDone{Kind: OnDoneVariant, Target: target}
}

// BecomeWith returns a continuation that turns the cell into target carrying l.
func BecomeWith(target Variant, l resource.Ledger) OnDone {
	return OnDone{Kind: OnDoneVariantLedger, Target: target, Ledger: l}
}

// InProgress is a countdown toward a transition.
type InProgress struct {
	Countdown int
	OnDone    OnDone
}

// Resource carries a ledger and optionally a variant to become on completion.
type Resource struct {
	Ledger    resource.Ledger
	Target    Variant
	HasTarget bool
}

func (Unit) isData()       {}
func (Slot) isData()       {}
func (InProgress) isData() {}
func (Resource) isData()   {}

// New pairs a variant with a payload.
func New(v Variant, d Data) State {
	if d == nil {
		d = Unit{}
	}
	return State{Variant: v, Data: d}
}

// UnitState returns v with no payload.
func UnitState(v Variant) State { return State{Variant: v, Data: Unit{}} }

// SlotState returns v holding slot value s.
func SlotState(v Variant, s SlotValue) State {
	return State{Variant: v, Data: Slot{Value: s}}
}

// Countdown returns v counting down from n.
func Countdown(v Variant, n int, onDone OnDone) State {
	return State{Variant: v, Data: InProgress{Countdown: n, OnDone: onDone}}
}

// Stockpile returns v holding ledger l.
func Stockpile(v Variant, l resource.Ledger) State {
	return State{Variant: v, Data: Resource{Ledger: l}}
}

// Payload returns the cell's data, treating a missing payload as Unit.
func (s State) Payload() Data {
	if s.Data == nil {
		return Unit{}
	}
	return s.Data
}

// Ledger returns the cell's ledger if it carries one, either directly or
// captured in a countdown continuation.
func (s State) Ledger() (resource.Ledger, bool) {
	switch d := s.Payload().(type) {
	case Resource:
		return d.Ledger, true
	case InProgress:
		if d.OnDone.Kind == OnDoneVariantLedger {
			return d.OnDone.Ledger, true
		}
	}
	return resource.Ledger{}, false
}

// WithLedger returns s with its direct ledger replaced. Only Resource payloads
// carry a direct ledger; other shapes are returned unchanged with false.
func (s State) WithLedger(l resource.Ledger) (State, bool) {
	d, ok := s.Payload().(Resource)
	if !ok {
		return s, false
	}
	d.Ledger = l
	s.Data = d
	return s, true
}

// Is reports whether s has variant v.
func (s State) Is(v Variant) bool { return s.Variant == v }

func (s State) String() string {
	switch d := s.Payload().(type) {
	case Slot:
		return fmt.Sprintf("%s{%s}", s.Variant, d.Value)
	case InProgress:
		switch d.OnDone.Kind {
		case OnDoneVariant, OnDoneVariantLedger:
			return fmt.Sprintf("%s{%d->%s}", s.Variant, d.Countdown, d.OnDone.Target)
		}
		return fmt.Sprintf("%s{%d}", s.Variant, d.Countdown)
	case Resource:
		return fmt.Sprintf("%s%s", s.Variant, d.Ledger)
	}
	return s.Variant.String()
}

// IsTile reports whether v counts toward heat tiles.
func IsTile(v Variant) bool { return v == Hot }
