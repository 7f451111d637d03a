package parking

import (
	"fmt"
	"strings"
)

// SlotClass orders slots by size. Small < Medium < Large is the upgrade path.
type SlotClass int

const (
	SlotClassInvalid SlotClass = iota

	SlotSmall
	SlotMedium
	SlotLarge
)

var slotClasses = []SlotClass{SlotSmall, SlotMedium, SlotLarge}

// SlotClasses returns every valid slot class in upgrade order.
func SlotClasses() []SlotClass {
	return append([]SlotClass(nil), slotClasses...)
}

func ParseSlotClass(s string) (SlotClass, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "small":
		return SlotSmall, nil
	case "medium":
		return SlotMedium, nil
	case "large":
		return SlotLarge, nil
	default:
		return SlotClassInvalid, fmt.Errorf("%w: %q", ErrUnknownSlotClass, s)
	}
}

func (c SlotClass) Valid() bool {
	return c >= SlotSmall && c <= SlotLarge
}

func (c SlotClass) String() string {
	switch c {
	case SlotSmall:
		return "small"
	case SlotMedium:
		return "medium"
	case SlotLarge:
		return "large"
	default:
		return fmt.Sprintf("SlotClass(%d)", int(c))
	}
}

type Slot struct {
	ID       int
	Class    SlotClass
	occupant *Vehicle
}

// SlotState is a read-only snapshot of a slot.
type SlotState struct {
	ID      int
	Class   SlotClass
	Vehicle *Vehicle
}

func (s SlotState) Occupied() bool {
	return s.Vehicle != nil
}

func NewSlot(id int, class SlotClass) *Slot {
	return &Slot{
		ID:    id,
		Class: class,
	}
}

func (s *Slot) Occupied() bool {
	return s.occupant != nil
}

func (s *Slot) Occupy(vehicle Vehicle) error {
	if s.occupant != nil {
		return fmt.Errorf("slot %d: %w by %s", s.ID, ErrSlotOccupied, s.occupant.Registration)
	}
	s.occupant = &vehicle
	return nil
}

// Release clears the slot and returns the vehicle that was in it.
func (s *Slot) Release() (Vehicle, error) {
	if s.occupant == nil {
		return Vehicle{}, fmt.Errorf("slot %d: %w", s.ID, ErrSlotNotOccupied)
	}
	vehicle := *s.occupant
	s.occupant = nil
	return vehicle, nil
}

func (s *Slot) State() SlotState {
	state := SlotState{ID: s.ID, Class: s.Class}
	if s.occupant != nil {
		v := *s.occupant
		state.Vehicle = &v
	}
	return state
}
