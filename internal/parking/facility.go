package parking

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
)

// SlotSpec describes one slot of a facility's inventory.
type SlotSpec struct {
	ID    int
	Class SlotClass
}

// Facility owns the slots, the free pools, the occupancy map and the ticket
// registry. One mutex covers all of them so park and unpark run as single
// transactions.
type Facility struct {
	mu        sync.Mutex
	slots     []*Slot
	allocator *Allocator
	tickets   *TicketRegistry
	parked    map[string]*Slot
	logger    *slog.Logger
}

type FacilityOption func(*Facility)

func WithLogger(logger *slog.Logger) FacilityOption {
	return func(f *Facility) {
		if logger != nil {
			f.logger = logger
		}
	}
}

func NewFacility(inventory []SlotSpec, fares FareTable, opts ...FacilityOption) (*Facility, error) {
	if len(inventory) == 0 {
		return nil, ErrEmptyInventory
	}
	if fares == nil {
		fares = DefaultFareTable()
	}

	seen := make(map[int]struct{}, len(inventory))
	slots := make([]*Slot, 0, len(inventory))
	for _, spec := range inventory {
		if !spec.Class.Valid() {
			return nil, fmt.Errorf("slot %d: %w: %s", spec.ID, ErrUnknownSlotClass, spec.Class)
		}
		if _, dup := seen[spec.ID]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateSlot, spec.ID)
		}
		seen[spec.ID] = struct{}{}
		slots = append(slots, NewSlot(spec.ID, spec.Class))
	}

	f := &Facility{
		slots:     slots,
		allocator: NewAllocator(slots),
		tickets:   NewTicketRegistry(fares),
		parked:    make(map[string]*Slot),
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Park allocates a slot for the vehicle and issues a ticket. Nothing changes
// when it fails.
func (f *Facility) Park(vehicle Vehicle, entryHour int) (Ticket, error) {
	if err := vehicle.Validate(); err != nil {
		return Ticket{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	slot, err := f.allocator.Acquire(vehicle.Class)
	if err != nil {
		return Ticket{}, fmt.Errorf("park %s: %w", vehicle.Registration, ErrFacilityFull)
	}
	if slot.Class != requiredSlotClass[vehicle.Class] {
		f.logger.Debug("slot upgraded",
			slog.String("registration", vehicle.Registration),
			slog.String("vehicle_class", vehicle.Class.String()),
			slog.String("slot_class", slot.Class.String()),
			slog.Int("slot_id", slot.ID),
		)
	}

	if err := slot.Occupy(vehicle); err != nil {
		f.allocator.Restore(slot)
		return Ticket{}, err
	}

	ticket, err := f.tickets.Issue(vehicle, slot.State(), entryHour)
	if err != nil {
		// Occupy succeeded above, so the release cannot fail.
		_, _ = slot.Release()
		f.allocator.Restore(slot)
		f.logger.Debug("park rolled back",
			slog.String("registration", vehicle.Registration),
			slog.Int("slot_id", slot.ID),
			slog.String("error", err.Error()),
		)
		return Ticket{}, err
	}

	f.parked[vehicle.Registration] = slot
	return ticket, nil
}

// Unpark resolves the vehicle's ticket, frees its slot and returns the fare.
func (f *Facility) Unpark(registration string, exitHour int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	slot, ok := f.parked[registration]
	if !ok {
		return 0, fmt.Errorf("%s: %w", registration, ErrVehicleNotParked)
	}

	// Check the slot before retiring the ticket so a failure leaves both intact.
	if !slot.Occupied() {
		return 0, fmt.Errorf("unpark %s: slot %d: %w", registration, slot.ID, ErrSlotNotOccupied)
	}

	fare, err := f.tickets.Resolve(registration, exitHour)
	if err != nil {
		return 0, err
	}

	if _, err := slot.Release(); err != nil {
		return 0, err
	}
	f.allocator.Release(slot)
	delete(f.parked, registration)
	return fare, nil
}

// Available counts free slots of the given classes, or of every class when
// none is given.
func (f *Facility) Available(classes ...SlotClass) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(classes) == 0 {
		classes = slotClasses
	}
	n := 0
	for _, class := range classes {
		n += f.allocator.Free(class)
	}
	return n
}

func (f *Facility) Capacity() int {
	return len(f.slots)
}

func (f *Facility) Occupied() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.parked)
}

func (f *Facility) CapacityOf(class SlotClass) int {
	n := 0
	for _, slot := range f.slots {
		if slot.Class == class {
			n++
		}
	}
	return n
}

// Status returns the occupied slots ordered by slot id.
func (f *Facility) Status() []SlotState {
	f.mu.Lock()
	defer f.mu.Unlock()

	occupied := make([]SlotState, 0, len(f.parked))
	for _, slot := range f.parked {
		occupied = append(occupied, slot.State())
	}
	sort.Slice(occupied, func(i, j int) bool {
		return occupied[i].ID < occupied[j].ID
	})
	return occupied
}

// Slots returns every slot in inventory order.
func (f *Facility) Slots() []SlotState {
	f.mu.Lock()
	defer f.mu.Unlock()

	states := make([]SlotState, len(f.slots))
	for i, slot := range f.slots {
		states[i] = slot.State()
	}
	return states
}

func (f *Facility) Locate(registration string) (SlotState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	slot, ok := f.parked[registration]
	if !ok {
		return SlotState{}, fmt.Errorf("%s: %w", registration, ErrVehicleNotParked)
	}
	return slot.State(), nil
}

func (f *Facility) Ticket(registration string) (Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ticket, ok := f.tickets.Lookup(registration)
	if !ok {
		return Ticket{}, fmt.Errorf("%s: %w", registration, ErrTicketNotFound)
	}
	return ticket, nil
}

func (f *Facility) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "facility(%d slots", len(f.slots))
	for _, class := range slotClasses {
		fmt.Fprintf(&b, ", %s=%d", class, f.CapacityOf(class))
	}
	b.WriteString(")")
	return b.String()
}
