package parking

import (
	"fmt"

	"github.com/google/uuid"
)

type Ticket struct {
	ID        string
	Vehicle   Vehicle
	EntryHour int
	SlotID    int
	SlotClass SlotClass
}

// TicketRegistry holds at most one active ticket per registration. It is not
// safe for concurrent use; Facility serializes access.
type TicketRegistry struct {
	fares   FareTable
	tickets map[string]Ticket
	newID   func() string
}

func NewTicketRegistry(fares FareTable) *TicketRegistry {
	return &TicketRegistry{
		fares:   fares,
		tickets: make(map[string]Ticket),
		newID:   func() string { return uuid.New().String() },
	}
}

func (r *TicketRegistry) Issue(vehicle Vehicle, slot SlotState, entryHour int) (Ticket, error) {
	if existing, ok := r.tickets[vehicle.Registration]; ok {
		return Ticket{}, fmt.Errorf("%s: %w (%s)", vehicle.Registration, ErrDuplicateActiveTicket, existing.ID)
	}
	if _, err := r.fares.Rate(vehicle.Class); err != nil {
		return Ticket{}, err
	}

	ticket := Ticket{
		ID:        r.newID(),
		Vehicle:   vehicle,
		EntryHour: entryHour,
		SlotID:    slot.ID,
		SlotClass: slot.Class,
	}
	r.tickets[vehicle.Registration] = ticket
	return ticket, nil
}

// Resolve computes the fare for the active ticket and retires it.
func (r *TicketRegistry) Resolve(registration string, exitHour int) (int, error) {
	ticket, ok := r.tickets[registration]
	if !ok {
		return 0, fmt.Errorf("%s: %w", registration, ErrTicketNotFound)
	}

	fare, err := r.fares.Fare(ticket.Vehicle.Class, ticket.EntryHour, exitHour)
	if err != nil {
		return 0, err
	}

	delete(r.tickets, registration)
	return fare, nil
}

func (r *TicketRegistry) Lookup(registration string) (Ticket, bool) {
	ticket, ok := r.tickets[registration]
	return ticket, ok
}

func (r *TicketRegistry) Active() int {
	return len(r.tickets)
}
