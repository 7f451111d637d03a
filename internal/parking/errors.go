package parking

import "errors"

var (
	ErrFacilityFull          = errors.New("facility is full")
	ErrVehicleNotParked      = errors.New("vehicle not parked")
	ErrTicketNotFound        = errors.New("ticket not found")
	ErrDuplicateActiveTicket = errors.New("vehicle already has an active ticket")
	ErrSlotOccupied          = errors.New("slot already occupied")
	ErrSlotNotOccupied       = errors.New("slot not occupied")
	ErrNoSlotAvailable       = errors.New("no slot available")
	ErrUnknownVehicleClass   = errors.New("unknown vehicle class")
	ErrUnknownSlotClass      = errors.New("unknown slot class")
	ErrInvalidVehicle        = errors.New("invalid vehicle")
	ErrDuplicateSlot         = errors.New("duplicate slot id")
	ErrNoFare                = errors.New("no fare for vehicle class")
	ErrEmptyInventory        = errors.New("empty slot inventory")
)
