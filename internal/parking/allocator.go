package parking

import "fmt"

// requiredSlotClass is the exact-fit slot class for each vehicle class.
var requiredSlotClass = map[VehicleClass]SlotClass{
	VehicleSmall:  SlotSmall,
	VehicleMedium: SlotMedium,
	VehicleLarge:  SlotLarge,
}

// Allocator keeps one FIFO free list per slot class.
type Allocator struct {
	free map[SlotClass][]*Slot
}

func NewAllocator(slots []*Slot) *Allocator {
	a := &Allocator{free: make(map[SlotClass][]*Slot, len(slotClasses))}
	for _, class := range slotClasses {
		a.free[class] = nil
	}
	for _, slot := range slots {
		a.free[slot.Class] = append(a.free[slot.Class], slot)
	}
	return a
}

// Acquire pops a free slot for the vehicle class. It tries the exact-fit
// class first and then each larger class in order.
func (a *Allocator) Acquire(class VehicleClass) (*Slot, error) {
	required, ok := requiredSlotClass[class]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownVehicleClass, class)
	}

	for _, candidate := range upgradePath(required) {
		pool := a.free[candidate]
		if len(pool) == 0 {
			continue
		}
		slot := pool[0]
		pool[0] = nil
		a.free[candidate] = pool[1:]
		return slot, nil
	}
	return nil, fmt.Errorf("%w for %s vehicle", ErrNoSlotAvailable, class)
}

// Release returns the slot to the pool of its own class, whatever the class
// of the vehicle it served.
func (a *Allocator) Release(slot *Slot) {
	a.free[slot.Class] = append(a.free[slot.Class], slot)
}

// Restore undoes an Acquire: the slot goes back to the head of its pool.
func (a *Allocator) Restore(slot *Slot) {
	pool := a.free[slot.Class]
	a.free[slot.Class] = append([]*Slot{slot}, pool...)
}

func (a *Allocator) Free(class SlotClass) int {
	return len(a.free[class])
}

// peek reports the ids in a pool, head first.
func (a *Allocator) peek(class SlotClass) []int {
	ids := make([]int, 0, len(a.free[class]))
	for _, slot := range a.free[class] {
		ids = append(ids, slot.ID)
	}
	return ids
}

func upgradePath(from SlotClass) []SlotClass {
	for i, class := range slotClasses {
		if class == from {
			return slotClasses[i:]
		}
	}
	return nil
}
