package parking

import "sync"

// FacilityHolder is the facility currently in service. The shell and the
// HTTP handler share one holder so a rebuild from either side is seen by
// both.
type FacilityHolder struct {
	mu       sync.RWMutex
	facility *InstrumentedFacility
}

// NewFacilityHolder returns a holder serving facility, which may be nil.
func NewFacilityHolder(facility *InstrumentedFacility) *FacilityHolder {
	return &FacilityHolder{facility: facility}
}

// Current returns the facility in service, or nil if none was created yet.
func (h *FacilityHolder) Current() *InstrumentedFacility {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.facility
}

// Replace puts next in service and closes the facility it displaces.
func (h *FacilityHolder) Replace(next *InstrumentedFacility) error {
	h.mu.Lock()
	prev := h.facility
	h.facility = next
	h.mu.Unlock()

	if prev == nil || prev == next {
		return nil
	}
	return prev.Close()
}
