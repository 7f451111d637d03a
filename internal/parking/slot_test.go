package parking

import (
	"errors"
	"testing"
)

func TestNewSlot(t *testing.T) {
	slot := NewSlot(1, SlotMedium)

	if slot.ID != 1 {
		t.Errorf("Expected slot id 1, got %d", slot.ID)
	}

	if slot.Class != SlotMedium {
		t.Errorf("Expected slot class medium, got %s", slot.Class)
	}

	if slot.Occupied() {
		t.Error("Expected new slot to be unoccupied")
	}

	if slot.State().Vehicle != nil {
		t.Error("Expected new slot to have no vehicle")
	}
}

func TestSlotOccupy(t *testing.T) {
	slot := NewSlot(1, SlotSmall)
	vehicle := NewVehicle("KA01HH1234", VehicleSmall)

	if err := slot.Occupy(vehicle); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !slot.Occupied() {
		t.Error("Expected slot to be occupied after parking")
	}

	if got := slot.State().Vehicle; got == nil || *got != vehicle {
		t.Error("Expected slot to contain the parked vehicle")
	}

	err := slot.Occupy(NewVehicle("KA01HH9999", VehicleSmall))
	if !errors.Is(err, ErrSlotOccupied) {
		t.Errorf("Expected ErrSlotOccupied, got %v", err)
	}
	if got := slot.State().Vehicle; got.Registration != "KA01HH1234" {
		t.Errorf("Expected occupant to be unchanged, got %s", got.Registration)
	}
}

func TestSlotRelease(t *testing.T) {
	slot := NewSlot(1, SlotLarge)
	vehicle := NewVehicle("KA01HH1234", VehicleLarge)

	if err := slot.Occupy(vehicle); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	leaving, err := slot.Release()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if slot.Occupied() {
		t.Error("Expected slot to be unoccupied after leaving")
	}

	if leaving != vehicle {
		t.Error("Expected leaving vehicle to be the same as parked vehicle")
	}

	if _, err := slot.Release(); !errors.Is(err, ErrSlotNotOccupied) {
		t.Errorf("Expected ErrSlotNotOccupied on empty slot, got %v", err)
	}
}

func TestSlotStateIsACopy(t *testing.T) {
	slot := NewSlot(7, SlotSmall)
	if err := slot.Occupy(NewVehicle("KA01", VehicleSmall)); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	state := slot.State()
	state.Vehicle.Registration = "CHANGED"

	if got := slot.State().Vehicle.Registration; got != "KA01" {
		t.Errorf("Expected snapshot mutation not to reach the slot, got %s", got)
	}
}

func TestParseSlotClass(t *testing.T) {
	for _, class := range SlotClasses() {
		got, err := ParseSlotClass(class.String())
		if err != nil || got != class {
			t.Errorf("ParseSlotClass(%q) = %s, %v", class.String(), got, err)
		}
	}
	if _, err := ParseSlotClass("car"); !errors.Is(err, ErrUnknownSlotClass) {
		t.Errorf("Expected ErrUnknownSlotClass, got %v", err)
	}
}
