package parking

import (
	"fmt"
	"strings"
)

// VehicleClass is the size tier of a vehicle. The zero value is invalid.
type VehicleClass int

const (
	VehicleClassInvalid VehicleClass = iota

	VehicleSmall  // bike
	VehicleMedium // car
	VehicleLarge  // truck
)

// ParseVehicleClass accepts a class name or the vehicle type it stands for
// (bike, car, truck).
func ParseVehicleClass(s string) (VehicleClass, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "small", "bike":
		return VehicleSmall, nil
	case "medium", "car":
		return VehicleMedium, nil
	case "large", "truck":
		return VehicleLarge, nil
	default:
		return VehicleClassInvalid, fmt.Errorf("%w: %q", ErrUnknownVehicleClass, s)
	}
}

func (c VehicleClass) Valid() bool {
	return c >= VehicleSmall && c <= VehicleLarge
}

func (c VehicleClass) String() string {
	switch c {
	case VehicleSmall:
		return "small"
	case VehicleMedium:
		return "medium"
	case VehicleLarge:
		return "large"
	default:
		return fmt.Sprintf("VehicleClass(%d)", int(c))
	}
}

type Vehicle struct {
	Registration string
	Class        VehicleClass
}

func NewVehicle(registration string, class VehicleClass) Vehicle {
	return Vehicle{
		Registration: registration,
		Class:        class,
	}
}

func (v Vehicle) Validate() error {
	if strings.TrimSpace(v.Registration) == "" {
		return fmt.Errorf("%w: empty registration", ErrInvalidVehicle)
	}
	if !v.Class.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidVehicle, v.Class)
	}
	return nil
}
