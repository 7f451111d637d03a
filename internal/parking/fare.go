package parking

import "fmt"

// FareTable maps a vehicle class to its hourly rate.
type FareTable map[VehicleClass]int

func DefaultFareTable() FareTable {
	return FareTable{
		VehicleSmall:  10,
		VehicleMedium: 20,
		VehicleLarge:  30,
	}
}

func (ft FareTable) Rate(class VehicleClass) (int, error) {
	rate, ok := ft[class]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNoFare, class)
	}
	return rate, nil
}

// Fare charges whole hours between entry and exit. An exit before entry is
// charged as zero hours.
func (ft FareTable) Fare(class VehicleClass, entryHour, exitHour int) (int, error) {
	rate, err := ft.Rate(class)
	if err != nil {
		return 0, err
	}
	return max(0, exitHour-entryHour) * rate, nil
}
