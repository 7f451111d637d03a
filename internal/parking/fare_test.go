package parking

import (
	"errors"
	"testing"
)

func TestFareTableFare(t *testing.T) {
	fares := DefaultFareTable()

	tests := []struct {
		name  string
		class VehicleClass
		entry int
		exit  int
		want  int
	}{
		{"medium seven hours", VehicleMedium, 3, 10, 140},
		{"same hour", VehicleMedium, 5, 5, 0},
		{"exit before entry clamps", VehicleMedium, 5, 3, 0},
		{"small one hour", VehicleSmall, 1, 2, 10},
		{"large two hours", VehicleLarge, 0, 2, 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fares.Fare(tt.class, tt.entry, tt.exit)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected fare %d, got %d", tt.want, got)
			}
		})
	}
}

func TestFareTableMissingRate(t *testing.T) {
	fares := FareTable{VehicleSmall: 5}

	if _, err := fares.Fare(VehicleLarge, 0, 1); !errors.Is(err, ErrNoFare) {
		t.Errorf("Expected ErrNoFare, got %v", err)
	}
}
