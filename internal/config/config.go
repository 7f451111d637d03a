package config

import (
	"os"
	"strconv"

	"parking-facility/internal/parking"
)

type Config struct {
	Port            string
	Mode            string
	Environment     string
	OTelServiceName string
	OTelEndpoint    string

	// InventoryPath, when set, replaces the uniform slot counts below.
	InventoryPath string
	SmallSlots    int
	MediumSlots   int
	LargeSlots    int

	SmallFare  int
	MediumFare int
	LargeFare  int
}

func Load() *Config {
	return &Config{
		Port:            envOr("APP_PORT", "8080"),
		Mode:            envOr("APP_MODE", "cli"),
		Environment:     envOr("ENVIRONMENT", "development"),
		OTelServiceName: envOr("OTEL_SERVICE_NAME", "parking-facility"),
		OTelEndpoint:    envOr("OTEL_EXPORTER_OTLP_ENDPOINT", "http://localhost:4318"),
		InventoryPath:   os.Getenv("FACILITY_INVENTORY"),
		SmallSlots:      envOrInt("FACILITY_SMALL_SLOTS", 2),
		MediumSlots:     envOrInt("FACILITY_MEDIUM_SLOTS", 2),
		LargeSlots:      envOrInt("FACILITY_LARGE_SLOTS", 2),
		SmallFare:       envOrInt("FARE_SMALL", 10),
		MediumFare:      envOrInt("FARE_MEDIUM", 20),
		LargeFare:       envOrInt("FARE_LARGE", 30),
	}
}

func (c *Config) FareTable() parking.FareTable {
	return parking.FareTable{
		parking.VehicleSmall:  c.SmallFare,
		parking.VehicleMedium: c.MediumFare,
		parking.VehicleLarge:  c.LargeFare,
	}
}

func (c *Config) Inventory() ([]parking.SlotSpec, error) {
	if c.InventoryPath != "" {
		return parking.LoadInventory(c.InventoryPath)
	}
	return parking.UniformInventory(c.SmallSlots, c.MediumSlots, c.LargeSlots), nil
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func envOrInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
