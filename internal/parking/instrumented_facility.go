package parking

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

type InstrumentedFacility struct {
	*Facility
	telemetry *TelemetryProvider

	// Metrics
	parkingOperations   metric.Int64Counter
	unparkingOperations metric.Int64Counter
	occupancyGauge      metric.Int64ObservableGauge
	totalSlotsGauge     metric.Int64ObservableGauge
	operationDuration   metric.Float64Histogram
	fareCollected       metric.Int64Counter
	slotUpgrades        metric.Int64Counter

	gauges metric.Registration
}

func NewInstrumentedFacility(facility *Facility, telemetry *TelemetryProvider) (*InstrumentedFacility, error) {
	meter := telemetry.Meter()

	parkingOperations, err := meter.Int64Counter("parking_operations_total",
		metric.WithDescription("Total number of parking operations"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	unparkingOperations, err := meter.Int64Counter("unparking_operations_total",
		metric.WithDescription("Total number of unparking operations"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	occupancyGauge, err := meter.Int64ObservableGauge("facility_occupancy",
		metric.WithDescription("Current number of occupied slots"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	totalSlotsGauge, err := meter.Int64ObservableGauge("facility_total_slots",
		metric.WithDescription("Total number of slots"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	operationDuration, err := meter.Float64Histogram("operation_duration_seconds",
		metric.WithDescription("Duration of facility operations"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	fareCollected, err := meter.Int64Counter("fare_collected_total",
		metric.WithDescription("Sum of fares charged on exit"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	slotUpgrades, err := meter.Int64Counter("slot_upgrades_total",
		metric.WithDescription("Vehicles parked in a slot larger than their class requires"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	ifc := &InstrumentedFacility{
		Facility:            facility,
		telemetry:           telemetry,
		parkingOperations:   parkingOperations,
		unparkingOperations: unparkingOperations,
		occupancyGauge:      occupancyGauge,
		totalSlotsGauge:     totalSlotsGauge,
		operationDuration:   operationDuration,
		fareCollected:       fareCollected,
		slotUpgrades:        slotUpgrades,
	}

	// The gauges read the wrapped facility on every collection. Close stops
	// that once the facility is replaced.
	ifc.gauges, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		o.ObserveInt64(occupancyGauge, int64(facility.Occupied()))
		for _, class := range slotClasses {
			o.ObserveInt64(totalSlotsGauge, int64(facility.CapacityOf(class)),
				metric.WithAttributes(attribute.String("slot_class", class.String())))
		}
		return nil
	}, occupancyGauge, totalSlotsGauge)
	if err != nil {
		return nil, err
	}

	return ifc, nil
}

// Close detaches the facility from the occupancy and capacity gauges.
func (ifc *InstrumentedFacility) Close() error {
	return ifc.gauges.Unregister()
}

func (ifc *InstrumentedFacility) Park(ctx context.Context, vehicle Vehicle, entryHour int) (Ticket, error) {
	ctx, span := ifc.telemetry.Tracer().Start(ctx, "facility.park",
		trace.WithAttributes(
			attribute.String("vehicle.registration", vehicle.Registration),
			attribute.String("vehicle.class", vehicle.Class.String()),
			attribute.Int("ticket.entry_hour", entryHour),
		))
	defer span.End()

	start := time.Now()

	span.AddEvent("acquiring_slot")

	ticket, err := ifc.Facility.Park(vehicle, entryHour)

	duration := time.Since(start).Seconds()

	labels := []attribute.KeyValue{
		attribute.String("operation", "park"),
		attribute.String("vehicle_class", vehicle.Class.String()),
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		labels = append(labels, attribute.String("status", "failed"))
		ifc.parkingOperations.Add(ctx, 1, metric.WithAttributes(labels...))
	} else {
		upgraded := ticket.SlotClass != requiredSlotClass[vehicle.Class]
		labels = append(labels,
			attribute.String("status", "success"),
			attribute.String("slot_class", ticket.SlotClass.String()),
		)
		span.SetAttributes(
			attribute.String("ticket.id", ticket.ID),
			attribute.Int("slot.id", ticket.SlotID),
			attribute.String("slot.class", ticket.SlotClass.String()),
			attribute.Bool("slot.upgraded", upgraded),
		)
		span.AddEvent("slot_allocated", trace.WithAttributes(
			attribute.Int("slot_id", ticket.SlotID),
		))

		ifc.parkingOperations.Add(ctx, 1, metric.WithAttributes(labels...))
		if upgraded {
			ifc.slotUpgrades.Add(ctx, 1, metric.WithAttributes(
				attribute.String("vehicle_class", vehicle.Class.String()),
				attribute.String("slot_class", ticket.SlotClass.String()),
			))
		}
	}

	ifc.operationDuration.Record(ctx, duration, metric.WithAttributes(labels...))

	return ticket, err
}

func (ifc *InstrumentedFacility) Unpark(ctx context.Context, registration string, exitHour int) (int, error) {
	ctx, span := ifc.telemetry.Tracer().Start(ctx, "facility.unpark",
		trace.WithAttributes(
			attribute.String("vehicle.registration", registration),
			attribute.Int("ticket.exit_hour", exitHour),
		))
	defer span.End()

	start := time.Now()

	// Capture the ticket before it is retired so the labels carry the class.
	ticket, lookupErr := ifc.Facility.Ticket(registration)

	span.AddEvent("resolving_ticket")

	fare, err := ifc.Facility.Unpark(registration, exitHour)

	duration := time.Since(start).Seconds()

	labels := []attribute.KeyValue{
		attribute.String("operation", "unpark"),
	}
	if lookupErr == nil {
		labels = append(labels, attribute.String("vehicle_class", ticket.Vehicle.Class.String()))
		span.SetAttributes(
			attribute.String("ticket.id", ticket.ID),
			attribute.Int("slot.id", ticket.SlotID),
		)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		labels = append(labels, attribute.String("status", "failed"))
	} else {
		labels = append(labels, attribute.String("status", "success"))
		span.SetAttributes(attribute.Int("ticket.fare", fare))
		span.AddEvent("slot_released")
		ifc.fareCollected.Add(ctx, int64(fare), metric.WithAttributes(labels[1:]...))
	}

	ifc.unparkingOperations.Add(ctx, 1, metric.WithAttributes(labels...))
	ifc.operationDuration.Record(ctx, duration, metric.WithAttributes(labels...))

	return fare, err
}

func (ifc *InstrumentedFacility) Status(ctx context.Context) []SlotState {
	ctx, span := ifc.telemetry.Tracer().Start(ctx, "facility.status")
	defer span.End()

	start := time.Now()

	occupied := ifc.Facility.Status()

	span.SetAttributes(
		attribute.Int("occupied_slots_count", len(occupied)),
		attribute.Int("total_capacity", ifc.Capacity()),
	)

	ifc.operationDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
		attribute.String("operation", "status"),
		attribute.String("status", "success"),
	))

	return occupied
}

func (ifc *InstrumentedFacility) Available(ctx context.Context, classes ...SlotClass) int {
	ctx, span := ifc.telemetry.Tracer().Start(ctx, "facility.available")
	defer span.End()

	start := time.Now()

	names := make([]string, len(classes))
	for i, class := range classes {
		names[i] = class.String()
	}
	n := ifc.Facility.Available(classes...)

	span.SetAttributes(
		attribute.StringSlice("slot.classes", names),
		attribute.Int("available_slots", n),
	)

	ifc.operationDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
		attribute.String("operation", "available"),
		attribute.String("status", "success"),
	))

	return n
}

func (ifc *InstrumentedFacility) Locate(ctx context.Context, registration string) (SlotState, error) {
	ctx, span := ifc.telemetry.Tracer().Start(ctx, "facility.locate",
		trace.WithAttributes(
			attribute.String("vehicle.registration", registration),
		))
	defer span.End()

	start := time.Now()

	state, err := ifc.Facility.Locate(registration)

	labels := []attribute.KeyValue{
		attribute.String("operation", "locate"),
	}

	if err != nil {
		span.AddEvent("vehicle_not_found")
		labels = append(labels, attribute.String("status", "not_found"))
	} else {
		span.SetAttributes(attribute.Int("slot.id", state.ID))
		span.AddEvent("vehicle_found", trace.WithAttributes(
			attribute.Int("slot_id", state.ID),
		))
		labels = append(labels, attribute.String("status", "found"))
	}

	ifc.operationDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(labels...))

	return state, err
}
