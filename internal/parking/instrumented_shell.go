package parking

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type InstrumentedShell struct {
	facility  *FacilityHolder
	telemetry *TelemetryProvider
	fares     FareTable
	logger    *slog.Logger
	scanner   *bufio.Scanner
	out       io.Writer
}

type ShellOption func(*InstrumentedShell)

// WithFacility starts the shell on an existing facility instead of waiting
// for create_facility.
func WithFacility(facility *InstrumentedFacility) ShellOption {
	return func(s *InstrumentedShell) {
		s.facility = NewFacilityHolder(facility)
	}
}

// WithFacilityHolder makes the shell serve, and rebuild into, a holder it
// shares with other front ends.
func WithFacilityHolder(holder *FacilityHolder) ShellOption {
	return func(s *InstrumentedShell) {
		s.facility = holder
	}
}

func WithFares(fares FareTable) ShellOption {
	return func(s *InstrumentedShell) {
		s.fares = fares
	}
}

func WithShellLogger(logger *slog.Logger) ShellOption {
	return func(s *InstrumentedShell) {
		s.logger = logger
	}
}

func NewInstrumentedShell(telemetry *TelemetryProvider, in io.Reader, out io.Writer, opts ...ShellOption) *InstrumentedShell {
	s := &InstrumentedShell{
		facility:  NewFacilityHolder(nil),
		telemetry: telemetry,
		fares:     DefaultFareTable(),
		logger:    slog.Default(),
		scanner:   bufio.NewScanner(in),
		out:       out,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InstrumentedShell) Run(ctx context.Context) {
	tracer := s.telemetry.Tracer()
	ctx, span := tracer.Start(ctx, "shell.run")
	defer span.End()

	span.AddEvent("shell_started")

	for ctx.Err() == nil {
		if !s.scanner.Scan() {
			break
		}

		input := strings.TrimSpace(s.scanner.Text())
		if input == "" {
			continue
		}

		// Create a new span for each command
		cmdCtx, cmdSpan := tracer.Start(ctx, "shell.process_command",
			trace.WithAttributes(attribute.String("command.input", input)))

		s.processCommand(cmdCtx, input)
		cmdSpan.End()
	}

	span.AddEvent("shell_ended")
}

func (s *InstrumentedShell) processCommand(ctx context.Context, input string) {
	span := trace.SpanFromContext(ctx)

	parts := strings.Fields(input)
	if len(parts) == 0 {
		return
	}

	command := parts[0]
	span.SetAttributes(attribute.String("command.name", command))

	switch command {
	case "create_facility":
		s.handleCreateFacility(ctx, parts)
	case "load_facility":
		s.handleLoadFacility(ctx, parts)
	case "park":
		s.handlePark(ctx, parts)
	case "leave":
		s.handleLeave(ctx, parts)
	case "status":
		s.handleStatus(ctx)
	case "available":
		s.handleAvailable(ctx, parts)
	case "locate":
		s.handleLocate(ctx, parts)
	case "ticket":
		s.handleTicket(ctx, parts)
	default:
		span.AddEvent("unknown_command", trace.WithAttributes(
			attribute.String("unknown_command", command),
		))
		s.println("Unknown command: " + command)
	}
}

func (s *InstrumentedShell) handleCreateFacility(ctx context.Context, parts []string) {
	_, span := s.telemetry.Tracer().Start(ctx, "shell.create_facility")
	defer span.End()

	if len(parts) != 4 {
		span.AddEvent("invalid_arguments")
		s.println("Usage: create_facility <small> <medium> <large>")
		return
	}

	counts := make([]int, 3)
	for i, arg := range parts[1:] {
		n, err := strconv.Atoi(arg)
		if err != nil || n < 0 {
			span.RecordError(fmt.Errorf("invalid slot count: %s", arg))
			s.println("Invalid slot count: " + arg)
			return
		}
		counts[i] = n
	}

	s.install(ctx, span, UniformInventory(counts[0], counts[1], counts[2]))
}

func (s *InstrumentedShell) handleLoadFacility(ctx context.Context, parts []string) {
	_, span := s.telemetry.Tracer().Start(ctx, "shell.load_facility")
	defer span.End()

	if len(parts) != 2 {
		span.AddEvent("invalid_arguments")
		s.println("Usage: load_facility <path>")
		return
	}

	inventory, err := LoadInventory(parts[1])
	if err != nil {
		span.RecordError(err)
		s.printf("Error: %s\n", err)
		return
	}

	s.install(ctx, span, inventory)
}

func (s *InstrumentedShell) install(ctx context.Context, span trace.Span, inventory []SlotSpec) {
	facility, err := NewFacility(inventory, s.fares, WithLogger(s.logger))
	if err != nil {
		span.RecordError(err)
		s.printf("Error creating facility: %s\n", err)
		return
	}

	instrumented, err := NewInstrumentedFacility(facility, s.telemetry)
	if err != nil {
		span.RecordError(err)
		s.printf("Error creating facility: %s\n", err)
		return
	}

	if err := s.facility.Replace(instrumented); err != nil {
		span.RecordError(err)
		s.logger.WarnContext(ctx, "close replaced facility", slog.String("error", err.Error()))
	}
	span.SetAttributes(attribute.Int("facility.capacity", facility.Capacity()))
	span.AddEvent("facility_created")
	s.logger.InfoContext(ctx, "facility created", slog.String("facility", facility.String()))
	s.printf("Created a facility with %d slots (small=%d, medium=%d, large=%d)\n",
		facility.Capacity(),
		facility.CapacityOf(SlotSmall),
		facility.CapacityOf(SlotMedium),
		facility.CapacityOf(SlotLarge),
	)
}

func (s *InstrumentedShell) handlePark(ctx context.Context, parts []string) {
	ctx, span := s.telemetry.Tracer().Start(ctx, "shell.park_command")
	defer span.End()

	facility := s.current(span)
	if facility == nil {
		return
	}

	if len(parts) != 4 {
		span.AddEvent("invalid_arguments")
		s.println("Usage: park <registration_number> <bike|car|truck> <hour>")
		return
	}

	class, err := ParseVehicleClass(parts[2])
	if err != nil {
		span.RecordError(err)
		s.println("Unknown vehicle type: " + parts[2])
		return
	}

	hour, err := strconv.Atoi(parts[3])
	if err != nil {
		span.RecordError(fmt.Errorf("invalid hour: %s", parts[3]))
		s.println("Invalid hour: " + parts[3])
		return
	}

	ticket, err := facility.Park(ctx, NewVehicle(parts[1], class), hour)
	switch {
	case errors.Is(err, ErrFacilityFull):
		span.AddEvent("parking_failed")
		s.println("Sorry, facility is full")
		return
	case err != nil:
		span.AddEvent("parking_failed")
		s.printf("Error: %s\n", err)
		return
	}

	span.AddEvent("parking_successful", trace.WithAttributes(
		attribute.Int("allocated_slot", ticket.SlotID),
	))
	s.printf("Allocated slot number: %d (%s), ticket %s\n", ticket.SlotID, ticket.SlotClass, ticket.ID)
}

func (s *InstrumentedShell) handleLeave(ctx context.Context, parts []string) {
	ctx, span := s.telemetry.Tracer().Start(ctx, "shell.leave_command")
	defer span.End()

	facility := s.current(span)
	if facility == nil {
		return
	}

	if len(parts) != 3 {
		span.AddEvent("invalid_arguments")
		s.println("Usage: leave <registration_number> <hour>")
		return
	}

	hour, err := strconv.Atoi(parts[2])
	if err != nil {
		span.RecordError(fmt.Errorf("invalid hour: %s", parts[2]))
		s.println("Invalid hour: " + parts[2])
		return
	}

	state, _ := facility.Facility.Locate(parts[1])

	fare, err := facility.Unpark(ctx, parts[1], hour)
	if errors.Is(err, ErrVehicleNotParked) {
		span.AddEvent("leave_failed")
		s.println("Not found")
		return
	}
	if err != nil {
		span.AddEvent("leave_failed")
		s.printf("Error: %s\n", err)
		return
	}

	span.AddEvent("leave_successful")
	s.printf("Slot number %d is free, fare %d\n", state.ID, fare)
}

func (s *InstrumentedShell) handleStatus(ctx context.Context) {
	ctx, span := s.telemetry.Tracer().Start(ctx, "shell.status_command")
	defer span.End()

	facility := s.current(span)
	if facility == nil {
		return
	}

	occupied := facility.Status(ctx)
	if len(occupied) == 0 {
		span.AddEvent("facility_empty")
		s.println("Facility is empty")
		return
	}

	span.SetAttributes(attribute.Int("occupied_slots_count", len(occupied)))

	s.println("Slot No.\tSize\tRegistration No\tType")
	for _, slot := range occupied {
		s.printf("%d\t\t%s\t%s\t%s\n", slot.ID, slot.Class, slot.Vehicle.Registration, slot.Vehicle.Class)
	}
}

func (s *InstrumentedShell) handleAvailable(ctx context.Context, parts []string) {
	ctx, span := s.telemetry.Tracer().Start(ctx, "shell.available_command")
	defer span.End()

	facility := s.current(span)
	if facility == nil {
		return
	}

	var classes []SlotClass
	for _, arg := range parts[1:] {
		class, err := ParseSlotClass(arg)
		if err != nil {
			span.RecordError(err)
			s.println("Unknown slot size: " + arg)
			return
		}
		classes = append(classes, class)
	}

	s.printf("%d\n", facility.Available(ctx, classes...))
}

func (s *InstrumentedShell) handleLocate(ctx context.Context, parts []string) {
	ctx, span := s.telemetry.Tracer().Start(ctx, "shell.locate_command")
	defer span.End()

	facility := s.current(span)
	if facility == nil {
		return
	}

	if len(parts) != 2 {
		span.AddEvent("invalid_arguments")
		s.println("Usage: locate <registration_number>")
		return
	}

	state, err := facility.Locate(ctx, parts[1])
	if err != nil {
		s.println("Not found")
		return
	}
	s.printf("%d\n", state.ID)
}

func (s *InstrumentedShell) handleTicket(ctx context.Context, parts []string) {
	_, span := s.telemetry.Tracer().Start(ctx, "shell.ticket_command")
	defer span.End()

	facility := s.current(span)
	if facility == nil {
		return
	}

	if len(parts) != 2 {
		span.AddEvent("invalid_arguments")
		s.println("Usage: ticket <registration_number>")
		return
	}

	ticket, err := facility.Ticket(parts[1])
	if err != nil {
		s.println("Not found")
		return
	}
	s.printf("%s\t%s\t%s\tslot %d\thour %d\n",
		ticket.ID, ticket.Vehicle.Registration, ticket.Vehicle.Class, ticket.SlotID, ticket.EntryHour)
}

func (s *InstrumentedShell) current(span trace.Span) *InstrumentedFacility {
	facility := s.facility.Current()
	if facility == nil {
		span.AddEvent("facility_not_created")
		s.println("Facility not created")
	}
	return facility
}

func (s *InstrumentedShell) println(msg string) {
	fmt.Fprintln(s.out, msg)
}

func (s *InstrumentedShell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}
