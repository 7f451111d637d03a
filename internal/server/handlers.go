package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"parking-facility/internal/logging"
	"parking-facility/internal/parking"
)

type Handler struct {
	serviceName string
	telemetry   *parking.TelemetryProvider
	fares       parking.FareTable
	facilities  *parking.FacilityHolder
}

// NewHandler serves whatever facility the holder has in service. Requests
// fail until one is created when the holder is empty.
func NewHandler(serviceName string, telemetry *parking.TelemetryProvider, fares parking.FareTable, facilities *parking.FacilityHolder) *Handler {
	return &Handler{
		serviceName: serviceName,
		telemetry:   telemetry,
		fares:       fares,
		facilities:  facilities,
	}
}

func (h *Handler) current() *parking.InstrumentedFacility {
	return h.facilities.Current()
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"service": h.serviceName,
		"meta":    extractMeta(r.Context()),
	})
}

func (h *Handler) CreateFacility(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req CreateFacilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	inventory, err := req.inventory()
	if err != nil {
		WriteError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	facility, err := parking.NewFacility(inventory, h.fares, parking.WithLogger(logging.Logger()))
	if err != nil {
		WriteError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	instrumented, err := parking.NewInstrumentedFacility(facility, h.telemetry)
	if err != nil {
		logging.Error(ctx, "instrument facility", slog.String("error", err.Error()))
		WriteError(ctx, w, http.StatusInternalServerError, "Failed to create facility")
		return
	}

	if err := h.facilities.Replace(instrumented); err != nil {
		logging.Warn(ctx, "close replaced facility", slog.String("error", err.Error()))
	}

	logging.ForFacility(ctx, facility).InfoContext(ctx, "facility created")

	WriteSuccess(ctx, w, "Facility created successfully", map[string]any{
		"capacity": facility.Capacity(),
		"small":    facility.CapacityOf(parking.SlotSmall),
		"medium":   facility.CapacityOf(parking.SlotMedium),
		"large":    facility.CapacityOf(parking.SlotLarge),
	})
}

func (req CreateFacilityRequest) inventory() ([]parking.SlotSpec, error) {
	if len(req.Slots) == 0 {
		if req.Small < 0 || req.Medium < 0 || req.Large < 0 {
			return nil, errors.New("slot counts must not be negative")
		}
		return parking.UniformInventory(req.Small, req.Medium, req.Large), nil
	}

	specs := make([]parking.SlotSpec, 0, len(req.Slots))
	for _, slot := range req.Slots {
		class, err := parking.ParseSlotClass(slot.Class)
		if err != nil {
			return nil, err
		}
		specs = append(specs, parking.SlotSpec{ID: slot.ID, Class: class})
	}
	return specs, nil
}

func (h *Handler) ParkVehicle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	facility := h.current()
	if facility == nil {
		WriteError(ctx, w, http.StatusBadRequest, "Facility not created. Create facility first")
		return
	}

	var req ParkVehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Registration == "" || req.Type == "" || req.EntryHour == nil {
		WriteError(ctx, w, http.StatusBadRequest, "Registration, type and entry_hour are required")
		return
	}

	class, err := parking.ParseVehicleClass(req.Type)
	if err != nil {
		WriteError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	ticket, err := facility.Park(ctx, parking.NewVehicle(req.Registration, class), *req.EntryHour)
	if err != nil {
		WriteError(ctx, w, statusFor(err), err.Error())
		return
	}

	WriteSuccess(ctx, w, "Vehicle parked successfully", TicketResponse{
		TicketID:     ticket.ID,
		Registration: ticket.Vehicle.Registration,
		VehicleClass: ticket.Vehicle.Class.String(),
		EntryHour:    ticket.EntryHour,
		SlotID:       ticket.SlotID,
		SlotClass:    ticket.SlotClass.String(),
	})
}

func (h *Handler) UnparkVehicle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	facility := h.current()
	if facility == nil {
		WriteError(ctx, w, http.StatusBadRequest, "Facility not created. Create facility first")
		return
	}

	var req UnparkVehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Registration == "" || req.ExitHour == nil {
		WriteError(ctx, w, http.StatusBadRequest, "Registration and exit_hour are required")
		return
	}

	fare, err := facility.Unpark(ctx, req.Registration, *req.ExitHour)
	if err != nil {
		WriteError(ctx, w, statusFor(err), err.Error())
		return
	}

	WriteSuccess(ctx, w, "Vehicle unparked successfully", UnparkResponse{
		Registration: req.Registration,
		ExitHour:     *req.ExitHour,
		Fare:         fare,
	})
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	facility := h.current()
	if facility == nil {
		WriteError(ctx, w, http.StatusBadRequest, "Facility not created. Create facility first")
		return
	}

	occupied := facility.Status(ctx)

	slots := make([]SlotStatus, 0, facility.Capacity())
	for _, state := range facility.Slots() {
		slot := SlotStatus{
			SlotID:   state.ID,
			Class:    state.Class.String(),
			Occupied: state.Occupied(),
		}
		if state.Vehicle != nil {
			slot.Registration = state.Vehicle.Registration
			slot.VehicleClass = state.Vehicle.Class.String()
		}
		slots = append(slots, slot)
	}

	free := make(map[string]int)
	for _, class := range parking.SlotClasses() {
		free[class.String()] = facility.Facility.Available(class)
	}

	WriteSuccess(ctx, w, "Status retrieved successfully", StatusResponse{
		Capacity:  facility.Capacity(),
		Occupied:  len(occupied),
		Available: facility.Capacity() - len(occupied),
		Free:      free,
		Slots:     slots,
	})
}

func (h *Handler) GetAvailable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	facility := h.current()
	if facility == nil {
		WriteError(ctx, w, http.StatusBadRequest, "Facility not created. Create facility first")
		return
	}

	var classes []parking.SlotClass
	names := []string{}
	if raw := r.URL.Query().Get("class"); raw != "" {
		for _, name := range strings.Split(raw, ",") {
			class, err := parking.ParseSlotClass(name)
			if err != nil {
				WriteError(ctx, w, http.StatusBadRequest, err.Error())
				return
			}
			classes = append(classes, class)
			names = append(names, class.String())
		}
	} else {
		for _, class := range parking.SlotClasses() {
			names = append(names, class.String())
		}
	}

	WriteSuccess(ctx, w, "Availability retrieved successfully", AvailableResponse{
		Classes:   names,
		Available: facility.Available(ctx, classes...),
	})
}

func (h *Handler) FindByRegistration(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	facility := h.current()
	if facility == nil {
		WriteError(ctx, w, http.StatusBadRequest, "Facility not created. Create facility first")
		return
	}

	registration := chi.URLParam(r, "registration")
	if registration == "" {
		WriteError(ctx, w, http.StatusBadRequest, "Registration number is required")
		return
	}

	if _, err := facility.Locate(ctx, registration); err != nil {
		WriteError(ctx, w, http.StatusNotFound, "Vehicle not found")
		return
	}

	ticket, err := facility.Ticket(registration)
	if err != nil {
		WriteError(ctx, w, statusFor(err), err.Error())
		return
	}

	WriteSuccess(ctx, w, "Vehicle found", TicketResponse{
		TicketID:     ticket.ID,
		Registration: ticket.Vehicle.Registration,
		VehicleClass: ticket.Vehicle.Class.String(),
		EntryHour:    ticket.EntryHour,
		SlotID:       ticket.SlotID,
		SlotClass:    ticket.SlotClass.String(),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, parking.ErrFacilityFull),
		errors.Is(err, parking.ErrDuplicateActiveTicket):
		return http.StatusConflict
	case errors.Is(err, parking.ErrVehicleNotParked),
		errors.Is(err, parking.ErrTicketNotFound):
		return http.StatusNotFound
	case errors.Is(err, parking.ErrInvalidVehicle),
		errors.Is(err, parking.ErrUnknownVehicleClass),
		errors.Is(err, parking.ErrNoFare):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
