package server

import (
	"context"
	"encoding/json"
	"net/http"

	"go.opentelemetry.io/otel/trace"
)

type Meta struct {
	TraceID   string `json:"trace_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Meta    *Meta  `json:"meta,omitempty"`
}

type CreateFacilityRequest struct {
	Small  int               `json:"small"`
	Medium int               `json:"medium"`
	Large  int               `json:"large"`
	Slots  []SlotSpecRequest `json:"slots,omitempty"`
}

type SlotSpecRequest struct {
	ID    int    `json:"id"`
	Class string `json:"class"`
}

type ParkVehicleRequest struct {
	Registration string `json:"registration"`
	Type         string `json:"type"`
	EntryHour    *int   `json:"entry_hour"`
}

type UnparkVehicleRequest struct {
	Registration string `json:"registration"`
	ExitHour     *int   `json:"exit_hour"`
}

type TicketResponse struct {
	TicketID     string `json:"ticket_id"`
	Registration string `json:"registration"`
	VehicleClass string `json:"vehicle_class"`
	EntryHour    int    `json:"entry_hour"`
	SlotID       int    `json:"slot_id"`
	SlotClass    string `json:"slot_class"`
}

type UnparkResponse struct {
	Registration string `json:"registration"`
	ExitHour     int    `json:"exit_hour"`
	Fare         int    `json:"fare"`
}

type SlotStatus struct {
	SlotID       int    `json:"slot_id"`
	Class        string `json:"class"`
	Occupied     bool   `json:"occupied"`
	Registration string `json:"registration,omitempty"`
	VehicleClass string `json:"vehicle_class,omitempty"`
}

type StatusResponse struct {
	Capacity  int            `json:"capacity"`
	Occupied  int            `json:"occupied"`
	Available int            `json:"available"`
	Free      map[string]int `json:"free"`
	Slots     []SlotStatus   `json:"slots"`
}

type AvailableResponse struct {
	Classes   []string `json:"classes"`
	Available int      `json:"available"`
}

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func extractMeta(ctx context.Context) *Meta {
	meta := &Meta{}

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().HasTraceID() {
		meta.TraceID = span.SpanContext().TraceID().String()
	}

	if reqID, ok := ctx.Value(RequestIDKey).(string); ok {
		meta.RequestID = reqID
	}

	return meta
}

func WriteSuccess(ctx context.Context, w http.ResponseWriter, message string, data any) {
	WriteJSON(w, http.StatusOK, Response{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    extractMeta(ctx),
	})
}

func WriteError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Response{
		Success: false,
		Error:   message,
		Meta:    extractMeta(ctx),
	})
}
