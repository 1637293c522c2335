package delonghi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Service exposes the appliance over HTTP. Reads go through the
// snapshot cache; writes dispatch datapoints and echo the raw API
// response.
type Service struct {
	client *Client
}

func NewService(client *Client) *Service {
	return &Service{client: client}
}

func (s *Service) Routes(r chi.Router) {
	r.Get("/device", s.handleDevice)
	r.Get("/state", s.handleState)
	r.Get("/properties", s.handleProperties)
	r.Post("/status", s.handleSetStatus)
	r.Post("/humidity", s.handleSetHumidity)
	r.Post("/mode", s.handleSetMode)
	r.Post("/swing", s.handleSetSwing)
	r.Post("/eco", s.handleSetEco)
}

func (s *Service) handleDevice(w http.ResponseWriter, r *http.Request) {
	info, err := s.client.DeviceInfo(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, info)
}

func (s *Service) handleState(w http.ResponseWriter, r *http.Request) {
	state, err := s.client.State(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, state)
}

func (s *Service) handleProperties(w http.ResponseWriter, r *http.Request) {
	properties, err := s.client.Properties(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, properties)
}

func (s *Service) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	status, err := StatusFromName(req.Status)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	result, err := s.client.SetStatus(r.Context(), status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeRaw(w, result)
}

func (s *Service) handleSetHumidity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Value *int `json:"value"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	if req.Value == nil {
		writeBadRequest(w, fmt.Errorf("missing value"))
		return
	}
	result, err := s.client.SetHumidity(r.Context(), *req.Value)
	if err != nil {
		writeError(w, err)
		return
	}
	writeRaw(w, result)
}

func (s *Service) handleSetMode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mode string `json:"mode"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	mode, err := ModeFromName(req.Mode)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	result, err := s.client.SetMode(r.Context(), mode)
	if err != nil {
		writeError(w, err)
		return
	}
	writeRaw(w, result)
}

func (s *Service) handleSetSwing(w http.ResponseWriter, r *http.Request) {
	s.handleToggle(w, r, s.client.SetSwing)
}

func (s *Service) handleSetEco(w http.ResponseWriter, r *http.Request) {
	s.handleToggle(w, r, s.client.SetEco)
}

func (s *Service) handleToggle(w http.ResponseWriter, r *http.Request, set func(context.Context, OffOnStatus) (json.RawMessage, error)) {
	var req struct {
		State string `json:"state"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	state, err := OffOnFromName(req.State)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	result, err := set(r.Context(), state)
	if err != nil {
		writeError(w, err)
		return
	}
	writeRaw(w, result)
}

func decodeBody(r *http.Request, out any) error {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, value any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(value); err != nil {
		log.Printf("delonghi: write response: %v", err)
	}
}

func writeRaw(w http.ResponseWriter, raw json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	if _, err := w.Write(raw); err != nil {
		log.Printf("delonghi: write response: %v", err)
	}
}

func writeBadRequest(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), http.StatusBadRequest)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	var apiErr HTTPStatusError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
		status = http.StatusUnauthorized
	}
	http.Error(w, err.Error(), status)
}
