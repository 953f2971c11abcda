package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/khanrumi/location-picker/internal/location"
	"github.com/khanrumi/location-picker/internal/model"
)

const locationSavedMessage = "Location retrieved and saved successfully"

type handlers struct {
	svc      LocationService
	resolver Resolver
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// getAddressData serves every state, city and neighborhood for the form.
func (h *handlers) getAddressData(w http.ResponseWriter, r *http.Request) {
	res := h.svc.Snapshot(r.Context())
	if !res.Success {
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeJSON(w, http.StatusOK, res.Data)
}

// getLocation geocodes ?query= and stores the result.
func (h *handlers) getLocation(w http.ResponseWriter, r *http.Request) {
	res := h.resolver.Resolve(r.Context(), r.URL.Query().Get("query"))
	if res.Success {
		writeJSON(w, http.StatusOK, map[string]any{
			"message": locationSavedMessage,
			"locData": res.Data,
		})
		return
	}

	err := res.Err()
	switch {
	case errors.Is(err, model.ErrValidation), errors.Is(err, model.ErrIncompleteData):
		writeError(w, http.StatusBadRequest, "Incomplete location data")
	case errors.Is(err, model.ErrNotFound):
		writeError(w, http.StatusNotFound, "Location not found")
	default:
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
	}
}

func (h *handlers) listStates(w http.ResponseWriter, r *http.Request) {
	writeResult(w, http.StatusOK, h.svc.ListStates(r.Context()))
}

func (h *handlers) listCities(w http.ResponseWriter, r *http.Request) {
	stateID, ok := pathID(w, r, "stateID")
	if !ok {
		return
	}
	writeResult(w, http.StatusOK, h.svc.ListCitiesByState(r.Context(), stateID))
}

func (h *handlers) listNeighborhoods(w http.ResponseWriter, r *http.Request) {
	cityID, ok := pathID(w, r, "cityID")
	if !ok {
		return
	}
	writeResult(w, http.StatusOK, h.svc.ListNeighborhoodsByCity(r.Context(), cityID))
}

func (h *handlers) addState(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	writeResult(w, http.StatusCreated, h.svc.AddState(r.Context(), req.Name))
}

func (h *handlers) addCity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string `json:"name"`
		StateID int64  `json:"stateId"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	writeResult(w, http.StatusCreated, h.svc.AddCity(r.Context(), req.Name, req.StateID))
}

func (h *handlers) addNeighborhood(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name   string `json:"name"`
		CityID int64  `json:"cityId"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	writeResult(w, http.StatusCreated, h.svc.AddNeighborhood(r.Context(), req.Name, req.CityID))
}

func (h *handlers) saveAddress(w http.ResponseWriter, r *http.Request) {
	var in model.AddressInput
	if !decodeBody(w, r, &in) {
		return
	}
	writeResult(w, http.StatusCreated, h.svc.SaveAddress(r.Context(), in))
}

// statusFor maps a failed result's error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrReferential):
		return http.StatusUnprocessableEntity
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeResult[T any](w http.ResponseWriter, okStatus int, res location.Result[T]) {
	if !res.Success {
		writeJSON(w, statusFor(res.Err()), res)
		return
	}
	writeJSON(w, okStatus, res)
}

func pathID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, location.Result[any]{Error: "invalid " + param})
		return 0, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, location.Result[any]{Error: "invalid request body"})
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("api: encode response", zap.Error(err))
	}
}
