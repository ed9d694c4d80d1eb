package main

import (
	"encoding/json"
	"net/http"

	"github.com/eventro/eventro/go/dynamo"
	"github.com/eventro/eventro/go/service"
)

func (a *app) handleCreateShow(w http.ResponseWriter, r *http.Request) {
	if _, err := a.requireRole(r, dynamo.RoleHost, dynamo.RoleAdmin); err != nil {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	var req service.CreateShowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	show, err := a.shows.Create(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, show)
}

func (a *app) handleGetShow(w http.ResponseWriter, r *http.Request) {
	if _, err := a.requireAuth(r); err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	detail, err := a.shows.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (a *app) handleBlockShow(w http.ResponseWriter, r *http.Request) {
	if _, err := a.requireRole(r, dynamo.RoleHost, dynamo.RoleAdmin); err != nil {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	var req struct {
		IsBlocked bool `json:"is_blocked"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	if err := a.shows.Update(r.Context(), r.PathValue("id"), req.IsBlocked); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleEventShows lists an event's shows in a city (?city= required,
// ?date= optional for the date-scoped index).
func (a *app) handleEventShows(w http.ResponseWriter, r *http.Request) {
	caller, err := a.requireAuth(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	q := r.URL.Query()
	city := q.Get("city")
	if city == "" {
		writeError(w, http.StatusBadRequest, "city is required")
		return
	}

	shows, err := a.shows.EventShows(r.Context(), r.PathValue("id"), city, q.Get("date"), caller)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, shows)
}
