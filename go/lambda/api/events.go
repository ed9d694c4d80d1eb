package main

import (
	"encoding/json"
	"net/http"

	"github.com/eventro/eventro/go/dynamo"
	"github.com/eventro/eventro/go/service"
)

func (a *app) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	if _, err := a.requireRole(r, dynamo.RoleHost, dynamo.RoleAdmin); err != nil {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	var req service.CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	event, err := a.events.Create(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

func (a *app) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	caller, err := a.requireAuth(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	event, err := a.events.GetByID(r.Context(), r.PathValue("id"), caller.Role)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// handleBrowseEvents serves both browse modes: ?name= searches by name
// prefix (scoped to ?city= for customers), otherwise ?city= lists a city's
// events. Admins may pass ?is_blocked= to narrow the city listing.
func (a *app) handleBrowseEvents(w http.ResponseWriter, r *http.Request) {
	caller, err := a.requireAuth(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	q := r.URL.Query()
	city := q.Get("city")
	name := q.Get("name")

	var events []dynamo.Event
	switch {
	case name != "":
		events, err = a.events.BrowseByName(r.Context(), name, city, caller.Role)
	case city != "":
		var blocked *bool
		if v := q.Get("is_blocked"); v != "" {
			b := v == "true"
			blocked = &b
		}
		events, err = a.events.BrowseByCity(r.Context(), city, blocked, caller.Role)
	default:
		writeError(w, http.StatusBadRequest, "city or name is required")
		return
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (a *app) handleHostEvents(w http.ResponseWriter, r *http.Request) {
	caller, err := a.requireRole(r, dynamo.RoleHost)
	if err != nil {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	events, err := a.events.HostEvents(r.Context(), caller.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (a *app) handleBlockEvent(w http.ResponseWriter, r *http.Request) {
	if _, err := a.requireRole(r, dynamo.RoleAdmin); err != nil {
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

	if err := a.events.Update(r.Context(), r.PathValue("id"), req.IsBlocked); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
