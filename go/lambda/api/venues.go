package main

import (
	"encoding/json"
	"net/http"

	"github.com/eventro/eventro/go/dynamo"
	"github.com/eventro/eventro/go/service"
)

func (a *app) handleCreateVenue(w http.ResponseWriter, r *http.Request) {
	caller, err := a.requireRole(r, dynamo.RoleHost)
	if err != nil {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	var req service.CreateVenueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	venue, err := a.venues.Add(r.Context(), req, caller.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, venue)
}

func (a *app) handleGetVenue(w http.ResponseWriter, r *http.Request) {
	if _, err := a.requireAuth(r); err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	venue, err := a.venues.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, venue)
}

func (a *app) handleHostVenues(w http.ResponseWriter, r *http.Request) {
	caller, err := a.requireRole(r, dynamo.RoleHost)
	if err != nil {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	var blocked *bool
	if v := r.URL.Query().Get("is_blocked"); v != "" {
		b := v == "true"
		blocked = &b
	}

	venues, err := a.venues.HostVenues(r.Context(), caller.UserID, blocked)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, venues)
}

func (a *app) handleBlockVenue(w http.ResponseWriter, r *http.Request) {
	caller, err := a.requireRole(r, dynamo.RoleHost)
	if err != nil {
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

	if err := a.venues.Update(r.Context(), r.PathValue("id"), caller.UserID, req.IsBlocked); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *app) handleDeleteVenue(w http.ResponseWriter, r *http.Request) {
	caller, err := a.requireRole(r, dynamo.RoleHost)
	if err != nil {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	if err := a.venues.Delete(r.Context(), r.PathValue("id"), caller.UserID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
