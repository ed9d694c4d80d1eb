package main

import (
	"encoding/json"
	"net/http"

	"github.com/eventro/eventro/go/dynamo"
)

func (a *app) handleCreateArtist(w http.ResponseWriter, r *http.Request) {
	if _, err := a.requireRole(r, dynamo.RoleHost, dynamo.RoleAdmin); err != nil {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	var req struct {
		Name string `json:"name"`
		Bio  string `json:"bio"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	artist, err := a.artists.Add(r.Context(), req.Name, req.Bio)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, artist)
}

func (a *app) handleGetArtist(w http.ResponseWriter, r *http.Request) {
	if _, err := a.requireAuth(r); err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	artist, err := a.artists.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, artist)
}
