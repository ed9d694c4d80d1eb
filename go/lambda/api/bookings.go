package main

import (
	"encoding/json"
	"net/http"

	"github.com/eventro/eventro/go/dynamo"
	"github.com/eventro/eventro/go/service"
)

func (a *app) handleBookSeats(w http.ResponseWriter, r *http.Request) {
	caller, err := a.requireRole(r, dynamo.RoleCustomer)
	if err != nil {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	var req service.BookSeatsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	booking, err := a.bookings.Book(r.Context(), caller.UserID, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

func (a *app) handleMyBookings(w http.ResponseWriter, r *http.Request) {
	caller, err := a.requireAuth(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	bookings, err := a.bookings.UserBookings(r.Context(), caller.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}
