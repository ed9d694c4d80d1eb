package main

import (
	"errors"
	"log"
	"net/http"

	"github.com/eventro/eventro/go/service"
)

// writeServiceError maps a service failure to its status code. The kind is
// always determined from the error value, never from its message.
func writeServiceError(w http.ResponseWriter, err error) {
	var (
		notFound  *service.NotFoundError
		blocked   *service.BlockedError
		exists    *service.AlreadyExistsError
		seats     *service.SeatsBookedError
		validated *service.ValidationError
	)
	switch {
	case errors.As(err, &notFound):
		writeError(w, http.StatusNotFound, notFound.Error())
	case errors.As(err, &blocked):
		writeError(w, http.StatusForbidden, blocked.Error())
	case errors.As(err, &exists):
		writeError(w, http.StatusBadRequest, exists.Error())
	case errors.As(err, &seats):
		writeJSON(w, http.StatusConflict, map[string]interface{}{
			"error": seats.Error(),
			"seats": seats.Seats,
		})
	case errors.As(err, &validated):
		writeError(w, http.StatusUnprocessableEntity, validated.Error())
	case errors.Is(err, service.ErrIncorrectCredentials):
		writeError(w, http.StatusUnauthorized, "incorrect credentials")
	case errors.Is(err, service.ErrUserBlocked):
		writeError(w, http.StatusForbidden, "account is blocked")
	default:
		log.Printf("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
