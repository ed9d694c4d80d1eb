package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/eventro/eventro/go/dynamo"
	"github.com/eventro/eventro/go/service"
)

// requireAuth extracts and verifies the Bearer token from the Authorization
// header and returns the caller's identity.
func (a *app) requireAuth(r *http.Request) (service.Identity, error) {
	header := r.Header.Get("Authorization")
	token := strings.TrimPrefix(header, "Bearer ")
	if token == "" || token == header {
		return service.Identity{}, fmt.Errorf("missing bearer token")
	}

	claims, err := a.tokens.Parse(token)
	if err != nil {
		return service.Identity{}, fmt.Errorf("invalid token: %w", err)
	}
	return service.Identity{UserID: claims.UserID, Role: dynamo.Role(claims.Role)}, nil
}

// requireRole authenticates the request and checks the caller holds one of
// the allowed roles.
func (a *app) requireRole(r *http.Request, roles ...dynamo.Role) (service.Identity, error) {
	caller, err := a.requireAuth(r)
	if err != nil {
		return service.Identity{}, err
	}
	for _, role := range roles {
		if caller.Role == role {
			return caller, nil
		}
	}
	return service.Identity{}, fmt.Errorf("insufficient role: have %s", caller.Role)
}
