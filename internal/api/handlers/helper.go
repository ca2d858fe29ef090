package handlers

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/neoshop/neoshop-platform/internal/api/middleware"
	"github.com/neoshop/neoshop-platform/internal/errors"
	"github.com/neoshop/neoshop-platform/internal/models"
	"github.com/neoshop/neoshop-platform/internal/utils/response"
)

// currentUser pulls the authenticated claims out of the request, writing an
// unauthorized reply when absent. Handlers behind the auth middleware should
// never actually hit the failure path.
func currentUser(w http.ResponseWriter, r *http.Request) (*models.Claims, bool) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		response.Error(w, errors.UnauthorizedError("Authentication required"))

		return nil, false
	}

	return claims, true
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		response.Error(w, errors.BadRequestError("Invalid id in path"))

		return uuid.Nil, false
	}

	return id, true
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return value
}
