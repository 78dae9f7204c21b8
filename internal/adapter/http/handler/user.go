package handler

import (
	"net/http"

	"github.com/Temutjin2k/niva/internal/domain/models"
)

// requireUser returns the authenticated user, writing 401 when there is none.
func requireUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	user := models.UserFromContext(r.Context())
	if user.IsAnonymous() {
		unauthorizedResponse(w)
		return nil, false
	}
	return user, true
}
