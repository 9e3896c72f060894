package handlers

import (
	"log/slog"
	"net/http"

	"birthchart-server/internal/middleware"
	"birthchart-server/internal/shared/errors"
	"birthchart-server/internal/shared/response"
	"birthchart-server/internal/user"
)

type ProfileHandler struct {
	users *user.Service
}

func NewProfileHandler(users *user.Service) *ProfileHandler {
	return &ProfileHandler{users: users}
}

func (h *ProfileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "profile")

	claims := middleware.GetUserFromContext(r)
	if claims == nil {
		response.Error(w, r, logger, errors.Unauthorized("no user claims found in context"))
		return
	}

	u, err := h.users.GetByID(r.Context(), claims.UserID)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, u)
}
