package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/staybook/staybook/internal/platform/httpx"
	"github.com/staybook/staybook/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger     *slog.Logger
	service    *Service
	middleware *Middleware
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, middleware *Middleware) *Handler {
	return &Handler{logger: logger, service: service, middleware: middleware}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.login)
	r.Post("/refresh", h.refresh)
	r.Group(func(r chi.Router) {
		r.Use(h.middleware.RequireAuth)
		r.Post("/logout", h.logout)
		r.Get("/me", h.me)
	})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required,uuid"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !httpx.Bind(w, r, &req) {
		return
	}
	pair, user, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.Fail(w, h.logger, "login", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"tokens": pair, "user": user})
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !httpx.Bind(w, r, &req) {
		return
	}
	pair, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		httpx.Fail(w, h.logger, "refresh token", err)
		return
	}
	httpx.JSON(w, http.StatusOK, pair)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !httpx.Bind(w, r, &req) {
		return
	}
	if err := h.service.Logout(r.Context(), req.RefreshToken); err != nil {
		httpx.Fail(w, h.logger, "logout", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	user, err := h.service.Me(r.Context(), actor.UserID)
	if err != nil {
		httpx.Fail(w, h.logger, "current user", err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}
