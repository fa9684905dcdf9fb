package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/tuanvumaihuynh/vending-machine/internal/apperr"
	"github.com/tuanvumaihuynh/vending-machine/internal/config"
	"github.com/tuanvumaihuynh/vending-machine/internal/service"
	"github.com/tuanvumaihuynh/vending-machine/internal/session"
)

type authHandler struct {
	cfg      config.Session
	authSvc  service.AuthService
	sessions session.Store
	logger   *slog.Logger
}

func newAuthHandler(cfg config.Session, authSvc service.AuthService, sessions session.Store, logger *slog.Logger) *authHandler {
	return &authHandler{
		cfg:      cfg,
		authSvc:  authSvc,
		sessions: sessions,
		logger:   logger,
	}
}

func (h *authHandler) Login(w http.ResponseWriter, r *http.Request) error {
	var req LoginRequest
	if err := decodeBody(w, r, &req); err != nil {
		return err
	}

	profile, err := h.authSvc.Login(r.Context(), service.LoginParams{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return fmt.Errorf("auth service login: %w", err)
	}

	// Rotate the token so a session never outlives a change of user.
	if s, ok := session.FromContext(r.Context()); ok {
		if err := h.sessions.Delete(r.Context(), s.Token); err != nil {
			return fmt.Errorf("session store delete: %w", err)
		}
	}

	token, err := h.sessions.Create(r.Context(), profile.User.ID)
	if err != nil {
		return fmt.Errorf("session store create: %w", err)
	}

	http.SetCookie(w, h.cookie(token, int(h.cfg.TTL/time.Second)))

	return writeJSON(w, http.StatusOK, newProfileResponse(profile))
}

// Logout always expires the cookie. A session the store fails to delete is
// left to expire on its TTL.
func (h *authHandler) Logout(w http.ResponseWriter, r *http.Request) error {
	if cookie, err := r.Cookie(h.cfg.CookieName); err == nil && cookie.Value != "" {
		if err := h.sessions.Delete(r.Context(), cookie.Value); err != nil {
			h.logger.WarnContext(r.Context(), "failed to delete session on logout", slog.Any("error", err))
		}
	}

	http.SetCookie(w, h.cookie("", -1))

	return writeJSON(w, http.StatusOK, struct{}{})
}

func (h *authHandler) Profile(w http.ResponseWriter, r *http.Request) error {
	s, ok := session.FromContext(r.Context())
	if !ok {
		return writeJSON(w, http.StatusOK, struct{}{})
	}

	profile, err := h.authSvc.Profile(r.Context(), s.UserID)
	if err != nil {
		if errors.Is(err, apperr.UnauthenticatedErr) {
			return writeJSON(w, http.StatusOK, struct{}{})
		}
		return fmt.Errorf("auth service profile: %w", err)
	}

	return writeJSON(w, http.StatusOK, newProfileResponse(profile))
}

func (h *authHandler) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     h.cfg.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
