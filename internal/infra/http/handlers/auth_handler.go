package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/xavierca1/visa-leads/internal/infra/auth"
)

type LoginService interface {
	Login(email, password string) (*auth.LoginResult, error)
}

type AuthHandler struct {
	Service LoginService
	Log     zerolog.Logger
}

func NewAuthHandler(service LoginService, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{Service: service, Log: log.With().Str("component", "auth_handler").Logger()}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	result, err := h.Service.Login(req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		h.Log.Warn().Str("email", req.Email).Msg("failed admin login")
		writeErrorResponse(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err != nil {
		respondError(w, h.Log, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
