package handler

import (
	"net/http"

	"github.com/mcoot/rpgroster-go/internal/api/apierr"
	"github.com/mcoot/rpgroster-go/internal/api/request"
	"github.com/mcoot/rpgroster-go/internal/api/response"
	"github.com/mcoot/rpgroster-go/internal/services/auth"
)

// AuthHandler handles registration and login
type AuthHandler struct {
	authService *auth.Service
	errors      *apierr.Writer
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *auth.Service, errors *apierr.Writer) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		errors:      errors,
	}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if err := request.Decode(r, &req); err != nil {
		h.errors.Write(w, r, err)
		return
	}

	result, err := h.authService.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.OK("Account created, welcome!", response.AuthDataFromResult(result)))
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := request.Decode(r, &req); err != nil {
		h.errors.Write(w, r, err)
		return
	}

	result, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.OK("Logged in", response.AuthDataFromResult(result)))
}
