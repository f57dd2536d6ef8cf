package http

import (
	"context"
	"net/http"
	"time"

	"github.com/CoderAaditya/BookBliss-Backend/internal/domain"
	"github.com/CoderAaditya/BookBliss-Backend/internal/service"
)

type AuthService interface {
	TokenVerifier
	Register(ctx context.Context, in service.RegisterInput) (*service.AuthResult, error)
	Login(ctx context.Context, email, password string) (*service.AuthResult, error)
}

type AuthHandler struct {
	auth        AuthService
	timeout     time.Duration
	maxBodySize int64
}

func NewAuthHandler(auth AuthService, timeout time.Duration, maxBodySize int64) *AuthHandler {
	return &AuthHandler{
		auth:        auth,
		timeout:     timeout,
		maxBodySize: maxBodySize,
	}
}

type SignupRequestDTO struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginRequestDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponseDTO struct {
	Token string             `json:"token"`
	User  domain.UserSummary `json:"user"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req SignupRequestDTO
	if err := decodeJSON(w, r, h.maxBodySize, &req); err != nil {
		respondMsg(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.auth.Register(ctx, service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondMsgError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, AuthResponseDTO{Token: res.Token, User: res.User})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req LoginRequestDTO
	if err := decodeJSON(w, r, h.maxBodySize, &req); err != nil {
		respondMsg(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		respondMsgError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, AuthResponseDTO{Token: res.Token, User: res.User})
}
