package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/CoderAaditya/BookBliss-Backend/internal/logger"
	"github.com/CoderAaditya/BookBliss-Backend/internal/service"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	msgServerError    = "Server error"
	msgBadRequestBody = "Invalid request body"
)

// MsgResponse is the error and notice body of the auth, books and auth gate routes.
type MsgResponse struct {
	Msg string `json:"msg"`
}

// MessageResponse is the error body of the cart routes.
type MessageResponse struct {
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Log.Errorw("failed to encode response", "error", err)
	}
}

func respondMsg(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, MsgResponse{Msg: msg})
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, MessageResponse{Message: message})
}

// errorStatus maps a service error to a status code and a client-facing message.
// Unknown errors are logged and reported as a generic server error.
func errorStatus(r *http.Request, err error) (int, string) {
	var validationErr *service.ValidationError

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, validationErr.Msg
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest, msgBadRequestBody
	case errors.Is(err, service.ErrConflict):
		return http.StatusBadRequest, "User already exists"
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusBadRequest, "Invalid credentials"
	case errors.Is(err, service.ErrBookNotFound):
		return http.StatusNotFound, "Book not found"
	case errors.Is(err, service.ErrCartNotFound):
		return http.StatusNotFound, "Cart not found"
	case errors.Is(err, service.ErrItemNotFound):
		return http.StatusNotFound, "Item not found"
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "Not found"
	}

	if errors.Is(err, context.DeadlineExceeded) {
		logger.Log.Warnw("request timed out", "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()))
	} else {
		logger.Log.Errorw("request failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
		)
	}
	return http.StatusInternalServerError, msgServerError
}

func respondMsgError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := errorStatus(r, err)
	respondMsg(w, status, msg)
}

func respondMessageError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := errorStatus(r, err)
	respondMessage(w, status, msg)
}
