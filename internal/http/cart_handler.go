package http

import (
	"context"
	"net/http"
	"time"

	"github.com/CoderAaditya/BookBliss-Backend/internal/domain"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CartService interface {
	GetCart(ctx context.Context, userID primitive.ObjectID) (*domain.CartView, error)
	AddToCart(ctx context.Context, userID primitive.ObjectID, bookID string, quantity int) (*domain.Cart, error)
	UpdateCartItem(ctx context.Context, userID primitive.ObjectID, bookID string, quantity int) (*domain.Cart, error)
	RemoveFromCart(ctx context.Context, userID primitive.ObjectID, bookID string) (*domain.Cart, error)
}

type CartHandler struct {
	carts       CartService
	timeout     time.Duration
	maxBodySize int64
}

func NewCartHandler(carts CartService, timeout time.Duration, maxBodySize int64) *CartHandler {
	return &CartHandler{
		carts:       carts,
		timeout:     timeout,
		maxBodySize: maxBodySize,
	}
}

type AddItemRequestDTO struct {
	BookID   string `json:"bookId" validate:"required"`
	Quantity *int   `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	BookID   string `json:"bookId" validate:"required"`
	Quantity *int   `json:"quantity" validate:"required"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	user, ok := UserFromContext(r.Context())
	if !ok {
		respondMsg(w, http.StatusUnauthorized, msgNoToken)
		return
	}

	cart, err := h.carts.GetCart(ctx, user.ID)
	if err != nil {
		respondMessageError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	user, ok := UserFromContext(r.Context())
	if !ok {
		respondMsg(w, http.StatusUnauthorized, msgNoToken)
		return
	}

	var req AddItemRequestDTO
	if err := decodeJSON(w, r, h.maxBodySize, &req); err != nil {
		respondMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	cart, err := h.carts.AddToCart(ctx, user.ID, req.BookID, quantity)
	if err != nil {
		respondMessageError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	user, ok := UserFromContext(r.Context())
	if !ok {
		respondMsg(w, http.StatusUnauthorized, msgNoToken)
		return
	}

	var req UpdateQuantityRequestDTO
	if err := decodeJSON(w, r, h.maxBodySize, &req); err != nil {
		respondMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	cart, err := h.carts.UpdateCartItem(ctx, user.ID, req.BookID, *req.Quantity)
	if err != nil {
		respondMessageError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	user, ok := UserFromContext(r.Context())
	if !ok {
		respondMsg(w, http.StatusUnauthorized, msgNoToken)
		return
	}

	cart, err := h.carts.RemoveFromCart(ctx, user.ID, chi.URLParam(r, "bookId"))
	if err != nil {
		respondMessageError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, cart)
}
