package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/CoderAaditya/BookBliss-Backend/internal/domain"
	"github.com/go-chi/chi/v5"
)

type CatalogService interface {
	ListBooks(ctx context.Context, filter domain.BookFilter) (*domain.BookPage, error)
	GetBook(ctx context.Context, id string) (*domain.Book, error)
	CreateBook(ctx context.Context, book *domain.Book) error
	UpdateBook(ctx context.Context, id string, patch domain.BookPatch) (*domain.Book, error)
	DeleteBook(ctx context.Context, id string) error
}

type BookHandler struct {
	catalog     CatalogService
	timeout     time.Duration
	maxBodySize int64
}

func NewBookHandler(catalog CatalogService, timeout time.Duration, maxBodySize int64) *BookHandler {
	return &BookHandler{
		catalog:     catalog,
		timeout:     timeout,
		maxBodySize: maxBodySize,
	}
}

type CreateBookRequestDTO struct {
	Title       string   `json:"title" validate:"required"`
	Author      string   `json:"author" validate:"required"`
	Category    string   `json:"category" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
	Image       string   `json:"image"`
}

type UpdateBookRequestDTO struct {
	Title       *string  `json:"title"`
	Author      *string  `json:"author"`
	Category    *string  `json:"category"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	Image       *string  `json:"image"`
}

func (h *BookHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	q := r.URL.Query()
	// unparsable numbers stay zero and fall back to the defaults
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	result, err := h.catalog.ListBooks(ctx, domain.BookFilter{
		Search:   q.Get("search"),
		Category: q.Get("category"),
		Author:   q.Get("author"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		respondMsgError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *BookHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	book, err := h.catalog.GetBook(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respondMsgError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, book)
}

func (h *BookHandler) CreateBook(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req CreateBookRequestDTO
	if err := decodeJSON(w, r, h.maxBodySize, &req); err != nil {
		respondMsg(w, http.StatusBadRequest, err.Error())
		return
	}

	book := &domain.Book{
		Title:       req.Title,
		Author:      req.Author,
		Category:    req.Category,
		Description: req.Description,
		Price:       *req.Price,
		Image:       req.Image,
	}
	if err := h.catalog.CreateBook(ctx, book); err != nil {
		respondMsgError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, book)
}

func (h *BookHandler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req UpdateBookRequestDTO
	if err := decodeJSON(w, r, h.maxBodySize, &req); err != nil {
		respondMsg(w, http.StatusBadRequest, err.Error())
		return
	}

	book, err := h.catalog.UpdateBook(ctx, chi.URLParam(r, "id"), domain.BookPatch{
		Title:       req.Title,
		Author:      req.Author,
		Category:    req.Category,
		Description: req.Description,
		Price:       req.Price,
		Image:       req.Image,
	})
	if err != nil {
		respondMsgError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, book)
}

func (h *BookHandler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.catalog.DeleteBook(ctx, chi.URLParam(r, "id")); err != nil {
		respondMsgError(w, r, err)
		return
	}

	respondMsg(w, http.StatusOK, "Book deleted")
}
