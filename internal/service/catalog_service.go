package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/CoderAaditya/BookBliss-Backend/internal/domain"
	"github.com/CoderAaditya/BookBliss-Backend/internal/logger"
	"github.com/CoderAaditya/BookBliss-Backend/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	// MaxPage keeps (page-1)*limit well inside int64.
	MaxPage = math.MaxInt32

	sampleBookCount = 20
)

type CatalogService struct {
	books repository.BookRepository
}

func NewCatalogService(books repository.BookRepository) *CatalogService {
	return &CatalogService{books: books}
}

// ListBooks returns one page of the catalog. Non-positive page or limit fall back to the defaults,
// oversized ones are clamped to MaxPage and MaxLimit.
func (s *CatalogService) ListBooks(ctx context.Context, filter domain.BookFilter) (*domain.BookPage, error) {
	if filter.Page < 1 {
		filter.Page = DefaultPage
	}
	filter.Page = min(filter.Page, MaxPage)
	if filter.Limit < 1 {
		filter.Limit = DefaultLimit
	}
	filter.Limit = min(filter.Limit, MaxLimit)

	books, total, err := s.books.ListBooks(ctx, filter)
	if err != nil {
		return nil, err
	}
	if books == nil {
		books = []domain.Book{}
	}

	return &domain.BookPage{
		Books:       books,
		TotalPages:  pageCount(total, int64(filter.Limit)),
		CurrentPage: filter.Page,
	}, nil
}

func pageCount(total, limit int64) int64 {
	pages := total / limit
	if total%limit != 0 {
		pages++
	}
	return pages
}

func (s *CatalogService) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrBookNotFound
	}

	book, err := s.books.GetBook(ctx, oid)
	if err != nil {
		return nil, mapBookErr(err)
	}

	return book, nil
}

func (s *CatalogService) CreateBook(ctx context.Context, book *domain.Book) error {
	if err := validateBook(book); err != nil {
		return err
	}

	return s.books.CreateBook(ctx, book)
}

func (s *CatalogService) UpdateBook(ctx context.Context, id string, patch domain.BookPatch) (*domain.Book, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrBookNotFound
	}
	if err = validatePatch(patch); err != nil {
		return nil, err
	}

	if patch.IsEmpty() {
		book, err := s.books.GetBook(ctx, oid)
		if err != nil {
			return nil, mapBookErr(err)
		}
		return book, nil
	}

	book, err := s.books.UpdateBook(ctx, oid, patch)
	if err != nil {
		return nil, mapBookErr(err)
	}

	return book, nil
}

func (s *CatalogService) DeleteBook(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrBookNotFound
	}

	return mapBookErr(s.books.DeleteBook(ctx, oid))
}

// SeedSampleBooks fills an empty catalog with sample books and reports how many were inserted.
func (s *CatalogService) SeedSampleBooks(ctx context.Context) (int, error) {
	count, err := s.books.CountBooks(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		logger.Log.Debugw("catalog is not empty, skipping seed", "books", count)
		return 0, nil
	}

	books := sampleBooks(time.Now().UTC())
	if err = s.books.InsertBooks(ctx, books); err != nil {
		return 0, err
	}

	logger.Log.Infow("seeded sample books", "count", len(books))
	return len(books), nil
}

func sampleBooks(now time.Time) []domain.Book {
	books := make([]domain.Book, 0, sampleBookCount)
	for i := 1; i <= sampleBookCount; i++ {
		category, image := "Fiction", "/images/Fiction.jpg"
		switch {
		case i%3 == 0:
			category, image = "Sci-Fi", "/images/SciFi.jpg"
		case i%2 == 0:
			category, image = "Non-Fiction", "/images/NonFiction.jpg"
		}

		books = append(books, domain.Book{
			Title:       fmt.Sprintf("Sample Book %d", i),
			Author:      fmt.Sprintf("Author %d", (i+1)/2),
			Category:    category,
			Description: fmt.Sprintf("A sample %s title to get the catalog started.", strings.ToLower(category)),
			Price:       math.Round((5+rand.Float64()*50)*100) / 100,
			Image:       image,
			// later books sort first
			CreatedAt: now.Add(time.Duration(i) * time.Millisecond),
		})
	}
	return books
}

func validateBook(book *domain.Book) error {
	required := []struct{ field, value string }{
		{"title", book.Title},
		{"author", book.Author},
		{"category", book.Category},
		{"description", book.Description},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return invalidInput("%s is required", r.field)
		}
	}
	return validatePrice(book.Price)
}

func validatePatch(patch domain.BookPatch) error {
	optional := []struct {
		field string
		value *string
	}{
		{"title", patch.Title},
		{"author", patch.Author},
		{"category", patch.Category},
		{"description", patch.Description},
	}
	for _, o := range optional {
		if o.value != nil && strings.TrimSpace(*o.value) == "" {
			return invalidInput("%s must not be empty", o.field)
		}
	}
	if patch.Price != nil {
		return validatePrice(*patch.Price)
	}
	return nil
}

func validatePrice(price float64) error {
	if price < 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return invalidInput("price must not be negative")
	}
	return nil
}

func mapBookErr(err error) error {
	if errors.Is(err, repository.ErrBookNotFound) {
		return ErrBookNotFound
	}
	return err
}
