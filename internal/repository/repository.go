package repository

import (
	"context"
	"errors"

	"github.com/CoderAaditya/BookBliss-Backend/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrCartNotFound = errors.New("cart not found")
	ErrUserNotFound = errors.New("user not found")
	ErrBookNotFound = errors.New("book not found")
	ErrDuplicateKey = errors.New("duplicate key")
)

// CartRepository defines the interface for cart data operations.
// A cart is loaded and saved whole; there is no per-item update.
type CartRepository interface {
	GetCart(ctx context.Context, userID primitive.ObjectID) (*domain.Cart, error)
	UpsertCart(ctx context.Context, cart *domain.Cart) error
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
}

// BookRepository expects filter.Page and filter.Limit to be positive.
type BookRepository interface {
	ListBooks(ctx context.Context, filter domain.BookFilter) ([]domain.Book, int64, error)
	GetBook(ctx context.Context, id primitive.ObjectID) (*domain.Book, error)
	GetBooksByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*domain.Book, error)
	CreateBook(ctx context.Context, book *domain.Book) error
	InsertBooks(ctx context.Context, books []domain.Book) error
	UpdateBook(ctx context.Context, id primitive.ObjectID, patch domain.BookPatch) (*domain.Book, error)
	DeleteBook(ctx context.Context, id primitive.ObjectID) error
	CountBooks(ctx context.Context) (int64, error)
}
