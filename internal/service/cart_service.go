package service

import (
	"context"
	"errors"
	"math"

	"github.com/CoderAaditya/BookBliss-Backend/internal/domain"
	"github.com/CoderAaditya/BookBliss-Backend/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartService mutates carts with a load, modify, save cycle and no concurrency
// control: of two concurrent mutations on one cart the last save wins.
type CartService struct {
	carts repository.CartRepository
	books repository.BookRepository
}

func NewCartService(carts repository.CartRepository, books repository.BookRepository) *CartService {
	return &CartService{
		carts: carts,
		books: books,
	}
}

// GetCart returns the user's cart with books joined in. A user without a cart gets an empty one.
func (s *CartService) GetCart(ctx context.Context, userID primitive.ObjectID) (*domain.CartView, error) {
	cart, err := s.carts.GetCart(ctx, userID)
	if errors.Is(err, repository.ErrCartNotFound) {
		return &domain.CartView{Items: []domain.CartItemView{}}, nil
	}
	if err != nil {
		return nil, err
	}

	books, err := s.books.GetBooksByIDs(ctx, cart.BookIDs())
	if err != nil {
		return nil, err
	}

	view := &domain.CartView{
		ID:        cart.ID,
		UserID:    cart.UserID,
		Items:     make([]domain.CartItemView, 0, len(cart.Items)),
		UpdatedAt: cart.UpdatedAt,
	}
	for _, item := range cart.Items {
		view.Items = append(view.Items, domain.CartItemView{
			Book:     books[item.BookID], // nil for a book deleted since it was added
			Quantity: item.Quantity,
		})
	}

	return view, nil
}

// AddToCart adds quantity copies of a book, creating the cart on first use.
func (s *CartService) AddToCart(ctx context.Context, userID primitive.ObjectID, bookID string, quantity int) (*domain.Cart, error) {
	oid, err := primitive.ObjectIDFromHex(bookID)
	if err != nil {
		return nil, invalidInput("Invalid book id")
	}
	if quantity < 1 {
		return nil, invalidInput("Quantity must be at least 1")
	}

	if _, err = s.books.GetBook(ctx, oid); err != nil {
		return nil, mapBookErr(err)
	}

	cart, err := s.carts.GetCart(ctx, userID)
	if errors.Is(err, repository.ErrCartNotFound) {
		cart = &domain.Cart{UserID: userID, Items: []domain.CartItem{}}
	} else if err != nil {
		return nil, err
	}

	if i := cart.IndexOf(oid); i >= 0 {
		if quantity > math.MaxInt-cart.Items[i].Quantity {
			return nil, invalidInput("Quantity is too large")
		}
		cart.Items[i].Quantity += quantity
	} else {
		cart.Items = append(cart.Items, domain.CartItem{BookID: oid, Quantity: quantity})
	}

	if err = s.carts.UpsertCart(ctx, cart); err != nil {
		return nil, err
	}

	return cart, nil
}

// UpdateCartItem sets the quantity of a book already in the cart.
func (s *CartService) UpdateCartItem(ctx context.Context, userID primitive.ObjectID, bookID string, quantity int) (*domain.Cart, error) {
	if quantity < 1 {
		return nil, invalidInput("Quantity must be at least 1")
	}

	cart, err := s.loadCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	oid, err := primitive.ObjectIDFromHex(bookID)
	if err != nil {
		return nil, ErrItemNotFound
	}

	i := cart.IndexOf(oid)
	if i < 0 {
		return nil, ErrItemNotFound
	}
	cart.Items[i].Quantity = quantity

	if err = s.carts.UpsertCart(ctx, cart); err != nil {
		return nil, err
	}

	return cart, nil
}

// RemoveFromCart drops every item referencing the book. Removing an absent book is not an error.
func (s *CartService) RemoveFromCart(ctx context.Context, userID primitive.ObjectID, bookID string) (*domain.Cart, error) {
	cart, err := s.loadCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	oid, err := primitive.ObjectIDFromHex(bookID)
	if err != nil {
		return cart, nil
	}

	kept := cart.Items[:0]
	for _, item := range cart.Items {
		if item.BookID != oid {
			kept = append(kept, item)
		}
	}
	if len(kept) == len(cart.Items) {
		return cart, nil
	}
	cart.Items = kept

	if err = s.carts.UpsertCart(ctx, cart); err != nil {
		return nil, err
	}

	return cart, nil
}

func (s *CartService) loadCart(ctx context.Context, userID primitive.ObjectID) (*domain.Cart, error) {
	cart, err := s.carts.GetCart(ctx, userID)
	if errors.Is(err, repository.ErrCartNotFound) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, err
	}
	return cart, nil
}
