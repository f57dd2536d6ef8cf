package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/CoderAaditya/BookBliss-Backend/internal/domain"
	"github.com/CoderAaditya/BookBliss-Backend/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type mockCartRepository struct {
	m       sync.RWMutex
	carts   map[primitive.ObjectID]domain.Cart
	err     error
	upserts int
}

func newMockCartRepository() *mockCartRepository {
	return &mockCartRepository{carts: make(map[primitive.ObjectID]domain.Cart)}
}

func (m *mockCartRepository) GetCart(_ context.Context, userID primitive.ObjectID) (*domain.Cart, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	cart, ok := m.carts[userID]
	if !ok {
		return nil, repository.ErrCartNotFound
	}
	return copyCart(cart), nil
}

func (m *mockCartRepository) UpsertCart(_ context.Context, cart *domain.Cart) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	if cart.ID.IsZero() {
		cart.ID = primitive.NewObjectID()
	}
	cart.UpdatedAt = time.Now().UTC()
	m.carts[cart.UserID] = *copyCart(*cart)
	m.upserts++
	return nil
}

func (m *mockCartRepository) stored(userID primitive.ObjectID) (domain.Cart, bool) {
	m.m.RLock()
	defer m.m.RUnlock()
	cart, ok := m.carts[userID]
	return cart, ok
}

func copyCart(c domain.Cart) *domain.Cart {
	c.Items = append([]domain.CartItem{}, c.Items...)
	return &c
}

type mockUserRepository struct {
	m     sync.RWMutex
	users map[primitive.ObjectID]domain.User
	err   error
	// createErr is returned by CreateUser only, after lookups succeed.
	createErr error
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[primitive.ObjectID]domain.User)}
}

func (m *mockUserRepository) CreateUser(_ context.Context, user *domain.User) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	for _, u := range m.users {
		if u.Email == user.Email || u.Username == user.Username {
			return repository.ErrDuplicateKey
		}
	}
	user.ID = primitive.NewObjectID()
	m.users[user.ID] = *user
	return nil
}

func (m *mockUserRepository) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) GetUserByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &u, nil
}

func (m *mockUserRepository) delete(id primitive.ObjectID) {
	m.m.Lock()
	defer m.m.Unlock()
	delete(m.users, id)
}

type mockBookRepository struct {
	m     sync.RWMutex
	books map[primitive.ObjectID]domain.Book
	err   error

	lastFilter  domain.BookFilter
	byIDCalls   int
	updateCalls int
}

func newMockBookRepository(books ...domain.Book) *mockBookRepository {
	m := &mockBookRepository{books: make(map[primitive.ObjectID]domain.Book)}
	for _, b := range books {
		if b.ID.IsZero() {
			b.ID = primitive.NewObjectID()
		}
		m.books[b.ID] = b
	}
	return m
}

func (m *mockBookRepository) ListBooks(_ context.Context, f domain.BookFilter) ([]domain.Book, int64, error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.lastFilter = f
	if m.err != nil {
		return nil, 0, m.err
	}

	var matched []domain.Book
	for _, b := range m.books {
		if f.Search != "" && !strings.Contains(strings.ToLower(b.Title), strings.ToLower(f.Search)) {
			continue
		}
		if f.Author != "" && !strings.Contains(strings.ToLower(b.Author), strings.ToLower(f.Author)) {
			continue
		}
		if f.Category != "" && b.Category != f.Category {
			continue
		}
		matched = append(matched, b)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	start := (f.Page - 1) * f.Limit
	if start >= len(matched) {
		return nil, total, nil
	}
	end := min(start+f.Limit, len(matched))
	return matched[start:end], total, nil
}

func (m *mockBookRepository) GetBook(_ context.Context, id primitive.ObjectID) (*domain.Book, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	b, ok := m.books[id]
	if !ok {
		return nil, repository.ErrBookNotFound
	}
	return &b, nil
}

func (m *mockBookRepository) GetBooksByIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*domain.Book, error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.byIDCalls++
	if m.err != nil {
		return nil, m.err
	}
	result := make(map[primitive.ObjectID]*domain.Book, len(ids))
	for _, id := range ids {
		if b, ok := m.books[id]; ok {
			result[id] = &b
		}
	}
	return result, nil
}

func (m *mockBookRepository) CreateBook(_ context.Context, book *domain.Book) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	book.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	book.CreatedAt, book.UpdatedAt = now, now
	m.books[book.ID] = *book
	return nil
}

func (m *mockBookRepository) InsertBooks(_ context.Context, books []domain.Book) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	for i := range books {
		books[i].ID = primitive.NewObjectID()
		m.books[books[i].ID] = books[i]
	}
	return nil
}

func (m *mockBookRepository) UpdateBook(_ context.Context, id primitive.ObjectID, patch domain.BookPatch) (*domain.Book, error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.updateCalls++
	if m.err != nil {
		return nil, m.err
	}
	b, ok := m.books[id]
	if !ok {
		return nil, repository.ErrBookNotFound
	}
	if patch.Title != nil {
		b.Title = *patch.Title
	}
	if patch.Author != nil {
		b.Author = *patch.Author
	}
	if patch.Category != nil {
		b.Category = *patch.Category
	}
	if patch.Description != nil {
		b.Description = *patch.Description
	}
	if patch.Price != nil {
		b.Price = *patch.Price
	}
	if patch.Image != nil {
		b.Image = *patch.Image
	}
	b.UpdatedAt = time.Now().UTC()
	m.books[id] = b
	return &b, nil
}

func (m *mockBookRepository) DeleteBook(_ context.Context, id primitive.ObjectID) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.books[id]; !ok {
		return repository.ErrBookNotFound
	}
	delete(m.books, id)
	return nil
}

func (m *mockBookRepository) CountBooks(context.Context) (int64, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return 0, m.err
	}
	return int64(len(m.books)), nil
}

func (m *mockBookRepository) remove(id primitive.ObjectID) {
	m.m.Lock()
	defer m.m.Unlock()
	delete(m.books, id)
}
