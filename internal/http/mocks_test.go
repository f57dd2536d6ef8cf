package http

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/CoderAaditya/BookBliss-Backend/internal/domain"
	"github.com/CoderAaditya/BookBliss-Backend/internal/repository"
	"github.com/CoderAaditya/BookBliss-Backend/internal/service"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

var testSecret = []byte("http-test-secret")

// memoryStore backs all three repositories for handler tests.
type memoryStore struct {
	m     sync.RWMutex
	users map[primitive.ObjectID]domain.User
	books map[primitive.ObjectID]domain.Book
	carts map[primitive.ObjectID]domain.Cart
	err   error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users: make(map[primitive.ObjectID]domain.User),
		books: make(map[primitive.ObjectID]domain.Book),
		carts: make(map[primitive.ObjectID]domain.Cart),
	}
}

func (s *memoryStore) fail(err error) {
	s.m.Lock()
	defer s.m.Unlock()
	s.err = err
}

func (s *memoryStore) failure() error {
	s.m.RLock()
	defer s.m.RUnlock()
	return s.err
}

func (s *memoryStore) cart(userID primitive.ObjectID) (domain.Cart, bool) {
	s.m.RLock()
	defer s.m.RUnlock()
	c, ok := s.carts[userID]
	return c, ok
}

func (s *memoryStore) addBook(b domain.Book) domain.Book {
	s.m.Lock()
	defer s.m.Unlock()
	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	s.books[b.ID] = b
	return b
}

type memoryCarts struct{ *memoryStore }

func (s memoryCarts) GetCart(_ context.Context, userID primitive.ObjectID) (*domain.Cart, error) {
	s.m.RLock()
	defer s.m.RUnlock()
	if s.err != nil {
		return nil, s.err
	}
	c, ok := s.carts[userID]
	if !ok {
		return nil, repository.ErrCartNotFound
	}
	c.Items = append([]domain.CartItem{}, c.Items...)
	return &c, nil
}

func (s memoryCarts) UpsertCart(_ context.Context, cart *domain.Cart) error {
	s.m.Lock()
	defer s.m.Unlock()
	if s.err != nil {
		return s.err
	}
	if cart.ID.IsZero() {
		cart.ID = primitive.NewObjectID()
	}
	cart.UpdatedAt = time.Now().UTC()
	stored := *cart
	stored.Items = append([]domain.CartItem{}, cart.Items...)
	s.carts[cart.UserID] = stored
	return nil
}

type memoryUsers struct{ *memoryStore }

func (s memoryUsers) CreateUser(_ context.Context, user *domain.User) error {
	s.m.Lock()
	defer s.m.Unlock()
	if s.err != nil {
		return s.err
	}
	for _, u := range s.users {
		if u.Email == user.Email || u.Username == user.Username {
			return repository.ErrDuplicateKey
		}
	}
	user.ID = primitive.NewObjectID()
	s.users[user.ID] = *user
	return nil
}

func (s memoryUsers) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	s.m.RLock()
	defer s.m.RUnlock()
	if s.err != nil {
		return nil, s.err
	}
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s memoryUsers) GetUserByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	s.m.RLock()
	defer s.m.RUnlock()
	if s.err != nil {
		return nil, s.err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &u, nil
}

type memoryBooks struct{ *memoryStore }

func (s memoryBooks) ListBooks(_ context.Context, f domain.BookFilter) ([]domain.Book, int64, error) {
	s.m.RLock()
	defer s.m.RUnlock()
	if s.err != nil {
		return nil, 0, s.err
	}
	var matched []domain.Book
	for _, b := range s.books {
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
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	start := (f.Page - 1) * f.Limit
	if start >= len(matched) {
		return nil, int64(len(matched)), nil
	}
	return matched[start:min(start+f.Limit, len(matched))], int64(len(matched)), nil
}

func (s memoryBooks) GetBook(_ context.Context, id primitive.ObjectID) (*domain.Book, error) {
	s.m.RLock()
	defer s.m.RUnlock()
	if s.err != nil {
		return nil, s.err
	}
	b, ok := s.books[id]
	if !ok {
		return nil, repository.ErrBookNotFound
	}
	return &b, nil
}

func (s memoryBooks) GetBooksByIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*domain.Book, error) {
	s.m.RLock()
	defer s.m.RUnlock()
	if s.err != nil {
		return nil, s.err
	}
	out := make(map[primitive.ObjectID]*domain.Book, len(ids))
	for _, id := range ids {
		if b, ok := s.books[id]; ok {
			out[id] = &b
		}
	}
	return out, nil
}

func (s memoryBooks) CreateBook(_ context.Context, book *domain.Book) error {
	if err := s.failure(); err != nil {
		return err
	}
	*book = s.addBook(*book)
	return nil
}

func (s memoryBooks) InsertBooks(ctx context.Context, books []domain.Book) error {
	for i := range books {
		if err := s.CreateBook(ctx, &books[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s memoryBooks) UpdateBook(_ context.Context, id primitive.ObjectID, p domain.BookPatch) (*domain.Book, error) {
	s.m.Lock()
	defer s.m.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	b, ok := s.books[id]
	if !ok {
		return nil, repository.ErrBookNotFound
	}
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.Author != nil {
		b.Author = *p.Author
	}
	if p.Category != nil {
		b.Category = *p.Category
	}
	if p.Description != nil {
		b.Description = *p.Description
	}
	if p.Price != nil {
		b.Price = *p.Price
	}
	if p.Image != nil {
		b.Image = *p.Image
	}
	b.UpdatedAt = time.Now().UTC()
	s.books[id] = b
	return &b, nil
}

func (s memoryBooks) DeleteBook(_ context.Context, id primitive.ObjectID) error {
	s.m.Lock()
	defer s.m.Unlock()
	if s.err != nil {
		return s.err
	}
	if _, ok := s.books[id]; !ok {
		return repository.ErrBookNotFound
	}
	delete(s.books, id)
	return nil
}

func (s memoryBooks) CountBooks(context.Context) (int64, error) {
	s.m.RLock()
	defer s.m.RUnlock()
	return int64(len(s.books)), s.err
}

type stubLimiter struct {
	m       sync.Mutex
	allowed int
	calls   int
	err     error
}

func (l *stubLimiter) Allow(context.Context, string) (bool, error) {
	l.m.Lock()
	defer l.m.Unlock()
	l.calls++
	if l.err != nil {
		return true, l.err
	}
	return l.calls <= l.allowed, nil
}

var errStoreDown = errors.New("store down")

type failingCarts struct{ err error }

func (f failingCarts) GetCart(context.Context, primitive.ObjectID) (*domain.CartView, error) {
	return nil, f.err
}

func (f failingCarts) AddToCart(context.Context, primitive.ObjectID, string, int) (*domain.Cart, error) {
	return nil, f.err
}

func (f failingCarts) UpdateCartItem(context.Context, primitive.ObjectID, string, int) (*domain.Cart, error) {
	return nil, f.err
}

func (f failingCarts) RemoveFromCart(context.Context, primitive.ObjectID, string) (*domain.Cart, error) {
	return nil, f.err
}

type testEnv struct {
	store   *memoryStore
	auth    *service.AuthService
	catalog *service.CatalogService
	carts   *service.CartService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := newMemoryStore()
	authSvc, err := service.NewAuthService(memoryUsers{store}, service.AuthConfig{
		Secret:     testSecret,
		TokenTTL:   time.Hour,
		BcryptCost: bcrypt.MinCost,
	})
	require.NoError(t, err)

	return &testEnv{
		store:   store,
		auth:    authSvc,
		catalog: service.NewCatalogService(memoryBooks{store}),
		carts:   service.NewCartService(memoryCarts{store}, memoryBooks{store}),
	}
}

func (e *testEnv) deps() Dependencies {
	return Dependencies{Auth: e.auth, Catalog: e.catalog, Cart: e.carts}
}

func (e *testEnv) router(limiter *stubLimiter, ping func(context.Context) error) http.Handler {
	deps := e.deps()
	if limiter != nil {
		deps.Limiter = limiter
	}
	deps.Ping = ping
	return NewRouter(RouterConfig{
		RequestTimeout:     5 * time.Second,
		MaxRequestBodySize: 1 << 20,
		CORSAllowedOrigins: []string{"*"},
	}, deps)
}

// signup registers a user and returns its token and id.
func (e *testEnv) signup(t *testing.T, name string) (string, primitive.ObjectID) {
	t.Helper()

	res, err := e.auth.Register(context.Background(), service.RegisterInput{
		Username: name,
		Email:    name + "@example.com",
		Password: "password",
	})
	require.NoError(t, err)

	id, err := primitive.ObjectIDFromHex(res.User.ID)
	require.NoError(t, err)
	return res.Token, id
}
