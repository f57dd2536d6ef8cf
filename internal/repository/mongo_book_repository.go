package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/CoderAaditya/BookBliss-Backend/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoBookRepository struct {
	collection *mongo.Collection
}

func NewMongoBookRepository(db *mongo.Database) *MongoBookRepository {
	return &MongoBookRepository{
		collection: db.Collection("books"),
	}
}

func (m *MongoBookRepository) ListBooks(ctx context.Context, f domain.BookFilter) ([]domain.Book, int64, error) {
	filter := bookQuery(f)

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(f.Page-1) * int64(f.Limit)).
		SetLimit(int64(f.Limit))

	cursor, err := m.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query books: %w", err)
	}
	defer cursor.Close(ctx)

	books := []domain.Book{}
	if err := cursor.All(ctx, &books); err != nil {
		return nil, 0, fmt.Errorf("failed to decode books: %w", err)
	}
	if books == nil {
		books = []domain.Book{}
	}

	total, err := m.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count books: %w", err)
	}

	return books, total, nil
}

// bookQuery leaves out every empty filter instead of matching it against "".
func bookQuery(f domain.BookFilter) bson.M {
	query := bson.M{}
	if f.Search != "" {
		query["title"] = containsIgnoreCase(f.Search)
	}
	if f.Category != "" {
		query["category"] = f.Category
	}
	if f.Author != "" {
		query["author"] = containsIgnoreCase(f.Author)
	}
	return query
}

func containsIgnoreCase(s string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(s), "$options": "i"}
}

func (m *MongoBookRepository) GetBook(ctx context.Context, id primitive.ObjectID) (*domain.Book, error) {
	var book domain.Book
	err := m.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&book)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to get book: %w", err)
	}

	return &book, nil
}

// GetBooksByIDs fetches all referenced books in one query. Missing ids are absent from the map.
func (m *MongoBookRepository) GetBooksByIDs(
	ctx context.Context,
	ids []primitive.ObjectID,
) (map[primitive.ObjectID]*domain.Book, error) {
	result := make(map[primitive.ObjectID]*domain.Book, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	cursor, err := m.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to query books by ids: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var book domain.Book
		if err := cursor.Decode(&book); err != nil {
			return nil, fmt.Errorf("failed to decode book: %w", err)
		}
		result[book.ID] = &book
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor iteration error: %w", err)
	}

	return result, nil
}

func (m *MongoBookRepository) CreateBook(ctx context.Context, book *domain.Book) error {
	stampNewBook(book, time.Now().UTC())

	if _, err := m.collection.InsertOne(ctx, book); err != nil {
		return fmt.Errorf("failed to create book: %w", err)
	}

	return nil
}

func (m *MongoBookRepository) InsertBooks(ctx context.Context, books []domain.Book) error {
	if len(books) == 0 {
		return nil
	}

	now := time.Now().UTC()
	docs := make([]interface{}, len(books))
	for i := range books {
		stampNewBook(&books[i], now)
		docs[i] = books[i]
	}

	if _, err := m.collection.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert books: %w", err)
	}

	return nil
}

func stampNewBook(book *domain.Book, now time.Time) {
	if book.ID.IsZero() {
		book.ID = primitive.NewObjectID()
	}
	if book.CreatedAt.IsZero() {
		book.CreatedAt = now
	}
	book.UpdatedAt = now
}

func (m *MongoBookRepository) UpdateBook(
	ctx context.Context,
	id primitive.ObjectID,
	patch domain.BookPatch,
) (*domain.Book, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Author != nil {
		set["author"] = *patch.Author
	}
	if patch.Category != nil {
		set["category"] = *patch.Category
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Price != nil {
		set["price"] = *patch.Price
	}
	if patch.Image != nil {
		set["image"] = *patch.Image
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var book domain.Book
	err := m.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&book)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to update book: %w", err)
	}

	return &book, nil
}

func (m *MongoBookRepository) DeleteBook(ctx context.Context, id primitive.ObjectID) error {
	result, err := m.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}

	if result.DeletedCount == 0 {
		return ErrBookNotFound
	}

	return nil
}

func (m *MongoBookRepository) CountBooks(ctx context.Context) (int64, error) {
	count, err := m.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count books: %w", err)
	}
	return count, nil
}

func (m *MongoBookRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
	}

	_, err := m.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create book indexes: %w", err)
	}

	return nil
}
