package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Book struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title       string             `bson:"title" json:"title"`
	Author      string             `bson:"author" json:"author"`
	Category    string             `bson:"category" json:"category"`
	Description string             `bson:"description" json:"description"`
	Price       float64            `bson:"price" json:"price"`
	Image       string             `bson:"image,omitempty" json:"image,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// BookPatch holds the fields of a partial update; nil means unchanged.
type BookPatch struct {
	Title       *string
	Author      *string
	Category    *string
	Description *string
	Price       *float64
	Image       *string
}

func (p BookPatch) IsEmpty() bool {
	return p.Title == nil && p.Author == nil && p.Category == nil &&
		p.Description == nil && p.Price == nil && p.Image == nil
}

// BookFilter selects a page of the catalog. Empty strings mean "no filter".
type BookFilter struct {
	Search   string
	Category string
	Author   string
	Page     int
	Limit    int
}

type BookPage struct {
	Books       []Book `json:"books"`
	TotalPages  int64  `json:"totalPages"`
	CurrentPage int    `json:"currentPage"`
}
