package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Cart is the persisted per-user cart. Items hold book references only.
type Cart struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitzero"`
	UserID    primitive.ObjectID `bson:"user" json:"user,omitzero"`
	Items     []CartItem         `bson:"items" json:"items"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt,omitzero"`
}

type CartItem struct {
	BookID   primitive.ObjectID `bson:"book" json:"book"`
	Quantity int                `bson:"quantity" json:"quantity"`
}

// CartView is a cart with every item joined to its book document.
type CartView struct {
	ID        primitive.ObjectID `json:"_id,omitzero"`
	UserID    primitive.ObjectID `json:"user,omitzero"`
	Items     []CartItemView     `json:"items"`
	UpdatedAt time.Time          `json:"updatedAt,omitzero"`
}

// CartItemView carries a nil Book when the referenced book no longer exists.
type CartItemView struct {
	Book     *Book `json:"book"`
	Quantity int   `json:"quantity"`
}

// IndexOf returns the position of the item referencing bookID, or -1.
func (c *Cart) IndexOf(bookID primitive.ObjectID) int {
	for i, item := range c.Items {
		if item.BookID == bookID {
			return i
		}
	}
	return -1
}

// BookIDs lists the distinct book references of the cart in item order.
func (c *Cart) BookIDs() []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(c.Items))
	ids := make([]primitive.ObjectID, 0, len(c.Items))
	for _, item := range c.Items {
		if _, ok := seen[item.BookID]; ok {
			continue
		}
		seen[item.BookID] = struct{}{}
		ids = append(ids, item.BookID)
	}
	return ids
}
