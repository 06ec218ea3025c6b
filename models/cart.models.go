package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartItem represents one menu item placed in a user's cart
type CartItem struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	MenuItemID string             `bson:"menuItemId" json:"menuItemId"`
	Name       string             `bson:"name" json:"name"`
	Image      string             `bson:"image" json:"image"`
	Price      float64            `bson:"price" json:"price"`
	Email      string             `bson:"email" json:"email"`
}
