package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment represents a completed checkout
type Payment struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty" json:"_id,omitempty"`
	Email         string               `bson:"email" json:"email"`
	TransactionID string               `bson:"transactionId" json:"transactionId"`
	Price         float64              `bson:"price" json:"price"`
	Quantity      int                  `bson:"quantity" json:"quantity"`
	Date          time.Time            `bson:"date" json:"date"`
	Status        string               `bson:"status" json:"status"` // e.g. "pending", "delivered"
	CartItems     []primitive.ObjectID `bson:"cartItems" json:"cartItems"`
	MenuItems     []primitive.ObjectID `bson:"menuItems" json:"menuItems"`
	ItemNames     []string             `bson:"itemNames,omitempty" json:"itemNames,omitempty"`
}

// PaymentStatusPending is assigned to payments recorded without a status
const PaymentStatusPending = "pending"
