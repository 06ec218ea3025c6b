package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RoleAdmin is the only elevated role a user can carry.
const RoleAdmin = "admin"

// User represents a registered diner or staff member
type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Name     string             `bson:"name" json:"name"`
	Email    string             `bson:"email" json:"email"`
	PhotoURL string             `bson:"photoURL,omitempty" json:"photoURL,omitempty"`
	Role     string             `bson:"role,omitempty" json:"role,omitempty"` // "" or "admin"
}

// IsAdmin reports whether the user carries the admin role
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
