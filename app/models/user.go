package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an account record in the users collection.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"  json:"id"`
	Username     string             `bson:"username"       json:"username"`
	Email        string             `bson:"email"          json:"email"`
	PasswordHash string             `bson:"password"       json:"-"` // hashed, never serialised
	CreatedAt    time.Time          `bson:"created_at"     json:"created_at"`
}

// UserSummary is the {id, username, email} shape returned by signup and login.
type UserSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID.Hex(), Username: u.Username, Email: u.Email}
}
