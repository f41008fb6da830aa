// Package models holds the client-side views of server resources and of the
// events pushed over the realtime connection.
package models

import (
	"slices"
	"time"
)

type User struct {
	ID             string    `json:"id"`
	UserName       string    `json:"username"`
	Email          string    `json:"email"`
	Bio            string    `json:"bio"`
	Gender         string    `json:"gender,omitempty"`
	ProfilePicture string    `json:"profilePicture"`
	Followers      []string  `json:"followers"`
	Following      []string  `json:"following"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Clone returns a deep copy of u.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Followers = slices.Clone(u.Followers)
	c.Following = slices.Clone(u.Following)
	return &c
}

type Post struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author"`
	Caption   string    `json:"caption"`
	Image     string    `json:"image,omitempty"`
	Likes     []string  `json:"likes"`
	CreatedAt time.Time `json:"createdAt"`
}

// Profile is a user together with its posts, as returned by login and the
// profile endpoint.
type Profile struct {
	User
	Posts []Post `json:"posts"`
}

type Actor struct {
	ID             string `json:"id"`
	UserName       string `json:"username"`
	ProfilePicture string `json:"profilePicture,omitempty"`
}

// Notification is one relayed event as received by its target.
type Notification struct {
	Kind         string            `json:"kind"`
	Actor        Actor             `json:"actor"`
	TargetUserID string            `json:"targetUserId"`
	Payload      map[string]string `json:"payload,omitempty"`
}

// Text renders n for display.
func (n Notification) Text() string {
	if msg := n.Payload["message"]; msg != "" {
		return msg
	}
	return n.Actor.UserName + " " + n.Kind
}
