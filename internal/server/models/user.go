// Package models defines server-side data models persisted in the database
// and the transient events relayed to connected users.
package models

import (
	"slices"
	"time"
)

// User is a registered account with its relationship lists.
//
// Followers and Following behave as sets: an id appears at most once and a
// user never appears in its own lists. Posts keeps authoring order.
type User struct {
	ID             string    `json:"id"`
	UserName       string    `json:"username"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	Bio            string    `json:"bio"`
	Gender         string    `json:"gender,omitempty"`
	ProfilePicture string    `json:"profilePicture"`
	Posts          []string  `json:"posts"`
	Followers      []string  `json:"followers"`
	Following      []string  `json:"following"`
	CreatedAt      time.Time `json:"createdAt"`
}

// IsFollowing reports whether u follows targetID.
func (u *User) IsFollowing(targetID string) bool {
	return slices.Contains(u.Following, targetID)
}

// IsFollowedBy reports whether followerID follows u.
func (u *User) IsFollowedBy(followerID string) bool {
	return slices.Contains(u.Followers, followerID)
}

// Public returns a copy safe to hand to clients: the hash is cleared and the
// lists are non-nil so they encode as [] rather than null.
func (u *User) Public() *User {
	c := *u
	c.PasswordHash = ""
	c.Posts = nonNil(u.Posts)
	c.Followers = nonNil(u.Followers)
	c.Following = nonNil(u.Following)
	return &c
}

// ProfileUpdate carries optional profile edits; nil fields are left unchanged.
type ProfileUpdate struct {
	Bio            *string
	Gender         *string
	ProfilePicture *string
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return slices.Clone(s)
}
