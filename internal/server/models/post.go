package models

import (
	"slices"
	"time"
)

type Post struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author"`
	Caption   string    `json:"caption"`
	Image     string    `json:"image,omitempty"`
	Likes     []string  `json:"likes"`
	CreatedAt time.Time `json:"createdAt"`
}

func (p *Post) LikedBy(userID string) bool {
	return slices.Contains(p.Likes, userID)
}
