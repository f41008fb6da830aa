package models

// Profile is a public user with its posts expanded, newest first. Its
// "posts" field replaces the embedded id list when encoded.
type Profile struct {
	*User
	Posts []*Post `json:"posts"`
}

// NewProfile sanitizes u and attaches posts.
func NewProfile(u *User, posts []*Post) *Profile {
	if posts == nil {
		posts = []*Post{}
	}
	return &Profile{User: u.Public(), Posts: posts}
}
