package models

// NotificationKind tags a relayed event.
type NotificationKind string

const (
	NotificationLike    NotificationKind = "like"
	NotificationDislike NotificationKind = "dislike"
	NotificationFollow  NotificationKind = "follow"
)

// Actor is the public face of the user who caused a notification.
type Actor struct {
	ID             string `json:"id"`
	UserName       string `json:"username"`
	ProfilePicture string `json:"profilePicture,omitempty"`
}

// ActorOf summarizes u for inclusion in a notification.
func ActorOf(u *User) Actor {
	return Actor{ID: u.ID, UserName: u.UserName, ProfilePicture: u.ProfilePicture}
}

// Notification is relayed to TargetUserID if that user is online and dropped
// otherwise. It is never stored.
type Notification struct {
	Kind         NotificationKind  `json:"kind"`
	Actor        Actor             `json:"actor"`
	TargetUserID string            `json:"targetUserId"`
	Payload      map[string]string `json:"payload,omitempty"`
}
