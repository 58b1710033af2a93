package event

// UserRegisteredDestination is the topic/subject for registration events.
const UserRegisteredDestination string = "auth.user.registered"

// UserRegisteredMessage is the wire payload published after a successful
// registration.
type UserRegisteredMessage struct {
	UserID     int64  `json:"user_id"`
	Username   string `json:"username"`
	Identifier string `json:"identifier"`
}
