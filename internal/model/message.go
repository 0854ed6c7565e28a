package model

// DefaultUsername is stored when a post carries no username.
const DefaultUsername = "anonymous"

// Message represents a stored board message
type Message struct {
	Username  string `json:"username"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

// NewMessage is the client-supplied part of a message; the timestamp is
// assigned by storage on insert.
type NewMessage struct {
	Username string
	Message  string
}

// TimeRange narrows a read to timestamps strictly before and/or strictly
// after the given bounds. A nil bound is not applied.
type TimeRange struct {
	Before *int64
	After  *int64
}

