package domain

// MaxMessageLength is the maximum number of characters in a message text.
const MaxMessageLength = 255

// Message is a text posted by an account.
type Message struct {
	ID              int64  `json:"messageId"       db:"message_id"`
	PostedBy        int64  `json:"postedBy"        db:"posted_by"`
	Text            string `json:"messageText"     db:"message_text"`
	TimePostedEpoch *int64 `json:"timePostedEpoch" db:"time_posted_epoch"`
}

// MessageCandidate is a message as submitted by a caller.
// Nil fields were absent from the request.
type MessageCandidate struct {
	Text            *string `json:"messageText"`
	PostedBy        *int64  `json:"postedBy"`
	TimePostedEpoch *int64  `json:"timePostedEpoch"`
}

// NewMessageCandidate creates a candidate with text and author present.
func NewMessageCandidate(text string, postedBy int64) *MessageCandidate {
	return &MessageCandidate{
		Text:     &text,
		PostedBy: &postedBy,
	}
}
