package domain

// Account is a registered user of the social media API.
type Account struct {
	ID       int64  `json:"accountId" db:"account_id"` // Assigned by storage on creation
	Username string `json:"username"  db:"username"`   // Unique across all accounts
	Password string `json:"password"  db:"password"`   // Stored as submitted
}

// AccountCandidate is an account as submitted by a caller.
// Nil fields were absent from the request.
type AccountCandidate struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
}

// NewAccountCandidate creates a candidate with both fields present.
func NewAccountCandidate(username, password string) *AccountCandidate {
	return &AccountCandidate{
		Username: &username,
		Password: &password,
	}
}
