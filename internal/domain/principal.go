package domain

// Principal is the identity attached to a live connection after its token was verified.
// It lives exactly as long as the connection and is never persisted.
type Principal struct {
	UserID UserID
	Email  string
}
