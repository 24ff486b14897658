package domain

// Principal is the authenticated identity attached to a request by the auth
// middleware. Every owner-scoped operation downstream receives its UserID;
// client-supplied owner identifiers are never trusted.
type Principal struct {
	UserID uint
	Email  string
}
