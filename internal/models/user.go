package models

import "time"

// User is the identity anchor every other row references. The deployment is
// single-user: one row, created lazily on first run.
type User struct {
	// ID is the fixed local user id (1 for the lifetime of the deployment).
	ID int64

	// Name is the display name of the user.
	Name string

	// CreatedAt is when the account row was first written.
	CreatedAt time.Time
}
