package application

import "errors"

// Error taxonomy surfaced to handlers. Validation problems travel as
// validation.FieldErrors; everything else maps onto one of these sentinels.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("not the owner")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrWrongPassword      = errors.New("incorrect old password")
)

// Messages for field-scoped validation errors that need the store.
const (
	MsgUsernameTaken    = "Username is already taken"
	MsgEmailTaken       = "Email is already taken"
	MsgPostMissing      = "Post does not exist"
	MsgPasswordMismatch = "Passwords do not match"
)
