package services

import "errors"

// Error classes mapped to HTTP statuses by the handlers. Wrap them with
// fmt.Errorf("%w: ...") so the message after the colon reaches the client.
var (
	ErrValidation         = errors.New("validation failed")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("not found")
	ErrUpstream           = errors.New("upstream failure")
)

// Client-facing messages.
const (
	MsgCredentialsRequired = "Email and password are required."
	MsgPasswordTooShort    = "Password must be at least 6 characters long."
	MsgPasswordTooLong     = "Password must be at most 72 bytes long."
	MsgEmailExists         = "Email already exists."
	MsgInvalidCredentials  = "Invalid email or password."
	MsgRegistered          = "User registered successfully."
	MsgLocationNotFound    = "The following location doesn't exist. Kindly check the location you have entered."
)

// ClientError carries a message that is safe to show to the caller.
type ClientError struct {
	Kind    error
	Message string
}

func (e *ClientError) Error() string { return e.Kind.Error() + ": " + e.Message }

func (e *ClientError) Unwrap() error { return e.Kind }

func clientError(kind error, msg string) error {
	return &ClientError{Kind: kind, Message: msg}
}
