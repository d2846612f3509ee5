package service

import "errors"

// Kind classifies a service error so the transport layer can pick a status code.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindConflict
	KindAuth
	KindForbidden
	KindNotFound
	KindStore
)

// Error is a classified service failure. Message is safe to show to clients;
// Err carries the underlying cause, if any.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Kind == KindStore {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches sentinel errors by identity and store errors by kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e == t || (e.Kind == KindStore && t.Kind == KindStore && t.Err == nil)
}

var (
	ErrUsernameRequired    = &Error{Kind: KindValidation, Message: "username is required"}
	ErrEmailRequired       = &Error{Kind: KindValidation, Message: "email is required"}
	ErrPasswordRequired    = &Error{Kind: KindValidation, Message: "password is required"}
	ErrCredentialsRequired = &Error{Kind: KindValidation, Message: "username and password are required"}
	ErrUserExists          = &Error{Kind: KindConflict, Message: "username or email already exists"}
	ErrInvalidCredentials  = &Error{Kind: KindAuth, Message: "invalid credentials"}
	ErrTokenMissing        = &Error{Kind: KindAuth, Message: "missing authorization header", Err: ErrTokenMalformed}
	ErrTokenMalformed      = &Error{Kind: KindAuth, Message: "invalid authorization format"}
	ErrTokenExpired        = &Error{Kind: KindAuth, Message: "token expired"}
	ErrTokenInvalid        = &Error{Kind: KindAuth, Message: "invalid token"}
	ErrUserNotFound        = &Error{Kind: KindNotFound, Message: "user not found"}

	ErrTitleRequired = &Error{Kind: KindValidation, Message: "title is required"}
	ErrInvalidStatus = &Error{Kind: KindValidation, Message: "status must be watchlist or seen"}
	ErrInvalidRating = &Error{Kind: KindValidation, Message: "rating must be loved, liked or disliked"}
	ErrMediaNotFound = &Error{Kind: KindNotFound, Message: "media item not found"}
	ErrNotOwner      = &Error{Kind: KindForbidden, Message: "media item belongs to another user"}

	// ErrStore matches any wrapped repository failure via errors.Is.
	ErrStore = &Error{Kind: KindStore, Message: "database error"}
)

func storeError(err error) error {
	return &Error{Kind: KindStore, Message: "database error", Err: err}
}

// KindOf returns the kind of err, or KindStore for unclassified errors.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindStore
}
