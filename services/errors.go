package services

import (
	"errors"
	"fmt"
)

// Domain failures reported by the service layer. Controllers translate them to
// HTTP status codes; services never touch the transport.
var (
	// ErrNotFound covers both a genuinely absent entity and an entity that
	// exists but is invisible to the caller because ownership gates it.
	ErrNotFound = errors.New("not found")
	// ErrForbidden means a valid identity acting on someone else's entity.
	ErrForbidden = errors.New("forbidden")
	// ErrDuplicateName signals a (name, owner) folder collision.
	ErrDuplicateName = errors.New("duplicate folder name")
	// ErrFolderNotEmpty refuses deletion of a folder that still holds documents.
	ErrFolderNotEmpty = errors.New("folder is not empty")
	// ErrUsernameTaken signals a signup against an existing username.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrInvalidCredentials covers both an unknown username and a wrong
	// password; login reports them identically.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// RejectReason identifies which admission check a file failed.
type RejectReason string

const (
	RejectEmpty          RejectReason = "empty"
	RejectDisallowedType RejectReason = "disallowed-type"
	RejectTooLarge       RejectReason = "too-large"
)

// FileRejectedError reports an admission-policy violation with its reason.
type FileRejectedError struct {
	Reason RejectReason
	Name   string
}

func (e *FileRejectedError) Error() string {
	return fmt.Sprintf("file %q rejected: %s", e.Name, e.Reason)
}

// IsFileRejected extracts a FileRejectedError from an error chain.
func IsFileRejected(err error) (*FileRejectedError, bool) {
	var fr *FileRejectedError
	if errors.As(err, &fr) {
		return fr, true
	}
	return nil, false
}
