package errors

import "errors"

var (
	ErrUnauthenticated       = errors.New("authentication required")
	ErrUserNotFound          = errors.New("user not found")
	ErrUserInactive          = errors.New("user account is inactive")
	ErrWorkspaceNotFound     = errors.New("workspace not found")
	ErrForbidden             = errors.New("insufficient capability for this workspace")
	ErrInvalidWorkspaceInput = errors.New("invalid workspace input")
)
