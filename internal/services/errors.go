package services

import "errors"

var (
	// validation errors; handlers report these to the client with a
	// human-readable message
	ErrMissingCredentials = errors.New("Please enter both username and password")
	ErrPasswordTooShort   = errors.New("Password must be at least 6 characters")
	ErrUsernameTaken      = errors.New("Username already exists")
	ErrUsernameReserved   = errors.New("Username is reserved")
	ErrUnknownUser        = errors.New("Username not found")
	ErrWrongPassword      = errors.New("Incorrect password")
	ErrMissingUser        = errors.New("user is required")

	// file transfer errors
	ErrNoFilename      = errors.New("No file selected")
	ErrFileTypeBlocked = errors.New("File type not allowed")
	ErrFileTooLarge    = errors.New("File too large (max 50MB)")
	ErrFileNotFound    = errors.New("File not found")
)
