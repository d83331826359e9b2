package client

import "errors"

var (
	ErrUnavailable     = errors.New("server unavailable")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrAlreadyExists   = errors.New("username already exists")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("note not found or unauthorized")
	ErrExportDisabled  = errors.New("export is not enabled on the server")
)
