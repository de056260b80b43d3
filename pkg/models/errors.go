package models

import "errors"

var (
	ErrConfigurationMissing = errors.New("configuration missing")
	ErrPermissionDenied     = errors.New("permission denied")
	ErrExternalToolFailure  = errors.New("external tool failure")
	ErrArchiveMemberMissing = errors.New("archive member missing")
	ErrUnknownDatabase      = errors.New("unknown database")
)
