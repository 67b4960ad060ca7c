package domain

import "errors"

var (
	ErrProfileNotFound  = errors.New("profile not found")
	ErrProfileExists    = errors.New("profile name already exists")
	ErrModNotFound      = errors.New("mod not found")
	ErrDownloadFailed   = errors.New("download failed")
	ErrChecksumMismatch = errors.New("checksum mismatch")
	ErrValidationFailed = errors.New("response validation failed")
	ErrFileNotFound     = errors.New("file not found")
	ErrRuntimeNotReady  = errors.New("runtime environment not installed")
)
