// Package apperr holds sentinel errors shared across packages.
package apperr

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrEmptyInput      = errors.New("no transcripts found")
	ErrEmptyBody       = errors.New("empty body")
	ErrInvalidUTF8     = errors.New("invalid utf-8")
	ErrPathEscapes     = errors.New("path escapes root")
	ErrInvalidCategory = errors.New("invalid category")
	ErrEmptyGroup      = errors.New("group has no members")
	ErrOutputInInput   = errors.New("output directory is the input directory")
)
