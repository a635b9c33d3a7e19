package library

import "errors"

var (
	// ErrNilSource is returned when a nil source is added to the library.
	ErrNilSource = errors.New("nil source")

	// ErrSourceExists is returned when a source id is already registered.
	ErrSourceExists = errors.New("source already registered")

	// ErrSourceNotFound is returned when an operation names an unknown
	// source id.
	ErrSourceNotFound = errors.New("source not found")

	// ErrBadManifest is returned when manifest data is not valid JSON or
	// is missing required fields.
	ErrBadManifest = errors.New("malformed manifest")

	// ErrManifestVersion is returned when a manifest was written by a
	// newer format version than this build understands.
	ErrManifestVersion = errors.New("unsupported manifest version")
)
