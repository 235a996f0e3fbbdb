package code_collector

import "errors"

var (
	// ErrRootNotFound is returned when the root path does not exist. No output is written.
	ErrRootNotFound = errors.New("root path does not exist")
	// ErrRootNotDirectory is returned when the root path exists but is not a directory. No output is written.
	ErrRootNotDirectory = errors.New("root path is not a directory")
	ErrCreateOutput     = errors.New("error creating output file")
	ErrWriteOutput      = errors.New("error writing output file")
	// ErrInvalidEncoding marks a source file whose content is not valid UTF-8
	ErrInvalidEncoding = errors.New("file content is not valid UTF-8")
)
