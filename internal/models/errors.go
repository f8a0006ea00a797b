package models

import "errors"

var (
	ErrValidation        = errors.New("validation failed")
	ErrExtraction        = errors.New("pdf extraction failed")
	ErrInvalidChunking   = errors.New("chunk size must be greater than chunk overlap")
	ErrIndexBuild        = errors.New("failed to build similarity index")
	ErrNotReady          = errors.New("no document has been ingested")
	ErrProvider          = errors.New("language model provider error")
	ErrUnknownProvider   = errors.New("unknown language model provider")
	ErrSessionNotFound   = errors.New("session not found")
	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrNoProposal        = errors.New("no proposal has been generated")
)
