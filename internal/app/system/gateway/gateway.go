// Package gateway implements the persistence contract behind a class list
// editing session. Local talks to MongoDB in-process; Client talks to a
// running server over its JSON API.
package gateway

import (
	"errors"

	"github.com/dalemusser/quickclass/internal/app/system/classstore"
	"github.com/dalemusser/quickclass/internal/domain/models"
)

var (
	// ErrTransport covers network failures and unexpected server answers.
	ErrTransport = errors.New("gateway: transport failure")
	// ErrUnauthorized is returned for 401 and 403 answers.
	ErrUnauthorized = errors.New("gateway: not authorized")
	// ErrRejected is returned when the backend refuses a request.
	ErrRejected = errors.New("gateway: rejected")
)

// RejectedError carries the backend's reason for refusing a request.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string { return "gateway: rejected: " + e.Message }

// Unwrap lets errors.Is match ErrRejected.
func (e *RejectedError) Unwrap() error { return ErrRejected }

func reject(msg string) error { return &RejectedError{Message: msg} }

// Envelope is the JSON answer shape of the class API.
// On failure Data holds a message string.
type Envelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// ClassesPayload is the body of list reads and saves.
type ClassesPayload struct {
	Classes []models.ClassEntry `json:"classes"`
}

// ImportRequest is the body of a batch import.
type ImportRequest struct {
	Text string `json:"text"`
	Mode string `json:"mode,omitempty"`
}

var (
	_ classstore.Gateway = (*Local)(nil)
	_ classstore.Gateway = (*Client)(nil)
)
