// Copyright (c) 2025 The plausch authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"errors"
	"fmt"
	"net/http"
)

// BackendError is a non-success response from the backend: the server was
// reachable but rejected the request.
type BackendError struct {
	Status int
	Body   string
}

// Error implements the error interface.
func (e *BackendError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("backend error (HTTP %d): %s", e.Status, e.Body)
	}
	return fmt.Sprintf("backend error (HTTP %d)", e.Status)
}

// IsNotFound reports whether err is a backend 404.
func IsNotFound(err error) bool {
	var be *BackendError
	return errors.As(err, &be) && be.Status == http.StatusNotFound
}

// IsRejection reports whether err is any non-success backend response, as
// opposed to a connectivity failure.
func IsRejection(err error) bool {
	var be *BackendError
	return errors.As(err, &be)
}
