// Copyright 2025 Lorica Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"context"
	"errors"
	"net"
)

// Cross-cutting error taxonomy. Stages and services wrap their failures with
// one of these sentinels so callers can decide between retrying, rejecting
// the input, or failing closed.
var (
	// ErrTransientBackend indicates a retryable backend failure such as a
	// connection error or timeout to the embedding or store backend.
	ErrTransientBackend = errors.New("transient backend failure")

	// ErrValidation indicates non-retryable bad input: invalid chunk
	// parameters, an unsupported file type, or a dimension mismatch.
	ErrValidation = errors.New("validation failed")

	// ErrDimensionMismatch indicates the embedding backend returned vectors
	// of an unexpected dimension. This signals a configuration error, never
	// a transient fault, and is not retried.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrUnknownRole indicates an unrecognized role value. Access decisions
	// fail closed on this error by defaulting to least privilege.
	ErrUnknownRole = errors.New("unknown role")

	// ErrInvalidAccessLevel indicates an unrecognized access level value.
	ErrInvalidAccessLevel = errors.New("invalid access level")

	// ErrEmptyDocument indicates extraction produced no text.
	ErrEmptyDocument = errors.New("document contains no text")
)

// IsTransient reports whether err warrants a retry. Timeouts on external
// calls are treated as the corresponding stage's transient failure;
// cancellation is not, since the caller asked the work to stop.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrValidation) || errors.Is(err, ErrDimensionMismatch) {
		return false
	}
	if errors.Is(err, ErrTransientBackend) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		// Dial and read failures indicate the backend is unreachable.
		return true
	}
	return false
}

// IsValidation reports whether err is a non-retryable input error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrDimensionMismatch)
}
