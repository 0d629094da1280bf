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

import "fmt"

// ValidateAccessLevel validates that an AccessLevel has a recognized value.
func ValidateAccessLevel(level AccessLevel) error {
	switch level {
	case AccessEmployee, AccessManager, AccessAdmin:
		return nil
	default:
		return fmt.Errorf("%w: %w: %q", ErrValidation, ErrInvalidAccessLevel, level)
	}
}

// ParseRole normalizes a role string. An unrecognized value fails closed:
// it returns RoleEmployee (least privilege) together with ErrUnknownRole,
// never RoleAdmin. Callers that want to log the anomaly can inspect the
// error while still using the returned role safely.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleEmployee, RoleManager, RoleAdmin:
		return Role(raw), nil
	default:
		return RoleEmployee, fmt.Errorf("%w: %q", ErrUnknownRole, raw)
	}
}

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - Title must not be empty
//   - AccessLevel must be recognized
//
// NOT validated (populated by the pipeline):
//   - State, ChunkCount, FailedStage (owned by the ingestion run)
//   - Id (0 is replaced by a content-derived ID at upload)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrValidation)
	}
	if doc.Title == "" {
		return fmt.Errorf("%w: document title cannot be empty", ErrValidation)
	}
	return ValidateAccessLevel(doc.AccessLevel)
}

// ValidateIndexedRecord validates a record before it is upserted.
// Records must carry a chunk identity and a non-empty vector; the store
// rejects the whole batch otherwise so no partial batch is ever applied.
func ValidateIndexedRecord(record *IndexedRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrValidation)
	}
	if record.ChunkId == "" {
		return fmt.Errorf("%w: record chunk id cannot be empty", ErrValidation)
	}
	if len(record.Vector) == 0 {
		return fmt.Errorf("%w: record vector cannot be empty", ErrValidation)
	}
	if err := ValidateAccessLevel(record.Metadata.AccessLevel); err != nil {
		return err
	}
	return nil
}
