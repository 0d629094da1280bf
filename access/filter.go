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


// Package access derives vector-store search predicates from a caller's
// role and department. The predicate is enforced inside the store query,
// never by post-filtering scored results, so restricted content cannot
// leak through score-based truncation.
package access

import (
	"github.com/loricahq/corpus/core"
)

// visibleLevels maps each role to the access levels it may read.
// A role sees its own tier and every tier below it.
var visibleLevels = map[core.Role][]core.AccessLevel{
	core.RoleEmployee: {core.AccessEmployee},
	core.RoleManager:  {core.AccessEmployee, core.AccessManager},
	core.RoleAdmin:    nil, // unconditional
}

// BuildFilter derives a metadata predicate from (role, department).
//
// Rules:
//   - admin: no restriction, department scoping bypassed entirely.
//   - manager: accessLevel in {employee, manager}.
//   - employee: accessLevel in {employee}.
//   - With a department and a non-admin role, records must additionally be
//     tagged with that department or be untagged (general knowledge).
//
// The returned predicate is a pure function of its inputs: the same
// (role, department) pair always yields the same behavior, and nothing the
// caller mutates later can widen it. An unrecognized role fails closed to
// employee visibility, never admin.
func BuildFilter(role core.Role, department string) core.Predicate {
	normalized, err := core.ParseRole(string(role))
	if err != nil {
		// ParseRole already defaulted to least privilege.
		role = normalized
	}

	if role == core.RoleAdmin {
		return nil
	}

	levels := append([]core.AccessLevel(nil), visibleLevels[role]...)
	dept := department

	return func(md *core.RecordMetadata) bool {
		if md == nil {
			return false
		}
		allowed := false
		for _, level := range levels {
			if md.AccessLevel == level {
				allowed = true
				break
			}
		}
		if !allowed {
			return false
		}
		if dept != "" && md.Department != "" && md.Department != dept {
			return false
		}
		return true
	}
}
