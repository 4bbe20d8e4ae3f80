/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package prose

import (
	"sort"
	"strings"
)

// Dictionary is a caller-supplied set of literal proper names.
// Matching is exact and case-sensitive. Entries are kept longest-first so a
// longer name is never shadowed by a shorter one that is its prefix.
type Dictionary struct {
	entries []string
}

// NewDictionary builds a dictionary from the given names.
// Empty strings and duplicates are dropped; input order does not matter.
func NewDictionary(names ...string) Dictionary {
	seen := make(map[string]struct{}, len(names))
	var out []string
	for _, n := range names {
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return out[i] < out[j]
	})
	return Dictionary{entries: out}
}

// Empty reports whether the dictionary has no entries.
func (d Dictionary) Empty() bool { return len(d.entries) == 0 }

// Entries returns a copy of the entries in longest-first order.
func (d Dictionary) Entries() []string {
	return append([]string(nil), d.entries...)
}

// matchAt returns the longest entry that is a prefix of s.
func (d Dictionary) matchAt(s string) (string, bool) {
	for _, e := range d.entries {
		if strings.HasPrefix(s, e) {
			return e, true
		}
	}
	return "", false
}

// containsAny reports whether s contains any entry as a substring.
// Used for the bold-span name promotion rule.
func (d Dictionary) containsAny(s string) bool {
	for _, e := range d.entries {
		if strings.Contains(s, e) {
			return true
		}
	}
	return false
}
