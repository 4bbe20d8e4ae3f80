/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the project manifest model for Hibr Writer.
// A project groups one or more manuscripts of right-to-left prose together
// with the classification inputs each manuscript needs: a dictionary of
// proper names, the positional name policy, and the bracket style used when
// rendering citations. The manifest serializes to human-readable JSON.

// Project represents a writing project and its metadata.
type Project struct {
	Name        string       `json:"name"`
	Metadata    Metadata     `json:"metadata,omitempty"`
	Manuscripts []Manuscript `json:"manuscripts"`
}

// Metadata contains optional descriptive metadata for a project.
type Metadata struct {
	Author string `json:"author,omitempty"`
	Series string `json:"series,omitempty"`
	Notes  string `json:"notes,omitempty"`
}

// Manuscript is one prose document inside a project.
// Path is relative to the project's manuscripts folder. Names is the
// manuscript's dictionary of proper names; NamesAtStartOnly restricts Name
// classification to paragraph-leading mentions; BracketStyle selects the
// citation rendering glyphs (curly, round, square, angle, quranic).
type Manuscript struct {
	Title            string   `json:"title"`
	Path             string   `json:"path"`
	Names            []string `json:"names,omitempty"`
	NamesAtStartOnly bool     `json:"namesAtStartOnly"`
	BracketStyle     string   `json:"bracketStyle,omitempty"`
}
