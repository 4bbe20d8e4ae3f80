/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package prose

// RunKind indicates the classification of a run of prose text.
// Standard: plain text between matched spans
// Name:     a dictionary name (bare, or a bold span containing one)
// Citation: a quotation span and/or a bracketed reference
// Bold:     **...** span (markers stripped)
// Italic:   *...* or _..._ span (markers stripped)

type RunKind int

const (
	RunStandard RunKind = iota
	RunName
	RunCitation
	RunBold
	RunItalic
)

// String returns a stable lowercase label for serialization and styling lookups.
func (k RunKind) String() string {
	switch k {
	case RunName:
		return "name"
	case RunCitation:
		return "citation"
	case RunBold:
		return "bold"
	case RunItalic:
		return "italic"
	default:
		return "standard"
	}
}

// Run is a classified span of a paragraph.
// Text carries the content with emphasis markers already stripped for Bold and
// Italic runs; Citation runs keep their original delimiters (stripping is
// deferred to Decompose). Raw is the untouched span from the source line, so
// concatenating Raw over all runs of a paragraph reconstructs the input.
type Run struct {
	Kind RunKind `json:"kind"`
	Text string  `json:"text"`
	Raw  string  `json:"raw"`
}

// Paragraph is an ordered sequence of runs for one source line.
// Its identity is the index within the document; together with a run's
// position this forms a deterministic (paragraph, run) key for renderers.
type Paragraph struct {
	Index int   `json:"index"`
	Runs  []Run `json:"runs"`
}
