/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package prose

import (
	"strings"
	"unicode"
)

// BracketStyle selects the glyph pair a renderer wraps around a citation's
// quoted content, independent of the glyphs used in the source text.
type BracketStyle string

const (
	BracketCurly   BracketStyle = "curly"
	BracketRound   BracketStyle = "round"
	BracketSquare  BracketStyle = "square"
	BracketAngle   BracketStyle = "angle"
	BracketQuranic BracketStyle = "quranic"
)

// Delims resolves the style to its left/right glyphs.
// An unrecognized style falls back to curly.
func (b BracketStyle) Delims() (left, right string) {
	switch b {
	case BracketRound:
		return "(", ")"
	case BracketSquare:
		return "[", "]"
	case BracketAngle:
		return "«", "»"
	case BracketQuranic:
		return ornateOpen, ornateClose
	default:
		return curlyOpen, curlyClose
	}
}

// Decomposition is the display-ready breakdown of a citation run.
// Reference, when present, keeps its own square brackets. Left/Right are
// empty for a standalone reference, which is rendered as a plain note rather
// than a bracketed verse.
type Decomposition struct {
	Quoted    string `json:"quoted"`
	Reference string `json:"reference,omitempty"`
	Left      string `json:"left,omitempty"`
	Right     string `json:"right,omitempty"`
}

// Decompose splits a citation run into its quoted content and optional
// trailing reference, stripping the quotation's source delimiters and
// resolving the caller's bracket style.
//
// Citation runs produced by Tokenize always conform to the grammar; if a
// hand-built run does not, the whole text is treated as quoted content with
// no reference and no delimiter stripping.
func Decompose(r Run, style BracketStyle) Decomposition {
	text := r.Text
	// Standalone bracketed reference: no quoted content, no delimiters.
	if strings.HasPrefix(text, refOpen) {
		if n := closedSpan(text, refOpen, refClose); n == len(text) {
			return Decomposition{Reference: text}
		}
	}

	open, closing := curlyOpen, curlyClose
	if strings.HasPrefix(text, ornateOpen) {
		open, closing = ornateOpen, ornateClose
	}
	qlen := closedSpan(text, open, closing)
	if qlen == 0 {
		// Defensive fallback for non-conforming input.
		return Decomposition{Quoted: text}
	}
	quoted := text[len(open) : qlen-len(closing)]

	ref := ""
	rest := text[qlen:]
	trimmed := strings.TrimLeftFunc(rest, unicode.IsSpace)
	if trimmed != "" {
		if strings.HasPrefix(trimmed, refOpen) && closedSpan(trimmed, refOpen, refClose) == len(trimmed) {
			ref = trimmed
		} else {
			// Trailing garbage the grammar would not have produced.
			return Decomposition{Quoted: text}
		}
	}

	left, right := style.Delims()
	return Decomposition{Quoted: quoted, Reference: ref, Left: left, Right: right}
}
