/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package prose classifies right-to-left prose into typed runs so a renderer
// can style each span. A single left-to-right scan reconciles four lexical
// conventions under a fixed precedence: bracketed citations, **bold**,
// *italic*/_italic_, and a caller-supplied dictionary of proper names.
//
// The tokenizer is a total function: every input yields a run sequence, and
// malformed markup degrades to Standard text rather than failing.
package prose

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Quotation delimiters recognized by the citation pattern.
const (
	curlyOpen   = "{"
	curlyClose  = "}"
	ornateOpen  = "﴿"
	ornateClose = "﴾"
	refOpen     = "["
	refClose    = "]"
)

// Tokenize splits one paragraph's text into an ordered sequence of classified
// runs covering the entire input with no gaps and no overlaps.
//
// Pattern precedence at each scan position: citation, bold, italic, dictionary
// name. Unmatched characters accumulate into Standard runs. When atStartOnly
// is true, a name counts as RunName only if everything before its span is
// whitespace; a bare match elsewhere stays Standard text and a bold span
// merely containing a name stays RunBold.
func Tokenize(line string, names Dictionary, atStartOnly bool) []Run {
	if line == "" {
		return nil
	}
	var runs []Run
	pend := 0 // start of the pending Standard span

	flush := func(end int) {
		if pend < end {
			s := line[pend:end]
			runs = append(runs, Run{Kind: RunStandard, Text: s, Raw: s})
		}
	}

	i := 0
	for i < len(line) {
		if n := matchCitation(line[i:]); n > 0 {
			flush(i)
			raw := line[i : i+n]
			runs = append(runs, Run{Kind: RunCitation, Text: raw, Raw: raw})
			i += n
			pend = i
			continue
		}
		if n := matchBold(line[i:]); n > 0 {
			raw := line[i : i+n]
			content := raw[2 : n-2]
			kind := RunBold
			if !names.Empty() && names.containsAny(content) {
				if !atStartOnly || blankPrefix(line[:i]) {
					kind = RunName
				}
			}
			flush(i)
			runs = append(runs, Run{Kind: kind, Text: content, Raw: raw})
			i += n
			pend = i
			continue
		}
		if n := matchItalic(line[i:]); n > 0 {
			raw := line[i : i+n]
			flush(i)
			runs = append(runs, Run{Kind: RunItalic, Text: raw[1 : n-1], Raw: raw})
			i += n
			pend = i
			continue
		}
		if name, ok := names.matchAt(line[i:]); ok {
			if atStartOnly && !blankPrefix(line[:i]) {
				// Positional policy: later mentions stay plain text.
				// The span still consumes so a shorter entry cannot rematch inside it.
				flush(i)
				runs = append(runs, Run{Kind: RunStandard, Text: name, Raw: name})
			} else {
				flush(i)
				runs = append(runs, Run{Kind: RunName, Text: name, Raw: name})
			}
			i += len(name)
			pend = i
			continue
		}
		_, sz := utf8.DecodeRuneInString(line[i:])
		i += sz
	}
	flush(len(line))
	return runs
}

// SplitParagraphs divides raw document text into paragraphs on line breaks.
// Every line is a paragraph, including empty ones; the renderer decides how to
// present visually empty paragraphs.
func SplitParagraphs(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, "\n")
}

// ParseDocument tokenizes every paragraph of text with the given dictionary
// and positional policy. Paragraph identity is its index within the document;
// the result is recomputed from scratch on every call.
func ParseDocument(text string, names Dictionary, atStartOnly bool) []Paragraph {
	lines := SplitParagraphs(text)
	out := make([]Paragraph, len(lines))
	for i, line := range lines {
		out[i] = Paragraph{Index: i, Runs: Tokenize(line, names, atStartOnly)}
	}
	return out
}

// blankPrefix reports whether s is empty or whitespace-only.
func blankPrefix(s string) bool { return strings.TrimSpace(s) == "" }

// matchCitation matches, at the start of s, either a quotation ({...} or
// ﴿...﴾) optionally followed by whitespace and a bracketed reference [...],
// or a standalone bracketed reference. Content may not contain the span's own
// closing delimiter; there is no nesting. Returns the byte length of the
// match, 0 if none.
func matchCitation(s string) int {
	var qlen int
	switch {
	case strings.HasPrefix(s, curlyOpen):
		qlen = closedSpan(s, curlyOpen, curlyClose)
	case strings.HasPrefix(s, ornateOpen):
		qlen = closedSpan(s, ornateOpen, ornateClose)
	case strings.HasPrefix(s, refOpen):
		return closedSpan(s, refOpen, refClose)
	}
	if qlen == 0 {
		return 0
	}
	// Optional trailing reference after whitespace.
	j := qlen
	for j < len(s) {
		r, sz := utf8.DecodeRuneInString(s[j:])
		if !unicode.IsSpace(r) {
			break
		}
		j += sz
	}
	if strings.HasPrefix(s[j:], refOpen) {
		if rlen := closedSpan(s[j:], refOpen, refClose); rlen > 0 {
			return j + rlen
		}
	}
	return qlen
}

// closedSpan returns the length of open+content+closing at the start of s,
// where content is everything up to the first closing. 0 when unterminated.
func closedSpan(s, open, closing string) int {
	rest := s[len(open):]
	idx := strings.Index(rest, closing)
	if idx < 0 {
		return 0
	}
	return len(open) + idx + len(closing)
}

// matchBold matches **...** with at least one character of content and no
// literal * inside. Returns the byte length of the match, 0 if none.
func matchBold(s string) int {
	if !strings.HasPrefix(s, "**") {
		return 0
	}
	idx := strings.IndexByte(s[2:], '*')
	if idx <= 0 {
		return 0 // unterminated or empty content
	}
	if !strings.HasPrefix(s[2+idx:], "**") {
		return 0
	}
	return idx + 4
}

// matchItalic matches *...* or _..._ with at least one character of content
// and no repeat of the same delimiter inside. Returns the byte length, 0 if
// none.
func matchItalic(s string) int {
	if len(s) < 3 {
		return 0
	}
	d := s[0]
	if d != '*' && d != '_' {
		return 0
	}
	idx := strings.IndexByte(s[1:], d)
	if idx <= 0 {
		return 0
	}
	return idx + 2
}
