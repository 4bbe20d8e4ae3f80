/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package prose

import (
	"reflect"
	"strings"
	"testing"
)

func reconstruct(runs []Run) string {
	var b strings.Builder
	for _, r := range runs {
		b.WriteString(r.Raw)
	}
	return b.String()
}

func TestTokenizeCoversInputWithoutGaps(t *testing.T) {
	names := NewDictionary("د. رشيد", "مصطفى")
	inputs := []string{
		"قال د. رشيد اليوم",
		"**د. رشيد:** قال {الله نور} [النور: 35] ثم *سكت*",
		"نص عادي بلا أي علامات",
		"علامة ** يتيمة و _ أخرى",
		"﴿قل هو الله أحد﴾ [الإخلاص: 1]",
		"   ",
	}
	for _, in := range inputs {
		runs := Tokenize(in, names, false)
		if got := reconstruct(runs); got != in {
			t.Fatalf("reconstruction mismatch for %q: got %q", in, got)
		}
		for _, r := range runs {
			if r.Raw == "" {
				t.Fatalf("empty run emitted for %q: %+v", in, r)
			}
		}
	}
}

func TestTokenizeEmptyLine(t *testing.T) {
	if runs := Tokenize("", NewDictionary("مصطفى"), true); len(runs) != 0 {
		t.Fatalf("expected no runs for empty line, got %+v", runs)
	}
}

func TestLongestNameWins(t *testing.T) {
	names := NewDictionary("رشيد", "د. رشيد")
	runs := Tokenize("قال د. رشيد اليوم", names, false)
	var name *Run
	for i := range runs {
		if runs[i].Kind == RunName {
			name = &runs[i]
			break
		}
	}
	if name == nil {
		t.Fatalf("no name run found: %+v", runs)
	}
	if name.Text != "د. رشيد" {
		t.Fatalf("expected longest entry to match, got %q", name.Text)
	}
}

func TestPositionalPolicyBareName(t *testing.T) {
	names := NewDictionary("مصطفى")

	// Mid-line mention with the policy on stays plain text.
	runs := Tokenize("مرحبا مصطفى", names, true)
	for _, r := range runs {
		if r.Kind != RunStandard {
			t.Fatalf("expected only standard runs, got %+v", runs)
		}
	}

	// Same input without the policy promotes the mention.
	runs = Tokenize("مرحبا مصطفى", names, false)
	if len(runs) != 2 || runs[1].Kind != RunName || runs[1].Text != "مصطفى" {
		t.Fatalf("expected trailing name run, got %+v", runs)
	}

	// At the start of the paragraph the policy allows the name.
	runs = Tokenize("مصطفى قال", names, true)
	if len(runs) == 0 || runs[0].Kind != RunName || runs[0].Text != "مصطفى" {
		t.Fatalf("expected leading name run, got %+v", runs)
	}
}

func TestBoldNamePromotion(t *testing.T) {
	names := NewDictionary("د. رشيد")

	runs := Tokenize("**د. رشيد:** قال", names, true)
	if len(runs) == 0 || runs[0].Kind != RunName {
		t.Fatalf("expected leading bold span promoted to name, got %+v", runs)
	}
	if runs[0].Text != "د. رشيد:" {
		t.Fatalf("expected stripped bold content, got %q", runs[0].Text)
	}
	if runs[0].Raw != "**د. رشيد:**" {
		t.Fatalf("expected raw span to keep markers, got %q", runs[0].Raw)
	}

	// Mid-line bold span containing a name stays bold under the policy.
	runs = Tokenize("ثم **د. رشيد** تكلم", names, true)
	var bold *Run
	for i := range runs {
		if runs[i].Raw == "**د. رشيد**" {
			bold = &runs[i]
		}
	}
	if bold == nil || bold.Kind != RunBold {
		t.Fatalf("expected mid-line bold run, got %+v", runs)
	}

	// Without the policy the containment always promotes.
	runs = Tokenize("ثم **د. رشيد** تكلم", names, false)
	promoted := false
	for _, r := range runs {
		if r.Kind == RunName && r.Text == "د. رشيد" {
			promoted = true
		}
	}
	if !promoted {
		t.Fatalf("expected promotion without positional policy, got %+v", runs)
	}
}

func TestBoldWithoutNameStaysBold(t *testing.T) {
	runs := Tokenize("هذا **مهم** جدا", NewDictionary("مصطفى"), false)
	if len(runs) != 3 || runs[1].Kind != RunBold || runs[1].Text != "مهم" {
		t.Fatalf("unexpected runs: %+v", runs)
	}
}

func TestItalicNeverPromotes(t *testing.T) {
	names := NewDictionary("مصطفى")
	runs := Tokenize("*مصطفى*", names, false)
	if len(runs) != 1 || runs[0].Kind != RunItalic || runs[0].Text != "مصطفى" {
		t.Fatalf("expected italic run, got %+v", runs)
	}
	runs = Tokenize("_مصطفى_", names, false)
	if len(runs) != 1 || runs[0].Kind != RunItalic {
		t.Fatalf("expected italic run with underscores, got %+v", runs)
	}
}

func TestCitationSpanKeepsDelimiters(t *testing.T) {
	runs := Tokenize("{الله نور} [النور: 35]", NewDictionary(), false)
	if len(runs) != 1 {
		t.Fatalf("expected a single citation run, got %+v", runs)
	}
	if runs[0].Kind != RunCitation || runs[0].Text != "{الله نور} [النور: 35]" {
		t.Fatalf("unexpected citation run: %+v", runs[0])
	}
}

func TestStandaloneReferenceIsCitation(t *testing.T) {
	runs := Tokenize("[النور: 35]", NewDictionary(), false)
	if len(runs) != 1 || runs[0].Kind != RunCitation {
		t.Fatalf("expected one citation run, got %+v", runs)
	}
}

func TestOrnateQuotation(t *testing.T) {
	in := "﴿قل هو الله أحد﴾ [الإخلاص: 1]"
	runs := Tokenize(in, NewDictionary(), false)
	if len(runs) != 1 || runs[0].Kind != RunCitation || runs[0].Raw != in {
		t.Fatalf("expected one ornate citation run, got %+v", runs)
	}
}

func TestCitationWinsOverEmphasisAtSameOffset(t *testing.T) {
	// The brackets open a citation before the italic star inside is considered.
	runs := Tokenize("{نص *مائل* داخلي}", NewDictionary(), false)
	if len(runs) != 1 || runs[0].Kind != RunCitation {
		t.Fatalf("expected citation to win precedence, got %+v", runs)
	}
}

func TestMalformedMarkersFallThrough(t *testing.T) {
	for _, in := range []string{"** بلا إغلاق", "{بلا إغلاق", "[بلا إغلاق", "****", "__"} {
		runs := Tokenize(in, NewDictionary(), false)
		for _, r := range runs {
			if r.Kind != RunStandard {
				t.Fatalf("expected %q to degrade to standard, got %+v", in, runs)
			}
		}
		if got := reconstruct(runs); got != in {
			t.Fatalf("reconstruction mismatch for %q: got %q", in, got)
		}
	}
}

func TestWhitespaceOnlyBoldContentKept(t *testing.T) {
	runs := Tokenize("** **", NewDictionary(), false)
	if len(runs) != 1 || runs[0].Kind != RunBold || runs[0].Text != " " {
		t.Fatalf("expected whitespace bold run, got %+v", runs)
	}
}

func TestEmptyDictionarySkipsNameBranch(t *testing.T) {
	runs := Tokenize("قال **مهم** هنا", NewDictionary(), true)
	want := []RunKind{RunStandard, RunBold, RunStandard}
	if len(runs) != len(want) {
		t.Fatalf("unexpected run count: %+v", runs)
	}
	for i, r := range runs {
		if r.Kind != want[i] {
			t.Fatalf("run %d kind = %v, want %v", i, r.Kind, want[i])
		}
	}
}

func TestTokenizeIsPure(t *testing.T) {
	names := NewDictionary("د. رشيد", "رشيد")
	in := "**د. رشيد:** قال {الله نور} [النور: 35] ثم *سكت*"
	a := Tokenize(in, names, true)
	b := Tokenize(in, names, true)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("tokenization is not deterministic:\n%+v\n%+v", a, b)
	}
}

func TestSplitParagraphs(t *testing.T) {
	paras := SplitParagraphs("سطر أول\n\r\nسطر ثالث")
	if len(paras) != 3 {
		t.Fatalf("expected 3 paragraphs, got %d: %q", len(paras), paras)
	}
	if paras[1] != "" {
		t.Fatalf("expected empty middle paragraph, got %q", paras[1])
	}
	if SplitParagraphs("") != nil {
		t.Fatalf("expected nil for empty document")
	}
}

func TestParseDocumentIndexesParagraphs(t *testing.T) {
	doc := "مصطفى قال\n\n{الله نور} [النور: 35]"
	paras := ParseDocument(doc, NewDictionary("مصطفى"), true)
	if len(paras) != 3 {
		t.Fatalf("expected 3 paragraphs, got %d", len(paras))
	}
	for i, p := range paras {
		if p.Index != i {
			t.Fatalf("paragraph %d has index %d", i, p.Index)
		}
	}
	if len(paras[1].Runs) != 0 {
		t.Fatalf("expected empty paragraph to have no runs, got %+v", paras[1].Runs)
	}
	if paras[0].Runs[0].Kind != RunName {
		t.Fatalf("expected leading name in first paragraph, got %+v", paras[0].Runs)
	}
	if paras[2].Runs[0].Kind != RunCitation {
		t.Fatalf("expected citation in third paragraph, got %+v", paras[2].Runs)
	}
}
