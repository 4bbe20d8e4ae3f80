/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hibrwriter/internal/domain"
	"hibrwriter/internal/prose"
	"hibrwriter/internal/storage"
)

func testProject(t *testing.T, text string) (*storage.ProjectHandle, domain.Manuscript) {
	t.Helper()
	m := domain.Manuscript{
		Title:            "الفصل الأول",
		Path:             "chapter-01.txt",
		Names:            []string{"د. رشيد"},
		NamesAtStartOnly: true,
		BracketStyle:     "quranic",
	}
	ph, err := storage.InitProject(filepath.Join(t.TempDir(), "proj"), domain.Project{
		Name:        "ديوان",
		Manuscripts: []domain.Manuscript{m},
	})
	if err != nil {
		t.Fatalf("InitProject: %v", err)
	}
	if err := storage.WriteManuscript(ph, m, text); err != nil {
		t.Fatalf("WriteManuscript: %v", err)
	}
	return ph, m
}

func TestRenderHTMLStructure(t *testing.T) {
	dict := prose.NewDictionary("د. رشيد")
	paras := prose.ParseDocument("د. رشيد قال *بوضوح*\n\n{اقرأ} [العلق: 1]", dict, true)
	out := string(RenderHTML(paras, HTMLOptions{Title: "فصل", Brackets: prose.BracketRound}))

	for _, want := range []string{
		`<html dir="rtl" lang="ar">`,
		`<title>فصل</title>`,
		`<span class="name">د. رشيد</span>`,
		`<span class="italic">بوضوح</span>`,
		`<span class="citation">(اقرأ)`,
		`<span class="reference">[العلق: 1]</span>`,
		`<p class="empty">`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in output:\n%s", want, out)
		}
	}
}

func TestRenderHTMLEscapesMarkup(t *testing.T) {
	paras := prose.ParseDocument("a < b & c", prose.NewDictionary(), false)
	out := string(RenderHTML(paras, HTMLOptions{}))
	if !strings.Contains(out, "a &lt; b &amp; c") {
		t.Fatalf("markup not escaped:\n%s", out)
	}
}

func TestExportManuscriptHTML(t *testing.T) {
	ph, m := testProject(t, "د. رشيد دخل\n﴿اقرأ﴾ [العلق: 1]")
	if err := ExportManuscriptHTML(ph, m, "chapter-01.html", HTMLOptions{}); err != nil {
		t.Fatalf("ExportManuscriptHTML: %v", err)
	}
	b, err := os.ReadFile(filepath.Join(ph.Root, "exports", "chapter-01.html"))
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	out := string(b)
	if !strings.Contains(out, "<title>الفصل الأول</title>") {
		t.Fatalf("manuscript title not used:\n%s", out)
	}
	// Manuscript bracket style "quranic" supplies the ornate glyphs.
	if !strings.Contains(out, "﴿اقرأ﴾") {
		t.Fatalf("quranic brackets not applied:\n%s", out)
	}
}

func TestExportManuscriptPDFWritesFile(t *testing.T) {
	ph, m := testProject(t, "sample line\nanother line")
	if err := ExportManuscriptPDF(ph, m, "chapter-01.pdf", PDFOptions{}); err != nil {
		t.Fatalf("ExportManuscriptPDF: %v", err)
	}
	b, err := os.ReadFile(filepath.Join(ph.Root, "exports", "chapter-01.pdf"))
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if len(b) == 0 || !strings.HasPrefix(string(b), "%PDF") {
		t.Fatalf("output is not a PDF (%d bytes)", len(b))
	}
}

func TestRenderersProduceTheirContentType(t *testing.T) {
	paras := prose.ParseDocument("سطر للتجربة", prose.NewDictionary(), false)

	var r Renderer = HTMLRenderer{Options: HTMLOptions{Title: "t"}}
	out, err := r.Render(paras)
	if err != nil {
		t.Fatalf("html render: %v", err)
	}
	if !strings.Contains(string(out), "<!DOCTYPE html>") || r.ContentType() != "text/html; charset=utf-8" {
		t.Fatalf("unexpected html rendition")
	}

	r = PDFRenderer{}
	out, err = r.Render(paras)
	if err != nil {
		t.Fatalf("pdf render: %v", err)
	}
	if !strings.HasPrefix(string(out), "%PDF") || r.ContentType() != "application/pdf" {
		t.Fatalf("unexpected pdf rendition (%d bytes)", len(out))
	}
}

func TestHexColor(t *testing.T) {
	if r, g, b := hexColor("#7a1f1f"); r != 0x7a || g != 0x1f || b != 0x1f {
		t.Fatalf("hexColor = %d,%d,%d", r, g, b)
	}
	if r, g, b := hexColor("red"); r != 0 || g != 0 || b != 0 {
		t.Fatalf("malformed color should be black, got %d,%d,%d", r, g, b)
	}
}
