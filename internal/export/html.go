/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders classified manuscripts to delivery formats. Each
// exporter walks the run sequence and switches on the run kind; presentation
// comes from a stylepack sheet, citation glyphs from the bracket style.
package export

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	"hibrwriter/internal/domain"
	"hibrwriter/internal/prose"
	"hibrwriter/internal/storage"
	"hibrwriter/internal/stylepack"
)

// HTMLOptions controls HTML export behavior.
type HTMLOptions struct {
	Title    string
	Sheet    stylepack.Sheet
	Brackets prose.BracketStyle
}

// RenderHTML produces a standalone right-to-left HTML document from classified
// paragraphs. Each run kind gets a CSS class derived from the style sheet;
// citation runs are decomposed so the quoted content wears the configured
// bracket glyphs and the reference renders as a trailing note.
func RenderHTML(paras []prose.Paragraph, opt HTMLOptions) []byte {
	sheet := opt.Sheet
	if len(sheet.Styles) == 0 {
		sheet = stylepack.Default()
	}
	title := opt.Title
	if title == "" {
		title = "Hibr Writer"
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html dir=\"rtl\" lang=\"ar\">\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(title))
	b.WriteString("<style>\n")
	b.WriteString("body { direction: rtl; text-align: right; font-family: \"Amiri\", \"Noto Naskh Arabic\", serif; line-height: 1.9; max-width: 42em; margin: 2em auto; }\n")
	b.WriteString("p { margin: 0 0 0.6em 0; }\n")
	for _, kind := range []prose.RunKind{prose.RunStandard, prose.RunName, prose.RunCitation, prose.RunBold, prose.RunItalic} {
		writeKindCSS(&b, kind, sheet.For(kind))
	}
	b.WriteString(".reference { font-size: 0.85em; opacity: 0.8; }\n")
	b.WriteString("</style>\n</head>\n<body>\n")

	for _, p := range paras {
		if len(p.Runs) == 0 {
			b.WriteString("<p class=\"empty\">&nbsp;</p>\n")
			continue
		}
		b.WriteString("<p>")
		for _, r := range p.Runs {
			writeRunHTML(&b, r, opt.Brackets)
		}
		b.WriteString("</p>\n")
	}
	b.WriteString("</body>\n</html>\n")
	return []byte(b.String())
}

func writeKindCSS(b *strings.Builder, kind prose.RunKind, st stylepack.Style) {
	fmt.Fprintf(b, ".%s {", kind)
	if st.Color != "" {
		fmt.Fprintf(b, " color: %s;", st.Color)
	}
	if st.Bold {
		b.WriteString(" font-weight: bold;")
	}
	if st.Italic {
		b.WriteString(" font-style: italic;")
	}
	if st.FontFamily != "" {
		fmt.Fprintf(b, " font-family: %q;", st.FontFamily)
	}
	b.WriteString(" }\n")
}

func writeRunHTML(b *strings.Builder, r prose.Run, brackets prose.BracketStyle) {
	switch r.Kind {
	case prose.RunCitation:
		d := prose.Decompose(r, brackets)
		fmt.Fprintf(b, "<span class=\"%s\">", r.Kind)
		b.WriteString(html.EscapeString(d.Left))
		b.WriteString(html.EscapeString(d.Quoted))
		b.WriteString(html.EscapeString(d.Right))
		if d.Reference != "" {
			b.WriteString(" <span class=\"reference\">")
			b.WriteString(html.EscapeString(d.Reference))
			b.WriteString("</span>")
		}
		b.WriteString("</span>")
	case prose.RunStandard:
		b.WriteString(html.EscapeString(r.Text))
	default:
		fmt.Fprintf(b, "<span class=\"%s\">%s</span>", r.Kind, html.EscapeString(r.Text))
	}
}

// ExportManuscriptHTML classifies the manuscript's text and writes the HTML
// rendition to outPath. A relative outPath lands under the project's exports
// folder.
func ExportManuscriptHTML(ph *storage.ProjectHandle, m domain.Manuscript, outPath string, opt HTMLOptions) error {
	if ph == nil {
		return fmt.Errorf("project handle is nil")
	}
	text, err := storage.ReadManuscript(ph, m)
	if err != nil {
		return err
	}
	dict := prose.NewDictionary(m.Names...)
	paras := prose.ParseDocument(text, dict, m.NamesAtStartOnly)
	if opt.Title == "" {
		opt.Title = m.Title
	}
	if opt.Brackets == "" && m.BracketStyle != "" {
		opt.Brackets = prose.BracketStyle(m.BracketStyle)
	}
	out := RenderHTML(paras, opt)

	if !filepath.IsAbs(outPath) {
		outPath = filepath.Join(ph.Root, "exports", outPath)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		return fmt.Errorf("write html: %w", err)
	}
	return nil
}
