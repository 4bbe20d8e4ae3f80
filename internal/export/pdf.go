/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"
	"hibrwriter/internal/domain"
	"hibrwriter/internal/prose"
	"hibrwriter/internal/storage"
	"hibrwriter/internal/stylepack"
)

// PDFOptions controls PDF export behavior.
// Units are points (pt).
//
// FontPath may point to a UTF-8 TTF (e.g. Amiri or Noto Naskh Arabic); without
// it the exporter falls back to built-in Helvetica, which cannot shape Arabic
// script. FontPath is therefore strongly recommended for real manuscripts.
type PDFOptions struct {
	Title    string
	Sheet    stylepack.Sheet
	Brackets prose.BracketStyle
	FontPath string
	FontName string // name registered for FontPath; defaults to "manuscript"
}

// buildPDF lays the classified paragraphs out into an in-memory document.
func buildPDF(paras []prose.Paragraph, opt PDFOptions) *gofpdf.Fpdf {
	sheet := opt.Sheet
	if len(sheet.Styles) == 0 {
		sheet = stylepack.Default()
	}
	title := opt.Title
	if title == "" {
		title = "Hibr Writer"
	}

	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetAuthor("Hibr Writer", false)
	pdf.SetMargins(54, 54, 54)
	pdf.SetAutoPageBreak(true, 54)

	fontName := "Helvetica"
	if opt.FontPath != "" {
		fontName = opt.FontName
		if fontName == "" {
			fontName = "manuscript"
		}
		pdf.AddUTF8Font(fontName, "", opt.FontPath)
	}
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	lineW := pageW - left - right

	for _, p := range paras {
		if len(p.Runs) == 0 {
			pdf.Ln(14)
			continue
		}
		st := dominantStyle(sheet, p)
		size := st.SizePt
		if size <= 0 {
			size = 12
		}
		styleStr := ""
		// Helvetica carries bold/italic variants; a registered UTF-8 font may not.
		if opt.FontPath == "" {
			if st.Bold {
				styleStr += "B"
			}
			if st.Italic {
				styleStr += "I"
			}
		}
		pdf.SetFont(fontName, styleStr, size)
		r, g, b := hexColor(st.Color)
		pdf.SetTextColor(r, g, b)
		pdf.MultiCell(lineW, size*1.8, flattenForPDF(p, opt.Brackets), "", "R", false)
	}
	return pdf
}

// ExportManuscriptPDF classifies the manuscript's text and writes a
// right-aligned PDF rendition to outPath. A relative outPath lands under the
// project's exports folder.
func ExportManuscriptPDF(ph *storage.ProjectHandle, m domain.Manuscript, outPath string, opt PDFOptions) error {
	if ph == nil {
		return fmt.Errorf("project handle is nil")
	}
	text, err := storage.ReadManuscript(ph, m)
	if err != nil {
		return err
	}
	dict := prose.NewDictionary(m.Names...)
	paras := prose.ParseDocument(text, dict, m.NamesAtStartOnly)

	if opt.Brackets == "" && m.BracketStyle != "" {
		opt.Brackets = prose.BracketStyle(m.BracketStyle)
	}
	if opt.Title == "" {
		opt.Title = m.Title
	}
	pdf := buildPDF(paras, opt)

	if !filepath.IsAbs(outPath) {
		outPath = filepath.Join(ph.Root, "exports", outPath)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// dominantStyle picks the style of the paragraph's first non-standard run, or
// the standard style. Per-run styling inside one PDF line is deferred until a
// shaping-aware layout lands; HTML export already styles per run.
func dominantStyle(sheet stylepack.Sheet, p prose.Paragraph) stylepack.Style {
	for _, r := range p.Runs {
		if r.Kind != prose.RunStandard {
			return sheet.For(r.Kind)
		}
	}
	return sheet.For(prose.RunStandard)
}

// flattenForPDF joins the paragraph's runs into one string, rendering
// citations with the configured bracket glyphs.
func flattenForPDF(p prose.Paragraph, brackets prose.BracketStyle) string {
	var out string
	for _, r := range p.Runs {
		if r.Kind == prose.RunCitation {
			d := prose.Decompose(r, brackets)
			out += d.Left + d.Quoted + d.Right
			if d.Reference != "" {
				out += " " + d.Reference
			}
			continue
		}
		out += r.Text
	}
	return out
}

// hexColor parses #rrggbb; malformed input yields black.
func hexColor(s string) (r, g, b int) {
	if len(s) != 7 || s[0] != '#' {
		return 0, 0, 0
	}
	var rr, gg, bb int
	if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &rr, &gg, &bb); err != nil {
		return 0, 0, 0
	}
	return rr, gg, bb
}
