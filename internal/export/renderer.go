/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"

	"hibrwriter/internal/prose"
)

// Renderer turns a classified paragraph stream into one delivery format.
// Implementations consume runs only through their kind and text; they never
// re-tokenize.
type Renderer interface {
	Render(paras []prose.Paragraph) ([]byte, error)
	// ContentType is the MIME type of the rendered bytes.
	ContentType() string
}

// HTMLRenderer renders the RTL HTML rendition.
type HTMLRenderer struct {
	Options HTMLOptions
}

func (r HTMLRenderer) Render(paras []prose.Paragraph) ([]byte, error) {
	return RenderHTML(paras, r.Options), nil
}

func (HTMLRenderer) ContentType() string { return "text/html; charset=utf-8" }

// PDFRenderer renders the right-aligned PDF rendition in memory.
type PDFRenderer struct {
	Options PDFOptions
}

func (r PDFRenderer) Render(paras []prose.Paragraph) ([]byte, error) {
	pdf := buildPDF(paras, r.Options)
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (PDFRenderer) ContentType() string { return "application/pdf" }
