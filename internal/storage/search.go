/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// SearchFilters narrows a full-text query over the paragraph index.
// Zero values mean "no filter". FromPara/ToPara bound the paragraph index
// range; ToPara of 0 means unbounded.
type SearchFilters struct {
	Manuscript string
	Kind       string
	Name       string
	FromPara   int
	ToPara     int
	Limit      int
	Offset     int
}

// SearchResult is one matching paragraph from the index.
type SearchResult struct {
	Manuscript string `json:"manuscript"`
	ParaIndex  int    `json:"paraIndex"`
	Text       string `json:"text"`
	Kinds      string `json:"kinds"`
	Names      string `json:"names"`
}

const defaultSearchLimit = 50

// Search runs an FTS5 match over the paragraph text plus the given filters.
// An empty query with filters set scans the paragraphs table directly.
func Search(ctx context.Context, db *sql.DB, query string, f SearchFilters) ([]SearchResult, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	var sb strings.Builder
	var args []any
	query = strings.TrimSpace(query)
	if query != "" {
		sb.WriteString(`SELECT p.manuscript, p.para_index, p.text, p.kinds, p.names
			FROM fts_paragraphs ft
			JOIN paragraphs p ON p.para_id = ft.rowid
			WHERE fts_paragraphs MATCH ?`)
		args = append(args, ftsQuote(query))
	} else {
		sb.WriteString(`SELECT p.manuscript, p.para_index, p.text, p.kinds, p.names
			FROM paragraphs p
			WHERE 1=1`)
	}
	if f.Manuscript != "" {
		sb.WriteString(" AND p.manuscript = ?")
		args = append(args, f.Manuscript)
	}
	if f.Kind != "" {
		// kinds is a space-separated word list; pad so boundaries match.
		sb.WriteString(" AND (' ' || p.kinds || ' ') LIKE ?")
		args = append(args, "% "+f.Kind+" %")
	}
	if f.Name != "" {
		sb.WriteString(" AND instr(p.names, ?) > 0")
		args = append(args, f.Name)
	}
	if f.FromPara > 0 {
		sb.WriteString(" AND p.para_index >= ?")
		args = append(args, f.FromPara)
	}
	if f.ToPara > 0 {
		sb.WriteString(" AND p.para_index <= ?")
		args = append(args, f.ToPara)
	}
	sb.WriteString(" ORDER BY p.manuscript, p.para_index LIMIT ? OFFSET ?")
	args = append(args, limit, f.Offset)

	rows, err := db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Manuscript, &r.ParaIndex, &r.Text, &r.Kinds, &r.Names); err != nil {
			return nil, fmt.Errorf("scan search row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate search rows: %w", err)
	}
	return out, nil
}

// ftsQuote wraps each whitespace-separated term in double quotes so Arabic
// text and punctuation are treated as literal terms, not FTS5 syntax.
func ftsQuote(q string) string {
	terms := strings.Fields(q)
	for i, t := range terms {
		terms[i] = `"` + strings.ReplaceAll(t, `"`, `""`) + `"`
	}
	return strings.Join(terms, " ")
}
