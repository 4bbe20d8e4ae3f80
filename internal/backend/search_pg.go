/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */
package backend

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"hibrwriter/internal/storage"
)

// SearchPG executes a search over the Postgres paragraphs table using
// tsvector and the same filters as the local SQLite index, mapped to
// storage.SearchResult to ease parity checks.
func SearchPG(ctx context.Context, db *sql.DB, projectID int64, query string, f storage.SearchFilters) ([]storage.SearchResult, error) {
	var (
		args []any
		b    strings.Builder
	)
	place := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	b.WriteString(`SELECT p.manuscript, p.para_index, COALESCE(p.raw_text,''), COALESCE(p.kinds,''), COALESCE(p.names,'') FROM paragraphs p WHERE p.project_id = ` + place(projectID))
	if q := strings.TrimSpace(query); q != "" {
		b.WriteString(" AND p.search_vector @@ plainto_tsquery('simple', " + place(q) + ")")
	}
	if f.Manuscript != "" {
		b.WriteString(" AND p.manuscript = " + place(f.Manuscript))
	}
	if f.Kind != "" {
		b.WriteString(" AND (' ' || COALESCE(p.kinds,'') || ' ') LIKE " + place("% "+f.Kind+" %"))
	}
	if f.Name != "" {
		b.WriteString(" AND position(" + place(f.Name) + " IN COALESCE(p.names,'')) > 0")
	}
	if f.FromPara > 0 {
		b.WriteString(" AND p.para_index >= " + place(f.FromPara))
	}
	if f.ToPara > 0 {
		b.WriteString(" AND p.para_index <= " + place(f.ToPara))
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}
	b.WriteString(" ORDER BY p.manuscript, p.para_index LIMIT " + place(limit) + " OFFSET " + place(offset))

	rows, err := db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("search pg query: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []storage.SearchResult
	for rows.Next() {
		var r storage.SearchResult
		if err := rows.Scan(&r.Manuscript, &r.ParaIndex, &r.Text, &r.Kinds, &r.Names); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
