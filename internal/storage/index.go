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
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	applog "hibrwriter/internal/log"
	"hibrwriter/internal/prose"
	"hibrwriter/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	// IndexDirName stores all per-project ephemeral/index data under the project root.
	IndexDirName  = ".hbw"
	IndexFileName = "index.sqlite"

	// schemaVersion tracks the local SQLite schema for the embedded index.
	// Bump this when you perform breaking schema changes and add migrations.
	schemaVersion = 2
)

// IndexPath returns the full path to the project's embedded index database file.
func IndexPath(projectRoot string) string {
	return filepath.Join(projectRoot, IndexDirName, IndexFileName)
}

// InitOrOpenIndex ensures that the per-project SQLite index exists at
// .hbw/index.sqlite, opens the database, enables WAL mode, and ensures the
// meta/version tables and paragraph schema exist. The returned *sql.DB is
// ready for use; callers close it when no longer needed.
func InitOrOpenIndex(projectRoot string) (*sql.DB, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "index_init").With(
		slog.String("root", projectRoot),
	)
	if strings.TrimSpace(projectRoot) == "" {
		return nil, errors.New("project root is required")
	}
	if err := os.MkdirAll(filepath.Join(projectRoot, IndexDirName), 0o755); err != nil {
		l.Error("create .hbw dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create .hbw dir: %w", err)
	}

	path := IndexPath(projectRoot)
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON;"); err != nil {
		l.Warn("enable foreign_keys failed", slog.Any("err", err))
	}

	if err := ensureMetaAndVersion(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure meta/version failed", slog.Any("err", err))
		return nil, err
	}
	if err := ensureIndexSchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure index schema failed", slog.Any("err", err))
		return nil, err
	}
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		l.Error("run migrations failed", slog.Any("err", err))
		return nil, err
	}

	l.Info("index ready", slog.String("path", path))
	return db, nil
}

func ensureMetaAndVersion(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var curSchema int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&curSchema)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`, schemaVersion, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

// ensureIndexSchema creates the paragraph index tables and FTS structures if
// they do not exist. One row per classified paragraph; text holds the plain
// concatenated run content with emphasis markers stripped.
func ensureIndexSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS paragraphs (
			para_id    INTEGER PRIMARY KEY,
			manuscript TEXT    NOT NULL,
			para_index INTEGER NOT NULL,
			text       TEXT,
			kinds      TEXT,
			names      TEXT,
			UNIQUE(manuscript, para_index)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_paragraphs_manuscript ON paragraphs(manuscript);`,
		`CREATE INDEX IF NOT EXISTS idx_paragraphs_names ON paragraphs(names);`,

		// Contentless FTS5 index fed from paragraphs via triggers.
		// unicode61 tokenization handles Arabic text.
		`CREATE VIRTUAL TABLE IF NOT EXISTS fts_paragraphs USING fts5(
			text,
			content='',
			tokenize = 'unicode61'
		);`,

		// History of manuscript text for change tracking.
		`CREATE TABLE IF NOT EXISTS manuscript_snapshots (
			id         INTEGER PRIMARY KEY,
			manuscript TEXT    NOT NULL,
			ts         TEXT    NOT NULL,
			text       TEXT    NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_manuscript_snapshots_ts ON manuscript_snapshots(manuscript, ts);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure index schema: %w", err)
		}
	}
	triggers := []string{
		`CREATE TRIGGER IF NOT EXISTS paragraphs_ai AFTER INSERT ON paragraphs BEGIN
			INSERT INTO fts_paragraphs(rowid, text) VALUES (new.para_id, new.text);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS paragraphs_ad AFTER DELETE ON paragraphs BEGIN
			INSERT INTO fts_paragraphs(fts_paragraphs, rowid, text) VALUES ('delete', old.para_id, old.text);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS paragraphs_au AFTER UPDATE OF text ON paragraphs BEGIN
			INSERT INTO fts_paragraphs(fts_paragraphs, rowid, text) VALUES ('delete', old.para_id, old.text);
			INSERT INTO fts_paragraphs(rowid, text) VALUES (new.para_id, new.text);
		END;`,
	}
	for _, q := range triggers {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure fts triggers: %w", err)
		}
	}
	return nil
}

// runMigrations applies incremental schema migrations up to schemaVersion.
func runMigrations(ctx context.Context, db *sql.DB) error {
	var cur int
	if err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if cur > schemaVersion {
		// Do not downgrade.
		return nil
	}
	for cur < schemaVersion {
		next := cur + 1
		switch next {
		case 2:
			tx, err := db.BeginTx(ctx, nil)
			if err != nil {
				return fmt.Errorf("begin migration %d: %w", next, err)
			}
			stmts := []string{
				`CREATE INDEX IF NOT EXISTS idx_paragraphs_names ON paragraphs(names);`,
			}
			for _, q := range stmts {
				if _, err := tx.ExecContext(ctx, q); err != nil {
					_ = tx.Rollback()
					return fmt.Errorf("migration %d stmt failed: %w", next, err)
				}
			}
			if _, err := tx.ExecContext(ctx, `UPDATE version SET schema=?, updated_at=? WHERE id=1`, next, time.Now().UTC().Format(time.RFC3339)); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d update version: %w", next, err)
			}
			if err := tx.Commit(); err != nil {
				return fmt.Errorf("migration %d commit: %w", next, err)
			}
		default:
			// Unknown future step.
		}
		cur = next
	}
	return nil
}

// IndexManuscript replaces the index rows of one manuscript with freshly
// classified paragraphs. Rows are recomputed from scratch; there is no
// incremental update, matching the tokenizer's recompute-on-change model.
func IndexManuscript(ctx context.Context, db *sql.DB, manuscript string, paras []prose.Paragraph) error {
	if strings.TrimSpace(manuscript) == "" {
		return errors.New("manuscript name is required")
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin index tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM paragraphs WHERE manuscript=?`, manuscript); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear old rows: %w", err)
	}
	ins, err := tx.PrepareContext(ctx, `INSERT INTO paragraphs (manuscript, para_index, text, kinds, names) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = ins.Close() }()
	for _, p := range paras {
		text, kinds, names := flattenParagraph(p)
		if _, err := ins.ExecContext(ctx, manuscript, p.Index, text, kinds, names); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert paragraph %d: %w", p.Index, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit index tx: %w", err)
	}
	return nil
}

// SaveManuscriptSnapshot appends the raw manuscript text to the history table.
func SaveManuscriptSnapshot(ctx context.Context, db *sql.DB, manuscript, text string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO manuscript_snapshots (manuscript, ts, text) VALUES (?, ?, ?)`,
		manuscript, time.Now().UTC().Format(time.RFC3339), text)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// flattenParagraph derives the indexable projections of a classified
// paragraph: plain text, the distinct kinds present, and matched names.
func flattenParagraph(p prose.Paragraph) (text, kinds, names string) {
	var tb strings.Builder
	seenKinds := map[string]struct{}{}
	var kindList []string
	var nameList []string
	for _, r := range p.Runs {
		tb.WriteString(r.Text)
		k := r.Kind.String()
		if _, ok := seenKinds[k]; !ok {
			seenKinds[k] = struct{}{}
			kindList = append(kindList, k)
		}
		if r.Kind == prose.RunName {
			nameList = append(nameList, r.Text)
		}
	}
	return tb.String(), strings.Join(kindList, " "), strings.Join(nameList, " ")
}
