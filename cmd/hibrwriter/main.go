/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"hibrwriter/internal/backend"
	"hibrwriter/internal/config"
	"hibrwriter/internal/crash"
	"hibrwriter/internal/domain"
	"hibrwriter/internal/export"
	applog "hibrwriter/internal/log"
	"hibrwriter/internal/prose"
	"hibrwriter/internal/storage"
	"hibrwriter/internal/version"
)

func usage() {
	fmt.Println("Hibr Writer — right-to-left prose studio")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  hibrwriter version|-v|--version                  Show version")
	fmt.Println("  hibrwriter init <dir> <name>                     Create a new project at <dir> with name <name>")
	fmt.Println("  hibrwriter open <dir>                            Open project at <dir> and print summary")
	fmt.Println("  hibrwriter save <dir>                            Save project at <dir> (creates backup)")
	fmt.Println("  hibrwriter add <dir> <title> <file>              Register <file> as a manuscript titled <title>")
	fmt.Println("  hibrwriter parse <file>                          Classify a prose file and print runs as JSON")
	fmt.Println("  hibrwriter export-html <dir> <manuscript> <out>  Export a manuscript to HTML")
	fmt.Println("  hibrwriter export-pdf <dir> <manuscript> <out>   Export a manuscript to PDF")
	fmt.Println("  hibrwriter index <dir>                           Rebuild the project's search index")
	fmt.Println("  hibrwriter search <dir> <query>                  Search indexed paragraphs")
	fmt.Println("  hibrwriter serve                                 Run the sync server (needs Postgres)")
}

func main() {
	// initialize structured logging using environment defaults
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("cli")
	var ph *storage.ProjectHandle
	defer func() { crash.Recover(ph) }()

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) > 1 {
		switch args[1] {
		case "version", "--version", "-v":
			fmt.Println("Hibr Writer — right-to-left prose studio")
			fmt.Println(version.String())
			return
		case "init":
			if len(args) < 4 {
				fmt.Println("init requires <dir> and <name>")
				usage()
				os.Exit(2)
			}
			abs, _ := filepath.Abs(args[2])
			name := args[3]
			l.Info("init project", slog.String("root", abs), slog.String("name", name))
			h, err := storage.InitProject(abs, domain.Project{Name: name, Manuscripts: []domain.Manuscript{}})
			if err != nil {
				fail(l, "init failed", err)
			}
			ph = h
			fmt.Println("Created project at", abs)
			return
		case "open":
			h := mustOpen(l, args, 3)
			ph = h
			fmt.Printf("Opened project: %s\n", h.Project.Name)
			fmt.Printf("Manuscripts: %d\n", len(h.Project.Manuscripts))
			for _, m := range h.Project.Manuscripts {
				fmt.Printf("  - %s (%s)\n", m.Title, m.Path)
			}
			fmt.Println("Root:", h.Root)
			return
		case "save":
			h := mustOpen(l, args, 3)
			ph = h
			h.Project.Metadata.Notes = fmt.Sprintf("Saved at %s", time.Now().Format(time.RFC3339))
			if err := storage.Save(h); err != nil {
				fail(l, "save failed", err)
			}
			fmt.Println("Saved project and created a backup of previous manifest (if any).")
			return
		case "add":
			if len(args) < 5 {
				fmt.Println("add requires <dir>, <title> and <file>")
				usage()
				os.Exit(2)
			}
			h := mustOpen(l, args, 5)
			ph = h
			title, src := args[3], args[4]
			text, err := os.ReadFile(src)
			if err != nil {
				fail(l, "read manuscript file failed", err)
			}
			cfg := mustConfig(l)
			m := domain.Manuscript{
				Title:            title,
				Path:             filepath.Base(src),
				NamesAtStartOnly: cfg.Tokenizer.NamesAtStartOnly,
				BracketStyle:     cfg.Tokenizer.BracketStyle,
			}
			if cfg.Tokenizer.NamesFile != "" {
				if names, err := config.LoadNamesFile(cfg.Tokenizer.NamesFile); err == nil {
					m.Names = names
				} else {
					l.Warn("names file unreadable", slog.Any("err", err))
				}
			}
			if err := storage.WriteManuscript(h, m, string(text)); err != nil {
				fail(l, "store manuscript failed", err)
			}
			h.Project.Manuscripts = append(h.Project.Manuscripts, m)
			if err := storage.Save(h); err != nil {
				fail(l, "save failed", err)
			}
			fmt.Printf("Added manuscript %q as %s\n", title, m.Path)
			return
		case "parse":
			if len(args) < 3 {
				fmt.Println("parse requires <file>")
				usage()
				os.Exit(2)
			}
			text, err := os.ReadFile(args[2])
			if err != nil {
				fail(l, "read file failed", err)
			}
			cfg := mustConfig(l)
			var names []string
			if cfg.Tokenizer.NamesFile != "" {
				if names, err = config.LoadNamesFile(cfg.Tokenizer.NamesFile); err != nil {
					fail(l, "load names file failed", err)
				}
			}
			dict := prose.NewDictionary(names...)
			paras := prose.ParseDocument(string(text), dict, cfg.Tokenizer.NamesAtStartOnly)
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(paras); err != nil {
				fail(l, "encode failed", err)
			}
			return
		case "export-html", "export-pdf":
			if len(args) < 5 {
				fmt.Printf("%s requires <dir>, <manuscript> and <out>\n", args[1])
				usage()
				os.Exit(2)
			}
			h := mustOpen(l, args, 5)
			ph = h
			m, ok := findManuscript(h, args[3])
			if !ok {
				fail(l, "manuscript not found", fmt.Errorf("no manuscript %q in project", args[3]))
			}
			var err error
			if args[1] == "export-html" {
				err = export.ExportManuscriptHTML(h, m, args[4], export.HTMLOptions{})
			} else {
				err = export.ExportManuscriptPDF(h, m, args[4], export.PDFOptions{FontPath: os.Getenv("HBW_PDF_FONT")})
			}
			if err != nil {
				fail(l, "export failed", err)
			}
			fmt.Println("Exported", args[3], "to", args[4])
			return
		case "index":
			h := mustOpen(l, args, 3)
			ph = h
			db, err := storage.InitOrOpenIndex(h.Root)
			if err != nil {
				fail(l, "open index failed", err)
			}
			defer func() { _ = db.Close() }()
			ctx := context.Background()
			for _, m := range h.Project.Manuscripts {
				text, err := storage.ReadManuscript(h, m)
				if err != nil {
					fail(l, "read manuscript failed", err)
				}
				dict := prose.NewDictionary(m.Names...)
				paras := prose.ParseDocument(text, dict, m.NamesAtStartOnly)
				if err := storage.IndexManuscript(ctx, db, m.Path, paras); err != nil {
					fail(l, "index manuscript failed", err)
				}
				if err := storage.SaveManuscriptSnapshot(ctx, db, m.Path, text); err != nil {
					l.Warn("snapshot failed", slog.Any("err", err))
				}
				fmt.Printf("Indexed %s (%d paragraphs)\n", m.Path, len(paras))
			}
			return
		case "search":
			if len(args) < 4 {
				fmt.Println("search requires <dir> and <query>")
				usage()
				os.Exit(2)
			}
			h := mustOpen(l, args, 4)
			ph = h
			db, err := storage.InitOrOpenIndex(h.Root)
			if err != nil {
				fail(l, "open index failed", err)
			}
			defer func() { _ = db.Close() }()
			res, err := storage.Search(context.Background(), db, args[3], storage.SearchFilters{})
			if err != nil {
				fail(l, "search failed", err)
			}
			if len(res) == 0 {
				fmt.Println("No matches.")
				return
			}
			for _, r := range res {
				fmt.Printf("%s #%d: %s\n", r.Manuscript, r.ParaIndex, r.Text)
			}
			return
		case "serve":
			if err := backend.Start(); err != nil {
				fail(l, "server failed", err)
			}
			return
		}
	}

	usage()
}

// mustOpen opens the project named in args[2], enforcing the argument count.
func mustOpen(l *slog.Logger, args []string, minArgs int) *storage.ProjectHandle {
	if len(args) < minArgs {
		fmt.Printf("%s requires <dir>\n", args[1])
		usage()
		os.Exit(2)
	}
	abs, _ := filepath.Abs(args[2])
	l.Info("open project", slog.String("root", abs))
	h, err := storage.Open(abs)
	if err != nil {
		fail(l, "open failed", err)
	}
	return h
}

func mustConfig(l *slog.Logger) config.AppConfig {
	cfg, _, err := config.Load()
	if err != nil {
		l.Warn("config load failed; using defaults", slog.Any("err", err))
		return config.Defaults()
	}
	return cfg
}

func findManuscript(ph *storage.ProjectHandle, ref string) (domain.Manuscript, bool) {
	for _, m := range ph.Project.Manuscripts {
		if m.Path == ref || m.Title == ref {
			return m, true
		}
	}
	return domain.Manuscript{}, false
}

func fail(l *slog.Logger, msg string, err error) {
	l.Error(msg, slog.Any("err", err))
	fmt.Println("Error:", err)
	os.Exit(1)
}
