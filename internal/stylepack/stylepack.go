/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */

// Package stylepack maps run kinds to presentation styles. A style sheet is a
// JSON file validated against an embedded schema; sheets can be bundled into
// zip packs for sharing between projects.
package stylepack

import (
	"archive/zip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	applog "hibrwriter/internal/log"
	"hibrwriter/internal/prose"

	gojsonschema "github.com/xeipuuv/gojsonschema"
)

// Style is the presentation of one run kind.
type Style struct {
	Color      string  `json:"color,omitempty"`
	Bold       bool    `json:"bold,omitempty"`
	Italic     bool    `json:"italic,omitempty"`
	FontFamily string  `json:"fontFamily,omitempty"`
	SizePt     float64 `json:"sizePt,omitempty"`
}

// Sheet maps run kind labels (standard, name, citation, bold, italic) to
// styles. Kinds missing from a sheet fall back to the defaults.
type Sheet struct {
	Name   string           `json:"name"`
	Styles map[string]Style `json:"styles"`
}

// sheetSchema validates user-provided sheets before they reach a renderer.
const sheetSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["name", "styles"],
  "properties": {
    "name": { "type": "string", "minLength": 1 },
    "styles": {
      "type": "object",
      "propertyNames": { "enum": ["standard", "name", "citation", "bold", "italic"] },
      "additionalProperties": {
        "type": "object",
        "properties": {
          "color": { "type": "string", "pattern": "^#[0-9a-fA-F]{6}$" },
          "bold": { "type": "boolean" },
          "italic": { "type": "boolean" },
          "fontFamily": { "type": "string" },
          "sizePt": { "type": "number", "exclusiveMinimum": 0 }
        },
        "additionalProperties": false
      }
    }
  },
  "additionalProperties": false
}`

// Default returns the built-in sheet used when a project carries no styles.
func Default() Sheet {
	return Sheet{
		Name: "hibr-default",
		Styles: map[string]Style{
			prose.RunStandard.String(): {Color: "#1a1a1a", SizePt: 12},
			prose.RunName.String():     {Color: "#7a1f1f", Bold: true, SizePt: 12},
			prose.RunCitation.String(): {Color: "#1f5f2a", SizePt: 12},
			prose.RunBold.String():     {Color: "#1a1a1a", Bold: true, SizePt: 12},
			prose.RunItalic.String():   {Color: "#1a1a1a", Italic: true, SizePt: 12},
		},
	}
}

// For resolves the style of a run kind, falling back to the default sheet
// for kinds the sheet does not define.
func (s Sheet) For(kind prose.RunKind) Style {
	if st, ok := s.Styles[kind.String()]; ok {
		return st
	}
	return Default().Styles[kind.String()]
}

// Load reads and validates a style sheet from a JSON file.
func Load(path string) (Sheet, error) {
	var sh Sheet
	data, err := os.ReadFile(path)
	if err != nil {
		return sh, fmt.Errorf("read sheet: %w", err)
	}
	if err := Validate(data); err != nil {
		return sh, err
	}
	if err := json.Unmarshal(data, &sh); err != nil {
		return sh, fmt.Errorf("parse sheet: %w", err)
	}
	return sh, nil
}

// Validate checks raw sheet JSON against the embedded schema.
func Validate(data []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(sheetSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("schema validate: %w", err)
	}
	if !result.Valid() {
		var sb strings.Builder
		for i, e := range result.Errors() {
			if i > 0 {
				sb.WriteString("; ")
			}
			sb.WriteString(e.String())
		}
		return fmt.Errorf("invalid style sheet: %s", sb.String())
	}
	return nil
}

// Save writes a sheet as indented JSON.
func Save(sh Sheet, path string) error {
	data, err := json.MarshalIndent(sh, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal sheet: %w", err)
	}
	data = append(data, '\n')
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure sheet dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write sheet: %w", err)
	}
	return nil
}

// ExportProjectStyles zips the project's styles directory (<project>/styles)
// into a single .zip file. The archive preserves the directory structure and
// adds a small manifest at the root named stylepack.manifest.txt for quick
// human inspection. An empty styles directory still yields an archive with
// only the manifest.
func ExportProjectStyles(projectRoot string, destZipPath string) error {
	l := applog.WithOperation(applog.WithComponent("stylepack"), "export").With(slog.String("project", projectRoot))
	if strings.TrimSpace(projectRoot) == "" {
		return errors.New("projectRoot is required")
	}
	if strings.TrimSpace(destZipPath) == "" {
		return errors.New("destZipPath is required")
	}
	stylesDir := filepath.Join(projectRoot, "styles")
	if _, err := os.Stat(stylesDir); os.IsNotExist(err) {
		if err := os.MkdirAll(stylesDir, 0o755); err != nil {
			return fmt.Errorf("ensure styles dir: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(destZipPath), 0o755); err != nil {
		return fmt.Errorf("ensure zip dir: %w", err)
	}
	// On Windows, remove destination if present before create
	_ = os.Remove(destZipPath)

	zf, err := os.Create(destZipPath)
	if err != nil {
		return fmt.Errorf("create zip: %w", err)
	}
	defer func() { _ = zf.Close() }()
	zw := zip.NewWriter(zf)
	defer func() { _ = zw.Close() }()

	manifest := fmt.Sprintf("Hibr Writer Style Pack\nCreated: %s\nProject: %s\n\nContents mirror the project's /styles directory.\n",
		time.Now().Format(time.RFC3339), projectRoot)
	w, err := zw.Create("stylepack.manifest.txt")
	if err != nil {
		return fmt.Errorf("add manifest: %w", err)
	}
	if _, err := w.Write([]byte(manifest)); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	added := 0
	err = filepath.Walk(stylesDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(projectRoot, path)
		if err != nil {
			return err
		}
		zipName := filepath.ToSlash(rel)
		fw, err := zw.Create(zipName)
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		if _, err := io.Copy(fw, f); err != nil {
			return err
		}
		added++
		return nil
	})
	if err != nil {
		l.Error("zip build failed", slog.Any("err", err))
		return fmt.Errorf("build zip: %w", err)
	}
	l.Info("style pack exported", slog.Int("files", added), slog.String("zip", destZipPath))
	return nil
}

// InstallPack extracts the given .zip pack into the project's styles
// directory. Sheets ending in .json are validated first and rejected when
// they do not conform. Existing files are never overwritten; they are
// skipped. Returns the count of files installed.
func InstallPack(projectRoot string, packZipPath string) (int, error) {
	l := applog.WithOperation(applog.WithComponent("stylepack"), "install").With(slog.String("project", projectRoot))
	if strings.TrimSpace(projectRoot) == "" {
		return 0, errors.New("projectRoot is required")
	}
	if strings.TrimSpace(packZipPath) == "" {
		return 0, errors.New("packZipPath is required")
	}
	stylesDir := filepath.Join(projectRoot, "styles")
	if err := os.MkdirAll(stylesDir, 0o755); err != nil {
		return 0, fmt.Errorf("ensure styles dir: %w", err)
	}

	r, err := zip.OpenReader(packZipPath)
	if err != nil {
		return 0, fmt.Errorf("open pack: %w", err)
	}
	defer func() { _ = r.Close() }()

	installed := 0
	for _, f := range r.File {
		name := f.Name
		if name == "stylepack.manifest.txt" {
			continue
		}
		targetRel := name
		if !strings.HasPrefix(targetRel, "styles/") {
			targetRel = filepath.ToSlash(filepath.Join("styles", targetRel))
		}
		targetPath := filepath.Join(projectRoot, filepath.FromSlash(targetRel))
		if _, err := os.Stat(targetPath); err == nil {
			l.Warn("skip existing file", slog.String("path", targetPath))
			continue
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(targetPath, 0o755); err != nil {
				return installed, err
			}
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return installed, err
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return installed, err
		}
		if strings.HasSuffix(name, ".json") {
			if verr := Validate(data); verr != nil {
				return installed, fmt.Errorf("pack entry %s: %w", name, verr)
			}
		}
		if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
			return installed, err
		}
		if err := os.WriteFile(targetPath, data, 0o644); err != nil {
			return installed, err
		}
		installed++
	}
	l.Info("style pack installed", slog.Int("files", installed))
	return installed, nil
}
