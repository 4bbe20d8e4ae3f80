/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */
package crash

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hibrwriter/internal/domain"
	"hibrwriter/internal/storage"
)

func TestRecoverWritesReportAndSnapshot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "proj")
	ph, err := storage.InitProject(root, domain.Project{Name: "مشروع", Manuscripts: []domain.Manuscript{}})
	if err != nil {
		t.Fatalf("InitProject: %v", err)
	}

	exitCode := -1
	old := exitFn
	exitFn = func(code int) { exitCode = code }
	defer func() { exitFn = old }()

	func() {
		defer Recover(ph)
		panic("boom")
	}()

	if exitCode != 2 {
		t.Fatalf("exit code = %d, want 2", exitCode)
	}

	ents, err := os.ReadDir(filepath.Join(root, storage.BackupsDirName))
	if err != nil {
		t.Fatalf("read backups: %v", err)
	}
	var haveReport, haveSnapshot bool
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, "crash-") && strings.HasSuffix(name, ".log") {
			haveReport = true
			b, err := os.ReadFile(filepath.Join(root, storage.BackupsDirName, name))
			if err != nil {
				t.Fatalf("read report: %v", err)
			}
			if !strings.Contains(string(b), "Panic: boom") {
				t.Fatalf("report missing panic value:\n%s", b)
			}
		}
		if strings.Contains(name, ".crash-") && strings.HasSuffix(name, ".bak") {
			haveSnapshot = true
		}
	}
	if !haveReport {
		t.Fatalf("no crash report written")
	}
	if !haveSnapshot {
		t.Fatalf("no autosave snapshot written")
	}
}

func TestRecoverNoPanicIsNoOp(t *testing.T) {
	exitCode := -1
	old := exitFn
	exitFn = func(code int) { exitCode = code }
	defer func() { exitFn = old }()

	func() {
		defer Recover(nil)
	}()

	if exitCode != -1 {
		t.Fatalf("exit called without a panic")
	}
}

func TestRecoverWithoutProjectWritesToTemp(t *testing.T) {
	exitCode := -1
	old := exitFn
	exitFn = func(code int) { exitCode = code }
	defer func() { exitFn = old }()

	func() {
		defer Recover(nil)
		panic("no project")
	}()

	if exitCode != 2 {
		t.Fatalf("exit code = %d, want 2", exitCode)
	}
}
