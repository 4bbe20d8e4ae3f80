/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// fakeStore keeps the token in memory so tests never touch the OS keyring.
type fakeStore struct{ token string }

func (f *fakeStore) Get(service, key string) (string, error) {
	if f.token == "" {
		return "", errors.New("not found")
	}
	return f.token, nil
}
func (f *fakeStore) Set(service, key, value string) error { f.token = value; return nil }
func (f *fakeStore) Delete(service, key string) error     { f.token = ""; return nil }

func useFakeStore(t *testing.T) *fakeStore {
	t.Helper()
	old := tokenStore
	fs := &fakeStore{}
	tokenStore = fs
	t.Cleanup(func() { tokenStore = old })
	return fs
}

func isolateHome(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	if !cfg.Tokenizer.NamesAtStartOnly {
		t.Fatalf("expected names_at_start_only default true")
	}
	if cfg.Tokenizer.BracketStyle != "quranic" {
		t.Fatalf("unexpected bracket style default: %q", cfg.Tokenizer.BracketStyle)
	}
}

func TestEnvOverridesTokenizer(t *testing.T) {
	isolateHome(t)
	useFakeStore(t)
	t.Setenv(EnvNamesAtStart, "false")
	t.Setenv(EnvBracketStyle, "ROUND")
	t.Setenv(EnvNamesFile, "/tmp/names.txt")
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Tokenizer.NamesAtStartOnly {
		t.Fatalf("env override for names_at_start_only not applied")
	}
	if cfg.Tokenizer.BracketStyle != "round" {
		t.Fatalf("bracket style = %q", cfg.Tokenizer.BracketStyle)
	}
	if cfg.Tokenizer.NamesFile != "/tmp/names.txt" {
		t.Fatalf("names file = %q", cfg.Tokenizer.NamesFile)
	}
}

func TestEnvOverridesBackendURL(t *testing.T) {
	isolateHome(t)
	useFakeStore(t)
	t.Setenv(EnvBackendURL, "https://example.test:8443")
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got, want := cfg.Backend.BaseURL, "https://example.test:8443"; got != want {
		t.Fatalf("Backend.BaseURL = %q, want %q", got, want)
	}
}

func TestMergeIncludesTokenizer(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.Tokenizer.NamesAtStartOnly = false
	src.Tokenizer.BracketStyle = "Angle"
	mergeInto(&dst, &src)
	if dst.Tokenizer.NamesAtStartOnly {
		t.Fatalf("NamesAtStartOnly was not merged from file config")
	}
	if dst.Tokenizer.BracketStyle != "angle" {
		t.Fatalf("BracketStyle not normalized on merge: %q", dst.Tokenizer.BracketStyle)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	isolateHome(t)
	fs := useFakeStore(t)
	cfg := Defaults()
	cfg.Tokenizer.BracketStyle = "square"
	cfg.Logging.Level = "debug"
	if err := Save(cfg, "sekret"); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	got, tok, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got.Tokenizer.BracketStyle != "square" || got.Logging.Level != "debug" {
		t.Fatalf("round trip lost fields: %+v", got)
	}
	if tok != "sekret" || fs.token != "sekret" {
		t.Fatalf("token not persisted via store: %q", tok)
	}
}

func TestLoadNamesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "names.txt")
	content := "# أسماء الأعلام\nد. رشيد\n\nمصطفى\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	names, err := LoadNamesFile(path)
	if err != nil {
		t.Fatalf("LoadNamesFile() error: %v", err)
	}
	if len(names) != 2 || names[0] != "د. رشيد" || names[1] != "مصطفى" {
		t.Fatalf("unexpected names: %+v", names)
	}
}
