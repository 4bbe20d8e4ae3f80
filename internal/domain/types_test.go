/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestProjectJSONRoundTrip(t *testing.T) {
	p := Project{
		Name:     "ديوان النثر",
		Metadata: Metadata{Author: "مصطفى", Notes: "مسودة"},
		Manuscripts: []Manuscript{
			{
				Title:            "الفصل الأول",
				Path:             "chapter-01.txt",
				Names:            []string{"د. رشيد", "مصطفى"},
				NamesAtStartOnly: true,
				BracketStyle:     "quranic",
			},
		},
	}
	b, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got Project
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Name != p.Name || len(got.Manuscripts) != 1 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	m := got.Manuscripts[0]
	if !m.NamesAtStartOnly || m.BracketStyle != "quranic" || len(m.Names) != 2 {
		t.Fatalf("manuscript fields lost: %+v", m)
	}
}

func TestManuscriptOmitsEmptyOptionalFields(t *testing.T) {
	b, err := json.Marshal(Manuscript{Title: "فصل", Path: "f.txt"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(b)
	for _, absent := range []string{`"names"`, `"bracketStyle"`} {
		if strings.Contains(s, absent) {
			t.Fatalf("expected %q omitted from %s", absent, s)
		}
	}
}
