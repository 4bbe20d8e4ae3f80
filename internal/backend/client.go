/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"hibrwriter/internal/prose"
	"hibrwriter/internal/storage"
)

// Client is a minimal HTTP client for the thin backend API.
// The desktop app uses it only under a feature flag.
type Client struct {
	BaseURL string
	Token   string // bearer token
	client  *http.Client
}

// NewClient creates a new backend client. baseURL may include a trailing slash; it will be normalized.
func NewClient(baseURL string, token string) *Client {
	b := strings.TrimRight(baseURL, "/")
	return &Client{
		BaseURL: b,
		Token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, dest any) error {
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return err
	}
	var rdr *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rdr = bytes.NewReader(b)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rdr)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("server %s %s: %s", method, u.Path, resp.Status)
	}
	if dest == nil {
		return nil
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	return dec.Decode(dest)
}

// Project is a minimal projection for listing.
type Project struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int64     `json:"version"`
}

// ListProjects returns available projects.
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	var list []Project
	if err := c.doJSON(ctx, http.MethodGet, "/api/projects", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// CreateProject registers a project on the server and returns its id.
func (c *Client) CreateProject(ctx context.Context, name, description string) (int64, error) {
	var resp struct {
		ID int64 `json:"id"`
	}
	body := map[string]string{"name": name, "description": description}
	if err := c.doJSON(ctx, http.MethodPost, "/api/projects", body, &resp); err != nil {
		return 0, err
	}
	return resp.ID, nil
}

// PushManuscript replaces one manuscript's rows on the server with the given
// classified paragraphs, projected the same way as the local index.
func (c *Client) PushManuscript(ctx context.Context, projectID int64, manuscript string, paras []prose.Paragraph) error {
	up := ParagraphUpload{Manuscript: manuscript}
	for _, p := range paras {
		var tb strings.Builder
		seen := map[string]struct{}{}
		var kinds, names []string
		for _, r := range p.Runs {
			tb.WriteString(r.Text)
			k := r.Kind.String()
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				kinds = append(kinds, k)
			}
			if r.Kind == prose.RunName {
				names = append(names, r.Text)
			}
		}
		up.Rows = append(up.Rows, ParagraphRow{
			ParaIndex: p.Index,
			Text:      tb.String(),
			Kinds:     strings.Join(kinds, " "),
			Names:     strings.Join(names, " "),
		})
	}
	path := fmt.Sprintf("/api/projects/%d/paragraphs", projectID)
	return c.doJSON(ctx, http.MethodPut, path, up, nil)
}

// Search runs a server-side search with the same filter semantics as the
// local index.
func (c *Client) Search(ctx context.Context, projectID int64, query string, f storage.SearchFilters) ([]storage.SearchResult, error) {
	qv := url.Values{}
	if query != "" {
		qv.Set("q", query)
	}
	if f.Manuscript != "" {
		qv.Set("manuscript", f.Manuscript)
	}
	if f.Kind != "" {
		qv.Set("kind", f.Kind)
	}
	if f.Name != "" {
		qv.Set("name", f.Name)
	}
	if f.FromPara > 0 {
		qv.Set("from", strconv.Itoa(f.FromPara))
	}
	if f.ToPara > 0 {
		qv.Set("to", strconv.Itoa(f.ToPara))
	}
	if f.Limit > 0 {
		qv.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Offset > 0 {
		qv.Set("offset", strconv.Itoa(f.Offset))
	}
	path := fmt.Sprintf("/api/projects/%d/search", projectID)
	if enc := qv.Encode(); enc != "" {
		path += "?" + enc
	}
	var out []storage.SearchResult
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
