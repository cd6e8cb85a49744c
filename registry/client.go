// Copyright [2019] LinkedIn Corp. Licensed under the Apache License, Version
// 2.0 (the "License"); you may not use this file except in compliance with the
// License.  You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.

package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Client fetches and registers schema documents by id, subject, and
// version, independent of any particular wire transport.
type Client interface {
	GetSchemaByID(ctx context.Context, id int) (string, error)
	GetSchemaByVersion(ctx context.Context, subject string, version int) (id int, doc string, err error)
	GetLatestSchema(ctx context.Context, subject string) (id int, doc string, err error)
	RegisterSchema(ctx context.Context, subject string, doc string) (id int, err error)
}

// HTTPClient is a thin Client over a Confluent-compatible Schema Registry
// REST surface: a base URL plus an *http.Client, with no connection
// pooling or retry policy beyond what net/http already gives callers.
// Auth plumbing beyond a single bearer token is left to the caller via a
// custom http.Client/http.RoundTripper.
type HTTPClient struct {
	BaseURL     string
	HTTP        *http.Client
	BearerToken string
}

// NewHTTPClient returns an HTTPClient against baseURL, using http.DefaultClient
// when httpClient is nil.
func NewHTTPClient(baseURL string, httpClient *http.Client) *HTTPClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPClient{BaseURL: baseURL, HTTP: httpClient}
}

type schemaResponse struct {
	Schema string `json:"schema"`
}

type subjectVersionResponse struct {
	ID      int    `json:"id"`
	Schema  string `json:"schema"`
	Version int    `json:"version"`
}

type registerResponse struct {
	ID int `json:"id"`
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body []byte, out interface{}) error {
	u := c.BaseURL + path
	var reqBody *bytes.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	} else {
		reqBody = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.schemaregistry.v1+json")
	if body != nil {
		req.Header.Set("Content-Type", "application/vnd.schemaregistry.v1+json")
	}
	if c.BearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.BearerToken)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("registry: request to %s failed: %w", u, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("registry: %s %s returned status %d", method, u, resp.StatusCode)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// GetSchemaByID fetches the raw schema document registered under id.
func (c *HTTPClient) GetSchemaByID(ctx context.Context, id int) (string, error) {
	var out schemaResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/schemas/ids/%d", id), nil, &out); err != nil {
		return "", err
	}
	return out.Schema, nil
}

// GetSchemaByVersion fetches a specific version of a subject's schema.
func (c *HTTPClient) GetSchemaByVersion(ctx context.Context, subject string, version int) (int, string, error) {
	var out subjectVersionResponse
	path := fmt.Sprintf("/subjects/%s/versions/%d", url.PathEscape(subject), version)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return 0, "", err
	}
	return out.ID, out.Schema, nil
}

// GetLatestSchema fetches the latest version of a subject's schema.
func (c *HTTPClient) GetLatestSchema(ctx context.Context, subject string) (int, string, error) {
	var out subjectVersionResponse
	path := fmt.Sprintf("/subjects/%s/versions/latest", url.PathEscape(subject))
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return 0, "", err
	}
	return out.ID, out.Schema, nil
}

// RegisterSchema registers doc under subject and returns its assigned id.
// At-most-once registration per subject is the caller's responsibility;
// HTTPClient does not deduplicate on its own.
func (c *HTTPClient) RegisterSchema(ctx context.Context, subject string, doc string) (int, error) {
	body, err := json.Marshal(schemaResponse{Schema: doc})
	if err != nil {
		return 0, err
	}
	var out registerResponse
	path := fmt.Sprintf("/subjects/%s/versions", url.PathEscape(subject))
	if err := c.do(ctx, http.MethodPost, path, body, &out); err != nil {
		return 0, err
	}
	return out.ID, nil
}
