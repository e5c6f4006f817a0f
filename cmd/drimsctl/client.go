package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type drimsClient struct {
	baseURL string
	http    *http.Client
	user    string
	roles   []string
	token   string
}

func newClient() *drimsClient {
	return &drimsClient{
		baseURL: strings.TrimRight(serverURL, "/"),
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		user:  userFlag,
		roles: rolesFlag,
		token: tokenFlag,
	}
}

// apiError is a failure answered by the server.
type apiError struct {
	Status  int
	Code    string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields"`
}

func (e *apiError) Error() string {
	msg := fmt.Sprintf("server returned %d", e.Status)
	if e.Code != "" {
		msg += " " + e.Code
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	for field, problem := range e.Fields {
		msg += fmt.Sprintf("\n  %s %s", field, problem)
	}
	return msg
}

// getJSON performs a GET request and decodes the response.
func (c *drimsClient) getJSON(path string, v any) error {
	return c.do(http.MethodGet, path, nil, v)
}

// postJSON performs a POST request with a JSON body and decodes the response.
func (c *drimsClient) postJSON(path string, body, v any) error {
	return c.do(http.MethodPost, path, body, v)
}

func (c *drimsClient) do(method, path string, body, v any) error {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal error: %w", err)
		}
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("request creation failed: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.user != "" {
		req.Header.Set("X-Remote-User", c.user)
		req.Header.Set("X-Remote-Roles", strings.Join(c.roles, ","))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := &apiError{Status: resp.StatusCode}
		raw, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(raw, apiErr) != nil || apiErr.Code == "" {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		return apiErr
	}

	if v != nil {
		return json.NewDecoder(resp.Body).Decode(v)
	}
	return nil
}
