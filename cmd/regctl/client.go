package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client calls the registry HTTP API and prints JSON responses.
type Client struct {
	baseURL    string
	token      string
	out        io.Writer
	httpClient *http.Client
}

func NewClient(baseURL, token string, out io.Writer) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		out:        out,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type submitPayload struct {
	Name       string `json:"name"`
	Age        uint32 `json:"age"`
	DocumentID string `json:"document_id"`
	ProofHash  string `json:"proof_hash"`
}

// APIError is a non-2xx response from the server.
type APIError struct {
	Status      int
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

func (e *APIError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Description)
	}
	return fmt.Sprintf("%d %s", e.Status, e.Code)
}

func (c *Client) Submit(ctx context.Context, payload submitPayload) error {
	return c.do(ctx, http.MethodPost, "/identities", payload, true)
}

func (c *Client) Verify(ctx context.Context, account, proof string) error {
	return c.do(ctx, http.MethodPost, "/identities/"+url.PathEscape(account)+"/verify", map[string]string{"proof_hash": proof}, true)
}

func (c *Client) AddVerifier(ctx context.Context, account string) error {
	return c.do(ctx, http.MethodPut, "/verifiers/"+url.PathEscape(account), nil, true)
}

func (c *Client) RemoveVerifier(ctx context.Context, account string) error {
	return c.do(ctx, http.MethodDelete, "/verifiers/"+url.PathEscape(account), nil, true)
}

func (c *Client) Identity(ctx context.Context, account string) error {
	return c.do(ctx, http.MethodGet, "/identities/"+url.PathEscape(account), nil, false)
}

// Status prints the verified and verifier flags of account.
func (c *Client) Status(ctx context.Context, account string) error {
	if err := c.do(ctx, http.MethodGet, "/identities/"+url.PathEscape(account)+"/verified", nil, false); err != nil {
		return err
	}
	return c.do(ctx, http.MethodGet, "/verifiers/"+url.PathEscape(account), nil, false)
}

func (c *Client) do(ctx context.Context, method, path string, body any, authenticated bool) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("could not encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("could not build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authenticated {
		if c.token == "" {
			return fmt.Errorf("%s %s requires --token", method, path)
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("could not read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		_ = json.Unmarshal(respBody, apiErr)
		return apiErr
	}
	if resp.StatusCode == http.StatusNoContent {
		fmt.Fprintln(c.out, `{"ok":true}`)
		return nil
	}
	_, err = c.out.Write(respBody)
	return err
}
