// Package provider wraps the external lookup webhook that performs the
// actual address/business search. It is an opaque collaborator: submit a
// search, poll its status, download the finished spreadsheet.
package provider

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/joaoanzolim/maps-b2b/internal/utils"
)

// SubmitRequest is the payload the webhook expects.
type SubmitRequest struct {
	Address string `json:"address"`
	Query   string `json:"query"`
	CEP     string `json:"cep"`
}

// SubmitResponse is the webhook's acknowledgement of a new search.
type SubmitResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

type statusResponse struct {
	Success    bool `json:"success"`
	Finalizado bool `json:"finalizado"`
}

// Client is the surface the search service depends on. Tests replace it
// with a stub.
type Client interface {
	// Submit starts a search and returns the acknowledgement plus the
	// raw response body for bookkeeping.
	Submit(req SubmitRequest) (*SubmitResponse, []byte, error)
	// Status reports whether the search identified by id has finished.
	Status(id string) (bool, error)
	// Download fetches the finished result spreadsheet. Returns the file
	// content and a suggested filename.
	Download(id string) ([]byte, string, error)
}

var ErrProviderFailure = errors.New("search provider rejected the request")

// HTTPClient talks to the real webhook with bearer-token authorization.
type HTTPClient struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		BaseURL: baseURL,
		Token:   token,
		HTTP:    utils.NewHTTPClient(30 * time.Second),
	}
}

func (c *HTTPClient) do(method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequest(method, c.BaseURL+path, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.Token))

	return c.HTTP.Do(req)
}

func (c *HTTPClient) Submit(req SubmitRequest) (*SubmitResponse, []byte, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, nil, err
	}

	resp, err := c.do(http.MethodPost, "/search", bytes.NewBuffer(payload))
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, body, fmt.Errorf("provider returned status %d: %s", resp.StatusCode, string(body))
	}

	var ack SubmitResponse
	if err := json.Unmarshal(body, &ack); err != nil {
		return nil, body, fmt.Errorf("failed to parse provider response: %w", err)
	}
	if !ack.Success || ack.ID == "" {
		return nil, body, ErrProviderFailure
	}

	return &ack, body, nil
}

func (c *HTTPClient) Status(id string) (bool, error) {
	resp, err := c.do(http.MethodGet, "/search/"+id+"/status", nil)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, err
	}
	if resp.StatusCode >= 400 {
		return false, fmt.Errorf("provider returned status %d: %s", resp.StatusCode, string(body))
	}

	var status statusResponse
	if err := json.Unmarshal(body, &status); err != nil {
		return false, fmt.Errorf("failed to parse provider status: %w", err)
	}

	return status.Finalizado, nil
}

func (c *HTTPClient) Download(id string) ([]byte, string, error) {
	resp, err := c.do(http.MethodGet, "/search/"+id+"/download", nil)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return nil, "", fmt.Errorf("provider returned status %d: %s", resp.StatusCode, string(body))
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}

	return content, fmt.Sprintf("resultado_%s.xlsx", id), nil
}
