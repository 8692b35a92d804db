package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/hoangpq/Toshi/internal/index"
)

// Remote is a client for another node's RPC listener.
type Remote struct {
	baseURL string
	client  *http.Client
}

func NewRemote(baseURL string) *Remote {
	return &Remote{
		baseURL: baseURL,
		client:  http.DefaultClient,
	}
}

// CreateIndex creates an index on the remote node.
func (r *Remote) CreateIndex(ctx context.Context, name string) error {
	u := fmt.Sprintf("%s/rpc/index?name=%s", r.baseURL, url.QueryEscape(name))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u, nil)
	if err != nil {
		return fmt.Errorf("create index request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("create index do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("create index failed: %d: %s", resp.StatusCode, string(b))
	}
	return nil
}

// AddDocument stores a document on the remote node and returns its ID.
func (r *Remote) AddDocument(ctx context.Context, indexName string, fields map[string]string) (string, error) {
	body, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("marshal document: %w", err)
	}

	u := fmt.Sprintf("%s/rpc/doc?index=%s", r.baseURL, url.QueryEscape(indexName))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("add document request: %w", err)
	}
	req.Header.Set("Content-Type", contentTypeJSON)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("add document do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("add document failed: %d: %s", resp.StatusCode, string(b))
	}

	var rr Response
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return "", fmt.Errorf("decode add document response: %w", err)
	}
	return rr.DocID, nil
}

// Search queries the remote node's index.
func (r *Remote) Search(ctx context.Context, indexName, query string) ([]index.Document, error) {
	u := fmt.Sprintf("%s/rpc/search?index=%s&q=%s",
		r.baseURL, url.QueryEscape(indexName), url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("search failed: %d: %s", resp.StatusCode, string(b))
	}

	var rr Response
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return rr.Hits, nil
}
