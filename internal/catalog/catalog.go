// Package catalog loads the pool of trash items targets are built from.
package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

//go:embed data/items.json
var defaultItemsJSON []byte

// Item is one entry of the trash catalog.
type Item struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Type     string `json:"type,omitempty"` // Fallback when Category is empty
	Image    string `json:"image"`
}

// Kind returns the category used for matching: Category, else Type.
func (i Item) Kind() string {
	if i.Category != "" {
		return i.Category
	}
	return i.Type
}

// Source provides the item pool.
type Source interface {
	Load(ctx context.Context) ([]Item, error)
}

// Decode parses either a bare JSON array of items or an object with an
// "items" array. An object without items yields an empty pool.
func Decode(data []byte) ([]Item, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New("catalog: empty document")
	}

	if trimmed[0] == '[' {
		var items []Item
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("catalog: decode array: %w", err)
		}
		return items, nil
	}

	var doc struct {
		Items []Item `json:"items"`
	}
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("catalog: decode object: %w", err)
	}
	return doc.Items, nil
}

// Embedded serves the catalog compiled into the binary.
type Embedded struct{}

// Load implements Source.
func (Embedded) Load(context.Context) ([]Item, error) {
	return Decode(defaultItemsJSON)
}

// File reads the catalog from disk.
type File struct {
	Path string
}

// Load implements Source.
func (f File) Load(context.Context) ([]Item, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", f.Path, err)
	}
	return Decode(data)
}

// Remote fetches the catalog over HTTP.
type Remote struct {
	URL    string
	Client *http.Client
}

// Load implements Source. Non-2xx responses are errors.
func (r Remote) Load(ctx context.Context) ([]Item, error) {
	client := r.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("catalog: build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog: fetch %s: %w", r.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("catalog: fetch %s: %s", r.URL, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("catalog: read body: %w", err)
	}
	return Decode(data)
}

// Open picks a Source for location: empty means the embedded catalog,
// http(s) URLs are fetched, anything else is a file path.
func Open(location string) Source {
	switch {
	case location == "":
		return Embedded{}
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		return Remote{URL: location}
	default:
		return File{Path: location}
	}
}
