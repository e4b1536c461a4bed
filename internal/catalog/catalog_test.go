package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		expected  int
		expectErr bool
	}{
		{"bare array", `[{"id":"a","category":"organic"},{"id":"b"}]`, 2, false},
		{"items object", `{"items":[{"id":"a"}]}`, 1, false},
		{"object without items", `{"other":true}`, 0, false},
		{"empty", "  ", 0, true},
		{"garbage", `{"items":`, 0, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			items, err := Decode([]byte(tc.input))
			if (err != nil) != tc.expectErr {
				t.Fatalf("Decode() error = %v, expectErr %v", err, tc.expectErr)
			}
			if len(items) != tc.expected {
				t.Errorf("Decode() returned %d items, expected %d", len(items), tc.expected)
			}
		})
	}
}

func TestEmbeddedCoversAllCategories(t *testing.T) {
	items, err := Embedded{}.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	seen := map[string]int{}
	for _, it := range items {
		if it.ID == "" {
			t.Errorf("embedded item %q has no id", it.Name)
		}
		seen[it.Kind()]++
	}
	for _, cat := range []string{"organic", "inorganic", "recyclable", "hazardous"} {
		if seen[cat] == 0 {
			t.Errorf("embedded catalog has no %s items", cat)
		}
	}
}

func TestItemKindFallsBackToType(t *testing.T) {
	it := Item{Type: "hazardous"}
	if it.Kind() != "hazardous" {
		t.Errorf("Kind() = %q, expected hazardous", it.Kind())
	}
	it.Category = "organic"
	if it.Kind() != "organic" {
		t.Errorf("Kind() = %q, expected organic", it.Kind())
	}
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.json")
	if err := os.WriteFile(path, []byte(`[{"id":"x","category":"organic"}]`), 0o644); err != nil {
		t.Fatal(err)
	}

	items, err := Open(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(items) != 1 || items[0].ID != "x" {
		t.Errorf("Load() = %+v, expected one item x", items)
	}

	if _, err := (File{Path: filepath.Join(t.TempDir(), "missing.json")}).Load(context.Background()); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestRemoteSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[{"id":"a"},{"id":"b"}]}`))
	}))
	defer srv.Close()

	src := Open(srv.URL + "/items.json")
	items, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("Load() returned %d items, expected 2", len(items))
	}

	if _, err := (Remote{URL: srv.URL + "/missing"}).Load(context.Background()); err == nil {
		t.Error("expected error for 404 response")
	}
}
