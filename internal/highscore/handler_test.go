package highscore

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/vovakirdan/junkshot/internal/storage"
)

type brokenStore struct{}

func (brokenStore) HighScore(context.Context, string) (storage.HighScore, bool, error) {
	return storage.HighScore{}, false, errors.New("disk on fire")
}

func (brokenStore) SaveHighScore(context.Context, string, int) (bool, int, error) {
	return false, 0, errors.New("disk on fire")
}

func newTestRouter(t *testing.T, store Store) *mux.Router {
	t.Helper()
	if store == nil {
		s, err := storage.Open(filepath.Join(t.TempDir(), "scores.db"))
		if err != nil {
			t.Fatalf("storage.Open() failed: %v", err)
		}
		t.Cleanup(func() { s.Close() })
		store = s
	}
	r := mux.NewRouter()
	NewHandler(store, nil).Register(r)
	return r
}

func do(t *testing.T, h http.Handler, method, target, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("%s %s: response is not JSON: %q", method, target, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, expected application/json", ct)
	}
	return rec.Code, out
}

func TestGetHighestScore(t *testing.T) {
	r := newTestRouter(t, nil)

	code, body := do(t, r, http.MethodGet, PathGetHighest+"?difficulty=easy", "")
	if code != http.StatusOK || body["score"] != float64(0) || body["difficulty"] != "easy" {
		t.Errorf("empty store: %d %v", code, body)
	}
	if _, has := body["updated_at"]; has {
		t.Error("updated_at present without a record")
	}

	do(t, r, http.MethodPost, PathSaveHighest, `{"score": 700, "difficulty": "easy"}`)
	code, body = do(t, r, http.MethodGet, PathGetHighest+"?difficulty=easy", "")
	if code != http.StatusOK || body["score"] != float64(700) {
		t.Errorf("after save: %d %v", code, body)
	}
	if body["updated_at"] == nil {
		t.Error("updated_at missing for stored record")
	}
}

func TestGetHighestScoreInvalidDifficulty(t *testing.T) {
	r := newTestRouter(t, nil)

	for _, q := range []string{"", "?difficulty=", "?difficulty=nightmare", "?difficulty=EASY"} {
		code, body := do(t, r, http.MethodGet, PathGetHighest+q, "")
		if code != http.StatusBadRequest || body["error"] == nil {
			t.Errorf("query %q: %d %v, expected 400 with error", q, code, body)
		}
	}
}

func TestSaveHighestScore(t *testing.T) {
	r := newTestRouter(t, nil)

	tests := []struct {
		name        string
		body        string
		wantCode    int
		wantUpdated any
		wantScore   any
		wantError   any
	}{
		{"first save", `{"score": 300, "difficulty": "hard"}`, 200, true, float64(300), nil},
		{"lower score", `{"score": 100, "difficulty": "hard"}`, 200, false, float64(300), nil},
		{"equal score", `{"score": 300, "difficulty": "hard"}`, 200, false, float64(300), nil},
		{"higher score", `{"score": 301, "difficulty": "hard"}`, 200, true, float64(301), nil},
		{"zero on new difficulty", `{"score": 0, "difficulty": "easy"}`, 200, true, float64(0), nil},
		{"malformed json", `{"score": `, 400, nil, nil, "Invalid JSON body"},
		{"trailing garbage", `{"score": 1, "difficulty": "easy"} x`, 400, nil, nil, "Invalid JSON body"},
		{"empty body", ``, 400, nil, nil, "Invalid payload"},
		{"null body", `null`, 400, nil, nil, "Invalid payload"},
		{"array body", `[1, 2]`, 400, nil, nil, "Invalid payload"},
		{"string score", `{"score": "300", "difficulty": "hard"}`, 400, nil, nil, "Invalid payload"},
		{"missing score", `{"difficulty": "hard"}`, 400, nil, nil, "Invalid payload"},
		{"negative score", `{"score": -1, "difficulty": "hard"}`, 400, nil, nil, "Invalid payload"},
		{"fractional score", `{"score": 12.5, "difficulty": "hard"}`, 400, nil, nil, "Invalid payload"},
		{"unknown difficulty", `{"score": 10, "difficulty": "nightmare"}`, 400, nil, nil, "Invalid payload"},
		{"difficulty not string", `{"score": 10, "difficulty": 3}`, 400, nil, nil, "Invalid payload"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			code, body := do(t, r, http.MethodPost, PathSaveHighest, tc.body)
			if code != tc.wantCode {
				t.Fatalf("status = %d, expected %d (%v)", code, tc.wantCode, body)
			}
			if tc.wantError != nil {
				if body["error"] != tc.wantError {
					t.Errorf("error = %v, expected %v", body["error"], tc.wantError)
				}
				return
			}
			if body["updated"] != tc.wantUpdated || body["score"] != tc.wantScore {
				t.Errorf("body = %v, expected updated=%v score=%v", body, tc.wantUpdated, tc.wantScore)
			}
		})
	}
}

func TestSaveHighestScoreRequiresPost(t *testing.T) {
	r := newTestRouter(t, nil)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		code, body := do(t, r, method, PathSaveHighest, `{"score": 1, "difficulty": "easy"}`)
		if code != http.StatusMethodNotAllowed || body["error"] != "POST method required" {
			t.Errorf("%s: %d %v, expected 405", method, code, body)
		}
	}
}

func TestStorageErrorsReturn500(t *testing.T) {
	r := newTestRouter(t, brokenStore{})

	code, body := do(t, r, http.MethodGet, PathGetHighest+"?difficulty=easy", "")
	if code != http.StatusInternalServerError || body["error"] == nil {
		t.Errorf("GET: %d %v, expected 500", code, body)
	}
	code, body = do(t, r, http.MethodPost, PathSaveHighest, `{"score": 1, "difficulty": "easy"}`)
	if code != http.StatusInternalServerError || body["error"] == nil {
		t.Errorf("POST: %d %v, expected 500", code, body)
	}
}
