package highscore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
	"github.com/vovakirdan/junkshot/internal/config"
)

const maxBodyBytes = 1 << 20

// Handler implements the two endpoints over a Store.
type Handler struct {
	store        Store
	difficulties config.DifficultyTable
	logger       *log.Logger
}

// NewHandler creates a handler.
func NewHandler(store Store, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{store: store, difficulties: config.DefaultDifficulties(), logger: logger}
}

// Register mounts the endpoints on r. Methods are checked by the handlers
// so that wrong verbs get a JSON error body.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc(PathGetHighest, h.GetHighest)
	r.HandleFunc(PathSaveHighest, h.SaveHighest)
}

type highestResponse struct {
	Score      int    `json:"score"`
	Difficulty string `json:"difficulty"`
	UpdatedAt  string `json:"updated_at,omitempty"`
}

// GetHighest answers GET /api/getHighestScore?difficulty=<name>.
func (h *Handler) GetHighest(w http.ResponseWriter, r *http.Request) {
	difficulty := r.URL.Query().Get("difficulty")
	if !h.difficulties.Valid(difficulty) {
		writeError(w, http.StatusBadRequest, "Invalid difficulty")
		return
	}

	hs, ok, err := h.store.HighScore(r.Context(), difficulty)
	if err != nil {
		h.logger.Error("read high score", "difficulty", difficulty, "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := highestResponse{Score: 0, Difficulty: difficulty}
	if ok {
		resp.Score = hs.Score
		if !hs.UpdatedAt.IsZero() {
			resp.UpdatedAt = hs.UpdatedAt.UTC().Format(time.RFC3339)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// SaveHighest answers POST /api/saveHighestScore with body {score, difficulty}.
func (h *Handler) SaveHighest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST method required")
		return
	}

	score, difficulty, err := h.decodeSave(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	switch {
	case errors.Is(err, ErrInvalidPayload):
		writeError(w, http.StatusBadRequest, "Invalid payload")
		return
	case err != nil:
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	updated, stored, err := h.store.SaveHighScore(r.Context(), difficulty, score)
	if err != nil {
		h.logger.Error("save high score", "difficulty", difficulty, "score", score, "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if updated {
		h.logger.Info("new high score", "difficulty", difficulty, "score", stored)
	}
	writeJSON(w, http.StatusOK, SaveResult{Updated: updated, Score: stored})
}

// decodeSave parses the body. Syntax errors are returned as-is; anything
// that parses but is unusable wraps ErrInvalidPayload. An empty body counts
// as an empty object.
func (h *Handler) decodeSave(body io.Reader) (int, string, error) {
	dec := json.NewDecoder(body)
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return 0, "", fmt.Errorf("decode body: %w", err)
	}
	if dec.More() {
		return 0, "", errors.New("decode body: trailing data")
	}

	obj, _ := raw.(map[string]any)
	num, isNum := obj["score"].(json.Number)
	difficulty, _ := obj["difficulty"].(string)
	if !isNum || !h.difficulties.Valid(difficulty) {
		return 0, "", ErrInvalidPayload
	}

	f, err := num.Float64()
	if err != nil || math.IsNaN(f) || f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, "", fmt.Errorf("%w: score %s", ErrInvalidPayload, num)
	}
	return int(f), difficulty, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": strings.TrimSpace(msg)})
}
