package photos

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/mindwell-health/practice-api/pkg/logging"
)

// Handler exposes stock photo search over HTTP.
type Handler struct {
	searcher Searcher
	logger   *logging.Logger
}

func NewHandler(searcher Searcher, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{searcher: searcher, logger: logger}
}

// Search handles GET /photos/search requests.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))

	result, err := h.searcher.Search(r.Context(), q.Get("query"), page, perPage)
	if err != nil {
		if errors.Is(err, ErrQueryRequired) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("photo search failed", "error", err, "query", q.Get("query"))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
