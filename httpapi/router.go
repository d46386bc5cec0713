package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/soocke/pixel-scan-go/domain/scanner"
	"github.com/soocke/pixel-scan-go/ui/model"
)

// ErrNoResult is returned by Service.Latest before anything was decoded.
var ErrNoResult = errors.New("no result yet")

// Service is the scanner as seen by the HTTP surface. Control methods are
// expected to marshal onto the scanner's control goroutine and honour ctx.
type Service interface {
	Status() scanner.Status
	Results() []model.HistoryEntry
	Latest() (model.HistoryEntry, error)
	ScanSingle(ctx context.Context) error
	ScanContinuous(ctx context.Context) error
	StopScanning(ctx context.Context) error
	Resume(ctx context.Context) error
	Pause(ctx context.Context) error
}

type handlers struct {
	svc    Service
	logger *slog.Logger
}

// NewRouter wires the scanner routes.
func NewRouter(svc Service, logger *slog.Logger) *mux.Router {
	h := &handlers{svc: svc, logger: logger}
	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")
	r.HandleFunc("/status", h.status).Methods("GET")
	r.HandleFunc("/results", h.results).Methods("GET")
	r.HandleFunc("/results/latest", h.latest).Methods("GET")
	r.HandleFunc("/scan/{mode:single|continuous}", h.scan).Methods("POST")
	r.HandleFunc("/scan/stop", h.control(Service.StopScanning)).Methods("POST")
	r.HandleFunc("/session/resume", h.control(Service.Resume)).Methods("POST")
	r.HandleFunc("/session/pause", h.control(Service.Pause)).Methods("POST")
	return r
}

func (h *handlers) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Status())
}

func (h *handlers) results(w http.ResponseWriter, r *http.Request) {
	entries := h.svc.Results()
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		if n < len(entries) {
			entries = entries[:n]
		}
	}
	if entries == nil {
		entries = []model.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *handlers) latest(w http.ResponseWriter, r *http.Request) {
	e, err := h.svc.Latest()
	if errors.Is(err, ErrNoResult) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (h *handlers) scan(w http.ResponseWriter, r *http.Request) {
	if mux.Vars(r)["mode"] == "single" {
		h.control(Service.ScanSingle)(w, r)
		return
	}
	h.control(Service.ScanContinuous)(w, r)
}

func (h *handlers) control(op func(Service, context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := op(h.svc, r.Context()); err != nil {
			if h.logger != nil {
				h.logger.Warn("http control", "path", r.URL.Path, "error", err)
			}
			code := http.StatusInternalServerError
			switch {
			case scanner.IsFatal(err):
				code = http.StatusServiceUnavailable
			case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
				code = http.StatusGatewayTimeout
			}
			writeError(w, code, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, h.svc.Status())
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
