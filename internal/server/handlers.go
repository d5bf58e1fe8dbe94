package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/kapu/repfinder-go/internal/config"
	"github.com/kapu/repfinder-go/internal/domain"
	"github.com/kapu/repfinder-go/pkg/errors"
	"go.uber.org/zap"
)

const (
	maxLetterBody   = 64 << 10
	historyLimit    = 5
	healthPingLimit = 2 * time.Second
)

type repsResponse struct {
	Reps []domain.Representative `json:"reps"`
}

type syncResponse struct {
	Success  bool                                    `json:"success"`
	ID       string                                  `json:"id"`
	Results  map[domain.Dataset]domain.DatasetResult `json:"results"`
	SyncedAt time.Time                               `json:"syncedAt"`
}

type syncStatusResponse struct {
	domain.SyncStatus
	Runs []domain.SyncReport `json:"runs,omitempty"`
}

func (s *Server) handleReps(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	raw := strings.TrimSpace(q.Get("country"))
	if raw == "" {
		writeError(w, errors.NewValidationError("Missing country", errors.ReasonMissingField, "country", nil))
		return
	}
	country, ok := domain.ParseCountry(raw)
	if !ok {
		writeError(w, errors.NewValidationError("Unsupported country: "+raw, errors.ReasonUnsupportedCountry, "country", raw))
		return
	}

	loc := domain.Locator{
		Country:     country,
		Postal:      strings.TrimSpace(q.Get("postal")),
		Street:      strings.TrimSpace(q.Get("street")),
		City:        strings.TrimSpace(q.Get("city")),
		State:       strings.TrimSpace(q.Get("state")),
		MemberState: strings.TrimSpace(q.Get("memberState")),
	}

	reps, err := s.deps.Reps.Find(r.Context(), loc)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, repsResponse{Reps: reps})
}

func (s *Server) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.deps.Status.Status(r.Context())
	if err != nil {
		s.logger.Error("Failed to read sync status", zap.Error(err))
		writeError(w, err)
		return
	}

	resp := syncStatusResponse{SyncStatus: status}
	if s.deps.History != nil {
		runs, err := s.deps.History.LatestRuns(r.Context(), historyLimit)
		if err != nil {
			s.logger.Warn("Failed to read sync history", zap.Error(err))
		} else {
			resp.Runs = runs
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleSync requires the shared secret. An unset secret disables the
// endpoint entirely.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if s.deps.SyncSecret == "" {
		writeJSON(w, http.StatusForbidden, errorBody{Error: "Sync is disabled: no secret configured"})
		return
	}
	secret := r.URL.Query().Get("secret")
	if secret == "" {
		secret = r.Header.Get("X-Sync-Secret")
	}
	if subtle.ConstantTimeCompare([]byte(secret), []byte(s.deps.SyncSecret)) != 1 {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "Unauthorized"})
		return
	}

	var datasets []domain.Dataset
	for _, name := range config.ParseCommaSeparated(r.URL.Query().Get("datasets")) {
		ds, ok := domain.ParseDataset(name)
		if !ok {
			writeError(w, errors.NewValidationError("Unknown dataset: "+name, errors.ReasonInvalidFormat, "datasets", name))
			return
		}
		datasets = append(datasets, ds)
	}

	// The run outlives a disconnected client; the job carries its own cap.
	report := s.deps.Sync.Run(context.WithoutCancel(r.Context()), datasets...)

	writeJSON(w, http.StatusOK, syncResponse{
		Success:  report.Failed() == 0,
		ID:       report.ID.String(),
		Results:  report.Results,
		SyncedAt: report.FinishedAt,
	})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req domain.LetterRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxLetterBody))
	if err := dec.Decode(&req); err != nil {
		writeError(w, errors.NewValidationError("Invalid JSON body", errors.ReasonInvalidFormat, "body", nil))
		return
	}
	if req.Country != "" {
		if c, ok := domain.ParseCountry(string(req.Country)); ok {
			req.Country = c
		}
	}

	letter, err := s.deps.Letters.Draft(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, letter)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthPingLimit)
	defer cancel()

	if err := s.deps.Status.Ping(ctx); err != nil {
		s.logger.Warn("Health check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "cache": "unreachable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "cache": "ok"})
}
