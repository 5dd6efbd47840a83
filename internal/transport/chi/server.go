// Package chi exposes the matching pipeline over HTTP: upload two room
// datasets, get the match workbook back.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/novotnakristyna1203/hotel-price-prediction/internal/domain"
	"github.com/novotnakristyna1203/hotel-price-prediction/internal/domain/room"
	"github.com/novotnakristyna1203/hotel-price-prediction/internal/fileio"
	healthuc "github.com/novotnakristyna1203/hotel-price-prediction/internal/usecase/health"
)

// maxUploadBytes bounds one uploaded dataset; a season of scraped rates
// stays well under this.
const maxUploadBytes = 64 << 20

// Matcher runs one matching pass over the two datasets.
type Matcher interface {
	Run(ctx context.Context, reference, competitors []room.Offer) (room.MatchResult, error)
}

// Server handles the HTTP API.
type Server struct {
	matcher Matcher
	health  *healthuc.Service
	logger  *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(matcher Matcher, health *healthuc.Service, logger *zap.Logger) *Server {
	return &Server{matcher: matcher, health: health, logger: logger}
}

// Routes mounts all endpoints on a fresh router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/v1/match", s.handleMatch)
	r.Get("/healthz", s.handleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	return r
}

// handleMatch accepts a multipart form with two .xlsx datasets under the
// "reference" and "competitors" fields and streams the match workbook back.
func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "expected multipart form with reference and competitors files")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	reference, err := readUpload(r, "reference")
	if err != nil {
		s.writeReadError(w, "reference", err)
		return
	}
	competitors, err := readUpload(r, "competitors")
	if err != nil {
		s.writeReadError(w, "competitors", err)
		return
	}

	result, err := s.matcher.Run(r.Context(), reference, competitors)
	if err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			return // client went away
		case errors.Is(err, domain.ErrRateLimited):
			writeError(w, http.StatusTooManyRequests, "rate_limited", "embedding provider rate limit hit, retry later")
		default:
			s.logger.Error("Matching run failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal_error", "matching failed")
		}
		return
	}

	filename := fmt.Sprintf("matches_%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("X-Match-Accepted", fmt.Sprint(result.Accepted()))
	w.Header().Set("X-Match-Rejected", fmt.Sprint(len(result.Rejections)))

	if err := fileio.WriteMatchWorkbook(w, result); err != nil {
		// Headers are gone; all we can do is log.
		s.logger.Error("Failed to write match workbook", zap.Error(err))
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// readUpload parses one uploaded dataset field.
func readUpload(r *http.Request, field string) ([]room.Offer, error) {
	file, _, err := r.FormFile(field)
	if err != nil {
		return nil, fmt.Errorf("missing %q file: %w", field, err)
	}
	defer closeQuietly(file)
	return fileio.ReadRooms(file)
}

func closeQuietly(f multipart.File) { _ = f.Close() }

func (s *Server) writeReadError(w http.ResponseWriter, field string, err error) {
	if errors.Is(err, domain.ErrMissingColumn) {
		writeError(w, http.StatusBadRequest, "bad_dataset",
			fmt.Sprintf("%s dataset: %v", field, err))
		return
	}
	writeError(w, http.StatusBadRequest, "bad_request",
		fmt.Sprintf("cannot read %s dataset: %v", field, err))
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"code":    code,
		"message": message,
	})
}
