package app

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"migrator/bot/internal/roster"
	"migrator/bot/internal/search"
	"migrator/bot/internal/util"
)

type HTTPServer struct {
	service    *Service
	corsOrigin string
	uploadDir  string
}

// NewHTTPServer creates the dashboard server. uploadDir may be empty when
// screenshots live in object storage instead of on local disk.
func NewHTTPServer(service *Service, corsOrigin, uploadDir string) *HTTPServer {
	return &HTTPServer{service: service, corsOrigin: corsOrigin, uploadDir: uploadDir}
}

func (s *HTTPServer) Handler() http.Handler {
	return s.withMiddleware(http.HandlerFunc(s.handle))
}

func (s *HTTPServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		writeJSON(w, http.StatusNoContent, map[string]any{})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/health" {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/ready" {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status := "ready"
		statusCode := http.StatusOK
		checks := map[string]any{
			"database": map[string]any{"status": "ok"},
		}
		if !s.service.RosterEnabled() {
			checks["database"] = map[string]any{"status": "disabled"}
		} else if err := s.service.Ping(ctx); err != nil {
			status = "not_ready"
			statusCode = http.StatusServiceUnavailable
			checks["database"] = map[string]any{
				"status": "error",
				"error":  err.Error(),
			}
		}

		writeJSON(w, statusCode, map[string]any{
			"ok":     status == "ready",
			"status": status,
			"checks": checks,
		})
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/" {
		s.handleDashboard(w, r)
		return
	}

	if s.uploadDir != "" && r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/uploads/") {
		w.Header().Del("Content-Type")
		http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.uploadDir))).ServeHTTP(w, r)
		return
	}

	parts := splitPath(r.URL.Path)
	if len(parts) >= 2 && parts[0] == "api" {
		switch parts[1] {
		case "players":
			s.handlePlayers(w, r, parts)
			return
		case "requests":
			if r.Method == http.MethodGet && len(parts) == 2 {
				if !s.requireAdmin(w, r) {
					return
				}
				writeJSON(w, http.StatusOK, map[string]any{"requests": s.service.PendingRequests(r.Context())})
				return
			}
		case "stats":
			if r.Method == http.MethodGet && len(parts) == 2 {
				stats, err := s.service.Stats(r.Context())
				if err != nil {
					writeMappedError(w, err)
					return
				}
				writeJSON(w, http.StatusOK, stats)
				return
			}
		case "export":
			if r.Method == http.MethodGet && len(parts) == 3 && parts[2] == "roster.pdf" {
				if !s.requireAdmin(w, r) {
					return
				}
				s.handleExport(w, r)
				return
			}
		case "upload":
			if r.Method == http.MethodPost && len(parts) == 3 {
				if !s.requireAdmin(w, r) {
					return
				}
				s.handleUpload(w, r, parts[2])
				return
			}
		}
	}

	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
}

func (s *HTTPServer) handlePlayers(w http.ResponseWriter, r *http.Request, parts []string) {
	switch {
	case len(parts) == 2 && r.Method == http.MethodGet:
		players, err := s.service.ListPlayers(r.Context())
		if err != nil {
			writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"players": players})

	case len(parts) == 2 && r.Method == http.MethodPost:
		if !s.requireAdmin(w, r) {
			return
		}
		var in UpsertPlayerInput
		if err := decodeBody(r, &in); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		p, err := s.service.UpsertPlayer(r.Context(), in)
		if err != nil {
			writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)

	case len(parts) == 3 && parts[2] == "search" && r.Method == http.MethodGet:
		q := search.Query{
			Text:            r.URL.Query().Get("q"),
			FilterKingdom:   r.URL.Query().Get("kingdom"),
			FilterMigration: r.URL.Query().Get("status"),
		}
		if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
			q.Limit = limit
		}
		if offset, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil {
			q.Offset = offset
		}
		resp, err := s.service.SearchPlayers(q)
		if err != nil {
			writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)

	case len(parts) == 3 && r.Method == http.MethodGet:
		p, err := s.service.GetPlayer(r.Context(), parts[2])
		if err != nil {
			writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)

	case len(parts) == 3 && r.Method == http.MethodDelete:
		if !s.requireAdmin(w, r) {
			return
		}
		if err := s.service.DeletePlayer(r.Context(), parts[2]); err != nil {
			writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})

	case len(parts) == 4 && parts[3] == "migration" && r.Method == http.MethodPut:
		if !s.requireAdmin(w, r) {
			return
		}
		var body struct {
			Status string `json:"status"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		if err := s.service.SetMigration(r.Context(), parts[2], body.Status); err != nil {
			writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})

	case len(parts) == 4 && parts[3] == "screenshots" && r.Method == http.MethodGet:
		list, err := s.service.Screenshots(r.Context(), parts[2])
		if err != nil {
			writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"screenshots": list})

	default:
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
	}
}

func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	res, err := s.service.RosterPDF(r.Context())
	if err != nil {
		writeMappedError(w, err)
		return
	}
	w.Header().Set("Content-Type", res.MimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Data)
}

func (s *HTTPServer) handleUpload(w http.ResponseWriter, r *http.Request, playerID string) {
	if err := r.ParseMultipartForm(16 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "Expected multipart form upload", nil)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "Missing file field", nil)
		return
	}
	defer file.Close()

	shot, err := s.service.UploadScreenshot(
		r.Context(),
		playerID,
		header.Filename,
		header.Header.Get("Content-Type"),
		header.Size,
		file,
		r.FormValue("description"),
	)
	if err != nil {
		writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, shot)
}

func (s *HTTPServer) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if err := s.service.CheckAdminToken(bearerToken(r)); err != nil {
		writeMappedError(w, err)
		return false
	}
	return true
}

func (s *HTTPServer) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = util.NewID("")
		}
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		started := time.Now()
		writer := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		setCORSHeaders(writer.Header(), s.corsOrigin)
		writer.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(writer, r)

		log.Printf(`{"request_id":"%s","method":"%s","path":"%s","status":%d,"duration_ms":%d}`,
			requestID,
			r.Method,
			r.URL.Path,
			writer.status,
			time.Since(started).Milliseconds(),
		)
	})
}

type requestIDKey struct{}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func setCORSHeaders(header http.Header, corsOrigin string) {
	header.Set("Access-Control-Allow-Origin", corsOrigin)
	header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
	header.Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
	header.Set("Cache-Control", "no-store")
	header.Set("Content-Type", "application/json")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string, details any) {
	response := map[string]any{
		"code":  code,
		"error": message,
	}
	if details != nil {
		response["details"] = details
	}
	writeJSON(w, status, response)
}

func writeMappedError(w http.ResponseWriter, err error) {
	status, code, message, details := mapError(err)
	writeError(w, status, code, message, details)
}

func decodeBody(r *http.Request, target any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, http.ErrBodyReadAfterClose) {
			return nil
		}
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func mapError(err error) (status int, code, message string, details any) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Status, domainErr.Code, domainErr.Message, domainErr.Details
	}
	if errors.Is(err, sql.ErrNoRows) || errors.Is(err, roster.ErrNotFound) {
		return http.StatusNotFound, "NOT_FOUND", "Not found", nil
	}
	return http.StatusInternalServerError, "SERVER_ERROR", "Server error", nil
}
