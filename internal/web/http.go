// Package web is the HTTP transport over the proposal service: route
// dispatch, content negotiation (json, jsonp, csv) and the error envelope.
// It holds no domain logic.
package web

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"thunderhug/api/internal/sessions"
)

// Version is reported by the healthcheck route.
const Version = "1.0.0"

type Server struct {
	service *sessions.Service
	verbose bool
}

func New(service *sessions.Service, verbose bool) *Server {
	return &Server{service: service, verbose: verbose}
}

func (s *Server) Handler() http.Handler {
	return s.withMiddleware(http.HandlerFunc(s.handle))
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	parts := splitPath(r.URL.Path)

	route := ""
	format := formatJSON
	switch len(parts) {
	case 0:
	case 1:
		route = parts[0]
	case 2:
		route = parts[0]
		format = parts[1]
	default:
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	if !validFormat(format) {
		writeError(w, http.StatusBadRequest, "format "+format+" is not supported")
		return
	}

	switch route {
	case "", "healthcheck":
		s.handleHealthcheck(w, r, format)
	case "all":
		s.handleAll(w, r, format)
	default:
		s.handleTheme(w, r, route, format)
	}
}

const (
	formatJSON  = "json"
	formatJSONP = "jsonp"
	formatCSV   = "csv"
)

func validFormat(format string) bool {
	return format == formatJSON || format == formatJSONP || format == formatCSV
}

func (s *Server) handleHealthcheck(w http.ResponseWriter, r *http.Request, format string) {
	if format == formatCSV {
		writeCSV(w, [][]string{{"version", "http"}, {Version, "okay"}})
		return
	}
	writeFormatted(w, r, format, http.StatusOK, map[string]any{
		"version": Version,
		"http":    "okay",
	})
}

func (s *Server) handleAll(w http.ResponseWriter, r *http.Request, format string) {
	list, err := s.service.List(r.Context(), "")
	if err != nil {
		status, message := mapError(err)
		writeError(w, status, message)
		return
	}

	if format == formatCSV {
		writeSessionsCSV(w, list)
		return
	}

	writeFormatted(w, r, format, http.StatusOK, map[string]any{
		"meta":     map[string]any{"totalProposals": len(list)},
		"sessions": list,
		"themes":   s.service.Themes(),
	})
}

func (s *Server) handleTheme(w http.ResponseWriter, r *http.Request, slug, format string) {
	list, err := s.service.List(r.Context(), slug)
	if err != nil {
		status, message := mapError(err)
		writeError(w, status, message)
		return
	}

	if format == formatCSV {
		writeSessionsCSV(w, list)
		return
	}

	writeFormatted(w, r, format, http.StatusOK, map[string]any{
		"meta":     map[string]any{"totalProposals": len(list)},
		"sessions": list,
	})
}

func (s *Server) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Published data changes underneath us between polls; never let
		// intermediaries cache a stale view.
		header := w.Header()
		header.Set("Cache-Control", "no-cache, no-store, must-revalidate")
		header.Set("Pragma", "no-cache")
		header.Set("Expires", "0")

		started := time.Now()
		writer := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(writer, r)

		if s.verbose {
			log.Printf(`{"method":"%s","path":"%s","status":%d,"duration_ms":%d}`,
				r.Method,
				r.URL.Path,
				writer.status,
				time.Since(started).Milliseconds(),
			)
		}
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// callbackRe limits jsonp callback names to plain identifier paths.
var callbackRe = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$.]*$`)

func writeFormatted(w http.ResponseWriter, r *http.Request, format string, status int, payload any) {
	if format == formatJSONP {
		callback := r.URL.Query().Get("callback")
		if callback == "" {
			callback = "callback"
		}
		if !callbackRe.MatchString(callback) {
			writeError(w, http.StatusBadRequest, "invalid jsonp callback name")
			return
		}
		body, err := json.Marshal(payload)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "unable to encode response")
			return
		}
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(callback + "(" + string(body) + ");"))
		return
	}

	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError emits the error envelope every route shares.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"errors": []map[string]any{
			{"message": message, "code": status},
		},
	})
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func mapError(err error) (status int, message string) {
	var domainErr *sessions.Error
	if errors.As(err, &domainErr) {
		switch domainErr.Kind {
		case sessions.KindUnknownTheme, sessions.KindNotFound:
			return http.StatusNotFound, domainErr.Message
		case sessions.KindValidation:
			return http.StatusUnprocessableEntity, domainErr.Message
		default:
			return http.StatusInternalServerError, domainErr.Message
		}
	}
	return http.StatusInternalServerError, "server error"
}
