package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"thunderhug/api/internal/store"
)

// Service fetches raw proposals from the remote store and serves their
// sanitized public views, optionally narrowed to one theme.
type Service struct {
	store  *store.Store
	themes *Catalog

	Verbose bool
}

func NewService(st *store.Store, themes *Catalog) *Service {
	return &Service{store: st, themes: themes}
}

// Themes lists every known theme.
func (s *Service) Themes() []Theme {
	return s.themes.Themes()
}

// Theme resolves a slug to its descriptor.
func (s *Service) Theme(slug string) (Theme, error) {
	return s.themes.Theme(slug)
}

// Slugs lists every known theme slug.
func (s *Service) Slugs() []string {
	return s.themes.Slugs()
}

// List returns sanitized sessions in sheet order. A non-empty themeSlug
// narrows the result to records whose theme name matches that slug's theme;
// an unrecognized slug is an unknown-theme error. A reachable store with no
// proposal sheet yet yields an empty list and an unavailable error so
// callers can tell "empty" apart from "down". Records failing validation
// are skipped, never fatal to the batch.
func (s *Service) List(ctx context.Context, themeSlug string) ([]Session, error) {
	themeName := ""
	if themeSlug != "" {
		theme, err := s.themes.Theme(themeSlug)
		if err != nil {
			return nil, domainError(KindUnknownTheme, "unknown theme "+themeSlug)
		}
		themeName = theme.Name
	}

	data, err := s.store.Get(ctx, store.MegazordSheet)
	if errors.Is(err, store.ErrAbsent) {
		s.debugf("no sessions found")
		return []Session{}, domainError(KindUnavailable, "unable to get proposals at this time")
	}
	if err != nil {
		log.Printf("session fetch failed: %v", err)
		return nil, domainError(KindTransport, "unable to contact the database at this time")
	}

	var payload struct {
		Data []RawSession `json:"data"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		log.Printf("session sheet malformed: %v", err)
		return nil, domainError(KindUnavailable, "unable to get proposals at this time")
	}

	s.debugf("sessions found in db, cleaning them up")

	cleaned := make([]Session, 0, len(payload.Data))
	for _, raw := range payload.Data {
		// The raw sheet keys sessions by theme name, not slug.
		if themeName != "" && raw.Theme != themeName {
			continue
		}

		session, err := Sanitize(s.themes, raw)
		if err != nil {
			s.debugf("skipping session %q: %v", raw.Title, err)
			continue
		}
		cleaned = append(cleaned, session)
	}

	return cleaned, nil
}

func (s *Service) debugf(format string, args ...any) {
	if s.Verbose {
		log.Printf(format, args...)
	}
}
