// Package sessions turns raw proposal submissions into privacy-safe public
// records and serves them filtered by theme.
package sessions

import (
	"regexp"
	"strings"
	"time"
)

// RawSession is a proposal record as the ingestion job writes it to the
// megazord sheet. The facilitators and privacy fields are free text.
type RawSession struct {
	Title        string `json:"title"`
	Theme        string `json:"theme"`
	Organization string `json:"organization"`
	Goals        string `json:"goals"`
	Agenda       string `json:"agenda"`
	Scale        string `json:"scale"`
	Outcomes     string `json:"outcomes"`
	Timestamp    string `json:"timestamp"`
	FirstName    string `json:"firstname"`
	Surname      string `json:"surname"`
	Twitter      string `json:"twitter"`
	Facilitators string `json:"facilitators"`
	Privacy      string `json:"privacy"`
}

// Facilitator is the public view of one session facilitator.
type Facilitator struct {
	Name    string `json:"name"`
	Twitter string `json:"twitter"`
}

// Session is the sanitized public projection of a RawSession.
type Session struct {
	Title        string        `json:"title"`
	Theme        string        `json:"theme"`
	ThemeSlug    string        `json:"themeSlug"`
	Facilitators []Facilitator `json:"facilitators"`
	Organization string        `json:"organization"`
	Goals        string        `json:"goals"`
	Agenda       string        `json:"agenda"`
	Scale        string        `json:"scale"`
	Outcomes     string        `json:"outcomes"`
	Timestamp    string        `json:"timestamp"`
}

// twitterRe matches a handle not glued to a preceding word, which keeps it
// from firing on the @ inside e-mail addresses.
var twitterRe = regexp.MustCompile(`(?i)\B@[a-z0-9_-]+`)

// emailRe matches embedded e-mail addresses for masking.
var emailRe = regexp.MustCompile(`[^@\s]*@[^@\s]*\.[^@\s]*`)

// Timestamp layouts the ingestion job is known to emit, tried in order.
var timestampLayouts = []string{
	time.RFC3339,
	"1/2/2006 15:04:05",
	"2006-01-02 15:04:05",
}

// StripEmails masks any e-mail address embedded in s.
func StripEmails(s string) string {
	return emailRe.ReplaceAllString(s, "****@*******.***")
}

// Sanitize produces the public view of one raw submission. Theme slugs
// resolve through the catalog; privacy flags in the free-text privacy field
// redact twitter handles and the organization. The returned record is
// recomputed per request and never persisted.
func Sanitize(themes *Catalog, raw RawSession) (Session, error) {
	if err := validate(raw); err != nil {
		return Session{}, err
	}

	slug, _ := themes.SlugForName(raw.Theme)

	return Session{
		Title:        raw.Title,
		Theme:        raw.Theme,
		ThemeSlug:    slug,
		Facilitators: facilitators(raw),
		Organization: organization(raw.Organization, raw.Privacy),
		Goals:        raw.Goals,
		Agenda:       raw.Agenda,
		Scale:        raw.Scale,
		Outcomes:     raw.Outcomes,
		Timestamp:    normalizeTimestamp(raw.Timestamp),
	}, nil
}

func validate(raw RawSession) error {
	required := []struct{ field, value string }{
		{"title", raw.Title},
		{"firstname", raw.FirstName},
		{"surname", raw.Surname},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return &Error{Kind: KindValidation, Message: "missing required field", Field: r.field}
		}
	}
	return nil
}

// facilitators assembles the public facilitator list: the submitter first,
// then one entry per non-empty line of the free-text facilitators block.
func facilitators(raw RawSession) []Facilitator {
	list := []Facilitator{{
		Name:    StripEmails(raw.FirstName + " " + raw.Surname),
		Twitter: redactTwitter(raw.Twitter, raw.Privacy),
	}}

	for _, line := range strings.Split(raw.Facilitators, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		twitter := ""
		if handle := twitterRe.FindString(line); handle != "" {
			twitter = redactTwitter(handle, raw.Privacy)
		}

		name := strings.TrimSpace(twitterRe.ReplaceAllString(line, ""))
		if name == "" {
			// A line that was only a handle leaves nobody to display.
			continue
		}

		list = append(list, Facilitator{
			Name:    StripEmails(name),
			Twitter: twitter,
		})
	}

	return list
}

// redactTwitter clears a handle when the privacy flags ask for it.
func redactTwitter(handle, privacy string) string {
	if strings.Contains(strings.ToLower(privacy), "twitter") {
		return ""
	}
	return handle
}

// organization clears the affiliation when the privacy flags ask for it.
func organization(org, privacy string) string {
	if strings.Contains(strings.ToLower(privacy), "organization") {
		return ""
	}
	return org
}

// normalizeTimestamp rewrites a known timestamp layout as RFC 3339 UTC.
// Unrecognized input passes through untouched.
func normalizeTimestamp(ts string) string {
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, ts); err == nil {
			return parsed.UTC().Format(time.RFC3339)
		}
	}
	return ts
}
