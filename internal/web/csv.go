package web

import (
	"encoding/csv"
	"net/http"
	"strings"

	"thunderhug/api/internal/sessions"
)

var csvColumns = []string{
	"timestamp", "title", "theme", "organization", "facilitators",
	"goals", "agenda", "scale", "outcomes",
}

// writeSessionsCSV encodes sessions as CSV, one row per session with the
// facilitator list collapsed into a single newline-joined cell. An empty
// list still produces a parseable document carrying an error column.
func writeSessionsCSV(w http.ResponseWriter, list []sessions.Session) {
	if len(list) == 0 {
		writeCSV(w, [][]string{{"error"}, {"no proposals to display"}})
		return
	}

	records := make([][]string, 0, len(list)+1)
	records = append(records, csvColumns)
	for _, session := range list {
		records = append(records, []string{
			session.Timestamp,
			session.Title,
			session.Theme,
			session.Organization,
			facilitatorsCell(session.Facilitators),
			session.Goals,
			session.Agenda,
			session.Scale,
			session.Outcomes,
		})
	}
	writeCSV(w, records)
}

// facilitatorsCell collapses facilitators to newline-joined "name twitter"
// strings, trimmed so a redacted handle leaves no trailing space.
func facilitatorsCell(facilitators []sessions.Facilitator) string {
	lines := make([]string, 0, len(facilitators))
	for _, f := range facilitators {
		lines = append(lines, strings.TrimSpace(f.Name+" "+f.Twitter))
	}
	return strings.Join(lines, "\n")
}

func writeCSV(w http.ResponseWriter, records [][]string) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	writer := csv.NewWriter(w)
	_ = writer.WriteAll(records)
}
