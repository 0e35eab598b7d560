package pipeline

import (
	"fmt"
	"html/template"
	"strings"
	"time"
)

// Digest is the single aggregated payload handed to the notification sink.
type Digest struct {
	Subject string
	HTML    string
	Rows    []DigestRow
}

// DigestRow is one matched job in the digest table.
type DigestRow struct {
	Company         string
	MatchedEmployer string
	Title           string
	Score           float64
	Location        string
	URL             string
}

var digestTmpl = template.Must(template.New("digest").Parse(`<html>
  <head></head>
  <body>
    <h2>Entry-Level Opportunities at Visa-Sponsoring Companies</h2>
    <p>We found {{len .Rows}} positions at companies known to sponsor work visas:</p>
    <table border="1" cellpadding="5">
      <tr>
        <th>Company</th>
        <th>Matched Company</th>
        <th>Job Title</th>
        <th>Match Score</th>
        <th>Location</th>
        <th>Link</th>
      </tr>
{{- range .Rows}}
      <tr>
        <td>{{.Company}}</td>
        <td>{{.MatchedEmployer}}</td>
        <td>{{.Title}}</td>
        <td>{{printf "%.2f" .Score}}</td>
        <td>{{.Location}}</td>
        <td><a href="{{.URL}}">View Job</a></td>
      </tr>
{{- end}}
    </table>
    <p><em>Date found: {{.Date}}</em></p>
  </body>
</html>`))

// BuildDigest aggregates matches into one payload. An empty match list
// yields nil: no payload, no dispatch.
func BuildDigest(matches []MatchResult, now time.Time) (*Digest, error) {
	if len(matches) == 0 {
		return nil, nil
	}

	rows := make([]DigestRow, len(matches))
	for i, m := range matches {
		rows[i] = DigestRow{
			Company:         m.SourceCompany,
			MatchedEmployer: m.MatchedEmployer,
			Title:           m.Job.Title,
			Score:           m.Score,
			Location:        m.Job.Location,
			URL:             m.Job.URL,
		}
	}

	var buf strings.Builder
	data := struct {
		Rows []DigestRow
		Date string
	}{Rows: rows, Date: now.Format("2006-01-02 15:04:05")}
	if err := digestTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("pipeline: render digest: %w", err)
	}

	return &Digest{
		Subject: fmt.Sprintf("Job Alert: %d Visa-Sponsoring Companies", len(rows)),
		HTML:    buf.String(),
		Rows:    rows,
	}, nil
}
