// Package roster loads the reference dataset of visa-sponsoring employers
// that scraped companies are matched against.
package roster

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

// DefaultCompanyColumn is the header of the employer-name column in the
// published sponsor dataset.
const DefaultCompanyColumn = "Employer (Petitioner) Name"

// ReferenceEmployer is one roster row. The dataset is reloaded fresh each
// run and never mutated.
type ReferenceEmployer struct {
	Name string
}

// Load reads the roster CSV and returns employers in file order. Rows with
// a blank name cell are dropped, matching how the dataset is cleaned before
// matching. An unreadable file or a missing company column is an error; the
// caller treats it as fatal since no matching is possible without a roster.
func Load(path, companyColumn string) ([]ReferenceEmployer, error) {
	if companyColumn == "" {
		companyColumn = DefaultCompanyColumn
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("roster: open %s: %w", path, err)
	}
	defer f.Close()

	employers, dropped, err := parse(f, companyColumn)
	if err != nil {
		return nil, fmt.Errorf("roster: parse %s: %w", path, err)
	}
	if dropped > 0 {
		log.Printf("Roster: dropped %d rows with missing employer name", dropped)
	}
	return employers, nil
}

func parse(r io.Reader, companyColumn string) ([]ReferenceEmployer, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // tolerate ragged rows, validated per row below

	header, err := reader.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("read header: %w", err)
	}

	col := -1
	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(name), companyColumn) {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, 0, fmt.Errorf("column %q not found in header %v", companyColumn, header)
	}

	var employers []ReferenceEmployer
	dropped := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("read row: %w", err)
		}
		if col >= len(row) || strings.TrimSpace(row[col]) == "" {
			dropped++
			continue
		}
		employers = append(employers, ReferenceEmployer{Name: strings.TrimSpace(row[col])})
	}
	return employers, dropped, nil
}

// Names returns just the employer names, in roster order.
func Names(employers []ReferenceEmployer) []string {
	names := make([]string, len(employers))
	for i, e := range employers {
		names[i] = e.Name
	}
	return names
}
