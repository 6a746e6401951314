// Package roster loads the subject list that drives a harvest run.
package roster

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	errs "igcounts/pkg/errors"
	"igcounts/pkg/models"
)

// Header spellings that mark the first row as a header, matched
// case-insensitively
var headerCells = map[string]bool{
	"name":        true,
	"player":      true,
	"player name": true,
}

// Load reads the roster CSV at path and returns the subjects in file order
func Load(path string) ([]models.Subject, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeStorage, fmt.Sprintf("open roster %s", path), err)
	}
	defer f.Close()

	subjects, err := Parse(f)
	if err != nil {
		return nil, err
	}
	if len(subjects) == 0 {
		return nil, errs.New(errs.ErrorTypeValidation, fmt.Sprintf("roster %s contains no names", path))
	}
	return subjects, nil
}

// Parse reads roster rows from r. Only the first cell of each row counts;
// blank lines are skipped and repeated names keep their first occurrence.
func Parse(r io.Reader) ([]models.Subject, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	var subjects []models.Subject
	seen := make(map[string]bool)
	first := true

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errs.Wrap(errs.ErrorTypeParsing, "read roster row", err)
		}
		if len(record) == 0 {
			continue
		}

		name := strings.TrimSpace(record[0])
		if first {
			// Spreadsheet exports often lead with a byte order mark
			name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		}
		if name == "" {
			continue
		}
		if first {
			first = false
			if headerCells[strings.ToLower(name)] {
				continue
			}
		}

		if seen[name] {
			continue
		}
		seen[name] = true
		subjects = append(subjects, models.Subject{Name: name})
	}

	return subjects, nil
}
