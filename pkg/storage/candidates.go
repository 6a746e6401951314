package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	errs "igcounts/pkg/errors"
	"igcounts/pkg/models"
)

// ReadCandidates loads a stats CSV produced by an external profile
// harvester.
func ReadCandidates(path string) ([]models.Candidate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeStorage, fmt.Sprintf("open candidates file %s", path), err)
	}
	defer f.Close()

	return ParseCandidates(f)
}

// ParseCandidates reads candidate rows from r. The first row must be a
// header naming at least the username and status columns; other columns are
// matched by name, unknown ones are ignored, and missing ones read as empty
// cells.
func ParseCandidates(r io.Reader) ([]models.Candidate, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errs.New(errs.ErrorTypeValidation, "candidates file is empty")
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeParsing, "read candidates header", err)
	}

	index := make(map[string]int, len(header))
	for i, col := range header {
		if i == 0 {
			col = strings.TrimPrefix(col, "\ufeff")
		}
		index[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, col := range []string{"username", "status"} {
		if _, ok := index[col]; !ok {
			return nil, errs.New(errs.ErrorTypeValidation, "candidates file has no "+col+" column")
		}
	}

	cell := func(rec []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var candidates []models.Candidate
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errs.Wrap(errs.ErrorTypeParsing, "read candidates row", err)
		}

		c := models.Candidate{
			Username:       cell(rec, "username"),
			Status:         cell(rec, "status"),
			Followers:      cell(rec, "followers"),
			Following:      cell(rec, "following"),
			MediaCount:     cell(rec, "media_count"),
			EngagementRate: cell(rec, "engagement_rate"),
			AvgLikes:       cell(rec, "avg_likes"),
			AvgComments:    cell(rec, "avg_comments"),
		}
		if c.Username == "" {
			continue
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}
