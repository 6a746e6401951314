package checkpoint

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"igcounts/pkg/counts"
	"igcounts/pkg/logger"
	"igcounts/pkg/models"
)

var countsHeader = []string{"name", "following", "followers"}

// Manager owns one counts CSV
type Manager struct {
	path string
	log  logger.Logger
}

// NewManager creates a checkpoint manager for the counts file at path
func NewManager(path string) *Manager {
	return &Manager{
		path: path,
		log:  logger.GetLogger(),
	}
}

// Path returns the file the manager writes
func (m *Manager) Path() string {
	return m.path
}

// Load reads existing rows and aligns them to roster order. The roster is
// the authority for order and membership: names not on it are dropped,
// names without a row get an empty one. A missing file yields all empty
// rows, which is how a fresh run starts.
func (m *Manager) Load(subjects []models.Subject) ([]models.CountsRow, error) {
	rows := make([]models.CountsRow, len(subjects))
	for i, s := range subjects {
		rows[i] = models.CountsRow{Name: s.Name}
	}

	records, err := readRows(m.path)
	if err != nil {
		return nil, err
	}
	if records == nil {
		return rows, nil
	}

	byName := make(map[string]models.CountsRow, len(records))
	for _, rec := range records {
		row := models.CountsRow{Name: strings.TrimSpace(rec[0])}
		if len(rec) > 1 {
			row.Following = strings.TrimSpace(rec[1])
		}
		if len(rec) > 2 {
			row.Followers = strings.TrimSpace(rec[2])
		}
		if row.Name == "" {
			continue
		}
		if _, ok := byName[row.Name]; !ok {
			byName[row.Name] = row
		}
	}

	filled := 0
	for i := range rows {
		if existing, ok := byName[rows[i].Name]; ok {
			rows[i].Following = existing.Following
			rows[i].Followers = existing.Followers
			if rows[i].Filled() {
				filled++
			}
		}
	}

	m.log.InfoWithFields("Checkpoint loaded", map[string]interface{}{
		"path":     m.path,
		"subjects": len(rows),
		"filled":   filled,
	})
	return rows, nil
}

// Save rewrites the whole counts file atomically. It runs after every
// subject, so a killed process loses at most the subject in flight.
func (m *Manager) Save(rows []models.CountsRow) error {
	records := make([][]string, 0, len(rows)+1)
	records = append(records, countsHeader)
	for _, row := range rows {
		records = append(records, []string{row.Name, row.Following, row.Followers})
	}

	if err := writeAtomic(m.path, records); err != nil {
		return err
	}

	m.log.DebugWithFields("Checkpoint saved", map[string]interface{}{
		"path": m.path,
		"rows": len(rows),
	})
	return nil
}

// Apply merges one extraction into a row. Extracted values overwrite;
// a side the extraction left nil keeps whatever the cell already held.
func Apply(row *models.CountsRow, e models.Extraction) {
	if e.Following != nil {
		row.Following = counts.Format(*e.Following)
	}
	if e.Followers != nil {
		row.Followers = counts.Format(*e.Followers)
	}
}

// ResumeIndex returns the position after the last fully filled row in a
// forward scan. That is where the previous run got to, since rows are
// written in roster order.
func ResumeIndex[T interface{ Filled() bool }](rows []T) int {
	resume := 0
	for i, row := range rows {
		if row.Filled() {
			resume = i + 1
		}
	}
	return resume
}

// GapIndices returns the indices of rows with a missing cell, the work
// list for a fill run
func GapIndices(rows []models.CountsRow) []int {
	var gaps []int
	for i, row := range rows {
		if row.HasGap() {
			gaps = append(gaps, i)
		}
	}
	return gaps
}

// readRows returns the data rows of the CSV at path, nil when the file
// does not exist yet. A header row is recognized by its first cell.
func readRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open checkpoint file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	var rows [][]string
	first := true
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read checkpoint row: %w", err)
		}
		if len(rec) == 0 {
			continue
		}
		if first {
			first = false
			if strings.EqualFold(strings.TrimSpace(rec[0]), "name") {
				continue
			}
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

// writeAtomic writes records through a temporary file and renames it into
// place, so readers never observe a half-written checkpoint
func writeAtomic(path string, records [][]string) error {
	tempPath := path + ".tmp"
	f, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary checkpoint file: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		f.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to write checkpoint rows: %w", err)
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync checkpoint file: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close checkpoint file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace checkpoint file: %w", err)
	}

	return nil
}
