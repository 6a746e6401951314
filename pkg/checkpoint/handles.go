package checkpoint

import (
	"strings"

	"igcounts/pkg/logger"
	"igcounts/pkg/models"
)

var handlesHeader = []string{"name", "instagram"}

// HandleManager owns one handle-discovery CSV. Same contract as Manager,
// different row shape: one handle cell instead of two count cells.
type HandleManager struct {
	path string
	log  logger.Logger
}

// NewHandleManager creates a checkpoint manager for the handles file at path
func NewHandleManager(path string) *HandleManager {
	return &HandleManager{
		path: path,
		log:  logger.GetLogger(),
	}
}

// Path returns the file the manager writes
func (m *HandleManager) Path() string {
	return m.path
}

// Load reads existing rows and aligns them to roster order
func (m *HandleManager) Load(subjects []models.Subject) ([]models.HandleRow, error) {
	rows := make([]models.HandleRow, len(subjects))
	for i, s := range subjects {
		rows[i] = models.HandleRow{Name: s.Name}
	}

	records, err := readRows(m.path)
	if err != nil {
		return nil, err
	}
	if records == nil {
		return rows, nil
	}

	byName := make(map[string]string, len(records))
	for _, rec := range records {
		name := strings.TrimSpace(rec[0])
		if name == "" {
			continue
		}
		handle := ""
		if len(rec) > 1 {
			handle = strings.TrimSpace(rec[1])
		}
		if _, ok := byName[name]; !ok {
			byName[name] = handle
		}
	}

	filled := 0
	for i := range rows {
		if handle, ok := byName[rows[i].Name]; ok {
			rows[i].Handle = handle
			if rows[i].Filled() {
				filled++
			}
		}
	}

	m.log.InfoWithFields("Handle checkpoint loaded", map[string]interface{}{
		"path":     m.path,
		"subjects": len(rows),
		"filled":   filled,
	})
	return rows, nil
}

// FirstGapIndex returns the first row without a handle, or len(rows) when
// every row has one. Handle discovery resumes here rather than after the
// deepest filled row: a name the engine could not resolve stays empty, and
// the next run should try it again.
func FirstGapIndex(rows []models.HandleRow) int {
	for i, row := range rows {
		if !row.Filled() {
			return i
		}
	}
	return len(rows)
}

// Save rewrites the whole handles file atomically
func (m *HandleManager) Save(rows []models.HandleRow) error {
	records := make([][]string, 0, len(rows)+1)
	records = append(records, handlesHeader)
	for _, row := range rows {
		records = append(records, []string{row.Name, row.Handle})
	}

	if err := writeAtomic(m.path, records); err != nil {
		return err
	}

	m.log.DebugWithFields("Handle checkpoint saved", map[string]interface{}{
		"path": m.path,
		"rows": len(rows),
	})
	return nil
}
