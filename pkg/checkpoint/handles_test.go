package checkpoint

import (
	"os"
	"path/filepath"
	"testing"

	"igcounts/pkg/models"
)

func TestHandleManagerFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "handles.csv")
	mgr := NewHandleManager(path)

	rows, err := mgr.Load(testSubjects("Alice", "Bob"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(rows) != 2 || rows[0].Handle != "" {
		t.Fatalf("Fresh rows should be empty: %+v", rows)
	}
}

func TestHandleManagerRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "handles.csv")
	mgr := NewHandleManager(path)
	subjects := testSubjects("Alice", "Bob", "Carol")

	rows, err := mgr.Load(subjects)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	rows[0].Handle = "alice.fc"
	rows[2].Handle = "carol_official"

	if err := mgr.Save(rows); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Reading saved file failed: %v", err)
	}
	if string(data[:15]) != "name,instagram\n" {
		t.Errorf("Missing header, file starts with: %.30s", data)
	}

	reloaded, err := mgr.Load(subjects)
	if err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if reloaded[0].Handle != "alice.fc" {
		t.Errorf("Alice handle lost: %+v", reloaded[0])
	}
	if reloaded[1].Handle != "" {
		t.Errorf("Bob should have no handle: %+v", reloaded[1])
	}
	if reloaded[2].Handle != "carol_official" {
		t.Errorf("Carol handle lost: %+v", reloaded[2])
	}
}

func TestFirstGapIndex(t *testing.T) {
	tests := []struct {
		name string
		rows []models.HandleRow
		want int
	}{
		{"no rows", nil, 0},
		{"all empty", []models.HandleRow{{Name: "a"}, {Name: "b"}}, 0},
		{"all filled", []models.HandleRow{
			{Name: "a", Handle: "x"}, {Name: "b", Handle: "y"},
		}, 2},
		{"first gap wins over later filled rows", []models.HandleRow{
			{Name: "a", Handle: "x"}, {Name: "b"}, {Name: "c", Handle: "z"},
		}, 1},
		{"missing sentinel counts as a gap", []models.HandleRow{
			{Name: "a", Handle: "x"}, {Name: "b", Handle: "na"},
		}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FirstGapIndex(tt.rows); got != tt.want {
				t.Errorf("FirstGapIndex = %d, want %d", got, tt.want)
			}
		})
	}
}
