package checkpoint

import (
	"fmt"
	"log"

	"igcounts/pkg/models"
)

func ExampleManager() {
	subjects := []models.Subject{
		{Name: "Alice"},
		{Name: "Bob"},
	}

	mgr := NewManager("instagram_counts.csv")

	// Load aligns any previous output to roster order; a fresh run gets
	// empty rows
	rows, err := mgr.Load(subjects)
	if err != nil {
		log.Fatal(err)
	}

	// Resume after the last fully filled row
	start := ResumeIndex(rows)
	fmt.Printf("Resuming at row %d of %d\n", start, len(rows))

	for i := start; i < len(rows); i++ {
		// ... harvest counts for rows[i].Name ...
		following := int64(1200)
		Apply(&rows[i], models.Extraction{Following: &following})

		// Save after every subject so an interrupt loses nothing
		if err := mgr.Save(rows); err != nil {
			log.Fatal(err)
		}
	}
}
