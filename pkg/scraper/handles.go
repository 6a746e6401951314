package scraper

import (
	"context"
	"fmt"

	"igcounts/pkg/block"
	"igcounts/pkg/checkpoint"
	"igcounts/pkg/instagram"
	"igcounts/pkg/logger"
	"igcounts/pkg/models"
	"igcounts/pkg/search"
	"igcounts/pkg/ui"
)

// DiscoverHandles fills the name-to-handle checkpoint for subjects that do
// not have a handle yet. The pass starts at the first empty row, because a
// name that found nothing last run deserves another try, and skips rows
// that were filled on a later run.
func (s *Scraper) DiscoverHandles(ctx context.Context, subjects []models.Subject, checkpointPath string) error {
	mgr := checkpoint.NewHandleManager(checkpointPath)
	rows, err := mgr.Load(subjects)
	if err != nil {
		return err
	}

	start := checkpoint.FirstGapIndex(rows)
	var indices []int
	for i := start; i < len(rows); i++ {
		if !rows[i].Filled() {
			indices = append(indices, i)
		}
	}

	if len(indices) == 0 {
		s.logger.InfoWithFields("Handle checkpoint already complete", map[string]interface{}{
			"checkpoint": mgr.Path(),
		})
		ui.PrintSuccess("All handles discovered, nothing to do")
		return nil
	}

	s.logger.InfoWithFields("Starting handle discovery", map[string]interface{}{
		"subjects":   len(subjects),
		"to_process": len(indices),
		"provider":   s.provider.Name(),
		"checkpoint": mgr.Path(),
	})

	tracker := ui.NewTracker(len(indices))
	for n, i := range indices {
		if err := ctx.Err(); err != nil {
			return err
		}

		subject := subjects[i]
		tracker.PrintSubject(n, subject.Name)

		handle, err := s.findHandle(ctx, subject)
		if err != nil {
			return err
		}

		if handle != "" {
			rows[i].Handle = handle
		}
		if err := mgr.Save(rows); err != nil {
			return err
		}

		if handle == "" {
			s.logger.WarnWithFields("No handle found", map[string]interface{}{
				"subject": subject.Name,
			})
			tracker.PrintMiss()
		} else {
			s.logger.InfoWithFields("Handle discovered", map[string]interface{}{
				"subject": subject.Name,
				"handle":  handle,
			})
			ui.PrintInfo("  Handle", "@"+handle)
		}
		tracker.Record(handle != "")

		if n < len(indices)-1 {
			if err := s.pacer.Pause(ctx); err != nil {
				return err
			}
		}
	}

	tracker.PrintSummary()
	if s.config.Notifications.OnComplete {
		s.notifier.SendSuccess("Handle discovery complete",
			fmt.Sprintf("%d names processed, %d resolved", tracker.Processed, tracker.Filled))
	}
	return nil
}

// findHandle searches for the subject and returns the handle of the first
// profile link among the results. Block handling matches the counts path.
func (s *Scraper) findHandle(ctx context.Context, subject models.Subject) (string, error) {
	query := search.BuildQuery(s.config.Search.QueryTemplate, subject.Name)

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		page, err := s.provider.Search(ctx, query)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			s.logger.WithError(err).WithField("subject", subject.Name).Warn("Search failed, leaving handle empty")
			return "", nil
		}

		if s.guard.Inspect(page.URL, page.Text) == block.StateBlocked {
			logger.LogBlocked(s.provider.Name(), page.URL)
			if err := s.guard.Recover(ctx, s.provider); err != nil {
				return "", err
			}
			continue
		}

		for _, r := range page.Results {
			if handle, ok := instagram.HandleFromURL(r.URL); ok {
				return handle, nil
			}
		}
		return "", nil
	}
}
