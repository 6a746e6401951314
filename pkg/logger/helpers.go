package logger

import "time"

// LogSearch logs one search round trip
func LogSearch(provider, query string, results int, duration time.Duration) {
	GetLogger().InfoWithFields("Search completed", map[string]interface{}{
		"provider": provider,
		"query":    query,
		"results":  results,
		"duration": duration,
	})
}

// LogSubject logs the harvest outcome for one subject
func LogSubject(name, tier string, following, followers *int64) {
	fields := map[string]interface{}{
		"subject": name,
		"tier":    tier,
	}
	if following != nil {
		fields["following"] = *following
	}
	if followers != nil {
		fields["followers"] = *followers
	}

	if following == nil && followers == nil {
		GetLogger().WarnWithFields("No counts found", fields)
		return
	}
	GetLogger().InfoWithFields("Counts extracted", fields)
}

// LogBlocked logs a detected block interstitial
func LogBlocked(provider, url string) {
	GetLogger().WarnWithFields("Search engine block detected", map[string]interface{}{
		"provider": provider,
		"url":      url,
	})
}

// LogSyncRow logs one merge attempt against the store
func LogSyncRow(username, recordID string, updated bool, err error) {
	fields := map[string]interface{}{
		"username": username,
	}
	if recordID != "" {
		fields["record_id"] = recordID
	}

	if err != nil {
		GetLogger().WithFields(fields).WithError(err).Error("Row update failed")
		return
	}
	if updated {
		GetLogger().DebugWithFields("Row updated", fields)
	} else {
		GetLogger().DebugWithFields("Row skipped", fields)
	}
}
