package matcher

import "github.com/grade-assist/backend/internal/models"

// Stats buckets resolved matches into confidence tiers and aggregates
// summary counts. Pure aggregation: recomputed fresh on every call, never
// mutates the results.
func (e *Engine) Stats(results []models.MatchResult) models.MatchStats {
	stats := models.MatchStats{Total: len(results)}
	for _, r := range results {
		if r.MatchedStudent == nil {
			stats.Unmatched++
			continue
		}
		stats.Matched++
		switch {
		case r.Confidence >= e.params.HighCutoff:
			stats.HighConfidence++
		case r.Confidence >= e.params.MediumCutoff:
			stats.MediumConfidence++
		}
	}
	return stats
}
