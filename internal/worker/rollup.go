package worker

import "github.com/postloom/postloom/internal/models"

// Rollup derives the aggregate post status from a full snapshot of its
// delivery rows. It is a pure function of the snapshot: sibling jobs racing
// on the rollup converge on the same value, so a duplicate write is
// harmless.
func Rollup(statuses []string) string {
	if len(statuses) == 0 {
		return models.PostStatusDraft
	}

	published := 0
	failed := 0
	for _, status := range statuses {
		switch status {
		case models.PlatformStatusPublished:
			published++
		case models.PlatformStatusFailed:
			failed++
		}
	}

	if published+failed < len(statuses) {
		// At least one delivery still in flight.
		return models.PostStatusPublishing
	}
	switch {
	case failed == 0:
		return models.PostStatusPublished
	case published == 0:
		return models.PostStatusFailed
	default:
		return models.PostStatusPartiallyPublished
	}
}
