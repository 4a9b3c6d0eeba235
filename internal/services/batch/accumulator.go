package batch

import (
	"github.com/phambaophuc/image-converter/internal/models"
	"github.com/phambaophuc/image-converter/pkg/utils"
)

// accumulator holds the in-flight summary of one run. Only the
// orchestrator's recorder touches it.
type accumulator struct {
	total   int
	summary *models.BatchSummary
}

func newAccumulator(total int) *accumulator {
	return &accumulator{
		total: total,
		summary: &models.BatchSummary{
			Successes: make([]models.Success, 0, total),
			Failures:  []models.Failure{},
		},
	}
}

func (a *accumulator) record(outcome models.Outcome) {
	if outcome.Succeeded() {
		s := *outcome.Success
		a.summary.Successes = append(a.summary.Successes, s)
		a.summary.TotalOriginalBytes += s.OriginalByteSize
		a.summary.TotalConvertedBytes += s.OutputByteSize
		return
	}
	a.summary.Failures = append(a.summary.Failures, *outcome.Failure)
}

func (a *accumulator) progress() models.Progress {
	return models.Progress{
		Done:                len(a.summary.Successes) + len(a.summary.Failures),
		Total:               a.total,
		Succeeded:           len(a.summary.Successes),
		Failed:              len(a.summary.Failures),
		TotalOriginalBytes:  a.summary.TotalOriginalBytes,
		TotalConvertedBytes: a.summary.TotalConvertedBytes,
	}
}

func (a *accumulator) finish() *models.BatchSummary {
	a.summary.Warnings = detectCollisions(a.summary.Successes)
	return a.summary
}

// detectCollisions groups successes whose output names are equal ignoring
// case. Warnings follow the order of each name's first appearance.
func detectCollisions(successes []models.Success) []models.NameCollisionWarning {
	groups := make(map[string]*models.NameCollisionWarning)
	var order []string

	for _, s := range successes {
		key := utils.CollisionKey(s.OutputName)
		w, ok := groups[key]
		if !ok {
			w = &models.NameCollisionWarning{OutputName: s.OutputName}
			groups[key] = w
			order = append(order, key)
		}
		w.SourceNames = append(w.SourceNames, s.SourceName)
	}

	var warnings []models.NameCollisionWarning
	for _, key := range order {
		if w := groups[key]; len(w.SourceNames) > 1 {
			warnings = append(warnings, *w)
		}
	}
	return warnings
}
