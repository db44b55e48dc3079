package scoring

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/noah-isme/evalsuite-api/internal/models"
)

// criterionResolver maps client supplied keys onto criteria. Keys match the
// stable id first and fall back to the case-folded display name so older
// clients that send "Technical Quality" keep working.
type criterionResolver struct {
	byID   map[models.CriterionID]models.Criterion
	byName map[string]models.Criterion
	caser  cases.Caser
}

func newCriterionResolver(criteria []models.Criterion) *criterionResolver {
	r := &criterionResolver{
		byID:   make(map[models.CriterionID]models.Criterion, len(criteria)),
		byName: make(map[string]models.Criterion, len(criteria)),
		caser:  cases.Fold(),
	}
	for _, criterion := range criteria {
		r.byID[criterion.ID] = criterion
		r.byName[r.fold(criterion.Name)] = criterion
	}
	return r
}

func (r *criterionResolver) fold(value string) string {
	return r.caser.String(strings.TrimSpace(value))
}

func (r *criterionResolver) lookup(key string) (models.Criterion, bool) {
	if criterion, ok := r.byID[models.CriterionID(strings.TrimSpace(key))]; ok {
		return criterion, true
	}
	criterion, ok := r.byName[r.fold(key)]
	return criterion, ok
}

// LookupCriterion resolves a criterion by id or display name.
func LookupCriterion(criteria []models.Criterion, key string) (models.Criterion, error) {
	criterion, ok := newCriterionResolver(criteria).lookup(key)
	if !ok {
		return models.Criterion{}, fmt.Errorf("%w: %q", ErrCriterionNotFound, key)
	}
	return criterion, nil
}

// TotalScore sums the scores of every defined criterion. Keys that no longer
// name a criterion are ignored.
func TotalScore(scores map[models.CriterionID]int, criteria []models.Criterion) int {
	total := 0
	for _, criterion := range criteria {
		total += scores[criterion.ID]
	}
	return total
}

// Clamp bounds a proposed score to [0, limit].
func Clamp(value, limit int) int {
	if value < 0 {
		return 0
	}
	if value > limit {
		return limit
	}
	return value
}
