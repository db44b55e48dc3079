package scoring

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/noah-isme/evalsuite-api/internal/models"
)

// ScoreInput is a partial mapping of criterion key to proposed score.
type ScoreInput map[string]int

// RawScores is score input as decoded from JSON, before rounding.
type RawScores map[string]float64

// Input rounds every value to a whole score.
func (r RawScores) Input() ScoreInput {
	if r == nil {
		return nil
	}
	input := make(ScoreInput, len(r))
	for key, value := range r {
		input[key] = RoundScore(value)
	}
	return input
}

// RoundScore rounds a decoded score to the nearest integer. Values outside
// the int32 range are pinned to its bounds so Clamp still sees their sign.
func RoundScore(value float64) int {
	if math.IsNaN(value) {
		return 0
	}
	return int(math.Max(math.Min(math.Round(value), math.MaxInt32), math.MinInt32))
}

// UpdateOptions controls the submission side effects of a score update.
type UpdateOptions struct {
	AutoSave bool
	Now      time.Time
}

func (o UpdateOptions) now() time.Time {
	if o.Now.IsZero() {
		return time.Now().UTC()
	}
	return o.Now
}

// SkippedTeam reports a team that a batch update could not apply.
type SkippedTeam struct {
	TeamID uint   `json:"team_id"`
	Reason string `json:"reason"`
}

// BatchResult lists the evaluations a batch update touched and the teams it skipped.
type BatchResult struct {
	Updated []models.TeamEvaluation `json:"updated"`
	Skipped []SkippedTeam           `json:"skipped"`
}

// SkippedIDs returns the ids of the skipped teams.
func (r BatchResult) SkippedIDs() []uint {
	ids := make([]uint, 0, len(r.Skipped))
	for _, skipped := range r.Skipped {
		ids = append(ids, skipped.TeamID)
	}
	return ids
}

// UpdateScores applies a partial score update for one jury/team pair and
// returns a copy of the resulting evaluation.
func UpdateScores(event *models.Event, juryID, teamID uint, input ScoreInput, opts UpdateOptions) (models.TeamEvaluation, error) {
	if event == nil || input == nil {
		return models.TeamEvaluation{}, ErrInvalidInput
	}

	jury := event.FindJury(juryID)
	if jury == nil {
		return models.TeamEvaluation{}, fmt.Errorf("%w: jury %d", ErrJuryNotFound, juryID)
	}

	team := jury.FindTeam(teamID)
	if team == nil {
		return models.TeamEvaluation{}, fmt.Errorf("%w: team %d", ErrTeamNotFound, teamID)
	}

	now := opts.now()
	applyScores(team, event.Criteria, newCriterionResolver(event.Criteria), input, opts.AutoSave, now)
	jury.LastActivity = now

	return cloneEvaluation(*team), nil
}

// UpdateScoresBatch applies updates for several teams of one jury. Teams that
// are missing or carry an unusable payload are skipped without aborting the
// remaining updates.
func UpdateScoresBatch(event *models.Event, juryID uint, scores map[uint]ScoreInput, opts UpdateOptions) (BatchResult, error) {
	if event == nil || scores == nil {
		return BatchResult{}, ErrInvalidInput
	}

	jury := event.FindJury(juryID)
	if jury == nil {
		return BatchResult{}, fmt.Errorf("%w: jury %d", ErrJuryNotFound, juryID)
	}

	teamIDs := make([]uint, 0, len(scores))
	for id := range scores {
		teamIDs = append(teamIDs, id)
	}
	sort.Slice(teamIDs, func(i, j int) bool { return teamIDs[i] < teamIDs[j] })

	now := opts.now()
	resolver := newCriterionResolver(event.Criteria)
	result := BatchResult{
		Updated: make([]models.TeamEvaluation, 0, len(teamIDs)),
		Skipped: make([]SkippedTeam, 0),
	}

	for _, teamID := range teamIDs {
		input := scores[teamID]
		if input == nil {
			result.Skipped = append(result.Skipped, SkippedTeam{TeamID: teamID, Reason: KindInvalidInput})
			continue
		}

		team := jury.FindTeam(teamID)
		if team == nil {
			result.Skipped = append(result.Skipped, SkippedTeam{TeamID: teamID, Reason: KindTeamNotFound})
			continue
		}

		applyScores(team, event.Criteria, resolver, input, opts.AutoSave, now)
		result.Updated = append(result.Updated, cloneEvaluation(*team))
	}

	jury.LastActivity = now
	if opts.AutoSave {
		stamp := now
		event.AutoSave.LastAutoSave = &stamp
	}

	return result, nil
}

func applyScores(team *models.TeamEvaluation, criteria []models.Criterion, resolver *criterionResolver, input ScoreInput, autoSave bool, now time.Time) {
	keys := make([]string, 0, len(input))
	for key := range input {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	if team.Scores == nil {
		team.Scores = make(map[models.CriterionID]int, len(criteria))
	}

	for _, key := range keys {
		criterion, ok := resolver.lookup(key)
		if !ok {
			continue
		}
		team.Scores[criterion.ID] = Clamp(input[key], criterion.MaxMarks)
	}

	team.TotalScore = TotalScore(team.Scores, criteria)
	team.MaxPossible = models.TotalMaxMarks(criteria)

	if !autoSave && team.TotalScore > 0 {
		submittedAt := now
		team.IsSubmitted = true
		team.SubmittedAt = &submittedAt
	}
	team.LastModified = now
}

func cloneEvaluation(team models.TeamEvaluation) models.TeamEvaluation {
	clone := team
	clone.Scores = make(map[models.CriterionID]int, len(team.Scores))
	for id, score := range team.Scores {
		clone.Scores[id] = score
	}
	clone.TeamMembers = append([]string(nil), team.TeamMembers...)
	if team.SubmittedAt != nil {
		submittedAt := *team.SubmittedAt
		clone.SubmittedAt = &submittedAt
	}
	return clone
}
