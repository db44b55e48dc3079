package scoring

import (
	"sort"
	"time"

	"github.com/noah-isme/evalsuite-api/internal/models"
)

// Marksheet is the cross-jury consolidated view of an event.
type Marksheet struct {
	Teams       []MarksheetTeam    `json:"teams"`
	Juries      []MarksheetJury    `json:"juries"`
	Criteria    []models.Criterion `json:"criteria"`
	EventInfo   EventInfo          `json:"event_info"`
	GeneratedAt time.Time          `json:"generated_at"`
}

// MarksheetJury identifies a jury column on the marksheet.
type MarksheetJury struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Designation string `json:"designation"`
	Department  string `json:"department"`
}

// MarksheetTeam is one team row with its per-criterion and per-jury breakdown.
type MarksheetTeam struct {
	TeamID          uint                                    `json:"team_id"`
	Name            string                                  `json:"name"`
	Members         []string                                `json:"members"`
	ProjectTitle    string                                  `json:"project_title"`
	Category        string                                  `json:"category"`
	Criteria        map[models.CriterionID]CriterionAverage `json:"criteria"`
	JuryScores      map[uint]JuryScore                      `json:"jury_scores"`
	TotalScore      int                                     `json:"total_score"`
	AverageScore    float64                                 `json:"average_score"`
	SubmittedJuries int                                     `json:"submitted_juries"`
}

// CriterionAverage holds the individual jury scores for a criterion and their mean.
type CriterionAverage struct {
	Average    float64 `json:"average"`
	Individual []int   `json:"individual"`
}

// JuryScore is one jury's submitted scores for a team.
type JuryScore struct {
	JuryName string                     `json:"jury_name"`
	Scores   map[models.CriterionID]int `json:"scores"`
	Total    int                        `json:"total"`
}

// GenerateConsolidatedMarksheet merges every submitted evaluation into one
// row per team. Unlike the leaderboard, teams with no submitted evaluation
// are kept with zero totals and empty criterion averages.
func GenerateConsolidatedMarksheet(event *models.Event, now time.Time) Marksheet {
	sheet := Marksheet{
		Teams:       []MarksheetTeam{},
		Juries:      []MarksheetJury{},
		Criteria:    []models.Criterion{},
		GeneratedAt: now,
	}
	if event == nil {
		return sheet
	}

	sheet.Criteria = append(sheet.Criteria, event.Criteria...)
	sheet.EventInfo = EventInfoOf(event)

	type row struct {
		team       MarksheetTeam
		individual map[models.CriterionID][]int
	}

	order := make([]uint, 0)
	rows := make(map[uint]*row)

	for _, jury := range event.Juries {
		sheet.Juries = append(sheet.Juries, MarksheetJury{
			ID:          jury.JuryID,
			Name:        jury.Name,
			Designation: jury.Designation,
			Department:  jury.Department,
		})

		for _, team := range jury.TeamEvaluations {
			r, ok := rows[team.TeamID]
			if !ok {
				r = &row{
					team: MarksheetTeam{
						TeamID:       team.TeamID,
						Name:         team.TeamName,
						Members:      append([]string{}, team.TeamMembers...),
						ProjectTitle: team.ProjectTitle,
						Category:     team.Category,
						Criteria:     map[models.CriterionID]CriterionAverage{},
						JuryScores:   map[uint]JuryScore{},
					},
					individual: map[models.CriterionID][]int{},
				}
				rows[team.TeamID] = r
				order = append(order, team.TeamID)
			}

			if !team.IsSubmitted {
				continue
			}

			scores := make(map[models.CriterionID]int, len(event.Criteria))
			for _, criterion := range event.Criteria {
				score := team.Scores[criterion.ID]
				scores[criterion.ID] = score
				r.individual[criterion.ID] = append(r.individual[criterion.ID], score)
			}

			r.team.JuryScores[jury.JuryID] = JuryScore{
				JuryName: jury.Name,
				Scores:   scores,
				Total:    team.TotalScore,
			}
			r.team.TotalScore += team.TotalScore
			r.team.SubmittedJuries++
		}
	}

	for _, teamID := range order {
		r := rows[teamID]
		if r.team.SubmittedJuries > 0 {
			r.team.AverageScore = Round2(float64(r.team.TotalScore) / float64(r.team.SubmittedJuries))
			for id, individual := range r.individual {
				sum := 0
				for _, score := range individual {
					sum += score
				}
				r.team.Criteria[id] = CriterionAverage{
					Average:    Round2(float64(sum) / float64(len(individual))),
					Individual: individual,
				}
			}
		}
		sheet.Teams = append(sheet.Teams, r.team)
	}

	sort.SliceStable(sheet.Teams, func(i, j int) bool {
		return sheet.Teams[i].AverageScore > sheet.Teams[j].AverageScore
	})

	return sheet
}
