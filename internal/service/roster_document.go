package service

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gorm.io/datatypes"

	"github.com/noah-isme/evalsuite-api/internal/models"
	"github.com/noah-isme/evalsuite-api/internal/repository"
)

const rosterSchemaURL = "evalsuite://schemas/roster.json"

const rosterSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["criteria", "teams", "juries"],
  "properties": {
    "version": {"type": "integer"},
    "criteria": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "max_marks"],
        "properties": {
          "id": {"type": "string", "maxLength": 64},
          "name": {"type": "string", "minLength": 1, "maxLength": 128},
          "max_marks": {"type": "integer", "minimum": 1},
          "description": {"type": "string"},
          "weight": {"type": "integer", "minimum": 0},
          "position": {"type": "integer", "minimum": 0},
          "is_active": {"type": "boolean"}
        }
      }
    },
    "teams": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "name"],
        "properties": {
          "id": {"type": "integer", "minimum": 1},
          "name": {"type": "string", "minLength": 1, "maxLength": 255},
          "members": {"type": ["array", "null"], "items": {"type": "string"}},
          "project_title": {"type": "string"},
          "category": {"type": "string"},
          "is_active": {"type": "boolean"}
        }
      }
    },
    "juries": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "name", "designation", "department"],
        "properties": {
          "id": {"type": "integer", "minimum": 1},
          "name": {"type": "string", "minLength": 1, "maxLength": 255},
          "designation": {"type": "string"},
          "department": {"type": "string"},
          "email": {"type": "string"},
          "phone": {"type": "string"},
          "expertise": {"type": ["array", "null"], "items": {"type": "string"}},
          "is_active": {"type": "boolean"}
        }
      }
    }
  }
}`

var compiledRosterSchema = mustCompileRosterSchema()

func mustCompileRosterSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(rosterSchemaURL, strings.NewReader(rosterSchema)); err != nil {
		panic(fmt.Sprintf("roster schema: %v", err))
	}
	schema, err := compiler.Compile(rosterSchemaURL)
	if err != nil {
		panic(fmt.Sprintf("roster schema: %v", err))
	}
	return schema
}

// rosterDoc is the import and seed file format. Entries default to active
// when is_active is omitted.
type rosterDoc struct {
	Criteria []criterionDoc `json:"criteria" yaml:"criteria"`
	Teams    []teamDoc      `json:"teams" yaml:"teams"`
	Juries   []juryDoc      `json:"juries" yaml:"juries"`
}

type criterionDoc struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	MaxMarks    int    `json:"max_marks" yaml:"max_marks"`
	Description string `json:"description" yaml:"description"`
	Weight      int    `json:"weight" yaml:"weight"`
	Position    int    `json:"position" yaml:"position"`
	IsActive    *bool  `json:"is_active" yaml:"is_active"`
}

type teamDoc struct {
	ID           uint     `json:"id" yaml:"id"`
	Name         string   `json:"name" yaml:"name"`
	Members      []string `json:"members" yaml:"members"`
	ProjectTitle string   `json:"project_title" yaml:"project_title"`
	Category     string   `json:"category" yaml:"category"`
	IsActive     *bool    `json:"is_active" yaml:"is_active"`
}

type juryDoc struct {
	ID          uint     `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Designation string   `json:"designation" yaml:"designation"`
	Department  string   `json:"department" yaml:"department"`
	Email       string   `json:"email" yaml:"email"`
	Phone       string   `json:"phone" yaml:"phone"`
	Expertise   []string `json:"expertise" yaml:"expertise"`
	IsActive    *bool    `json:"is_active" yaml:"is_active"`
}

// decodeRosterDocument validates a JSON roster against the schema before
// decoding it.
func decodeRosterDocument(payload []byte) (rosterDoc, error) {
	var raw interface{}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return rosterDoc{}, fmt.Errorf("%w: %v", ErrInvalidRoster, err)
	}
	if err := compiledRosterSchema.Validate(raw); err != nil {
		return rosterDoc{}, fmt.Errorf("%w: %v", ErrInvalidRoster, err)
	}

	var doc rosterDoc
	if err := json.Unmarshal(payload, &doc); err != nil {
		return rosterDoc{}, fmt.Errorf("%w: %v", ErrInvalidRoster, err)
	}
	return doc, nil
}

// toRoster converts the file format into models, sanitising free text and
// rejecting duplicate identifiers.
func (s *configService) toRoster(doc rosterDoc) (repository.Roster, error) {
	roster := repository.Roster{
		Criteria: make([]models.Criterion, 0, len(doc.Criteria)),
		Teams:    make([]models.Team, 0, len(doc.Teams)),
		Juries:   make([]models.Jury, 0, len(doc.Juries)),
	}

	for i, entry := range doc.Criteria {
		name := s.clean(entry.Name)
		id := models.CriterionID(strings.TrimSpace(entry.ID))
		if id == "" {
			id = criterionSlug(name)
		}
		if id == "" || name == "" || entry.MaxMarks <= 0 {
			return repository.Roster{}, fmt.Errorf("%w: criterion %d is incomplete", ErrInvalidRoster, i+1)
		}
		if _, err := lookupCriterionConflict(roster.Criteria, id, name); err == nil {
			return repository.Roster{}, fmt.Errorf("%w: duplicate criterion %q", ErrInvalidRoster, id)
		}
		roster.Criteria = append(roster.Criteria, models.Criterion{
			ID:          id,
			Name:        name,
			MaxMarks:    entry.MaxMarks,
			Description: s.clean(entry.Description),
			Weight:      entry.Weight,
			Position:    entry.Position,
			IsActive:    activeOrDefault(entry.IsActive),
		})
	}

	teamIDs := make(map[uint]struct{}, len(doc.Teams))
	for _, entry := range doc.Teams {
		if _, seen := teamIDs[entry.ID]; seen || entry.ID == 0 {
			return repository.Roster{}, fmt.Errorf("%w: duplicate or missing team id %d", ErrInvalidRoster, entry.ID)
		}
		teamIDs[entry.ID] = struct{}{}
		roster.Teams = append(roster.Teams, models.Team{
			ID:           entry.ID,
			Name:         s.clean(entry.Name),
			Members:      datatypes.JSONSlice[string](s.cleanList(entry.Members)),
			ProjectTitle: s.clean(entry.ProjectTitle),
			Category:     s.clean(entry.Category),
			IsActive:     activeOrDefault(entry.IsActive),
		})
	}

	juryIDs := make(map[uint]struct{}, len(doc.Juries))
	for _, entry := range doc.Juries {
		if _, seen := juryIDs[entry.ID]; seen || entry.ID == 0 {
			return repository.Roster{}, fmt.Errorf("%w: duplicate or missing jury id %d", ErrInvalidRoster, entry.ID)
		}
		juryIDs[entry.ID] = struct{}{}
		roster.Juries = append(roster.Juries, models.Jury{
			ID:          entry.ID,
			Name:        s.clean(entry.Name),
			Designation: s.clean(entry.Designation),
			Department:  s.clean(entry.Department),
			Email:       strings.TrimSpace(entry.Email),
			Phone:       strings.TrimSpace(entry.Phone),
			Expertise:   datatypes.JSONSlice[string](s.cleanList(entry.Expertise)),
			IsActive:    activeOrDefault(entry.IsActive),
		})
	}

	return roster, nil
}

func activeOrDefault(value *bool) bool {
	if value == nil {
		return true
	}
	return *value
}
