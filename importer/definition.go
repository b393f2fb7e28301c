package importer

import (
	"fmt"
	"strings"

	"hrtraining/models/training"
	"hrtraining/player"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ProgramDef is the YAML form of a training program.
type ProgramDef struct {
	ID           string      `yaml:"id" validate:"omitempty,max=36"`
	Title        string      `yaml:"title" validate:"required,max=200"`
	Description  string      `yaml:"description"`
	PassingScore int         `yaml:"passing_score" validate:"gte=0,lte=100"`
	MaxAttempts  int         `yaml:"max_attempts" validate:"gte=0"`
	Published    bool        `yaml:"published"`
	Modules      []ModuleDef `yaml:"modules" validate:"required,min=1,dive"`
}

type ModuleDef struct {
	Title         string       `yaml:"title" validate:"required"`
	Description   string       `yaml:"description"`
	SequenceOrder int          `yaml:"sequence_order" validate:"gte=0"`
	IsGateway     bool         `yaml:"is_gateway"`
	Contents      []ContentDef `yaml:"contents" validate:"required,min=1,dive"`
}

type ContentDef struct {
	Title              string        `yaml:"title" validate:"required"`
	Description        string        `yaml:"description"`
	Type               string        `yaml:"type" validate:"required,oneof=video document"`
	VideoURL           string        `yaml:"video_url" validate:"omitempty,url"`
	DocumentURL        string        `yaml:"document_url" validate:"omitempty,url"`
	MinWatchPercentage float64       `yaml:"min_watch_percentage" validate:"gte=0,lte=100"`
	SequenceOrder      int           `yaml:"sequence_order" validate:"gte=0"`
	Quiz               []QuestionDef `yaml:"quiz" validate:"omitempty,dive"`
}

type QuestionDef struct {
	Text        string      `yaml:"text" validate:"required"`
	Type        string      `yaml:"type" validate:"required,oneof=multiple_choice true_false multi_select short_answer"`
	Points      int         `yaml:"points" validate:"gte=1"`
	Topic       string      `yaml:"topic"`
	Explanation string      `yaml:"explanation"`
	Options     []OptionDef `yaml:"options" validate:"omitempty,dive"`
}

type OptionDef struct {
	Text    string `yaml:"text" validate:"required"`
	Correct bool   `yaml:"correct"`
}

var validate = validator.New()

// Validate checks field rules, question shapes and the ordering rules the
// player enforces at runtime.
func (d *ProgramDef) Validate() error {
	if err := validate.Struct(d); err != nil {
		return err
	}
	var problems []string
	for mi, m := range d.Modules {
		for ci, c := range m.Contents {
			if c.Type == training.ContentVideo && c.VideoURL == "" {
				problems = append(problems, fmt.Sprintf("modules[%d].contents[%d]: video needs video_url", mi, ci))
			}
			for qi, q := range c.Quiz {
				if msg := checkQuestion(q); msg != "" {
					problems = append(problems, fmt.Sprintf("modules[%d].contents[%d].quiz[%d]: %s", mi, ci, qi, msg))
				}
			}
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid program definition: %s", strings.Join(problems, "; "))
	}
	return player.NewContentGraph(d.playerProgram()).Validate()
}

func checkQuestion(q QuestionDef) string {
	correct := 0
	for _, o := range q.Options {
		if o.Correct {
			correct++
		}
	}
	switch q.Type {
	case training.QuestionMultipleChoice:
		if len(q.Options) < 2 || correct != 1 {
			return "multiple_choice needs at least two options and exactly one correct"
		}
	case training.QuestionTrueFalse:
		if len(q.Options) != 2 || correct != 1 {
			return "true_false needs two options and exactly one correct"
		}
	case training.QuestionMultiSelect:
		if len(q.Options) < 2 || correct == 0 {
			return "multi_select needs at least two options and one correct"
		}
	case training.QuestionShortAnswer:
		if len(q.Options) > 0 {
			return "short_answer takes no options"
		}
	}
	return ""
}

// playerProgram mirrors the definition with synthetic ids so the content graph
// can check sequence orders before anything is written.
func (d *ProgramDef) playerProgram() player.Program {
	p := player.Program{ID: d.ID, Title: d.Title, PassingScore: d.PassingScore, MaxAttempts: d.MaxAttempts}
	if p.ID == "" {
		p.ID = d.Title
	}
	for mi, m := range d.Modules {
		pm := player.Module{ID: fmt.Sprintf("module-%d", mi), Title: m.Title, SequenceOrder: m.SequenceOrder}
		for ci, c := range m.Contents {
			pm.Contents = append(pm.Contents, player.Content{
				ID:            fmt.Sprintf("content-%d-%d", mi, ci),
				Title:         c.Title,
				SequenceOrder: c.SequenceOrder,
				ContentType:   c.Type,
				HasQuiz:       len(c.Quiz) > 0,
			})
		}
		p.Modules = append(p.Modules, pm)
	}
	return p
}

// Model converts the definition into rows ready for a nested gorm create.
func (d *ProgramDef) Model() training.Program {
	status := training.ProgramDraft
	if d.Published {
		status = training.ProgramActive
	}
	p := training.Program{
		Base:         training.Base{ID: d.ID},
		Title:        d.Title,
		Description:  d.Description,
		Status:       status,
		PassingScore: d.PassingScore,
		MaxAttempts:  d.MaxAttempts,
		IsPublished:  d.Published,
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	for _, m := range d.Modules {
		mod := training.Module{
			Title:         m.Title,
			Description:   m.Description,
			SequenceOrder: m.SequenceOrder,
			IsGateway:     m.IsGateway,
		}
		for _, c := range m.Contents {
			content := training.Content{
				ProgramID:          p.ID,
				Title:              c.Title,
				Description:        c.Description,
				ContentType:        c.Type,
				VideoURL:           c.VideoURL,
				DocumentURL:        c.DocumentURL,
				MinWatchPercentage: c.MinWatchPercentage,
				SequenceOrder:      c.SequenceOrder,
				HasQuiz:            len(c.Quiz) > 0,
			}
			for qi, q := range c.Quiz {
				question := training.QuizQuestion{
					QuestionText: q.Text,
					QuestionType: q.Type,
					Points:       q.Points,
					TopicID:      q.Topic,
					Explanation:  q.Explanation,
					OrderIndex:   qi + 1,
				}
				for oi, o := range q.Options {
					question.Options = append(question.Options, training.QuizOption{
						OptionText: o.Text,
						IsCorrect:  o.Correct,
						OrderIndex: oi + 1,
					})
				}
				content.Questions = append(content.Questions, question)
			}
			mod.Contents = append(mod.Contents, content)
		}
		p.Modules = append(p.Modules, mod)
	}
	return p
}
