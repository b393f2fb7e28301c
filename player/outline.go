package player

// OutlineItem is one content item with its derived lock state.
type OutlineItem struct {
	Position
	ContentID   string          `json:"content_id"`
	Title       string          `json:"title"`
	ContentType string          `json:"content_type"`
	HasQuiz     bool            `json:"has_quiz"`
	State       ItemState       `json:"state"`
	Progress    ContentProgress `json:"progress"`
}

// OutlineModule groups items of one module with its completion percentage.
type OutlineModule struct {
	ModuleID  string        `json:"module_id"`
	Title     string        `json:"title"`
	IsGateway bool          `json:"is_gateway"`
	Completed int           `json:"completed_contents"`
	Total     int           `json:"total_contents"`
	Progress  float64       `json:"progress"`
	Items     []OutlineItem `json:"items"`
}

// Outline is a snapshot of the whole program for the learner.
type Outline struct {
	EnrollmentID    string          `json:"enrollment_id"`
	ProgramID       string          `json:"program_id"`
	Title           string          `json:"title"`
	Cursor          Position        `json:"cursor"`
	OverallProgress float64         `json:"overall_progress"`
	Completed       bool            `json:"completed"`
	FinalScore      *float64        `json:"final_score,omitempty"`
	Modules         []OutlineModule `json:"modules"`
}

// Outline computes the state of every content item. A configuration error in
// the graph is returned rather than shown as unlocked content.
func (s *Session) Outline() (Outline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Outline{}, ErrSessionClosed
	}

	out := Outline{
		EnrollmentID:    s.enrollment.ID,
		ProgramID:       s.program.ID,
		Title:           s.program.Title,
		Cursor:          s.nav.Cursor(),
		OverallProgress: s.overall,
		Completed:       s.completed,
		Modules:         make([]OutlineModule, 0, s.graph.ModuleCount()),
	}
	if s.completed {
		final := s.finalScore
		out.FinalScore = &final
	}

	for m := 0; m < s.graph.ModuleCount(); m++ {
		mod, _ := s.graph.ModuleAt(m)
		om := OutlineModule{
			ModuleID:  mod.ID,
			Title:     mod.Title,
			IsGateway: mod.IsGateway,
			Total:     len(mod.Contents),
			Items:     make([]OutlineItem, 0, len(mod.Contents)),
		}
		for c, content := range mod.Contents {
			pos := Position{Module: m, Content: c}
			state, err := s.nav.State(pos)
			if err != nil {
				return Outline{}, err
			}
			item := OutlineItem{
				Position:    pos,
				ContentID:   content.ID,
				Title:       content.Title,
				ContentType: content.ContentType,
				HasQuiz:     content.HasQuiz,
				State:       state,
				Progress:    ContentProgress{EnrollmentID: s.enrollment.ID, ContentID: content.ID, Status: StatusNotStarted},
			}
			if p, ok := s.progress[content.ID]; ok {
				item.Progress = *p
			}
			if state == ItemCompleted {
				om.Completed++
			}
			om.Items = append(om.Items, item)
		}
		if om.Total > 0 {
			om.Progress = float64(om.Completed) / float64(om.Total) * 100
		}
		out.Modules = append(out.Modules, om)
	}
	return out, nil
}
