package controllers

import (
	"context"
	"errors"
	"log"
	"time"

	"hrtraining/analytics"
	"hrtraining/middleware"
	"hrtraining/player"
	"hrtraining/repository"
	validators "hrtraining/validators/training"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Enroller creates or returns a learner's enrollment in a program.
type Enroller interface {
	Enroll(ctx context.Context, programID, userID string) (player.Enrollment, bool, error)
}

// PlayerController exposes player sessions over HTTP. It only forwards calls
// to the sessions and renders their state.
type PlayerController struct {
	registry *player.Registry
	enroller Enroller
	db       *gorm.DB
}

func NewPlayerController(registry *player.Registry, enroller Enroller, db *gorm.DB) *PlayerController {
	return &PlayerController{registry: registry, enroller: enroller, db: db}
}

// session returns the open session of the request's enrollment, opening it on
// first use.
func (pc *PlayerController) session(c *fiber.Ctx) (*player.Session, error) {
	id := c.Locals("enrollmentID").(string)
	if s, ok := pc.registry.Get(id); ok {
		return s, nil
	}
	return pc.registry.Open(c.UserContext(), id)
}

// withSession runs fn on the enrollment's session. When a concurrent close
// retired the session fn ran on, it runs once more on a freshly opened one.
func (pc *PlayerController) withSession(c *fiber.Ctx, fn func(s *player.Session) error) error {
	s, err := pc.session(c)
	if err != nil {
		return err
	}
	err = fn(s)
	if !errors.Is(err, player.ErrSessionClosed) {
		return err
	}
	s, err = pc.registry.Open(c.UserContext(), c.Locals("enrollmentID").(string))
	if err != nil {
		return err
	}
	return fn(s)
}

// respondError maps engine errors to HTTP statuses. Usage errors are warnings
// the learner can act on; transient errors keep the in-memory state.
func respondError(c *fiber.Ctx, err error, data interface{}) error {
	var locked *player.LockedContentError
	switch {
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, player.ErrContentNotFound):
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, err.Error(), data)
	case errors.As(err, &locked):
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Content is locked! Complete the previous item first.", locked)
	}

	switch player.Classify(err) {
	case player.KindUsage:
		return middleware.JsonResponse(c, fiber.StatusConflict, false, err.Error(), data)
	case player.KindNotReady:
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Program has no content yet!", data)
	case player.KindTransient:
		log.Printf("[PLAYER] %s %s: %v", c.Method(), c.Path(), err)
		return middleware.JsonResponse(c, fiber.StatusServiceUnavailable, false, "Progress could not be saved, please retry!", data)
	case player.KindConfiguration:
		log.Printf("[PLAYER] configuration error on %s: %v", c.Path(), err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, err.Error(), data)
	default:
		log.Printf("[PLAYER] %s %s: %v", c.Method(), c.Path(), err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Something went wrong!", nil)
	}
}

// Enroll creates the learner's enrollment
func (pc *PlayerController) Enroll(c *fiber.Ctx) error {
	programID := c.Locals("programID").(string)
	reqData, ok := c.Locals("validatedEnrollment").(*validators.EnrollRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	enrollment, created, err := pc.enroller.Enroll(c.UserContext(), programID, reqData.UserID)
	if err != nil {
		return respondError(c, err, nil)
	}
	if !created {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Already enrolled!", enrollment)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Enrolled successfully!", enrollment)
}

// Activity reports today's and this week's events of a program
func (pc *PlayerController) Activity(c *fiber.Ctx) error {
	programID := c.Locals("programID").(string)
	activity, err := analytics.Summarize(c.UserContext(), pc.db, programID, time.Now().UTC())
	if err != nil {
		return respondError(c, err, nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Program activity fetched successfully!", activity)
}

// Open opens the player and returns the outline with the resume cursor
func (pc *PlayerController) Open(c *fiber.Ctx) error {
	var outline player.Outline
	open := func() error {
		s, err := pc.registry.Open(c.UserContext(), c.Locals("enrollmentID").(string))
		if err != nil {
			return err
		}
		outline, err = s.Outline()
		return err
	}
	err := open()
	if errors.Is(err, player.ErrSessionClosed) {
		err = open()
	}
	if err != nil {
		return respondError(c, err, nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Player opened successfully!", outline)
}

func (pc *PlayerController) Outline(c *fiber.Ctx) error {
	var outline player.Outline
	err := pc.withSession(c, func(s *player.Session) (err error) {
		outline, err = s.Outline()
		return err
	})
	if err != nil {
		return respondError(c, err, nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Outline fetched successfully!", outline)
}

// Close flushes pending progress and releases the session
func (pc *PlayerController) Close(c *fiber.Ctx) error {
	if err := pc.registry.Close(c.UserContext(), c.Locals("enrollmentID").(string)); err != nil {
		return respondError(c, err, nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Player closed successfully!", nil)
}

// learnerOption and learnerQuestion are the quiz as shown to the learner,
// without correct answers or explanations.
type learnerOption struct {
	ID         string `json:"id"`
	OptionText string `json:"option_text"`
}

type learnerQuestion struct {
	ID           string          `json:"id"`
	QuestionText string          `json:"question_text"`
	QuestionType string          `json:"question_type"`
	Points       int             `json:"points"`
	Options      []learnerOption `json:"options"`
}

type quizStatusResponse struct {
	player.QuizStatus
	Questions []learnerQuestion `json:"questions,omitempty"`
}

func learnerView(st player.QuizStatus) quizStatusResponse {
	resp := quizStatusResponse{QuizStatus: st}
	for _, q := range st.Questions {
		lq := learnerQuestion{
			ID:           q.ID,
			QuestionText: q.QuestionText,
			QuestionType: q.QuestionType,
			Points:       q.Points,
			Options:      make([]learnerOption, 0, len(q.Options)),
		}
		for _, o := range q.Options {
			lq.Options = append(lq.Options, learnerOption{ID: o.ID, OptionText: o.OptionText})
		}
		resp.Questions = append(resp.Questions, lq)
	}
	return resp
}

type navigationResponse struct {
	player.NavOutcome
	Completed  bool    `json:"completed"`
	FinalScore float64 `json:"final_score,omitempty"`
}

func (pc *PlayerController) Next(c *fiber.Ctx) error {
	var resp navigationResponse
	err := pc.withSession(c, func(s *player.Session) error {
		out, err := s.Next(c.UserContext())
		resp = navigationResponse{NavOutcome: out, Completed: s.IsCompleted()}
		if resp.Completed {
			resp.FinalScore = s.FinalScore()
		}
		return err
	})
	if err != nil {
		return respondError(c, err, resp.NavOutcome)
	}
	if resp.Completed {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Program completed!", resp)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Moved to next item!", resp)
}

func (pc *PlayerController) Previous(c *fiber.Ctx) error {
	var resp navigationResponse
	err := pc.withSession(c, func(s *player.Session) error {
		out, err := s.Previous()
		resp = navigationResponse{NavOutcome: out, Completed: s.IsCompleted()}
		return err
	})
	if err != nil {
		return respondError(c, err, resp.NavOutcome)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Moved to previous item!", resp)
}

func (pc *PlayerController) Jump(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedJump").(*validators.JumpRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	var resp navigationResponse
	err := pc.withSession(c, func(s *player.Session) error {
		out, err := s.JumpTo(reqData.ModuleIndex, reqData.ContentIndex)
		resp = navigationResponse{NavOutcome: out, Completed: s.IsCompleted()}
		return err
	})
	if err != nil {
		return respondError(c, err, resp.NavOutcome)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Moved to item!", resp)
}

// VideoProgress records one player time update
func (pc *PlayerController) VideoProgress(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedVideoProgress").(*validators.VideoProgressRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	var upd player.VideoUpdate
	err := pc.withSession(c, func(s *player.Session) (err error) {
		upd, err = s.RecordVideoSample(c.UserContext(), c.Locals("contentID").(string), reqData.CurrentTime, reqData.Duration)
		return err
	})
	if err != nil {
		return respondError(c, err, upd)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress recorded!", upd)
}

func (pc *PlayerController) CompleteDocument(c *fiber.Ctx) error {
	var data fiber.Map
	var completed bool
	err := pc.withSession(c, func(s *player.Session) (err error) {
		completed, err = s.CompleteDocument(c.UserContext(), c.Locals("contentID").(string))
		data = fiber.Map{"completed": completed, "overall_progress": s.OverallProgress()}
		return err
	})
	if err != nil {
		return respondError(c, err, data)
	}
	if !completed {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Pass the quiz to complete this document!", data)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Document completed!", data)
}

func (pc *PlayerController) StartQuiz(c *fiber.Ctx) error {
	var status player.QuizStatus
	err := pc.withSession(c, func(s *player.Session) (err error) {
		status, err = s.StartQuiz(c.UserContext(), c.Locals("contentID").(string))
		return err
	})
	if err != nil {
		return respondError(c, err, nil)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Quiz started!", learnerView(status))
}

func (pc *PlayerController) SubmitAnswer(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedAnswer").(*validators.AnswerRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	contentID := c.Locals("contentID").(string)
	var (
		ans    player.QuizAnswer
		status player.QuizStatus
	)
	err := pc.withSession(c, func(s *player.Session) (err error) {
		ans, err = s.SubmitAnswer(c.UserContext(), contentID, reqData.QuestionID, player.AnswerInput{
			SelectedOptions: reqData.SelectedOptions,
			TextAnswer:      reqData.TextAnswer,
		})
		if err != nil {
			return err
		}
		status, _ = s.QuizStatus(contentID)
		return nil
	})
	if err != nil {
		return respondError(c, err, nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Answer submitted!", fiber.Map{
		"answer": ans,
		"status": learnerView(status),
	})
}

func (pc *PlayerController) CompleteQuiz(c *fiber.Ctx) error {
	contentID := c.Locals("contentID").(string)
	var (
		res  player.QuizResults
		data fiber.Map
	)
	err := pc.withSession(c, func(s *player.Session) (err error) {
		res, err = s.CompleteQuiz(c.UserContext(), contentID)
		if err != nil {
			return err
		}
		status, _ := s.QuizStatus(contentID)
		data = fiber.Map{"results": res, "status": learnerView(status), "overall_progress": s.OverallProgress()}
		return nil
	})
	if err != nil {
		return respondError(c, err, res)
	}
	if !res.Passed {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz not passed. Review the weak topics and retry!", data)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz passed!", data)
}

func (pc *PlayerController) QuizStatus(c *fiber.Ctx) error {
	var status player.QuizStatus
	err := pc.withSession(c, func(s *player.Session) (err error) {
		status, err = s.QuizStatus(c.Locals("contentID").(string))
		return err
	})
	if err != nil {
		return respondError(c, err, nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz status fetched successfully!", learnerView(status))
}
