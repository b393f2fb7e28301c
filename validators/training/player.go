package trainingValidator

import (
	"errors"
	"reflect"
	"strings"

	"hrtraining/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = newValidator()

// newValidator reports fields by their json names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// fieldErrors turns validator errors into the field => message map of the
// validation error response.
func fieldErrors(err error) map[string]string {
	out := make(map[string]string)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out["body"] = err.Error()
		return out
	}
	for _, fe := range verrs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			out[field] = field + " is required!"
		case "gte", "min":
			out[field] = field + " must be at least " + fe.Param() + "!"
		case "gt":
			out[field] = field + " must be greater than " + fe.Param() + "!"
		case "max":
			out[field] = field + " must be at most " + fe.Param() + " characters!"
		default:
			out[field] = field + " is invalid!"
		}
	}
	return out
}

// bind parses the body into req and validates its struct tags. When ok is
// false the error response has already been written.
func bind(c *fiber.Ctx, req interface{}) (ok bool, err error) {
	if err := c.BodyParser(req); err != nil {
		return false, middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}
	if err := validate.Struct(req); err != nil {
		return false, middleware.ValidationErrorResponse(c, fieldErrors(err))
	}
	return true, nil
}

func idParam(c *fiber.Ctx, name string) (string, bool) {
	id := strings.TrimSpace(c.Params(name))
	if id == "" || len(id) > 36 {
		return "", false
	}
	return id, true
}

// EnrollRequest is the body of POST /program/:program_id/enroll
type EnrollRequest struct {
	UserID string `json:"user_id" validate:"required,max=64"`
}

// VideoProgressRequest is one player time update
type VideoProgressRequest struct {
	CurrentTime float64 `json:"current_time" validate:"gte=0"`
	Duration    float64 `json:"duration" validate:"gt=0"`
}

// JumpRequest targets a (module, content) position
type JumpRequest struct {
	ModuleIndex  int `json:"module_index" validate:"gte=0"`
	ContentIndex int `json:"content_index" validate:"gte=0"`
}

// AnswerRequest is one quiz answer
type AnswerRequest struct {
	QuestionID      string   `json:"question_id" validate:"required,max=36"`
	SelectedOptions []string `json:"selected_options" validate:"omitempty,dive,required,max=36"`
	TextAnswer      string   `json:"text_answer" validate:"max=4000"`
}

// ProgramParam validates :program_id
func ProgramParam() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := idParam(c, "program_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Program ID!", nil)
		}
		c.Locals("programID", id)
		return c.Next()
	}
}

// Enroll validates the enrollment request
func Enroll() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := idParam(c, "program_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Program ID!", nil)
		}
		reqData := new(EnrollRequest)
		if ok, err := bind(c, reqData); !ok {
			return err
		}
		reqData.UserID = strings.TrimSpace(reqData.UserID)
		if reqData.UserID == "" {
			return middleware.ValidationErrorResponse(c, map[string]string{"user_id": "user_id is required!"})
		}

		c.Locals("programID", id)
		c.Locals("validatedEnrollment", reqData)
		return c.Next()
	}
}

// EnrollmentParam validates :enrollment_id for every player route
func EnrollmentParam() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := idParam(c, "enrollment_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Enrollment ID!", nil)
		}
		c.Locals("enrollmentID", id)
		return c.Next()
	}
}

// ContentParam validates :content_id
func ContentParam() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := idParam(c, "content_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Content ID!", nil)
		}
		c.Locals("contentID", id)
		return c.Next()
	}
}

// VideoProgress validates a player time update
func VideoProgress() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(VideoProgressRequest)
		if ok, err := bind(c, reqData); !ok {
			return err
		}
		c.Locals("validatedVideoProgress", reqData)
		return c.Next()
	}
}

// Jump validates a jump target
func Jump() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(JumpRequest)
		if ok, err := bind(c, reqData); !ok {
			return err
		}
		c.Locals("validatedJump", reqData)
		return c.Next()
	}
}

// QuizAnswer validates one quiz answer
func QuizAnswer() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(AnswerRequest)
		if ok, err := bind(c, reqData); !ok {
			return err
		}
		reqData.QuestionID = strings.TrimSpace(reqData.QuestionID)
		c.Locals("validatedAnswer", reqData)
		return c.Next()
	}
}
