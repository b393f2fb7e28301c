package trainingValidator

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoApp() *fiber.App {
	app := fiber.New()
	app.Post("/program/:program_id/enroll", Enroll(), func(c *fiber.Ctx) error {
		req := c.Locals("validatedEnrollment").(*EnrollRequest)
		return c.JSON(fiber.Map{"program_id": c.Locals("programID"), "user_id": req.UserID})
	})
	app.Post("/video/:content_id", ContentParam(), VideoProgress(), func(c *fiber.Ctx) error {
		return c.JSON(c.Locals("validatedVideoProgress"))
	})
	app.Post("/jump", Jump(), func(c *fiber.Ctx) error {
		return c.JSON(c.Locals("validatedJump"))
	})
	app.Post("/answer", QuizAnswer(), func(c *fiber.Ctx) error {
		return c.JSON(c.Locals("validatedAnswer"))
	})
	return app
}

func post(t *testing.T, app *fiber.App, path, body string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out := map[string]interface{}{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestEnrollValidator(t *testing.T) {
	app := echoApp()

	code, out := post(t, app, "/program/prog-1/enroll", `{"user_id":"  emp-42 "}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "prog-1", out["program_id"])
	assert.Equal(t, "emp-42", out["user_id"])

	code, out = post(t, app, "/program/prog-1/enroll", `{}`)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, map[string]interface{}{"user_id": "user_id is required!"}, out["data"])

	code, _ = post(t, app, "/program/"+strings.Repeat("x", 40)+"/enroll", `{"user_id":"emp-42"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, out = post(t, app, "/program/prog-1/enroll", `{"user_id":`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid request body!", out["message"])
}

func TestRequestValidators(t *testing.T) {
	app := echoApp()

	tests := []struct {
		name  string
		path  string
		body  string
		code  int
		field string
	}{
		{"video ok", "/video/c1", `{"current_time":12.5,"duration":100}`, http.StatusOK, ""},
		{"video zero duration", "/video/c1", `{"current_time":1,"duration":0}`, http.StatusUnprocessableEntity, "duration"},
		{"video negative time", "/video/c1", `{"current_time":-1,"duration":10}`, http.StatusUnprocessableEntity, "current_time"},
		{"jump ok", "/jump", `{"module_index":1,"content_index":0}`, http.StatusOK, ""},
		{"jump negative", "/jump", `{"module_index":-1,"content_index":0}`, http.StatusUnprocessableEntity, "module_index"},
		{"answer ok", "/answer", `{"question_id":"q1","selected_options":["o1"]}`, http.StatusOK, ""},
		{"answer missing question", "/answer", `{"selected_options":["o1"]}`, http.StatusUnprocessableEntity, "question_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out := post(t, app, tt.path, tt.body)
			assert.Equal(t, tt.code, code)
			if tt.field != "" {
				data, ok := out["data"].(map[string]interface{})
				require.True(t, ok)
				assert.Contains(t, data, tt.field)
			}
		})
	}
}
