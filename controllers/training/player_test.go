package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	controllers "hrtraining/controllers/training"
	"hrtraining/database"
	"hrtraining/importer"
	"hrtraining/middleware"
	"hrtraining/player"
	"hrtraining/repository"
	trainingRoutes "hrtraining/routers/trainingRoutes"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	db, err := database.Open("sqlite", filepath.Join(t.TempDir(), "training.db"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	_, err = importer.ImportFile(context.Background(), db, filepath.Join("..", "..", "importer", "testdata", "fire_safety.yaml"))
	require.NoError(t, err)

	enrollments := repository.NewEnrollmentStore(db)
	registry := player.NewRegistry(player.Dependencies{
		Content:     repository.NewContentRepository(db),
		Progress:    repository.NewProgressStore(db, nil),
		Enrollments: enrollments,
	})

	app := middleware.NewApp(false)
	trainingRoutes.SetupTrainingRoutes(app, controllers.NewPlayerController(registry, enrollments, db))
	trainingRoutes.SetupMetricsRoute(app)
	return app
}

func call(t *testing.T, app *fiber.App, method, path string, body interface{}) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func enroll(t *testing.T, app *fiber.App) string {
	t.Helper()
	code, env := call(t, app, http.MethodPost, "/program/fire-safety-2026/enroll", map[string]string{"user_id": "emp-42"})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var e player.Enrollment
	require.NoError(t, json.Unmarshal(env.Data, &e))
	return e.ID
}

func openOutline(t *testing.T, app *fiber.App, enrollmentID string) player.Outline {
	t.Helper()
	code, env := call(t, app, http.MethodPost, "/player/"+enrollmentID+"/open", nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	var o player.Outline
	require.NoError(t, json.Unmarshal(env.Data, &o))
	return o
}

func TestEnroll(t *testing.T) {
	app := newTestApp(t)
	first := enroll(t, app)

	code, env := call(t, app, http.MethodPost, "/program/fire-safety-2026/enroll", map[string]string{"user_id": "emp-42"})
	assert.Equal(t, http.StatusOK, code)
	var again player.Enrollment
	require.NoError(t, json.Unmarshal(env.Data, &again))
	assert.Equal(t, first, again.ID)

	code, _ = call(t, app, http.MethodPost, "/program/missing/enroll", map[string]string{"user_id": "emp-42"})
	assert.Equal(t, http.StatusNotFound, code)

	code, env = call(t, app, http.MethodPost, "/program/fire-safety-2026/enroll", map[string]string{"user_id": "   "})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, string(env.Data), "user_id")
}

func TestPlayerFlow(t *testing.T) {
	app := newTestApp(t)
	id := enroll(t, app)

	outline := openOutline(t, app, id)
	require.Len(t, outline.Modules, 2)
	welcome := outline.Modules[0].Items[0]
	extinguishers := outline.Modules[0].Items[1]
	evacuation := outline.Modules[1].Items[0]
	assert.Equal(t, player.ItemUnlocked, welcome.State)
	assert.Equal(t, player.ItemLocked, extinguishers.State)

	// Locked content cannot be watched or jumped to.
	code, _ := call(t, app, http.MethodPost, "/player/"+id+"/video/"+extinguishers.ContentID+"/progress",
		map[string]float64{"current_time": 10, "duration": 100})
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = call(t, app, http.MethodPost, "/player/"+id+"/jump", map[string]int{"module_index": 1, "content_index": 0})
	assert.Equal(t, http.StatusForbidden, code)

	code, env := call(t, app, http.MethodPost, "/player/"+id+"/video/"+welcome.ContentID+"/progress",
		map[string]float64{"current_time": 95, "duration": 100})
	require.Equal(t, http.StatusOK, code, env.Message)
	var upd player.VideoUpdate
	require.NoError(t, json.Unmarshal(env.Data, &upd))
	assert.True(t, upd.ContentCompleted)

	code, _ = call(t, app, http.MethodPost, "/player/"+id+"/quiz/"+welcome.ContentID+"/start", nil)
	assert.Equal(t, http.StatusConflict, code)

	code, env = call(t, app, http.MethodPost, "/player/"+id+"/next", nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	assert.Contains(t, string(env.Data), `"moved":true`)

	// The quiz opens once the video threshold is reached.
	code, _ = call(t, app, http.MethodPost, "/player/"+id+"/quiz/"+extinguishers.ContentID+"/start", nil)
	assert.Equal(t, http.StatusConflict, code)
	call(t, app, http.MethodPost, "/player/"+id+"/video/"+extinguishers.ContentID+"/progress",
		map[string]float64{"current_time": 100, "duration": 100})

	code, env = call(t, app, http.MethodPost, "/player/"+id+"/quiz/"+extinguishers.ContentID+"/start", nil)
	require.Equal(t, http.StatusCreated, code, env.Message)
	var status player.QuizStatus
	require.NoError(t, json.Unmarshal(env.Data, &status))
	require.Len(t, status.Questions, 2)
	assert.NotContains(t, string(env.Data), "is_correct")

	correctText := map[string]bool{"CO2": true, "False": true}
	for _, q := range status.Questions {
		var correct string
		for _, o := range q.Options {
			if correctText[o.OptionText] {
				correct = o.ID
			}
		}
		require.NotEmpty(t, correct)
		code, env = call(t, app, http.MethodPost, "/player/"+id+"/quiz/"+extinguishers.ContentID+"/answer",
			map[string]interface{}{"question_id": q.ID, "selected_options": []string{correct}})
		require.Equal(t, http.StatusOK, code, env.Message)
	}

	code, env = call(t, app, http.MethodPost, "/player/"+id+"/quiz/"+extinguishers.ContentID+"/complete", nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	assert.Equal(t, "Quiz passed!", env.Message)

	code, env = call(t, app, http.MethodGet, "/player/"+id+"/quiz/"+extinguishers.ContentID+"/status", nil)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &status))
	require.NotNil(t, status.QuizScore)
	assert.Equal(t, 100, *status.QuizScore)

	code, env = call(t, app, http.MethodGet, "/player/"+id+"/outline", nil)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &outline))
	assert.Equal(t, player.ItemUnlocked, outline.Modules[1].Items[0].State)
	assert.Equal(t, evacuation.ContentID, outline.Modules[1].Items[0].ContentID)

	code, _ = call(t, app, http.MethodPost, "/player/"+id+"/close", nil)
	assert.Equal(t, http.StatusOK, code)

	code, env = call(t, app, http.MethodGet, "/program/fire-safety-2026/activity", nil)
	assert.Equal(t, http.StatusOK, code, env.Message)
}

func TestPlayerErrors(t *testing.T) {
	app := newTestApp(t)
	id := enroll(t, app)
	outline := openOutline(t, app, id)
	welcome := outline.Modules[0].Items[0]

	code, _ := call(t, app, http.MethodGet, "/player/unknown-enrollment/outline", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, env := call(t, app, http.MethodPost, "/player/"+id+"/video/"+welcome.ContentID+"/progress",
		map[string]float64{"current_time": 10, "duration": 0})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, string(env.Data), "duration")

	code, _ = call(t, app, http.MethodPost, "/player/"+id+"/document/"+welcome.ContentID+"/complete", nil)
	assert.Equal(t, http.StatusConflict, code)

	code, _ = call(t, app, http.MethodPost, "/player/"+id+"/video/not-in-program/progress",
		map[string]float64{"current_time": 10, "duration": 100})
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = call(t, app, http.MethodPost, "/player/"+id+"/previous", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestMetricsRoute(t *testing.T) {
	app := newTestApp(t)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
