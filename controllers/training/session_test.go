package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"hrtraining/database"
	"hrtraining/importer"
	"hrtraining/player"
	"hrtraining/repository"
	validators "hrtraining/validators/training"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithSession_ReopensClosedSession(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open("sqlite", filepath.Join(t.TempDir(), "training.db"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	program, err := importer.ImportFile(ctx, db, filepath.Join("..", "..", "importer", "testdata", "fire_safety.yaml"))
	require.NoError(t, err)

	enrollments := repository.NewEnrollmentStore(db)
	enrollment, _, err := enrollments.Enroll(ctx, program.ID, "emp-7")
	require.NoError(t, err)
	registry := player.NewRegistry(player.Dependencies{
		Content:     repository.NewContentRepository(db),
		Progress:    repository.NewProgressStore(db, nil),
		Enrollments: enrollments,
	})
	pc := NewPlayerController(registry, enrollments, db)

	first, err := registry.Open(ctx, enrollment.ID)
	require.NoError(t, err)
	welcome := first.Program().Modules[0].Contents[0].ID

	var seen []*player.Session
	app := fiber.New()
	app.Post("/player/:enrollment_id/sample", validators.EnrollmentParam(), func(c *fiber.Ctx) error {
		err := pc.withSession(c, func(s *player.Session) error {
			seen = append(seen, s)
			if len(seen) == 1 {
				// another request closes the player while this one holds the session
				assert.NoError(t, registry.Close(ctx, enrollment.ID))
			}
			_, err := s.RecordVideoSample(c.UserContext(), welcome, 40, 100)
			return err
		})
		if err != nil {
			return respondError(c, err, nil)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/player/"+enrollment.ID+"/sample", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	require.Len(t, seen, 2)
	assert.Same(t, first, seen[0])
	assert.NotSame(t, first, seen[1])
	live, ok := registry.Get(enrollment.ID)
	require.True(t, ok)
	assert.Same(t, seen[1], live)
	assert.Equal(t, 1, registry.Len())

	p, ok := live.Progress(welcome)
	require.True(t, ok)
	assert.Equal(t, 40.0, p.WatchPercentage)
}
