package controller

import (
	"context"
	"net/http"
	"testing"

	"ragbot-be/internal/apperrors"
	"ragbot-be/internal/constant"
	"ragbot-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMaintenanceService struct {
	chunks     int
	err        error
	documentID string
	path       string
}

func (f *fakeMaintenanceService) Reindex(ctx context.Context, documentID, path string) (int, error) {
	f.documentID = documentID
	f.path = path
	if f.err != nil {
		return 0, f.err
	}
	return f.chunks, nil
}

func newIndexTestApp(svc *fakeMaintenanceService) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	NewIndexController(svc, "data/document.txt").RegisterRoutes(app.Group("/api"))
	return app
}

func TestUpdateWithoutBodyUsesDefaults(t *testing.T) {
	svc := &fakeMaintenanceService{chunks: 7}
	app := newIndexTestApp(svc)

	req, err := http.NewRequest(http.MethodPost, "/api/update", nil)
	require.NoError(t, err)
	res, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, constant.DefaultDocumentID, svc.documentID)
	assert.Equal(t, "data/document.txt", svc.path)
}

func TestUpdateWithBodyOverridesDefaults(t *testing.T) {
	svc := &fakeMaintenanceService{chunks: 3}
	app := newIndexTestApp(svc)

	res, body := postJSON(t, app, "/api/update", `{"document_id":"manual","path":"data/manual.txt"}`)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "manual", svc.documentID)
	assert.Equal(t, "data/manual.txt", svc.path)

	data := body["data"].(map[string]interface{})
	assert.EqualValues(t, 3, data["chunks"])
	assert.Equal(t, "manual", data["document_id"])
}

func TestUpdateEmptyDocumentIs400(t *testing.T) {
	svc := &fakeMaintenanceService{err: apperrors.Wrapf(apperrors.ErrEmptyDocument, "no content")}
	app := newIndexTestApp(svc)

	res, body := postJSON(t, app, "/api/update", `{}`)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, false, body["success"])
}

func TestUpdateEmbeddingFailureIsGeneric(t *testing.T) {
	svc := &fakeMaintenanceService{err: apperrors.Wrapf(apperrors.ErrEmbeddingService, "embedder down")}
	app := newIndexTestApp(svc)

	res, body := postJSON(t, app, "/api/update", `{}`)
	assert.Equal(t, http.StatusBadGateway, res.StatusCode)
	assert.Equal(t, apperrors.GenericFailureMessage, body["message"])
}
