package controller

import (
	"fmt"

	"ragbot-be/internal/constant"
	"ragbot-be/internal/dto"
	"ragbot-be/internal/pkg/serverutils"
	"ragbot-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IIndexController interface {
	RegisterRoutes(r fiber.Router)
	Update(ctx *fiber.Ctx) error
}

type indexController struct {
	maintenanceService service.IMaintenanceService
	defaultPath        string
}

func NewIndexController(maintenanceService service.IMaintenanceService, defaultPath string) IIndexController {
	return &indexController{
		maintenanceService: maintenanceService,
		defaultPath:        defaultPath,
	}
}

func (c *indexController) RegisterRoutes(r fiber.Router) {
	r.Post("/update", c.Update)
}

// Update rebuilds the index synchronously. The body is optional; without
// one the configured knowledge document is reindexed.
func (c *indexController) Update(ctx *fiber.Ctx) error {
	req := dto.UpdateIndexRequest{}
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
	}

	if req.DocumentId == "" {
		req.DocumentId = constant.DefaultDocumentID
	}
	if req.Path == "" {
		req.Path = c.defaultPath
	}

	chunks, err := c.maintenanceService.Reindex(ctx.Context(), req.DocumentId, req.Path)
	if err != nil {
		return err
	}

	res := &dto.UpdateIndexResponse{
		Message:    fmt.Sprintf("index updated with %d chunks", chunks),
		DocumentId: req.DocumentId,
		Chunks:     chunks,
	}
	return ctx.JSON(serverutils.SuccessResponse("Success update index", res))
}
