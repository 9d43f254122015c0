package http

import (
	"fmt"
	"net/http"
	"strconv"

	"tradepilot/internal/dto"
	"tradepilot/internal/model"
	"tradepilot/pkg/apperrors"
	"tradepilot/pkg/utils"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupJobs(admin *echo.Group) {
	jobs := admin.Group("/jobs")
	{
		jobs.POST("/run", h.RunJobs)
		jobs.GET("", h.ListJobs)
		jobs.POST("/:id/run", h.RunJob)
	}
}

func (h *HttpAPIHandler) RunJobs(c echo.Context) error {
	response := dto.NewBaseResponse(http.StatusOK, "Start running jobs", nil)
	if err := h.service.SchedulerService.Execute(c.Request().Context()); err != nil {
		response.Code = http.StatusInternalServerError
		response.Message = err.Error()
	}
	return c.JSON(response.Code, response)
}

func (h *HttpAPIHandler) ListJobs(c echo.Context) error {
	jobs, err := h.service.SchedulerService.GetJobSchedule(c.Request().Context(), model.GetJobParam{
		WithTaskHistory: &model.GetTaskExecutionHistoryParam{Limit: utils.ToPointer(5)},
	})
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("ok", jobs))
}

func (h *HttpAPIHandler) RunJob(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return h.errorResponse(c, fmt.Errorf("%w: job not found", apperrors.ErrNotFound))
	}
	if err := h.service.SchedulerService.RunJobTask(c.Request().Context(), uint(id)); err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusAccepted, dto.NewBaseResponse(http.StatusAccepted, "Job started", nil))
}
