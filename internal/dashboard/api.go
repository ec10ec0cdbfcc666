package dashboard

import (
	"fmt"
	"net/http"

	"github.com/UnknownOlympus/plutus/internal/lib/logger/sl"
	"github.com/UnknownOlympus/plutus/internal/models"
	"github.com/UnknownOlympus/plutus/internal/report"
	"github.com/gin-gonic/gin"
)

func (h *handlers) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func (h *handlers) handleAPIListTasks(c *gin.Context) {
	tasks, err := h.tasks.List(c.Request.Context())
	if err != nil {
		sl.Op(h.log, "api", "API.ListTasks").ErrorContext(c.Request.Context(), "Failed to list tasks", sl.Err(err))
		h.respondError(c, err)
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *handlers) handleAPICreateTask(c *gin.Context) {
	var fields models.TaskFields
	if err := c.ShouldBindJSON(&fields); err != nil {
		h.respondError(c, fmt.Errorf("%w: %w", models.ErrInvalidInput, err))
		return
	}
	taskID, err := h.tasks.Create(c.Request.Context(), fields)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": taskID})
}

func (h *handlers) handleAPIGetGoal(c *gin.Context) {
	goal, err := h.goals.Get(c.Request.Context(), c.Param("agent"))
	if err != nil {
		sl.Op(h.log, "api", "API.GetGoal").ErrorContext(c.Request.Context(), "Failed to get goal", sl.Err(err))
		h.respondError(c, err)
		return
	}
	if goal == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no goals set for this agent"})
		return
	}
	c.JSON(http.StatusOK, goal)
}

func (h *handlers) handleAPISaveGoal(c *gin.Context) {
	var fields models.GoalFields
	if err := c.ShouldBindJSON(&fields); err != nil {
		h.respondError(c, fmt.Errorf("%w: %w", models.ErrInvalidInput, err))
		return
	}
	if err := h.goals.Save(c.Request.Context(), c.Param("agent"), fields); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) handleAPIReport(c *gin.Context) {
	ctx := c.Request.Context()
	log := sl.Op(h.log, "api", "API.Report")
	agent, year := h.selection(c)

	tasks, err := h.tasks.List(ctx)
	if err != nil {
		log.ErrorContext(ctx, "Failed to list tasks", sl.Err(err))
		h.respondError(c, err)
		return
	}
	goal, err := h.goalFor(ctx, agent)
	if err != nil {
		log.ErrorContext(ctx, "Failed to get goal", "agent", agent, sl.Err(err))
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report.Build(tasks, agent, year, goal, h.now()))
}
