package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strconv"

	"github.com/UnknownOlympus/plutus/internal/lib/logger/sl"
	"github.com/UnknownOlympus/plutus/internal/models"
	"github.com/UnknownOlympus/plutus/internal/report"
	"github.com/UnknownOlympus/plutus/internal/view"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	warningNoAgent = "no-agent"

	noticeLoadFailed = "Could not load data from the store. Showing what is available."
	noticeSaveFailed = "Saving failed. Your input was kept, please try again."
)

// registerRoutes sets up all dashboard routes on the Gin router.
func registerRoutes(router *gin.Engine, h *handlers) error {
	static, err := staticFiles(assetsFS, "assets")
	if err != nil {
		return err
	}
	router.StaticFS("/static", static)

	// Pages.
	router.GET("/", h.handleDashboard)
	router.GET("/tasks/new", h.handleNewTask)
	router.POST("/tasks", h.handleCreateTask)
	router.GET("/tasks/:id", h.handleTaskDetail)
	router.GET("/goals/edit", h.handleEditGoals)
	router.POST("/goals", h.handleSaveGoals)

	api := router.Group("/api")
	api.GET("/tasks", h.handleAPIListTasks)
	api.POST("/tasks", h.handleAPICreateTask)
	api.GET("/goals/:agent", h.handleAPIGetGoal)
	api.PUT("/goals/:agent", h.handleAPISaveGoal)
	api.GET("/report", h.handleAPIReport)
	api.GET("/events", h.handleEvents)
	return nil
}

// staticFiles serves dir of fsys. dir must exist.
func staticFiles(fsys fs.FS, dir string) (http.FileSystem, error) {
	if _, err := fs.Stat(fsys, dir); err != nil {
		return nil, fmt.Errorf("load assets: %w", err)
	}
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("load assets: %w", err)
	}
	return http.FS(sub), nil
}

// selection reads the agent and year filters. Missing values select all agents and the current year.
func (h *handlers) selection(c *gin.Context) (string, int) {
	agent := c.Query("agent")
	if agent == "" {
		agent = report.AllAgents
	}
	year := h.now().Year()
	if y, err := strconv.Atoi(c.Query("year")); err == nil && y > 0 {
		year = y
	}
	return agent, year
}

func (h *handlers) goalFor(ctx context.Context, agent string) (*models.Goal, error) {
	if agent == report.AllAgents {
		return nil, nil //nolint:nilnil // the aggregate view has no goal
	}
	return h.goals.Get(ctx, agent)
}

func (h *handlers) handleDashboard(c *gin.Context) {
	ctx := c.Request.Context()
	log := sl.Op(h.log, "dashboard", "Dashboard.Index")
	agent, year := h.selection(c)
	state := view.State{Screen: view.Dashboard, Agent: agent}
	if c.Query("warning") == warningNoAgent {
		state.Warning = view.WarningNoAgent
	}

	status := http.StatusOK
	tasks, err := h.tasks.List(ctx)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load tasks", sl.Err(err))
		state.Err = noticeLoadFailed
		status = http.StatusInternalServerError
	}
	goal, err := h.goalFor(ctx, agent)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load goals", "agent", agent, sl.Err(err))
		state.Err = noticeLoadFailed
		status = http.StatusInternalServerError
	}

	rep := report.Build(tasks, agent, year, goal, h.now())
	c.HTML(status, "dashboard.html", gin.H{
		"state":  state,
		"report": rep,
		"agents": rep.Agents,
		"years":  rep.Years,
		"tasks":  rep.Tasks,
	})
}

func (h *handlers) handleNewTask(c *gin.Context) {
	agent, year := h.selection(c)
	state := view.State{Screen: view.Dashboard, Agent: agent}.AddTask()
	h.renderTaskForm(c, http.StatusOK, state, year, newTaskForm(h.now(), agent), uuid.NewString())
}

func (h *handlers) renderTaskForm(c *gin.Context, status int, state view.State, year int, form taskForm, token string) {
	c.HTML(status, "task_form.html", gin.H{
		"state":     state,
		"year":      year,
		"form":      form,
		"groups":    counterGroups,
		"taskTypes": models.TaskTypes,
		"token":     token,
	})
}

func (h *handlers) handleCreateTask(c *gin.Context) {
	ctx := c.Request.Context()
	_, year := h.selection(c)
	form := taskFormFrom(c.PostForm)
	token := c.PostForm("token")
	state := view.State{Screen: view.TaskForm, Agent: form.AgentName}

	if err := h.submissions.Begin(token); err != nil {
		state.Err = err.Error()
		h.renderTaskForm(c, http.StatusConflict, state, year, form, token)
		return
	}
	defer h.submissions.End(token)
	state, _ = state.BeginSubmit()

	fields, err := form.fields()
	if err == nil {
		_, err = h.tasks.Create(ctx, fields)
	}
	state = state.FinishSubmit(err)
	if err == nil {
		c.Redirect(http.StatusSeeOther, dashboardURL(form.AgentName, year, ""))
		return
	}

	status := statusFor(err)
	if status == http.StatusInternalServerError {
		state.Err = noticeSaveFailed
	}
	h.renderTaskForm(c, status, state, year, form, token)
}

func (h *handlers) handleTaskDetail(c *gin.Context) {
	ctx := c.Request.Context()
	agent, year := h.selection(c)
	state := view.State{Screen: view.Dashboard, Agent: agent}

	tasks, err := h.tasks.List(ctx)
	if err != nil {
		sl.Op(h.log, "dashboard", "Dashboard.TaskDetail").ErrorContext(ctx, "Failed to load tasks", sl.Err(err))
		state.Err = noticeLoadFailed
	}
	state, task := state.SelectTask(c.Param("id"), tasks)

	status := http.StatusOK
	switch {
	case err != nil:
		status = http.StatusInternalServerError
	case task == nil:
		status = http.StatusNotFound
	}
	c.HTML(status, "task_detail.html", gin.H{
		"state":    state,
		"year":     year,
		"task":     task,
		"sections": detailSections(task),
	})
}

func (h *handlers) handleEditGoals(c *gin.Context) {
	ctx := c.Request.Context()
	agent, year := h.selection(c)
	state := view.State{Screen: view.Dashboard, Agent: agent}.SetGoals()
	if state.Screen != view.GoalForm {
		c.Redirect(http.StatusSeeOther, dashboardURL(agent, year, warningNoAgent))
		return
	}

	status := http.StatusOK
	goal, err := h.goals.Get(ctx, agent)
	if err != nil {
		sl.Op(h.log, "dashboard", "Dashboard.EditGoals").ErrorContext(ctx, "Failed to load goals", sl.Err(err))
		state.Err = noticeLoadFailed
		status = http.StatusInternalServerError
	}
	h.renderGoalForm(c, status, state, year, goalFormFor(agent, goal), uuid.NewString())
}

func (h *handlers) renderGoalForm(c *gin.Context, status int, state view.State, year int, form goalForm, token string) {
	c.HTML(status, "goal_form.html", gin.H{
		"state":  state,
		"year":   year,
		"form":   form,
		"fields": goalFields,
		"token":  token,
	})
}

func (h *handlers) handleSaveGoals(c *gin.Context) {
	ctx := c.Request.Context()
	_, year := h.selection(c)
	form := goalFormFrom(c.PostForm)
	token := c.PostForm("token")
	state := view.State{Screen: view.GoalForm, Agent: form.AgentName}

	if err := h.submissions.Begin(token); err != nil {
		state.Err = err.Error()
		h.renderGoalForm(c, http.StatusConflict, state, year, form, token)
		return
	}
	defer h.submissions.End(token)
	state, _ = state.BeginSubmit()

	fields, err := form.fields()
	if err == nil {
		err = h.goals.Save(ctx, form.AgentName, fields)
	}
	state = state.FinishSubmit(err)
	if err == nil {
		c.Redirect(http.StatusSeeOther, dashboardURL(form.AgentName, year, ""))
		return
	}

	status := statusFor(err)
	if status == http.StatusInternalServerError {
		state.Err = noticeSaveFailed
	}
	h.renderGoalForm(c, status, state, year, form, token)
}

func statusFor(err error) int {
	if errors.Is(err, models.ErrInvalidInput) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
