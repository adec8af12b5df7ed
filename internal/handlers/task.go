package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-manager-api/internal/dto"
	apierrors "github.com/yukikurage/task-manager-api/internal/errors"
	"github.com/yukikurage/task-manager-api/internal/services"
	"github.com/yukikurage/task-manager-api/internal/utils"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	registerValidators()
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns the caller's tasks, newest first
// Supports search, status and priority filters
func (h *TaskHandler) ListTasks(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	input, ok := listTasksInput(c)
	if !ok {
		return
	}

	tasks, total, err := h.taskService.ListOwn(c.Request.Context(), user, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, input.Pagination, total))
}

// SearchTasks is the administrator search across all users' tasks
func (h *TaskHandler) SearchTasks(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	base, ok := listTasksInput(c)
	if !ok {
		return
	}
	input := services.SearchTasksInput{ListTasksInput: base}

	if raw := optionalQuery(c, "owner_id"); raw != nil {
		ownerID, err := strconv.ParseUint(*raw, 10, 64)
		if err != nil {
			apierrors.ValidationError(c, "Invalid owner_id")
			return
		}
		input.OwnerID = &ownerID
	}

	tasks, total, err := h.taskService.Search(c.Request.Context(), user, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, input.Pagination, total))
}

func listTasksInput(c *gin.Context) (services.ListTasksInput, bool) {
	params, err := utils.GetPaginationParams(c)
	if err != nil {
		respondError(c, err)
		return services.ListTasksInput{}, false
	}
	return services.ListTasksInput{
		Search:     utils.GetSearchTerm(c),
		Status:     optionalQuery(c, "status"),
		Priority:   optionalQuery(c, "priority"),
		Pagination: params,
	}, true
}

// GetTask returns a specific task by ID
func (h *TaskHandler) GetTask(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	task, err := h.taskService.Get(c.Request.Context(), user, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// CreateTask creates a task owned by the caller
func (h *TaskHandler) CreateTask(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	task, err := h.taskService.Create(c.Request.Context(), user, createTaskInput(req))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// CreateTaskForUser lets an administrator create a task owned by another user
func (h *TaskHandler) CreateTaskForUser(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	ownerID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	task, err := h.taskService.CreateForUser(c.Request.Context(), user, ownerID, createTaskInput(req))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

func createTaskInput(req dto.CreateTaskRequest) services.CreateTaskInput {
	return services.CreateTaskInput{
		Title:         req.Title,
		Description:   req.Description,
		Status:        req.Status,
		Priority:      req.Priority,
		StartDatetime: req.StartDatetime,
		EndDatetime:   req.EndDatetime,
		DueDatetime:   req.DueDatetime,
	}
}

// UpdateTask applies a partial update to a task
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateTaskRequest
	fields, ok := bindPatch(c, &req)
	if !ok {
		return
	}

	task, err := h.taskService.Update(c.Request.Context(), user, id, services.UpdateTaskInput{
		Fields:        fields,
		Title:         req.Title,
		Description:   req.Description,
		Status:        req.Status,
		Priority:      req.Priority,
		StartDatetime: req.StartDatetime,
		EndDatetime:   req.EndDatetime,
		DueDatetime:   req.DueDatetime,
		OwnerID:       req.OwnerID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask soft-deletes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.taskService.Delete(c.Request.Context(), user, id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
