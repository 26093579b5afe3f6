package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tasktracker/internal/model"
	"tasktracker/internal/service"
)

type TaskService interface {
	Create(ctx context.Context, ownerID uuid.UUID, in service.TaskInput) (*model.Task, error)
	List(ctx context.Context, ownerID uuid.UUID, params service.ListParams) (*model.TaskPage, error)
	Get(ctx context.Context, ownerID, taskID uuid.UUID) (*model.Task, error)
	Update(ctx context.Context, ownerID, taskID uuid.UUID, in service.TaskInput) (*model.Task, error)
	Delete(ctx context.Context, ownerID, taskID uuid.UUID) error
}

type TaskHandler struct {
	svc TaskService
	log *slog.Logger
}

func NewTaskHandler(svc TaskService, log *slog.Logger) *TaskHandler {
	return &TaskHandler{svc: svc, log: log}
}

// TaskRequest is the body of create and update requests
type TaskRequest struct {
	Title       string  `json:"title" example:"Write report"`
	Description string  `json:"description" example:"Quarterly numbers"`
	Status      string  `json:"status,omitempty" enums:"todo,in-progress,completed"`
	Priority    string  `json:"priority,omitempty" enums:"low,medium,high"`
	DueDate     *string `json:"dueDate,omitempty" example:"2025-03-01"`
}

type TaskResponse struct {
	ID          string  `json:"id"`
	Owner       string  `json:"owner"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	DueDate     *string `json:"dueDate,omitempty"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

type TaskListResponse struct {
	Tasks      []TaskResponse `json:"tasks"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	TotalPages int            `json:"totalPages"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func toTaskResponse(t *model.Task) TaskResponse {
	resp := TaskResponse{
		ID:          t.ID.String(),
		Owner:       t.OwnerID.String(),
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		CreatedAt:   t.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   t.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if t.DueDate != nil {
		due := t.DueDate.UTC().Format(time.RFC3339)
		resp.DueDate = &due
	}
	return resp
}

// parseDueDate accepts RFC 3339 timestamps and plain dates. Empty means no due date.
func parseDueDate(raw *string) (*time.Time, bool) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, true
	}
	value := strings.TrimSpace(*raw)
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if due, err := time.Parse(layout, value); err == nil {
			due = due.UTC()
			return &due, true
		}
	}
	return nil, false
}

// bindTask decodes the body into a service input; it answers 400 itself on failure.
func bindTask(c *gin.Context) (service.TaskInput, bool) {
	var req TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return service.TaskInput{}, false
	}

	due, ok := parseDueDate(req.DueDate)
	if !ok {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid dueDate, expected YYYY-MM-DD or RFC 3339"})
		return service.TaskInput{}, false
	}

	return service.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     due,
	}, true
}

// A malformed id cannot name an owned task, so it gets the same answer as a missing one.
func (h *TaskHandler) taskID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Task not found"})
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return n
}

// List godoc
// @Summary      List tasks
// @Description  Returns the caller's tasks, newest first, optionally filtered by title
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Param        page    query  int     false  "Page number (1-based)"  default(1)
// @Param        limit   query  int     false  "Page size (max 100)"    default(10)
// @Param        search  query  string  false  "Case-insensitive title substring"
// @Success      200  {object}  TaskListResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	// Get the current user ID from the context
	ownerID, ok := currentUser(c)
	if !ok {
		return
	}

	// Fetch one page of the caller's tasks
	page, err := h.svc.List(c.Request.Context(), ownerID, service.ListParams{
		Page:     queryInt(c, "page"),
		PageSize: queryInt(c, "limit"),
		Search:   c.Query("search"),
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	// Build the response
	tasks := make([]TaskResponse, 0, len(page.Items))
	for i := range page.Items {
		tasks = append(tasks, toTaskResponse(&page.Items[i]))
	}
	c.JSON(http.StatusOK, TaskListResponse{
		Tasks:      tasks,
		Total:      page.Total,
		Page:       page.Page,
		TotalPages: page.TotalPages,
	})
}

// Create godoc
// @Summary      Create a task
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        task  body  TaskRequest  true  "Task"
// @Success      201  {object}  TaskResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	// Get the current user ID from the context
	ownerID, ok := currentUser(c)
	if !ok {
		return
	}

	// Parse the request
	in, ok := bindTask(c)
	if !ok {
		return
	}

	// Save the task
	task, err := h.svc.Create(c.Request.Context(), ownerID, in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, toTaskResponse(task))
}

// GetByID godoc
// @Summary      Get a task
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Task ID"
// @Success      200  {object}  TaskResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /tasks/{id} [get]
func (h *TaskHandler) GetByID(c *gin.Context) {
	// Get the current user ID from the context
	ownerID, ok := currentUser(c)
	if !ok {
		return
	}

	// Parse the task ID
	taskID, ok := h.taskID(c)
	if !ok {
		return
	}

	// Load the task, scoped to its owner
	task, err := h.svc.Get(c.Request.Context(), ownerID, taskID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toTaskResponse(task))
}

// Update godoc
// @Summary      Update a task
// @Description  Overwrites title and description; status, priority and dueDate change when present
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string       true  "Task ID"
// @Param        task  body  TaskRequest  true  "Task"
// @Success      200  {object}  TaskResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /tasks/{id} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	// Get the current user ID from the context
	ownerID, ok := currentUser(c)
	if !ok {
		return
	}

	// Parse the task ID
	taskID, ok := h.taskID(c)
	if !ok {
		return
	}

	// Parse the request
	in, ok := bindTask(c)
	if !ok {
		return
	}

	// Apply the changes if the caller owns the task
	task, err := h.svc.Update(c.Request.Context(), ownerID, taskID, in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toTaskResponse(task))
}

// Delete godoc
// @Summary      Delete a task
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Task ID"
// @Success      200  {object}  MessageResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	// Get the current user ID from the context
	ownerID, ok := currentUser(c)
	if !ok {
		return
	}

	// Parse the task ID
	taskID, ok := h.taskID(c)
	if !ok {
		return
	}

	// Delete only if the caller owns the task
	if err := h.svc.Delete(c.Request.Context(), ownerID, taskID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Task deleted successfully"})
}
