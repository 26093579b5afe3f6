package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"tasktracker/internal/apperror"
	"tasktracker/internal/model"
	"tasktracker/internal/pagination"
	"tasktracker/internal/repository"
)

const msgTaskNotFound = "Task not found"

// TaskStore is the persistence contract shared by the Postgres and Mongo backends.
type TaskStore interface {
	FindPage(ctx context.Context, ownerID uuid.UUID, page pagination.Params, search string) ([]model.Task, int64, error)
	FindOne(ctx context.Context, ownerID, taskID uuid.UUID) (*model.Task, error)
	Insert(ctx context.Context, task *model.Task) error
	UpdateOwned(ctx context.Context, ownerID, taskID uuid.UUID, changes model.TaskChanges) (*model.Task, error)
	DeleteOwned(ctx context.Context, ownerID, taskID uuid.UUID) error
}

// TaskInput is the writable shape of a task. Empty Status or Priority means "not supplied".
type TaskInput struct {
	Title       string `validate:"required"`
	Description string `validate:"required"`
	Status      string `validate:"omitempty,oneof=todo in-progress completed"`
	Priority    string `validate:"omitempty,oneof=low medium high"`
	DueDate     *time.Time
}

type ListParams struct {
	Page     int
	PageSize int
	Search   string
}

type TaskService struct {
	store TaskStore
	log   *slog.Logger
}

func NewTaskService(store TaskStore, log *slog.Logger) *TaskService {
	return &TaskService{store: store, log: log}
}

func (s *TaskService) validate(in *TaskInput) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Status = strings.TrimSpace(in.Status)
	in.Priority = strings.TrimSpace(in.Priority)

	if err := validate.Struct(in); err != nil {
		return validationError(err)
	}
	return nil
}

// Create validates the input, applies the todo/medium defaults and stores a new task for ownerID.
func (s *TaskService) Create(ctx context.Context, ownerID uuid.UUID, in TaskInput) (*model.Task, error) {
	if err := s.validate(&in); err != nil {
		return nil, err
	}

	task := &model.Task{
		OwnerID:     ownerID,
		Title:       in.Title,
		Description: in.Description,
		Status:      model.StatusTodo,
		Priority:    model.PriorityMedium,
		DueDate:     in.DueDate,
	}
	if in.Status != "" {
		task.Status = model.TaskStatus(in.Status)
	}
	if in.Priority != "" {
		task.Priority = model.TaskPriority(in.Priority)
	}

	if err := s.store.Insert(ctx, task); err != nil {
		return nil, apperror.NewInternalError("failed to create task", err)
	}

	s.log.DebugContext(ctx, "task created", "task_id", task.ID, "owner_id", ownerID)
	return task, nil
}

// List returns one page of the owner's tasks, newest first, optionally filtered by title.
func (s *TaskService) List(ctx context.Context, ownerID uuid.UUID, params ListParams) (*model.TaskPage, error) {
	page := pagination.Normalize(params.Page, params.PageSize)
	search := pagination.NormalizeSearch(params.Search)

	items, total, err := s.store.FindPage(ctx, ownerID, page, search)
	if err != nil {
		return nil, apperror.NewInternalError("failed to list tasks", err)
	}

	return &model.TaskPage{
		Items:      items,
		Total:      total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: pagination.TotalPages(total, page.PageSize),
	}, nil
}

func (s *TaskService) Get(ctx context.Context, ownerID, taskID uuid.UUID) (*model.Task, error) {
	task, err := s.store.FindOne(ctx, ownerID, taskID)
	if err != nil {
		return nil, mapTaskError(err, "failed to get task")
	}
	return task, nil
}

// Update overwrites title and description; status, priority and dueDate change only when supplied.
func (s *TaskService) Update(ctx context.Context, ownerID, taskID uuid.UUID, in TaskInput) (*model.Task, error) {
	if err := s.validate(&in); err != nil {
		return nil, err
	}

	changes := model.TaskChanges{
		Title:       in.Title,
		Description: in.Description,
		DueDate:     in.DueDate,
	}
	if in.Status != "" {
		status := model.TaskStatus(in.Status)
		changes.Status = &status
	}
	if in.Priority != "" {
		priority := model.TaskPriority(in.Priority)
		changes.Priority = &priority
	}

	task, err := s.store.UpdateOwned(ctx, ownerID, taskID, changes)
	if err != nil {
		return nil, mapTaskError(err, "failed to update task")
	}

	s.log.DebugContext(ctx, "task updated", "task_id", taskID, "owner_id", ownerID)
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, ownerID, taskID uuid.UUID) error {
	if err := s.store.DeleteOwned(ctx, ownerID, taskID); err != nil {
		return mapTaskError(err, "failed to delete task")
	}

	s.log.DebugContext(ctx, "task deleted", "task_id", taskID, "owner_id", ownerID)
	return nil
}

// Foreign and missing tasks both surface as NotFound.
func mapTaskError(err error, msg string) error {
	if errors.Is(err, repository.ErrTaskNotFound) {
		return apperror.NewNotFoundError(msgTaskNotFound)
	}
	return apperror.NewInternalError(msg, err)
}
