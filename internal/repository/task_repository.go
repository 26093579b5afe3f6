package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tasktracker/internal/model"
	"tasktracker/internal/pagination"
)

type TaskRepository struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewTaskRepository(db *gorm.DB, timeout time.Duration) *TaskRepository {
	return &TaskRepository{db: db, timeout: timeout}
}

func (r *TaskRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

// FindPage returns one page of the owner's tasks, newest first, together with the
// total number of matching tasks. Both come from the same read-only snapshot.
func (r *TaskRepository) FindPage(ctx context.Context, ownerID uuid.UUID, page pagination.Params, search string) ([]model.Task, int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var (
		tasks []model.Task
		total int64
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		scoped := func() *gorm.DB {
			q := tx.Model(&model.Task{}).Where("owner_id = ?", ownerID)
			if search != "" {
				q = q.Where("title ILIKE ?", pagination.ContainsPattern(search))
			}
			return q
		}

		if err := scoped().Count(&total).Error; err != nil {
			return err
		}
		if total == 0 || int64(page.Offset()) >= total {
			return nil
		}
		return scoped().
			Order("created_at DESC").
			Order("id DESC").
			Limit(page.PageSize).
			Offset(page.Offset()).
			Find(&tasks).Error
	}, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, 0, fmt.Errorf("find tasks page: %w", err)
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	return tasks, total, nil
}

// FindOne retrieves a task only if it belongs to ownerID
func (r *TaskRepository) FindOne(ctx context.Context, ownerID, taskID uuid.UUID) (*model.Task, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var task model.Task
	result := r.db.WithContext(ctx).Where("id = ? AND owner_id = ?", taskID, ownerID).First(&task)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task: %w", result.Error)
	}
	return &task, nil
}

// Insert adds a new task, assigning its ID and timestamps
func (r *TaskRepository) Insert(ctx context.Context, task *model.Task) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// UpdateOwned applies changes in a single UPDATE ... RETURNING statement filtered by
// id and owner, so the ownership check and the write cannot be separated.
func (r *TaskRepository) UpdateOwned(ctx context.Context, ownerID, taskID uuid.UUID, changes model.TaskChanges) (*model.Task, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	values := map[string]interface{}{
		"title":       changes.Title,
		"description": changes.Description,
		"updated_at":  time.Now().UTC(),
	}
	if changes.Status != nil {
		values["status"] = *changes.Status
	}
	if changes.Priority != nil {
		values["priority"] = *changes.Priority
	}
	if changes.DueDate != nil {
		values["due_date"] = *changes.DueDate
	}

	var task model.Task
	result := r.db.WithContext(ctx).
		Model(&task).
		Clauses(clause.Returning{}).
		Where("id = ? AND owner_id = ?", taskID, ownerID).
		Updates(values)
	if result.Error != nil {
		return nil, fmt.Errorf("update task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrTaskNotFound
	}
	return &task, nil
}

// DeleteOwned removes a task only if it belongs to ownerID
func (r *TaskRepository) DeleteOwned(ctx context.Context, ownerID, taskID uuid.UUID) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	result := r.db.WithContext(ctx).Where("id = ? AND owner_id = ?", taskID, ownerID).Delete(&model.Task{})
	if result.Error != nil {
		return fmt.Errorf("delete task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}
