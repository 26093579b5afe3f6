// Package mongorepo stores users and tasks in MongoDB collections.
package mongorepo

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"tasktracker/internal/model"
)

const (
	TasksCollection = "tasks"
	UsersCollection = "users"
)

// Ids are kept as canonical uuid strings so both backends expose the same identifiers.
type taskDocument struct {
	ID          string     `bson:"_id"`
	Owner       string     `bson:"owner"`
	Title       string     `bson:"title"`
	Description string     `bson:"description"`
	Status      string     `bson:"status"`
	Priority    string     `bson:"priority"`
	DueDate     *time.Time `bson:"dueDate,omitempty"`
	CreatedAt   time.Time  `bson:"createdAt"`
	UpdatedAt   time.Time  `bson:"updatedAt"`
}

func newTaskDocument(t *model.Task) taskDocument {
	return taskDocument{
		ID:          t.ID.String(),
		Owner:       t.OwnerID.String(),
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		DueDate:     t.DueDate,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func (d taskDocument) toModel() (model.Task, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return model.Task{}, err
	}
	owner, err := uuid.Parse(d.Owner)
	if err != nil {
		return model.Task{}, err
	}
	// the collection has no CHECK constraints, unlike the Postgres schema
	status, priority := model.TaskStatus(d.Status), model.TaskPriority(d.Priority)
	if !status.Valid() {
		return model.Task{}, fmt.Errorf("unknown status %q", d.Status)
	}
	if !priority.Valid() {
		return model.Task{}, fmt.Errorf("unknown priority %q", d.Priority)
	}
	return model.Task{
		ID:          id,
		OwnerID:     owner,
		Title:       d.Title,
		Description: d.Description,
		Status:      status,
		Priority:    priority,
		DueDate:     d.DueDate,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}, nil
}

type userDocument struct {
	ID             string    `bson:"_id"`
	Name           string    `bson:"name"`
	Email          string    `bson:"email"`
	HashedPassword string    `bson:"password"`
	CreatedAt      time.Time `bson:"createdAt"`
}

func (d userDocument) toModel() (model.User, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return model.User{}, err
	}
	return model.User{
		ID:             id,
		Name:           d.Name,
		Email:          d.Email,
		HashedPassword: d.HashedPassword,
		CreatedAt:      d.CreatedAt,
	}, nil
}
