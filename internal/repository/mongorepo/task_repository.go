package mongorepo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tasktracker/internal/model"
	"tasktracker/internal/pagination"
	"tasktracker/internal/repository"
)

type TaskRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func NewTaskRepository(db *mongo.Database, timeout time.Duration) *TaskRepository {
	return &TaskRepository{coll: db.Collection(TasksCollection), timeout: timeout}
}

func (r *TaskRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

func ownedFilter(ownerID, taskID uuid.UUID) bson.M {
	return bson.M{"_id": taskID.String(), "owner": ownerID.String()}
}

type pageResult struct {
	Items []taskDocument `bson:"items"`
	Total []struct {
		Count int64 `bson:"count"`
	} `bson:"total"`
}

// FindPage runs a single $facet aggregation so the page and the total count
// are computed by one command over the same data.
func (r *TaskRepository) FindPage(ctx context.Context, ownerID uuid.UUID, page pagination.Params, search string) ([]model.Task, int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	match := bson.M{"owner": ownerID.String()}
	if search != "" {
		match["title"] = bson.M{"$regex": regexp.QuoteMeta(search), "$options": "i"}
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}}},
		{{Key: "$facet", Value: bson.M{
			"items": bson.A{
				bson.M{"$skip": page.Offset()},
				bson.M{"$limit": page.PageSize},
			},
			"total": bson.A{bson.M{"$count": "count"}},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, fmt.Errorf("aggregate tasks page: %w", err)
	}
	defer cursor.Close(ctx)

	var results []pageResult
	if err := cursor.All(ctx, &results); err != nil {
		return nil, 0, fmt.Errorf("decode tasks page: %w", err)
	}

	tasks := []model.Task{}
	var total int64
	if len(results) == 0 {
		return tasks, 0, nil
	}
	if len(results[0].Total) > 0 {
		total = results[0].Total[0].Count
	}
	for _, doc := range results[0].Items {
		task, err := doc.toModel()
		if err != nil {
			return nil, 0, fmt.Errorf("decode task %s: %w", doc.ID, err)
		}
		tasks = append(tasks, task)
	}
	return tasks, total, nil
}

// FindOne retrieves a task only if it belongs to ownerID
func (r *TaskRepository) FindOne(ctx context.Context, ownerID, taskID uuid.UUID) (*model.Task, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var doc taskDocument
	err := r.coll.FindOne(ctx, ownedFilter(ownerID, taskID)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find task: %w", err)
	}
	task, err := doc.toModel()
	if err != nil {
		return nil, fmt.Errorf("decode task: %w", err)
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
	// Mongo stores milliseconds; truncate so the returned value matches what is persisted.
	now := time.Now().UTC().Truncate(time.Millisecond)
	task.CreatedAt = now
	task.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, newTaskDocument(task)); err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// UpdateOwned uses FindOneAndUpdate filtered by id and owner, returning the new document.
func (r *TaskRepository) UpdateOwned(ctx context.Context, ownerID, taskID uuid.UUID, changes model.TaskChanges) (*model.Task, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	set := bson.M{
		"title":       changes.Title,
		"description": changes.Description,
		"updatedAt":   time.Now().UTC().Truncate(time.Millisecond),
	}
	if changes.Status != nil {
		set["status"] = string(*changes.Status)
	}
	if changes.Priority != nil {
		set["priority"] = string(*changes.Priority)
	}
	if changes.DueDate != nil {
		set["dueDate"] = *changes.DueDate
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc taskDocument
	err := r.coll.FindOneAndUpdate(ctx, ownedFilter(ownerID, taskID), bson.M{"$set": set}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	task, err := doc.toModel()
	if err != nil {
		return nil, fmt.Errorf("decode task: %w", err)
	}
	return &task, nil
}

// DeleteOwned removes a task only if it belongs to ownerID
func (r *TaskRepository) DeleteOwned(ctx context.Context, ownerID, taskID uuid.UUID) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, ownedFilter(ownerID, taskID))
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrTaskNotFound
	}
	return nil
}
