package mongorepo_test

import (
	"context"
	"testing"
	"time"

	"tasktracker/internal/model"
	"tasktracker/internal/pagination"
	"tasktracker/internal/repository"
	"tasktracker/internal/repository/mongorepo"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const tasksNS = "tasks_db.tasks"

func lookupString(mt *mtest.T, cmd bson.Raw, path ...string) string {
	mt.Helper()
	v, err := cmd.LookupErr(path...)
	require.NoError(mt, err, path)
	s, ok := v.StringValueOK()
	require.True(mt, ok, path)
	return s
}

func lookupInt(mt *mtest.T, cmd bson.Raw, path ...string) int64 {
	mt.Helper()
	v, err := cmd.LookupErr(path...)
	require.NoError(mt, err, path)
	switch v.Type {
	case bson.TypeInt32:
		return int64(v.Int32())
	case bson.TypeInt64:
		return v.Int64()
	}
	mt.Fatalf("%v is %s, not an integer", path, v.Type)
	return 0
}

func taskDoc(id, ownerID uuid.UUID, title string, createdAt time.Time) bson.D {
	return bson.D{
		{Key: "_id", Value: id.String()},
		{Key: "owner", Value: ownerID.String()},
		{Key: "title", Value: title},
		{Key: "description", Value: "desc"},
		{Key: "status", Value: "todo"},
		{Key: "priority", Value: "medium"},
		{Key: "createdAt", Value: createdAt},
		{Key: "updatedAt", Value: createdAt},
	}
}

func TestTaskRepository_FindOne(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("found", func(mt *mtest.T) {
		taskRepo := mongorepo.NewTaskRepository(mt.DB, time.Second)
		ownerID, taskID := uuid.New(), uuid.New()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, tasksNS, mtest.FirstBatch,
			taskDoc(taskID, ownerID, "Alpha", time.Now().UTC())))

		mt.ClearEvents()
		task, err := taskRepo.FindOne(context.Background(), ownerID, taskID)

		require.NoError(mt, err)
		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "find", evt.CommandName)
		assert.Equal(mt, taskID.String(), lookupString(mt, evt.Command, "filter", "_id"))
		assert.Equal(mt, ownerID.String(), lookupString(mt, evt.Command, "filter", "owner"))
		assert.Equal(mt, taskID, task.ID)
		assert.Equal(mt, ownerID, task.OwnerID)
		assert.Equal(mt, model.StatusTodo, task.Status)
		assert.Nil(mt, task.DueDate)
	})

	mt.Run("not found", func(mt *mtest.T) {
		taskRepo := mongorepo.NewTaskRepository(mt.DB, time.Second)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, tasksNS, mtest.FirstBatch))

		task, err := taskRepo.FindOne(context.Background(), uuid.New(), uuid.New())

		assert.ErrorIs(mt, err, repository.ErrTaskNotFound)
		assert.Nil(mt, task)
	})

	mt.Run("unknown status", func(mt *mtest.T) {
		taskRepo := mongorepo.NewTaskRepository(mt.DB, time.Second)
		ownerID, taskID := uuid.New(), uuid.New()
		doc := taskDoc(taskID, ownerID, "Alpha", time.Now().UTC())
		doc[4].Value = "archived"
		mt.AddMockResponses(mtest.CreateCursorResponse(0, tasksNS, mtest.FirstBatch, doc))

		task, err := taskRepo.FindOne(context.Background(), ownerID, taskID)

		require.Error(mt, err)
		assert.NotErrorIs(mt, err, repository.ErrTaskNotFound)
		assert.Contains(mt, err.Error(), `unknown status "archived"`)
		assert.Nil(mt, task)
	})
}

func TestTaskRepository_Insert(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("assigns id and timestamps", func(mt *mtest.T) {
		taskRepo := mongorepo.NewTaskRepository(mt.DB, time.Second)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		task := &model.Task{OwnerID: uuid.New(), Title: "t", Description: "d", Status: model.StatusTodo, Priority: model.PriorityMedium}
		err := taskRepo.Insert(context.Background(), task)

		require.NoError(mt, err)
		assert.NotEqual(mt, uuid.Nil, task.ID)
		assert.False(mt, task.CreatedAt.IsZero())
	})
}

func TestTaskRepository_FindPage(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("items and total", func(mt *mtest.T) {
		taskRepo := mongorepo.NewTaskRepository(mt.DB, time.Second)
		ownerID := uuid.New()
		now := time.Now().UTC()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, tasksNS, mtest.FirstBatch, bson.D{
			{Key: "items", Value: bson.A{
				taskDoc(uuid.New(), ownerID, "Alphabet", now),
				taskDoc(uuid.New(), ownerID, "Alpha", now.Add(-time.Minute)),
			}},
			{Key: "total", Value: bson.A{bson.D{{Key: "count", Value: 12}}}},
		}))

		mt.ClearEvents()
		tasks, total, err := taskRepo.FindPage(context.Background(), ownerID, pagination.Normalize(2, 10), "alpha")

		require.NoError(mt, err)
		assert.Equal(mt, int64(12), total)
		require.Len(mt, tasks, 2)
		assert.Equal(mt, "Alphabet", tasks[0].Title)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "aggregate", evt.CommandName)
		cmd := evt.Command
		assert.Equal(mt, ownerID.String(), lookupString(mt, cmd, "pipeline", "0", "$match", "owner"))
		assert.Equal(mt, "alpha", lookupString(mt, cmd, "pipeline", "0", "$match", "title", "$regex"))
		assert.Equal(mt, "i", lookupString(mt, cmd, "pipeline", "0", "$match", "title", "$options"))

		sort, ok := cmd.Lookup("pipeline", "1", "$sort").DocumentOK()
		require.True(mt, ok)
		elems, err := sort.Elements()
		require.NoError(mt, err)
		require.Len(mt, elems, 2)
		assert.Equal(mt, "createdAt", elems[0].Key())
		assert.Equal(mt, "_id", elems[1].Key())
		assert.Equal(mt, int64(-1), lookupInt(mt, cmd, "pipeline", "1", "$sort", "createdAt"))
		assert.Equal(mt, int64(-1), lookupInt(mt, cmd, "pipeline", "1", "$sort", "_id"))

		assert.Equal(mt, int64(10), lookupInt(mt, cmd, "pipeline", "2", "$facet", "items", "0", "$skip"))
		assert.Equal(mt, int64(10), lookupInt(mt, cmd, "pipeline", "2", "$facet", "items", "1", "$limit"))
		assert.Equal(mt, "count", lookupString(mt, cmd, "pipeline", "2", "$facet", "total", "0", "$count"))
	})

	mt.Run("search is matched literally", func(mt *mtest.T) {
		taskRepo := mongorepo.NewTaskRepository(mt.DB, time.Second)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, tasksNS, mtest.FirstBatch, bson.D{
			{Key: "items", Value: bson.A{}},
			{Key: "total", Value: bson.A{}},
		}))

		mt.ClearEvents()
		_, _, err := taskRepo.FindPage(context.Background(), uuid.New(), pagination.Normalize(1, 5), "a.b(")

		require.NoError(mt, err)
		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, `a\.b\(`, lookupString(mt, evt.Command, "pipeline", "0", "$match", "title", "$regex"))
		assert.Equal(mt, int64(0), lookupInt(mt, evt.Command, "pipeline", "2", "$facet", "items", "0", "$skip"))
		assert.Equal(mt, int64(5), lookupInt(mt, evt.Command, "pipeline", "2", "$facet", "items", "1", "$limit"))
	})

	mt.Run("no matches", func(mt *mtest.T) {
		taskRepo := mongorepo.NewTaskRepository(mt.DB, time.Second)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, tasksNS, mtest.FirstBatch, bson.D{
			{Key: "items", Value: bson.A{}},
			{Key: "total", Value: bson.A{}},
		}))

		mt.ClearEvents()
		tasks, total, err := taskRepo.FindPage(context.Background(), uuid.New(), pagination.Normalize(1, 10), "")

		require.NoError(mt, err)
		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		_, err = evt.Command.LookupErr("pipeline", "0", "$match", "title")
		assert.Error(mt, err, "empty search must not filter on title")
		assert.Zero(mt, total)
		assert.NotNil(mt, tasks)
		assert.Empty(mt, tasks)
	})
}

func TestTaskRepository_UpdateOwned(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("updated", func(mt *mtest.T) {
		taskRepo := mongorepo.NewTaskRepository(mt.DB, time.Second)
		ownerID, taskID := uuid.New(), uuid.New()
		doc := taskDoc(taskID, ownerID, "Renamed", time.Now().UTC())
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: doc}))

		mt.ClearEvents()
		task, err := taskRepo.UpdateOwned(context.Background(), ownerID, taskID, model.TaskChanges{Title: "Renamed", Description: "desc"})

		require.NoError(mt, err)
		assert.Equal(mt, "Renamed", task.Title)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "findAndModify", evt.CommandName)
		assert.Equal(mt, taskID.String(), lookupString(mt, evt.Command, "query", "_id"))
		assert.Equal(mt, ownerID.String(), lookupString(mt, evt.Command, "query", "owner"))
		assert.Equal(mt, "Renamed", lookupString(mt, evt.Command, "update", "$set", "title"))
		_, err = evt.Command.LookupErr("update", "$set", "status")
		assert.Error(mt, err, "absent status must stay untouched")
	})

	mt.Run("not owned", func(mt *mtest.T) {
		taskRepo := mongorepo.NewTaskRepository(mt.DB, time.Second)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		task, err := taskRepo.UpdateOwned(context.Background(), uuid.New(), uuid.New(), model.TaskChanges{Title: "t", Description: "d"})

		assert.ErrorIs(mt, err, repository.ErrTaskNotFound)
		assert.Nil(mt, task)
	})
}

func TestTaskRepository_DeleteOwned(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("deleted then missing", func(mt *mtest.T) {
		taskRepo := mongorepo.NewTaskRepository(mt.DB, time.Second)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}),
		)
		ownerID, taskID := uuid.New(), uuid.New()

		mt.ClearEvents()
		assert.NoError(mt, taskRepo.DeleteOwned(context.Background(), ownerID, taskID))
		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "delete", evt.CommandName)
		assert.Equal(mt, taskID.String(), lookupString(mt, evt.Command, "deletes", "0", "q", "_id"))
		assert.Equal(mt, ownerID.String(), lookupString(mt, evt.Command, "deletes", "0", "q", "owner"))

		assert.ErrorIs(mt, taskRepo.DeleteOwned(context.Background(), ownerID, taskID), repository.ErrTaskNotFound)
	})
}
