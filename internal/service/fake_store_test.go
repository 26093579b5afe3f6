package service_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"tasktracker/internal/model"
	"tasktracker/internal/pagination"
	"tasktracker/internal/repository"
)

// memoryTaskStore mimics the repository contract in memory.
type memoryTaskStore struct {
	mu     sync.Mutex
	tasks  map[uuid.UUID]model.Task
	clock  time.Time
	writes int
}

func newMemoryTaskStore() *memoryTaskStore {
	return &memoryTaskStore{
		tasks: make(map[uuid.UUID]model.Task),
		clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (s *memoryTaskStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *memoryTaskStore) FindPage(_ context.Context, ownerID uuid.UUID, page pagination.Params, search string) ([]model.Task, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []model.Task
	for _, t := range s.tasks {
		if t.OwnerID != ownerID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(t.Title), strings.ToLower(search)) {
			continue
		}
		matched = append(matched, t)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID.String() > matched[j].ID.String()
	})

	total := int64(len(matched))
	start := page.Offset()
	if start >= len(matched) {
		return []model.Task{}, total, nil
	}
	end := start + page.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (s *memoryTaskStore) FindOne(_ context.Context, ownerID, taskID uuid.UUID) (*model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[taskID]
	if !ok || t.OwnerID != ownerID {
		return nil, repository.ErrTaskNotFound
	}
	return &t, nil
}

func (s *memoryTaskStore) Insert(_ context.Context, task *model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task.ID = uuid.New()
	task.CreatedAt = s.tick()
	task.UpdatedAt = task.CreatedAt
	s.tasks[task.ID] = *task
	s.writes++
	return nil
}

func (s *memoryTaskStore) UpdateOwned(_ context.Context, ownerID, taskID uuid.UUID, changes model.TaskChanges) (*model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[taskID]
	if !ok || t.OwnerID != ownerID {
		return nil, repository.ErrTaskNotFound
	}
	t.Title = changes.Title
	t.Description = changes.Description
	if changes.Status != nil {
		t.Status = *changes.Status
	}
	if changes.Priority != nil {
		t.Priority = *changes.Priority
	}
	if changes.DueDate != nil {
		t.DueDate = changes.DueDate
	}
	t.UpdatedAt = s.tick()
	s.tasks[taskID] = t
	s.writes++
	return &t, nil
}

func (s *memoryTaskStore) DeleteOwned(_ context.Context, ownerID, taskID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[taskID]
	if !ok || t.OwnerID != ownerID {
		return repository.ErrTaskNotFound
	}
	delete(s.tasks, taskID)
	s.writes++
	return nil
}
