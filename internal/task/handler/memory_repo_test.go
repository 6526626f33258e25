package handler

import (
	"context"
	"sync"

	"task-tracker/server/internal/task/domain"
)

type memRepo struct {
	mu         sync.Mutex
	nextTaskID int64
	nextTagID  int64
	tasks      map[int64]*domain.Task
	tags       map[int64]*domain.Tag
	links      map[[2]int64]bool
}

func newMemRepo() *memRepo {
	return &memRepo{
		tasks: make(map[int64]*domain.Task),
		tags:  make(map[int64]*domain.Tag),
		links: make(map[[2]int64]bool),
	}
}

func (r *memRepo) Create(_ context.Context, t *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextTaskID++
	t.ID = r.nextTaskID
	copied := *t
	r.tasks[t.ID] = &copied
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id int64) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tasks[id]; ok {
		copied := *t
		return &copied, nil
	}
	return nil, nil
}

func (r *memRepo) ListByUser(_ context.Context, userID int64) ([]*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Task, 0)
	for id := int64(1); id <= r.nextTaskID; id++ {
		if t, ok := r.tasks[id]; ok && t.UserID == userID {
			copied := *t
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memRepo) UpdateName(_ context.Context, id int64, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tasks[id]; ok {
		t.Name = name
	}
	return nil
}

func (r *memRepo) UpdateDone(_ context.Context, id int64, done bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tasks[id]; ok {
		t.IsDone = done
	}
	return nil
}

func (r *memRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tasks, id)
	return nil
}

func (r *memRepo) DeleteDoneByUser(_ context.Context, userID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, t := range r.tasks {
		if t.UserID == userID && t.IsDone {
			delete(r.tasks, id)
			n++
		}
	}
	return n, nil
}

func (r *memRepo) CreateTag(_ context.Context, t *domain.Tag) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextTagID++
	t.ID = r.nextTagID
	copied := *t
	r.tags[t.ID] = &copied
	return nil
}

func (r *memRepo) GetTagByID(_ context.Context, id int64) (*domain.Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tags[id]; ok {
		copied := *t
		return &copied, nil
	}
	return nil, nil
}

func (r *memRepo) GetTagByUserAndName(_ context.Context, userID int64, name string) (*domain.Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tags {
		if t.UserID == userID && t.Name == name {
			copied := *t
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memRepo) ListTagsByUser(_ context.Context, userID int64) ([]*domain.Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Tag, 0)
	for id := int64(1); id <= r.nextTagID; id++ {
		if t, ok := r.tags[id]; ok && t.UserID == userID {
			copied := *t
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memRepo) DeleteTag(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tags, id)
	for link := range r.links {
		if link[1] == id {
			delete(r.links, link)
		}
	}
	return nil
}

func (r *memRepo) AttachTag(_ context.Context, taskID, tagID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.links[[2]int64{taskID, tagID}] = true
	return nil
}

func (r *memRepo) DetachTag(_ context.Context, taskID, tagID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.links, [2]int64{taskID, tagID})
	return nil
}

func (r *memRepo) ListTagsByTask(_ context.Context, taskID int64) ([]*domain.Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Tag, 0)
	for id := int64(1); id <= r.nextTagID; id++ {
		t, ok := r.tags[id]
		if ok && r.links[[2]int64{taskID, id}] {
			copied := *t
			out = append(out, &copied)
		}
	}
	return out, nil
}
