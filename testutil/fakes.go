package testutil

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-sql-driver/mysql"

	"task-manager-api/internal/models"
	"task-manager-api/internal/repositories"
)

// Clock はテスト用の固定時計です。
type Clock struct {
	mu sync.Mutex
	t  time.Time
}

func NewClock(t time.Time) *Clock { return &Clock{t: t} }

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

// MemoryTaskStore は services.TaskStore のメモリ実装です。
// SQL 版と同じ絞り込み・並び順・集計を行います。
type MemoryTaskStore struct {
	mu     sync.Mutex
	nextID int64
	tasks  map[int64]models.Task
	now    func() time.Time
	// Err が設定されていれば、すべての操作がそのエラーを返します。
	Err error
}

func NewMemoryTaskStore(now func() time.Time) *MemoryTaskStore {
	return &MemoryTaskStore{tasks: make(map[int64]models.Task), now: now}
}

func (s *MemoryTaskStore) Create(_ context.Context, t *models.Task) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}

	s.nextID++
	saved := *t
	saved.ID = s.nextID
	saved.CreatedAt = s.now()
	saved.UpdatedAt = saved.CreatedAt
	s.tasks[saved.ID] = saved
	return &saved, nil
}

func (s *MemoryTaskStore) FindByID(_ context.Context, id, userID int64) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}

	t, ok := s.tasks[id]
	if !ok || t.UserID != userID {
		return nil, repositories.ErrTaskNotFound
	}
	return &t, nil
}

func (s *MemoryTaskStore) List(_ context.Context, f repositories.TaskFilter) ([]models.Task, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, 0, s.Err
	}

	search := strings.ToLower(f.Search)
	matched := make([]models.Task, 0)
	for _, t := range s.tasks {
		if t.UserID != f.UserID {
			continue
		}
		if f.Status != "" && string(t.Status) != f.Status {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(t.Title), search) &&
			(t.Description == nil || !strings.Contains(strings.ToLower(*t.Description), search)) {
			continue
		}
		matched = append(matched, t)
	}
	slices.SortFunc(matched, func(a, b models.Task) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})

	total := int64(len(matched))
	start := min(f.Offset(), len(matched))
	end := start + min(f.Limit, len(matched)-start)
	return matched[start:end], total, nil
}

func (s *MemoryTaskStore) Update(_ context.Context, id, userID int64, req models.TaskUpdateRequest) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}

	t, ok := s.tasks[id]
	if !ok || t.UserID != userID {
		return nil, repositories.ErrTaskNotFound
	}
	if req.Title != nil {
		t.Title = *req.Title
	}
	if req.UpdatesDescription() {
		t.Description = nil
		if req.Description != nil {
			d := *req.Description
			t.Description = &d
		}
	}
	if req.Status != nil {
		t.Status = *req.Status
	}
	t.UpdatedAt = s.now()
	s.tasks[id] = t
	return &t, nil
}

func (s *MemoryTaskStore) Delete(_ context.Context, id, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}

	t, ok := s.tasks[id]
	if !ok || t.UserID != userID {
		return repositories.ErrTaskNotFound
	}
	delete(s.tasks, id)
	return nil
}

func (s *MemoryTaskStore) Stats(_ context.Context, userID int64, now time.Time) (*models.TaskStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}

	dayStart, dayEnd, weekAgo := repositories.StatsWindow(now)
	var st models.TaskStats
	for _, t := range s.tasks {
		if t.UserID != userID {
			continue
		}
		st.Total++
		switch t.Status {
		case models.StatusPending:
			st.Pending++
		case models.StatusInProgress:
			st.InProgress++
		case models.StatusCompleted:
			st.Completed++
		}
		if !t.CreatedAt.Before(dayStart) && t.CreatedAt.Before(dayEnd) {
			st.Today++
		}
		if !t.CreatedAt.Before(weekAgo) {
			st.Last7Days++
		}
	}
	return &st, nil
}

// MemoryUserStore は services.UserStore のメモリ実装です。
// 重複は MySQL と同じ 1062 エラーで返します。
type MemoryUserStore struct {
	mu     sync.Mutex
	nextID int64
	users  []models.User
	now    func() time.Time
}

func NewMemoryUserStore(now func() time.Time) *MemoryUserStore {
	return &MemoryUserStore{now: now}
}

func (s *MemoryUserStore) Create(_ context.Context, u *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return nil, &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}
		}
	}
	s.nextID++
	saved := *u
	saved.ID = s.nextID
	saved.CreatedAt = s.now()
	s.users = append(s.users, saved)
	return &saved, nil
}

func (s *MemoryUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}
