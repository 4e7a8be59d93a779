package services

import (
	"context"
	"time"

	"task-manager-api/internal/apperror"
	"task-manager-api/internal/models"
	"task-manager-api/internal/repositories"
)

// ErrEmptyUpdate は更新対象のフィールドが一つもない場合のエラーです。
var ErrEmptyUpdate = apperror.Validation("", "at least one field required")

// TaskStore はタスクの永続化を抽象化します。
// 実装はすべての操作を userID で絞り込まなければなりません。
type TaskStore interface {
	Create(ctx context.Context, t *models.Task) (*models.Task, error)
	FindByID(ctx context.Context, id, userID int64) (*models.Task, error)
	List(ctx context.Context, f repositories.TaskFilter) ([]models.Task, int64, error)
	Update(ctx context.Context, id, userID int64, req models.TaskUpdateRequest) (*models.Task, error)
	Delete(ctx context.Context, id, userID int64) error
	Stats(ctx context.Context, userID int64, now time.Time) (*models.TaskStats, error)
}

// TaskPage は一覧取得の結果です。
type TaskPage struct {
	Pagination models.Pagination `json:"pagination"`
	Tasks      []models.Task     `json:"tasks"`
}

// TaskService はタスク関連のビジネスロジックを扱います。
type TaskService struct {
	taskRepo TaskStore
	now      func() time.Time
}

// NewTaskService は新しいTaskServiceを作成します。
func NewTaskService(taskRepo TaskStore) *TaskService {
	return &TaskService{taskRepo: taskRepo, now: time.Now}
}

// WithClock は集計に使う時刻の取得元を差し替えて s 自身を返します。構築直後に呼び出します。
func (s *TaskService) WithClock(now func() time.Time) *TaskService {
	s.now = now
	return s
}

// CreateTask はタスクを作成します。status の既定値は pending です。
func (s *TaskService) CreateTask(ctx context.Context, userID int64, req models.TaskCreateRequest) (*models.Task, error) {
	status := req.Status
	if status == "" {
		status = models.StatusPending
	}
	return s.taskRepo.Create(ctx, &models.Task{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
	})
}

// GetTask は自分のタスクを一件取得します。
func (s *TaskService) GetTask(ctx context.Context, userID, id int64) (*models.Task, error) {
	return s.taskRepo.FindByID(ctx, id, userID)
}

// ListTasks はフィルタとページングを適用した一覧を返します。
func (s *TaskService) ListTasks(ctx context.Context, userID int64, q models.TaskListQuery) (*TaskPage, error) {
	f := repositories.NewTaskFilter(userID, q.Page, q.Limit, q.Status, q.Search)
	tasks, total, err := s.taskRepo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return &TaskPage{
		Pagination: models.NewPagination(total, f.Page, f.Limit),
		Tasks:      tasks,
	}, nil
}

// UpdateTask は指定されたフィールドだけを更新します。
func (s *TaskService) UpdateTask(ctx context.Context, userID, id int64, req models.TaskUpdateRequest) (*models.Task, error) {
	if req.IsEmpty() {
		return nil, ErrEmptyUpdate
	}
	return s.taskRepo.Update(ctx, id, userID, req)
}

// DeleteTask はタスクを削除します。
func (s *TaskService) DeleteTask(ctx context.Context, userID, id int64) error {
	return s.taskRepo.Delete(ctx, id, userID)
}

// Stats は集計値を返します。
func (s *TaskService) Stats(ctx context.Context, userID int64) (*models.TaskStats, error) {
	return s.taskRepo.Stats(ctx, userID, s.now())
}
