package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"task-manager-api/internal/apperror"
	"task-manager-api/internal/database"
	"task-manager-api/internal/models"
)

// ErrTaskNotFound は対象のタスクが存在しないか、他のユーザーのものである場合のエラーです。
var ErrTaskNotFound = apperror.NotFound("task not found")

// TaskRepository はタスクのデータベース操作を行います。
// すべての操作は user_id を条件に含めます。
type TaskRepository struct {
	DB      *sql.DB
	Dialect database.Dialect
}

// NewTaskRepository は新しいTaskRepositoryインスタンスを作成します。
func NewTaskRepository(db *sql.DB, dialect database.Dialect) *TaskRepository {
	return &TaskRepository{DB: db, Dialect: dialect}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(s rowScanner) (models.Task, error) {
	var (
		t           models.Task
		description sql.NullString
		status      string
	)
	err := s.Scan(&t.ID, &t.UserID, &t.Title, &description, &status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return t, err
	}
	if description.Valid {
		t.Description = &description.String
	}
	t.Status = models.TaskStatus(status)
	return t, nil
}

// Create はタスクを挿入し、保存後の行を返します。
func (r *TaskRepository) Create(ctx context.Context, t *models.Task) (*models.Task, error) {
	query := "INSERT INTO tasks (user_id, title, description, status) VALUES (?, ?, ?, ?)"
	args := []any{t.UserID, t.Title, t.Description, string(t.Status)}

	var id int64
	if r.Dialect.SupportsReturning() {
		err := r.DB.QueryRowContext(ctx, r.Dialect.Rebind(query+" RETURNING id"), args...).Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("could not insert task: %w", err)
		}
	} else {
		result, err := r.DB.ExecContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("could not insert task: %w", err)
		}
		if id, err = result.LastInsertId(); err != nil {
			return nil, fmt.Errorf("could not get last insert ID: %w", err)
		}
	}
	return r.FindByID(ctx, id, t.UserID)
}

// FindByID は所有者が userID のタスクを取得します。
func (r *TaskRepository) FindByID(ctx context.Context, id, userID int64) (*models.Task, error) {
	query := r.Dialect.Rebind("SELECT " + taskColumns + " FROM tasks WHERE id = ? AND user_id = ?")
	t, err := scanTask(r.DB.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("could not query task: %w", err)
	}
	return &t, nil
}

// List は filter に一致するタスクと総件数を返します。
// 行の取得と件数の取得は並行に実行されます。
func (r *TaskRepository) List(ctx context.Context, f TaskFilter) ([]models.Task, int64, error) {
	q := NewTaskListQuery(r.Dialect, f)
	tasks := make([]models.Task, 0, min(f.Limit, 100))
	var total int64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		query, args := q.Rows()
		rows, err := r.DB.QueryContext(gctx, query, args...)
		if err != nil {
			return fmt.Errorf("could not query tasks: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			t, err := scanTask(rows)
			if err != nil {
				return fmt.Errorf("could not scan task: %w", err)
			}
			tasks = append(tasks, t)
		}
		return rows.Err()
	})
	g.Go(func() error {
		query, args := q.Count()
		if err := r.DB.QueryRowContext(gctx, query, args...).Scan(&total); err != nil {
			return fmt.Errorf("could not count tasks: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

// Update は指定されたフィールドだけを更新し、更新後の行を返します。
// nil のフィールドは COALESCE により現在の値を保ちます。
func (r *TaskRepository) Update(ctx context.Context, id, userID int64, req models.TaskUpdateRequest) (*models.Task, error) {
	var status *string
	if req.Status != nil {
		s := string(*req.Status)
		status = &s
	}

	query := r.Dialect.Rebind(`UPDATE tasks SET
		title = COALESCE(?, title),
		description = CASE WHEN ? THEN ? ELSE description END,
		status = COALESCE(?, status),
		updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND user_id = ?`)
	result, err := r.DB.ExecContext(ctx, query, req.Title, req.UpdatesDescription(), req.Description, status, id, userID)
	if err != nil {
		return nil, fmt.Errorf("could not update task: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("could not get rows affected: %w", err)
	}
	if n == 0 {
		return nil, ErrTaskNotFound
	}
	return r.FindByID(ctx, id, userID)
}

// Delete はタスクを削除します。
func (r *TaskRepository) Delete(ctx context.Context, id, userID int64) error {
	query := r.Dialect.Rebind("DELETE FROM tasks WHERE id = ? AND user_id = ?")
	result, err := r.DB.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("could not delete task: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if n == 0 {
		return ErrTaskNotFound
	}
	return nil
}

const statsQuery = `SELECT
	COUNT(*),
	COUNT(CASE WHEN status = 'pending' THEN 1 END),
	COUNT(CASE WHEN status = 'in_progress' THEN 1 END),
	COUNT(CASE WHEN status = 'completed' THEN 1 END),
	COUNT(CASE WHEN created_at >= ? AND created_at < ? THEN 1 END),
	COUNT(CASE WHEN created_at >= ? THEN 1 END)
FROM tasks WHERE user_id = ?`

// Stats はユーザーのタスクを一つの集計クエリで数えます。
// 「今日」は now のロケーションでの暦日です。
func (r *TaskRepository) Stats(ctx context.Context, userID int64, now time.Time) (*models.TaskStats, error) {
	dayStart, dayEnd, weekAgo := StatsWindow(now)

	var s models.TaskStats
	err := r.DB.QueryRowContext(ctx, r.Dialect.Rebind(statsQuery), dayStart, dayEnd, weekAgo, userID).Scan(
		&s.Total,
		&s.Pending,
		&s.InProgress,
		&s.Completed,
		&s.Today,
		&s.Last7Days,
	)
	if err != nil {
		return nil, fmt.Errorf("could not query task stats: %w", err)
	}
	return &s, nil
}

// StatsWindow は「今日」の範囲と7日前の時刻を返します。
func StatsWindow(now time.Time) (dayStart, dayEnd, weekAgo time.Time) {
	y, m, d := now.Date()
	dayStart = time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	dayEnd = dayStart.AddDate(0, 0, 1)
	weekAgo = now.Add(-7 * 24 * time.Hour)
	return dayStart, dayEnd, weekAgo
}
