package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"task-manager-api/internal/database"
)

func TestNewTaskFilter_Coercion(t *testing.T) {
	tests := []struct {
		name        string
		page, limit string
		wantPage    int
		wantLimit   int
		wantOffset  int
	}{
		{"defaults", "", "", 1, 10, 0},
		{"valid", "3", "5", 3, 5, 10},
		{"zero", "0", "0", 1, 10, 0},
		{"negative", "-2", "-1", 1, 10, 0},
		{"garbage", "abc", "1.5", 1, 10, 0},
		{"limit capped", "2", "500", 2, 100, 100},
		{"limit at cap", "1", "100", 1, 100, 0},
		{"highest page in range", "21474837", "100", 21474837, 100, 2147483600},
		{"page past offset bound", "21474838", "100", 1, 100, 0},
		{"page that would overflow int", "922337203685477581", "100", 1, 100, 0},
		{"values beyond int", "99999999999999999999", "99999999999999999999", 1, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewTaskFilter(7, tt.page, tt.limit, "", "")
			assert.Equal(t, tt.wantPage, f.Page)
			assert.Equal(t, tt.wantLimit, f.Limit)
			assert.Equal(t, tt.wantOffset, f.Offset())
		})
	}
}

func TestTaskListQuery_OffsetNeverNegative(t *testing.T) {
	for _, page := range []string{"922337203685477581", "9223372036854775807", "4611686018427387904"} {
		f := NewTaskFilter(7, page, "100", "", "")
		_, args := NewTaskListQuery(database.MySQL, f).Rows()
		offset := args[len(args)-1].(int)
		assert.GreaterOrEqual(t, offset, 0, "page=%s", page)
		assert.LessOrEqual(t, offset, maxOffset, "page=%s", page)
	}
}

func TestTaskListQuery_MySQL(t *testing.T) {
	f := NewTaskFilter(7, "2", "5", "pending", "milk")
	q := NewTaskListQuery(database.MySQL, f)

	rows, rowArgs := q.Rows()
	assert.Equal(t,
		"SELECT id, user_id, title, description, status, created_at, updated_at FROM tasks"+
			" WHERE user_id = ? AND status = ? AND (title LIKE ? OR description LIKE ?)"+
			" ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?",
		rows)
	assert.Equal(t, []any{int64(7), "pending", "%milk%", "%milk%", 5, 5}, rowArgs)

	count, countArgs := q.Count()
	assert.Equal(t,
		"SELECT COUNT(*) FROM tasks WHERE user_id = ? AND status = ? AND (title LIKE ? OR description LIKE ?)",
		count)
	assert.Equal(t, []any{int64(7), "pending", "%milk%", "%milk%"}, countArgs)
}

func TestTaskListQuery_PostgresReusesNumber(t *testing.T) {
	f := NewTaskFilter(7, "", "", "", "milk")
	q := NewTaskListQuery(database.Postgres, f)

	rows, rowArgs := q.Rows()
	assert.Equal(t,
		"SELECT id, user_id, title, description, status, created_at, updated_at FROM tasks"+
			" WHERE user_id = $1 AND (title ILIKE $2 OR description ILIKE $2)"+
			" ORDER BY created_at DESC, id DESC LIMIT $3 OFFSET $4",
		rows)
	assert.Equal(t, []any{int64(7), "%milk%", 10, 0}, rowArgs)

	count, countArgs := q.Count()
	assert.Equal(t, "SELECT COUNT(*) FROM tasks WHERE user_id = $1 AND (title ILIKE $2 OR description ILIKE $2)", count)
	assert.Equal(t, []any{int64(7), "%milk%"}, countArgs)
}

func TestTaskListQuery_UserScopeOnly(t *testing.T) {
	q := NewTaskListQuery(database.Postgres, NewTaskFilter(1, "", "", "  ", "  "))

	count, args := q.Count()
	assert.Equal(t, "SELECT COUNT(*) FROM tasks WHERE user_id = $1", count)
	assert.Equal(t, []any{int64(1)}, args)
}

func TestTaskListQuery_Immutable(t *testing.T) {
	base := NewTaskListQuery(database.MySQL, NewTaskFilter(1, "", "", "", ""))
	_ = base.where("status = {}", "completed")

	count, _ := base.Count()
	assert.Equal(t, "SELECT COUNT(*) FROM tasks WHERE user_id = ?", count)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\%\_off\\`, escapeLike(`50%_off\`))
	assert.Equal(t, "plain", escapeLike("plain"))
}
