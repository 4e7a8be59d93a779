package repositories

import (
	"math"
	"strconv"
	"strings"

	"task-manager-api/internal/database"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
	// maxOffset は MySQL と PostgreSQL のどちらでも扱える OFFSET の上限です。
	maxOffset = math.MaxInt32

	taskColumns = "id, user_id, title, description, status, created_at, updated_at"
	marker      = "{}"
)

// TaskFilter は一覧取得の条件です。page と limit は補正済みです。
type TaskFilter struct {
	UserID int64
	Page   int
	Limit  int
	Status string
	Search string
}

// Offset は LIMIT/OFFSET 用のオフセットを返します。
func (f TaskFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// NewTaskFilter は生のクエリ値から TaskFilter を作ります。
// 正の整数として読めない page と limit は 1 と 10 に戻します。
// limit は 100 で頭打ちにし、オフセットが maxOffset を超える page は 1 に戻します。
func NewTaskFilter(userID int64, page, limit, status, search string) TaskFilter {
	l := min(positiveOr(limit, defaultLimit), maxLimit)
	p := positiveOr(page, defaultPage)
	if p-1 > maxOffset/l {
		p = defaultPage
	}
	return TaskFilter{
		UserID: userID,
		Page:   p,
		Limit:  l,
		Status: strings.TrimSpace(status),
		Search: strings.TrimSpace(search),
	}
}

func positiveOr(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// predicate は {} を含む条件式と、そこに束縛する一つの値です。
// {} が複数ある場合も値は同じものを参照します。
type predicate struct {
	template string
	value    any
}

// TaskListQuery は一覧取得の SQL を組み立てる不変の値です。
// Rows と Count は同じ条件リストから描画されます。
type TaskListQuery struct {
	dialect database.Dialect
	preds   []predicate
	limit   int
	offset  int
}

// NewTaskListQuery は filter から条件リストを組み立てます。
// user_id の条件は常に先頭に置かれます。
func NewTaskListQuery(dialect database.Dialect, f TaskFilter) TaskListQuery {
	q := TaskListQuery{dialect: dialect, limit: f.Limit, offset: f.Offset()}
	q = q.where("user_id = {}", f.UserID)
	if f.Status != "" {
		q = q.where("status = {}", f.Status)
	}
	if f.Search != "" {
		like := dialect.ILike()
		q = q.where("(title "+like+" {} OR description "+like+" {})", "%"+escapeLike(f.Search)+"%")
	}
	return q
}

func (q TaskListQuery) where(template string, value any) TaskListQuery {
	preds := make([]predicate, len(q.preds), len(q.preds)+1)
	copy(preds, q.preds)
	q.preds = append(preds, predicate{template: template, value: value})
	return q
}

// Rows は一覧取得の SQL と引数を返します。
func (q TaskListQuery) Rows() (string, []any) {
	var b strings.Builder
	b.WriteString("SELECT " + taskColumns + " FROM tasks")
	args := q.render(&b, q.preds)
	b.WriteString(" ORDER BY created_at DESC, id DESC ")
	args = q.bind(&b, args, predicate{"LIMIT {}", q.limit})
	b.WriteString(" ")
	args = q.bind(&b, args, predicate{"OFFSET {}", q.offset})
	return b.String(), args
}

// Count は件数取得の SQL と引数を返します。
func (q TaskListQuery) Count() (string, []any) {
	var b strings.Builder
	b.WriteString("SELECT COUNT(*) FROM tasks")
	args := q.render(&b, q.preds)
	return b.String(), args
}

func (q TaskListQuery) render(b *strings.Builder, preds []predicate) []any {
	var args []any
	for i, p := range preds {
		if i == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}
		args = q.bind(b, args, p)
	}
	return args
}

// bind は p を b に書き出し、方言に応じて引数を追加します。
// 番号付き方言では同じ番号を再利用し、? の方言では値を参照回数だけ繰り返します。
func (q TaskListQuery) bind(b *strings.Builder, args []any, p predicate) []any {
	n := strings.Count(p.template, marker)
	if q.dialect.Numbered() {
		args = append(args, p.value)
		b.WriteString(strings.ReplaceAll(p.template, marker, q.dialect.Placeholder(len(args))))
		return args
	}
	b.WriteString(strings.ReplaceAll(p.template, marker, "?"))
	for range n {
		args = append(args, p.value)
	}
	return args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
