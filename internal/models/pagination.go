package models

// Pagination は一覧レスポンスのページ情報です。
type Pagination struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalTasks   int64 `json:"totalTasks"`
	TasksPerPage int   `json:"tasksPerPage"`
	HasNextPage  bool  `json:"hasNextPage"`
	HasPrevPage  bool  `json:"hasPrevPage"`
}

// NewPagination は総件数とページサイズからページ情報を計算します。
// page と limit は 1 以上であることを前提とします。
func NewPagination(total int64, page, limit int) Pagination {
	totalPages := 0
	if total > 0 {
		pages := total / int64(limit)
		if total%int64(limit) != 0 {
			pages++
		}
		totalPages = int(pages)
	}
	return Pagination{
		CurrentPage:  page,
		TotalPages:   totalPages,
		TotalTasks:   total,
		TasksPerPage: limit,
		HasNextPage:  page < totalPages,
		HasPrevPage:  page > 1,
	}
}
