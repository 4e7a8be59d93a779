// Package modelsはTaskとUserを定義します。
package models

import (
	"encoding/json"
	"time"
)

// TaskStatus はタスクの状態です。
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
)

// Valid は定義済みの状態かどうかを返します。
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

type Task struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      TaskStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TaskCreateRequest はタスク作成リクエストです。
type TaskCreateRequest struct {
	Title       string     `json:"title" binding:"required,min=3,max=100"`
	Description *string    `json:"description" binding:"omitempty,max=1000"`
	Status      TaskStatus `json:"status" binding:"omitempty,oneof=pending in_progress completed"`
}

// TaskUpdateRequest は部分更新リクエストです。nil のフィールドは変更しません。
// description だけは明示的な null で空に戻せるため、キーの有無を DescriptionSet に記録します。
type TaskUpdateRequest struct {
	Title          *string     `json:"title" binding:"omitnil,min=3,max=100"`
	Description    *string     `json:"description" binding:"omitnil,max=1000"`
	Status         *TaskStatus `json:"status" binding:"omitnil,oneof=pending in_progress completed"`
	DescriptionSet bool        `json:"-"`
}

// UnmarshalJSON は通常どおりデコードしたうえで description キーの有無を記録します。
func (r *TaskUpdateRequest) UnmarshalJSON(data []byte) error {
	type plain TaskUpdateRequest
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	_, p.DescriptionSet = keys["description"]
	*r = TaskUpdateRequest(p)
	return nil
}

// UpdatesDescription は description を書き換える場合に true を返します。
// Description が nil なら NULL に戻します。
func (r TaskUpdateRequest) UpdatesDescription() bool {
	return r.DescriptionSet || r.Description != nil
}

// IsEmpty は更新対象のフィールドが一つもない場合に true を返します。
func (r TaskUpdateRequest) IsEmpty() bool {
	return r.Title == nil && !r.UpdatesDescription() && r.Status == nil
}

// TaskListQuery は一覧取得のクエリパラメータです。
// page と limit は不正値をデフォルトに戻すため文字列のまま受け取ります。
type TaskListQuery struct {
	Page   string `form:"page"`
	Limit  string `form:"limit"`
	Status string `form:"status" binding:"omitempty,oneof=pending in_progress completed"`
	Search string `form:"search" binding:"max=100"`
}

// TaskStats はユーザーごとの集計値です。
type TaskStats struct {
	Total      int64 `json:"total"`
	Pending    int64 `json:"pending"`
	InProgress int64 `json:"in_progress"`
	Completed  int64 `json:"completed"`
	Today      int64 `json:"today"`
	Last7Days  int64 `json:"last_7_days"`
}
