package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"task-manager-api/internal/models"
	"task-manager-api/internal/services"
)

// TaskHandler はタスク関連のハンドラーを管理します。
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler は新しいTaskHandlerを作成します。
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// CreateTaskHandler は新しいタスクを作成します。
func (h *TaskHandler) CreateTaskHandler(c *gin.Context) {
	userID, err := userIDFromContext(c)
	if err != nil {
		c.Error(err)
		return
	}
	var req models.TaskCreateRequest
	if err := bindJSON(c, &req); err != nil {
		c.Error(err)
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), userID, req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "task created successfully", "task": task})
}

// GetTasksHandler はフィルタとページング付きでタスク一覧を返します。
func (h *TaskHandler) GetTasksHandler(c *gin.Context) {
	userID, err := userIDFromContext(c)
	if err != nil {
		c.Error(err)
		return
	}
	var q models.TaskListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.Error(err)
		return
	}

	page, err := h.taskService.ListTasks(c.Request.Context(), userID, q)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "pagination": page.Pagination, "tasks": page.Tasks})
}

// GetTaskByIDHandler は指定IDのタスクを返します。
func (h *TaskHandler) GetTaskByIDHandler(c *gin.Context) {
	userID, err := userIDFromContext(c)
	if err != nil {
		c.Error(err)
		return
	}
	id, err := parseID(c)
	if err != nil {
		c.Error(err)
		return
	}

	task, err := h.taskService.GetTask(c.Request.Context(), userID, id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "task": task})
}

// UpdateTaskHandler はタスクを部分更新します。
func (h *TaskHandler) UpdateTaskHandler(c *gin.Context) {
	userID, err := userIDFromContext(c)
	if err != nil {
		c.Error(err)
		return
	}
	id, err := parseID(c)
	if err != nil {
		c.Error(err)
		return
	}
	var req models.TaskUpdateRequest
	if err := bindJSON(c, &req); err != nil {
		c.Error(err)
		return
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), userID, id, req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "task updated successfully", "task": task})
}

// DeleteTaskHandler はタスクを削除します。
func (h *TaskHandler) DeleteTaskHandler(c *gin.Context) {
	userID, err := userIDFromContext(c)
	if err != nil {
		c.Error(err)
		return
	}
	id, err := parseID(c)
	if err != nil {
		c.Error(err)
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), userID, id); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "task deleted successfully"})
}

// StatsHandler はタスクの集計値を返します。
func (h *TaskHandler) StatsHandler(c *gin.Context) {
	userID, err := userIDFromContext(c)
	if err != nil {
		c.Error(err)
		return
	}

	stats, err := h.taskService.Stats(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "stats": stats})
}
