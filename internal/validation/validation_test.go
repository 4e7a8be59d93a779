package validation_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-manager-api/internal/models"
	"task-manager-api/internal/validation"
)

func firstMessage(t *testing.T, v any) string {
	t.Helper()
	err := validation.New().Struct(v)
	require.Error(t, err)

	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	return validation.Message(verrs[0])
}

func TestMessage_TaskCreate(t *testing.T) {
	assert.Equal(t, `"title" is required`, firstMessage(t, models.TaskCreateRequest{}))
	assert.Equal(t, `"title" length must be at least 3 characters long`,
		firstMessage(t, models.TaskCreateRequest{Title: "ab"}))
	assert.Equal(t, `"title" length must be less than or equal to 100 characters long`,
		firstMessage(t, models.TaskCreateRequest{Title: strings.Repeat("a", 101)}))
	assert.Equal(t, `"status" must be one of [pending, in_progress, completed]`,
		firstMessage(t, models.TaskCreateRequest{Title: "abc", Status: "done"}))

	long := strings.Repeat("d", 1001)
	assert.Equal(t, `"description" length must be less than or equal to 1000 characters long`,
		firstMessage(t, models.TaskCreateRequest{Title: "abc", Description: &long}))
}

func TestTaskCreate_BoundaryAccepted(t *testing.T) {
	empty := ""
	v := validation.New()
	assert.NoError(t, v.Struct(models.TaskCreateRequest{Title: "abc"}))
	assert.NoError(t, v.Struct(models.TaskCreateRequest{Title: strings.Repeat("a", 100), Description: &empty}))
}

func TestTaskUpdate_EmptyTitleRejected(t *testing.T) {
	empty := ""
	assert.Equal(t, `"title" length must be at least 3 characters long`,
		firstMessage(t, models.TaskUpdateRequest{Title: &empty}))
}

func TestMessage_Register(t *testing.T) {
	assert.Equal(t, `"email" must be a valid email`, firstMessage(t, models.UserRegisterRequest{
		Username: "alice", Email: "nope", Password: "password123",
	}))
	assert.Equal(t, `"username" must only contain alpha-numeric characters`, firstMessage(t, models.UserRegisterRequest{
		Username: "al ice", Email: "alice@example.com", Password: "password123",
	}))
}

func TestFieldName_FormTag(t *testing.T) {
	assert.Equal(t, `"status" must be one of [pending, in_progress, completed]`,
		firstMessage(t, models.TaskListQuery{Status: "archived"}))
}
