package repositories_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-manager-api/internal/apperror"
	"task-manager-api/internal/models"
	"task-manager-api/internal/repositories"
	"task-manager-api/testutil"
)

func createUser(t *testing.T, repo *repositories.UserRepository, name string) *models.User {
	t.Helper()
	hash, err := repositories.HashPassword("password123")
	require.NoError(t, err)
	u, err := repo.Create(context.Background(), &models.User{Username: name, Email: name + "@example.com", PasswordHash: hash})
	require.NoError(t, err)
	require.NotZero(t, u.ID)
	return u
}

func strPtr(s string) *string { return &s }

func TestUserRepository_DuplicateIsUniqueViolation(t *testing.T) {
	db, dialect := testutil.SetupTestDB(t)
	repo := repositories.NewUserRepository(db, dialect)
	createUser(t, repo, "alice")

	_, err := repo.Create(context.Background(), &models.User{Username: "alice", Email: "other@example.com", PasswordHash: "x"})
	require.Error(t, err)
	assert.Equal(t, apperror.KindUniqueViolation, apperror.KindOf(err))

	found, err := repo.FindByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice", found.Username)

	_, err = repo.FindByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, repositories.ErrUserNotFound)
}

func TestTaskRepository_CRUDIsScopedByUser(t *testing.T) {
	db, dialect := testutil.SetupTestDB(t)
	users := repositories.NewUserRepository(db, dialect)
	repo := repositories.NewTaskRepository(db, dialect)
	ctx := context.Background()

	alice := createUser(t, users, "alice")
	bob := createUser(t, users, "bob")

	task, err := repo.Create(ctx, &models.Task{UserID: alice.ID, Title: "Buy milk", Status: models.StatusPending})
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", task.Title)
	assert.Nil(t, task.Description)

	_, err = repo.FindByID(ctx, task.ID, bob.ID)
	assert.ErrorIs(t, err, repositories.ErrTaskNotFound)

	status := models.StatusCompleted
	updated, err := repo.Update(ctx, task.ID, alice.ID, models.TaskUpdateRequest{Status: &status, Description: strPtr("2 liters")})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, updated.Status)
	assert.Equal(t, "Buy milk", updated.Title)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "2 liters", *updated.Description)

	// 値が変わらない更新でも見つかった扱いになる
	updated, err = repo.Update(ctx, task.ID, alice.ID, models.TaskUpdateRequest{Status: &status})
	require.NoError(t, err)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "2 liters", *updated.Description)

	updated, err = repo.Update(ctx, task.ID, alice.ID, models.TaskUpdateRequest{DescriptionSet: true})
	require.NoError(t, err)
	assert.Nil(t, updated.Description)
	assert.Equal(t, models.StatusCompleted, updated.Status)

	_, err = repo.Update(ctx, task.ID, bob.ID, models.TaskUpdateRequest{Status: &status})
	assert.ErrorIs(t, err, repositories.ErrTaskNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, task.ID, bob.ID), repositories.ErrTaskNotFound)
	require.NoError(t, repo.Delete(ctx, task.ID, alice.ID))
	assert.ErrorIs(t, repo.Delete(ctx, task.ID, alice.ID), repositories.ErrTaskNotFound)
}

func TestTaskRepository_ListMatchesCount(t *testing.T) {
	db, dialect := testutil.SetupTestDB(t)
	users := repositories.NewUserRepository(db, dialect)
	repo := repositories.NewTaskRepository(db, dialect)
	ctx := context.Background()

	alice := createUser(t, users, "alice")
	bob := createUser(t, users, "bob")

	for i := range 7 {
		status := models.StatusPending
		if i%2 == 0 {
			status = models.StatusCompleted
		}
		_, err := repo.Create(ctx, &models.Task{UserID: alice.ID, Title: fmt.Sprintf("Milk run %d", i), Status: status})
		require.NoError(t, err)
	}
	_, err := repo.Create(ctx, &models.Task{UserID: alice.ID, Title: "Pay rent", Description: strPtr("100% due"), Status: models.StatusPending})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &models.Task{UserID: bob.ID, Title: "Bob milk", Status: models.StatusPending})
	require.NoError(t, err)

	tests := []struct {
		status, search string
		want           int64
	}{
		{"", "", 8},
		{"completed", "", 4},
		{"", "MILK", 7},
		{"pending", "milk", 3},
		{"", "100%", 1},
		{"", "%", 1},
		{"", "_", 0},
	}
	for _, tt := range tests {
		t.Run(tt.status+"/"+tt.search, func(t *testing.T) {
			var seen int
			for page := 1; ; page++ {
				f := repositories.NewTaskFilter(alice.ID, fmt.Sprint(page), "3", tt.status, tt.search)
				tasks, total, err := repo.List(ctx, f)
				require.NoError(t, err)
				assert.Equal(t, tt.want, total)
				for _, task := range tasks {
					assert.Equal(t, alice.ID, task.UserID)
				}
				seen += len(tasks)
				if len(tasks) < 3 {
					break
				}
			}
			assert.EqualValues(t, tt.want, seen, "rows across pages equal count")
		})
	}
}

func TestTaskRepository_StatsEmptyAndCounts(t *testing.T) {
	db, dialect := testutil.SetupTestDB(t)
	users := repositories.NewUserRepository(db, dialect)
	repo := repositories.NewTaskRepository(db, dialect)
	ctx := context.Background()
	alice := createUser(t, users, "alice")

	stats, err := repo.Stats(ctx, alice.ID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, models.TaskStats{}, *stats)

	_, err = repo.Create(ctx, &models.Task{UserID: alice.ID, Title: "one", Status: models.StatusInProgress})
	require.NoError(t, err)

	stats, err = repo.Stats(ctx, alice.ID, time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.Total)
	assert.EqualValues(t, 1, stats.InProgress)
	assert.EqualValues(t, 1, stats.Last7Days)
}
