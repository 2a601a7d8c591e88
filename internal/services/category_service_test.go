package services_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-todo-list/backend/internal/models"
	"go-todo-list/backend/internal/repositories"
	"go-todo-list/backend/testutil"
)

// defaultExists はデフォルトカテゴリの行が存在するかを直接確認します。
func defaultExists(t *testing.T, app *testutil.TestApp, userID int) bool {
	t.Helper()
	var n int
	err := app.DB.QueryRow("SELECT COUNT(*) FROM categories WHERE user_id = ? AND name = ?",
		userID, models.DefaultCategoryName).Scan(&n)
	require.NoError(t, err)
	return n > 0
}

func TestDefaultCategoryGetting(t *testing.T) {
	app := testutil.SetupTestDB(t)
	userID := 1

	_, err := app.CategoryService.GetDefaultCategory(userID)
	require.True(t, errors.Is(err, repositories.ErrCategoryNotFound), "最初はデフォルトカテゴリは存在しない")

	created, err := app.CategoryService.GetOrCreateDefault(userID)
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	assert.Equal(t, models.DefaultCategoryName, created.Name)
	assert.True(t, created.IsDefault())

	got, err := app.CategoryService.GetDefaultCategory(userID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	// 冪等: 2回目は同じ行が返る
	again, err := app.CategoryService.GetOrCreateDefault(userID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)

	require.NoError(t, app.CategoryService.DeleteDefaultIfEmpty(userID))
	_, err = app.CategoryService.GetDefaultCategory(userID)
	assert.True(t, errors.Is(err, repositories.ErrCategoryNotFound))
}

func TestDefaultCategoryCreationDeletion(t *testing.T) {
	app := testutil.SetupTestDB(t)
	userID := 1

	assert.False(t, defaultExists(t, app, userID))

	_, err := app.CategoryService.GetOrCreateDefault(userID)
	require.NoError(t, err)
	assert.True(t, defaultExists(t, app, userID))

	require.NoError(t, app.CategoryService.DeleteDefaultIfEmpty(userID))
	assert.False(t, defaultExists(t, app, userID))

	// 冗長に呼んでも安全
	require.NoError(t, app.CategoryService.DeleteDefaultIfEmpty(userID))
}

func TestDefaultCategoryIsPerUser(t *testing.T) {
	app := testutil.SetupTestDB(t)

	c1, err := app.CategoryService.GetOrCreateDefault(1)
	require.NoError(t, err)
	c2, err := app.CategoryService.GetOrCreateDefault(2)
	require.NoError(t, err)

	assert.NotEqual(t, c1.ID, c2.ID, "ユーザーごとに別のデフォルトカテゴリを持つ")

	// 片方を消してももう片方には影響しない
	require.NoError(t, app.CategoryService.DeleteDefaultIfEmpty(1))
	_, err = app.CategoryService.GetDefaultCategory(2)
	assert.NoError(t, err)
}

func TestCategoryNameUniquePerUserNotGlobal(t *testing.T) {
	app := testutil.SetupTestDB(t)

	// 別ユーザーなら同名カテゴリを作れる
	_, err := app.CategoryService.CreateCategory(1, "Work")
	require.NoError(t, err)
	_, err = app.CategoryService.CreateCategory(2, "Work")
	require.NoError(t, err)

	// 同一ユーザーでの重複は一意制約違反
	_, err = app.CategoryService.CreateCategory(1, "Work")
	assert.True(t, errors.Is(err, repositories.ErrDuplicateCategory))
}

func TestDeleteCategoryReassignsTodos(t *testing.T) {
	app := testutil.SetupTestDB(t)
	userID := 1

	work, err := app.CategoryService.CreateCategory(userID, "Work")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := app.TodoService.CreateTodo(userID, &models.TodoRequest{
			Text:     "task",
			Category: &work.ID,
		})
		require.NoError(t, err)
	}

	require.NoError(t, app.CategoryService.DeleteCategory(userID, work.ID))

	// カテゴリは消え、Todoは全件デフォルトカテゴリに移っている
	_, err = app.CategoryService.GetCategory(userID, work.ID)
	assert.True(t, errors.Is(err, repositories.ErrCategoryNotFound))

	def, err := app.CategoryService.GetDefaultCategory(userID)
	require.NoError(t, err)

	todos, err := app.TodoService.GetTodos(userID, nil)
	require.NoError(t, err)
	require.Len(t, todos, 3)
	for _, todo := range todos {
		assert.Equal(t, def.ID, todo.CategoryID)
	}
}

func TestDeleteEmptyCategoryLeavesNoDefault(t *testing.T) {
	app := testutil.SetupTestDB(t)
	userID := 1

	c, err := app.CategoryService.CreateCategory(userID, "Empty")
	require.NoError(t, err)

	require.NoError(t, app.CategoryService.DeleteCategory(userID, c.ID))

	// 付け替えるTodoが無かったのでデフォルトカテゴリは作られない
	assert.False(t, defaultExists(t, app, userID))
}

func TestDeleteDefaultCategoryWithTodosRecreatesIt(t *testing.T) {
	app := testutil.SetupTestDB(t)
	userID := 1

	// カテゴリ未指定で作成 → デフォルトカテゴリに載る
	todo, err := app.TodoService.CreateTodo(userID, &models.TodoRequest{Text: "orphan-to-be"})
	require.NoError(t, err)

	oldDef, err := app.CategoryService.GetDefaultCategory(userID)
	require.NoError(t, err)
	require.Equal(t, oldDef.ID, todo.CategoryID)

	// デフォルトカテゴリ自身をAPI相当の経路で削除しても、Todoは
	// 新しく作り直されたデフォルトカテゴリに退避される
	require.NoError(t, app.CategoryService.DeleteCategory(userID, oldDef.ID))

	newDef, err := app.CategoryService.GetDefaultCategory(userID)
	require.NoError(t, err)
	assert.NotEqual(t, oldDef.ID, newDef.ID)

	got, err := app.TodoService.GetTodoByID(todo.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, newDef.ID, got.CategoryID)
}
