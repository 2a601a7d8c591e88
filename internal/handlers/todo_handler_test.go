package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-todo-list/backend/internal/models"
	"go-todo-list/backend/testutil"
)

func listTodos(t *testing.T, app *testutil.TestApp, token, query string) []models.Todo {
	t.Helper()
	resp := testutil.DoJSON(t, app.Router, http.MethodGet, "/api/todos"+query, token, nil)
	require.Equal(t, http.StatusOK, resp.Code, "一覧取得に失敗しました: %s", resp.Body.String())
	var todos []models.Todo
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &todos))
	return todos
}

func todoIDs(todos []models.Todo) []int {
	ids := make([]int, 0, len(todos))
	for _, td := range todos {
		ids = append(ids, td.ID)
	}
	return ids
}

func TestCreateTodo_DefaultCategory(t *testing.T) {
	app := testutil.SetupTestDB(t)

	token, err := testutil.LoginAndGetToken(t, app.Router, "normal_user@example.com", "password123")
	require.NoError(t, err)

	created := testutil.CreateTestTodo(t, app.Router, token, map[string]interface{}{
		"text": "no category given",
	})
	assert.NotZero(t, created.ID)
	assert.NotZero(t, created.CategoryID, "カテゴリ未指定でも必ずカテゴリが付く")
	assert.Equal(t, 1, created.UserID)
	assert.Equal(t, []models.Tag{}, created.Tags)

	def, err := app.CategoryService.GetDefaultCategory(1)
	require.NoError(t, err)
	assert.Equal(t, def.ID, created.CategoryID)
}

func TestGetTodos_OnlyDoneFilter(t *testing.T) {
	app := testutil.SetupTestDB(t)
	token, err := testutil.LoginAndGetToken(t, app.Router, "normal_user@example.com", "password123")
	require.NoError(t, err)

	done := testutil.CreateTestTodo(t, app.Router, token, map[string]interface{}{"text": "done", "is_done": true})
	open := testutil.CreateTestTodo(t, app.Router, token, map[string]interface{}{"text": "open", "is_done": false})

	assert.Equal(t, []int{done.ID}, todoIDs(listTodos(t, app, token, "?only_done=1")))
	assert.Equal(t, []int{open.ID}, todoIDs(listTodos(t, app, token, "?only_done=0")))
	assert.Len(t, listTodos(t, app, token, ""), 2)
}

func TestGetTodos_CategoryFilter(t *testing.T) {
	app := testutil.SetupTestDB(t)
	token, err := testutil.LoginAndGetToken(t, app.Router, "normal_user@example.com", "password123")
	require.NoError(t, err)

	work := testutil.CreateTestCategory(t, app.Router, token, "Work")
	home := testutil.CreateTestCategory(t, app.Router, token, "Home")

	inWork := testutil.CreateTestTodo(t, app.Router, token, map[string]interface{}{"text": "w", "category": work.ID})
	testutil.CreateTestTodo(t, app.Router, token, map[string]interface{}{"text": "h", "category": home.ID})

	got := listTodos(t, app, token, fmt.Sprintf("?category=%d", work.ID))
	assert.Equal(t, []int{inWork.ID}, todoIDs(got))
}

func TestGetTodos_TagFilterIsConjunctive(t *testing.T) {
	app := testutil.SetupTestDB(t)
	token, err := testutil.LoginAndGetToken(t, app.Router, "normal_user@example.com", "password123")
	require.NoError(t, err)

	urgent := testutil.CreateTestTag(t, app.Router, token, "urgent", "ff0000")
	later := testutil.CreateTestTag(t, app.Router, token, "later", "00ff00")

	both := testutil.CreateTestTodo(t, app.Router, token, map[string]interface{}{
		"text": "both tags", "tags": []int{urgent.ID, later.ID},
	})
	onlyUrgent := testutil.CreateTestTodo(t, app.Router, token, map[string]interface{}{
		"text": "urgent only", "tags": []int{urgent.ID},
	})
	testutil.CreateTestTodo(t, app.Router, token, map[string]interface{}{"text": "untagged"})

	// 単一タグ
	got := listTodos(t, app, token, fmt.Sprintf("?tags=%d", urgent.ID))
	assert.ElementsMatch(t, []int{both.ID, onlyUrgent.ID}, todoIDs(got))

	// 複数タグは積条件: 両方を持つTodoだけが残る（和ではない）
	got = listTodos(t, app, token, fmt.Sprintf("?tags=%d&tags=%d", urgent.ID, later.ID))
	assert.Equal(t, []int{both.ID}, todoIDs(got))
}

func TestGetTodos_TagsArePreloaded(t *testing.T) {
	app := testutil.SetupTestDB(t)
	token, err := testutil.LoginAndGetToken(t, app.Router, "normal_user@example.com", "password123")
	require.NoError(t, err)

	urgent := testutil.CreateTestTag(t, app.Router, token, "urgent", "ff0000")
	testutil.CreateTestTodo(t, app.Router, token, map[string]interface{}{
		"text": "tagged", "tags": []int{urgent.ID},
	})
	testutil.CreateTestTodo(t, app.Router, token, map[string]interface{}{"text": "untagged"})

	todos := listTodos(t, app, token, "")
	require.Len(t, todos, 2)
	assert.Len(t, todos[0].Tags, 1)
	assert.Equal(t, "urgent", todos[0].Tags[0].Name)
	assert.Equal(t, "ff0000", todos[0].Tags[0].Color)
	assert.Empty(t, todos[1].Tags)
}

func TestGetTodos_ByDateNone(t *testing.T) {
	app := testutil.SetupTestDB(t)
	token, err := testutil.LoginAndGetToken(t, app.Router, "normal_user@example.com", "password123")
	require.NoError(t, err)

	noDeadline := testutil.CreateTestTodo(t, app.Router, token, map[string]interface{}{"text": "someday"})
	testutil.CreateTestTodo(t, app.Router, token, map[string]interface{}{
		"text": "scheduled", "deadline": time.Now().UTC().Format(time.RFC3339),
	})

	got := listTodos(t, app, token, "?by_date=none")
	assert.Equal(t, []int{noDeadline.ID}, todoIDs(got))
}

func TestGetTodos_ByDateToday(t *testing.T) {
	app := testutil.SetupTestDB(t)
	token, err := testutil.LoginAndGetToken(t, app.Router, "normal_user@example.com", "password123")
	require.NoError(t, err)

	now := time.Now().UTC()
	today := testutil.CreateTestTodo(t, app.Router, token, map[string]interface{}{
		"text": "today", "deadline": now.Format(time.RFC3339),
	})
	yesterday := testutil.CreateTestTodo(t, app.Router, token, map[string]interface{}{
		"text": "overdue", "deadline": now.AddDate(0, 0, -2).Format(time.RFC3339),
	})
	testutil.CreateTestTodo(t, app.Router, token, map[string]interface{}{
		"text": "next month", "deadline": now.AddDate(0, 1, 0).Format(time.RFC3339),
	})
	testutil.CreateTestTodo(t, app.Router, token, map[string]interface{}{"text": "no deadline"})

	// todayは「今日の終わりまで」なので過去の締め切りも含む
	got := listTodos(t, app, token, "?by_date=today")
	assert.ElementsMatch(t, []int{today.ID, yesterday.ID}, todoIDs(got))

	// only_one_day=1 で「今日その日だけ」に絞る
	got = listTodos(t, app, token, "?by_date=today&only_one_day=1")
	assert.Equal(t, []int{today.ID}, todoIDs(got))
}

func TestGetTodos_ByDateWeek(t *testing.T) {
	app := testutil.SetupTestDB(t)
	token, err := testutil.LoginAndGetToken(t, app.Router, "normal_user@example.com", "password123")
	require.NoError(t, err)

	now := time.Now().UTC()
	inWeek := testutil.CreateTestTodo(t, app.Router, token, map[string]interface{}{
		"text": "in a week", "deadline": now.AddDate(0, 0, 6).Format(time.RFC3339),
	})
	testutil.CreateTestTodo(t, app.Router, token, map[string]interface{}{
		"text": "far away", "deadline": now.AddDate(0, 0, 30).Format(time.RFC3339),
	})

	got := listTodos(t, app, token, "?by_date=week")
	assert.Equal(t, []int{inWeek.ID}, todoIDs(got))
}

func TestGetTodos_ByDateLiteral(t *testing.T) {
	app := testutil.SetupTestDB(t)
	token, err := testutil.LoginAndGetToken(t, app.Router, "normal_user@example.com", "password123")
	require.NoError(t, err)

	deadline := time.Date(2030, 6, 15, 12, 0, 0, 0, time.UTC)
	target := testutil.CreateTestTodo(t, app.Router, token, map[string]interface{}{
		"text": "on the day", "deadline": deadline.Format(time.RFC3339),
	})
	testutil.CreateTestTodo(t, app.Router, token, map[string]interface{}{
		"text": "after the day", "deadline": deadline.AddDate(0, 0, 5).Format(time.RFC3339),
	})

	got := listTodos(t, app, token, "?by_date=2030-06-15")
	assert.Equal(t, []int{target.ID}, todoIDs(got))
}

func TestGetTodos_InvalidParamsRejected(t *testing.T) {
	app := testutil.SetupTestDB(t)
	token, err := testutil.LoginAndGetToken(t, app.Router, "normal_user@example.com", "password123")
	require.NoError(t, err)

	// 不正な値は黙って無視せず、パラメータ名付きで拒否する
	cases := map[string]string{
		"?only_done=yes":                "only_done",
		"?category=abc":                 "category",
		"?tags=1&tags=xyz":              "tags",
		"?by_date=notaday":              "by_date",
		"?by_date=today&only_one_day=2": "only_one_day",
		"?only_one_day=1":               "only_one_day", // 日付窓なしでは意味を持てない
	}
	for query, param := range cases {
		resp := testutil.DoJSON(t, app.Router, http.MethodGet, "/api/todos"+query, token, nil)
		require.Equal(t, http.StatusBadRequest, resp.Code, "query %s", query)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
		assert.Equal(t, param, body["param"], "query %s", query)
	}
}

func TestGetTodos_CrossUserInvisible(t *testing.T) {
	app := testutil.SetupTestDB(t)

	tokenA, err := testutil.LoginAndGetToken(t, app.Router, "normal_user@example.com", "password123")
	require.NoError(t, err)
	tokenB, err := testutil.LoginAndGetToken(t, app.Router, "other_user@example.com", "password456")
	require.NoError(t, err)

	mine := testutil.CreateTestTodo(t, app.Router, tokenA, map[string]interface{}{"text": "mine"})
	testutil.CreateTestTodo(t, app.Router, tokenB, map[string]interface{}{"text": "theirs"})

	// 一覧は自分の行だけ。細工したパラメータでも他人の行は出ない
	assert.Equal(t, []int{mine.ID}, todoIDs(listTodos(t, app, tokenA, "")))
	assert.Equal(t, []int{mine.ID}, todoIDs(listTodos(t, app, tokenA, fmt.Sprintf("?category=%d", mine.CategoryID))))

	// ID直打ちも404で、存在の有無は漏れない
	theirs := listTodos(t, app, tokenB, "")
	require.Len(t, theirs, 1)
	resp := testutil.DoJSON(t, app.Router, http.MethodGet, fmt.Sprintf("/api/todos/%d", theirs[0].ID), tokenA, nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestUpdateTodo_ForeignTagRejected(t *testing.T) {
	app := testutil.SetupTestDB(t)

	tokenA, err := testutil.LoginAndGetToken(t, app.Router, "normal_user@example.com", "password123")
	require.NoError(t, err)
	tokenB, err := testutil.LoginAndGetToken(t, app.Router, "other_user@example.com", "password456")
	require.NoError(t, err)

	foreignTag := testutil.CreateTestTag(t, app.Router, tokenB, "foreign", "123abc")
	todo := testutil.CreateTestTodo(t, app.Router, tokenA, map[string]interface{}{"text": "mine"})

	resp := testutil.DoJSON(t, app.Router, http.MethodPut, fmt.Sprintf("/api/todos/%d", todo.ID), tokenA, map[string]interface{}{
		"text": "mine",
		"tags": []int{foreignTag.ID},
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestGetTodos_Unauthenticated(t *testing.T) {
	app := testutil.SetupTestDB(t)

	resp := testutil.DoJSON(t, app.Router, http.MethodGet, "/api/todos", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}
