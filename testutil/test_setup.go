// Package testutil はテスト用のデータベースとルーターのセットアップを提供します。
package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gin-gonic/gin"
	_ "modernc.org/sqlite"

	"go-todo-list/backend/internal/models"
	"go-todo-list/backend/internal/repositories"
	"go-todo-list/backend/internal/routes"
	"go-todo-list/backend/internal/services"
)

// TestApp はテストで使う接続・ルーター・リポジトリ・サービス一式です。
type TestApp struct {
	DB     *sql.DB
	Router *gin.Engine

	UserRepo     *repositories.UserRepository
	CategoryRepo *repositories.CategoryRepository
	TagRepo      *repositories.TagRepository
	TodoRepo     *repositories.TodoRepository

	CategoryService *services.CategoryService
	TodoService     *services.TodoService
}

// SetupTestDB はテスト用のインメモリsqliteデータベースを作成し、テーブルと
// テストユーザーを投入してルーターを組み立てます。MySQLコンテナなしで
// 本物のルーター経由のテストができます。
func SetupTestDB(t *testing.T) *TestApp {
	t.Helper()

	if os.Getenv("JWT_SECRET") == "" {
		os.Setenv("JWT_SECRET", "test-secret")
	}

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open database connection: %v", err)
	}
	// インメモリDBは接続ごとに別物になるため、1接続に固定する
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	createTables(t, db)

	userRepo := repositories.NewUserRepository(db)
	categoryRepo := repositories.NewCategoryRepository(db)
	tagRepo := repositories.NewTagRepository(db)
	todoRepo := repositories.NewTodoRepository(db)

	// テストユーザーの挿入
	CreateTestUser(t, userRepo, "normal_user", "normal_user@example.com", "password123", "UTC")
	CreateTestUser(t, userRepo, "other_user", "other_user@example.com", "password456", "Asia/Tokyo")

	gin.SetMode(gin.TestMode)
	router := routes.SetupRouter(db)

	return &TestApp{
		DB:              db,
		Router:          router,
		UserRepo:        userRepo,
		CategoryRepo:    categoryRepo,
		TagRepo:         tagRepo,
		TodoRepo:        todoRepo,
		CategoryService: services.NewCategoryService(categoryRepo),
		TodoService:     services.NewTodoService(todoRepo, categoryRepo, tagRepo, userRepo),
	}
}

// createTables はsqlite方言でスキーマを作成します。本番のMySQL DDLは
// internal/database 側にあり、列の形は揃えてあります。
func createTables(t *testing.T, db *sql.DB) {
	t.Helper()

	statements := []string{
		`CREATE TABLE users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL UNIQUE,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			timezone TEXT NOT NULL DEFAULT 'UTC',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE categories (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			UNIQUE (user_id, name)
		)`,
		`CREATE TABLE tags (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			color TEXT NOT NULL,
			UNIQUE (user_id, name)
		)`,
		`CREATE TABLE todos (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			category_id INTEGER NOT NULL,
			text TEXT NOT NULL,
			is_done BOOLEAN NOT NULL DEFAULT FALSE,
			deadline DATETIME NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE todo_tags (
			todo_id INTEGER NOT NULL REFERENCES todos(id) ON DELETE CASCADE,
			tag_id INTEGER NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
			UNIQUE (todo_id, tag_id)
		)`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("Failed to create table: %v", err)
		}
	}
}

// CreateTestUser はテスト用のユーザーを作成します。
func CreateTestUser(t *testing.T, userRepo *repositories.UserRepository, username, email, password, timezone string) *models.User {
	t.Helper()

	hashedPassword, err := repositories.HashPassword(password)
	require.NoError(t, err)

	newUser := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
		Timezone:     timezone,
	}
	createdUser, err := userRepo.Create(&newUser)
	require.NoError(t, err)
	require.NotEqual(t, 0, createdUser.ID)
	return createdUser
}

// LoginAndGetToken はログインしてJWTトークンを取り出します。
func LoginAndGetToken(t *testing.T, router *gin.Engine, email, password string) (string, error) {
	t.Helper()

	loginPayload := map[string]string{
		"email":    email,
		"password": password,
	}
	body, _ := json.Marshal(loginPayload)

	req, _ := http.NewRequest(http.MethodPost, "/api/login", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		return "", fmt.Errorf("login failed with status %d: %s", resp.Code, resp.Body.String())
	}

	var loginRes map[string]interface{}
	if err := json.Unmarshal(resp.Body.Bytes(), &loginRes); err != nil {
		return "", fmt.Errorf("failed to unmarshal login response: %w", err)
	}
	token, ok := loginRes["token"].(string)
	if !ok {
		return "", errors.New("token not found or not a string in login response")
	}
	return token, nil
}

// DoJSON は認証付きのJSONリクエストを発行します。
func DoJSON(t *testing.T, router *gin.Engine, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Buffer
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(b)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

// CreateTestCategory はAPI経由でカテゴリを作成します。
func CreateTestCategory(t *testing.T, router *gin.Engine, token, name string) *models.Category {
	t.Helper()

	resp := DoJSON(t, router, http.MethodPost, "/api/categories", token, map[string]string{"name": name})
	require.Equal(t, http.StatusCreated, resp.Code, "カテゴリ作成に失敗しました: %s", resp.Body.String())

	var created models.Category
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))
	return &created
}

// CreateTestTag はAPI経由でタグを作成します。
func CreateTestTag(t *testing.T, router *gin.Engine, token, name, color string) *models.Tag {
	t.Helper()

	resp := DoJSON(t, router, http.MethodPost, "/api/tags", token, map[string]string{"name": name, "color": color})
	require.Equal(t, http.StatusCreated, resp.Code, "タグ作成に失敗しました: %s", resp.Body.String())

	var created models.Tag
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))
	return &created
}

// CreateTestTodo はAPI経由でTodoを作成します。
func CreateTestTodo(t *testing.T, router *gin.Engine, token string, payload map[string]interface{}) *models.Todo {
	t.Helper()

	resp := DoJSON(t, router, http.MethodPost, "/api/todos", token, payload)
	require.Equal(t, http.StatusCreated, resp.Code, "TODO作成に失敗しました: %s", resp.Body.String())

	var created models.Todo
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))
	return &created
}
