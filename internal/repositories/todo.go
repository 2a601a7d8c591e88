package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"go-todo-list/backend/internal/models"
)

// TodoQuery はTodo一覧の絞り込み条件をSQLに落とす直前の形で表します。
// 締め切りの範囲はサービス層がユーザーのタイムゾーンで解決済みです。
type TodoQuery struct {
	Done         *bool
	CategoryID   *int
	TagIDs       []int // 積条件。各IDごとに絞り込みが重なる
	NoDeadline   bool
	DeadlineFrom *time.Time
	DeadlineTo   *time.Time // 排他的上限
}

// TodoRepository はTodoのデータベース操作を行うための構造体です。
type TodoRepository struct {
	DB *sql.DB
}

// NewTodoRepository は新しいTodoRepositoryインスタンスを作成します。
func NewTodoRepository(db *sql.DB) *TodoRepository {
	return &TodoRepository{DB: db}
}

// 締め切りはドライバ間で比較が安定するようUTCに正規化して保存する。
func deadlineArg(deadline *time.Time) interface{} {
	if deadline == nil {
		return nil
	}
	utc := deadline.UTC()
	return utc
}

// Create は新しいTodoをデータベースに挿入し、タグ関連も同じ
// トランザクション内で張ります。タグ付けに失敗したらTodo本体も
// 巻き戻るため、タグ無しの行が残ることはありません。
// CategoryID は呼び出し側（サービス層）が解決済みであることが前提です。
func (r *TodoRepository) Create(t *models.Todo, tagIDs []int) (*models.Todo, error) {
	now := time.Now().UTC()
	tx, err := r.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := "INSERT INTO todos (user_id, category_id, text, is_done, deadline, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)"
	result, err := tx.Exec(query, t.UserID, t.CategoryID, t.Text, t.IsDone, deadlineArg(t.Deadline), now, now)
	if err != nil {
		log.Printf("Failed to insert todo: %v", err)
		return nil, fmt.Errorf("could not insert todo: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("could not get last insert ID: %w", err)
	}
	if err := replaceTags(tx, int(id), tagIDs); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("could not commit todo insert: %w", err)
	}

	t.ID = int(id)
	t.CreatedAt = now
	t.UpdatedAt = now
	if t.Tags == nil {
		t.Tags = []models.Tag{}
	}
	return t, nil
}

// FindByID は指定IDのTodoをタグ付きで取得します。所有者の確認は
// サービス層が UserID を見て行います。
func (r *TodoRepository) FindByID(id int) (*models.Todo, error) {
	query := "SELECT id, user_id, category_id, text, is_done, deadline, created_at, updated_at FROM todos WHERE id = ?"
	t, err := scanTodo(r.DB.QueryRow(query, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadTags([]*models.Todo{t}); err != nil {
		return nil, err
	}
	return t, nil
}

func scanTodo(row *sql.Row) (*models.Todo, error) {
	var t models.Todo
	var deadline sql.NullTime
	err := row.Scan(&t.ID, &t.UserID, &t.CategoryID, &t.Text, &t.IsDone, &deadline, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTodoNotFound
		}
		log.Printf("Failed to query todo by ID: %v", err)
		return nil, fmt.Errorf("could not query todo: %w", err)
	}
	if deadline.Valid {
		d := deadline.Time.UTC()
		t.Deadline = &d
	}
	t.Tags = []models.Tag{}
	return &t, nil
}

// FindByUser はユーザーのTodoを条件付きで取得します。条件はすべて
// 「リクエストユーザーの所有」という暗黙の条件の上に重なります。
// タグの積条件は EXISTS をタグごとに重ねて表現します。
// 結果のタグはまとめて1クエリで読み込みます（行ごとの追加クエリなし）。
func (r *TodoRepository) FindByUser(userID int, q *TodoQuery) ([]*models.Todo, error) {
	query := "SELECT id, user_id, category_id, text, is_done, deadline, created_at, updated_at FROM todos WHERE user_id = ?"
	args := []interface{}{userID}

	if q != nil {
		if q.Done != nil {
			query += " AND is_done = ?"
			args = append(args, *q.Done)
		}
		if q.CategoryID != nil {
			query += " AND category_id = ?"
			args = append(args, *q.CategoryID)
		}
		for _, tagID := range q.TagIDs {
			query += " AND EXISTS (SELECT 1 FROM todo_tags WHERE todo_tags.todo_id = todos.id AND todo_tags.tag_id = ?)"
			args = append(args, tagID)
		}
		if q.NoDeadline {
			query += " AND deadline IS NULL"
		}
		if q.DeadlineFrom != nil {
			query += " AND deadline >= ?"
			args = append(args, q.DeadlineFrom.UTC())
		}
		if q.DeadlineTo != nil {
			query += " AND deadline < ?"
			args = append(args, q.DeadlineTo.UTC())
		}
	}
	query += " ORDER BY id"

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		log.Printf("Failed to query todos: %v", err)
		return nil, fmt.Errorf("could not query todos: %w", err)
	}
	defer rows.Close()

	todos := []*models.Todo{}
	for rows.Next() {
		var t models.Todo
		var deadline sql.NullTime
		err := rows.Scan(&t.ID, &t.UserID, &t.CategoryID, &t.Text, &t.IsDone, &deadline, &t.CreatedAt, &t.UpdatedAt)
		if err != nil {
			log.Printf("Failed to scan todo: %v", err)
			return nil, fmt.Errorf("could not scan todo: %w", err)
		}
		if deadline.Valid {
			d := deadline.Time.UTC()
			t.Deadline = &d
		}
		t.Tags = []models.Tag{}
		todos = append(todos, &t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating todos: %w", err)
	}

	if err := r.loadTags(todos); err != nil {
		return nil, err
	}
	return todos, nil
}

// loadTags は複数Todoのタグを1クエリでまとめて読み込みます。
func (r *TodoRepository) loadTags(todos []*models.Todo) error {
	if len(todos) == 0 {
		return nil
	}

	byID := make(map[int]*models.Todo, len(todos))
	placeholders := make([]string, 0, len(todos))
	args := make([]interface{}, 0, len(todos))
	for _, t := range todos {
		byID[t.ID] = t
		placeholders = append(placeholders, "?")
		args = append(args, t.ID)
	}

	query := fmt.Sprintf(`SELECT tt.todo_id, t.id, t.user_id, t.name, t.color
		FROM todo_tags tt
		JOIN tags t ON t.id = tt.tag_id
		WHERE tt.todo_id IN (%s)
		ORDER BY t.id`, strings.Join(placeholders, ","))

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		log.Printf("Failed to query todo tags: %v", err)
		return fmt.Errorf("could not query todo tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var todoID int
		var tag models.Tag
		if err := rows.Scan(&todoID, &tag.ID, &tag.UserID, &tag.Name, &tag.Color); err != nil {
			return fmt.Errorf("could not scan todo tag: %w", err)
		}
		if t, ok := byID[todoID]; ok {
			t.Tags = append(t.Tags, tag)
		}
	}
	return rows.Err()
}

// Update は指定IDのTodoを更新し、タグ関連を入れ替えます。
// Create と同様、本体とタグは1トランザクションで書き込みます。
func (r *TodoRepository) Update(id int, t *models.Todo, tagIDs []int) (*models.Todo, error) {
	now := time.Now().UTC()
	tx, err := r.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := "UPDATE todos SET category_id = ?, text = ?, is_done = ?, deadline = ?, updated_at = ? WHERE id = ?"
	if _, err := tx.Exec(query, t.CategoryID, t.Text, t.IsDone, deadlineArg(t.Deadline), now, id); err != nil {
		log.Printf("Failed to update todo: %v", err)
		return nil, fmt.Errorf("could not update todo: %w", err)
	}
	if err := replaceTags(tx, id, tagIDs); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("could not commit todo update: %w", err)
	}
	return r.FindByID(id)
}

// UpdateCategory はTodoのカテゴリ参照だけを付け替えます。
func (r *TodoRepository) UpdateCategory(id, categoryID int) error {
	query := "UPDATE todos SET category_id = ?, updated_at = ? WHERE id = ?"
	if _, err := r.DB.Exec(query, categoryID, time.Now().UTC(), id); err != nil {
		log.Printf("Failed to update todo category: %v", err)
		return fmt.Errorf("could not update todo category: %w", err)
	}
	return nil
}

// replaceTags はTodoのタグ関連をまるごと入れ替えます。Todo本体の
// 書き込みと同じトランザクション内で呼ばれます。tagIDs は呼び出し側で
// 重複が取り除かれていることが前提です。
func replaceTags(db dbtx, todoID int, tagIDs []int) error {
	if _, err := db.Exec("DELETE FROM todo_tags WHERE todo_id = ?", todoID); err != nil {
		log.Printf("Failed to clear todo tags: %v", err)
		return fmt.Errorf("could not clear todo tags: %w", err)
	}
	for _, tagID := range tagIDs {
		if _, err := db.Exec("INSERT INTO todo_tags (todo_id, tag_id) VALUES (?, ?)", todoID, tagID); err != nil {
			log.Printf("Failed to attach tag %d to todo %d: %v", tagID, todoID, err)
			return fmt.Errorf("could not attach tag: %w", err)
		}
	}
	return nil
}

// Delete は指定IDのTodoを削除します。
func (r *TodoRepository) Delete(id int) error {
	result, err := r.DB.Exec("DELETE FROM todos WHERE id = ?", id)
	if err != nil {
		log.Printf("Failed to delete todo: %v", err)
		return fmt.Errorf("could not delete todo: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrTodoNotFound
	}
	return nil
}
