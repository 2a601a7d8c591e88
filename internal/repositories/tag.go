package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"go-todo-list/backend/internal/models"
)

// TagRepository はタグのデータベース操作を行うための構造体です。
type TagRepository struct {
	DB *sql.DB
}

// NewTagRepository は新しいTagRepositoryインスタンスを作成します。
func NewTagRepository(db *sql.DB) *TagRepository {
	return &TagRepository{DB: db}
}

// Create は新しいタグをデータベースに挿入します。
// (user_id, name) の一意制約違反は ErrDuplicateTag を返します。
func (r *TagRepository) Create(t *models.Tag) (*models.Tag, error) {
	query := "INSERT INTO tags (user_id, name, color) VALUES (?, ?, ?)"
	result, err := r.DB.Exec(query, t.UserID, t.Name, t.Color)
	if err != nil {
		if isDuplicateEntry(err) {
			return nil, ErrDuplicateTag
		}
		log.Printf("Failed to insert tag: %v", err)
		return nil, fmt.Errorf("could not insert tag: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("could not get last insert ID: %w", err)
	}
	t.ID = int(id)
	return t, nil
}

// FindAllByUser はユーザーのすべてのタグを取得します。
func (r *TagRepository) FindAllByUser(userID int) ([]*models.Tag, error) {
	query := "SELECT id, user_id, name, color FROM tags WHERE user_id = ? ORDER BY id"
	rows, err := r.DB.Query(query, userID)
	if err != nil {
		log.Printf("Failed to query tags: %v", err)
		return nil, fmt.Errorf("could not query tags: %w", err)
	}
	defer rows.Close()

	tags := []*models.Tag{}
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.UserID, &t.Name, &t.Color); err != nil {
			return nil, fmt.Errorf("could not scan tag: %w", err)
		}
		tags = append(tags, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tags: %w", err)
	}
	return tags, nil
}

// FindByID は指定IDのタグをユーザースコープで取得します。
func (r *TagRepository) FindByID(userID, id int) (*models.Tag, error) {
	query := "SELECT id, user_id, name, color FROM tags WHERE id = ? AND user_id = ?"
	var t models.Tag
	err := r.DB.QueryRow(query, id, userID).Scan(&t.ID, &t.UserID, &t.Name, &t.Color)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTagNotFound
		}
		log.Printf("Failed to query tag by ID: %v", err)
		return nil, fmt.Errorf("could not query tag: %w", err)
	}
	return &t, nil
}

// FindByIDs は指定IDのタグをすべてユーザースコープで取得します。
// ひとつでも解決できないIDがあれば ErrTagNotFound を返します。
// 他ユーザーのタグをTodoに付けられないことはここで保証されます。
func (r *TagRepository) FindByIDs(userID int, ids []int) ([]models.Tag, error) {
	if len(ids) == 0 {
		return []models.Tag{}, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	query := fmt.Sprintf("SELECT id, user_id, name, color FROM tags WHERE user_id = ? AND id IN (%s) ORDER BY id", placeholders)

	args := make([]interface{}, 0, len(ids)+1)
	args = append(args, userID)
	seen := map[int]bool{}
	for _, id := range ids {
		args = append(args, id)
		seen[id] = false
	}

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		log.Printf("Failed to query tags by IDs: %v", err)
		return nil, fmt.Errorf("could not query tags: %w", err)
	}
	defer rows.Close()

	tags := []models.Tag{}
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.UserID, &t.Name, &t.Color); err != nil {
			return nil, fmt.Errorf("could not scan tag: %w", err)
		}
		tags = append(tags, t)
		seen[t.ID] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tags: %w", err)
	}

	for _, found := range seen {
		if !found {
			return nil, ErrTagNotFound
		}
	}
	return tags, nil
}

// Update はタグの名前と色を変更します。
func (r *TagRepository) Update(userID, id int, name, color string) (*models.Tag, error) {
	if _, err := r.FindByID(userID, id); err != nil {
		return nil, err
	}
	query := "UPDATE tags SET name = ?, color = ? WHERE id = ? AND user_id = ?"
	if _, err := r.DB.Exec(query, name, color, id, userID); err != nil {
		if isDuplicateEntry(err) {
			return nil, ErrDuplicateTag
		}
		log.Printf("Failed to update tag: %v", err)
		return nil, fmt.Errorf("could not update tag: %w", err)
	}
	return r.FindByID(userID, id)
}

// Delete は指定IDのタグを削除します。todo_tags の関連行は
// 外部キーのカスケードで一緒に消えます。
func (r *TagRepository) Delete(userID, id int) error {
	result, err := r.DB.Exec("DELETE FROM tags WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		log.Printf("Failed to delete tag: %v", err)
		return fmt.Errorf("could not delete tag: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if n == 0 {
		return ErrTagNotFound
	}
	return nil
}
