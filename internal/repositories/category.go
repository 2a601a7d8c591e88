package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"go-todo-list/backend/internal/models"
)

// CategoryRepository はカテゴリのデータベース操作を行うための構造体です。
// デフォルトカテゴリのライフサイクル（必要になったら作成し、参照が
// なくなったら削除する）の実体もここにあります。
type CategoryRepository struct {
	DB *sql.DB
}

// NewCategoryRepository は新しいCategoryRepositoryインスタンスを作成します。
func NewCategoryRepository(db *sql.DB) *CategoryRepository {
	return &CategoryRepository{DB: db}
}

// Create は新しいカテゴリをデータベースに挿入します。
// (user_id, name) の一意制約違反は ErrDuplicateCategory を返します。
func (r *CategoryRepository) Create(c *models.Category) (*models.Category, error) {
	return createCategory(r.DB, c)
}

func createCategory(db dbtx, c *models.Category) (*models.Category, error) {
	query := "INSERT INTO categories (user_id, name) VALUES (?, ?)"
	result, err := db.Exec(query, c.UserID, c.Name)
	if err != nil {
		if isDuplicateEntry(err) {
			return nil, ErrDuplicateCategory
		}
		log.Printf("Failed to insert category: %v", err)
		return nil, fmt.Errorf("could not insert category: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("could not get last insert ID: %w", err)
	}
	c.ID = int(id)
	return c, nil
}

// FindAllByUser はユーザーのすべてのカテゴリを取得します。
func (r *CategoryRepository) FindAllByUser(userID int) ([]*models.Category, error) {
	query := "SELECT id, user_id, name FROM categories WHERE user_id = ? ORDER BY id"
	rows, err := r.DB.Query(query, userID)
	if err != nil {
		log.Printf("Failed to query categories: %v", err)
		return nil, fmt.Errorf("could not query categories: %w", err)
	}
	defer rows.Close()

	categories := []*models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name); err != nil {
			return nil, fmt.Errorf("could not scan category: %w", err)
		}
		categories = append(categories, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}
	return categories, nil
}

// FindByID は指定IDのカテゴリをユーザースコープで取得します。
// 他ユーザーの行は存在しないものとして ErrCategoryNotFound になります。
func (r *CategoryRepository) FindByID(userID, id int) (*models.Category, error) {
	query := "SELECT id, user_id, name FROM categories WHERE id = ? AND user_id = ?"
	var c models.Category
	err := r.DB.QueryRow(query, id, userID).Scan(&c.ID, &c.UserID, &c.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		log.Printf("Failed to query category by ID: %v", err)
		return nil, fmt.Errorf("could not query category: %w", err)
	}
	return &c, nil
}

func findCategoryByName(db dbtx, userID int, name string) (*models.Category, error) {
	query := "SELECT id, user_id, name FROM categories WHERE user_id = ? AND name = ?"
	var c models.Category
	err := db.QueryRow(query, userID, name).Scan(&c.ID, &c.UserID, &c.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("could not query category: %w", err)
	}
	return &c, nil
}

// Update はカテゴリ名を変更します。
func (r *CategoryRepository) Update(userID, id int, name string) (*models.Category, error) {
	if _, err := r.FindByID(userID, id); err != nil {
		return nil, err
	}
	query := "UPDATE categories SET name = ? WHERE id = ? AND user_id = ?"
	if _, err := r.DB.Exec(query, name, id, userID); err != nil {
		if isDuplicateEntry(err) {
			return nil, ErrDuplicateCategory
		}
		log.Printf("Failed to update category: %v", err)
		return nil, fmt.Errorf("could not update category: %w", err)
	}
	return r.FindByID(userID, id)
}

// GetOrCreateDefault はユーザーのデフォルトカテゴリを返します。
// 無ければ作成します。同時に作成が走った場合は一意制約が勝敗を決め、
// 負けた側は既存行を取り直します。呼び出し側にエラーは漏れません。
func (r *CategoryRepository) GetOrCreateDefault(userID int) (*models.Category, error) {
	return getOrCreateDefault(r.DB, userID)
}

func getOrCreateDefault(db dbtx, userID int) (*models.Category, error) {
	c, err := findCategoryByName(db, userID, models.DefaultCategoryName)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, ErrCategoryNotFound) {
		return nil, err
	}

	created, err := createCategory(db, &models.Category{UserID: userID, Name: models.DefaultCategoryName})
	if errors.Is(err, ErrDuplicateCategory) {
		// 作成レースに負けた。勝者の行を取り直す。
		return findCategoryByName(db, userID, models.DefaultCategoryName)
	}
	return created, err
}

// GetDefault はデフォルトカテゴリを取得だけ行います。作成はしません。
// 存在しない場合は ErrCategoryNotFound を返します。
func (r *CategoryRepository) GetDefault(userID int) (*models.Category, error) {
	return findCategoryByName(r.DB, userID, models.DefaultCategoryName)
}

// DeleteDefaultIfEmpty は参照するTodoが無ければデフォルトカテゴリを
// 削除します。存在しない・空でない場合は何もしません。冗長に呼んでも
// 安全です。存在確認と削除を1文にまとめてレースの影響を避けています。
func (r *CategoryRepository) DeleteDefaultIfEmpty(userID int) error {
	query := `DELETE FROM categories
		WHERE user_id = ? AND name = ?
		AND NOT EXISTS (SELECT 1 FROM todos WHERE todos.category_id = categories.id)`
	if _, err := r.DB.Exec(query, userID, models.DefaultCategoryName); err != nil {
		log.Printf("Failed to delete empty default category: %v", err)
		return fmt.Errorf("could not delete default category: %w", err)
	}
	return nil
}

// DeleteAndReassign はカテゴリを削除し、参照していたTodoをデフォルト
// カテゴリに付け替えます。全体を1トランザクションで行うため、外からは
// 宙ぶらりんのカテゴリ参照は決して見えません。
//
// 行の削除を先に行ってから付け替えるのは、デフォルトカテゴリ自身が
// 削除対象のときに付け替え先が自分自身になる退行を防ぐためです。
// 先に消せば GetOrCreateDefault は新しい行を作ります。
func (r *CategoryRepository) DeleteAndReassign(userID, id int) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec("DELETE FROM categories WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		log.Printf("Failed to delete category: %v", err)
		return fmt.Errorf("could not delete category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if n == 0 {
		return ErrCategoryNotFound
	}

	var orphans int
	err = tx.QueryRow("SELECT COUNT(*) FROM todos WHERE category_id = ? AND user_id = ?", id, userID).Scan(&orphans)
	if err != nil {
		return fmt.Errorf("could not count orphaned todos: %w", err)
	}
	if orphans > 0 {
		def, err := getOrCreateDefault(tx, userID)
		if err != nil {
			return err
		}
		_, err = tx.Exec("UPDATE todos SET category_id = ?, updated_at = ? WHERE category_id = ? AND user_id = ?",
			def.ID, time.Now().UTC(), id, userID)
		if err != nil {
			log.Printf("Failed to reassign todos: %v", err)
			return fmt.Errorf("could not reassign todos: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit category delete: %w", err)
	}
	return nil
}
