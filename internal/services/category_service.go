package services

import (
	"go-todo-list/backend/internal/models"
	"go-todo-list/backend/internal/repositories"
)

// CategoryService はカテゴリ関連のビジネスロジックを扱います。
// 削除時の付け替えとデフォルトカテゴリの後始末は、ORMのシグナルの
// ような暗黙のフックではなく、ここから明示的に呼び出します。
type CategoryService struct {
	categoryRepo *repositories.CategoryRepository
}

// NewCategoryService は新しいCategoryServiceを作成します。
func NewCategoryService(categoryRepo *repositories.CategoryRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

// CreateCategory は新しいカテゴリを作成します。
func (s *CategoryService) CreateCategory(userID int, name string) (*models.Category, error) {
	return s.categoryRepo.Create(&models.Category{UserID: userID, Name: name})
}

// GetCategories はユーザーのカテゴリ一覧を取得します。
func (s *CategoryService) GetCategories(userID int) ([]*models.Category, error) {
	return s.categoryRepo.FindAllByUser(userID)
}

// GetCategory は指定IDのカテゴリを取得します。他ユーザーの行は
// 存在しないものとして扱われます。
func (s *CategoryService) GetCategory(userID, id int) (*models.Category, error) {
	return s.categoryRepo.FindByID(userID, id)
}

// UpdateCategory はカテゴリ名を変更します。
func (s *CategoryService) UpdateCategory(userID, id int, name string) (*models.Category, error) {
	return s.categoryRepo.Update(userID, id, name)
}

// DeleteCategory はカテゴリを削除します。参照していたTodoは削除が
// 完了する前にデフォルトカテゴリへ付け替えられます（必要なら作成）。
// 削除後にデフォルトカテゴリが空なら片付けます。
func (s *CategoryService) DeleteCategory(userID, id int) error {
	if err := s.categoryRepo.DeleteAndReassign(userID, id); err != nil {
		return err
	}
	return s.categoryRepo.DeleteDefaultIfEmpty(userID)
}

// GetDefaultCategory はデフォルトカテゴリを取得だけ行います。
// 存在しない場合は repositories.ErrCategoryNotFound を返します。
func (s *CategoryService) GetDefaultCategory(userID int) (*models.Category, error) {
	return s.categoryRepo.GetDefault(userID)
}

// GetOrCreateDefault はデフォルトカテゴリを返し、無ければ作成します。
func (s *CategoryService) GetOrCreateDefault(userID int) (*models.Category, error) {
	return s.categoryRepo.GetOrCreateDefault(userID)
}

// DeleteDefaultIfEmpty は空のデフォルトカテゴリを片付けます。
func (s *CategoryService) DeleteDefaultIfEmpty(userID int) error {
	return s.categoryRepo.DeleteDefaultIfEmpty(userID)
}
