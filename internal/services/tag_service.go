package services

import (
	"go-todo-list/backend/internal/models"
	"go-todo-list/backend/internal/repositories"
)

// TagService はタグ関連のビジネスロジックを扱います。
type TagService struct {
	tagRepo *repositories.TagRepository
}

// NewTagService は新しいTagServiceを作成します。
func NewTagService(tagRepo *repositories.TagRepository) *TagService {
	return &TagService{tagRepo: tagRepo}
}

// CreateTag は新しいタグを作成します。
func (s *TagService) CreateTag(userID int, name, color string) (*models.Tag, error) {
	return s.tagRepo.Create(&models.Tag{UserID: userID, Name: name, Color: color})
}

// GetTags はユーザーのタグ一覧を取得します。
func (s *TagService) GetTags(userID int) ([]*models.Tag, error) {
	return s.tagRepo.FindAllByUser(userID)
}

// GetTag は指定IDのタグを取得します。
func (s *TagService) GetTag(userID, id int) (*models.Tag, error) {
	return s.tagRepo.FindByID(userID, id)
}

// UpdateTag はタグの名前と色を変更します。
func (s *TagService) UpdateTag(userID, id int, name, color string) (*models.Tag, error) {
	return s.tagRepo.Update(userID, id, name, color)
}

// DeleteTag はタグを削除します。
func (s *TagService) DeleteTag(userID, id int) error {
	return s.tagRepo.Delete(userID, id)
}
