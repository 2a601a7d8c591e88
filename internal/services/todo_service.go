package services

import (
	"log"
	"time"

	"go-todo-list/backend/internal/models"
	"go-todo-list/backend/internal/repositories"
)

// TodoService はTodo関連のビジネスロジックを扱います。
// 保存・削除のたびにデフォルトカテゴリのライフサイクル処理
// （未指定時の割り当てと、空になったデフォルトの削除）を明示的に呼びます。
type TodoService struct {
	todoRepo     *repositories.TodoRepository
	categoryRepo *repositories.CategoryRepository
	tagRepo      *repositories.TagRepository
	userRepo     *repositories.UserRepository
}

// NewTodoService は新しいTodoServiceを作成します。
func NewTodoService(todoRepo *repositories.TodoRepository, categoryRepo *repositories.CategoryRepository, tagRepo *repositories.TagRepository, userRepo *repositories.UserRepository) *TodoService {
	return &TodoService{
		todoRepo:     todoRepo,
		categoryRepo: categoryRepo,
		tagRepo:      tagRepo,
		userRepo:     userRepo,
	}
}

// userLocation はユーザーのタイムゾーンを解決します。解決できない値が
// 保存されていた場合はUTCに落とします（保存時に検証済みなので通常は
// 起きません）。
func (s *TodoService) userLocation(userID int) *time.Location {
	u, err := s.userRepo.FindByID(userID)
	if err != nil {
		log.Printf("Failed to load user %d for timezone: %v", userID, err)
		return time.UTC
	}
	loc, err := time.LoadLocation(u.Timezone)
	if err != nil {
		log.Printf("Invalid stored timezone %q for user %d: %v", u.Timezone, userID, err)
		return time.UTC
	}
	return loc
}

// localizeDeadline は締め切りをユーザーのタイムゾーンに変換します。
// DBにはUTCで保存されているため、レスポンス直前にだけ変換します。
func localizeDeadline(t *models.Todo, loc *time.Location) {
	if t.Deadline != nil {
		d := t.Deadline.In(loc)
		t.Deadline = &d
	}
}

// uniqueTagIDs は順序を保ったままタグIDの重複を取り除きます。
// 同じタグを二度指定しても一度付けたのと同じ扱いになります。
func uniqueTagIDs(ids []int) []int {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[int]bool, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// resolveCategory はリクエストのカテゴリ参照を解決します。
// 未指定ならデフォルトカテゴリ（必要なら作成）を割り当てます。
func (s *TodoService) resolveCategory(userID int, categoryID *int) (*models.Category, error) {
	if categoryID == nil {
		return s.categoryRepo.GetOrCreateDefault(userID)
	}
	return s.categoryRepo.FindByID(userID, *categoryID)
}

// CreateTodo は新しいTodoを作成します。タグはすべてリクエストユーザーの
// 所有でなければなりません。
func (s *TodoService) CreateTodo(userID int, req *models.TodoRequest) (*models.Todo, error) {
	tagIDs := uniqueTagIDs(req.Tags)
	tags, err := s.tagRepo.FindByIDs(userID, tagIDs)
	if err != nil {
		return nil, err
	}
	category, err := s.resolveCategory(userID, req.Category)
	if err != nil {
		return nil, err
	}

	todo := &models.Todo{
		UserID:     userID,
		CategoryID: category.ID,
		Text:       req.Text,
		IsDone:     req.IsDone,
		Deadline:   req.Deadline,
	}
	created, err := s.todoRepo.Create(todo, tagIDs)
	if err != nil {
		return nil, err
	}
	created.Tags = tags

	// 明示的なカテゴリで作成された場合でも呼んで問題ない（空でなければno-op）
	if err := s.categoryRepo.DeleteDefaultIfEmpty(userID); err != nil {
		return nil, err
	}

	localizeDeadline(created, s.userLocation(userID))
	return created, nil
}

// GetTodos はユーザーのTodoを絞り込み条件付きで取得します。
// 締め切りの範囲はユーザーのタイムゾーンで「その日の終わり」を
// 計算して解決します。
func (s *TodoService) GetTodos(userID int, filter *models.TodoFilter) ([]*models.Todo, error) {
	query := &repositories.TodoQuery{}
	loc := s.userLocation(userID)

	if filter != nil {
		query.Done = filter.Done
		query.CategoryID = filter.CategoryID
		query.TagIDs = filter.TagIDs

		if filter.Window != nil {
			from, to, bounded := filter.Window.Bounds(time.Now(), loc)
			if !bounded {
				query.NoDeadline = true
			} else {
				if !from.IsZero() {
					query.DeadlineFrom = &from
				}
				query.DeadlineTo = &to
			}
		}
	}

	todos, err := s.todoRepo.FindByUser(userID, query)
	if err != nil {
		return nil, err
	}
	for _, t := range todos {
		localizeDeadline(t, loc)
	}
	return todos, nil
}

// GetTodoByID は指定IDのTodoを取得し、所有者を確認します。
// 他ユーザーのTodoは存在しないものとして扱われます。
func (s *TodoService) GetTodoByID(id, userID int) (*models.Todo, error) {
	todo, err := s.todoRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if todo.UserID != userID {
		return nil, repositories.ErrTodoNotFound // 所有の有無を漏らさない
	}
	localizeDeadline(todo, s.userLocation(userID))
	return todo, nil
}

// UpdateTodo はTodoを更新します。カテゴリを未指定にするとデフォルト
// カテゴリが割り当てられ、デフォルトから離れて空になった場合は
// デフォルトが片付きます。
func (s *TodoService) UpdateTodo(id, userID int, req *models.TodoRequest) (*models.Todo, error) {
	existing, err := s.todoRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if existing.UserID != userID {
		return nil, repositories.ErrTodoNotFound
	}

	tagIDs := uniqueTagIDs(req.Tags)
	tags, err := s.tagRepo.FindByIDs(userID, tagIDs)
	if err != nil {
		return nil, err
	}
	category, err := s.resolveCategory(userID, req.Category)
	if err != nil {
		return nil, err
	}

	updated, err := s.todoRepo.Update(id, &models.Todo{
		UserID:     existing.UserID,
		CategoryID: category.ID,
		Text:       req.Text,
		IsDone:     req.IsDone,
		Deadline:   req.Deadline,
	}, tagIDs)
	if err != nil {
		return nil, err
	}
	updated.Tags = tags

	if err := s.categoryRepo.DeleteDefaultIfEmpty(userID); err != nil {
		return nil, err
	}

	localizeDeadline(updated, s.userLocation(userID))
	return updated, nil
}

// ResetCategory はTodoのカテゴリ参照を明示的に外して保存し直します。
// 未指定保存と同じ経路でデフォルトカテゴリが割り当てられます（必要なら
// 作成）。カテゴリが消されるTodoの退避に使われる操作です。
func (s *TodoService) ResetCategory(id, userID int) (*models.Todo, error) {
	existing, err := s.todoRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if existing.UserID != userID {
		return nil, repositories.ErrTodoNotFound
	}

	def, err := s.categoryRepo.GetOrCreateDefault(userID)
	if err != nil {
		return nil, err
	}
	if err := s.todoRepo.UpdateCategory(id, def.ID); err != nil {
		return nil, err
	}
	// 元のカテゴリがデフォルトだった場合は何も変わらないが、
	// 呼び直しても安全なので常に後始末を走らせる
	if err := s.categoryRepo.DeleteDefaultIfEmpty(userID); err != nil {
		return nil, err
	}
	return s.GetTodoByID(id, userID)
}

// DeleteTodo はTodoを削除します。デフォルトカテゴリ上の最後のTodoが
// 消えた場合はデフォルトも片付きます。
func (s *TodoService) DeleteTodo(id, userID int) error {
	existing, err := s.todoRepo.FindByID(id)
	if err != nil {
		return err
	}
	if existing.UserID != userID {
		return repositories.ErrTodoNotFound
	}
	if err := s.todoRepo.Delete(id); err != nil {
		return err
	}
	return s.categoryRepo.DeleteDefaultIfEmpty(userID)
}
