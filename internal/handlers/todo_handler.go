package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"go-todo-list/backend/internal/models"
	"go-todo-list/backend/internal/repositories"
	"go-todo-list/backend/internal/services"
)

// TodoHandler はTodo関連のハンドラーを管理します。
type TodoHandler struct {
	todoService *services.TodoService
}

// NewTodoHandler は新しいTodoHandlerを作成します。
func NewTodoHandler(todoService *services.TodoService) *TodoHandler {
	return &TodoHandler{todoService: todoService}
}

// paramError は不正なクエリパラメータを、どのパラメータが悪いのか
// 名指しで報告するためのエラーです。
type paramError struct {
	name string
}

func (e *paramError) Error() string {
	return fmt.Sprintf("invalid value for parameter '%s'", e.name)
}

func parseBoolParam(c *gin.Context, name string) (*bool, error) {
	raw, ok := c.GetQuery(name)
	if !ok {
		return nil, nil
	}
	switch raw {
	case "0":
		v := false
		return &v, nil
	case "1":
		v := true
		return &v, nil
	}
	return nil, &paramError{name: name}
}

// parseTodoFilter はクエリパラメータを型付きの絞り込み条件へ検証しながら
// 変換します。不正な値は黙って無視せず、パラメータ名付きで拒否します。
func parseTodoFilter(c *gin.Context) (*models.TodoFilter, error) {
	filter := &models.TodoFilter{}

	done, err := parseBoolParam(c, "only_done")
	if err != nil {
		return nil, err
	}
	filter.Done = done

	if raw, ok := c.GetQuery("category"); ok {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return nil, &paramError{name: "category"}
		}
		filter.CategoryID = &id
	}

	for _, raw := range c.QueryArray("tags") {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return nil, &paramError{name: "tags"}
		}
		filter.TagIDs = append(filter.TagIDs, id)
	}

	onlyOneDay, err := parseBoolParam(c, "only_one_day")
	if err != nil {
		return nil, err
	}

	if raw, ok := c.GetQuery("by_date"); ok {
		window := &models.DateWindow{}
		switch raw {
		case "today":
			window.Kind = models.DateWindowToday
		case "tomorrow":
			window.Kind = models.DateWindowTomorrow
		case "week":
			window.Kind = models.DateWindowWeek
		case "none":
			window.Kind = models.DateWindowNoDeadline
		default:
			literal, err := time.Parse("2006-01-02", raw)
			if err != nil {
				return nil, &paramError{name: "by_date"}
			}
			window.Kind = models.DateWindowLiteral
			window.Literal = literal
		}
		if onlyOneDay != nil {
			window.OnlyOneDay = *onlyOneDay
		}
		filter.Window = window
	} else if onlyOneDay != nil {
		// 絞り込む日付窓が無いのに only_one_day だけ渡されても
		// 意味を持てないので、黙って無視せず拒否する
		return nil, &paramError{name: "only_one_day"}
	}

	return filter, nil
}

// CreateTodoHandler は新しいTodoを作成します。カテゴリ未指定の場合は
// デフォルトカテゴリが割り当てられます。
func (h *TodoHandler) CreateTodoHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.TodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	created, err := h.todoService.CreateTodo(userID, &req)
	if err != nil {
		if errors.Is(err, repositories.ErrCategoryNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid value for field 'category'"})
			return
		}
		if errors.Is(err, repositories.ErrTagNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid value for field 'tags'"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save todo to database"})
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GetTodosHandler はTodo一覧を絞り込み条件付きで取得します。
func (h *TodoHandler) GetTodosHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	filter, err := parseTodoFilter(c)
	if err != nil {
		var pe *paramError
		if errors.As(err, &pe) {
			c.JSON(http.StatusBadRequest, gin.H{"error": pe.Error(), "param": pe.name})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	todos, err := h.todoService.GetTodos(userID, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch todos"})
		return
	}
	c.JSON(http.StatusOK, todos)
}

// GetTodoByIDHandler は指定IDのTodoを取得します。
func (h *TodoHandler) GetTodoByIDHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	todo, err := h.todoService.GetTodoByID(id, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrTodoNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Todo not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch todo"})
		return
	}
	c.JSON(http.StatusOK, todo)
}

// UpdateTodoHandler はTodoを更新します。
func (h *TodoHandler) UpdateTodoHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	var req models.TodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	updated, err := h.todoService.UpdateTodo(id, userID, &req)
	if err != nil {
		if errors.Is(err, repositories.ErrTodoNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Todo not found"})
			return
		}
		if errors.Is(err, repositories.ErrCategoryNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid value for field 'category'"})
			return
		}
		if errors.Is(err, repositories.ErrTagNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid value for field 'tags'"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update todo"})
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteTodoHandler はTodoを削除します。
func (h *TodoHandler) DeleteTodoHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	if err := h.todoService.DeleteTodo(id, userID); err != nil {
		if errors.Is(err, repositories.ErrTodoNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Todo not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete todo"})
		return
	}
	c.Status(http.StatusNoContent)
}
