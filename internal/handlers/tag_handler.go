package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"go-todo-list/backend/internal/models"
	"go-todo-list/backend/internal/repositories"
	"go-todo-list/backend/internal/services"
)

// TagHandler はタグ関連のハンドラーを管理します。
type TagHandler struct {
	tagService *services.TagService
}

// NewTagHandler は新しいTagHandlerを作成します。
func NewTagHandler(tagService *services.TagService) *TagHandler {
	return &TagHandler{tagService: tagService}
}

// CreateTagHandler は新しいタグを作成します。色は16進カラーコード
// として検証されます。
func (h *TagHandler) CreateTagHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}
	if err := models.ValidateColor(req.Color); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid value for field 'color'", "details": err.Error()})
		return
	}

	created, err := h.tagService.CreateTag(userID, req.Name, req.Color)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateTag) {
			c.JSON(http.StatusConflict, gin.H{"error": "Tag name already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save tag to database"})
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GetTagsHandler はタグ一覧を取得します。
func (h *TagHandler) GetTagsHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	tags, err := h.tagService.GetTags(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tags"})
		return
	}
	c.JSON(http.StatusOK, tags)
}

// GetTagByIDHandler は指定IDのタグを取得します。
func (h *TagHandler) GetTagByIDHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	tag, err := h.tagService.GetTag(userID, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTagNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Tag not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tag"})
		return
	}
	c.JSON(http.StatusOK, tag)
}

// UpdateTagHandler はタグの名前と色を変更します。
func (h *TagHandler) UpdateTagHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	var req models.TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}
	if err := models.ValidateColor(req.Color); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid value for field 'color'", "details": err.Error()})
		return
	}

	updated, err := h.tagService.UpdateTag(userID, id, req.Name, req.Color)
	if err != nil {
		if errors.Is(err, repositories.ErrTagNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Tag not found"})
			return
		}
		if errors.Is(err, repositories.ErrDuplicateTag) {
			c.JSON(http.StatusConflict, gin.H{"error": "Tag name already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update tag"})
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteTagHandler はタグを削除します。
func (h *TagHandler) DeleteTagHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	if err := h.tagService.DeleteTag(userID, id); err != nil {
		if errors.Is(err, repositories.ErrTagNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Tag not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete tag"})
		return
	}
	c.Status(http.StatusNoContent)
}
