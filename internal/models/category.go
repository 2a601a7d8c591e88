// Package modelsはデータベース構造体とリクエストDTOを定義します。
package models

// DefaultCategoryName はカテゴリ未指定のTodoに自動で割り当てられる
// 予約済みカテゴリ名です。ユーザーごとに (user, name) が一意なので、
// この名前の行が存在するかどうかが「デフォルトカテゴリの有無」になります。
const DefaultCategoryName = "(default category)"

// Category はTodoの分類のデータベース構造体を表します。
type Category struct {
	ID     int    `json:"id,omitempty"`
	UserID int    `json:"-"` // 所有者。レスポンスには含めない
	Name   string `json:"name" binding:"required,max=256"`
}

// IsDefault は自動管理されるデフォルトカテゴリかどうかを返します。
func (c *Category) IsDefault() bool {
	return c.Name == DefaultCategoryName
}

type CategoryRequest struct {
	Name string `json:"name" binding:"required,max=256"`
}
