package models

import "time"

// Todo はToDoタスクのデータベース構造体を表します。
// CategoryID は保存後は必ず非ゼロです（未指定の場合はデフォルトカテゴリが
// 割り当てられます）。Deadline は任意で、DBにはUTCで保存されます。
type Todo struct {
	ID         int        `json:"id,omitempty"`
	UserID     int        `json:"user_id"`
	CategoryID int        `json:"category"`
	Text       string     `json:"text"`
	IsDone     bool       `json:"is_done"`
	Deadline   *time.Time `json:"deadline"`
	Tags       []Tag      `json:"tags"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at,omitempty"`
}

// TodoRequest はTodoの作成・更新リクエストを表します。
// Category と Tags はIDで参照します。どちらもリクエストユーザーの所有で
// なければなりません（他ユーザーのIDは存在しないものとして扱われます）。
type TodoRequest struct {
	Text     string     `json:"text" binding:"required,max=256"`
	Category *int       `json:"category"`
	Tags     []int      `json:"tags"`
	IsDone   bool       `json:"is_done"`
	Deadline *time.Time `json:"deadline"`
}
