package models

import (
	"fmt"
	"strconv"
)

// Tag はTodoに付けるラベルのデータベース構造体を表します。
// Color は "ff8800" のような16進カラーコード（最大6桁、# なし）です。
type Tag struct {
	ID     int    `json:"id,omitempty"`
	UserID int    `json:"-"` // 所有者。レスポンスには含めない
	Name   string `json:"name" binding:"required,max=64"`
	Color  string `json:"color" binding:"required,max=6"`
}

type TagRequest struct {
	Name  string `json:"name" binding:"required,max=64"`
	Color string `json:"color" binding:"required,max=6"`
}

// ValidateColor は値が16進カラーコードとして解釈できるか検証します。
func ValidateColor(value string) error {
	if value == "" || len(value) > 6 {
		return fmt.Errorf("%s is not a hex color", value)
	}
	if _, err := strconv.ParseUint(value, 16, 32); err != nil {
		return fmt.Errorf("%s is not a hex color", value)
	}
	return nil
}
