// Package repositories はデータベース操作を行うリポジトリを提供します。
package repositories

import (
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
	sqlite "modernc.org/sqlite"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateUser     = errors.New("duplicate user")
	ErrTodoNotFound      = errors.New("todo not found")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrDuplicateCategory = errors.New("duplicate category")
	ErrTagNotFound       = errors.New("tag not found")
	ErrDuplicateTag      = errors.New("duplicate tag")
)

// dbtx は *sql.DB と *sql.Tx の共通部分です。トランザクション内外で
// 同じクエリ関数を使い回すために使います。
type dbtx interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// isDuplicateEntry は一意制約違反かどうかを判定します。
// 本番はMySQL(1062)、テストはmodernc/sqlite(2067, 1555)で動くため両方を見ます。
func isDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return true
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		// SQLITE_CONSTRAINT_UNIQUE / SQLITE_CONSTRAINT_PRIMARYKEY
		code := sqliteErr.Code()
		return code == 2067 || code == 1555
	}
	return false
}
