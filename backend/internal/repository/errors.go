package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrDuplicate 违反唯一约束
var ErrDuplicate = errors.New("记录已存在")

const (
	pgUniqueViolation   = "23505"
	pgInvalidTextFormat = "22P02" // 如 uuid 列收到非法字符串
)

// translate 将驱动层错误转换为仓储层错误
func translate(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return ErrDuplicate
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}

// IsNotFound 是否为记录不存在；主键格式非法的查询同样视为不存在
func IsNotFound(err error) bool {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgInvalidTextFormat
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern 构造子串匹配的 ILIKE 模式，用户输入中的通配符按字面匹配
// PostgreSQL 的 LIKE 默认以反斜杠为转义符
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
