package shared

import (
	"strings"
)

// IsUniqueConstraintError cobre drivers que nao traduzem a violacao para
// gorm.ErrDuplicatedKey.
func IsUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "23505") ||
		strings.Contains(errStr, "duplicate") ||
		strings.Contains(errStr, "unique constraint")
}
