package mysql

import (
	"errors"

	"tradezone_chat_server/pkg/errorx"

	"gorm.io/gorm"
)

// wrapDBError 包装数据库错误
// ErrRecordNotFound -> CodeNotFound，其他错误 -> CodeStoreUnavailable
func wrapDBError(err error, msg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errorx.Wrap(err, errorx.CodeNotFound, msg)
	}
	return errorx.Wrap(err, errorx.CodeStoreUnavailable, msg)
}

// wrapDBErrorf 包装数据库错误（支持格式化消息）
func wrapDBErrorf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errorx.Wrapf(err, errorx.CodeNotFound, format, args...)
	}
	return errorx.Wrapf(err, errorx.CodeStoreUnavailable, format, args...)
}
