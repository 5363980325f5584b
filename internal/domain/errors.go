package domain

import "errors"

var (
	ErrUnauthenticated     = errors.New("用户未登录")
	ErrAuthorizationDenied = errors.New("权限不足")
	ErrNotFound            = errors.New("目标不存在")
	ErrTransportFailure    = errors.New("请求失败")
	ErrValidationConflict  = errors.New("数据校验失败")
)
