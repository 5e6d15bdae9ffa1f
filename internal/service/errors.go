package service

import "errors"

// 领域错误，handler 层映射为 HTTP 状态码
var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrInvalidToken       = errors.New("could not validate credentials")
	ErrPostNotFound       = errors.New("post not found")
	ErrForbidden          = errors.New("not the author of this post")
)
