package handler

import "github.com/d60-Lab/blog-api/internal/service"

// Handler 聚合所有 HTTP 处理器依赖
type Handler struct {
	authService service.AuthService
	postService service.PostService
}

func New(auth service.AuthService, posts service.PostService) *Handler {
	return &Handler{authService: auth, postService: posts}
}
