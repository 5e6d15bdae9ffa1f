package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/blog-api/internal/api/middleware"
	"github.com/d60-Lab/blog-api/internal/service"
	"github.com/d60-Lab/blog-api/pkg/response"
)

type postRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// CreatePost 发布新帖子
// @Summary Create a post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body postRequest true "title and content"
// @Success 200 {object} model.Post
// @Failure 401 {object} response.Detail
// @Router /api/posts [post]
func (h *Handler) CreatePost(c *gin.Context) {
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	user := middleware.CurrentUser(c)
	post, err := h.postService.Create(c.Request.Context(), user.ID, req.Title, req.Content)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, post)
}

// ListPosts 查询全量帖子（走集合缓存）
// @Summary List all posts
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Post
// @Failure 401 {object} response.Detail
// @Router /api/posts [get]
func (h *Handler) ListPosts(c *gin.Context) {
	posts, err := h.postService.FetchAll(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, posts)
}

// GetPost 查询单个帖子（不走缓存）
// @Summary Get one post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "post id"
// @Success 200 {object} model.Post
// @Failure 404 {object} response.Detail
// @Router /api/posts/{id} [get]
func (h *Handler) GetPost(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		return
	}
	post, err := h.postService.GetOne(c.Request.Context(), id)
	if err != nil {
		h.postError(c, err)
		return
	}
	response.Success(c, post)
}

// UpdatePost 作者更新标题与正文
// @Summary Update a post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "post id"
// @Param request body postRequest true "title and content"
// @Success 200 {object} model.Post
// @Failure 403 {object} response.Detail
// @Failure 404 {object} response.Detail
// @Router /api/posts/{id} [put]
func (h *Handler) UpdatePost(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		return
	}
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	user := middleware.CurrentUser(c)
	post, err := h.postService.Update(c.Request.Context(), id, user.ID, req.Title, req.Content)
	if err != nil {
		h.postError(c, err)
		return
	}
	response.Success(c, post)
}

// DeletePost 作者删除帖子
// @Summary Delete a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "post id"
// @Success 200 {object} map[string]string
// @Failure 403 {object} response.Detail
// @Failure 404 {object} response.Detail
// @Router /api/posts/{id} [delete]
func (h *Handler) DeletePost(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		return
	}
	user := middleware.CurrentUser(c)
	if err := h.postService.Delete(c.Request.Context(), id, user.ID); err != nil {
		h.postError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "Post deleted successfully"})
}

func (h *Handler) postError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPostNotFound):
		response.NotFound(c, "Post not found")
	case errors.Is(err, service.ErrForbidden):
		response.Forbidden(c, "Not authorized to modify this post")
	default:
		response.InternalError(c, err)
	}
}

func postID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.NotFound(c, "Post not found")
		return 0, false
	}
	return uint(id), true
}
