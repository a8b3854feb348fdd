package handlers

import (
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"cafeblog/internal/cache"
	"cafeblog/internal/config"
	"cafeblog/internal/domain/account"
	"cafeblog/internal/domain/post"
	"cafeblog/internal/http/middlewares"
	"cafeblog/internal/storage"
	"cafeblog/internal/utils"

	"github.com/gin-gonic/gin"
)

// PostWriter is the slice of the post service the handler needs; tests plug
// in a fake here.
type PostWriter interface {
	Create(ctx context.Context, principal account.Principal, in post.Input, up *storage.Upload) (post.Post, error)
	Update(ctx context.Context, principal account.Principal, id int64, in post.Input, up *storage.Upload) (post.Post, error)
	Delete(ctx context.Context, principal account.Principal, id int64) error
	Search(ctx context.Context, filter post.SearchFilter) (post.Page, error)
	Get(ctx context.Context, id int64) (post.Post, error)
}

type PostsHandler struct {
	posts PostWriter
	cache cache.Store
}

func NewPostsHandler(posts PostWriter, store cache.Store) *PostsHandler {
	return &PostsHandler{posts: posts, cache: store}
}

func (h *PostsHandler) CreatePost(ctx *gin.Context) {
	principal, ok := middlewares.PrincipalFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthenticated", "Authentication required")
		return
	}

	in := post.Input{
		Title:   ctx.PostForm("title"),
		Content: ctx.PostForm("content"),
	}

	up, ok := readUpload(ctx)

	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	created, err := h.posts.Create(cctx, principal, in, up)

	if err != nil {
		RespondDomainError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

func (h *PostsHandler) UpdatePost(ctx *gin.Context) {
	id, ok := parsePostID(ctx)

	if !ok {
		return
	}

	principal, pok := middlewares.PrincipalFromContext(ctx)

	if !pok {
		RespondUnAuthorized(ctx, "unauthenticated", "Authentication required")
		return
	}

	in := post.Input{
		Title:   ctx.PostForm("title"),
		Content: ctx.PostForm("content"),
	}

	up, ok := readUpload(ctx)

	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	updated, err := h.posts.Update(cctx, principal, id, in, up)

	if err != nil {
		RespondDomainError(ctx, err)
		return
	}

	h.cache.Delete(ctx.Request.Context(), utils.BuildPostCacheKey(id))

	ctx.JSON(http.StatusOK, updated)
}

func (h *PostsHandler) DeletePost(ctx *gin.Context) {
	id, ok := parsePostID(ctx)

	if !ok {
		return
	}

	principal, pok := middlewares.PrincipalFromContext(ctx)

	if !pok {
		RespondUnAuthorized(ctx, "unauthenticated", "Authentication required")
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	if err := h.posts.Delete(cctx, principal, id); err != nil {
		RespondDomainError(ctx, err)
		return
	}

	h.cache.Delete(ctx.Request.Context(), utils.BuildPostCacheKey(id))

	ctx.Status(http.StatusNoContent)
}

func (h *PostsHandler) GetPostById(ctx *gin.Context) {
	id, ok := parsePostID(ctx)

	if !ok {
		return
	}

	key := utils.BuildPostCacheKey(id)

	if raw, hit := h.cache.Get(ctx.Request.Context(), key); hit {
		ctx.Data(http.StatusOK, "application/json; charset=utf-8", raw)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	p, err := h.posts.Get(cctx, id)

	if err != nil {
		RespondDomainError(ctx, err)
		return
	}

	if raw, err := json.Marshal(p); err == nil {
		h.cache.Set(ctx.Request.Context(), key, raw)
	}

	ctx.JSON(http.StatusOK, p)
}

// SearchPosts serves the list endpoint. Result pages are cached per
// (kind, keyword, limit, offset) and expire by TTL alone; mutations do not
// chase them down.
func (h *PostsHandler) SearchPosts(ctx *gin.Context) {
	filter := post.SearchFilter{
		Kind:    post.ParseSearchKind(ctx.Query("kind")),
		Keyword: ctx.Query("keyword"),
		Limit:   intQuery(ctx, "limit", 0),
		Offset:  intQuery(ctx, "offset", 0),
	}

	filter = filter.Normalize()

	key := utils.BuildPostSearchCacheKey(string(filter.Kind), filter.Keyword, filter.Limit, filter.Offset)

	if raw, hit := h.cache.Get(ctx.Request.Context(), key); hit {
		ctx.Data(http.StatusOK, "application/json; charset=utf-8", raw)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	page, err := h.posts.Search(cctx, filter)

	if err != nil {
		RespondDomainError(ctx, err)
		return
	}

	if raw, err := json.Marshal(page); err == nil {
		h.cache.Set(ctx.Request.Context(), key, raw)
	}

	ctx.JSON(http.StatusOK, page)
}

// Helper functions

func parsePostID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)

	if err != nil || id <= 0 {
		RespondBadRequest(ctx, "post id must be a positive integer", nil)
		return 0, false
	}

	return id, true
}

// readUpload pulls the optional "file" part into memory. A missing part is
// not an error; a part that cannot be read is.
func readUpload(ctx *gin.Context) (*storage.Upload, bool) {
	header, err := ctx.FormFile("file")

	if err != nil {
		if err == http.ErrMissingFile {
			return nil, true
		}

		RespondBadRequest(ctx, "Invalid multipart form", nil)
		return nil, false
	}

	data, err := readMultipartFile(header)

	if err != nil {
		RespondBadRequest(ctx, "Could not read attached file", nil)
		return nil, false
	}

	return &storage.Upload{
		Data:        data,
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
	}, true
}

func readMultipartFile(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()

	if err != nil {
		return nil, err
	}

	defer f.Close()

	return io.ReadAll(f)
}

func intQuery(ctx *gin.Context, name string, fallback int) int {
	raw := ctx.Query(name)

	if raw == "" {
		return fallback
	}

	v, err := strconv.Atoi(raw)

	if err != nil {
		return fallback
	}

	return v
}
