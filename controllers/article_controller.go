package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"article-api/store"
	"article-api/utils"
)

const (
	listCachePrefix   = "cache:articles:list:"
	detailCachePrefix = "cache:article:detail:"
)

// ArticleController handles the article and comment endpoints. All business
// rules live in the store; handlers validate shape, delegate, and map errors
// to status codes.
type ArticleController struct {
	store *store.ArticleStore
}

// NewArticleController creates a controller over the given store.
func NewArticleController(s *store.ArticleStore) *ArticleController {
	return &ArticleController{store: s}
}

// CreateArticle handles POST /api/articles.
func (c *ArticleController) CreateArticle(ctx *gin.Context) {
	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
		Author  string `json:"author"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	title := utils.Sanitize(strings.TrimSpace(req.Title))
	content := utils.Sanitize(strings.TrimSpace(req.Content))
	if title == "" || content == "" {
		utils.Fail(ctx, http.StatusBadRequest, "Title and content fields are required and cannot be blank")
		return
	}

	article, err := c.store.CreateArticle(title, content, utils.Sanitize(req.Author))
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	utils.InvalidateByPrefix(listCachePrefix)
	utils.Respond(ctx, http.StatusCreated, article, "Data inserted successfully")
}

// ListArticles handles GET /api/articles with optional author/keyword
// filters, sorting, and pagination.
func (c *ArticleController) ListArticles(ctx *gin.Context) {
	q := c.store.NormalizeQuery(store.ListQuery{
		Page:      parseInt(ctx.Query("page")),
		PerPage:   parseInt(ctx.Query("per_page")),
		SortBy:    ctx.Query("sort_by"),
		SortOrder: ctx.Query("sort_order"),
		Author:    ctx.Query("author"),
		Keyword:   ctx.Query("keyword"),
	})

	// Cache only unfiltered pages to keep the key space bounded.
	cacheable := q.Author == "" && q.Keyword == ""
	cacheKey := fmt.Sprintf("%spage=%d:size=%d:sort=%s_%s", listCachePrefix, q.Page, q.PerPage, q.SortBy, q.SortOrder)
	if cacheable {
		if b, ok := utils.CacheGetBytes(cacheKey); ok {
			ctx.Data(http.StatusOK, "application/json", b)
			return
		}
	}

	articles, total, err := c.store.ListArticles(q)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	message := "Data retrieved successfully"
	if len(articles) == 0 {
		message = "No articles found"
	}
	if cacheable {
		utils.CacheSetJSON(cacheKey, utils.ListEnvelope{Data: articles, TotalArticle: total, Message: message}, 0)
	}
	utils.RespondList(ctx, http.StatusOK, articles, total, message)
}

// GetArticle handles GET /api/article/:id.
func (c *ArticleController) GetArticle(ctx *gin.Context) {
	id, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Respond(ctx, http.StatusNotFound, []any{}, "No articles found with provided id")
		return
	}

	cacheKey := detailCachePrefix + strconv.FormatUint(uint64(id), 10)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	article, err := c.store.GetArticle(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Respond(ctx, http.StatusNotFound, []any{}, "No articles found with provided id")
			return
		}
		c.respondError(ctx, err)
		return
	}

	utils.CacheSetJSON(cacheKey, utils.Envelope{Data: article, Message: "Data retrieved successfully"}, 0)
	utils.Respond(ctx, http.StatusOK, article, "Data retrieved successfully")
}

// CreateComment handles POST /api/articles/:id/comments.
func (c *ArticleController) CreateComment(ctx *gin.Context) {
	id, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Fail(ctx, http.StatusNotFound, "No articles found with provided id")
		return
	}

	var req struct {
		Author  string `json:"author"`
		Content string `json:"content"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	author := utils.Sanitize(strings.TrimSpace(req.Author))
	content := utils.Sanitize(strings.TrimSpace(req.Content))
	if author == "" || content == "" {
		utils.Fail(ctx, http.StatusBadRequest, "Author and content fields are required and cannot be blank")
		return
	}

	comment, err := c.store.CreateComment(id, author, content)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	utils.InvalidateByPrefix(detailCachePrefix + strconv.FormatUint(uint64(id), 10))
	utils.InvalidateByPrefix(listCachePrefix)
	utils.Respond(ctx, http.StatusCreated, comment, "Comment added successfully")
}

// UpdateArticle handles PUT /api/articles/:id with a partial body.
func (c *ArticleController) UpdateArticle(ctx *gin.Context) {
	id, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Fail(ctx, http.StatusNotFound, "No articles found with provided id")
		return
	}

	var req struct {
		Title   *string `json:"title"`
		Content *string `json:"content"`
		Author  *string `json:"author"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, http.StatusBadRequest, "No data provided for update")
		return
	}

	patch := store.ArticlePatch{
		Title:   sanitizePtr(req.Title),
		Content: sanitizePtr(req.Content),
		Author:  sanitizePtr(req.Author),
	}
	article, err := c.store.UpdateArticle(id, patch)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	utils.InvalidateByPrefix(listCachePrefix)
	utils.InvalidateByPrefix(detailCachePrefix + strconv.FormatUint(uint64(id), 10))
	utils.Respond(ctx, http.StatusOK, article, "Article updated successfully")
}

// DeleteArticle handles DELETE /api/articles/:id with cascade to comments.
func (c *ArticleController) DeleteArticle(ctx *gin.Context) {
	id, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Fail(ctx, http.StatusNotFound, "Article not found or already deleted")
		return
	}

	if err := c.store.DeleteArticle(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Fail(ctx, http.StatusNotFound, "Article not found or already deleted")
			return
		}
		c.respondError(ctx, err)
		return
	}

	utils.InvalidateByPrefix(listCachePrefix)
	utils.InvalidateByPrefix(detailCachePrefix + strconv.FormatUint(uint64(id), 10))
	utils.Message(ctx, http.StatusOK, "Article and associated comments deleted successfully")
}

// respondError maps store errors to status codes: validation -> 400,
// not found -> 404, anything else -> 500 with the message surfaced.
func (c *ArticleController) respondError(ctx *gin.Context, err error) {
	switch {
	case store.IsValidation(err):
		utils.Fail(ctx, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		utils.Fail(ctx, http.StatusNotFound, "No articles found with provided id")
	default:
		if utils.Sugar != nil {
			utils.Sugar.Errorf("store operation failed: %v", err)
		}
		utils.Fail(ctx, http.StatusInternalServerError, err.Error())
	}
}

func parseID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func parseInt(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}

func sanitizePtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := utils.Sanitize(strings.TrimSpace(*s))
	return &v
}
