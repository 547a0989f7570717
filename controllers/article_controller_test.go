package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"article-api/store"
)

func TestMain(m *testing.M) {
	// Point the response cache at a closed port so a live local Redis can
	// never serve stale bytes into these tests.
	os.Setenv("REDIS_HOST", "127.0.0.1")
	os.Setenv("REDIS_PORT", "1")
	os.Exit(m.Run())
}

func newTestRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(
		mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent), SkipDefaultTransaction: true},
	)
	require.NoError(t, err)

	c := NewArticleController(store.NewArticleStore(db, time.UTC, 10))
	r := gin.New()
	r.GET("/api/articles", c.ListArticles)
	r.POST("/api/articles", c.CreateArticle)
	r.GET("/api/article/:id", c.GetArticle)
	r.POST("/api/articles/:id/comments", c.CreateComment)
	r.PUT("/api/articles/:id", c.UpdateArticle)
	r.DELETE("/api/articles/:id", c.DeleteArticle)
	return r, mock
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func articleRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "title", "content", "author", "is_published", "pub_date", "created_at", "updated_at"})
}

func commentRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "author", "content", "article_id", "created_at"})
}

func TestCreateArticleEndpoint(t *testing.T) {
	r, mock := newTestRouter(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `articles`")).
		WithArgs("Python", "Python Content", "Python", true, sqlmock.AnyArg(), sqlmock.AnyArg(), nil).
		WillReturnResult(sqlmock.NewResult(1, 1))

	w := doJSON(r, http.MethodPost, "/api/articles", `{"title":"Python","content":"Python Content","author":"Python"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Data inserted successfully", body["message"])
	data := body["data"].(map[string]any)
	assert.Equal(t, "Python", data["title"])
	assert.Nil(t, data["updated_at"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateArticleEndpointDefaultsAuthor(t *testing.T) {
	r, mock := newTestRouter(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `articles`")).
		WithArgs("Python", "Python Content", store.AuthorFallback, true, sqlmock.AnyArg(), sqlmock.AnyArg(), nil).
		WillReturnResult(sqlmock.NewResult(1, 1))

	w := doJSON(r, http.MethodPost, "/api/articles", `{"title":"Python","content":"Python Content"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := decodeBody(t, w)["data"].(map[string]any)
	assert.Equal(t, store.AuthorFallback, data["author"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateArticleEndpointMissingFields(t *testing.T) {
	r, mock := newTestRouter(t)

	w := doJSON(r, http.MethodPost, "/api/articles", `{}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Title and content fields are required and cannot be blank", body["message"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetArticleEndpoint(t *testing.T) {
	r, mock := newTestRouter(t)

	now := time.Now()
	mock.ExpectQuery("SELECT \\* FROM `articles` WHERE").
		WillReturnRows(articleRows().AddRow(7, "Job", "Job Content", "HR Author", true, now, now, nil))
	mock.ExpectQuery("SELECT \\* FROM `comments` WHERE").
		WillReturnRows(commentRows().AddRow(1, "Reader", "first", 7, now))

	w := doJSON(r, http.MethodGet, "/api/article/7", "")

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Data retrieved successfully", body["message"])
	data := body["data"].(map[string]any)
	assert.Equal(t, "Job", data["title"])
	comments := data["comments"].([]any)
	require.Len(t, comments, 1)
	assert.Equal(t, float64(7), comments[0].(map[string]any)["article_id"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetArticleEndpointNotFound(t *testing.T) {
	r, mock := newTestRouter(t)

	mock.ExpectQuery("SELECT \\* FROM `articles` WHERE").
		WillReturnRows(articleRows())

	w := doJSON(r, http.MethodGet, "/api/article/999", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "No articles found with provided id", body["message"])
	assert.Equal(t, []any{}, body["data"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListArticlesEndpointPagination(t *testing.T) {
	r, mock := newTestRouter(t)

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `articles`")).
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(10))
	rows := articleRows()
	for i := 6; i <= 10; i++ {
		rows.AddRow(i, "Title", "Body", "Author1", true, now, now, nil)
	}
	mock.ExpectQuery("SELECT \\* FROM `articles`").WillReturnRows(rows)
	mock.ExpectQuery("SELECT \\* FROM `comments` WHERE").
		WillReturnRows(commentRows())
	mock.ExpectCommit()

	w := doJSON(r, http.MethodGet, "/api/articles?page=2&per_page=5", "")

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Data retrieved successfully", body["message"])
	assert.Equal(t, float64(10), body["total_article"])
	assert.Len(t, body["data"].([]any), 5)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListArticlesEndpointAuthorFilter(t *testing.T) {
	r, mock := newTestRouter(t)

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `articles` WHERE LOWER(author) = ?")).
		WithArgs("author1").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("LOWER(author) = ?")).
		WillReturnRows(articleRows().AddRow(1, "Test Title 1", "Test Content 1", "Author1", true, now, now, nil))
	mock.ExpectQuery("SELECT \\* FROM `comments` WHERE").
		WillReturnRows(commentRows())
	mock.ExpectCommit()

	// Mixed-case author matches case-insensitively.
	w := doJSON(r, http.MethodGet, "/api/articles?author=AUTHOR1", "")

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, float64(1), body["total_article"])
	assert.Len(t, body["data"].([]any), 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListArticlesEndpointEmpty(t *testing.T) {
	r, mock := newTestRouter(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `articles`")).
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(0))
	mock.ExpectQuery("SELECT \\* FROM `articles`").
		WillReturnRows(articleRows())
	mock.ExpectCommit()

	w := doJSON(r, http.MethodGet, "/api/articles?keyword=nothing-matches", "")

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "No articles found", body["message"])
	assert.Equal(t, float64(0), body["total_article"])
	assert.Equal(t, []any{}, body["data"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateArticleEndpoint(t *testing.T) {
	r, mock := newTestRouter(t)

	now := time.Now()
	mock.ExpectQuery("SELECT \\* FROM `articles` WHERE").
		WillReturnRows(articleRows().AddRow(1, "Test Title", "Test Content", "Test Author", true, now, now, nil))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `articles` SET")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT \\* FROM `comments` WHERE").
		WillReturnRows(commentRows())

	w := doJSON(r, http.MethodPut, "/api/articles/1", `{"title":"Updated Title"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Article updated successfully", body["message"])
	data := body["data"].(map[string]any)
	assert.Equal(t, "Updated Title", data["title"])
	assert.Equal(t, "Test Content", data["content"])
	assert.Equal(t, "Test Author", data["author"])
	assert.NotNil(t, data["updated_at"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateArticleEndpointEmptyBody(t *testing.T) {
	r, mock := newTestRouter(t)

	w := doJSON(r, http.MethodPut, "/api/articles/1", `{}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No data provided for update", decodeBody(t, w)["message"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateArticleEndpointNotFound(t *testing.T) {
	r, mock := newTestRouter(t)

	mock.ExpectQuery("SELECT \\* FROM `articles` WHERE").
		WillReturnRows(articleRows())

	w := doJSON(r, http.MethodPut, "/api/articles/404", `{"title":"anything"}`)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "No articles found with provided id", decodeBody(t, w)["message"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteArticleEndpoint(t *testing.T) {
	r, mock := newTestRouter(t)

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `articles` WHERE").
		WillReturnRows(articleRows().AddRow(1, "Test Title", "Test Content", "Test Author", true, now, now, nil))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `comments`")).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `articles`")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	w := doJSON(r, http.MethodDelete, "/api/articles/1", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Article and associated comments deleted successfully", decodeBody(t, w)["message"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteArticleEndpointNotFound(t *testing.T) {
	r, mock := newTestRouter(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `articles` WHERE").
		WillReturnRows(articleRows())
	mock.ExpectRollback()

	w := doJSON(r, http.MethodDelete, "/api/articles/1000", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Article not found or already deleted", decodeBody(t, w)["message"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCommentEndpoint(t *testing.T) {
	r, mock := newTestRouter(t)

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `articles` WHERE").
		WillReturnRows(articleRows().AddRow(1, "Test Title", "Test Content", "Test Author", true, now, now, nil))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `comments`")).
		WithArgs("Test Author", "Test Content", 1, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectCommit()

	w := doJSON(r, http.MethodPost, "/api/articles/1/comments", `{"author":"Test Author","content":"Test Content"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Comment added successfully", body["message"])
	data := body["data"].(map[string]any)
	assert.Equal(t, float64(1), data["article_id"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCommentEndpointMissingFields(t *testing.T) {
	r, mock := newTestRouter(t)

	w := doJSON(r, http.MethodPost, "/api/articles/1/comments", `{}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Author and content fields are required and cannot be blank", decodeBody(t, w)["message"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCommentEndpointUnknownArticle(t *testing.T) {
	r, mock := newTestRouter(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `articles` WHERE").
		WillReturnRows(articleRows())
	mock.ExpectRollback()

	w := doJSON(r, http.MethodPost, "/api/articles/883/comments", `{"author":"Test Author","content":"Test Content"}`)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "No articles found with provided id", decodeBody(t, w)["message"])
	assert.NoError(t, mock.ExpectationsWereMet())
}
