package store

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"article-api/models"
)

// AuthorFallback is stored when an article is created without an author.
const AuthorFallback = "No Name"

// ArticleStore owns the durable Article and Comment records and their
// parent/child integrity. All timestamps are taken in loc, the publication
// timezone resolved once at startup.
type ArticleStore struct {
	db             *gorm.DB
	loc            *time.Location
	defaultPerPage int
}

// NewArticleStore creates a store bound to db. loc defaults to UTC and
// defaultPerPage to DefaultPerPage when zero.
func NewArticleStore(db *gorm.DB, loc *time.Location, defaultPerPage int) *ArticleStore {
	if loc == nil {
		loc = time.UTC
	}
	if defaultPerPage <= 0 {
		defaultPerPage = DefaultPerPage
	}
	return &ArticleStore{db: db, loc: loc, defaultPerPage: defaultPerPage}
}

// CreateArticle persists a new article. Title and content are required; a
// blank author is replaced by AuthorFallback. New articles are published by
// default and get pub_date/created_at set to the creation instant.
func (s *ArticleStore) CreateArticle(title, content, author string) (*models.Article, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	author = strings.TrimSpace(author)
	if title == "" || content == "" {
		return nil, &ValidationError{Message: "Title and content fields are required and cannot be blank"}
	}
	if author == "" {
		author = AuthorFallback
	}

	now := time.Now().In(s.loc)
	article := models.Article{
		Title:       title,
		Content:     content,
		Author:      author,
		IsPublished: true,
		PubDate:     now,
		CreatedAt:   now,
		Comments:    []models.Comment{},
	}
	if err := s.db.Create(&article).Error; err != nil {
		return nil, err
	}
	return &article, nil
}

// GetArticle returns the article with its comments in creation order, or
// ErrNotFound.
func (s *ArticleStore) GetArticle(id uint) (*models.Article, error) {
	var article models.Article
	err := s.db.Preload("Comments", commentOrder).First(&article, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if article.Comments == nil {
		article.Comments = []models.Comment{}
	}
	return &article, nil
}

// ArticlePatch carries the optional fields of a partial article update.
// Nil fields are left unchanged.
type ArticlePatch struct {
	Title   *string
	Content *string
	Author  *string
}

func (p ArticlePatch) isEmpty() bool {
	return p.Title == nil && p.Content == nil && p.Author == nil
}

// UpdateArticle applies the non-nil fields of patch to the article and bumps
// updated_at. An empty patch is a ValidationError; an unknown id is
// ErrNotFound. pub_date and created_at are never touched.
func (s *ArticleStore) UpdateArticle(id uint, patch ArticlePatch) (*models.Article, error) {
	if patch.isEmpty() {
		return nil, &ValidationError{Message: "No data provided for update"}
	}

	var article models.Article
	if err := s.db.First(&article, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if patch.Title != nil {
		article.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Content != nil {
		article.Content = strings.TrimSpace(*patch.Content)
	}
	if patch.Author != nil {
		article.Author = strings.TrimSpace(*patch.Author)
	}
	if article.Title == "" || article.Content == "" {
		return nil, &ValidationError{Message: "Title and content fields are required and cannot be blank"}
	}

	now := time.Now().In(s.loc)
	article.UpdatedAt = &now
	if err := s.db.Save(&article).Error; err != nil {
		return nil, err
	}

	comments, err := s.ListCommentsForArticle(article.ID)
	if err != nil {
		return nil, err
	}
	article.Comments = comments
	return &article, nil
}

// DeleteArticle removes the article and all its comments in one transaction,
// so no observer ever sees the article gone while a comment referencing it
// still exists. Returns ErrNotFound when the id is unknown.
func (s *ArticleStore) DeleteArticle(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var article models.Article
		if err := tx.First(&article, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Where("article_id = ?", article.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&article).Error
	})
}

// CreateComment attaches a new comment to an existing article. Author and
// content are required. The existence check and the insert share one
// transaction so a concurrent article deletion can never leave an orphan.
func (s *ArticleStore) CreateComment(articleID uint, author, content string) (*models.Comment, error) {
	author = strings.TrimSpace(author)
	content = strings.TrimSpace(content)
	if author == "" || content == "" {
		return nil, &ValidationError{Message: "Author and content fields are required and cannot be blank"}
	}

	var comment models.Comment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var article models.Article
		if err := tx.First(&article, articleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		comment = models.Comment{
			ArticleID: article.ID,
			Author:    author,
			Content:   content,
			CreatedAt: time.Now().In(s.loc),
		}
		return tx.Create(&comment).Error
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListCommentsForArticle returns the article's comments in creation order.
func (s *ArticleStore) ListCommentsForArticle(articleID uint) ([]models.Comment, error) {
	comments := []models.Comment{}
	err := s.db.Where("article_id = ?", articleID).Order("id ASC").Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// NormalizeQuery resolves q against the store's configured default page size.
func (s *ArticleStore) NormalizeQuery(q ListQuery) ListQuery {
	return q.Normalize(s.defaultPerPage)
}

// ListArticles runs one filtered, sorted, paginated read over articles and
// returns the page items plus the total count of the filtered set. Count and
// page fetch share a transaction so the pair is snapshot-consistent. An empty
// result is ([], 0, nil), never an error.
func (s *ArticleStore) ListArticles(q ListQuery) ([]models.Article, int64, error) {
	q = q.Normalize(s.defaultPerPage)

	articles := []models.Article{}
	var total int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		query := tx.Model(&models.Article{})
		if q.Author != "" {
			query = query.Where("LOWER(author) = ?", strings.ToLower(q.Author))
		}
		if q.Keyword != "" {
			kw := "%" + strings.ToLower(q.Keyword) + "%"
			query = query.Where("LOWER(title) LIKE ? OR LOWER(content) LIKE ?", kw, kw)
		}
		if err := query.Count(&total).Error; err != nil {
			return err
		}
		return query.Order(q.OrderClause()).
			Offset(q.Offset()).
			Limit(q.PerPage).
			Preload("Comments", commentOrder).
			Find(&articles).Error
	})
	if err != nil {
		return nil, 0, err
	}
	for i := range articles {
		if articles[i].Comments == nil {
			articles[i].Comments = []models.Comment{}
		}
	}
	return articles, total, nil
}

func commentOrder(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}
