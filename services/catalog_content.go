package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"thaitour_go/models"

	"gorm.io/gorm"
)

// GalleryFilter narrows the public gallery
type GalleryFilter struct {
	HighlightOnly bool
	CountryCode   string
	Limit         int
}

// GalleryItem is a public gallery photo
type GalleryItem struct {
	ID        uint   `json:"id"`
	Title     string `json:"title"`
	ImageURL  string `json:"image_url"`
	Caption   string `json:"caption"`
	CountryID *uint  `json:"country_id,omitempty"`
	TripID    *uint  `json:"trip_id,omitempty"`
	Highlight bool   `json:"is_highlight"`
}

// ArticleCard is an article as shown in listings
type ArticleCard struct {
	ID          uint       `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Excerpt     string     `json:"excerpt"`
	CoverImage  string     `json:"cover_image"`
	PublishedAt *time.Time `json:"published_at"`
}

// ArticlePage is one page of published articles
type ArticlePage struct {
	Articles []ArticleCard `json:"articles"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	Limit    int           `json:"limit"`
}

// ArticleView is a published article with its body
type ArticleView struct {
	ArticleCard
	Content    string `json:"content"`
	AuthorName string `json:"author_name,omitempty"`
}

func toArticleCard(a models.Article) ArticleCard {
	return ArticleCard{
		ID:          a.ID,
		Title:       a.Title,
		Slug:        a.Slug,
		Excerpt:     a.Excerpt,
		CoverImage:  a.CoverImage,
		PublishedAt: a.PublishedAt,
	}
}

// ListGallery returns gallery photos, highlights first.
func (s *CatalogService) ListGallery(ctx context.Context, f GalleryFilter) ([]GalleryItem, error) {
	f.CountryCode = strings.ToUpper(strings.TrimSpace(f.CountryCode))
	if f.Limit < 1 || f.Limit > maxPageLimit {
		f.Limit = 30
	}
	key := fmt.Sprintf("gallery:h=%t:c=%s:l=%d", f.HighlightOnly, f.CountryCode, f.Limit)

	var out []GalleryItem
	err := s.remember(ctx, key, &out, func() error {
		db := s.db.WithContext(ctx)
		query := db.Model(&models.GalleryImage{})
		if f.HighlightOnly {
			query = query.Where("is_highlight = ?", true)
		}
		if f.CountryCode != "" {
			query = query.Where("country_id IN (?)", db.Model(&models.Country{}).Select("id").Where("code = ?", f.CountryCode))
		}
		var images []models.GalleryImage
		if err := query.Order("is_highlight DESC, sort_order ASC, id DESC").Limit(f.Limit).Find(&images).Error; err != nil {
			return fmt.Errorf("list gallery: %w", err)
		}
		out = make([]GalleryItem, 0, len(images))
		for _, img := range images {
			out = append(out, GalleryItem{
				ID:        img.ID,
				Title:     img.Title,
				ImageURL:  img.ImageURL,
				Caption:   img.Caption,
				CountryID: img.CountryID,
				TripID:    img.TripID,
				Highlight: img.IsHighlight,
			})
		}
		return nil
	})
	return out, err
}

// ListArticles returns published articles, newest first.
func (s *CatalogService) ListArticles(ctx context.Context, page, limit int) (*ArticlePage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > maxPageLimit {
		limit = defaultPageLimit
	}

	out := &ArticlePage{Page: page, Limit: limit}
	err := s.remember(ctx, fmt.Sprintf("articles:p=%d:l=%d", page, limit), out, func() error {
		query := s.db.WithContext(ctx).Model(&models.Article{}).Where("published = ?", true)
		if err := query.Count(&out.Total).Error; err != nil {
			return fmt.Errorf("count articles: %w", err)
		}
		var articles []models.Article
		if err := query.Omit("content").
			Order("published_at DESC, id DESC").
			Offset((page - 1) * limit).Limit(limit).
			Find(&articles).Error; err != nil {
			return fmt.Errorf("list articles: %w", err)
		}
		out.Articles = make([]ArticleCard, 0, len(articles))
		for _, a := range articles {
			out.Articles = append(out.Articles, toArticleCard(a))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetArticleBySlug returns a published article.
func (s *CatalogService) GetArticleBySlug(ctx context.Context, slug string) (*ArticleView, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return nil, ErrNotFound
	}

	view := &ArticleView{}
	err := s.remember(ctx, "article:"+slug, view, func() error {
		var article models.Article
		err := s.db.WithContext(ctx).Preload("Author").
			Where("slug = ? AND published = ?", slug, true).
			First(&article).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get article %s: %w", slug, err)
		}
		view.ArticleCard = toArticleCard(article)
		view.Content = article.Content
		if article.Author != nil {
			view.AuthorName = article.Author.DisplayName
			if view.AuthorName == "" {
				view.AuthorName = article.Author.Username
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// ListGeneralFAQs returns active FAQs not tied to a trip.
func (s *CatalogService) ListGeneralFAQs(ctx context.Context) ([]models.FAQ, error) {
	var out []models.FAQ
	err := s.remember(ctx, "faqs:general", &out, func() error {
		if err := s.db.WithContext(ctx).
			Where("trip_id IS NULL AND is_active = ?", true).
			Order("sort_order ASC, id ASC").
			Find(&out).Error; err != nil {
			return fmt.Errorf("list faqs: %w", err)
		}
		return nil
	})
	return out, err
}
