package controllers

import (
	"strings"
	"time"

	"thaitour_go/database"
	"thaitour_go/middleware"
	"thaitour_go/models"
	"thaitour_go/storage"
	"thaitour_go/utils"

	"github.com/gofiber/fiber/v2"
)

type ArticleController struct {
	Notifier *ChangeNotifier
	Storage  *storage.StorageService
}

type ArticleRequest struct {
	Title      *string `json:"title"`
	Slug       *string `json:"slug"`
	Excerpt    *string `json:"excerpt"`
	Content    *string `json:"content"`
	CoverImage *string `json:"cover_image"`
}

func (req ArticleRequest) apply(a *models.Article) {
	if req.Title != nil {
		a.Title = utils.SanitizeString(*req.Title)
	}
	if req.Slug != nil {
		a.Slug = strings.ToLower(strings.TrimSpace(*req.Slug))
	}
	if req.Excerpt != nil {
		a.Excerpt = utils.SanitizeString(*req.Excerpt)
	}
	if req.Content != nil {
		a.Content = *req.Content
	}
	if req.CoverImage != nil {
		a.CoverImage = strings.TrimSpace(*req.CoverImage)
	}
	if a.Slug == "" {
		a.Slug = utils.Slugify(a.Title)
	}
}

func validateArticle(a models.Article) string {
	if a.Title == "" {
		return "title is required"
	}
	if !utils.IsValidSlug(a.Slug) {
		return "slug must be lowercase letters, digits and dashes"
	}
	return ""
}

func (ac *ArticleController) GetArticles(c *fiber.Ctx) error {
	page, limit, offset := pagination(c, 20)

	query := database.DB.Model(&models.Article{})
	if published := c.Query("published"); published != "" {
		query = query.Where("published = ?", published == "true")
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		like := "%" + search + "%"
		query = query.Where("title LIKE ? OR slug LIKE ?", like, like)
	}

	var total int64
	query.Count(&total)

	var articles []models.Article
	if err := query.Omit("content").Order("id DESC").Offset(offset).Limit(limit).Find(&articles).Error; err != nil {
		return respondError(c, err, "Failed to fetch articles")
	}
	return c.JSON(fiber.Map{"articles": articles, "total": total, "page": page, "limit": limit})
}

func (ac *ArticleController) GetArticle(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err, "")
	}
	var article models.Article
	if err := database.DB.First(&article, id).Error; err != nil {
		return notFound(c, "Article")
	}
	return c.JSON(fiber.Map{"article": article})
}

func (ac *ArticleController) CreateArticle(c *fiber.Ctx) error {
	var req ArticleRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	var article models.Article
	req.apply(&article)
	if msg := validateArticle(article); msg != "" {
		return badRequest(c, msg)
	}
	if user, err := middleware.GetCurrentUser(c); err == nil {
		article.AuthorID = &user.ID
	}

	if err := database.DB.Omit("Author").Create(&article).Error; err != nil {
		return respondError(c, err, "Failed to create article")
	}

	ac.Notifier.Changed(c, "CREATE", "articles", article.ID, fiber.Map{"slug": article.Slug})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Article created successfully", "article": article})
}

func (ac *ArticleController) UpdateArticle(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err, "")
	}

	var article models.Article
	if err := database.DB.First(&article, id).Error; err != nil {
		return notFound(c, "Article")
	}

	var req ArticleRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	req.apply(&article)
	if msg := validateArticle(article); msg != "" {
		return badRequest(c, msg)
	}

	if err := database.DB.Omit("Author").Save(&article).Error; err != nil {
		return respondError(c, err, "Failed to update article")
	}

	ac.Notifier.Changed(c, "UPDATE", "articles", article.ID, fiber.Map{"slug": article.Slug})
	return c.JSON(fiber.Map{"message": "Article updated successfully", "article": article})
}

// TogglePublish publishes or unpublishes; first publication stamps published_at
func (ac *ArticleController) TogglePublish(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err, "")
	}

	var article models.Article
	if err := database.DB.First(&article, id).Error; err != nil {
		return notFound(c, "Article")
	}

	updates := map[string]interface{}{"published": !article.Published}
	if !article.Published && article.PublishedAt == nil {
		now := time.Now()
		updates["published_at"] = now
		article.PublishedAt = &now
	}
	article.Published = !article.Published

	if err := database.DB.Model(&article).Updates(updates).Error; err != nil {
		return respondError(c, err, "Failed to update article")
	}

	action := "UNPUBLISH"
	if article.Published {
		action = "PUBLISH"
	}
	ac.Notifier.Changed(c, action, "articles", article.ID, nil)
	return c.JSON(fiber.Map{"message": "Article updated", "published": article.Published, "published_at": article.PublishedAt})
}

// UploadCover stores the multipart "cover" file as the article image
func (ac *ArticleController) UploadCover(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err, "")
	}

	var article models.Article
	if err := database.DB.First(&article, id).Error; err != nil {
		return notFound(c, "Article")
	}

	url, err := uploadFormImage(c, ac.Storage, "cover", storage.FolderArticles, article.ID)
	if err != nil {
		return respondError(c, err, "Failed to upload cover image")
	}

	previous := article.CoverImage
	if err := database.DB.Model(&article).Update("cover_image", url).Error; err != nil {
		return respondError(c, err, "Failed to save cover image")
	}
	removeStoredFile(ac.Storage, previous)

	ac.Notifier.Changed(c, "UPLOAD_COVER", "articles", article.ID, fiber.Map{"cover_image": url})
	return c.JSON(fiber.Map{"message": "Cover image uploaded", "cover_image": url})
}

func (ac *ArticleController) DeleteArticle(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err, "")
	}

	result := database.DB.Delete(&models.Article{}, id)
	if result.Error != nil {
		return respondError(c, result.Error, "Failed to delete article")
	}
	if result.RowsAffected == 0 {
		return notFound(c, "Article")
	}

	ac.Notifier.Changed(c, "DELETE", "articles", id, nil)
	return c.JSON(fiber.Map{"message": "Article deleted successfully"})
}
