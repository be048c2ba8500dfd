package controllers

import (
	"strconv"
	"strings"

	"thaitour_go/database"
	"thaitour_go/models"
	"thaitour_go/storage"
	"thaitour_go/utils"

	"github.com/gofiber/fiber/v2"
)

type GalleryController struct {
	Notifier *ChangeNotifier
	Storage  *storage.StorageService
}

type GalleryImageRequest struct {
	Title       *string `json:"title"`
	Caption     *string `json:"caption"`
	CountryID   *uint   `json:"country_id"`
	TripID      *uint   `json:"trip_id"`
	IsHighlight *bool   `json:"is_highlight"`
	SortOrder   *int    `json:"sort_order"`
}

func (req GalleryImageRequest) apply(img *models.GalleryImage) {
	if req.Title != nil {
		img.Title = utils.SanitizeString(*req.Title)
	}
	if req.Caption != nil {
		img.Caption = utils.SanitizeString(*req.Caption)
	}
	if req.CountryID != nil {
		img.CountryID = optionalID(*req.CountryID)
	}
	if req.TripID != nil {
		img.TripID = optionalID(*req.TripID)
	}
	if req.IsHighlight != nil {
		img.IsHighlight = *req.IsHighlight
	}
	if req.SortOrder != nil {
		img.SortOrder = *req.SortOrder
	}
}

// optionalID maps 0 to NULL so a link can be cleared
func optionalID(id uint) *uint {
	if id == 0 {
		return nil
	}
	return &id
}

func formUint(c *fiber.Ctx, key string) *uint {
	v := strings.TrimSpace(c.FormValue(key))
	if v == "" {
		return nil
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil || n == 0 {
		return nil
	}
	id := uint(n)
	return &id
}

func (gc *GalleryController) GetImages(c *fiber.Ctx) error {
	page, limit, offset := pagination(c, 30)

	query := database.DB.Model(&models.GalleryImage{})
	if countryID := c.Query("country_id"); countryID != "" {
		query = query.Where("country_id = ?", countryID)
	}
	if tripID := c.Query("trip_id"); tripID != "" {
		query = query.Where("trip_id = ?", tripID)
	}
	if highlight := c.Query("highlight"); highlight != "" {
		query = query.Where("is_highlight = ?", highlight == "true")
	}

	var total int64
	query.Count(&total)

	var images []models.GalleryImage
	if err := query.Order("sort_order ASC, id DESC").Offset(offset).Limit(limit).Find(&images).Error; err != nil {
		return respondError(c, err, "Failed to fetch gallery")
	}
	return c.JSON(fiber.Map{"images": images, "total": total, "page": page, "limit": limit})
}

// UploadImage stores the multipart "image" file and creates a gallery entry
func (gc *GalleryController) UploadImage(c *fiber.Ctx) error {
	var ownerID uint
	tripID := formUint(c, "trip_id")
	if tripID != nil {
		ownerID = *tripID
	}

	url, err := uploadFormImage(c, gc.Storage, "image", storage.FolderGallery, ownerID)
	if err != nil {
		return respondError(c, err, "Failed to upload image")
	}

	img := models.GalleryImage{
		Title:       utils.SanitizeString(c.FormValue("title")),
		Caption:     utils.SanitizeString(c.FormValue("caption")),
		ImageURL:    url,
		CountryID:   formUint(c, "country_id"),
		TripID:      tripID,
		IsHighlight: c.FormValue("is_highlight") == "true",
	}
	if v := c.FormValue("sort_order"); v != "" {
		img.SortOrder, _ = strconv.Atoi(v)
	}

	if err := database.DB.Omit("Country", "Trip").Create(&img).Error; err != nil {
		removeStoredFile(gc.Storage, url)
		return respondError(c, err, "Failed to save gallery image")
	}

	gc.Notifier.Changed(c, "UPLOAD", "gallery", img.ID, fiber.Map{"image_url": url})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Image uploaded successfully", "image": img})
}

func (gc *GalleryController) UpdateImage(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err, "")
	}

	var img models.GalleryImage
	if err := database.DB.First(&img, id).Error; err != nil {
		return notFound(c, "Image")
	}

	var req GalleryImageRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	req.apply(&img)

	if err := database.DB.Omit("Country", "Trip").Save(&img).Error; err != nil {
		return respondError(c, err, "Failed to update image")
	}

	gc.Notifier.Changed(c, "UPDATE", "gallery", img.ID, req)
	return c.JSON(fiber.Map{"message": "Image updated successfully", "image": img})
}

// ToggleHighlight flips whether the image appears in the homepage highlights
func (gc *GalleryController) ToggleHighlight(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err, "")
	}

	var img models.GalleryImage
	if err := database.DB.First(&img, id).Error; err != nil {
		return notFound(c, "Image")
	}

	img.IsHighlight = !img.IsHighlight
	if err := database.DB.Model(&img).Update("is_highlight", img.IsHighlight).Error; err != nil {
		return respondError(c, err, "Failed to update image")
	}

	gc.Notifier.Changed(c, "HIGHLIGHT", "gallery", img.ID, fiber.Map{"is_highlight": img.IsHighlight})
	return c.JSON(fiber.Map{"message": "Highlight updated", "is_highlight": img.IsHighlight})
}

func (gc *GalleryController) DeleteImage(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err, "")
	}

	var img models.GalleryImage
	if err := database.DB.First(&img, id).Error; err != nil {
		return notFound(c, "Image")
	}

	if err := database.DB.Delete(&img).Error; err != nil {
		return respondError(c, err, "Failed to delete image")
	}
	removeStoredFile(gc.Storage, img.ImageURL)

	gc.Notifier.Changed(c, "DELETE", "gallery", img.ID, nil)
	return c.JSON(fiber.Map{"message": "Image deleted successfully"})
}
