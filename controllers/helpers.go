package controllers

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"thaitour_go/config"
	"thaitour_go/middleware"
	"thaitour_go/services"
	"thaitour_go/storage"
	"thaitour_go/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ChangeNotifier runs the side effects of every admin write: activity log,
// public cache invalidation and a websocket event.
type ChangeNotifier struct {
	Catalog *services.CatalogService
	Events  services.EventPublisher
}

func (n *ChangeNotifier) Changed(c *fiber.Ctx, action, resource string, id uint, details interface{}) {
	middleware.LogActivity(c, action, resource, id, details)
	middleware.MarkActivityLogged(c)
	if n == nil {
		return
	}
	if n.Catalog != nil {
		n.Catalog.Invalidate(c.UserContext())
	}
	if n.Events != nil {
		event := services.ChangeEvent{Type: action, Resource: resource, ResourceID: id, At: time.Now()}
		if user, err := middleware.GetCurrentUser(c); err == nil {
			event.Username = user.Username
		}
		n.Events.Publish(event)
	}
}

func (n *ChangeNotifier) today() time.Time {
	if n == nil || n.Catalog == nil {
		return time.Now()
	}
	return n.Catalog.Today()
}

func parseIDParam(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid "+name)
	}
	return uint(id), nil
}

func pagination(c *fiber.Ctx, defaultLimit int) (page, limit, offset int) {
	page, _ = strconv.Atoi(c.Query("page", "1"))
	limit, _ = strconv.Atoi(c.Query("limit", strconv.Itoa(defaultLimit)))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = defaultLimit
	}
	return page, limit, (page - 1) * limit
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

func notFound(c *fiber.Ctx, what string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": what + " not found"})
}

// respondError maps service and GORM errors to HTTP responses.
func respondError(c *fiber.Ctx, err error, fallback string) error {
	var fe *fiber.Error
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ve.Message, "field": ve.Field})
	case errors.As(err, &fe):
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	case errors.Is(err, services.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Duplicate entry"})
	}
	logrus.WithError(err).WithField("path", c.Path()).Error(fallback)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": fallback})
}

// uploadFormImage stores the multipart image in field and returns its public URL.
func uploadFormImage(c *fiber.Ctx, store *storage.StorageService, field, folder string, ownerID uint) (string, error) {
	if store == nil {
		return "", fiber.NewError(fiber.StatusServiceUnavailable, "File storage is not configured")
	}
	file, err := c.FormFile(field)
	if err != nil {
		return "", fiber.NewError(fiber.StatusBadRequest, "No file uploaded in field "+field)
	}
	allowed := strings.Split(config.AppConfig.AllowedExtensions, ",")
	if !utils.IsValidFileExtension(file.Filename, allowed) {
		return "", fiber.NewError(fiber.StatusBadRequest, "File type not allowed, allowed: "+config.AppConfig.AllowedExtensions)
	}
	if config.AppConfig.MaxFileSize > 0 && file.Size > config.AppConfig.MaxFileSize {
		return "", fiber.NewError(fiber.StatusRequestEntityTooLarge, "File too large")
	}
	url, err := store.UploadImage(file, folder, ownerID)
	if err != nil {
		return "", err
	}
	return url, nil
}

// removeStoredFile deletes a replaced upload; failures are only logged.
func removeStoredFile(store *storage.StorageService, url string) {
	if store == nil || url == "" {
		return
	}
	if err := store.DeleteFile(url); err != nil {
		logrus.WithError(err).WithField("url", url).Warn("Failed to delete stored file")
	}
}
