package controllers

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"thaitour_go/services"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// PublicController serves the website without authentication
type PublicController struct {
	Catalog  *services.CatalogService
	Brochure *services.BrochureService
}

func (pc *PublicController) GetCountries(c *fiber.Ctx) error {
	countries, err := pc.Catalog.ListCountries(c.UserContext())
	if err != nil {
		return respondError(c, err, "Failed to fetch countries")
	}
	return c.JSON(fiber.Map{"countries": countries})
}

// GetTrips lists active trips; filters: country, type, month (YYYY-MM), featured
func (pc *PublicController) GetTrips(c *fiber.Ctx) error {
	filter := services.TripFilter{
		CountryCode: c.Query("country"),
		TripType:    c.Query("type"),
		Month:       c.Query("month"),
		Page:        c.QueryInt("page", 1),
		Limit:       c.QueryInt("limit", 0),
	}
	if v := c.Query("featured"); v != "" {
		featured, err := strconv.ParseBool(v)
		if err != nil {
			return badRequest(c, "featured must be true or false")
		}
		filter.Featured = &featured
	}

	page, err := pc.Catalog.ListTrips(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err, "Failed to fetch trips")
	}
	return c.JSON(page)
}

func (pc *PublicController) GetTrip(c *fiber.Ctx) error {
	trip, err := pc.Catalog.GetTripBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return respondError(c, err, "Failed to fetch trip")
	}
	return c.JSON(fiber.Map{"trip": trip})
}

// GetTripBrochure renders the trip page as a printable PDF
func (pc *PublicController) GetTripBrochure(c *fiber.Ctx) error {
	trip, err := pc.Catalog.GetTripBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return respondError(c, err, "Failed to fetch trip")
	}
	if pc.Brochure == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Brochure rendering is not configured"})
	}

	var buf bytes.Buffer
	if err := pc.Brochure.Render(&buf, *trip); err != nil {
		if errors.Is(err, services.ErrBrochureFontMissing) {
			logrus.WithError(err).Error("Brochure font missing")
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Brochure rendering is not configured"})
		}
		return respondError(c, err, "Failed to render brochure")
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", trip.Slug+".pdf"))
	return c.Send(buf.Bytes())
}

func (pc *PublicController) GetGallery(c *fiber.Ctx) error {
	items, err := pc.Catalog.ListGallery(c.UserContext(), services.GalleryFilter{
		HighlightOnly: c.Query("highlight") == "true",
		CountryCode:   c.Query("country"),
		Limit:         c.QueryInt("limit", 30),
	})
	if err != nil {
		return respondError(c, err, "Failed to fetch gallery")
	}
	return c.JSON(fiber.Map{"images": items})
}

func (pc *PublicController) GetArticles(c *fiber.Ctx) error {
	page, err := pc.Catalog.ListArticles(c.UserContext(), c.QueryInt("page", 1), c.QueryInt("limit", 0))
	if err != nil {
		return respondError(c, err, "Failed to fetch articles")
	}
	return c.JSON(page)
}

func (pc *PublicController) GetArticle(c *fiber.Ctx) error {
	article, err := pc.Catalog.GetArticleBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return respondError(c, err, "Failed to fetch article")
	}
	return c.JSON(fiber.Map{"article": article})
}

func (pc *PublicController) GetFAQs(c *fiber.Ctx) error {
	faqs, err := pc.Catalog.ListGeneralFAQs(c.UserContext())
	if err != nil {
		return respondError(c, err, "Failed to fetch FAQs")
	}
	return c.JSON(fiber.Map{"faqs": faqs})
}
