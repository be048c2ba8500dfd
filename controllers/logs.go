package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"thaitour_go/database"
	"thaitour_go/models"
	"thaitour_go/services"
	"thaitour_go/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// LogController exposes the activity log to admins
type LogController struct {
	Archive *services.LogArchiveService
}

// LogResponse represents a log entry response
type LogResponse struct {
	ID         uint                   `json:"id"`
	UserID     uint                   `json:"user_id"`
	Username   string                 `json:"username"`
	UserRole   string                 `json:"user_role"`
	Action     string                 `json:"action"`
	Resource   string                 `json:"resource"`
	ResourceID uint                   `json:"resource_id"`
	Details    map[string]interface{} `json:"details"`
	IPAddress  string                 `json:"ip_address"`
	UserAgent  string                 `json:"user_agent"`
	CreatedAt  time.Time              `json:"created_at"`
}

type LogsStatsResponse struct {
	Total             int64            `json:"total"`
	TotalToday        int64            `json:"total_today"`
	TotalThisWeek     int64            `json:"total_this_week"`
	ActionBreakdown   map[string]int64 `json:"action_breakdown"`
	ResourceBreakdown map[string]int64 `json:"resource_breakdown"`
	TopUsers          []UserActivity   `json:"top_users"`
}

type UserActivity struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Count    int64  `json:"count"`
}

func toLogResponse(l models.ActivityLog) LogResponse {
	r := LogResponse{
		ID:         l.ID,
		UserID:     l.UserID,
		Username:   l.Username,
		UserRole:   l.UserRole,
		Action:     l.Action,
		Resource:   l.Resource,
		ResourceID: l.ResourceID,
		IPAddress:  l.IPAddress,
		UserAgent:  l.UserAgent,
		CreatedAt:  l.CreatedAt,
	}
	if !l.Details.IsNull() {
		var details map[string]interface{}
		if err := json.Unmarshal(l.Details, &details); err == nil {
			r.Details = details
		}
	}
	return r
}

// filteredLogs applies the shared query string filters
func filteredLogs(c *fiber.Ctx) *gorm.DB {
	query := database.DB.Model(&models.ActivityLog{})
	if userID := c.Query("user_id"); userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	if action := c.Query("action"); action != "" {
		query = query.Where("action = ?", action)
	}
	if resource := c.Query("resource"); resource != "" {
		query = query.Where("resource = ?", resource)
	}
	if startDate := c.Query("start_date"); startDate != "" {
		if parsed, err := utils.ParseISODate(startDate); err == nil {
			query = query.Where("created_at >= ?", parsed)
		}
	}
	if endDate := c.Query("end_date"); endDate != "" {
		if parsed, err := utils.ParseISODate(endDate); err == nil {
			query = query.Where("created_at < ?", parsed.AddDate(0, 0, 1))
		}
	}
	return query
}

// GetLogs retrieves paginated activity logs with filters
func (lc *LogController) GetLogs(c *fiber.Ctx) error {
	page, limit, offset := pagination(c, 50)
	query := filteredLogs(c)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return respondError(c, err, "Failed to retrieve logs count")
	}

	var activityLogs []models.ActivityLog
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&activityLogs).Error; err != nil {
		return respondError(c, err, "Failed to retrieve logs")
	}

	logs := make([]LogResponse, len(activityLogs))
	for i, l := range activityLogs {
		logs[i] = toLogResponse(l)
	}

	return c.JSON(fiber.Map{
		"logs":        logs,
		"total":       total,
		"page":        page,
		"limit":       limit,
		"total_pages": (total + int64(limit) - 1) / int64(limit),
	})
}

// GetLogStats summarises recent activity
func (lc *LogController) GetLogStats(c *fiber.Ctx) error {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	thisWeek := today.AddDate(0, 0, -int(today.Weekday()))

	stats := LogsStatsResponse{
		ActionBreakdown:   make(map[string]int64),
		ResourceBreakdown: make(map[string]int64),
		TopUsers:          []UserActivity{},
	}

	database.DB.Model(&models.ActivityLog{}).Count(&stats.Total)
	database.DB.Model(&models.ActivityLog{}).Where("created_at >= ?", today).Count(&stats.TotalToday)
	database.DB.Model(&models.ActivityLog{}).Where("created_at >= ?", thisWeek).Count(&stats.TotalThisWeek)

	var actionStats []struct {
		Action string
		Count  int64
	}
	database.DB.Model(&models.ActivityLog{}).Select("action, COUNT(*) as count").Group("action").Find(&actionStats)
	for _, stat := range actionStats {
		stats.ActionBreakdown[stat.Action] = stat.Count
	}

	var resourceStats []struct {
		Resource string
		Count    int64
	}
	database.DB.Model(&models.ActivityLog{}).Select("resource, COUNT(*) as count").Group("resource").Find(&resourceStats)
	for _, stat := range resourceStats {
		stats.ResourceBreakdown[stat.Resource] = stat.Count
	}

	database.DB.Model(&models.ActivityLog{}).
		Select("user_id, username, COUNT(*) as count").
		Where("created_at >= ?", thisWeek).
		Group("user_id, username").
		Order("count DESC").
		Limit(10).
		Find(&stats.TopUsers)

	return c.JSON(stats)
}

// GetLog retrieves a single log entry by ID
func (lc *LogController) GetLog(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err, "")
	}

	var activityLog models.ActivityLog
	if err := database.DB.First(&activityLog, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "Log")
		}
		return respondError(c, err, "Failed to retrieve log")
	}
	return c.JSON(toLogResponse(activityLog))
}

// ExportLogs writes the filtered logs to an xlsx workbook
func (lc *LogController) ExportLogs(c *fiber.Ctx) error {
	var logs []models.ActivityLog
	if err := filteredLogs(c).Order("created_at DESC").Limit(50000).Find(&logs).Error; err != nil {
		return respondError(c, err, "Failed to retrieve logs for export")
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Logs"
	f.SetSheetName("Sheet1", sheet)
	header := []interface{}{"ID", "User ID", "Username", "Role", "Action", "Resource", "Resource ID", "IP Address", "User Agent", "Created At", "Details"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return respondError(c, err, "Failed to build export")
	}
	for i, l := range logs {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{
			l.ID, l.UserID, l.Username, l.UserRole, l.Action, l.Resource, l.ResourceID,
			l.IPAddress, l.UserAgent, l.CreatedAt.Format("2006-01-02 15:04:05"), string(l.Details),
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return respondError(c, err, "Failed to build export")
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return respondError(c, err, "Failed to build export")
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=activity_logs_%s.xlsx", time.Now().Format("20060102")))
	return c.Send(buf.Bytes())
}

// FlushCachedLogs writes every queued activity log to the database
func (lc *LogController) FlushCachedLogs(c *fiber.Ctx) error {
	processed, err := lc.Archive.FlushCachedLogs(c.UserContext(), 0)
	if err != nil {
		return respondError(c, err, "Failed to flush cached logs")
	}
	return c.JSON(fiber.Map{"message": "Cached logs flushed", "processed_count": processed})
}

// ArchiveLogs moves logs older than ?days= (default 30) to S3
func (lc *LogController) ArchiveLogs(c *fiber.Ctx) error {
	days := c.QueryInt("days", 30)
	if days < services.MinArchiveAgeDays {
		return badRequest(c, fmt.Sprintf("days must be at least %d", services.MinArchiveAgeDays))
	}
	if err := lc.Archive.ArchiveOldLogs(c.UserContext(), days); err != nil {
		return respondError(c, err, "Failed to archive logs")
	}
	return c.JSON(fiber.Map{"message": "Logs archived", "days": days})
}

func (lc *LogController) GetArchives(c *fiber.Ctx) error {
	archives, err := lc.Archive.GetArchivedLogs(c.UserContext())
	if err != nil {
		return respondError(c, err, "Failed to retrieve archives")
	}
	return c.JSON(fiber.Map{"archives": archives})
}

// DownloadArchive streams a zip archive back from S3
func (lc *LogController) DownloadArchive(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err, "")
	}

	body, fileName, err := lc.Archive.DownloadArchivedLogs(c.UserContext(), id)
	if errors.Is(err, services.ErrArchiveNotFound) {
		return notFound(c, "Archive")
	}
	if err != nil {
		return respondError(c, err, "Failed to download archive")
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		logrus.WithError(err).WithField("archive_id", id).Error("Failed to read archive body")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Failed to read archive"})
	}

	c.Set(fiber.HeaderContentType, "application/zip")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", fileName))
	return c.Send(data)
}
