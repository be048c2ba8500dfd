package services

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"thaitour_go/config"
	"thaitour_go/database"
	"thaitour_go/middleware"
	"thaitour_go/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// MinArchiveAgeDays guards against archiving logs that are still being reviewed.
const MinArchiveAgeDays = 7

var ErrArchiveNotFound = errors.New("archive not found")

// LogArchiveService flushes cached activity logs and archives old ones to S3
type LogArchiveService struct {
	db          *gorm.DB
	redisClient *redis.Client
	awsConfig   aws.Config
	bucket      string
}

// ArchivedLog is the exported representation stored inside archives
type ArchivedLog struct {
	ID         uint           `json:"id"`
	UserID     uint           `json:"user_id"`
	Username   string         `json:"username,omitempty"`
	UserRole   string         `json:"user_role,omitempty"`
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	ResourceID uint           `json:"resource_id"`
	Details    map[string]any `json:"details,omitempty"`
	IPAddress  string         `json:"ip_address"`
	UserAgent  string         `json:"user_agent"`
	CreatedAt  time.Time      `json:"created_at"`
}

func NewLogArchiveService() *LogArchiveService {
	region, bucket := "", ""
	if config.AppConfig != nil {
		region = config.AppConfig.AWSRegion
		bucket = config.AppConfig.S3BucketName
	}

	cfg, err := awscfg.LoadDefaultConfig(context.Background(), awscfg.WithRegion(region))
	if err != nil {
		logrus.WithError(err).Warn("Failed to load AWS config; log archives will fail until configured")
	}

	return &LogArchiveService{
		db:          database.DB,
		redisClient: database.GetRedisClient(),
		awsConfig:   cfg,
		bucket:      bucket,
	}
}

// FlushCachedLogs moves cached activity logs queued before now-olderThan into the database.
func (las *LogArchiveService) FlushCachedLogs(ctx context.Context, olderThan time.Duration) (int, error) {
	if las.redisClient == nil {
		return 0, fmt.Errorf("redis client not available")
	}

	cutoff := time.Now().Add(-olderThan)
	keys, err := las.redisClient.ZRangeByScore(ctx, middleware.ActivityLogQueue, &redis.ZRangeBy{
		Min: "0",
		Max: strconv.FormatInt(cutoff.Unix(), 10),
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read log queue: %w", err)
	}

	var processed, failed int
	for _, key := range keys {
		data, err := las.redisClient.Get(ctx, key).Result()
		if err == redis.Nil {
			// expired before we got to it, drop the dangling queue entry
			las.redisClient.ZRem(ctx, middleware.ActivityLogQueue, key)
			continue
		}
		if err != nil {
			logrus.WithError(err).Errorf("Failed to read cached log %s", key)
			failed++
			continue
		}

		var entry models.ActivityLog
		if err := json.Unmarshal([]byte(data), &entry); err != nil {
			logrus.WithError(err).Errorf("Corrupt cached log %s", key)
			failed++
			continue
		}
		entry.ID = 0

		if err := las.db.WithContext(ctx).Create(&entry).Error; err != nil {
			logrus.WithError(err).Errorf("Failed to persist cached log %s", key)
			failed++
			continue
		}

		pipe := las.redisClient.Pipeline()
		pipe.Del(ctx, key)
		pipe.ZRem(ctx, middleware.ActivityLogQueue, key)
		if _, err := pipe.Exec(ctx); err != nil {
			logrus.WithError(err).Errorf("Failed to remove flushed log %s", key)
		}
		processed++
	}

	if len(keys) > 0 {
		logrus.WithFields(logrus.Fields{"flushed": processed, "errors": failed}).Info("Flushed cached activity logs")
	}
	return processed, nil
}

// ArchiveOldLogs exports logs older than daysOld days to S3 and removes them from the database.
func (las *LogArchiveService) ArchiveOldLogs(ctx context.Context, daysOld int) error {
	if daysOld < MinArchiveAgeDays {
		return fmt.Errorf("minimum archive age is %d days", MinArchiveAgeDays)
	}

	cutoff := time.Now().AddDate(0, 0, -daysOld)

	const batchSize = 1000
	var all []ArchivedLog
	for offset := 0; ; offset += batchSize {
		var batch []models.ActivityLog
		err := las.db.WithContext(ctx).
			Where("created_at < ?", cutoff).
			Order("created_at ASC, id ASC").
			Limit(batchSize).
			Offset(offset).
			Find(&batch).Error
		if err != nil {
			return fmt.Errorf("failed to fetch logs for archiving: %w", err)
		}
		if len(batch) == 0 {
			break
		}
		for _, l := range batch {
			all = append(all, toArchivedLog(l))
		}
	}

	if len(all) == 0 {
		logrus.Debug("No activity logs to archive")
		return nil
	}

	fileName := fmt.Sprintf("activity_logs_%s.zip", cutoff.Format(time.DateOnly))
	buf, err := createZipArchive(all, fileName)
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}

	key := ArchiveObjectKey(cutoff, fileName)
	meta := models.LogArchive{
		FileName:    fileName,
		S3Key:       key,
		StartDate:   all[0].CreatedAt,
		EndDate:     cutoff,
		RecordCount: len(all),
		FileSize:    int64(buf.Len()),
		Status:      "pending",
	}

	if err := las.uploadToS3(ctx, key, buf); err != nil {
		meta.Status = "failed"
		meta.Error = err.Error()
		if dbErr := las.db.WithContext(ctx).Create(&meta).Error; dbErr != nil {
			logrus.WithError(dbErr).Error("Failed to record failed archive")
		}
		return fmt.Errorf("failed to upload archive: %w", err)
	}

	result := las.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&models.ActivityLog{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete archived logs: %w", result.Error)
	}

	meta.Status = "completed"
	if err := las.db.WithContext(ctx).Create(&meta).Error; err != nil {
		logrus.WithError(err).Error("Failed to save archive metadata")
	}

	logrus.WithFields(logrus.Fields{
		"key":     key,
		"records": len(all),
		"deleted": result.RowsAffected,
	}).Info("Archived activity logs")
	return nil
}

// ArchiveObjectKey places archives under logs/archived/YYYY/MM/.
func ArchiveObjectKey(cutoff time.Time, fileName string) string {
	return fmt.Sprintf("logs/archived/%d/%02d/%s", cutoff.Year(), cutoff.Month(), fileName)
}

func toArchivedLog(l models.ActivityLog) ArchivedLog {
	out := ArchivedLog{
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
		var details map[string]any
		if err := json.Unmarshal(l.Details, &details); err == nil {
			out.Details = details
		}
	}
	return out
}

// createZipArchive writes the logs as JSON and CSV plus a metadata file.
func createZipArchive(logs []ArchivedLog, fileName string) (*bytes.Buffer, error) {
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)

	logsFile, err := zw.Create("activity_logs.json")
	if err != nil {
		return nil, err
	}
	enc := json.NewEncoder(logsFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(map[string]any{
		"export_date":    time.Now().UTC(),
		"record_count":   len(logs),
		"format_version": "1.0",
		"logs":           logs,
	}); err != nil {
		return nil, fmt.Errorf("encode logs: %w", err)
	}

	metaFile, err := zw.Create("metadata.json")
	if err != nil {
		return nil, err
	}
	meta := map[string]any{
		"file_name":      fileName,
		"created_at":     time.Now().UTC(),
		"record_count":   len(logs),
		"schema_version": "1.0",
		"description":    "Thai Tour back office activity logs",
	}
	if len(logs) > 0 {
		meta["date_range"] = map[string]any{
			"start": logs[0].CreatedAt,
			"end":   logs[len(logs)-1].CreatedAt,
		}
	}
	if err := json.NewEncoder(metaFile).Encode(meta); err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}

	csvFile, err := zw.Create("activity_logs.csv")
	if err != nil {
		return nil, err
	}
	w := csv.NewWriter(csvFile)
	_ = w.Write([]string{"ID", "User ID", "Username", "Role", "Action", "Resource", "Resource ID", "IP Address", "User Agent", "Created At", "Details"})
	for _, l := range logs {
		details := ""
		if l.Details != nil {
			if b, err := json.Marshal(l.Details); err == nil {
				details = string(b)
			}
		}
		_ = w.Write([]string{
			strconv.FormatUint(uint64(l.ID), 10),
			strconv.FormatUint(uint64(l.UserID), 10),
			l.Username,
			l.UserRole,
			l.Action,
			l.Resource,
			strconv.FormatUint(uint64(l.ResourceID), 10),
			l.IPAddress,
			l.UserAgent,
			l.CreatedAt.Format(time.DateTime),
			details,
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf, nil
}

func (las *LogArchiveService) s3Client() (*s3.Client, error) {
	if las.awsConfig.Region == "" || las.bucket == "" {
		return nil, fmt.Errorf("AWS not configured")
	}
	return s3.NewFromConfig(las.awsConfig), nil
}

func (las *LogArchiveService) uploadToS3(ctx context.Context, key string, data *bytes.Buffer) error {
	client, err := las.s3Client()
	if err != nil {
		return err
	}
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(las.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data.Bytes()),
		ContentType: aws.String("application/zip"),
	})
	return err
}

// GetArchivedLogs lists archive records, newest first.
func (las *LogArchiveService) GetArchivedLogs(ctx context.Context) ([]models.LogArchive, error) {
	var archives []models.LogArchive
	if err := las.db.WithContext(ctx).Order("created_at DESC").Find(&archives).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve archived logs: %w", err)
	}
	return archives, nil
}

// DownloadArchivedLogs opens an archive stored in S3. The caller closes the reader.
func (las *LogArchiveService) DownloadArchivedLogs(ctx context.Context, archiveID uint) (io.ReadCloser, string, error) {
	var archive models.LogArchive
	if err := las.db.WithContext(ctx).First(&archive, archiveID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrArchiveNotFound
		}
		return nil, "", fmt.Errorf("failed to retrieve archive: %w", err)
	}

	client, err := las.s3Client()
	if err != nil {
		return nil, "", err
	}
	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(las.bucket),
		Key:    aws.String(archive.S3Key),
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to download archive: %w", err)
	}
	return out.Body, archive.FileName, nil
}

// RunMaintenance flushes every queued log and archives those older than archiveDays.
func (las *LogArchiveService) RunMaintenance(ctx context.Context, archiveDays int) {
	if _, err := las.FlushCachedLogs(ctx, 0); err != nil {
		logrus.WithError(err).Warn("Flushing cached activity logs failed")
	}
	if err := las.ArchiveOldLogs(ctx, archiveDays); err != nil {
		logrus.WithError(err).Warn("Archiving activity logs failed")
	}
}
