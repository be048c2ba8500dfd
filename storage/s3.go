package storage

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"thaitour_go/config"
	"thaitour_go/utils"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
)

// Folders used for uploaded media.
const (
	FolderTrips    = "trips"
	FolderGallery  = "gallery"
	FolderArticles = "articles"
	FolderAvatars  = "avatars"
)

type StorageService struct {
	s3Client *s3.S3
	bucket   string
	region   string
}

// NewStorageService creates a new storage service
func NewStorageService() (*StorageService, error) {
	awsCfg := &aws.Config{
		Region: aws.String(config.AppConfig.AWSRegion),
	}
	if config.AppConfig.AWSAccessKeyID != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(
			config.AppConfig.AWSAccessKeyID,
			config.AppConfig.AWSSecretAccessKey,
			"",
		)
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &StorageService{
		s3Client: s3.New(sess),
		bucket:   config.AppConfig.S3BucketName,
		region:   config.AppConfig.AWSRegion,
	}, nil
}

// UploadImage validates the extension, converts the image to WebP when
// possible and stores it under folder/<ownerID>/yyyy/mm/. It returns the public URL.
func (s *StorageService) UploadImage(file *multipart.FileHeader, folder string, ownerID uint) (string, error) {
	allowed := strings.Split(config.AppConfig.AllowedExtensions, ",")
	if !utils.IsValidFileExtension(file.Filename, allowed) {
		return "", fmt.Errorf("file type not allowed: %s", file.Filename)
	}
	if config.AppConfig.MaxFileSize > 0 && file.Size > config.AppConfig.MaxFileSize {
		return "", fmt.Errorf("file too large: %d bytes", file.Size)
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer src.Close()

	fileBytes, err := io.ReadAll(src)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	extension := getFileExtension(file.Filename)
	if extension != "webp" && extension != "gif" {
		if converted, ok := convertToWebP(fileBytes); ok {
			fileBytes = converted
			extension = "webp"
		}
	}

	key := BuildObjectKey(folder, ownerID, time.Now(), uuid.New().String()[:16], extension)
	return s.PutObject(key, fileBytes, GetContentType(extension))
}

// PutObject uploads raw bytes with public-read ACL and returns the public URL.
func (s *StorageService) PutObject(key string, data []byte, contentType string) (string, error) {
	_, err := s.s3Client.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		ACL:         aws.String("public-read"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	return PublicURL(s.bucket, s.region, key), nil
}

// DeleteFile deletes a file from S3
func (s *StorageService) DeleteFile(fileURL string) error {
	key := ExtractKeyFromURL(fileURL)
	if key == "" {
		return fmt.Errorf("invalid file URL")
	}

	_, err := s.s3Client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})

	return err
}

// BuildObjectKey returns folder/owner/yyyy/mm/dd/id.ext
func BuildObjectKey(folder string, ownerID uint, now time.Time, id, extension string) string {
	return fmt.Sprintf("%s/%d/%d/%02d/%02d/%s.%s",
		folder,
		ownerID,
		now.Year(),
		now.Month(),
		now.Day(),
		id,
		extension,
	)
}

func PublicURL(bucket, region, key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, region, key)
}

// ExtractKeyFromURL extracts the S3 key from a full URL
func ExtractKeyFromURL(url string) string {
	// https://bucket.s3.region.amazonaws.com/path/to/file.ext
	parts := strings.SplitN(url, ".amazonaws.com/", 2)
	if len(parts) != 2 {
		return ""
	}
	return parts[1]
}

func getFileExtension(filename string) string {
	ext := filepath.Ext(filename)
	if len(ext) > 1 {
		return strings.ToLower(ext[1:])
	}
	return ""
}

// convertToWebP shells out to cwebp when it is installed; ok is false when
// the original bytes should be kept.
func convertToWebP(imageBytes []byte) ([]byte, bool) {
	cwebpPath, err := exec.LookPath("cwebp")
	if err != nil {
		return nil, false
	}

	inFile, err := os.CreateTemp("", "img-input-*")
	if err != nil {
		return nil, false
	}
	defer func() {
		inFile.Close()
		os.Remove(inFile.Name())
	}()

	if _, err := inFile.Write(imageBytes); err != nil {
		return nil, false
	}

	outFile, err := os.CreateTemp("", "img-out-*.webp")
	if err != nil {
		return nil, false
	}
	outFile.Close()
	defer os.Remove(outFile.Name())

	cmd := exec.Command(cwebpPath, "-q", "80", inFile.Name(), "-o", outFile.Name())
	if err := cmd.Run(); err != nil {
		return nil, false
	}

	outBytes, err := os.ReadFile(outFile.Name())
	if err != nil {
		return nil, false
	}
	return outBytes, true
}

// GetContentType returns the MIME type for the file extension
func GetContentType(extension string) string {
	switch strings.ToLower(extension) {
	case "webp":
		return "image/webp"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "pdf":
		return "application/pdf"
	case "zip":
		return "application/zip"
	default:
		return "application/octet-stream"
	}
}
