package models

import (
	"database/sql/driver"
	"time"

	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// JSON field type for GORM
type JSON []byte

func (j JSON) Value() (driver.Value, error) {
	if j.IsNull() {
		return nil, nil
	}
	return string(j), nil
}

func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		*j = append((*j)[0:0], v...)
	case string:
		*j = append((*j)[0:0], v...)
	}
	return nil
}

func (j JSON) MarshalJSON() ([]byte, error) {
	if j == nil {
		return []byte("null"), nil
	}
	return j, nil
}

func (j *JSON) UnmarshalJSON(data []byte) error {
	if j == nil {
		return nil
	}
	*j = append((*j)[0:0], data...)
	return nil
}

func (j JSON) IsNull() bool {
	return len(j) == 0 || string(j) == "null"
}

const (
	TripTypeGroup   = "group"
	TripTypePrivate = "private"

	RoleAdmin  = "admin"
	RoleEditor = "editor"
)

// User is a back office account
type User struct {
	BaseModel
	Username    string     `json:"username" gorm:"size:100;not null;uniqueIndex"`
	Password    string     `json:"-" gorm:"size:255;not null"`
	Email       string     `json:"email" gorm:"size:255"`
	DisplayName string     `json:"display_name" gorm:"size:255"`
	Role        string     `json:"role" gorm:"size:50;not null;default:'editor';type:enum('admin','editor')"` // admin, editor
	Status      string     `json:"status" gorm:"size:50;not null;default:'active';type:enum('active','inactive','suspended')"`
	Avatar      string     `json:"avatar" gorm:"size:500"`
	LastLoginAt *time.Time `json:"last_login_at"`
}

// Country a trip travels to
type Country struct {
	BaseModel
	NameTh    string `json:"name_th" gorm:"size:255;not null"`
	NameEn    string `json:"name_en" gorm:"size:255;not null"`
	Flag      string `json:"flag" gorm:"size:16"`
	Code      string `json:"code" gorm:"size:10;not null;uniqueIndex"`
	SortOrder int    `json:"sort_order" gorm:"default:0"`
	IsActive  bool   `json:"is_active" gorm:"default:true"`

	// Relationships
	Trips []Trip `json:"trips,omitempty" gorm:"foreignKey:CountryID"`
}

// Trip is a tour package offered on the website
type Trip struct {
	BaseModel
	Title          string  `json:"title" gorm:"size:255;not null"`
	Slug           string  `json:"slug" gorm:"size:191;not null;uniqueIndex"`
	Summary        string  `json:"summary" gorm:"size:500"`
	Description    string  `json:"description" gorm:"type:text"`
	CountryID      uint    `json:"country_id" gorm:"not null;index"`
	PricePerPerson float64 `json:"price_per_person" gorm:"type:decimal(12,2);not null;default:0"`
	TripType       string  `json:"trip_type" gorm:"size:20;not null;default:'group';type:enum('group','private')"` // group, private
	CoverImage     string  `json:"cover_image" gorm:"size:500"`
	IsActive       bool    `json:"is_active" gorm:"default:true"`
	IsFeatured     bool    `json:"is_featured" gorm:"default:false"`
	SortOrder      int     `json:"sort_order" gorm:"default:0"`

	// Relationships
	Country       Country        `json:"country,omitempty" gorm:"foreignKey:CountryID"`
	Schedules     []TripSchedule `json:"schedules,omitempty" gorm:"foreignKey:TripID"`
	ItineraryDays []ItineraryDay `json:"itinerary_days,omitempty" gorm:"foreignKey:TripID"`
	FAQs          []FAQ          `json:"faqs,omitempty" gorm:"foreignKey:TripID"`
}

// TripSchedule is one departure of a trip with its seat inventory
type TripSchedule struct {
	BaseModel
	TripID               uint       `json:"trip_id" gorm:"not null;index"`
	DepartureDate        time.Time  `json:"departure_date" gorm:"type:date;not null;index"`
	ReturnDate           time.Time  `json:"return_date" gorm:"type:date;not null"`
	RegistrationDeadline *time.Time `json:"registration_deadline" gorm:"type:date"`
	TotalSeats           int        `json:"total_seats" gorm:"not null;default:0"`
	AvailableSeats       int        `json:"available_seats" gorm:"not null;default:0"`
	IsActive             bool       `json:"is_active" gorm:"default:true"`
	Note                 string     `json:"note" gorm:"size:255"`

	// Relationships
	Trip Trip `json:"trip,omitempty" gorm:"foreignKey:TripID"`
}

// GalleryImage is a photo shown in the public gallery
type GalleryImage struct {
	BaseModel
	Title       string `json:"title" gorm:"size:255"`
	ImageURL    string `json:"image_url" gorm:"size:500;not null"`
	Caption     string `json:"caption" gorm:"size:500"`
	CountryID   *uint  `json:"country_id" gorm:"index"`
	TripID      *uint  `json:"trip_id" gorm:"index"`
	IsHighlight bool   `json:"is_highlight" gorm:"default:false"`
	SortOrder   int    `json:"sort_order" gorm:"default:0"`

	// Relationships
	Country *Country `json:"country,omitempty" gorm:"foreignKey:CountryID"`
	Trip    *Trip    `json:"trip,omitempty" gorm:"foreignKey:TripID"`
}

// ItineraryDay describes one day of a trip program
type ItineraryDay struct {
	BaseModel
	TripID        uint   `json:"trip_id" gorm:"not null;index"`
	DayNumber     int    `json:"day_number" gorm:"not null"`
	Title         string `json:"title" gorm:"size:255;not null"`
	Description   string `json:"description" gorm:"type:text"`
	Meals         string `json:"meals" gorm:"size:100"` // e.g. "B,L,D"
	Accommodation string `json:"accommodation" gorm:"size:255"`

	// Relationships
	Activities []ItineraryActivity `json:"activities,omitempty" gorm:"foreignKey:ItineraryDayID"`
}

// ItineraryActivity is a timed entry inside an itinerary day
type ItineraryActivity struct {
	BaseModel
	ItineraryDayID uint   `json:"itinerary_day_id" gorm:"not null;index"`
	TimeLabel      string `json:"time_label" gorm:"size:50"` // "08:00", "เช้า"
	Title          string `json:"title" gorm:"size:255;not null"`
	Description    string `json:"description" gorm:"type:text"`
	SortOrder      int    `json:"sort_order" gorm:"default:0"`
}

// FAQ entry; TripID nil means a general question
type FAQ struct {
	BaseModel
	TripID    *uint  `json:"trip_id" gorm:"index"`
	Question  string `json:"question" gorm:"type:text;not null"`
	Answer    string `json:"answer" gorm:"type:text;not null"`
	SortOrder int    `json:"sort_order" gorm:"default:0"`
	IsActive  bool   `json:"is_active" gorm:"default:true"`
}

func (FAQ) TableName() string {
	return "faqs"
}

// Article is a blog/news post
type Article struct {
	BaseModel
	Title       string     `json:"title" gorm:"size:255;not null"`
	Slug        string     `json:"slug" gorm:"size:191;not null;uniqueIndex"`
	Excerpt     string     `json:"excerpt" gorm:"size:500"`
	Content     string     `json:"content" gorm:"type:longtext"`
	CoverImage  string     `json:"cover_image" gorm:"size:500"`
	Published   bool       `json:"published" gorm:"default:false"`
	PublishedAt *time.Time `json:"published_at"`
	AuthorID    *uint      `json:"author_id"`

	// Relationships
	Author *User `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
}

// Log model for activity tracking
type ActivityLog struct {
	BaseModel
	UserID     uint   `json:"user_id" gorm:"index"`
	Action     string `json:"action" gorm:"size:100;not null"`
	Resource   string `json:"resource" gorm:"size:100;not null"`
	ResourceID uint   `json:"resource_id"`
	Details    JSON   `json:"details" gorm:"type:json"`
	IPAddress  string `json:"ip_address" gorm:"size:45"`
	UserAgent  string `json:"user_agent" gorm:"size:500"`
	Username   string `json:"username" gorm:"size:100"`
	UserRole   string `json:"user_role" gorm:"size:50"`
}

// LogArchive model for tracking archived logs
type LogArchive struct {
	BaseModel
	FileName    string    `json:"file_name" gorm:"size:255;not null"`
	S3Key       string    `json:"s3_key" gorm:"size:500;not null"`
	StartDate   time.Time `json:"start_date" gorm:"not null"`
	EndDate     time.Time `json:"end_date" gorm:"not null"`
	RecordCount int       `json:"record_count" gorm:"not null"`
	FileSize    int64     `json:"file_size" gorm:"not null"`
	Status      string    `json:"status" gorm:"size:50;not null;default:'pending';type:enum('pending','completed','failed')"` // pending, completed, failed
	Error       string    `json:"error" gorm:"type:text"`
}
