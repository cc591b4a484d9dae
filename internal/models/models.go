package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a system user
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;size:100;not null" json:"username"`
	Password  string         `gorm:"size:255" json:"-"` // Hashed password
	Email     string         `gorm:"size:255" json:"email"`
	Nickname  string         `gorm:"size:100" json:"nickname"`
	Role      string         `gorm:"size:50;default:member" json:"role"` // admin, member
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	LastLogin *time.Time     `json:"last_login"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Report is one submission period for one owner. Daily reports key on
// report_date, weekly reports on (year, week); the unused columns stay at
// their zero value so the composite unique index covers both variants.
type Report struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	OwnerID    uint      `gorm:"uniqueIndex:idx_reports_owner_period;not null" json:"owner_id"`
	PeriodType string    `gorm:"uniqueIndex:idx_reports_owner_period;size:10;not null" json:"period_type"` // daily, weekly
	ReportDate time.Time `gorm:"uniqueIndex:idx_reports_owner_period" json:"report_date"`
	Year       int       `gorm:"uniqueIndex:idx_reports_owner_period" json:"year"`
	Week       int       `gorm:"uniqueIndex:idx_reports_owner_period" json:"week"`

	Status        string `gorm:"size:20;default:draft" json:"status"` // draft, published
	Note          string `gorm:"type:text" json:"note"`
	WorkedMinutes int    `json:"worked_minutes"`
	IsRemote      bool   `gorm:"default:false" json:"is_remote"`

	WorkItems []WorkItem `gorm:"foreignKey:ReportID" json:"work_items,omitempty"`
	Appeals   []Appeal   `gorm:"foreignKey:ReportID" json:"appeals,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WorkItem is a report-owned entry. The ID is a client-supplied UUID: a
// report may carry two items against the same mission, so the UUID is the
// only identity an item has across edits.
type WorkItem struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	ReportID  uint      `gorm:"index;not null" json:"report_id"`
	MissionID uint      `gorm:"not null" json:"mission_id"`
	Content   string    `gorm:"type:text" json:"content"`
	Hours     float64   `json:"hours"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Appeal is a report-owned entry reconciled by diffing against the
// persisted set; unsubmitted persisted appeals are deleted.
type Appeal struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	ReportID   uint      `gorm:"index;not null" json:"report_id"`
	CategoryID uint      `gorm:"not null" json:"category_id"`
	Content    string    `gorm:"type:text" json:"content"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Trouble is a standing issue owned by the user, not by any single report.
// It is surfaced in each day's form until resolved and is never deleted by
// a report submission.
type Trouble struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	OwnerID    uint      `gorm:"index;not null" json:"owner_id"`
	CategoryID uint      `gorm:"not null" json:"category_id"`
	Content    string    `gorm:"type:text" json:"content"`
	Resolved   bool      `gorm:"default:false" json:"resolved"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Client is the top of the reference hierarchy client > project > mission.
type Client struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"size:200;not null" json:"name"`
	Keywords  string         `gorm:"size:500" json:"keywords"` // comma-separated, normalized
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

type Project struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	ClientID  uint           `gorm:"index;not null" json:"client_id"`
	Client    *Client        `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Name      string         `gorm:"size:200;not null" json:"name"`
	Keywords  string         `gorm:"size:500" json:"keywords"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

type Mission struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	ProjectID  uint           `gorm:"index;not null" json:"project_id"`
	Project    *Project       `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Name       string         `gorm:"size:200;not null" json:"name"`
	Keywords   string         `gorm:"size:500" json:"keywords"`
	IsArchived bool           `gorm:"default:false" json:"is_archived"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// AppealCategory classifies appeal entries.
type AppealCategory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:200;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TroubleCategory classifies standing issues.
type TroubleCategory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:200;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SystemLog represents a system operation log
type SystemLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Level     string    `gorm:"size:20;index" json:"level"` // info, warning, error
	Module    string    `gorm:"size:100;index" json:"module"`
	Action    string    `gorm:"size:200;index" json:"action"`
	Message   string    `gorm:"type:text" json:"message"`
	UserID    *uint     `json:"user_id"`
	IP        string    `gorm:"size:50" json:"ip"`
	UserAgent string    `gorm:"size:500" json:"user_agent"`
	Extra     string    `gorm:"type:text" json:"extra"` // JSON extra data
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// RefreshToken stores hashed refresh tokens for session renewal.
type RefreshToken struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	UserID            uint       `gorm:"index;not null" json:"user_id"`
	TokenHash         string     `gorm:"uniqueIndex;size:64;not null" json:"-"`
	ExpiresAt         time.Time  `json:"expires_at"`
	RevokedAt         *time.Time `json:"revoked_at"`
	ReplacedByTokenID uint       `json:"replaced_by_token_id"`
	CreatedByIP       string     `gorm:"size:50" json:"created_by_ip"`
	UserAgent         string     `gorm:"size:500" json:"user_agent"`
	CreatedAt         time.Time  `json:"created_at"`
}

// TableName overrides
func (User) TableName() string            { return "users" }
func (Report) TableName() string          { return "reports" }
func (WorkItem) TableName() string        { return "work_items" }
func (Appeal) TableName() string          { return "appeals" }
func (Trouble) TableName() string         { return "troubles" }
func (Client) TableName() string          { return "clients" }
func (Project) TableName() string         { return "projects" }
func (Mission) TableName() string         { return "missions" }
func (AppealCategory) TableName() string  { return "appeal_categories" }
func (TroubleCategory) TableName() string { return "trouble_categories" }
func (SystemLog) TableName() string       { return "system_logs" }
func (RefreshToken) TableName() string    { return "refresh_tokens" }
