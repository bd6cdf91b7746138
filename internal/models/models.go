package models

import (
	"time"
)

type User struct {
	ID             uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Email          string `gorm:"unique;not null"          json:"email"`
	HashedPassword string `gorm:"not null"                 json:"-"`
	IsActive       bool   `gorm:"default:true"             json:"is_active"`
	IsSuperuser    bool   `gorm:"default:false"            json:"is_superuser"`
	IsVerified     bool   `gorm:"default:false"            json:"is_verified"`
}

type Vacancy struct {
	ID             uint      `gorm:"primaryKey;autoIncrement"                      json:"id"`
	SourceName     string    `gorm:"not null;uniqueIndex:idx_vacancy_source"       json:"source_name"`
	SourceID       int64     `gorm:"not null;uniqueIndex:idx_vacancy_source"       json:"source_id"`
	URL            string    `gorm:"not null"                                      json:"url"`
	Name           string    `gorm:"not null;index"                                json:"name"`
	Description    string    `json:"description"`
	Area           string    `gorm:"index"                                         json:"area"`
	Employer       string    `gorm:"index"                                         json:"employer"`
	Experience     string    `json:"experience"`
	Employment     string    `json:"employment"`
	Schedule       string    `json:"schedule"`
	SalaryFrom     *int      `json:"salary_from"`
	SalaryTo       *int      `json:"salary_to"`
	SalaryCurrency string    `json:"salary_currency"`
	HasTest        bool      `gorm:"default:false"                                 json:"has_test"`
	IsArchived     bool      `gorm:"default:false"                                 json:"is_archived"`
	PublishedAt    time.Time `gorm:"index"                                         json:"published_at"`
}
