package models

import "time"

// DefaultSettingsID is the id of the single global settings row.
const DefaultSettingsID = "default"

// Settings is a global singleton row holding default durations and
// behavioral toggles. Created once at first run if absent.
type Settings struct {
	ID                     string    `json:"id" gorm:"primaryKey;type:varchar(64)"`
	DefaultSessionDuration int       `json:"default_session_duration" gorm:"not null;default:3600"` // seconds
	DefaultBreakDuration   int       `json:"default_break_duration" gorm:"not null;default:300"`    // seconds
	EnableNotifications    bool      `json:"enable_notifications" gorm:"not null;default:true"`
	EnableSounds           bool      `json:"enable_sounds" gorm:"not null;default:true"`
	StrictRuleMode         bool      `json:"strict_rule_mode" gorm:"not null;default:false"`
	AllowRuleUpdates       bool      `json:"allow_rule_updates" gorm:"not null;default:true"`
	Theme                  string    `json:"theme" gorm:"not null;default:'auto'"`
	Language               string    `json:"language" gorm:"not null;default:'en-US'"`
	UpdatedAt              time.Time `json:"updated_at" gorm:"not null"`
}

// DefaultSettings returns the settings row written at first run.
func DefaultSettings() *Settings {
	return &Settings{
		ID:                     DefaultSettingsID,
		DefaultSessionDuration: 3600,
		DefaultBreakDuration:   300,
		EnableNotifications:    true,
		EnableSounds:           true,
		StrictRuleMode:         false,
		AllowRuleUpdates:       true,
		Theme:                  "auto",
		Language:               "en-US",
	}
}
