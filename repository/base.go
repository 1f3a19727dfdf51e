package repository

import "time"

// Timestamps is embedded by every model, mirroring the shared base model
// convention of creation/update tracking on all rows.
type Timestamps struct {
	DateCreated time.Time `gorm:"autoCreateTime;index" json:"date_created"`
	DateUpdated time.Time `gorm:"autoUpdateTime;index" json:"date_updated"`
}
