package task

import (
	"time"

	"gorm.io/datatypes"
)

// Task is a persisted unit of deferred automation work. A row exists only
// while the work is pending or in flight: the worker deletes it on both
// success and failure, so the table never holds history.
type Task struct {
	ID                 string         `gorm:"column:id;primaryKey;type:char(26)" json:"id"`
	PlaybookPath       string         `gorm:"column:playbook_path;type:varchar(255);not null" json:"playbook_path"`
	Inventory          string         `gorm:"column:inventory;type:varchar(255);not null" json:"inventory"`
	RunTime            time.Time      `gorm:"column:run_time;not null" json:"run_time"`
	PlaybookContent    string         `gorm:"column:playbook_content;type:text" json:"playbook_content,omitempty"`
	IsGenerated        bool           `gorm:"column:is_generated;default:false" json:"is_generated"`
	GenerationMetadata datatypes.JSON `gorm:"column:generation_metadata" json:"generation_metadata,omitempty"`
	SafetyValidated    bool           `gorm:"column:safety_validated;default:false" json:"safety_validated"`
	ValidationErrors   datatypes.JSON `gorm:"column:validation_errors" json:"validation_errors,omitempty"`
	CreatedAt          time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Task) TableName() string {
	return "tasks"
}
