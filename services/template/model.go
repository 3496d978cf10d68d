package template

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Status is the template lifecycle state. Deletion is logical: a template is
// retired, never destroyed, so reads always filter on Active.
type Status string

var (
	Active  Status = "active"
	Retired Status = "retired"
)

func (s Status) String() string {
	switch s {
	case Active, Retired:
		return string(s)
	default:
		return ""
	}
}

// Template is a reusable, parameterized playbook skeleton.
type Template struct {
	ID              string         `gorm:"column:id;primaryKey;type:char(26)" json:"id"`
	Name            string         `gorm:"column:name;type:varchar(100);not null" json:"name"`
	Description     string         `gorm:"column:description;type:text" json:"description,omitempty"`
	TemplateContent string         `gorm:"column:template_content;type:text;not null" json:"template_content"`
	VariablesSchema datatypes.JSON `gorm:"column:variables_schema" json:"variables_schema,omitempty"`
	Status          Status         `gorm:"column:status;type:varchar(20);default:'active'" json:"status"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Template) TableName() string {
	return "playbook_templates"
}

// Schema decodes the stored variable schema. A template without a schema
// returns nil.
func (t *Template) Schema() (*VariableSchema, error) {
	if len(t.VariablesSchema) == 0 {
		return nil, nil
	}

	var schema VariableSchema
	if err := json.Unmarshal(t.VariablesSchema, &schema); err != nil {
		return nil, err
	}
	return &schema, nil
}
