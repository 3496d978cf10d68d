package template

import (
	"context"
	"encoding/json"
	"errors"

	"playbook-controlplane/pkg/errutil"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type builtin struct {
	Name            string
	Description     string
	TemplateContent string
	VariablesSchema VariableSchema
}

var builtins = []builtin{
	{
		Name:        "Web Server Setup",
		Description: "Basic web server installation and configuration",
		TemplateContent: `---
- name: Setup Web Server
  hosts: {{.hosts}}
  become: yes
  vars:
    web_server: {{.web_server}}
    port: {{.port}}

  tasks:
    - name: Update apt cache
      apt:
        update_cache: yes
      when: ansible_os_family == "Debian"

    - name: Install {{.web_server}}
      apt:
        name: "{{.web_server}}"
        state: present
      when: ansible_os_family == "Debian"

    - name: Start and enable {{.web_server}} service
      systemd:
        name: "{{.web_server}}"
        state: started
        enabled: yes

    - name: Configure firewall
      ufw:
        rule: allow
        port: "{{.port}}"
        proto: tcp
      when: ansible_os_family == "Debian"
`,
		VariablesSchema: VariableSchema{
			Properties: map[string]VariableSpec{
				"hosts":      {Type: "string", Default: "web_servers"},
				"web_server": {Type: "string", Enum: []interface{}{"nginx", "apache2"}, Default: "nginx"},
				"port":       {Type: "integer", Default: 80},
			},
			Required: []string{"hosts"},
		},
	},
	{
		Name:        "Database Server Setup",
		Description: "Database server installation and basic configuration",
		TemplateContent: `---
- name: Setup Database Server
  hosts: {{.hosts}}
  become: yes
  vars:
    db_type: {{.db_type}}
    db_port: {{.db_port}}

  tasks:
    - name: Update apt cache
      apt:
        update_cache: yes
      when: ansible_os_family == "Debian"

    - name: Install {{.db_type}}
      apt:
        name: "{{.db_type}}"
        state: present
      when: ansible_os_family == "Debian"

    - name: Start and enable {{.db_type}} service
      systemd:
        name: "{{.db_type}}"
        state: started
        enabled: yes

    - name: Configure firewall for database
      ufw:
        rule: allow
        port: "{{.db_port}}"
        proto: tcp
      when: ansible_os_family == "Debian"
`,
		VariablesSchema: VariableSchema{
			Properties: map[string]VariableSpec{
				"hosts":   {Type: "string", Default: "db_servers"},
				"db_type": {Type: "string", Enum: []interface{}{"postgresql", "mysql"}, Default: "postgresql"},
				"db_port": {Type: "integer", Default: 5432},
			},
			Required: []string{"hosts"},
		},
	},
}

// SeedDefaults inserts the built-in templates unless an active template with
// the same name already exists, so repeated startups never duplicate them.
func (s *Service) SeedDefaults(ctx context.Context) error {
	for _, b := range builtins {
		var existing Template
		err := s.db.WithContext(ctx).
			Where("name = ? AND status = ?", b.Name, Active).
			First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return errutil.Storage("failed to check for existing template", errutil.WithErr(err))
		}

		raw, err := json.Marshal(b.VariablesSchema)
		if err != nil {
			return errutil.Internal("failed to encode builtin schema", errutil.WithErr(err))
		}

		tpl := Template{
			ID:              s.node.Generate().String(),
			Name:            b.Name,
			Description:     b.Description,
			TemplateContent: b.TemplateContent,
			VariablesSchema: datatypes.JSON(raw),
			Status:          Active,
		}
		if err := s.db.WithContext(ctx).Create(&tpl).Error; err != nil {
			return errutil.Storage("failed to seed template", errutil.WithErr(err))
		}

		zap.L().Info("seeded default template", zap.String("name", b.Name))
	}

	return nil
}
