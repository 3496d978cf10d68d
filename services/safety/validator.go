package safety

import (
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
)

// Level selects the policy tier applied on top of the baseline checks.
type Level string

var (
	Low    Level = "low"
	Medium Level = "medium"
	High   Level = "high"
)

func (l Level) String() string {
	switch l {
	case Low, Medium, High:
		return string(l)
	default:
		return ""
	}
}

func (l Level) Valid() bool {
	return l.String() != ""
}

// dangerousPatterns are operations a generated playbook must never contain:
// destructive filesystem commands, raw disk operations and power-state changes.
// Each match costs 20 points.
var dangerousPatterns = []string{
	"rm -rf",
	"dd if=",
	"mkfs",
	"fdisk",
	"parted",
	"shutdown",
	"reboot",
	"halt",
	"poweroff",
	"init 0",
	"init 6",
}

const (
	dangerousPenalty  = 20.0
	becomePenalty     = 5.0
	highBecomePenalty = 30.0
	highShellPenalty  = 10.0
	passingScore      = 50.0
)

// Result is the outcome of a validation pass. Validation failures are result
// values, never errors, so partial information (warnings, score) always
// reaches the caller.
type Result struct {
	IsValid         bool     `json:"is_valid"`
	Errors          []string `json:"errors"`
	Warnings        []string `json:"warnings"`
	Score           float64  `json:"safety_score"`
	Recommendations []string `json:"recommendations"`
}

// Validate scores playbook content against the dangerous-pattern set, the
// structural play checks and the policy tier for the given level. It is a pure
// function: identical (content, level) input yields identical output.
func Validate(content string, level Level) Result {
	res := Result{
		Errors:          []string{},
		Warnings:        []string{},
		Recommendations: []string{},
		Score:           100.0,
	}

	var doc interface{}
	if err := yaml.Unmarshal([]byte(content), &doc); err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("YAML parsing error: %v", err))
		res.Score = 0
		return res
	}

	if doc == nil {
		res.Errors = append(res.Errors, "Empty or invalid YAML content")
		res.Score = 0
		return res
	}

	flat := strings.ToLower(fmt.Sprintf("%v", doc))
	for _, pattern := range dangerousPatterns {
		if strings.Contains(flat, pattern) {
			res.Errors = append(res.Errors, fmt.Sprintf("Dangerous pattern detected: %s", pattern))
			res.Score -= dangerousPenalty
		}
	}

	plays, ok := doc.([]interface{})
	if !ok {
		res.Errors = append(res.Errors, "Playbook must be a list of plays")
	} else {
		for i, raw := range plays {
			play, ok := raw.(map[string]interface{})
			if !ok {
				res.Errors = append(res.Errors, fmt.Sprintf("Play %d must be a mapping", i))
				continue
			}

			if _, ok := play["hosts"]; !ok {
				res.Errors = append(res.Errors, fmt.Sprintf("Play %d missing 'hosts' field", i))
			}
			if _, ok := play["tasks"]; !ok {
				res.Errors = append(res.Errors, fmt.Sprintf("Play %d missing 'tasks' field", i))
			}

			if isTruthy(play["become"]) {
				res.Warnings = append(res.Warnings, fmt.Sprintf("Play %d uses become - ensure this is necessary", i))
				res.Score -= becomePenalty
			}
		}
	}

	if level == High {
		if strings.Contains(flat, "become") {
			res.Errors = append(res.Errors, "High safety level: become operations not allowed")
			res.Score -= highBecomePenalty
		}
		if strings.Contains(flat, "shell") || strings.Contains(flat, "command") {
			res.Warnings = append(res.Warnings, "High safety level: shell/command modules detected")
			res.Score -= highShellPenalty
		}
	}

	if res.Score < 0 {
		res.Score = 0
	}
	res.IsValid = len(res.Errors) == 0 && res.Score > passingScore

	return res
}

// isTruthy treats the YAML 1.1 boolean spellings ansible accepts as true.
func isTruthy(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		switch strings.ToLower(t) {
		case "yes", "true", "on":
			return true
		}
	}
	return false
}
