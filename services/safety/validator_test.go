package safety

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const cleanPlaybook = `---
- name: Install packages
  hosts: web_servers
  tasks:
    - name: Install nginx
      apt:
        name: nginx
        state: present
`

const becomePlaybook = `---
- name: Install packages
  hosts: web_servers
  become: yes
  tasks:
    - name: Install nginx
      apt:
        name: nginx
        state: present
`

func TestValidateCleanPlaybook(t *testing.T) {
	res := Validate(cleanPlaybook, Medium)

	require.True(t, res.IsValid)
	require.Empty(t, res.Errors)
	require.Empty(t, res.Warnings)
	require.Equal(t, 100.0, res.Score)
}

func TestValidateDangerousPattern(t *testing.T) {
	content := `---
- name: Cleanup
  hosts: all
  tasks:
    - name: Wipe scratch space
      shell: rm -rf /var/tmp/scratch
`
	res := Validate(content, Medium)

	require.False(t, res.IsValid)
	require.Contains(t, res.Errors, "Dangerous pattern detected: rm -rf")
	require.Equal(t, 80.0, res.Score)
}

func TestValidateDangerousPatternsAccumulate(t *testing.T) {
	content := `---
- name: Maintenance
  hosts: all
  tasks:
    - name: Wipe disk
      shell: dd if=/dev/zero of=/dev/sda
    - name: Restart box
      shell: reboot
`
	res := Validate(content, Medium)

	require.False(t, res.IsValid)
	require.Len(t, res.Errors, 2)
	require.Equal(t, 60.0, res.Score)
}

func TestValidateScoreClampsAtZero(t *testing.T) {
	content := `---
- name: Destroy everything
  hosts: all
  tasks:
    - shell: rm -rf /
    - shell: dd if=/dev/zero of=/dev/sda
    - shell: mkfs.ext4 /dev/sda1
    - shell: fdisk /dev/sda
    - shell: parted /dev/sda
    - shell: shutdown -h now
`
	res := Validate(content, Medium)

	require.False(t, res.IsValid)
	require.Equal(t, 0.0, res.Score)
}

func TestValidateBecomeWarning(t *testing.T) {
	res := Validate(becomePlaybook, Medium)

	require.True(t, res.IsValid)
	require.Empty(t, res.Errors)
	require.Len(t, res.Warnings, 1)
	require.Equal(t, 95.0, res.Score)
}

func TestValidateHighLevelRejectsBecome(t *testing.T) {
	res := Validate(becomePlaybook, High)

	require.False(t, res.IsValid)
	require.Contains(t, res.Errors, "High safety level: become operations not allowed")
	// become play warning (-5) plus high-level become error (-30).
	require.Equal(t, 65.0, res.Score)
}

func TestValidateHighLevelShellWarning(t *testing.T) {
	content := `---
- name: Check uptime
  hosts: all
  tasks:
    - name: Uptime
      shell: uptime
`
	res := Validate(content, High)

	require.True(t, res.IsValid)
	require.Empty(t, res.Errors)
	require.Contains(t, res.Warnings, "High safety level: shell/command modules detected")
	require.Equal(t, 90.0, res.Score)
}

func TestValidateParseError(t *testing.T) {
	res := Validate("---\n- name: broken\n  hosts: [unclosed\n", Medium)

	require.False(t, res.IsValid)
	require.Equal(t, 0.0, res.Score)
	require.NotEmpty(t, res.Errors)
}

func TestValidateEmptyContent(t *testing.T) {
	res := Validate("", Medium)

	require.False(t, res.IsValid)
	require.Contains(t, res.Errors, "Empty or invalid YAML content")
	require.Equal(t, 0.0, res.Score)
}

func TestValidateRequiresListOfPlays(t *testing.T) {
	res := Validate("name: not a play list\nhosts: all\n", Medium)

	require.False(t, res.IsValid)
	require.Contains(t, res.Errors, "Playbook must be a list of plays")
}

func TestValidatePlayStructure(t *testing.T) {
	content := `---
- name: No hosts or tasks here
  vars:
    x: 1
`
	res := Validate(content, Medium)

	require.False(t, res.IsValid)
	require.Contains(t, res.Errors, "Play 0 missing 'hosts' field")
	require.Contains(t, res.Errors, "Play 0 missing 'tasks' field")
}

func TestValidateIsPure(t *testing.T) {
	first := Validate(becomePlaybook, High)
	second := Validate(becomePlaybook, High)

	require.Equal(t, first, second)
}

func TestLevelValid(t *testing.T) {
	require.True(t, Low.Valid())
	require.True(t, Medium.Valid())
	require.True(t, High.Valid())
	require.False(t, Level("paranoid").Valid())
	require.False(t, Level("").Valid())
}

func TestIsTruthy(t *testing.T) {
	require.True(t, isTruthy(true))
	require.True(t, isTruthy("yes"))
	require.True(t, isTruthy("True"))
	require.True(t, isTruthy("on"))
	require.False(t, isTruthy(false))
	require.False(t, isTruthy("no"))
	require.False(t, isTruthy(nil))
}
