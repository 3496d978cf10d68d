package generate

import "fmt"

const basePrompt = `You are an expert Ansible playbook developer. Create a safe and well-structured Ansible playbook based on the following requirements:

DESCRIPTION: %s
HOSTS: %s
ADDITIONAL CONTEXT: %s

Requirements:
1. Use only safe, idempotent operations
2. Include proper error handling and validation
3. Use handlers for service restarts
4. Include proper task names and descriptions
5. Follow Ansible best practices
6. Avoid dangerous operations like rm -rf, dd, mkfs, etc.
7. Use become: yes only when necessary
8. Include proper variable usage where appropriate

Generate a complete, valid YAML playbook that can be executed immediately.
`

func buildPrompt(description, hosts, additionalContext string) string {
	if hosts == "" {
		hosts = "all"
	}
	return fmt.Sprintf(basePrompt, description, hosts, additionalContext)
}
