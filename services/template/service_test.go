package template

import (
	"context"
	"strings"
	"testing"

	"playbook-controlplane/pkg/errutil"
	"playbook-controlplane/services/testutil"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func newTestService(t *testing.T) *Service {
	t.Helper()

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return NewService(ServiceParams{
		DB:   testutil.NewTestDB(t, &Template{}),
		Node: node,
	})
}

func requireStatus(t *testing.T, err error, want errutil.CoreStatus) {
	t.Helper()

	var base errutil.BaseError
	require.ErrorAs(t, err, &base)
	require.Equal(t, want, base.Code)
}

func TestCreateAndGet(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateRequest{
		Name:            "Ping",
		Description:     "connectivity check",
		TemplateContent: "---\n- hosts: {{.hosts}}\n  tasks:\n    - ping:\n",
		VariablesSchema: webSchema(),
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Equal(t, Active, created.Status)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.Name, got.Name)

	schema, err := got.Schema()
	require.NoError(t, err)
	require.NotNil(t, schema)
	require.Contains(t, schema.Required, "hosts")
}

func TestGetUnknown(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Get(context.Background(), "missing")
	requireStatus(t, err, errutil.StatusNotFound)
}

func TestUpdatePatchesFields(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateRequest{
		Name:            "Ping",
		TemplateContent: "---\n- hosts: all\n  tasks: []\n",
	})
	require.NoError(t, err)

	name := "Ping v2"
	updated, err := svc.Update(ctx, created.ID, UpdateRequest{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "Ping v2", updated.Name)
	require.Equal(t, created.TemplateContent, updated.TemplateContent)
}

func TestDeleteRetires(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateRequest{
		Name:            "Ping",
		TemplateContent: "---\n- hosts: all\n  tasks: []\n",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.Get(ctx, created.ID)
	requireStatus(t, err, errutil.StatusNotFound)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Empty(t, list)

	// The row itself is kept.
	var raw Template
	require.NoError(t, svc.db.Where("id = ?", created.ID).First(&raw).Error)
	require.Equal(t, Retired, raw.Status)
}

func TestRenderAppliesDefaults(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateRequest{
		Name:            "Web",
		TemplateContent: "---\n- hosts: {{.hosts}}\n  vars:\n    server: {{.web_server}}\n    port: {{.port}}\n",
		VariablesSchema: webSchema(),
	})
	require.NoError(t, err)

	out, err := svc.Render(ctx, created.ID, map[string]interface{}{"hosts": "staging"})
	require.NoError(t, err)
	require.Contains(t, out, "hosts: staging")
	require.Contains(t, out, "server: nginx")
	require.Contains(t, out, "port: 80")
	require.False(t, strings.HasPrefix(out, "\n"))
}

func TestRenderUndefinedPlaceholderFails(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateRequest{
		Name:            "Broken",
		TemplateContent: "---\n- hosts: {{.nowhere}}\n",
	})
	require.NoError(t, err)

	_, err = svc.Render(ctx, created.ID, map[string]interface{}{})
	requireStatus(t, err, errutil.StatusRender)
}

func TestValidateVariables(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateRequest{
		Name:            "Web",
		TemplateContent: "---\n- hosts: {{.hosts}}\n",
		VariablesSchema: webSchema(),
	})
	require.NoError(t, err)

	res, err := svc.ValidateVariables(ctx, created.ID, map[string]interface{}{})
	require.NoError(t, err)
	require.False(t, res.Valid)
	require.Contains(t, res.Errors, "required field missing: hosts")

	res, err = svc.ValidateVariables(ctx, created.ID, map[string]interface{}{"hosts": "web"})
	require.NoError(t, err)
	require.True(t, res.Valid)
}

func TestSeedDefaultsIsIdempotent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.SeedDefaults(ctx))
	require.NoError(t, svc.SeedDefaults(ctx))

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	names := []string{list[0].Name, list[1].Name}
	require.ElementsMatch(t, names, []string{"Web Server Setup", "Database Server Setup"})
}

func TestSeededTemplateRenders(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.SeedDefaults(ctx))

	list, err := svc.List(ctx)
	require.NoError(t, err)

	var web *Template
	for _, tpl := range list {
		if tpl.Name == "Web Server Setup" {
			web = tpl
		}
	}
	require.NotNil(t, web)

	out, err := svc.Render(ctx, web.ID, map[string]interface{}{"hosts": "web_servers"})
	require.NoError(t, err)
	require.Contains(t, out, "hosts: web_servers")
	require.Contains(t, out, "web_server: nginx")
}
