package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ucpm/scrum-api/internal/models"
)

func TestDefaultCoversEveryOperation(t *testing.T) {
	table := Default()
	for _, op := range Operations {
		assert.NotEmpty(t, table.RolesFor(op), "operation %s has no roles", op)
	}
}

func TestDefaultRules(t *testing.T) {
	table := Default()

	tests := []struct {
		role    models.Role
		op      Operation
		allowed bool
	}{
		{models.RoleScrumMaster, SprintCreate, true},
		{models.RoleProductOwner, SprintCreate, true},
		{models.RoleDeveloper, SprintCreate, true},
		{models.RoleScrumMaster, SprintAddItems, true},
		{models.RoleProductOwner, SprintAddItems, false},
		{models.RoleDeveloper, SprintEnd, false},
		{models.RoleProductOwner, BacklogCreate, true},
		{models.RoleScrumMaster, BacklogCreate, false},
		{models.RoleProductOwner, MemberAdd, true},
		{models.RoleDeveloper, MemberRemove, false},
		{models.RoleDeveloper, TaskCreate, true},
		{models.Role("XX"), TaskCreate, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, table.Allows(tt.role, tt.op), "%s %s", tt.role, tt.op)
	}
}

func TestCapabilities(t *testing.T) {
	caps := Default().Capabilities(models.RoleScrumMaster)

	assert.True(t, caps.Has(SprintEnd))
	assert.True(t, caps.Has(TaskCreate))
	assert.False(t, caps.Has(StoryCreate))
	assert.Contains(t, caps.List(), SprintAddItems)
}

func TestParseOverridesRule(t *testing.T) {
	table, err := Parse([]byte(`
version: 1
rules:
  sprint.create: [SM]
  member.add: [PO, SM]
`))
	require.NoError(t, err)

	assert.Equal(t, 1, table.Version())
	assert.False(t, table.Allows(models.RoleProductOwner, SprintCreate))
	assert.True(t, table.Allows(models.RoleScrumMaster, SprintCreate))
	assert.True(t, table.Allows(models.RoleScrumMaster, MemberAdd))
	// untouched rules keep their defaults
	assert.True(t, table.Allows(models.RoleProductOwner, BacklogCreate))
}

func TestParseRejectsUnknownEntries(t *testing.T) {
	_, err := Parse([]byte("rules:\n  sprint.launch: [SM]\n"))
	require.Error(t, err)

	_, err = Parse([]byte("rules:\n  sprint.create: [ADMIN]\n"))
	require.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rules:\n  task.delete: [SM]\n"), 0o644))

	table, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultVersion, table.Version())
	assert.False(t, table.Allows(models.RoleDeveloper, TaskDelete))

	_, err = LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
