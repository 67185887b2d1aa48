// Package policy holds the table that maps project operations to the
// membership roles allowed to perform them.
package policy

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/ucpm/scrum-api/internal/models"
)

type Operation string

const (
	ProjectUpdate Operation = "project.update"
	ProjectClose  Operation = "project.close"
	ProjectDelete Operation = "project.delete"

	MemberAdd    Operation = "member.add"
	MemberRemove Operation = "member.remove"

	StoryCreate Operation = "story.create"
	StoryUpdate Operation = "story.update"
	StoryDelete Operation = "story.delete"

	BacklogCreate Operation = "backlog.create"
	BacklogUpdate Operation = "backlog.update"
	BacklogDelete Operation = "backlog.delete"

	SprintCreate      Operation = "sprint.create"
	SprintUpdate      Operation = "sprint.update"
	SprintDelete      Operation = "sprint.delete"
	SprintAddItems    Operation = "sprint.add_items"
	SprintRemoveItems Operation = "sprint.remove_items"
	SprintEnd         Operation = "sprint.end"

	TaskCreate Operation = "task.create"
	TaskUpdate Operation = "task.update"
	TaskDelete Operation = "task.delete"
)

// Operations lists every operation the table must cover.
var Operations = []Operation{
	ProjectUpdate, ProjectClose, ProjectDelete,
	MemberAdd, MemberRemove,
	StoryCreate, StoryUpdate, StoryDelete,
	BacklogCreate, BacklogUpdate, BacklogDelete,
	SprintCreate, SprintUpdate, SprintDelete, SprintAddItems, SprintRemoveItems, SprintEnd,
	TaskCreate, TaskUpdate, TaskDelete,
}

// DefaultVersion identifies the built-in rule set.
const DefaultVersion = 2

// Table is an immutable operation → roles mapping.
type Table struct {
	version int
	rules   map[Operation]map[models.Role]struct{}
}

// CapabilitySet is the set of operations a single role may perform.
type CapabilitySet map[Operation]struct{}

// Has reports whether op is in the set.
func (c CapabilitySet) Has(op Operation) bool {
	_, ok := c[op]
	return ok
}

// List returns the operations in the set in sorted order.
func (c CapabilitySet) List() []Operation {
	ops := make([]Operation, 0, len(c))
	for op := range c {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i] < ops[j] })
	return ops
}

var anyMember = []models.Role{models.RoleProductOwner, models.RoleScrumMaster, models.RoleDeveloper}

// Default returns the pinned rule set: sprint creation and task work are open
// to any member, sprint mutation belongs to the Scrum Master, and the Product
// Owner owns the backlog, stories and membership.
func Default() *Table {
	po := []models.Role{models.RoleProductOwner}
	sm := []models.Role{models.RoleScrumMaster}

	return New(DefaultVersion, map[Operation][]models.Role{
		ProjectUpdate: po,
		ProjectClose:  po,
		ProjectDelete: po,

		MemberAdd:    po,
		MemberRemove: po,

		StoryCreate: po,
		StoryUpdate: po,
		StoryDelete: po,

		BacklogCreate: po,
		BacklogUpdate: po,
		BacklogDelete: po,

		SprintCreate:      anyMember,
		SprintUpdate:      sm,
		SprintDelete:      sm,
		SprintAddItems:    sm,
		SprintRemoveItems: sm,
		SprintEnd:         sm,

		TaskCreate: anyMember,
		TaskUpdate: anyMember,
		TaskDelete: anyMember,
	})
}

// New builds a table from rules. Operations without a rule are denied to everyone.
func New(version int, rules map[Operation][]models.Role) *Table {
	t := &Table{
		version: version,
		rules:   make(map[Operation]map[models.Role]struct{}, len(rules)),
	}
	for op, roles := range rules {
		set := make(map[models.Role]struct{}, len(roles))
		for _, r := range roles {
			set[r] = struct{}{}
		}
		t.rules[op] = set
	}
	return t
}

// Version returns the rule set version.
func (t *Table) Version() int {
	return t.version
}

// Allows reports whether role may perform op.
func (t *Table) Allows(role models.Role, op Operation) bool {
	roles, ok := t.rules[op]
	if !ok {
		return false
	}
	_, ok = roles[role]
	return ok
}

// RolesFor returns the roles allowed to perform op.
func (t *Table) RolesFor(op Operation) []models.Role {
	out := make([]models.Role, 0, len(t.rules[op]))
	for _, r := range models.Roles {
		if t.Allows(r, op) {
			out = append(out, r)
		}
	}
	return out
}

// Capabilities returns every operation role may perform.
func (t *Table) Capabilities(role models.Role) CapabilitySet {
	caps := make(CapabilitySet)
	for op, roles := range t.rules {
		if _, ok := roles[role]; ok {
			caps[op] = struct{}{}
		}
	}
	return caps
}

type fileFormat struct {
	Version int                      `yaml:"version"`
	Rules   map[string][]models.Role `yaml:"rules"`
}

// LoadFile reads a YAML rule file on top of the default table. Rules named in
// the file replace the default rule for that operation.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading policy file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML rule set on top of the default table.
func Parse(data []byte) (*Table, error) {
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing policy file: %w", err)
	}

	known := make(map[Operation]bool, len(Operations))
	for _, op := range Operations {
		known[op] = true
	}

	base := Default()
	rules := make(map[Operation][]models.Role, len(Operations))
	for _, op := range Operations {
		rules[op] = base.RolesFor(op)
	}

	for name, roles := range f.Rules {
		op := Operation(name)
		if !known[op] {
			return nil, fmt.Errorf("unknown operation %q in policy file", name)
		}
		for _, r := range roles {
			if !r.Valid() {
				return nil, fmt.Errorf("unknown role %q for operation %q", r, name)
			}
		}
		rules[op] = roles
	}

	version := f.Version
	if version == 0 {
		version = DefaultVersion
	}
	return New(version, rules), nil
}
