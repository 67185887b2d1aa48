package services

import (
	"fmt"

	"github.com/ucpm/scrum-api/internal/models"
	"github.com/ucpm/scrum-api/internal/policy"
	"github.com/ucpm/scrum-api/internal/repository"
)

// Authority answers membership and permission questions against the store
// and the policy table. Nothing is cached.
type Authority struct {
	projectRepo repository.ProjectRepository
	policy      *policy.Table
}

// NewAuthority creates a new Authority. A nil table means the default policy.
func NewAuthority(projectRepo repository.ProjectRepository, table *policy.Table) *Authority {
	if table == nil {
		table = policy.Default()
	}
	return &Authority{
		projectRepo: projectRepo,
		policy:      table,
	}
}

// RoleOf returns the user's role in the project. ok is false for non-members.
func (a *Authority) RoleOf(projectID, userID uint64) (role models.Role, ok bool, err error) {
	member, err := a.projectRepo.FindMember(projectID, userID)
	if err != nil {
		if isRecordNotFound(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to find membership: %w", err)
	}
	return member.Role, true, nil
}

// IsMember reports whether the user belongs to the project.
func (a *Authority) IsMember(projectID, userID uint64) (bool, error) {
	_, ok, err := a.RoleOf(projectID, userID)
	return ok, err
}

// Capabilities returns the operations the user may perform in the project.
// Non-members get an empty set.
func (a *Authority) Capabilities(projectID, userID uint64) (policy.CapabilitySet, error) {
	role, ok, err := a.RoleOf(projectID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return policy.CapabilitySet{}, nil
	}
	return a.policy.Capabilities(role), nil
}

// Authorize checks that the user's role grants op and returns that role.
func (a *Authority) Authorize(projectID, userID uint64, op policy.Operation) (models.Role, error) {
	role, ok, err := a.RoleOf(projectID, userID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", permissionError(fmt.Sprintf("you are not a member of this project (%s)", op))
	}
	if !a.policy.Allows(role, op) {
		return role, permissionError(fmt.Sprintf("role %s may not perform %s", role.DisplayName(), op))
	}
	return role, nil
}

// requireMember fails with ErrPermission unless the user belongs to the project.
func (a *Authority) requireMember(projectID, userID uint64) (models.Role, error) {
	role, ok, err := a.RoleOf(projectID, userID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", permissionError("you are not a member of this project")
	}
	return role, nil
}

// requireVisible hides the project from non-members behind ErrProjectNotFound.
func (a *Authority) requireVisible(projectID, userID uint64) error {
	ok, err := a.IsMember(projectID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrProjectNotFound
	}
	return nil
}
