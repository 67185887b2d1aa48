package services

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ucpm/scrum-api/internal/logging"
	"github.com/ucpm/scrum-api/internal/models"
	"github.com/ucpm/scrum-api/internal/policy"
	"github.com/ucpm/scrum-api/internal/repository"
)

var (
	ErrProjectNotFound   = notFoundError("project")
	ErrNotProjectOwner   = permissionError("only the project owner can perform this action")
	ErrProjectConcluded  = validationError("project", "the project is concluded")
	ErrAlreadyMember     = conflictError("user", "the user is already a member of this project")
	ErrCannotRemoveOwner = validationError("user_id", "the project owner cannot be removed")
	ErrLastProductOwner  = validationError("user_id", "the project must keep at least one Product Owner")
	ErrMemberNotFound    = notFoundError("member")
)

// ProjectService handles projects and their memberships.
type ProjectService struct {
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
	authority   *Authority
	clock       Clock
}

// NewProjectService creates a new ProjectService
func NewProjectService(projectRepo repository.ProjectRepository, userRepo repository.UserRepository, authority *Authority, clock Clock) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		userRepo:    userRepo,
		authority:   authority,
		clock:       clock,
	}
}

// ProjectSummary is a project together with the caller's role in it.
type ProjectSummary struct {
	Project models.Project
	Role    models.Role
}

// ProjectDetail is a project with its members and the caller's role.
type ProjectDetail struct {
	Project models.Project
	Role    models.Role
	Members []models.ProjectMembership
	// Operations the caller may perform in the project.
	Capabilities policy.CapabilitySet
}

// CreateProjectInput represents input for creating a project
type CreateProjectInput struct {
	Name        string
	Description string
}

// Create creates a project owned by the caller, who becomes its Product Owner.
func (s *ProjectService) Create(ownerID uint64, input CreateProjectInput) (*models.Project, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, validationError("name", "name is required")
	}

	project := &models.Project{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		OwnerID:     ownerID,
		Status:      models.ProjectStatusActive,
	}
	owner := &models.ProjectMembership{
		Role:     models.RoleProductOwner,
		JoinedAt: s.clock.Now(),
	}

	if err := s.projectRepo.CreateWithOwner(project, owner); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	logging.Logger.WithFields(logrus.Fields{
		"project_id": project.ID,
		"owner_id":   ownerID,
	}).Info("Project created")

	return project, nil
}

// List returns the projects the caller belongs to. Superusers see every project.
func (s *ProjectService) List(userID uint64) ([]ProjectSummary, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	memberships, err := s.projectRepo.ListMembershipsByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}

	if !user.IsSuperuser {
		summaries := make([]ProjectSummary, len(memberships))
		for i, m := range memberships {
			summaries[i] = ProjectSummary{Project: m.Project, Role: m.Role}
		}
		return summaries, nil
	}

	roles := make(map[uint64]models.Role, len(memberships))
	for _, m := range memberships {
		roles[m.ProjectID] = m.Role
	}

	projects, err := s.projectRepo.ListAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	summaries := make([]ProjectSummary, len(projects))
	for i, p := range projects {
		summaries[i] = ProjectSummary{Project: p, Role: roles[p.ID]}
	}
	return summaries, nil
}

// Get returns a project with its members. Non-members get ErrProjectNotFound.
func (s *ProjectService) Get(project *models.Project, userID uint64) (*ProjectDetail, error) {
	role, ok, err := s.authority.RoleOf(project.ID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		user, err := s.userRepo.FindByID(userID)
		if err != nil || !user.IsSuperuser {
			return nil, ErrProjectNotFound
		}
	}

	members, err := s.projectRepo.ListMembers(project.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	caps, err := s.authority.Capabilities(project.ID, userID)
	if err != nil {
		return nil, err
	}

	return &ProjectDetail{Project: *project, Role: role, Members: members, Capabilities: caps}, nil
}

// authorizeOwner checks the policy for op and that the caller owns the project.
func (s *ProjectService) authorizeOwner(project *models.Project, userID uint64, op policy.Operation) error {
	if _, err := s.authority.Authorize(project.ID, userID, op); err != nil {
		return err
	}
	if project.OwnerID != userID {
		return ErrNotProjectOwner
	}
	return nil
}

// UpdateProjectInput holds the fields to change. Nil fields are left alone.
type UpdateProjectInput struct {
	Name        *string
	Description *string
}

// Update changes a project's name or description.
func (s *ProjectService) Update(project *models.Project, userID uint64, input UpdateProjectInput) (*models.Project, error) {
	if err := s.authorizeOwner(project, userID, policy.ProjectUpdate); err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, validationError("name", "name cannot be empty")
		}
		project.Name = name
	}
	if input.Description != nil {
		project.Description = strings.TrimSpace(*input.Description)
	}

	if err := s.projectRepo.Update(project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return project, nil
}

// Close concludes a project.
func (s *ProjectService) Close(project *models.Project, userID uint64) (*models.Project, error) {
	if err := s.authorizeOwner(project, userID, policy.ProjectClose); err != nil {
		return nil, err
	}
	if project.IsConcluded() {
		return nil, alreadyCompletedError("the project is already concluded")
	}

	now := s.clock.Now()
	project.Status = models.ProjectStatusConcluded
	project.ConcludedAt = &now

	if err := s.projectRepo.Update(project); err != nil {
		return nil, fmt.Errorf("failed to close project: %w", err)
	}

	logging.Logger.WithField("project_id", project.ID).Info("Project concluded")
	return project, nil
}

// Delete removes a project and everything in it.
func (s *ProjectService) Delete(project *models.Project, userID uint64) error {
	if err := s.authorizeOwner(project, userID, policy.ProjectDelete); err != nil {
		return err
	}

	if err := s.projectRepo.Delete(project.ID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	logging.Logger.WithField("project_id", project.ID).Info("Project deleted")
	return nil
}

// AddMemberInput represents input for adding a member by email
type AddMemberInput struct {
	Email string
	Role  models.Role
}

// AddMember adds the user with the given email to the project.
func (s *ProjectService) AddMember(project *models.Project, actorID uint64, input AddMemberInput) (*models.ProjectMembership, error) {
	if _, err := s.authority.Authorize(project.ID, actorID, policy.MemberAdd); err != nil {
		return nil, err
	}
	if !input.Role.Valid() {
		return nil, validationError("role", fmt.Sprintf("%q is not a valid role", input.Role))
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, validationError("email", "email is required")
	}

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return s.addMember(project, user, input.Role)
}

// Invite adds a user, looked up by username or email, as a Developer.
func (s *ProjectService) Invite(project *models.Project, actorID uint64, identifier string) (*models.ProjectMembership, error) {
	if _, err := s.authority.Authorize(project.ID, actorID, policy.MemberAdd); err != nil {
		return nil, err
	}

	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, validationError("username", "username is required")
	}

	user, err := s.userRepo.FindByUsername(identifier)
	if isRecordNotFound(err) {
		user, err = s.userRepo.FindByEmail(strings.ToLower(identifier))
	}
	if err != nil {
		if isRecordNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return s.addMember(project, user, models.RoleDeveloper)
}

func (s *ProjectService) addMember(project *models.Project, user *models.User, role models.Role) (*models.ProjectMembership, error) {
	if project.IsConcluded() {
		return nil, ErrProjectConcluded
	}

	isMember, err := s.authority.IsMember(project.ID, user.ID)
	if err != nil {
		return nil, err
	}
	if isMember {
		return nil, ErrAlreadyMember
	}

	member := &models.ProjectMembership{
		ProjectID: project.ID,
		UserID:    user.ID,
		Role:      role,
		JoinedAt:  s.clock.Now(),
	}
	if err := s.projectRepo.AddMember(member); err != nil {
		if isDuplicateKey(err) {
			return nil, ErrAlreadyMember
		}
		return nil, fmt.Errorf("failed to add member: %w", err)
	}
	member.User = *user

	logging.Logger.WithFields(logrus.Fields{
		"project_id": project.ID,
		"user_id":    user.ID,
		"role":       role,
	}).Info("Member added")

	return member, nil
}

// RemoveMember removes a user from the project, clearing their sprint team
// rows and task assignments there.
func (s *ProjectService) RemoveMember(project *models.Project, actorID, userID uint64) error {
	if _, err := s.authority.Authorize(project.ID, actorID, policy.MemberRemove); err != nil {
		return err
	}
	if userID == project.OwnerID {
		return ErrCannotRemoveOwner
	}

	role, ok, err := s.authority.RoleOf(project.ID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrMemberNotFound
	}

	if role == models.RoleProductOwner {
		count, err := s.projectRepo.CountMembersWithRole(project.ID, models.RoleProductOwner)
		if err != nil {
			return fmt.Errorf("failed to count product owners: %w", err)
		}
		if count <= 1 {
			return ErrLastProductOwner
		}
	}

	if err := s.projectRepo.RemoveMember(project.ID, userID); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	logging.Logger.WithFields(logrus.Fields{
		"project_id": project.ID,
		"user_id":    userID,
		"removed_by": actorID,
	}).Info("Member removed")

	return nil
}
