package services

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/ucpm/scrum-api/internal/models"
	"github.com/ucpm/scrum-api/internal/policy"
	"github.com/ucpm/scrum-api/internal/repository"
)

type ProjectServiceTestSuite struct {
	serviceSuite
}

func TestProjectServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ProjectServiceTestSuite))
}

func (s *ProjectServiceTestSuite) TestCreate_OwnerBecomesProductOwner() {
	owner := s.createUser("owner")

	project, err := s.projects.Create(owner.ID, CreateProjectInput{Name: "  Alpha  "})
	s.Require().NoError(err)
	s.Equal("Alpha", project.Name)
	s.Equal(models.ProjectStatusActive, project.Status)

	role, ok, err := s.authority.RoleOf(project.ID, owner.ID)
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(models.RoleProductOwner, role)
}

func (s *ProjectServiceTestSuite) TestCreate_NameRequired() {
	owner := s.createUser("owner")

	_, err := s.projects.Create(owner.ID, CreateProjectInput{Name: " "})
	s.ErrorIs(err, ErrValidation)
}

func (s *ProjectServiceTestSuite) TestList_MembersSeeTheirProjects() {
	alpha, _, _, dev := s.createProject("alpha")
	s.createProject("beta")

	summaries, err := s.projects.List(dev.ID)
	s.Require().NoError(err)
	s.Require().Len(summaries, 1)
	s.Equal(alpha.ID, summaries[0].Project.ID)
	s.Equal(models.RoleDeveloper, summaries[0].Role)
}

func (s *ProjectServiceTestSuite) TestList_SuperuserSeesAll() {
	s.createProject("alpha")
	s.createProject("beta")
	admin := s.createUser("admin")
	s.Require().NoError(s.db.Model(admin).Update("is_superuser", true).Error)

	summaries, err := s.projects.List(admin.ID)
	s.Require().NoError(err)
	s.Len(summaries, 2)
}

func (s *ProjectServiceTestSuite) TestGet_NonMemberNotFound() {
	project, _, _, dev := s.createProject("alpha")
	outsider := s.createUser("outsider")

	_, err := s.projects.Get(project, outsider.ID)
	s.ErrorIs(err, ErrNotFound)

	detail, err := s.projects.Get(project, dev.ID)
	s.Require().NoError(err)
	s.Len(detail.Members, 3)
	s.Equal(models.RoleDeveloper, detail.Role)
	s.True(detail.Capabilities.Has(policy.TaskCreate))
	s.False(detail.Capabilities.Has(policy.SprintEnd))
}

func (s *ProjectServiceTestSuite) TestUpdate_OwnerOnly() {
	project, po, _, _ := s.createProject("alpha")
	secondPO := s.createUser("second-po")
	s.addMember(project, secondPO, models.RoleProductOwner)

	name := "Renamed"
	_, err := s.projects.Update(project, secondPO.ID, UpdateProjectInput{Name: &name})
	s.ErrorIs(err, ErrPermission)

	updated, err := s.projects.Update(project, po.ID, UpdateProjectInput{Name: &name})
	s.Require().NoError(err)
	s.Equal("Renamed", updated.Name)
}

func (s *ProjectServiceTestSuite) TestClose_Twice() {
	project, po, _, _ := s.createProject("alpha")

	closed, err := s.projects.Close(project, po.ID)
	s.Require().NoError(err)
	s.Equal(models.ProjectStatusConcluded, closed.Status)
	s.Require().NotNil(closed.ConcludedAt)

	_, err = s.projects.Close(project, po.ID)
	s.ErrorIs(err, ErrAlreadyCompleted)
}

func (s *ProjectServiceTestSuite) TestAddMember() {
	project, po, sm, _ := s.createProject("alpha")
	newcomer := s.createUser("newcomer")

	member, err := s.projects.AddMember(project, po.ID, AddMemberInput{Email: "NEWCOMER@example.com", Role: models.RoleScrumMaster})
	s.Require().NoError(err)
	s.Equal(newcomer.ID, member.UserID)
	s.Equal(models.RoleScrumMaster, member.Role)

	_, err = s.projects.AddMember(project, po.ID, AddMemberInput{Email: newcomer.Email, Role: models.RoleDeveloper})
	s.ErrorIs(err, ErrConflict)

	_, err = s.projects.AddMember(project, po.ID, AddMemberInput{Email: "ghost@example.com", Role: models.RoleDeveloper})
	s.ErrorIs(err, ErrNotFound)

	_, err = s.projects.AddMember(project, po.ID, AddMemberInput{Email: newcomer.Email, Role: "BOSS"})
	s.ErrorIs(err, ErrValidation)

	_, err = s.projects.AddMember(project, sm.ID, AddMemberInput{Email: newcomer.Email, Role: models.RoleDeveloper})
	s.ErrorIs(err, ErrPermission)
}

func (s *ProjectServiceTestSuite) TestInvite_ByUsernameOrEmail() {
	project, po, _, _ := s.createProject("alpha")
	byName := s.createUser("by-name")
	byEmail := s.createUser("by-email")

	member, err := s.projects.Invite(project, po.ID, "by-name")
	s.Require().NoError(err)
	s.Equal(byName.ID, member.UserID)
	s.Equal(models.RoleDeveloper, member.Role)

	member, err = s.projects.Invite(project, po.ID, byEmail.Email)
	s.Require().NoError(err)
	s.Equal(byEmail.ID, member.UserID)
}

func (s *ProjectServiceTestSuite) TestInvite_ConcludedProject() {
	project, po, _, _ := s.createProject("alpha")
	s.createUser("late")
	_, err := s.projects.Close(project, po.ID)
	s.Require().NoError(err)

	_, err = s.projects.Invite(project, po.ID, "late")
	s.ErrorIs(err, ErrValidation)
}

func (s *ProjectServiceTestSuite) TestRemoveMember_ClearsTeamAndAssignments() {
	project, po, sm, dev := s.createProject("alpha")
	story := s.createStory(project, po)
	item := s.createItem(project, po, story, "A", models.PriorityHigh)
	sprint := s.createSprint(project, sm, "Sprint 1", date(2025, 11, 10), date(2025, 11, 20), dev.ID)
	task, err := s.tasks.Create(project, dev.ID, sprint.ID, CreateTaskInput{BacklogItemID: item.ID, Description: "code", AssignedToID: &dev.ID})
	s.Require().NoError(err)

	s.Require().NoError(s.projects.RemoveMember(project, po.ID, dev.ID))

	ok, err := s.authority.IsMember(project.ID, dev.ID)
	s.Require().NoError(err)
	s.False(ok)

	var team int64
	s.db.Model(&models.SprintTeamMember{}).Where("user_id = ?", dev.ID).Count(&team)
	s.Zero(team)

	var reloaded models.Task
	s.Require().NoError(s.db.First(&reloaded, task.ID).Error)
	s.Nil(reloaded.AssignedToID)
}

func (s *ProjectServiceTestSuite) TestRemoveMember_Guards() {
	project, po, sm, _ := s.createProject("alpha")
	outsider := s.createUser("outsider")

	s.ErrorIs(s.projects.RemoveMember(project, po.ID, po.ID), ErrCannotRemoveOwner)
	s.ErrorIs(s.projects.RemoveMember(project, po.ID, outsider.ID), ErrNotFound)
	s.ErrorIs(s.projects.RemoveMember(project, sm.ID, po.ID), ErrPermission)
}

func (s *ProjectServiceTestSuite) TestRemoveMember_LastProductOwner() {
	project, po, _, _ := s.createProject("alpha")
	other := s.createUser("other-po")
	s.addMember(project, other, models.RoleProductOwner)
	third := s.createUser("third-po")
	s.addMember(project, third, models.RoleProductOwner)

	s.NoError(s.projects.RemoveMember(project, po.ID, third.ID))

	// demote the owner so other-po is the only Product Owner left
	s.Require().NoError(s.db.Model(&models.ProjectMembership{}).
		Where("project_id = ? AND user_id = ?", project.ID, po.ID).
		Update("role", models.RoleScrumMaster).Error)

	s.ErrorIs(s.projects.RemoveMember(project, other.ID, other.ID), ErrLastProductOwner)
}

func (s *ProjectServiceTestSuite) TestDelete_Cascades() {
	project, po, sm, dev := s.createProject("alpha")
	story := s.createStory(project, po)
	item := s.createItem(project, po, story, "A", models.PriorityHigh)
	sprint := s.createSprint(project, sm, "Sprint 1", date(2025, 11, 10), date(2025, 11, 20), dev.ID)
	_, err := s.tasks.Create(project, dev.ID, sprint.ID, CreateTaskInput{BacklogItemID: item.ID, Description: "code"})
	s.Require().NoError(err)

	s.ErrorIs(s.projects.Delete(project, sm.ID), ErrPermission)
	s.Require().NoError(s.projects.Delete(project, po.ID))

	for _, model := range []interface{}{
		&models.Project{}, &models.ProjectMembership{}, &models.UserStory{},
		&models.ProductBacklogItem{}, &models.Sprint{}, &models.SprintTeamMember{}, &models.Task{},
	} {
		var count int64
		s.Require().NoError(s.db.Model(model).Count(&count).Error)
		s.Zero(count, "%T rows left", model)
	}
}

func (s *ProjectServiceTestSuite) TestMembershipIsUniquePerProject() {
	project, _, _, dev := s.createProject("alpha")

	err := s.db.Create(&models.ProjectMembership{ProjectID: project.ID, UserID: dev.ID, Role: models.RoleScrumMaster}).Error
	s.Error(err)
}

func (s *ProjectServiceTestSuite) TestCapabilities() {
	project, _, sm, _ := s.createProject("alpha")
	outsider := s.createUser("outsider")

	caps, err := s.authority.Capabilities(project.ID, sm.ID)
	s.Require().NoError(err)
	s.True(caps.Has(policy.SprintEnd))
	s.False(caps.Has(policy.StoryCreate))

	caps, err = s.authority.Capabilities(project.ID, outsider.ID)
	s.Require().NoError(err)
	s.Empty(caps)
}

// hiddenMemberRepo hides one user's membership from lookups, as if their
// insert landed between the membership check and ours.
type hiddenMemberRepo struct {
	repository.ProjectRepository
	hidden uint64
}

func (r hiddenMemberRepo) FindMember(projectID, userID uint64) (*models.ProjectMembership, error) {
	if userID == r.hidden {
		return nil, gorm.ErrRecordNotFound
	}
	return r.ProjectRepository.FindMember(projectID, userID)
}

func (s *ProjectServiceTestSuite) TestAddMember_DuplicateAtInsertIsConflict() {
	project, po, _, dev := s.createProject("alpha")

	projectRepo := hiddenMemberRepo{ProjectRepository: repository.NewProjectRepository(s.db), hidden: dev.ID}
	authority := NewAuthority(projectRepo, policy.Default())
	projects := NewProjectService(projectRepo, repository.NewUserRepository(s.db), authority, FixedClock(testNow))

	_, err := projects.AddMember(project, po.ID, AddMemberInput{Email: dev.Email, Role: models.RoleScrumMaster})
	s.ErrorIs(err, ErrConflict)
	s.ErrorIs(err, ErrAlreadyMember)

	role, ok, err := s.authority.RoleOf(project.ID, dev.ID)
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(models.RoleDeveloper, role)
}
