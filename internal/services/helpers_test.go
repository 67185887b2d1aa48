package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ucpm/scrum-api/internal/auth"
	"github.com/ucpm/scrum-api/internal/database"
	"github.com/ucpm/scrum-api/internal/models"
	"github.com/ucpm/scrum-api/internal/policy"
	"github.com/ucpm/scrum-api/internal/repository"
)

// 2025-11-15 falls inside the Sprint 1 window used throughout the tests.
var testNow = time.Date(2025, 11, 15, 9, 30, 0, 0, time.UTC)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// serviceSuite wires every service against a private in-memory database.
type serviceSuite struct {
	suite.Suite
	db *gorm.DB

	authority *Authority
	auth      *AuthService
	projects  *ProjectService
	stories   *StoryService
	backlog   *BacklogService
	sprints   *SprintService
	tasks     *TaskService
}

func (s *serviceSuite) SetupTest() {
	s.setup(policy.Default(), FixedClock(testNow))
}

func (s *serviceSuite) setup(table *policy.Table, clock Clock) {
	var err error

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=on"
	s.db, err = gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	s.Require().NoError(err)

	sqlDB, err := s.db.DB()
	s.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)

	s.Require().NoError(s.db.AutoMigrate(database.AllModels()...))

	userRepo := repository.NewUserRepository(s.db)
	projectRepo := repository.NewProjectRepository(s.db)
	storyRepo := repository.NewUserStoryRepository(s.db)
	backlogRepo := repository.NewBacklogRepository(s.db)
	sprintRepo := repository.NewSprintRepository(s.db)
	taskRepo := repository.NewTaskRepository(s.db)

	s.authority = NewAuthority(projectRepo, table)
	s.auth = NewAuthService(userRepo, auth.NewTokenIssuer("test-secret", time.Minute, time.Hour))
	s.projects = NewProjectService(projectRepo, userRepo, s.authority, clock)
	s.stories = NewStoryService(storyRepo, s.authority)
	s.backlog = NewBacklogService(backlogRepo, storyRepo, sprintRepo, s.authority)
	s.sprints = NewSprintService(sprintRepo, backlogRepo, projectRepo, s.authority, clock, nil)
	s.tasks = NewTaskService(taskRepo, sprintRepo, backlogRepo, s.authority)
}

func (s *serviceSuite) TearDownTest() {
	sqlDB, err := s.db.DB()
	s.Require().NoError(err)
	sqlDB.Close()
}

func (s *serviceSuite) createUser(username string) *models.User {
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hashedpassword",
	}
	s.Require().NoError(s.db.Create(user).Error)
	return user
}

// createProject creates a project owned by a new PO plus one SM and one DEV.
func (s *serviceSuite) createProject(name string) (project *models.Project, po, sm, dev *models.User) {
	po = s.createUser(name + "-po")
	sm = s.createUser(name + "-sm")
	dev = s.createUser(name + "-dev")

	project, err := s.projects.Create(po.ID, CreateProjectInput{Name: name})
	s.Require().NoError(err)

	s.addMember(project, sm, models.RoleScrumMaster)
	s.addMember(project, dev, models.RoleDeveloper)
	return project, po, sm, dev
}

func (s *serviceSuite) addMember(project *models.Project, user *models.User, role models.Role) {
	s.Require().NoError(s.db.Create(&models.ProjectMembership{
		ProjectID: project.ID,
		UserID:    user.ID,
		Role:      role,
		JoinedAt:  testNow,
	}).Error)
}

func (s *serviceSuite) createStory(project *models.Project, po *models.User) *models.UserStory {
	story, err := s.stories.Create(project, po.ID, StoryInput{Title: "Login", Description: "As a user I can log in"})
	s.Require().NoError(err)
	return story
}

func (s *serviceSuite) createItem(project *models.Project, po *models.User, story *models.UserStory, title string, priority models.Priority) *models.ProductBacklogItem {
	item, err := s.backlog.Create(project, po.ID, CreateItemInput{
		UserStoryID: story.ID,
		Title:       title,
		Priority:    priority,
	})
	s.Require().NoError(err)
	return item
}

func (s *serviceSuite) createSprint(project *models.Project, sm *models.User, name string, start, end time.Time, team ...uint64) *models.Sprint {
	sprint, err := s.sprints.Create(project, sm.ID, CreateSprintInput{
		Name:      name,
		StartDate: start,
		EndDate:   end,
		Team:      team,
	})
	s.Require().NoError(err)
	return sprint
}

func (s *serviceSuite) reloadItem(id uint64) models.ProductBacklogItem {
	var item models.ProductBacklogItem
	s.Require().NoError(s.db.First(&item, id).Error)
	return item
}
