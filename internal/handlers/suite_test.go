package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ucpm/scrum-api/internal/constants"
	"github.com/ucpm/scrum-api/internal/database"
	"github.com/ucpm/scrum-api/internal/middleware"
	"github.com/ucpm/scrum-api/internal/models"
	"github.com/ucpm/scrum-api/internal/policy"
	"github.com/ucpm/scrum-api/internal/repository"
	"github.com/ucpm/scrum-api/internal/services"
)

const testUserHeader = "X-Test-User"

var testNow = time.Date(2025, 11, 15, 9, 30, 0, 0, time.UTC)

// HandlerTestSuite wires the project-scoped handlers against an in-memory
// database. Requests pick their caller through testUserHeader.
type HandlerTestSuite struct {
	suite.Suite
	db     *gorm.DB
	router *gin.Engine

	projects *services.ProjectService
	stories  *services.StoryService
	backlog  *services.BacklogService
	sprints  *services.SprintService
	tasks    *services.TaskService

	project  *models.Project
	po       *models.User
	sm       *models.User
	dev      *models.User
	outsider *models.User
}

// SetupTest runs before each test
func (suite *HandlerTestSuite) SetupTest() {
	var err error

	gin.SetMode(gin.TestMode)
	UseJSONFieldNames()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=on"
	suite.db, err = gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	suite.Require().NoError(err)

	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)

	suite.Require().NoError(suite.db.AutoMigrate(database.AllModels()...))

	clock := services.FixedClock(testNow)
	userRepo := repository.NewUserRepository(suite.db)
	projectRepo := repository.NewProjectRepository(suite.db)
	storyRepo := repository.NewUserStoryRepository(suite.db)
	backlogRepo := repository.NewBacklogRepository(suite.db)
	sprintRepo := repository.NewSprintRepository(suite.db)
	taskRepo := repository.NewTaskRepository(suite.db)

	authority := services.NewAuthority(projectRepo, policy.Default())
	suite.projects = services.NewProjectService(projectRepo, userRepo, authority, clock)
	suite.stories = services.NewStoryService(storyRepo, authority)
	suite.backlog = services.NewBacklogService(backlogRepo, storyRepo, sprintRepo, authority)
	suite.sprints = services.NewSprintService(sprintRepo, backlogRepo, projectRepo, authority, clock, nil)
	suite.tasks = services.NewTaskService(taskRepo, sprintRepo, backlogRepo, authority)

	suite.router = gin.New()
	suite.router.Use(func(c *gin.Context) {
		if id, err := strconv.ParseUint(c.GetHeader(testUserHeader), 10, 64); err == nil {
			c.Set(constants.ContextKeyUserID, id)
		}
		c.Next()
	})

	sprintHandler := NewSprintHandler(suite.sprints)
	taskHandler := NewTaskHandler(suite.tasks)
	backlogHandler := NewBacklogHandler(suite.backlog)

	suite.router.GET("/api/tasks/", taskHandler.ListMyTasks)

	p := suite.router.Group("/api/projects/:id", middleware.RequireProject(projectRepo))
	p.GET("/backlog/", backlogHandler.ListItems)
	p.PATCH("/backlog/:bid/", backlogHandler.UpdateItem)
	p.GET("/sprints/", sprintHandler.ListSprints)
	p.POST("/sprints/", sprintHandler.CreateSprint)
	p.GET("/sprints/active/", sprintHandler.ListActiveSprints)
	p.GET("/sprints/:sid/", sprintHandler.GetSprint)
	p.PATCH("/sprints/:sid/", sprintHandler.UpdateSprint)
	p.POST("/sprints/:sid/add-items/", sprintHandler.AddItems)
	p.POST("/sprints/:sid/remove-items/", sprintHandler.RemoveItems)
	p.POST("/sprints/:sid/end-sprint/", sprintHandler.EndSprint)
	p.GET("/sprints/:sid/tasks/", taskHandler.ListSprintTasks)
	p.POST("/sprints/:sid/tasks/", taskHandler.CreateTask)
	p.PATCH("/tasks/:tid/", taskHandler.UpdateTask)
	p.DELETE("/tasks/:tid/", taskHandler.DeleteTask)

	suite.po = suite.createUser("owner")
	suite.sm = suite.createUser("master")
	suite.dev = suite.createUser("developer")
	suite.outsider = suite.createUser("outsider")

	suite.project, err = suite.projects.Create(suite.po.ID, services.CreateProjectInput{Name: "Checkout"})
	suite.Require().NoError(err)
	suite.addMember(suite.sm, models.RoleScrumMaster)
	suite.addMember(suite.dev, models.RoleDeveloper)
}

// TearDownTest runs after each test
func (suite *HandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *HandlerTestSuite) createUser(username string) *models.User {
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hashedpassword",
	}
	suite.Require().NoError(suite.db.Create(user).Error)
	return user
}

func (suite *HandlerTestSuite) addMember(user *models.User, role models.Role) {
	suite.Require().NoError(suite.db.Create(&models.ProjectMembership{
		ProjectID: suite.project.ID,
		UserID:    user.ID,
		Role:      role,
		JoinedAt:  testNow,
	}).Error)
}

func (suite *HandlerTestSuite) createItem(title string, priority models.Priority) *models.ProductBacklogItem {
	story, err := suite.stories.Create(suite.project, suite.po.ID, services.StoryInput{
		Title:       title,
		Description: "story for " + title,
	})
	suite.Require().NoError(err)

	item, err := suite.backlog.Create(suite.project, suite.po.ID, services.CreateItemInput{
		UserStoryID: story.ID,
		Title:       title,
		Priority:    priority,
	})
	suite.Require().NoError(err)
	return item
}

func (suite *HandlerTestSuite) createSprint(name string, start, end time.Time, team ...uint64) *models.Sprint {
	sprint, err := suite.sprints.Create(suite.project, suite.sm.ID, services.CreateSprintInput{
		Name:      name,
		StartDate: start,
		EndDate:   end,
		Team:      team,
	})
	suite.Require().NoError(err)
	return sprint
}

// request sends body (raw bytes or a value to marshal) as the given user.
func (suite *HandlerTestSuite) request(method, path string, user *models.User, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case []byte:
		reader = bytes.NewReader(b)
	default:
		data, err := json.Marshal(b)
		suite.Require().NoError(err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		req.Header.Set(testUserHeader, strconv.FormatUint(user.ID, 10))
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *HandlerTestSuite) projectPath(format string, args ...interface{}) string {
	path := "/api/projects/" + strconv.FormatUint(suite.project.ID, 10)
	if format == "" {
		return path + "/"
	}
	return path + fmt.Sprintf(format, args...)
}

func (suite *HandlerTestSuite) decode(w *httptest.ResponseRecorder, out interface{}) {
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
