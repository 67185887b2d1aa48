package router

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ucpm/scrum-api/internal/auth"
	"github.com/ucpm/scrum-api/internal/handlers"
	"github.com/ucpm/scrum-api/internal/metrics"
	"github.com/ucpm/scrum-api/internal/middleware"
	"github.com/ucpm/scrum-api/internal/policy"
	"github.com/ucpm/scrum-api/internal/repository"
	"github.com/ucpm/scrum-api/internal/services"
)

// Deps holds what the HTTP layer needs to build its services.
type Deps struct {
	DB             *gorm.DB
	Tokens         *auth.TokenIssuer
	Policy         *policy.Table // nil means policy.Default()
	Metrics        *metrics.Metrics
	Clock          services.Clock // nil means the system clock
	AllowedOrigins []string
}

// routes registers each path with and without its trailing slash so both
// /api/projects and /api/projects/ answer without a redirect.
type routes struct {
	gin.IRoutes
}

func (r routes) handle(method, path string, h ...gin.HandlerFunc) {
	r.Handle(method, path, h...)
	r.Handle(method, strings.TrimSuffix(path, "/")+"/", h...)
}

func (r routes) GET(path string, h ...gin.HandlerFunc)    { r.handle(http.MethodGet, path, h...) }
func (r routes) POST(path string, h ...gin.HandlerFunc)   { r.handle(http.MethodPost, path, h...) }
func (r routes) PUT(path string, h ...gin.HandlerFunc)    { r.handle(http.MethodPut, path, h...) }
func (r routes) PATCH(path string, h ...gin.HandlerFunc)  { r.handle(http.MethodPatch, path, h...) }
func (r routes) DELETE(path string, h ...gin.HandlerFunc) { r.handle(http.MethodDelete, path, h...) }

// New wires repositories, services and handlers into a gin engine.
func New(deps Deps) *gin.Engine {
	handlers.UseJSONFieldNames()

	clock := deps.Clock
	if clock == nil {
		clock = services.SystemClock()
	}

	// Repositories
	userRepo := repository.NewUserRepository(deps.DB)
	projectRepo := repository.NewProjectRepository(deps.DB)
	storyRepo := repository.NewUserStoryRepository(deps.DB)
	backlogRepo := repository.NewBacklogRepository(deps.DB)
	sprintRepo := repository.NewSprintRepository(deps.DB)
	taskRepo := repository.NewTaskRepository(deps.DB)

	// Services
	authority := services.NewAuthority(projectRepo, deps.Policy)
	authService := services.NewAuthService(userRepo, deps.Tokens)
	projectService := services.NewProjectService(projectRepo, userRepo, authority, clock)
	storyService := services.NewStoryService(storyRepo, authority)
	backlogService := services.NewBacklogService(backlogRepo, storyRepo, sprintRepo, authority)
	sprintService := services.NewSprintService(sprintRepo, backlogRepo, projectRepo, authority, clock, deps.Metrics)
	taskService := services.NewTaskService(taskRepo, sprintRepo, backlogRepo, authority)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	projectHandler := handlers.NewProjectHandler(projectService)
	storyHandler := handlers.NewStoryHandler(storyService)
	backlogHandler := handlers.NewBacklogHandler(backlogService)
	sprintHandler := handlers.NewSprintHandler(sprintService)
	taskHandler := handlers.NewTaskHandler(taskService)

	r := gin.New()
	r.RedirectTrailingSlash = false
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.Metrics(deps.Metrics))
	r.Use(middleware.CORS(deps.AllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Scrum API is running",
		})
	})
	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	requireAuth := middleware.RequireAuth(deps.Tokens, deps.Metrics)
	requireProject := middleware.RequireProject(projectRepo)

	api := r.Group("/api")
	{
		// Auth routes (public)
		authRoutes := routes{api.Group("/auth")}
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.POST("/refresh", authHandler.Refresh)

		users := routes{api.Group("/users", requireAuth)}
		users.GET("/me", authHandler.GetCurrentUser)
		users.PATCH("/me", authHandler.UpdateCurrentUser)
		users.PUT("/me", authHandler.UpdateCurrentUser)

		tasks := routes{api.Group("/tasks", requireAuth)}
		tasks.GET("", taskHandler.ListMyTasks)

		projects := routes{api.Group("/projects", requireAuth)}
		projects.GET("", projectHandler.ListProjects)
		projects.POST("", projectHandler.CreateProject)

		// Everything under a project id resolves the project first.
		project := routes{api.Group("/projects/:id", requireAuth, requireProject)}
		project.GET("", projectHandler.GetProject)
		project.PATCH("", projectHandler.UpdateProject)
		project.PUT("", projectHandler.UpdateProject)
		project.DELETE("", projectHandler.DeleteProject)
		project.POST("/close", projectHandler.CloseProject)
		project.POST("/add_member", projectHandler.AddMember)
		project.POST("/invite", projectHandler.Invite)
		project.POST("/remove_member", projectHandler.RemoveMember)

		project.GET("/user-stories", storyHandler.ListStories)
		project.POST("/user-stories", storyHandler.CreateStory)
		project.GET("/user-stories/:sid", storyHandler.GetStory)
		project.PUT("/user-stories/:sid", storyHandler.UpdateStory)
		project.PATCH("/user-stories/:sid", storyHandler.UpdateStory)
		project.DELETE("/user-stories/:sid", storyHandler.DeleteStory)

		project.GET("/backlog", backlogHandler.ListItems)
		project.POST("/backlog", backlogHandler.CreateItem)
		project.GET("/backlog/:bid", backlogHandler.GetItem)
		project.PUT("/backlog/:bid", backlogHandler.UpdateItem)
		project.PATCH("/backlog/:bid", backlogHandler.UpdateItem)
		project.DELETE("/backlog/:bid", backlogHandler.DeleteItem)

		project.GET("/sprints", sprintHandler.ListSprints)
		project.POST("/sprints", sprintHandler.CreateSprint)
		project.GET("/sprints/active", sprintHandler.ListActiveSprints)
		project.GET("/sprints/:sid", sprintHandler.GetSprint)
		project.PATCH("/sprints/:sid", sprintHandler.UpdateSprint)
		project.DELETE("/sprints/:sid", sprintHandler.DeleteSprint)
		project.POST("/sprints/:sid/add-items", sprintHandler.AddItems)
		project.POST("/sprints/:sid/remove-items", sprintHandler.RemoveItems)
		project.POST("/sprints/:sid/end-sprint", sprintHandler.EndSprint)
		project.GET("/sprints/:sid/tasks", taskHandler.ListSprintTasks)
		project.POST("/sprints/:sid/tasks", taskHandler.CreateTask)

		project.PATCH("/tasks/:tid", taskHandler.UpdateTask)
		project.DELETE("/tasks/:tid", taskHandler.DeleteTask)
	}

	return r
}
