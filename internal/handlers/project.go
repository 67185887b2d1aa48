package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ucpm/scrum-api/internal/dto"
	"github.com/ucpm/scrum-api/internal/models"
	"github.com/ucpm/scrum-api/internal/services"
)

// ProjectHandler serves projects and their memberships.
type ProjectHandler struct {
	projectService *services.ProjectService
}

func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

// ListProjects returns the caller's projects with the caller's role in each
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	summaries, err := h.projectService.List(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTOs(summaries))
}

type createProjectRequest struct {
	Name        string `json:"name" binding:"required,max=200"`
	Description string `json:"description"`
}

// CreateProject creates a project owned by the caller
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req createProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.projectService.Create(userID, services.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProjectDTO(*project, models.RoleProductOwner))
}

// GetProject returns a project with its members
func (h *ProjectHandler) GetProject(c *gin.Context) {
	project, userID, ok := projectScope(c)
	if !ok {
		return
	}

	detail, err := h.projectService.Get(project, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDetailDTO(*detail))
}

type updateProjectRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=200"`
	Description *string `json:"description"`
}

// UpdateProject changes the project's name or description
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	project, userID, ok := projectScope(c)
	if !ok {
		return
	}

	var req updateProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	updated, err := h.projectService.Update(project, userID, services.UpdateProjectInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*updated, models.RoleProductOwner))
}

// CloseProject concludes the project
func (h *ProjectHandler) CloseProject(c *gin.Context) {
	project, userID, ok := projectScope(c)
	if !ok {
		return
	}

	closed, err := h.projectService.Close(project, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*closed, models.RoleProductOwner))
}

// DeleteProject removes the project and everything in it
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	project, userID, ok := projectScope(c)
	if !ok {
		return
	}

	if err := h.projectService.Delete(project, userID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

type addMemberRequest struct {
	Email string      `json:"email" binding:"required"`
	Role  models.Role `json:"role" binding:"required"`
}

// AddMember adds a user by email with the given role
func (h *ProjectHandler) AddMember(c *gin.Context) {
	project, userID, ok := projectScope(c)
	if !ok {
		return
	}

	var req addMemberRequest
	if !bindJSON(c, &req) {
		return
	}

	member, err := h.projectService.AddMember(project, userID, services.AddMemberInput{
		Email: req.Email,
		Role:  req.Role,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToMemberDTO(*member))
}

type inviteRequest struct {
	Username string `json:"username" binding:"required"`
}

// Invite adds a user, by username or email, as a Developer
func (h *ProjectHandler) Invite(c *gin.Context) {
	project, userID, ok := projectScope(c)
	if !ok {
		return
	}

	var req inviteRequest
	if !bindJSON(c, &req) {
		return
	}

	member, err := h.projectService.Invite(project, userID, req.Username)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToMemberDTO(*member))
}

type removeMemberRequest struct {
	UserID uint64 `json:"user_id" binding:"required"`
}

// RemoveMember removes a user from the project
func (h *ProjectHandler) RemoveMember(c *gin.Context) {
	project, userID, ok := projectScope(c)
	if !ok {
		return
	}

	var req removeMemberRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.projectService.RemoveMember(project, userID, req.UserID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
