package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ucpm/scrum-api/internal/dto"
	apierrors "github.com/ucpm/scrum-api/internal/errors"
	"github.com/ucpm/scrum-api/internal/services"
)

type StoryHandler struct {
	storyService *services.StoryService
}

func NewStoryHandler(storyService *services.StoryService) *StoryHandler {
	return &StoryHandler{storyService: storyService}
}

func (h *StoryHandler) ListStories(c *gin.Context) {
	project, userID, ok := projectScope(c)
	if !ok {
		return
	}

	stories, err := h.storyService.List(project, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserStoryDTOs(stories))
}

type createStoryRequest struct {
	Title              string `json:"title" binding:"required,max=200"`
	Description        string `json:"description" binding:"required"`
	AcceptanceCriteria string `json:"acceptance_criteria"`
}

func (h *StoryHandler) CreateStory(c *gin.Context) {
	project, userID, ok := projectScope(c)
	if !ok {
		return
	}

	var req createStoryRequest
	if !bindJSON(c, &req) {
		return
	}

	story, err := h.storyService.Create(project, userID, services.StoryInput{
		Title:              req.Title,
		Description:        req.Description,
		AcceptanceCriteria: req.AcceptanceCriteria,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToUserStoryDTO(*story))
}

func (h *StoryHandler) GetStory(c *gin.Context) {
	project, userID, ok := projectScope(c)
	if !ok {
		return
	}
	storyID, ok := idParam(c, "sid", "user story")
	if !ok {
		return
	}

	story, err := h.storyService.Get(project, userID, storyID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserStoryDTO(*story))
}

type updateStoryRequest struct {
	Title              *string `json:"title" binding:"omitempty,max=200"`
	Description        *string `json:"description"`
	AcceptanceCriteria *string `json:"acceptance_criteria"`
}

// UpdateStory serves both PUT and PATCH. PUT must carry title and description.
func (h *StoryHandler) UpdateStory(c *gin.Context) {
	project, userID, ok := projectScope(c)
	if !ok {
		return
	}
	storyID, ok := idParam(c, "sid", "user story")
	if !ok {
		return
	}

	var req updateStoryRequest
	if !bindJSON(c, &req) {
		return
	}
	if c.Request.Method == http.MethodPut && (req.Title == nil || req.Description == nil) {
		apierrors.BadRequestWithDetails(c, "Invalid request body", map[string]string{
			"title":       "This field is required.",
			"description": "This field is required.",
		})
		return
	}

	story, err := h.storyService.Update(project, userID, storyID, services.UpdateStoryInput{
		Title:              req.Title,
		Description:        req.Description,
		AcceptanceCriteria: req.AcceptanceCriteria,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserStoryDTO(*story))
}

func (h *StoryHandler) DeleteStory(c *gin.Context) {
	project, userID, ok := projectScope(c)
	if !ok {
		return
	}
	storyID, ok := idParam(c, "sid", "user story")
	if !ok {
		return
	}

	if err := h.storyService.Delete(project, userID, storyID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
