package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ucpm/scrum-api/internal/dto"
	apierrors "github.com/ucpm/scrum-api/internal/errors"
	"github.com/ucpm/scrum-api/internal/models"
	"github.com/ucpm/scrum-api/internal/services"
)

// BacklogHandler serves the product backlog.
type BacklogHandler struct {
	backlogService *services.BacklogService
}

func NewBacklogHandler(backlogService *services.BacklogService) *BacklogHandler {
	return &BacklogHandler{backlogService: backlogService}
}

// ListItems returns the backlog sorted by priority.
// ?sprint=<id> keeps one sprint's items, ?sprint=none the unassigned ones.
func (h *BacklogHandler) ListItems(c *gin.Context) {
	project, userID, ok := projectScope(c)
	if !ok {
		return
	}

	var input services.ListItemsInput
	switch sprint := c.Query("sprint"); sprint {
	case "":
	case "none", "null":
		input.Unassigned = true
	default:
		id, err := strconv.ParseUint(sprint, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid sprint filter")
			return
		}
		input.SprintID = &id
	}

	items, err := h.backlogService.List(project, userID, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToBacklogItemDTOs(items))
}

type createItemRequest struct {
	UserStory   uint64          `json:"user_story" binding:"required"`
	Title       string          `json:"title" binding:"required,max=200"`
	Description string          `json:"description"`
	Priority    models.Priority `json:"priority"`
	Sprint      *uint64         `json:"sprint"`
}

func (h *BacklogHandler) CreateItem(c *gin.Context) {
	project, userID, ok := projectScope(c)
	if !ok {
		return
	}

	var req createItemRequest
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.backlogService.Create(project, userID, services.CreateItemInput{
		UserStoryID: req.UserStory,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		SprintID:    req.Sprint,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToBacklogItemDTO(*item))
}

func (h *BacklogHandler) GetItem(c *gin.Context) {
	project, userID, ok := projectScope(c)
	if !ok {
		return
	}
	itemID, ok := idParam(c, "bid", "backlog item")
	if !ok {
		return
	}

	item, err := h.backlogService.Get(project, userID, itemID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToBacklogItemDTO(*item))
}

type updateItemRequest struct {
	UserStory   *uint64          `json:"user_story"`
	Title       *string          `json:"title" binding:"omitempty,max=200"`
	Description *string          `json:"description"`
	Priority    *models.Priority `json:"priority"`
	Sprint      dto.NullableID   `json:"sprint"`
}

// UpdateItem serves both PUT and PATCH. "sprint": null moves the item back
// to the backlog; leaving the key out keeps its sprint.
func (h *BacklogHandler) UpdateItem(c *gin.Context) {
	project, userID, ok := projectScope(c)
	if !ok {
		return
	}
	itemID, ok := idParam(c, "bid", "backlog item")
	if !ok {
		return
	}

	var req updateItemRequest
	if !bindJSON(c, &req) {
		return
	}
	if c.Request.Method == http.MethodPut && (req.Title == nil || req.UserStory == nil) {
		apierrors.BadRequestWithDetails(c, "Invalid request body", map[string]string{
			"title":      "This field is required.",
			"user_story": "This field is required.",
		})
		return
	}

	item, err := h.backlogService.Update(project, userID, itemID, services.UpdateItemInput{
		UserStoryID: req.UserStory,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		SprintSet:   req.Sprint.Set,
		SprintID:    req.Sprint.Value,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToBacklogItemDTO(*item))
}

func (h *BacklogHandler) DeleteItem(c *gin.Context) {
	project, userID, ok := projectScope(c)
	if !ok {
		return
	}
	itemID, ok := idParam(c, "bid", "backlog item")
	if !ok {
		return
	}

	if err := h.backlogService.Delete(project, userID, itemID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
