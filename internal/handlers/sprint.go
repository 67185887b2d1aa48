package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ucpm/scrum-api/internal/dto"
	apierrors "github.com/ucpm/scrum-api/internal/errors"
	"github.com/ucpm/scrum-api/internal/services"
	"github.com/ucpm/scrum-api/internal/utils"
)

// SprintHandler serves the sprint lifecycle endpoints.
type SprintHandler struct {
	sprintService *services.SprintService
}

func NewSprintHandler(sprintService *services.SprintService) *SprintHandler {
	return &SprintHandler{sprintService: sprintService}
}

// parseDate reads a YYYY-MM-DD field, answering 400 on a malformed value.
func parseDate(c *gin.Context, field, value string) (time.Time, bool) {
	t, err := utils.ParseDate(value)
	if err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", map[string]string{
			field: "Date has wrong format. Use YYYY-MM-DD.",
		})
		return time.Time{}, false
	}
	return t, true
}

func (h *SprintHandler) ListSprints(c *gin.Context) {
	project, userID, ok := projectScope(c)
	if !ok {
		return
	}

	sprints, err := h.sprintService.List(project, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSprintDTOs(sprints, h.sprintService.Today()))
}

// ListActiveSprints returns the sprints running today that the caller can see
func (h *SprintHandler) ListActiveSprints(c *gin.Context) {
	project, userID, ok := projectScope(c)
	if !ok {
		return
	}

	sprints, err := h.sprintService.ListActive(project, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSprintDTOs(sprints, h.sprintService.Today()))
}

type createSprintRequest struct {
	Name      string   `json:"name" binding:"required,max=200"`
	StartDate string   `json:"start_date" binding:"required"`
	EndDate   string   `json:"end_date" binding:"required"`
	Objective string   `json:"objective"`
	Increment string   `json:"increment"`
	Tech      string   `json:"tech"`
	Team      []uint64 `json:"team"`
}

func (h *SprintHandler) CreateSprint(c *gin.Context) {
	project, userID, ok := projectScope(c)
	if !ok {
		return
	}

	var req createSprintRequest
	if !bindJSON(c, &req) {
		return
	}
	start, ok := parseDate(c, "start_date", req.StartDate)
	if !ok {
		return
	}
	end, ok := parseDate(c, "end_date", req.EndDate)
	if !ok {
		return
	}

	sprint, err := h.sprintService.Create(project, userID, services.CreateSprintInput{
		Name:      req.Name,
		StartDate: start,
		EndDate:   end,
		Objective: req.Objective,
		Increment: req.Increment,
		Tech:      req.Tech,
		Team:      req.Team,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToSprintDTO(*sprint, h.sprintService.Today()))
}

func (h *SprintHandler) GetSprint(c *gin.Context) {
	project, userID, ok := projectScope(c)
	if !ok {
		return
	}
	sprintID, ok := idParam(c, "sid", "sprint")
	if !ok {
		return
	}

	sprint, err := h.sprintService.Get(project, userID, sprintID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSprintDTO(*sprint, h.sprintService.Today()))
}

type updateSprintRequest struct {
	Name      *string   `json:"name" binding:"omitempty,max=200"`
	StartDate *string   `json:"start_date"`
	EndDate   *string   `json:"end_date"`
	Objective *string   `json:"objective"`
	Increment *string   `json:"increment"`
	Tech      *string   `json:"tech"`
	Team      *[]uint64 `json:"team"`
}

func (h *SprintHandler) UpdateSprint(c *gin.Context) {
	project, userID, ok := projectScope(c)
	if !ok {
		return
	}
	sprintID, ok := idParam(c, "sid", "sprint")
	if !ok {
		return
	}

	var req updateSprintRequest
	if !bindJSON(c, &req) {
		return
	}

	input := services.UpdateSprintInput{
		Name:      req.Name,
		Objective: req.Objective,
		Increment: req.Increment,
		Tech:      req.Tech,
		Team:      req.Team,
	}
	if req.StartDate != nil {
		start, ok := parseDate(c, "start_date", *req.StartDate)
		if !ok {
			return
		}
		input.StartDate = &start
	}
	if req.EndDate != nil {
		end, ok := parseDate(c, "end_date", *req.EndDate)
		if !ok {
			return
		}
		input.EndDate = &end
	}

	sprint, err := h.sprintService.Update(project, userID, sprintID, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSprintDTO(*sprint, h.sprintService.Today()))
}

func (h *SprintHandler) DeleteSprint(c *gin.Context) {
	project, userID, ok := projectScope(c)
	if !ok {
		return
	}
	sprintID, ok := idParam(c, "sid", "sprint")
	if !ok {
		return
	}

	if err := h.sprintService.Delete(project, userID, sprintID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

type sprintItemsRequest struct {
	Items json.RawMessage `json:"items"`
}

// bindItems reads {"items": [ids]}. A body that is not a list of ids yields
// nil, which the service rejects once the caller's permission is checked.
func bindItems(c *gin.Context) []uint64 {
	var req sprintItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Items) == 0 {
		return nil
	}

	var ids []uint64
	if err := json.Unmarshal(req.Items, &ids); err != nil {
		return nil
	}
	return ids
}

// AddItems links backlog items to the sprint
func (h *SprintHandler) AddItems(c *gin.Context) {
	project, userID, ok := projectScope(c)
	if !ok {
		return
	}
	sprintID, ok := idParam(c, "sid", "sprint")
	if !ok {
		return
	}
	ids := bindItems(c)

	updated, err := h.sprintService.AddItems(project, userID, sprintID, ids)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ItemsUpdatedResponse{Updated: updated})
}

// RemoveItems returns backlog items of the sprint to the backlog
func (h *SprintHandler) RemoveItems(c *gin.Context) {
	project, userID, ok := projectScope(c)
	if !ok {
		return
	}
	sprintID, ok := idParam(c, "sid", "sprint")
	if !ok {
		return
	}
	ids := bindItems(c)

	updated, err := h.sprintService.RemoveItems(project, userID, sprintID, ids)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ItemsUpdatedResponse{Updated: updated})
}

// EndSprint completes the sprint
func (h *SprintHandler) EndSprint(c *gin.Context) {
	project, userID, ok := projectScope(c)
	if !ok {
		return
	}
	sprintID, ok := idParam(c, "sid", "sprint")
	if !ok {
		return
	}

	sprint, err := h.sprintService.End(project, userID, sprintID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSprintDTO(*sprint, h.sprintService.Today()))
}
