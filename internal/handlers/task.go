package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ucpm/scrum-api/internal/dto"
	"github.com/ucpm/scrum-api/internal/models"
	"github.com/ucpm/scrum-api/internal/services"
	"github.com/ucpm/scrum-api/internal/utils"
)

// TaskHandler serves sprint tasks and the caller's task list.
type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// ListMyTasks returns the tasks assigned to the current user, across projects.
// Supports ?status= and ?page= / ?limit=.
func (h *TaskHandler) ListMyTasks(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	input := services.ListMyTasksInput{
		UserID:     userID,
		Pagination: utils.GetPaginationParams(c),
	}
	if status := c.Query("status"); status != "" {
		s := models.TaskStatus(status)
		input.Status = &s
	}

	tasks, total, err := h.taskService.ListMine(input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TaskListResponse{
		Tasks:      dto.ToTaskDTOs(tasks),
		Pagination: utils.NewPaginationResponse(input.Pagination, total),
	})
}

func (h *TaskHandler) ListSprintTasks(c *gin.Context) {
	project, userID, ok := projectScope(c)
	if !ok {
		return
	}
	sprintID, ok := idParam(c, "sid", "sprint")
	if !ok {
		return
	}

	tasks, err := h.taskService.ListSprintTasks(project, userID, sprintID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTOs(tasks))
}

type createTaskRequest struct {
	BacklogItem uint64            `json:"backlog_item" binding:"required"`
	Description string            `json:"description" binding:"required"`
	Status      models.TaskStatus `json:"status"`
	AssignedTo  *uint64           `json:"assigned_to"`
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	project, userID, ok := projectScope(c)
	if !ok {
		return
	}
	sprintID, ok := idParam(c, "sid", "sprint")
	if !ok {
		return
	}

	var req createTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.taskService.Create(project, userID, sprintID, services.CreateTaskInput{
		BacklogItemID: req.BacklogItem,
		Description:   req.Description,
		Status:        req.Status,
		AssignedToID:  req.AssignedTo,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

type updateTaskRequest struct {
	Description *string            `json:"description"`
	Status      *models.TaskStatus `json:"status"`
	AssignedTo  dto.NullableID     `json:"assigned_to"`
}

// UpdateTask changes description, status or assignee. "assigned_to": null unassigns.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	project, userID, ok := projectScope(c)
	if !ok {
		return
	}
	taskID, ok := idParam(c, "tid", "task")
	if !ok {
		return
	}

	var req updateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.taskService.Update(project, userID, taskID, services.UpdateTaskInput{
		Description:  req.Description,
		Status:       req.Status,
		AssigneeSet:  req.AssignedTo.Set,
		AssignedToID: req.AssignedTo.Value,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	project, userID, ok := projectScope(c)
	if !ok {
		return
	}
	taskID, ok := idParam(c, "tid", "task")
	if !ok {
		return
	}

	if err := h.taskService.Delete(project, userID, taskID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
