package handlers

import (
	"net/http"

	"github.com/ucpm/scrum-api/internal/dto"
	apierrors "github.com/ucpm/scrum-api/internal/errors"
	"github.com/ucpm/scrum-api/internal/models"
	"github.com/ucpm/scrum-api/internal/services"
)

func (suite *HandlerTestSuite) createTask(sprint *models.Sprint, item *models.ProductBacklogItem, assignee *models.User, status models.TaskStatus) *models.Task {
	input := services.CreateTaskInput{
		BacklogItemID: item.ID,
		Description:   "Write the " + item.Title + " endpoint",
		Status:        status,
	}
	if assignee != nil {
		input.AssignedToID = &assignee.ID
	}
	task, err := suite.tasks.Create(suite.project, suite.dev.ID, sprint.ID, input)
	suite.Require().NoError(err)
	return task
}

func (suite *HandlerTestSuite) TestCreateTask() {
	sprint := suite.createSprint("Sprint 1", date(2025, 11, 10), date(2025, 11, 21))
	item := suite.createItem("Cart", models.PriorityHigh)

	w := suite.request(http.MethodPost, suite.projectPath("/sprints/%d/tasks/", sprint.ID), suite.dev, map[string]interface{}{
		"backlog_item": item.ID,
		"description":  "Build the cart API",
		"assigned_to":  suite.dev.ID,
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var task dto.TaskDTO
	suite.decode(w, &task)
	suite.Equal(sprint.ID, task.SprintID)
	suite.Equal(item.ID, task.BacklogItemID)
	suite.Equal(models.TaskStatusTodo, task.Status)
	suite.Require().NotNil(task.AssignedTo)
	suite.Equal("developer", task.AssignedTo.Username)
	suite.Require().NotNil(task.CreatedBy)
	suite.Equal(suite.dev.ID, task.CreatedBy.ID)
}

func (suite *HandlerTestSuite) TestCreateTask_Validation() {
	sprint := suite.createSprint("Sprint 1", date(2025, 11, 10), date(2025, 11, 21))
	item := suite.createItem("Cart", models.PriorityHigh)

	cases := []struct {
		name  string
		body  map[string]interface{}
		field string
	}{
		{"missing description", map[string]interface{}{"backlog_item": item.ID}, "description"},
		{"blank description", map[string]interface{}{"backlog_item": item.ID, "description": "   "}, "description"},
		{"bad status", map[string]interface{}{"backlog_item": item.ID, "description": "x", "status": "BLOCKED"}, "status"},
		{"unknown item", map[string]interface{}{"backlog_item": 9999, "description": "x"}, "backlog_item"},
		{"assignee outside project", map[string]interface{}{"backlog_item": item.ID, "description": "x", "assigned_to": suite.outsider.ID}, "assigned_to"},
	}

	for _, tc := range cases {
		suite.Run(tc.name, func() {
			w := suite.request(http.MethodPost, suite.projectPath("/sprints/%d/tasks/", sprint.ID), suite.dev, tc.body)
			suite.Require().Equal(http.StatusBadRequest, w.Code, w.Body.String())

			var apiErr apierrors.APIError
			suite.decode(w, &apiErr)
			suite.Contains(apiErr.Details, tc.field)
		})
	}
}

func (suite *HandlerTestSuite) TestListSprintTasks() {
	sprint := suite.createSprint("Sprint 1", date(2025, 11, 10), date(2025, 11, 21))
	item := suite.createItem("Cart", models.PriorityHigh)
	suite.createTask(sprint, item, nil, models.TaskStatusTodo)
	suite.createTask(sprint, item, suite.dev, models.TaskStatusInProgress)

	w := suite.request(http.MethodGet, suite.projectPath("/sprints/%d/tasks/", sprint.ID), suite.po, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var tasks []dto.TaskDTO
	suite.decode(w, &tasks)
	suite.Len(tasks, 2)

	w = suite.request(http.MethodGet, suite.projectPath("/sprints/%d/tasks/", sprint.ID), suite.outsider, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.JSONEq("[]", w.Body.String())
}

func (suite *HandlerTestSuite) TestUpdateTask() {
	sprint := suite.createSprint("Sprint 1", date(2025, 11, 10), date(2025, 11, 21))
	item := suite.createItem("Cart", models.PriorityHigh)
	task := suite.createTask(sprint, item, suite.dev, models.TaskStatusTodo)

	w := suite.request(http.MethodPatch, suite.projectPath("/tasks/%d/", task.ID), suite.sm, map[string]interface{}{
		"status": "DONE",
	})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var updated dto.TaskDTO
	suite.decode(w, &updated)
	suite.Equal(models.TaskStatusDone, updated.Status)
	suite.Require().NotNil(updated.AssignedToID, "absent assigned_to leaves the assignee alone")

	w = suite.request(http.MethodPatch, suite.projectPath("/tasks/%d/", task.ID), suite.sm, []byte(`{"assigned_to": null}`))
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	updated = dto.TaskDTO{}
	suite.decode(w, &updated)
	suite.Nil(updated.AssignedToID)
	suite.Nil(updated.AssignedTo)

	w = suite.request(http.MethodPatch, suite.projectPath("/tasks/%d/", task.ID), suite.outsider, map[string]interface{}{
		"status": "TODO",
	})
	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *HandlerTestSuite) TestDeleteTask() {
	sprint := suite.createSprint("Sprint 1", date(2025, 11, 10), date(2025, 11, 21))
	item := suite.createItem("Cart", models.PriorityHigh)
	task := suite.createTask(sprint, item, nil, models.TaskStatusTodo)

	w := suite.request(http.MethodDelete, suite.projectPath("/tasks/%d/", task.ID), suite.dev, nil)
	suite.Require().Equal(http.StatusNoContent, w.Code)

	w = suite.request(http.MethodDelete, suite.projectPath("/tasks/%d/", task.ID), suite.dev, nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *HandlerTestSuite) TestListMyTasks() {
	sprint := suite.createSprint("Sprint 1", date(2025, 11, 10), date(2025, 11, 21))
	item := suite.createItem("Cart", models.PriorityHigh)
	for i := 0; i < 3; i++ {
		suite.createTask(sprint, item, suite.dev, models.TaskStatusTodo)
	}
	suite.createTask(sprint, item, suite.dev, models.TaskStatusDone)
	suite.createTask(sprint, item, suite.sm, models.TaskStatusTodo)

	w := suite.request(http.MethodGet, "/api/tasks/?page=1&limit=2", suite.dev, nil)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var response dto.TaskListResponse
	suite.decode(w, &response)
	suite.Len(response.Tasks, 2)
	suite.Equal(int64(4), response.Pagination.Total)
	suite.Equal(2, response.Pagination.TotalPages)

	w = suite.request(http.MethodGet, "/api/tasks/?status=DONE", suite.dev, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	response = dto.TaskListResponse{}
	suite.decode(w, &response)
	suite.Require().Len(response.Tasks, 1)
	suite.Equal(models.TaskStatusDone, response.Tasks[0].Status)

	w = suite.request(http.MethodGet, "/api/tasks/?status=NOPE", suite.dev, nil)
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.request(http.MethodGet, "/api/tasks/", nil, nil)
	suite.Equal(http.StatusUnauthorized, w.Code)
}
