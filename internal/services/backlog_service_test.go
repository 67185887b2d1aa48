package services

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/ucpm/scrum-api/internal/models"
)

type BacklogServiceTestSuite struct {
	serviceSuite
}

func TestBacklogServiceTestSuite(t *testing.T) {
	suite.Run(t, new(BacklogServiceTestSuite))
}

func (s *BacklogServiceTestSuite) TestList_OrderedByPriority() {
	project, po, _, dev := s.createProject("alpha")
	story := s.createStory(project, po)
	low := s.createItem(project, po, story, "low", models.PriorityLow)
	high := s.createItem(project, po, story, "high", models.PriorityHigh)
	medium := s.createItem(project, po, story, "medium", models.PriorityMedium)

	items, err := s.backlog.List(project, dev.ID, ListItemsInput{})
	s.Require().NoError(err)
	s.Require().Len(items, 3)
	s.Equal([]uint64{high.ID, medium.ID, low.ID}, []uint64{items[0].ID, items[1].ID, items[2].ID})
}

func (s *BacklogServiceTestSuite) TestList_NonMemberGetsEmptyList() {
	project, po, _, _ := s.createProject("alpha")
	s.createItem(project, po, s.createStory(project, po), "a", models.PriorityLow)
	outsider := s.createUser("outsider")

	items, err := s.backlog.List(project, outsider.ID, ListItemsInput{})
	s.NoError(err)
	s.Empty(items)
}

func (s *BacklogServiceTestSuite) TestList_SprintFilter() {
	project, po, sm, _ := s.createProject("alpha")
	story := s.createStory(project, po)
	in := s.createItem(project, po, story, "in", models.PriorityLow)
	out := s.createItem(project, po, story, "out", models.PriorityLow)
	sprint := s.createSprint(project, sm, "Sprint 1", date(2025, 11, 10), date(2025, 11, 20))
	_, err := s.sprints.AddItems(project, sm.ID, sprint.ID, []uint64{in.ID})
	s.Require().NoError(err)

	items, err := s.backlog.List(project, po.ID, ListItemsInput{SprintID: &sprint.ID})
	s.Require().NoError(err)
	s.Require().Len(items, 1)
	s.Equal(in.ID, items[0].ID)

	items, err = s.backlog.List(project, po.ID, ListItemsInput{Unassigned: true})
	s.Require().NoError(err)
	s.Require().Len(items, 1)
	s.Equal(out.ID, items[0].ID)
}

func (s *BacklogServiceTestSuite) TestCreate_Validation() {
	project, po, sm, _ := s.createProject("alpha")
	story := s.createStory(project, po)
	other, otherPO, _, _ := s.createProject("beta")
	foreignStory := s.createStory(other, otherPO)

	item, err := s.backlog.Create(project, po.ID, CreateItemInput{UserStoryID: story.ID, Title: "defaults"})
	s.Require().NoError(err)
	s.Equal(models.PriorityMedium, item.Priority)

	_, err = s.backlog.Create(project, po.ID, CreateItemInput{UserStoryID: foreignStory.ID, Title: "x"})
	s.ErrorIs(err, ErrValidation)

	_, err = s.backlog.Create(project, po.ID, CreateItemInput{UserStoryID: story.ID, Title: "x", Priority: "URGENT"})
	s.ErrorIs(err, ErrValidation)

	_, err = s.backlog.Create(project, sm.ID, CreateItemInput{UserStoryID: story.ID, Title: "x"})
	s.ErrorIs(err, ErrPermission)
}

func (s *BacklogServiceTestSuite) TestCreate_SprintChecks() {
	project, po, sm, _ := s.createProject("alpha")
	story := s.createStory(project, po)
	other, _, otherSM, _ := s.createProject("beta")
	foreign := s.createSprint(other, otherSM, "Sprint 1", date(2025, 11, 10), date(2025, 11, 20))
	done := s.createSprint(project, sm, "Done", date(2025, 11, 1), date(2025, 11, 5))
	_, err := s.sprints.End(project, sm.ID, done.ID)
	s.Require().NoError(err)

	_, err = s.backlog.Create(project, po.ID, CreateItemInput{UserStoryID: story.ID, Title: "x", SprintID: &foreign.ID})
	s.ErrorIs(err, ErrValidation)

	_, err = s.backlog.Create(project, po.ID, CreateItemInput{UserStoryID: story.ID, Title: "x", SprintID: &done.ID})
	s.ErrorIs(err, ErrAlreadyCompleted)
}

func (s *BacklogServiceTestSuite) TestUpdate_SprintTriState() {
	project, po, sm, _ := s.createProject("alpha")
	story := s.createStory(project, po)
	sprint := s.createSprint(project, sm, "Sprint 1", date(2025, 11, 10), date(2025, 11, 20))
	item, err := s.backlog.Create(project, po.ID, CreateItemInput{UserStoryID: story.ID, Title: "x", SprintID: &sprint.ID})
	s.Require().NoError(err)

	title := "renamed"
	updated, err := s.backlog.Update(project, po.ID, item.ID, UpdateItemInput{Title: &title})
	s.Require().NoError(err)
	s.Require().NotNil(updated.SprintID)
	s.Equal(sprint.ID, *updated.SprintID)

	updated, err = s.backlog.Update(project, po.ID, item.ID, UpdateItemInput{SprintSet: true})
	s.Require().NoError(err)
	s.Nil(updated.SprintID)
	s.Nil(s.reloadItem(item.ID).SprintID)
}

func (s *BacklogServiceTestSuite) TestDelete_RemovesTasks() {
	project, po, sm, dev := s.createProject("alpha")
	item := s.createItem(project, po, s.createStory(project, po), "x", models.PriorityHigh)
	sprint := s.createSprint(project, sm, "Sprint 1", date(2025, 11, 10), date(2025, 11, 20))
	_, err := s.tasks.Create(project, dev.ID, sprint.ID, CreateTaskInput{BacklogItemID: item.ID, Description: "do"})
	s.Require().NoError(err)

	s.Require().NoError(s.backlog.Delete(project, po.ID, item.ID))

	var tasks int64
	s.db.Model(&models.Task{}).Count(&tasks)
	s.Zero(tasks)

	_, err = s.backlog.Get(project, po.ID, item.ID)
	s.ErrorIs(err, ErrNotFound)
}

func (s *BacklogServiceTestSuite) TestStories() {
	project, po, _, dev := s.createProject("alpha")

	_, err := s.stories.Create(project, po.ID, StoryInput{Title: "  ", Description: "d"})
	s.ErrorIs(err, ErrValidation)
	_, err = s.stories.Create(project, po.ID, StoryInput{Title: "t", Description: " "})
	s.ErrorIs(err, ErrValidation)
	_, err = s.stories.Create(project, dev.ID, StoryInput{Title: "t", Description: "d"})
	s.ErrorIs(err, ErrPermission)

	story, err := s.stories.Create(project, po.ID, StoryInput{Title: " Checkout ", Description: " pay "})
	s.Require().NoError(err)
	s.Equal("Checkout", story.Title)
	s.Equal("pay", story.Description)

	stories, err := s.stories.List(project, dev.ID)
	s.Require().NoError(err)
	s.Len(stories, 1)

	s.createItem(project, po, story, "child", models.PriorityHigh)
	s.Require().NoError(s.stories.Delete(project, po.ID, story.ID))

	var items int64
	s.db.Model(&models.ProductBacklogItem{}).Count(&items)
	s.Zero(items)
}
