package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ucpm/scrum-api/internal/logging"
	"github.com/ucpm/scrum-api/internal/metrics"
	"github.com/ucpm/scrum-api/internal/models"
	"github.com/ucpm/scrum-api/internal/policy"
	"github.com/ucpm/scrum-api/internal/repository"
	"github.com/ucpm/scrum-api/internal/utils"
)

var (
	ErrSprintNotFound        = notFoundError("sprint")
	ErrSprintCompleted       = alreadyCompletedError("the sprint is already completed")
	ErrSprintNameTaken       = conflictError("name", "a sprint with this name already exists in the project")
	ErrSprintDatesInverted   = validationError("end_date", "end date must be on or after the start date")
	ErrItemsRequired         = validationError("items", "items must be a list of backlog item ids")
	ErrTeamNotMembers        = validationError("team", "every team member must be a member of the project")
	ErrNoValidItems          = &Error{Kind: ErrValidation, Field: "items", Message: "no valid items to add", Details: map[string]interface{}{"updated": 0}}
	ErrEndSprintNotPermitted = permissionError("only the Scrum Master can end a sprint before its end date")
)

// SprintService runs the sprint lifecycle: planning, backlog assignment and closing.
type SprintService struct {
	sprintRepo  repository.SprintRepository
	backlogRepo repository.BacklogRepository
	projectRepo repository.ProjectRepository
	authority   *Authority
	clock       Clock
	metrics     *metrics.Metrics
}

// NewSprintService creates a new SprintService. m may be nil.
func NewSprintService(
	sprintRepo repository.SprintRepository,
	backlogRepo repository.BacklogRepository,
	projectRepo repository.ProjectRepository,
	authority *Authority,
	clock Clock,
	m *metrics.Metrics,
) *SprintService {
	return &SprintService{
		sprintRepo:  sprintRepo,
		backlogRepo: backlogRepo,
		projectRepo: projectRepo,
		authority:   authority,
		clock:       clock,
		metrics:     m,
	}
}

// Today returns the calendar day used to derive sprint state.
func (s *SprintService) Today() time.Time {
	return today(s.clock)
}

// CreateSprintInput represents input for creating a sprint
type CreateSprintInput struct {
	Name      string
	StartDate time.Time
	EndDate   time.Time
	Objective string
	Increment string
	Tech      string
	Team      []uint64
}

// Create plans a new sprint in the project.
func (s *SprintService) Create(project *models.Project, actorID uint64, input CreateSprintInput) (*models.Sprint, error) {
	if _, err := s.authority.Authorize(project.ID, actorID, policy.SprintCreate); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, validationError("name", "name is required")
	}

	start, end := utils.DateOf(input.StartDate), utils.DateOf(input.EndDate)
	if end.Before(start) {
		return nil, ErrSprintDatesInverted
	}

	if err := s.checkName(project.ID, name, 0); err != nil {
		return nil, err
	}

	team, err := s.checkTeam(project.ID, input.Team)
	if err != nil {
		return nil, err
	}

	sprint := &models.Sprint{
		ProjectID: project.ID,
		Name:      name,
		StartDate: start,
		EndDate:   end,
		Status:    models.SprintStatusPlanned,
		Objective: strings.TrimSpace(input.Objective),
		Increment: strings.TrimSpace(input.Increment),
		Tech:      strings.TrimSpace(input.Tech),
	}
	for _, userID := range team {
		sprint.Team = append(sprint.Team, models.SprintTeamMember{UserID: userID})
	}

	if err := s.sprintRepo.Create(sprint); err != nil {
		if isDuplicateKey(err) {
			return nil, ErrSprintNameTaken
		}
		return nil, fmt.Errorf("failed to create sprint: %w", err)
	}

	logging.Logger.WithFields(logrus.Fields{
		"project_id": project.ID,
		"sprint_id":  sprint.ID,
		"actor_id":   actorID,
	}).Info("Sprint created")

	return sprint, nil
}

func (s *SprintService) checkName(projectID uint64, name string, excludeID uint64) error {
	taken, err := s.sprintRepo.NameTaken(projectID, name, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check sprint name: %w", err)
	}
	if taken {
		return ErrSprintNameTaken
	}
	return nil
}

// checkTeam deduplicates the team and verifies everyone is a project member.
func (s *SprintService) checkTeam(projectID uint64, team []uint64) ([]uint64, error) {
	if len(team) == 0 {
		return []uint64{}, nil
	}

	seen := make(map[uint64]struct{}, len(team))
	unique := make([]uint64, 0, len(team))
	for _, id := range team {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	sort.Slice(unique, func(i, j int) bool { return unique[i] < unique[j] })

	count, err := s.projectRepo.CountMembersByIDs(projectID, unique)
	if err != nil {
		return nil, fmt.Errorf("failed to check team: %w", err)
	}
	if count != int64(len(unique)) {
		return nil, ErrTeamNotMembers
	}
	return unique, nil
}

// List returns the project's sprints, latest first. Non-members get an empty list.
func (s *SprintService) List(project *models.Project, userID uint64) ([]models.Sprint, error) {
	ok, err := s.authority.IsMember(project.ID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []models.Sprint{}, nil
	}

	sprints, err := s.sprintRepo.ListByProject(project.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sprints: %w", err)
	}
	return sprints, nil
}

// Get returns one sprint of the project.
func (s *SprintService) Get(project *models.Project, userID, sprintID uint64) (*models.Sprint, error) {
	if err := s.authority.requireVisible(project.ID, userID); err != nil {
		return nil, err
	}
	return s.find(project.ID, sprintID)
}

func (s *SprintService) find(projectID, sprintID uint64) (*models.Sprint, error) {
	sprint, err := s.sprintRepo.FindByID(sprintID)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, ErrSprintNotFound
		}
		return nil, fmt.Errorf("failed to find sprint: %w", err)
	}
	if sprint.ProjectID != projectID {
		return nil, ErrSprintNotFound
	}
	return sprint, nil
}

// ListActive returns the sprints running today that the caller can see:
// those without a team, and those whose team includes the caller.
// Non-members get an empty list.
func (s *SprintService) ListActive(project *models.Project, userID uint64) ([]models.Sprint, error) {
	ok, err := s.authority.IsMember(project.ID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []models.Sprint{}, nil
	}

	sprints, err := s.sprintRepo.ListActive(project.ID, userID, s.Today())
	if err != nil {
		return nil, fmt.Errorf("failed to list active sprints: %w", err)
	}
	return sprints, nil
}

// UpdateSprintInput holds the fields to change. Nil fields are left alone;
// a non-nil Team replaces the whole team.
type UpdateSprintInput struct {
	Name      *string
	StartDate *time.Time
	EndDate   *time.Time
	Objective *string
	Increment *string
	Tech      *string
	Team      *[]uint64
}

// Update changes a sprint. Completed sprints keep their dates and team.
func (s *SprintService) Update(project *models.Project, actorID, sprintID uint64, input UpdateSprintInput) (*models.Sprint, error) {
	if _, err := s.authority.Authorize(project.ID, actorID, policy.SprintUpdate); err != nil {
		return nil, err
	}

	sprint, err := s.find(project.ID, sprintID)
	if err != nil {
		return nil, err
	}

	if sprint.IsCompleted() && (input.StartDate != nil || input.EndDate != nil || input.Team != nil) {
		return nil, ErrSprintCompleted
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, validationError("name", "name cannot be empty")
		}
		if err := s.checkName(project.ID, name, sprint.ID); err != nil {
			return nil, err
		}
		sprint.Name = name
	}
	if input.StartDate != nil {
		sprint.StartDate = utils.DateOf(*input.StartDate)
	}
	if input.EndDate != nil {
		sprint.EndDate = utils.DateOf(*input.EndDate)
	}
	if sprint.EndDate.Before(sprint.StartDate) {
		return nil, ErrSprintDatesInverted
	}
	if input.Objective != nil {
		sprint.Objective = strings.TrimSpace(*input.Objective)
	}
	if input.Increment != nil {
		sprint.Increment = strings.TrimSpace(*input.Increment)
	}
	if input.Tech != nil {
		sprint.Tech = strings.TrimSpace(*input.Tech)
	}

	var team []uint64
	if input.Team != nil {
		if team, err = s.checkTeam(project.ID, *input.Team); err != nil {
			return nil, err
		}
	}

	if err := s.sprintRepo.Update(sprint, team); err != nil {
		if isDuplicateKey(err) {
			return nil, ErrSprintNameTaken
		}
		return nil, fmt.Errorf("failed to update sprint: %w", err)
	}

	return sprint, nil
}

// Delete removes a sprint. Its items return to the backlog and its tasks are deleted.
func (s *SprintService) Delete(project *models.Project, actorID, sprintID uint64) error {
	if _, err := s.authority.Authorize(project.ID, actorID, policy.SprintDelete); err != nil {
		return err
	}

	if _, err := s.find(project.ID, sprintID); err != nil {
		return err
	}

	if err := s.sprintRepo.Delete(sprintID); err != nil {
		return fmt.Errorf("failed to delete sprint: %w", err)
	}

	logging.Logger.WithFields(logrus.Fields{
		"project_id": project.ID,
		"sprint_id":  sprintID,
		"actor_id":   actorID,
	}).Info("Sprint deleted")

	return nil
}

// AddItems links unassigned backlog items of the project to the sprint and
// returns how many were linked. Items that are missing, belong to another
// project or are already in a sprint are skipped; if none remain the call
// fails with ErrNoValidItems and nothing changes.
func (s *SprintService) AddItems(project *models.Project, actorID, sprintID uint64, itemIDs []uint64) (int64, error) {
	if _, err := s.authority.Authorize(project.ID, actorID, policy.SprintAddItems); err != nil {
		return 0, err
	}
	if itemIDs == nil {
		return 0, ErrItemsRequired
	}

	sprint, err := s.find(project.ID, sprintID)
	if err != nil {
		return 0, err
	}
	if sprint.IsCompleted() {
		return 0, ErrSprintCompleted
	}

	updated, err := s.backlogRepo.AssignToSprint(project.ID, sprint.ID, itemIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to add items to sprint: %w", err)
	}
	if updated == 0 {
		return 0, ErrNoValidItems
	}

	s.metrics.AddSprintItemsAssigned(updated)
	logging.Logger.WithFields(logrus.Fields{
		"project_id": project.ID,
		"sprint_id":  sprint.ID,
		"requested":  len(itemIDs),
		"updated":    updated,
	}).Info("Backlog items added to sprint")

	return updated, nil
}

// RemoveItems returns the given items of the sprint to the backlog.
func (s *SprintService) RemoveItems(project *models.Project, actorID, sprintID uint64, itemIDs []uint64) (int64, error) {
	if _, err := s.authority.Authorize(project.ID, actorID, policy.SprintRemoveItems); err != nil {
		return 0, err
	}
	if itemIDs == nil {
		return 0, ErrItemsRequired
	}

	sprint, err := s.find(project.ID, sprintID)
	if err != nil {
		return 0, err
	}
	if sprint.IsCompleted() {
		return 0, ErrSprintCompleted
	}

	updated, err := s.backlogRepo.UnassignFromSprint(sprint.ID, itemIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to remove items from sprint: %w", err)
	}

	logging.Logger.WithFields(logrus.Fields{
		"project_id": project.ID,
		"sprint_id":  sprint.ID,
		"updated":    updated,
	}).Info("Backlog items removed from sprint")

	return updated, nil
}

// End completes the sprint and returns its items to the backlog. The Scrum
// Master may end a sprint at any time; any other member only once today is
// past the end date.
func (s *SprintService) End(project *models.Project, actorID, sprintID uint64) (*models.Sprint, error) {
	sprint, err := s.find(project.ID, sprintID)
	if err != nil {
		return nil, err
	}

	if err := s.authorizeEnd(project.ID, actorID, sprint); err != nil {
		return nil, err
	}
	if sprint.IsCompleted() {
		return nil, ErrSprintCompleted
	}

	detached, err := s.sprintRepo.Complete(sprint.ID)
	if err != nil {
		if errors.Is(err, repository.ErrSprintAlreadyCompleted) {
			return nil, ErrSprintCompleted
		}
		return nil, fmt.Errorf("failed to end sprint: %w", err)
	}
	sprint.Status = models.SprintStatusCompleted

	s.metrics.IncSprintsCompleted()
	logging.Logger.WithFields(logrus.Fields{
		"project_id": project.ID,
		"sprint_id":  sprint.ID,
		"actor_id":   actorID,
		"detached":   detached,
	}).Info("Sprint ended")

	return sprint, nil
}

func (s *SprintService) authorizeEnd(projectID, actorID uint64, sprint *models.Sprint) error {
	_, err := s.authority.Authorize(projectID, actorID, policy.SprintEnd)
	if err == nil || !errors.Is(err, ErrPermission) {
		return err
	}

	member, merr := s.authority.IsMember(projectID, actorID)
	if merr != nil {
		return merr
	}
	if member && s.Today().After(sprint.EndDate) {
		return nil
	}
	if member {
		return ErrEndSprintNotPermitted
	}
	return err
}
