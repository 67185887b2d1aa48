package dto

import (
	"time"

	"github.com/ucpm/scrum-api/internal/models"
	"github.com/ucpm/scrum-api/internal/policy"
	"github.com/ucpm/scrum-api/internal/services"
)

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	ID          uint64               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	OwnerID     uint64               `json:"owner_id"`
	Owner       *UserSummaryDTO      `json:"owner,omitempty"`
	Status      models.ProjectStatus `json:"status"`
	ConcludedAt *time.Time           `json:"concluded_at"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
	Role        models.Role          `json:"role,omitempty"`
}

// MemberDTO represents a project membership
type MemberDTO struct {
	UserID      uint64      `json:"user_id"`
	Username    string      `json:"username"`
	Email       string      `json:"email"`
	Role        models.Role `json:"role"`
	RoleDisplay string      `json:"role_display"`
	JoinedAt    time.Time   `json:"joined_at"`
}

// ProjectDetailDTO represents a project with its members
type ProjectDetailDTO struct {
	ProjectDTO
	Members      []MemberDTO        `json:"members"`
	Capabilities []policy.Operation `json:"capabilities"`
}

// ToProjectDTO converts a Project model to ProjectDTO
func ToProjectDTO(project models.Project, role models.Role) ProjectDTO {
	return ProjectDTO{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		OwnerID:     project.OwnerID,
		Owner:       ToUserSummaryDTO(&project.Owner),
		Status:      project.Status,
		ConcludedAt: project.ConcludedAt,
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
		Role:        role,
	}
}

// ToProjectDTOs converts list summaries
func ToProjectDTOs(summaries []services.ProjectSummary) []ProjectDTO {
	out := make([]ProjectDTO, len(summaries))
	for i, s := range summaries {
		out[i] = ToProjectDTO(s.Project, s.Role)
	}
	return out
}

// ToMemberDTO converts a membership with its user preloaded
func ToMemberDTO(member models.ProjectMembership) MemberDTO {
	return MemberDTO{
		UserID:      member.UserID,
		Username:    member.User.Username,
		Email:       member.User.Email,
		Role:        member.Role,
		RoleDisplay: member.Role.DisplayName(),
		JoinedAt:    member.JoinedAt,
	}
}

// ToProjectDetailDTO converts a project detail
func ToProjectDetailDTO(detail services.ProjectDetail) ProjectDetailDTO {
	members := make([]MemberDTO, len(detail.Members))
	for i, m := range detail.Members {
		members[i] = ToMemberDTO(m)
	}
	return ProjectDetailDTO{
		ProjectDTO:   ToProjectDTO(detail.Project, detail.Role),
		Members:      members,
		Capabilities: detail.Capabilities.List(),
	}
}
