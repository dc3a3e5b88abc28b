package domain

import (
	"time"

	"github.com/google/uuid"
)

// ProjectStatus represents the status of a project
type ProjectStatus string

const (
	ProjectStatusActive   ProjectStatus = "ACTIVE"
	ProjectStatusOnHold   ProjectStatus = "ON_HOLD"
	ProjectStatusArchived ProjectStatus = "ARCHIVED"
)

// Project represents an IT project with an assigned member set. Ownership
// grants no extra rights on projects; authorization is rank-based only.
type Project struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Status      ProjectStatus `json:"status"`
	CreatedBy   string        `json:"created_by"`
	MemberIDs   []string      `json:"member_ids"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// NewProject creates a new active project
func NewProject(name, description, createdBy string) *Project {
	now := time.Now()
	return &Project{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Status:      ProjectStatusActive,
		CreatedBy:   createdBy,
		MemberIDs:   []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// HasMember reports whether a user is part of the project.
func (p *Project) HasMember(userID string) bool {
	for _, id := range p.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// AddMember adds a user to the project member set.
func (p *Project) AddMember(userID string) error {
	if p.Status == ProjectStatusArchived {
		return ErrProjectArchived
	}
	if p.HasMember(userID) {
		return ErrAlreadyMember
	}
	p.MemberIDs = append(p.MemberIDs, userID)
	p.UpdatedAt = time.Now()
	return nil
}

// RemoveMember removes a user from the project member set.
func (p *Project) RemoveMember(userID string) error {
	if p.Status == ProjectStatusArchived {
		return ErrProjectArchived
	}
	for i, id := range p.MemberIDs {
		if id == userID {
			p.MemberIDs = append(p.MemberIDs[:i], p.MemberIDs[i+1:]...)
			p.UpdatedAt = time.Now()
			return nil
		}
	}
	return ErrNotMember
}

// ProjectFilter represents filters for listing projects
type ProjectFilter struct {
	Status    *ProjectStatus `json:"status,omitempty"`
	CreatedBy *string        `json:"created_by,omitempty"`
	MemberID  *string        `json:"member_id,omitempty"`
	Limit     int            `json:"limit"`
	Offset    int            `json:"offset"`
}

// Custom errors
var (
	ErrProjectNotFound = NewDomainError("project not found")
	ErrProjectArchived = NewDomainError("cannot modify archived project")
	ErrAlreadyMember   = NewDomainError("user is already a project member")
	ErrNotMember       = NewDomainError("user is not a project member")
)
