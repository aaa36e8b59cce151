package contracts

import (
	"Wildfund/internal/domain/donation"
	"Wildfund/internal/domain/project"
)

type ProjectCreateRequest struct {
	Title       string `json:"title" binding:"required,max=150"`
	Description string `json:"description" binding:"omitempty,max=5000"`
	FundingGoal int64  `json:"funding_goal" binding:"required,gt=0"`
}

type ProjectUpdateRequest struct {
	Title       *string `json:"title" binding:"omitempty,max=150"`
	Description *string `json:"description" binding:"omitempty,max=5000"`
	FundingGoal *int64  `json:"funding_goal" binding:"omitempty,gt=0"`
}

type ProjectResponse struct {
	Project *project.Project `json:"project"`
}

type ProjectProgressResponse struct {
	Progress *project.Progress `json:"progress"`
}

type DonationListItem struct {
	*donation.Donation
	Anonymous bool `json:"anonymous"`
}
