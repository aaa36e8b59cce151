package project

import (
	"time"

	"github.com/oklog/ulid/v2"
)

type Status string

const (
	Active    Status = "active"
	Funded    Status = "funded"
	Completed Status = "completed"
)

func (s Status) IsValid() bool {
	switch s {
	case Active, Funded, Completed:
		return true
	}
	return false
}

// Project e o alvo de arrecadacao. FundingTotal so cresce e e alterado apenas
// pelo incremento atomico do ledger.
type Project struct {
	Id           ulid.ULID  `json:"id"`
	OwnerId      ulid.ULID  `json:"ownerId"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	FundingGoal  int64      `json:"fundingGoal"`
	FundingTotal int64      `json:"fundingTotal"`
	Status       Status     `json:"status"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// AcceptsDonations: so projetos active abrem checkout.
func (p *Project) AcceptsDonations() bool {
	return p.Status == Active
}

func (p *Project) Remaining() int64 {
	remaining := p.FundingGoal - p.FundingTotal
	if remaining < 0 {
		return 0
	}
	return remaining
}

type Progress struct {
	ProjectId    ulid.ULID `json:"projectId"`
	Title        string    `json:"title"`
	FundingGoal  int64     `json:"fundingGoal"`
	FundingTotal int64     `json:"fundingTotal"`
	Remaining    int64     `json:"remaining"`
	Percentage   float64   `json:"percentage"`
	Status       Status    `json:"status"`
}

type CreateRequest struct {
	OwnerId     ulid.ULID
	Title       string
	Description string
	FundingGoal int64
}

type UpdateRequest struct {
	Id          ulid.ULID
	OwnerId     ulid.ULID
	Title       *string
	Description *string
	FundingGoal *int64
}
