package project

import (
	"context"

	"Wildfund/internal/pkg"

	"github.com/oklog/ulid/v2"
)

type Filters struct {
	Status  *Status
	OwnerId *ulid.ULID
}

type Repository interface {
	Create(ctx context.Context, project *Project) error
	GetByID(ctx context.Context, id ulid.ULID) (*Project, error)
	List(ctx context.Context, filters *Filters, pagination *pkg.PaginationParams) ([]*Project, int64, error)
	ListIDs(ctx context.Context) ([]ulid.ULID, error)
	UpdateFields(ctx context.Context, id ulid.ULID, fields map[string]interface{}) error
	// IncrementFunding soma amount ao total numa unica expressao (total = total + amount).
	IncrementFunding(ctx context.Context, id ulid.ULID, amount int64) error
	// UpdateStatus troca o estado apenas se o estado atual estiver em from.
	UpdateStatus(ctx context.Context, id ulid.ULID, to Status, from ...Status) (bool, error)
	// MarkFundedIfReached move active -> funded quando total >= meta, numa unica expressao.
	MarkFundedIfReached(ctx context.Context, id ulid.ULID) (bool, error)
	// UpdateGoal grava a nova meta e recalcula active/funded contra o total atual.
	UpdateGoal(ctx context.Context, id ulid.ULID, goal int64) (bool, error)
}

// StatusObserver recebe transicoes de estado ja persistidas.
type StatusObserver interface {
	ProjectStatusChanged(ctx context.Context, project *Project, from Status) error
}
