package project

import (
	"context"
	"strings"
	"time"

	appErrors "Wildfund/internal/errors"
	"Wildfund/internal/logger"
	"Wildfund/internal/pkg"

	"github.com/oklog/ulid/v2"
)

type OwnerChecker interface {
	EnsureUserExists(ctx context.Context, userID ulid.ULID) error
}

type Service struct {
	Repository Repository
	Owners     OwnerChecker
	Observers  []StatusObserver
}

func NewService(repo Repository, observers ...StatusObserver) *Service {
	return &Service{Repository: repo, Observers: observers}
}

func (s *Service) CreateProject(ctx context.Context, request *CreateRequest) (*Project, error) {
	if err := Validate(*request); err != nil {
		return nil, err
	}
	if s.Owners != nil {
		if err := s.Owners.EnsureUserExists(ctx, request.OwnerId); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	entity := &Project{
		Id:           pkg.GenerateULIDObject(),
		OwnerId:      request.OwnerId,
		Title:        strings.TrimSpace(request.Title),
		Description:  strings.TrimSpace(request.Description),
		FundingGoal:  request.FundingGoal,
		FundingTotal: 0,
		Status:       Active,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Repository.Create(ctx, entity); err != nil {
		return nil, err
	}
	return entity, nil
}

func (s *Service) GetProject(ctx context.Context, id ulid.ULID) (*Project, error) {
	return s.Repository.GetByID(ctx, id)
}

func (s *Service) ListProjects(ctx context.Context, filters *Filters, pagination *pkg.PaginationParams) ([]*Project, int64, error) {
	return s.Repository.List(ctx, filters, pagination)
}

// EnsureAcceptsDonations carrega o projeto e recusa quando ele nao esta active.
func (s *Service) EnsureAcceptsDonations(ctx context.Context, id ulid.ULID) (*Project, error) {
	entity, err := s.Repository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if entity.AcceptsDonations() {
		return entity, nil
	}

	switch entity.Status {
	case Completed:
		return nil, appErrors.ErrProjectCompleted.WithDetails(map[string]interface{}{
			"project_id": id.String(),
		})
	default:
		return nil, appErrors.ErrProjectNotAccepting.WithDetails(map[string]interface{}{
			"project_id": id.String(),
			"status":     string(entity.Status),
		})
	}
}

// EvaluateFunding aplica a transicao active -> funded depois de um incremento do ledger.
func (s *Service) EvaluateFunding(ctx context.Context, id ulid.ULID) (*Project, error) {
	changed, err := s.Repository.MarkFundedIfReached(ctx, id)
	if err != nil {
		return nil, err
	}

	entity, err := s.Repository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if changed {
		logger.Info().
			Str("project_id", id.String()).
			Int64("funding_total", entity.FundingTotal).
			Int64("funding_goal", entity.FundingGoal).
			Msg("Projeto atingiu a meta de arrecadacao")
		s.notify(ctx, entity, Active)
	}

	return entity, nil
}

func (s *Service) UpdateProject(ctx context.Context, request *UpdateRequest) (*Project, error) {
	if err := ValidateUpdate(*request); err != nil {
		return nil, err
	}

	current, err := s.GetOwnedProject(ctx, request.Id, request.OwnerId)
	if err != nil {
		return nil, err
	}

	if current.Status == Completed {
		return nil, appErrors.ErrProjectCompleted
	}

	fields := map[string]interface{}{}
	if request.Title != nil {
		fields["title"] = strings.TrimSpace(*request.Title)
	}
	if request.Description != nil {
		fields["description"] = strings.TrimSpace(*request.Description)
	}
	if len(fields) > 0 {
		fields["updated_at"] = time.Now()
		if err := s.Repository.UpdateFields(ctx, request.Id, fields); err != nil {
			return nil, err
		}
	}

	if request.FundingGoal != nil && *request.FundingGoal != current.FundingGoal {
		updated, err := s.Repository.UpdateGoal(ctx, request.Id, *request.FundingGoal)
		if err != nil {
			return nil, err
		}
		if !updated {
			// concluido entre a leitura e a escrita
			return nil, appErrors.ErrProjectCompleted
		}
	}

	entity, err := s.Repository.GetByID(ctx, request.Id)
	if err != nil {
		return nil, err
	}

	if entity.Status != current.Status {
		logger.Info().
			Str("project_id", entity.Id.String()).
			Str("from", string(current.Status)).
			Str("to", string(entity.Status)).
			Int64("funding_goal", entity.FundingGoal).
			Int64("funding_total", entity.FundingTotal).
			Msg("Estado do projeto alterado pela meta")
		s.notify(ctx, entity, current.Status)
	}

	return entity, nil
}

// CompleteProject e a transicao explicita do dono para completed, independente do total.
func (s *Service) CompleteProject(ctx context.Context, id, ownerID ulid.ULID) (*Project, error) {
	current, err := s.GetOwnedProject(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	if current.Status == Completed {
		return nil, appErrors.ErrProjectCompleted
	}

	changed, err := s.Repository.UpdateStatus(ctx, id, Completed, Active, Funded)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, appErrors.ErrProjectCompleted
	}

	entity, err := s.Repository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, entity, current.Status)

	return entity, nil
}

func (s *Service) GetProgress(ctx context.Context, id ulid.ULID) (*Progress, error) {
	entity, err := s.Repository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	percentage := 0.0
	if entity.FundingGoal > 0 {
		percentage = float64(entity.FundingTotal) / float64(entity.FundingGoal) * 100
	}

	return &Progress{
		ProjectId:    entity.Id,
		Title:        entity.Title,
		FundingGoal:  entity.FundingGoal,
		FundingTotal: entity.FundingTotal,
		Remaining:    entity.Remaining(),
		Percentage:   percentage,
		Status:       entity.Status,
	}, nil
}

func (s *Service) GetOwnedProject(ctx context.Context, id, ownerID ulid.ULID) (*Project, error) {
	entity, err := s.Repository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entity.OwnerId != ownerID {
		return nil, appErrors.ErrResourceNotOwned
	}
	return entity, nil
}

func (s *Service) notify(ctx context.Context, entity *Project, from Status) {
	for _, observer := range s.Observers {
		if observer == nil {
			continue
		}
		if err := observer.ProjectStatusChanged(ctx, entity, from); err != nil {
			logger.Warn().
				Err(err).
				Str("project_id", entity.Id.String()).
				Str("status", string(entity.Status)).
				Msg("Falha ao notificar mudanca de estado do projeto")
		}
	}
}

func Validate(request CreateRequest) error {
	if strings.TrimSpace(request.Title) == "" {
		return appErrors.NewValidationError("title", "é obrigatório")
	}
	if request.FundingGoal <= 0 {
		return appErrors.NewValidationError("funding_goal", "deve ser maior que zero")
	}
	if pkg.IsEmptyULID(request.OwnerId) {
		return appErrors.ErrUnauthorized
	}
	return nil
}

func ValidateUpdate(request UpdateRequest) error {
	if request.Title != nil && strings.TrimSpace(*request.Title) == "" {
		return appErrors.NewValidationError("title", "não pode ser vazio")
	}
	if request.FundingGoal != nil && *request.FundingGoal <= 0 {
		return appErrors.NewValidationError("funding_goal", "deve ser maior que zero")
	}
	return nil
}
