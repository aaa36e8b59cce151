package checkout

import (
	"context"
	"fmt"
	"strings"

	"Wildfund/internal/domain/ledger"
	"Wildfund/internal/domain/project"
	appErrors "Wildfund/internal/errors"
	"Wildfund/internal/logger"
	"Wildfund/internal/pkg"

	"github.com/oklog/ulid/v2"
)

const (
	DefaultMinimumAmount int64 = 100
	// MaximumAmount e o maior unit_amount aceito pelo processador (8 digitos).
	MaximumAmount           int64 = 99_999_999
	DefaultDescriptionLimit       = 120
)

type Request struct {
	ProjectId     ulid.ULID
	UserId        *ulid.ULID
	TotalAmount   int64
	ProjectAmount int64
	TipAmount     int64
	CoverFees     bool
}

type Session struct {
	Id  string `json:"session_id"`
	URL string `json:"url"`
}

// SessionRequest e o que o processador recebe para abrir a sessao hospedada.
type SessionRequest struct {
	Amount      int64
	Currency    string
	Name        string
	Description string
	Metadata    map[string]string
	ReferenceId string
}

type SessionCreator interface {
	CreateSession(ctx context.Context, request *SessionRequest) (*Session, error)
}

type ProjectGate interface {
	EnsureAcceptsDonations(ctx context.Context, id ulid.ULID) (*project.Project, error)
}

// DonorChecker confirma que o doador identificado tem perfil cadastrado.
type DonorChecker interface {
	EnsureUserExists(ctx context.Context, userID ulid.ULID) error
}

type Options struct {
	MinimumAmount    int64
	AllowAnonymous   bool
	DescriptionLimit int
	Currency         string
}

// Service abre sessoes de checkout. Nao escreve no ledger.
type Service struct {
	Projects ProjectGate
	Sessions SessionCreator
	Donors   DonorChecker
	Options  Options
}

func NewService(projects ProjectGate, sessions SessionCreator, options Options) *Service {
	if options.MinimumAmount <= 0 {
		options.MinimumAmount = DefaultMinimumAmount
	}
	if options.DescriptionLimit <= 0 {
		options.DescriptionLimit = DefaultDescriptionLimit
	}
	if options.Currency == "" {
		options.Currency = "usd"
	}
	return &Service{Projects: projects, Sessions: sessions, Options: options}
}

func (s *Service) CreateCheckout(ctx context.Context, request *Request) (*Session, error) {
	if request.UserId == nil && !s.Options.AllowAnonymous {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validate(request); err != nil {
		return nil, err
	}

	if request.UserId != nil && s.Donors != nil {
		if err := s.Donors.EnsureUserExists(ctx, *request.UserId); err != nil {
			return nil, err
		}
	}

	proj, err := s.Projects.EnsureAcceptsDonations(ctx, request.ProjectId)
	if err != nil {
		return nil, err
	}

	meta := ledger.Metadata{
		ProjectId:     proj.Id,
		UserId:        request.UserId,
		TotalAmount:   request.TotalAmount,
		ProjectAmount: request.ProjectAmount,
		TipAmount:     request.TipAmount,
		CoverFees:     request.CoverFees,
	}

	sessionRequest := &SessionRequest{
		Amount:      request.TotalAmount,
		Currency:    s.Options.Currency,
		Name:        pkg.Truncate(fmt.Sprintf("Doação para %s", proj.Title), s.Options.DescriptionLimit),
		Description: pkg.Truncate(s.describe(proj, request), s.Options.DescriptionLimit),
		Metadata:    meta.Encode(),
		ReferenceId: proj.Id.String(),
	}

	session, err := s.Sessions.CreateSession(ctx, sessionRequest)
	if err != nil {
		logger.Error().
			Err(err).
			Str("project_id", proj.Id.String()).
			Int64("total_amount", request.TotalAmount).
			Msg("Falha ao criar sessao de checkout")
		if appErrors.IsAppError(err) {
			return nil, err
		}
		return nil, appErrors.ErrPaymentProvider.WithError(err)
	}

	logger.Info().
		Str("project_id", proj.Id.String()).
		Str("session_id", session.Id).
		Int64("total_amount", request.TotalAmount).
		Bool("anonymous", request.UserId == nil).
		Msg("Sessao de checkout criada")

	return session, nil
}

func (s *Service) validate(request *Request) error {
	if pkg.IsEmptyULID(request.ProjectId) {
		return appErrors.NewValidationError("project_id", "é obrigatório")
	}
	if request.TotalAmount < s.Options.MinimumAmount {
		return appErrors.NewValidationError("total_amount", fmt.Sprintf("deve ser no mínimo %d", s.Options.MinimumAmount))
	}
	if request.TotalAmount > MaximumAmount {
		return appErrors.NewValidationError("total_amount", fmt.Sprintf("deve ser no máximo %d", MaximumAmount))
	}
	if request.ProjectAmount <= 0 {
		return appErrors.NewValidationError("project_amount", "deve ser maior que zero")
	}
	if request.TipAmount < 0 {
		return appErrors.NewValidationError("tip_amount", "não pode ser negativa")
	}
	// subtracao evita overflow de ProjectAmount+TipAmount
	if request.ProjectAmount > request.TotalAmount || request.TipAmount > request.TotalAmount-request.ProjectAmount {
		return appErrors.NewValidationError("total_amount", "deve cobrir o valor do projeto e a gorjeta")
	}
	return nil
}

func (s *Service) describe(proj *project.Project, request *Request) string {
	currency := s.Options.Currency
	parts := []string{
		fmt.Sprintf("%s para o projeto", pkg.FormatMinorUnits(request.ProjectAmount, currency)),
	}
	if request.TipAmount > 0 {
		parts = append(parts, fmt.Sprintf("%s de gorjeta à plataforma", pkg.FormatMinorUnits(request.TipAmount, currency)))
	}
	if request.CoverFees {
		parts = append(parts, "taxas cobertas pelo doador")
	}
	return fmt.Sprintf("%s: %s", proj.Title, strings.Join(parts, ", "))
}
