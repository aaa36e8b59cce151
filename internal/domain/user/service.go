package user

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	appErrors "Wildfund/internal/errors"
	"Wildfund/internal/pkg"

	"github.com/oklog/ulid/v2"
)

type Service struct {
	Repository Repository
}

func NewService(repo Repository) *Service {
	return &Service{Repository: repo}
}

// Register grava o perfil do usuario autenticado pelo gateway. O id vem do
// gateway; sem id um novo e gerado.
func (s *Service) Register(ctx context.Context, request *CreateRequest) (*User, error) {
	name := strings.TrimSpace(request.Name)
	if name == "" {
		return nil, appErrors.NewValidationError("name", "é obrigatório")
	}
	email := strings.ToLower(strings.TrimSpace(request.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, appErrors.NewValidationError("email", "inválido")
	}

	if existing, err := s.Repository.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, appErrors.NewConflictError("Email")
	} else if err != nil && !errors.Is(err, appErrors.ErrUserNotFound) {
		return nil, err
	}

	id := request.Id
	if pkg.IsEmptyULID(id) {
		id = pkg.GenerateULIDObject()
	}

	now := time.Now()
	entity := &User{
		Id:        id,
		Name:      name,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Repository.Create(ctx, entity); err != nil {
		return nil, err
	}
	return entity, nil
}

func (s *Service) GetByID(ctx context.Context, id ulid.ULID) (*User, error) {
	return s.Repository.GetByID(ctx, id)
}

func (s *Service) Exists(ctx context.Context, userID ulid.ULID) error {
	_, err := s.GetByID(ctx, userID)
	return err
}
