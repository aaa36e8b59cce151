package infrastructure

import (
	"context"
	"fmt"
	"net/smtp"
	"time"

	"Wildfund/config"
	"Wildfund/internal/domain/project"
	"Wildfund/internal/domain/user"
	"Wildfund/internal/logger"
	"Wildfund/internal/pkg"

	"github.com/jordan-wright/email"
)

const (
	defaultMailTimeout = 10 * time.Second
	mailPoolSize       = 2
)

// OwnerMailer avisa o dono quando o projeto atinge a meta. Roda no caminho
// do webhook, entao todo envio tem prazo: Timeout ou o ctx, o que vier antes.
type OwnerMailer struct {
	Users    user.Repository
	From     string
	Currency string
	Timeout  time.Duration
	pool     *email.Pool
	send     func(e *email.Email, timeout time.Duration) error
}

func NewOwnerMailer(users user.Repository, cfg *config.Config) (*OwnerMailer, error) {
	addr := fmt.Sprintf("%s:%s", cfg.SMTP.Host, cfg.SMTP.Port)
	var auth smtp.Auth
	if cfg.SMTP.User != "" {
		auth = smtp.PlainAuth("", cfg.SMTP.User, cfg.SMTP.Password, cfg.SMTP.Host)
	}

	pool, err := email.NewPool(addr, mailPoolSize, auth)
	if err != nil {
		return nil, fmt.Errorf("falha ao criar pool SMTP: %w", err)
	}

	timeout := cfg.SMTP.Timeout
	if timeout <= 0 {
		timeout = defaultMailTimeout
	}

	return &OwnerMailer{
		Users:    users,
		From:     cfg.SMTP.From,
		Currency: cfg.Stripe.Currency,
		Timeout:  timeout,
		pool:     pool,
		send:     pool.Send,
	}, nil
}

// Close espera o pool devolver as conexoes ate o fim de ctx. Pool.Close
// bloqueia enquanto houver uma conexao presa no dial.
func (m *OwnerMailer) Close(ctx context.Context) error {
	if m.pool == nil {
		return nil
	}
	done := make(chan struct{})
	go func() {
		m.pool.Close()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// deliver abandona o envio quando o prazo estoura. O pool so limita a espera
// por conexao; a conversa SMTP em si nao tem deadline.
func (m *OwnerMailer) deliver(ctx context.Context, e *email.Email) error {
	timeout := m.Timeout
	if timeout <= 0 {
		timeout = defaultMailTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- m.send(e, timeout)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("envio de e-mail interrompido: %w", ctx.Err())
	}
}

func (m *OwnerMailer) ProjectStatusChanged(ctx context.Context, entity *project.Project, from project.Status) error {
	if from != project.Active || entity.Status != project.Funded {
		return nil
	}

	owner, err := m.Users.GetByID(ctx, entity.OwnerId)
	if err != nil {
		return err
	}

	e := email.NewEmail()
	e.From = m.From
	e.To = []string{owner.Email}
	e.Subject = fmt.Sprintf("Seu projeto \"%s\" atingiu a meta", pkg.Truncate(entity.Title, 60))
	e.Text = []byte(fmt.Sprintf(
		"Olá %s,\n\nO projeto \"%s\" arrecadou %s de uma meta de %s e não recebe mais doações.\n"+
			"Se quiser continuar arrecadando, aumente a meta no painel do projeto.\n",
		owner.Name,
		entity.Title,
		pkg.FormatMinorUnits(entity.FundingTotal, m.Currency),
		pkg.FormatMinorUnits(entity.FundingGoal, m.Currency),
	))

	if err := m.deliver(ctx, e); err != nil {
		return err
	}

	logger.Info().
		Str("project_id", entity.Id.String()).
		Str("owner_id", owner.Id.String()).
		Msg("Dono do projeto notificado sobre meta atingida")
	return nil
}
