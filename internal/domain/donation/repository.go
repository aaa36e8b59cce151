package donation

import (
	"context"

	"Wildfund/internal/pkg"

	"github.com/oklog/ulid/v2"
)

type Repository interface {
	// InsertDonationIfAbsent depende da restricao unica em checkout_session_id;
	// conflito devolve AlreadyExists sem erro.
	InsertDonationIfAbsent(ctx context.Context, donation *Donation) (InsertResult, error)
	GetBySessionID(ctx context.Context, sessionID string) (*Donation, error)
	GetByPaymentIntentID(ctx context.Context, paymentIntentID string) (*Donation, error)
	// MarkFailedByPaymentIntent nunca altera doacoes completed.
	MarkFailedByPaymentIntent(ctx context.Context, paymentIntentID string) (int64, error)
	ListByProject(ctx context.Context, projectID ulid.ULID, pagination *pkg.PaginationParams) ([]*Donation, int64, error)
	ListMissingSettlement(ctx context.Context, limit int) ([]*Donation, error)
	SumCompletedByProject(ctx context.Context) (map[ulid.ULID]int64, error)

	// UpsertTransactionDetail insere pela chave charge_id ou atualiza os campos
	// de liquidacao e meio de pagamento, preservando o vinculo ja gravado.
	UpsertTransactionDetail(ctx context.Context, detail *TransactionDetail) error
	GetTransactionDetailByChargeID(ctx context.Context, chargeID string) (*TransactionDetail, error)
}
