package donation

import (
	"encoding/json"
	"time"

	"Wildfund/internal/pkg"

	"github.com/oklog/ulid/v2"
)

type Status string

const (
	Pending   Status = "pending"
	Completed Status = "completed"
	Failed    Status = "failed"
)

// Donation e gravada uma unica vez, no primeiro evento de sessao concluida.
// CheckoutSessionId e a chave de idempotencia.
type Donation struct {
	Id                ulid.ULID  `json:"id"`
	ProjectId         ulid.ULID  `json:"projectId"`
	UserId            *ulid.ULID `json:"userId,omitempty"`
	RecipientId       ulid.ULID  `json:"recipientId"`
	CheckoutSessionId string     `json:"checkoutSessionId"`
	PaymentIntentId   string     `json:"paymentIntentId"`
	AmountTotal       int64      `json:"amountTotal"`
	ProjectAmount     int64      `json:"projectAmount"`
	TipAmount         int64      `json:"tipAmount"`
	CoversFees        bool       `json:"coversFees"`
	Currency          string     `json:"currency"`
	Status            Status     `json:"status"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

func (d *Donation) IsAnonymous() bool {
	return d.UserId == nil
}

// TransactionDetail e o registro auditavel da cobranca. ChargeId e unico;
// taxa e liquido ficam nulos ate a liquidacao estar disponivel.
type TransactionDetail struct {
	Id                ulid.ULID       `json:"id"`
	ChargeId          string          `json:"chargeId"`
	PaymentIntentId   string          `json:"paymentIntentId"`
	DonationId        *ulid.ULID      `json:"donationId,omitempty"`
	ProjectId         ulid.ULID       `json:"projectId"`
	DonorId           *ulid.ULID      `json:"donorId,omitempty"`
	RecipientId       ulid.ULID       `json:"recipientId"`
	GrossAmount       int64           `json:"grossAmount"`
	ProjectAmount     int64           `json:"projectAmount"`
	TipAmount         int64           `json:"tipAmount"`
	FeeAmount         *int64          `json:"feeAmount,omitempty"`
	NetAmount         *int64          `json:"netAmount,omitempty"`
	Currency          string          `json:"currency"`
	PaymentMethodType string          `json:"paymentMethodType,omitempty"`
	CardBrand         string          `json:"cardBrand,omitempty"`
	CardLast4         string          `json:"cardLast4,omitempty"`
	EventType         string          `json:"eventType"`
	RawEvent          json.RawMessage `json:"-"`
	RawSettlement     json.RawMessage `json:"-"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

func (t *TransactionDetail) HasSettlement() bool {
	return t.FeeAmount != nil && t.NetAmount != nil
}

// NewTransactionDetail monta o registro a partir da doacao, copiando doador e
// recebedor por valor.
func NewTransactionDetail(d *Donation, chargeID string) *TransactionDetail {
	donationID := d.Id
	now := time.Now()
	return &TransactionDetail{
		Id:              pkg.GenerateULIDObject(),
		ChargeId:        chargeID,
		PaymentIntentId: d.PaymentIntentId,
		DonationId:      &donationID,
		ProjectId:       d.ProjectId,
		DonorId:         d.UserId,
		RecipientId:     d.RecipientId,
		GrossAmount:     d.AmountTotal,
		ProjectAmount:   d.ProjectAmount,
		TipAmount:       d.TipAmount,
		Currency:        d.Currency,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// InsertResult distingue a insercao efetiva da reentrega ja processada.
type InsertResult int

const (
	Created InsertResult = iota + 1
	AlreadyExists
)

func (r InsertResult) String() string {
	switch r {
	case Created:
		return "created"
	case AlreadyExists:
		return "already_exists"
	}
	return "unknown"
}
