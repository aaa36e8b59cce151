package infrastructure

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"Wildfund/config"
	"Wildfund/internal/domain/checkout"
	"Wildfund/internal/domain/ledger"
	appErrors "Wildfund/internal/errors"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/client"
)

// StripeGateway e o cliente do processador injetado nos servicos; nao ha chave
// global em stripe.Key.
type StripeGateway struct {
	API        *client.API
	Timeout    time.Duration
	SuccessURL string
	CancelURL  string
}

func NewStripeClient(cfg *config.Config) *client.API {
	httpClient := &http.Client{Timeout: cfg.Stripe.APITimeout}
	return client.New(cfg.Stripe.SecretKey, stripe.NewBackends(httpClient))
}

func NewStripeGateway(api *client.API, cfg *config.Config) *StripeGateway {
	return &StripeGateway{
		API:        api,
		Timeout:    cfg.Stripe.APITimeout,
		SuccessURL: cfg.Stripe.SuccessURL,
		CancelURL:  cfg.Stripe.CancelURL,
	}
}

func (g *StripeGateway) CreateSession(ctx context.Context, request *checkout.SessionRequest) (*checkout.Session, error) {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(g.SuccessURL),
		CancelURL:         stripe.String(g.CancelURL),
		ClientReferenceID: stripe.String(request.ReferenceId),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(request.Currency),
					UnitAmount: stripe.Int64(request.Amount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(request.Name),
						Description: stripe.String(request.Description),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: request.Metadata,
		},
	}
	params.Context = ctx
	for key, value := range request.Metadata {
		params.AddMetadata(key, value)
	}

	session, err := g.API.CheckoutSessions.New(params)
	if err != nil {
		return nil, appErrors.ErrPaymentProvider.WithError(err)
	}

	return &checkout.Session{Id: session.ID, URL: session.URL}, nil
}

func (g *StripeGateway) LatestChargeID(ctx context.Context, paymentIntentID string) (string, error) {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	intent, err := g.API.PaymentIntents.Get(paymentIntentID, params)
	if err != nil {
		return "", appErrors.ErrPaymentProvider.WithError(err)
	}
	if intent.LatestCharge == nil {
		return "", nil
	}
	return intent.LatestCharge.ID, nil
}

func (g *StripeGateway) GetSettlement(ctx context.Context, chargeID string) (*ledger.Settlement, error) {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	params := &stripe.ChargeParams{}
	params.Context = ctx
	params.AddExpand("balance_transaction")

	charge, err := g.API.Charges.Get(chargeID, params)
	if err != nil {
		return nil, appErrors.ErrPaymentProvider.WithError(err)
	}

	txn := charge.BalanceTransaction
	if txn == nil || txn.ID == "" {
		return nil, appErrors.ErrSettlementUnavailable.WithDetails(map[string]interface{}{
			"charge_id": chargeID,
		})
	}

	raw, err := json.Marshal(txn)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}

	settlement := &ledger.Settlement{
		ChargeId: charge.ID,
		Amount:   txn.Amount,
		Fee:      txn.Fee,
		Net:      txn.Net,
		Currency: string(txn.Currency),
		Raw:      raw,
	}
	if charge.PaymentIntent != nil {
		settlement.PaymentIntentId = charge.PaymentIntent.ID
	}
	if details := charge.PaymentMethodDetails; details != nil {
		settlement.PaymentMethodType = string(details.Type)
		if details.Card != nil {
			settlement.CardBrand = string(details.Card.Brand)
			settlement.CardLast4 = details.Card.Last4
		}
	}
	return settlement, nil
}

func (g *StripeGateway) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.Timeout)
}
