package webhook

import (
	"encoding/json"
	"strings"
	"time"

	appErrors "Wildfund/internal/errors"

	"github.com/stripe/stripe-go/v74"
	stripewebhook "github.com/stripe/stripe-go/v74/webhook"
)

const SignatureHeader = "Stripe-Signature"

// Verifier autentica o corpo bruto antes de qualquer regra de negocio. A
// assinatura e calculada sobre os bytes exatos recebidos.
type Verifier struct {
	Secret    string
	Tolerance time.Duration
}

func NewVerifier(secret string, tolerance time.Duration) *Verifier {
	if tolerance <= 0 {
		tolerance = stripewebhook.DefaultTolerance
	}
	return &Verifier{Secret: secret, Tolerance: tolerance}
}

func (v *Verifier) Verify(payload []byte, header string) (*stripe.Event, error) {
	if strings.TrimSpace(header) == "" {
		return nil, appErrors.ErrInvalidSignature.WithDetails(map[string]interface{}{
			"reason": "cabeçalho de assinatura ausente",
		})
	}
	if v.Secret == "" {
		return nil, appErrors.ErrInternalServer.WithDetails(map[string]interface{}{
			"reason": "segredo do webhook não configurado",
		})
	}

	if err := stripewebhook.ValidatePayloadWithTolerance(payload, header, v.Secret, v.Tolerance); err != nil {
		return nil, appErrors.ErrInvalidSignature.WithError(err)
	}

	var event stripe.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, appErrors.ErrInvalidSignature.WithError(err)
	}
	if event.ID == "" || event.Type == "" || event.Data == nil {
		return nil, appErrors.ErrInvalidSignature.WithDetails(map[string]interface{}{
			"reason": "evento incompleto",
		})
	}

	return &event, nil
}
