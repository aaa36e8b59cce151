package routes

import (
	"net/http"

	"Wildfund/internal/contracts"
	"Wildfund/internal/domain/webhook"
	appErrors "Wildfund/internal/errors"
	"Wildfund/internal/logger"

	"github.com/gin-gonic/gin"
)

// maxWebhookBody limita o corpo lido do processador.
const maxWebhookBody = 1 << 16

// HandleStripeWebhook verifica a assinatura sobre o corpo bruto antes de
// despachar. 400 em falha de verificacao, 500 apenas quando o evento deve
// ser reenviado, 200 nos demais casos.
func (h *Handler) HandleStripeWebhook(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody)
	payload, err := c.GetRawData()
	if err != nil {
		h.respondError(c, appErrors.ErrBadRequest.WithError(err))
		return
	}

	event, err := h.Verifier.Verify(payload, c.GetHeader(webhook.SignatureHeader))
	if err != nil {
		logger.Warn().
			Err(err).
			Str("client_ip", c.ClientIP()).
			Msg("Webhook rejeitado na verificacao")
		h.respondError(c, err)
		return
	}

	if err := h.Dispatcher.Dispatch(c.Request.Context(), event, payload); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contracts.WebhookAck{Received: true})
}
