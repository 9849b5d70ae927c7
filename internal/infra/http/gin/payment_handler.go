package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"campnest/internal/app/commands"
	paymentsapp "campnest/internal/app/handlers/payments"
	"campnest/internal/infra/payments"
)

// PaymentHandler receives provider webhooks. Replays and callbacks for
// unknown references still answer 200 so the provider stops retrying.
type PaymentHandler struct {
	Commands commands.Bus
	Verifier payments.CallbackVerifier
	Logger   *slog.Logger
}

// paymentCallbackRequest is the provider's webhook envelope: the order code
// and the settlement status arrive nested under "data".
type paymentCallbackRequest struct {
	Data struct {
		Code   string `json:"code"`
		Status string `json:"status"`
	} `json:"data"`
}

func (h PaymentHandler) Callback(c *gin.Context) {
	if err := h.Verifier.Verify(c.GetHeader("X-Callback-Token")); err != nil {
		h.Logger.Warn("payment callback rejected", "error", err)
		c.JSON(http.StatusForbidden, gin.H{"error": "invalid callback token"})
		return
	}
	var req paymentCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := commands.Dispatch[paymentsapp.ApplyPaymentCallbackCommand, *paymentsapp.CallbackResult](c.Request.Context(), h.Commands, paymentsapp.ApplyPaymentCallbackCommand{
		Code:   req.Data.Code,
		Status: req.Data.Status,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ PaymentHTTP = PaymentHandler{}
