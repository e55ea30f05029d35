package controller

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/molle-app/ms-go-reconcile/app/factory"
	"github.com/molle-app/ms-go-reconcile/app/gateway"
	"github.com/molle-app/ms-go-reconcile/app/service"
	"github.com/molle-app/ms-go-reconcile/app/types"
)

type WebhookController struct {
	reconcileService *service.ReconcileService
	gatewayReg       *gateway.Registry
	logger           logrus.FieldLogger
}

func NewWebhookController(reconcileService *service.ReconcileService, gatewayReg *gateway.Registry) *WebhookController {
	return &WebhookController{
		reconcileService: reconcileService,
		gatewayReg:       gatewayReg,
		logger:           factory.NewModuleLogger("webhook-controller"),
	}
}

func (c *WebhookController) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, &types.HealthResponse{Status: "ok"})
}

// HandleGatewayWebhook verifies against the raw request body; the payload
// must not be re-serialized before signature verification.
func (c *WebhookController) HandleGatewayWebhook(ctx echo.Context) error {
	gatewayName := ctx.Param("gateway")
	requestID := ctx.Request().Header.Get(echo.HeaderXRequestID)

	gw, err := c.gatewayReg.Get(gatewayName)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "gateway is not supported")
	}

	payload, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}

	signature := ctx.Request().Header.Get(gw.SignatureHeader())

	l := factory.LoggerWithContext(c.logger, ctx).WithField("gateway", gw.Name())

	result, err := c.reconcileService.HandleWebhook(ctx.Request().Context(), gw.Name(), requestID, payload, signature)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGatewayUnsupported):
			return c.writeError(ctx, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrSignatureRejected):
			l.Warn("Webhook signature rejected")
			return c.writeError(ctx, http.StatusBadRequest, err.Error())
		default:
			l.WithError(err).Error("Handle gateway webhook failed")
			return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	l.WithFields(logrus.Fields{
		"outcome":  result.Outcome,
		"kind":     result.Kind,
		"order_id": result.OrderID,
	}).Info("Webhook handled")

	return ctx.JSON(http.StatusOK, &types.ReceivedResponse{Received: true})
}

func (c *WebhookController) writeError(ctx echo.Context, statusCode int, message string) error {
	return ctx.JSON(statusCode, &types.ErrorResponse{Error: message})
}
