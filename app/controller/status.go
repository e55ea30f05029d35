package controller

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/molle-app/ms-go-reconcile/app/factory"
	"github.com/molle-app/ms-go-reconcile/app/mapper"
	"github.com/molle-app/ms-go-reconcile/app/service"
	"github.com/molle-app/ms-go-reconcile/app/types"
)

// StatusController serves the polling endpoints clients use when the
// browser redirect returns before the webhook lands.
type StatusController struct {
	reconcileService *service.ReconcileService
	logger           logrus.FieldLogger
}

func NewStatusController(reconcileService *service.ReconcileService) *StatusController {
	return &StatusController{
		reconcileService: reconcileService,
		logger:           factory.NewModuleLogger("status-controller"),
	}
}

func (c *StatusController) GetOrderStatus(ctx echo.Context) error {
	orderID := strings.TrimSpace(ctx.Param("orderId"))
	if orderID == "" {
		return c.writeError(ctx, http.StatusBadRequest, "order id is required")
	}

	status, err := c.reconcileService.GetOrderStatus(ctx.Request().Context(), orderID)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			return c.writeError(ctx, http.StatusNotFound, "order not found")
		}
		factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Get order status failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	return ctx.JSON(http.StatusOK, mapper.OrderStatusToView(status))
}

func (c *StatusController) GetBookingStatus(ctx echo.Context) error {
	bookingID := strings.TrimSpace(ctx.Param("id"))
	if bookingID == "" {
		return c.writeError(ctx, http.StatusBadRequest, "booking id is required")
	}

	status, err := c.reconcileService.GetBookingStatus(ctx.Request().Context(), bookingID)
	if err != nil {
		if errors.Is(err, service.ErrBookingNotFound) {
			return c.writeError(ctx, http.StatusNotFound, "booking not found")
		}
		factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Get booking status failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	return ctx.JSON(http.StatusOK, mapper.BookingStatusToView(status))
}

func (c *StatusController) writeError(ctx echo.Context, statusCode int, message string) error {
	return ctx.JSON(statusCode, &types.ErrorResponse{Error: message})
}
