package payment

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"resortbooking/internal/domain"
	"resortbooking/internal/mpesa"
	"resortbooking/internal/pkg/response"
)

type Handler struct {
	service *Service
	logger  *zap.Logger
}

func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes mounts the payment endpoints. The callback lives on the
// public group: the gateway does not authenticate, so the handler validates
// the payload defensively instead.
func (h *Handler) RegisterRoutes(public, authed *gin.RouterGroup, adminOnly gin.HandlerFunc) {
	public.POST("/payments/mpesa/callback", h.Callback)

	authed.POST("/payments/mpesa/initiate", h.Initiate)
	authed.GET("/payments/:id/status", h.Status)
	authed.POST("/payments/:id/refund", adminOnly, h.Refund)
}

func (h *Handler) Initiate(c *gin.Context) {
	var req InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	p, err := h.service.Initiate(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"payment": p})
}

// Callback always acknowledges the gateway, whatever happens internally;
// anything else triggers redelivery storms from the gateway side.
func (h *Handler) Callback(c *gin.Context) {
	var envelope mpesa.CallbackEnvelope
	if err := c.ShouldBindJSON(&envelope); err != nil {
		h.logger.Warn("malformed mpesa callback", zap.Error(err))
		c.JSON(http.StatusOK, mpesa.AcceptedAck())
		return
	}

	if err := h.service.HandleCallback(c.Request.Context(), envelope.Body.STKCallback); err != nil {
		h.logger.Error("mpesa callback processing failed",
			zap.String("checkout_request_id", envelope.Body.STKCallback.CheckoutRequestID),
			zap.Error(err))
	}
	c.JSON(http.StatusOK, mpesa.AcceptedAck())
}

func (h *Handler) Status(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	p, err := h.service.Status(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"payment": p})
}

func (h *Handler) Refund(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Refund reason is required")
		return
	}

	p, err := h.service.Refund(c.Request.Context(), actorFrom(c), id, req.Reason)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"payment": p})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var gwErr *mpesa.GatewayError
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrBookingNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.Is(err, ErrAlreadyPaid),
		errors.Is(err, ErrBookingNotPayable),
		errors.Is(err, ErrInvalidPhone),
		errors.Is(err, ErrNotRefundable),
		errors.Is(err, ErrReasonRequired):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.As(err, &gwErr):
		response.Error(c, http.StatusBadGateway, "GATEWAY_ERROR", gwErr.Message)
	case errors.Is(err, ErrGatewayUnreachable):
		response.Error(c, http.StatusBadGateway, "GATEWAY_ERROR", err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong")
	}
}

func actorFrom(c *gin.Context) domain.Actor {
	return domain.Actor{
		ID:   c.GetInt64("user_id"),
		Role: domain.UserRole(c.GetString("role")),
	}
}

func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid payment ID")
		return 0, false
	}
	return id, true
}
