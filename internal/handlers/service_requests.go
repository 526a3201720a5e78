package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"marketplace-backend/internal/database"
	"marketplace-backend/internal/models"
	"marketplace-backend/internal/services"
)

type ServiceRequestsHandler struct {
	db *database.Client
	*Responder
}

func NewServiceRequestsHandler(db *database.Client, responder *Responder) *ServiceRequestsHandler {
	return &ServiceRequestsHandler{db: db, Responder: responder}
}

func (h *ServiceRequestsHandler) Create(c *gin.Context) {
	customerID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "authentication required"})
		return
	}

	var req models.CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "invalid service request payload: "+err.Error())
		return
	}
	if models.ServiceType(req.ServiceType) != models.ServiceTypeBirdDNA {
		h.BadRequest(c, "unsupported service type")
		return
	}

	sr := &models.ServiceRequest{
		CustomerID:     customerID,
		ServiceType:    models.ServiceType(req.ServiceType),
		PickupAddress:  req.PickupAddress,
		DropAddress:    req.DropAddress,
		Birds:          req.Birds,
		Status:         models.ServiceStatusPending,
		PaymentMethod:  req.PaymentMethod,
		PaymentStatus:  models.PaymentStatusPending,
		TotalAmount:    req.TotalAmount,
		TrackingNumber: uuid.NewString(),
	}

	created, err := h.db.CreateServiceRequest(c.Request.Context(), sr)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, created)
}

func (h *ServiceRequestsHandler) Mine(c *gin.Context) {
	customerID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "authentication required"})
		return
	}

	requests, err := h.db.ServiceRequestsByCustomer(c.Request.Context(), customerID)
	if err != nil {
		h.Error(c, err)
		return
	}
	if requests == nil {
		requests = []models.ServiceRequest{}
	}
	h.OK(c, requests)
}

func (h *ServiceRequestsHandler) Get(c *gin.Context) {
	id, err := objectIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid service request id")
		return
	}
	customerID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "authentication required"})
		return
	}

	sr, err := h.db.ServiceRequestByID(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	if sr.CustomerID != customerID && callerRole(c) != models.RoleAdmin {
		h.Error(c, fmt.Errorf("%w: not your service request", services.ErrForbidden))
		return
	}
	h.OK(c, sr)
}

// UpdateStatus moves a service request along its lifecycle; transitions may
// only go forward.
func (h *ServiceRequestsHandler) UpdateStatus(c *gin.Context) {
	id, err := objectIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid service request id")
		return
	}

	var req models.UpdateServiceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "invalid status payload: "+err.Error())
		return
	}

	next := models.ServiceRequestStatus(req.Status)
	nextRank, ok := models.ServiceStatusRank[next]
	if !ok {
		h.BadRequest(c, "unknown service status")
		return
	}

	sr, err := h.db.ServiceRequestByID(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	if nextRank <= models.ServiceStatusRank[sr.Status] {
		h.BadRequest(c, fmt.Sprintf("cannot move status from %s to %s", sr.Status, next))
		return
	}

	updated, err := h.db.UpdateServiceRequestStatus(c.Request.Context(), id, next)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, updated)
}
