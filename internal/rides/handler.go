package rides

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Oghenemaro93/QGlide/pkg/common"
	"github.com/Oghenemaro93/QGlide/pkg/middleware"
	"github.com/Oghenemaro93/QGlide/pkg/models"
)

// Handler handles HTTP requests for the ride lifecycle.
type Handler struct {
	service *Service
}

// NewHandler creates a new rides handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// CreateRide handles a rider opening a new ride.
func (h *Handler) CreateRide(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req models.CreateRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	ride, err := h.service.CreateRide(c.Request.Context(), actor, &req)
	if common.HandleServiceError(c, err, "failed to create ride") {
		return
	}

	common.CreatedResponse(c, ride)
}

// GetRideStatus returns the acting user's current open ride.
func (h *Handler) GetRideStatus(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	ride, err := h.service.GetOpenRide(c.Request.Context(), actor)
	if common.HandleServiceError(c, err, "failed to get ride status") {
		return
	}

	if unit := c.Query("distance_unit"); unit != "" {
		ride.ConvertDistance(models.DistanceUnit(unit))
	}

	common.SuccessResponse(c, ride)
}

// CancelRide handles either party cancelling their open ride.
func (h *Handler) CancelRide(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req models.CancelRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.CancelRide(c.Request.Context(), actor, &req); common.HandleServiceError(c, err, "failed to cancel ride") {
		return
	}

	common.SuccessMessageResponse(c, "ride cancelled")
}

// RateRide records the rider's rating on a finished ride.
func (h *Handler) RateRide(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req models.RateRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.RateRide(c.Request.Context(), actor, &req); common.HandleServiceError(c, err, "failed to rate ride") {
		return
	}

	common.SuccessMessageResponse(c, "ride rated")
}

// FetchRiderLocation returns the pickup location of a rider's open ride.
func (h *Handler) FetchRiderLocation(c *gin.Context) {
	riderID, err := uuid.Parse(c.Query("rider_id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid rider ID")
		return
	}

	location, err := h.service.FetchRiderLocation(c.Request.Context(), riderID)
	if common.HandleServiceError(c, err, "failed to fetch rider location") {
		return
	}

	common.SuccessResponse(c, location)
}

// AcceptRide handles a driver accepting a pending ride.
func (h *Handler) AcceptRide(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req models.AcceptRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	ride, err := h.service.AcceptRide(c.Request.Context(), actor, &req)
	if common.HandleServiceError(c, err, "failed to accept ride") {
		return
	}

	common.SuccessResponse(c, ride)
}

// WaitRide handles a driver reporting arrival at the pickup point.
func (h *Handler) WaitRide(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req models.WaitingRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.WaitRide(c.Request.Context(), actor, &req); common.HandleServiceError(c, err, "failed to mark ride waiting") {
		return
	}

	common.SuccessMessageResponse(c, "driver waiting")
}

// StartRide handles a driver starting the trip.
func (h *Handler) StartRide(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req models.StartRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.StartRide(c.Request.Context(), actor, &req); common.HandleServiceError(c, err, "failed to start ride") {
		return
	}

	common.SuccessMessageResponse(c, "ride started")
}

// EndRide handles a driver ending the trip and freezing the fare.
func (h *Handler) EndRide(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req models.EndRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	ride, err := h.service.EndRide(c.Request.Context(), actor, &req)
	if common.HandleServiceError(c, err, "failed to end ride") {
		return
	}

	common.SuccessResponse(c, ride)
}

// SettleCash handles a driver settling an ended ride as paid in cash.
func (h *Handler) SettleCash(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req models.CashPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.SettleCash(c.Request.Context(), actor, &req); common.HandleServiceError(c, err, "failed to settle ride") {
		return
	}

	common.SuccessMessageResponse(c, "ride paid")
}

// RegisterRoutes registers ride routes.
func (h *Handler) RegisterRoutes(r *gin.Engine, jwtSecret string) {
	api := r.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(jwtSecret))

	// Rider routes
	riders := api.Group("/rides")
	riders.Use(middleware.RequireRole(models.RoleRider))
	{
		riders.POST("", h.CreateRide)
		riders.POST("/cancel", h.CancelRide)
		riders.POST("/rate", h.RateRide)
	}

	// Both parties can poll their open ride
	status := api.Group("/rides")
	status.Use(middleware.RequireRole(models.RoleRider, models.RoleDriver))
	{
		status.GET("/status", h.GetRideStatus)
	}

	// Driver routes
	drivers := api.Group("/driver/rides")
	drivers.Use(middleware.RequireRole(models.RoleDriver))
	{
		drivers.GET("/rider-location", h.FetchRiderLocation)
		drivers.POST("/accept", h.AcceptRide)
		drivers.POST("/wait", h.WaitRide)
		drivers.POST("/start", h.StartRide)
		drivers.POST("/end", h.EndRide)
		drivers.POST("/cash-payment", h.SettleCash)
		drivers.POST("/cancel", h.CancelRide)
	}
}
