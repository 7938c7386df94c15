package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"artlink_backend/internal/middleware"
	"artlink_backend/internal/services"
	"artlink_backend/internal/services/dto"
)

type DeviceHandler struct {
	*BaseHandler
	deviceService services.DeviceService
}

func NewDeviceHandler(base *BaseHandler, deviceService services.DeviceService) *DeviceHandler {
	return &DeviceHandler{
		BaseHandler:   base,
		deviceService: deviceService,
	}
}

func (h *DeviceHandler) RegisterRoutes(r *gin.RouterGroup) {
	devices := r.Group("/devices")
	devices.Use(middleware.AuthMiddleware())
	{
		devices.POST("", h.RegisterDevice)
		devices.GET("", h.GetDevices)
		devices.DELETE("/:token", h.UnregisterDevice)
	}
}

// RegisterDevice upserts the push token; re-registering a deactivated token
// reactivates it.
func (h *DeviceHandler) RegisterDevice(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.RegisterDeviceRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	device, err := h.deviceService.Register(userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, device)
}

func (h *DeviceHandler) GetDevices(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	devices, err := h.deviceService.GetActiveDevices(userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"devices": devices})
}

func (h *DeviceHandler) UnregisterDevice(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.deviceService.Unregister(userID, c.Param("token")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Device unregistered"})
}
