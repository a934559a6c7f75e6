package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"miuhub.app/communityserver/internal/modules/popup/dto"
	popupService "miuhub.app/communityserver/internal/modules/popup/service"
	"miuhub.app/communityserver/pkg/response"
	"miuhub.app/communityserver/pkg/validator"
)

type PopupHandler struct {
	service popupService.PopupService
}

func NewPopupHandler(service popupService.PopupService) *PopupHandler {
	return &PopupHandler{service: service}
}

func (h *PopupHandler) GetAllPopups(c *gin.Context) {
	popups, err := h.service.ListPopups(c.Request.Context())
	if err != nil {
		response.ResponseError(c, "failed to load popups", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"popups":  dto.NewPopupListResponse(popups),
	})
}

func (h *PopupHandler) GetPopupByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	popup, err := h.service.GetPopup(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, "failed to load popup", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"popup":   dto.NewPopupResponse(popup),
	})
}

func (h *PopupHandler) CreatePopup(c *gin.Context) {
	var req dto.CreatePopupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "missing required fields", validator.FormatValidationError(err))
		return
	}

	popup, err := h.service.CreatePopup(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, "failed to create popup", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"popup":   dto.NewPopupResponse(popup),
		"message": "popup created successfully",
	})
}

func (h *PopupHandler) UpdatePopup(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req dto.UpdatePopupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body", validator.FormatValidationError(err))
		return
	}

	popup, err := h.service.UpdatePopup(c.Request.Context(), id, req)
	if err != nil {
		response.ResponseError(c, "failed to update popup", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"popup":   dto.NewPopupResponse(popup),
		"message": "popup updated successfully",
	})
}

func (h *PopupHandler) TogglePopup(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req dto.TogglePopupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "enabled parameter is required", validator.FormatValidationError(err))
		return
	}

	popup, err := h.service.TogglePopup(c.Request.Context(), id, *req.Enabled)
	if err != nil {
		response.ResponseError(c, "failed to toggle popup", err)
		return
	}

	message := "popup disabled"
	if popup.Enabled {
		message = "popup enabled"
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"popup":   dto.NewPopupResponse(popup),
		"message": message,
	})
}

func (h *PopupHandler) DeletePopup(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.DeletePopup(c.Request.Context(), id); err != nil {
		response.ResponseError(c, "failed to delete popup", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "popup deleted successfully",
	})
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid popup id", "popup id must be a positive integer")
		return 0, false
	}
	return uint(id), true
}
