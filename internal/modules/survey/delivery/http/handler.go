package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"miuhub.app/communityserver/internal/modules/survey/dto"
	surveyService "miuhub.app/communityserver/internal/modules/survey/service"
	"miuhub.app/communityserver/pkg/response"
	"miuhub.app/communityserver/pkg/validator"
)

type SurveyHandler struct {
	service surveyService.SurveyService
}

func NewSurveyHandler(service surveyService.SurveyService) *SurveyHandler {
	return &SurveyHandler{service: service}
}

func (h *SurveyHandler) RecordResponse(c *gin.Context) {
	popupID, ok := parsePopupID(c)
	if !ok {
		return
	}

	var req dto.RecordResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "missing required fields", validator.FormatValidationError(err))
		return
	}

	counts, err := h.service.RecordResponse(c.Request.Context(), popupID, req.SurveyID, *req.SelectedItemIndex)
	if err != nil {
		response.ResponseError(c, "failed to record survey response", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"counts":  counts,
	})
}

func (h *SurveyHandler) GetResponses(c *gin.Context) {
	popupID, ok := parsePopupID(c)
	if !ok {
		return
	}

	responses, results, err := h.service.GetResponses(c.Request.Context(), popupID)
	if err != nil {
		response.ResponseError(c, "failed to load survey responses", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"responses": responses,
		"results":   results,
	})
}

func parsePopupID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid popup id", "popup id must be a positive integer")
		return 0, false
	}
	return uint(id), true
}
