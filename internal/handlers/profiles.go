package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Nikocoro/prubas123/internal/models"
	"github.com/Nikocoro/prubas123/internal/service"
)

type profileRequest struct {
	ProfileID  string            `json:"profileId"`
	Name       string            `json:"name"`
	Photo      string            `json:"photo"`
	Links      models.StringList `json:"links"`
	Categories models.StringList `json:"categories"`
}

func (r profileRequest) input() service.ProfileInput {
	return service.ProfileInput{
		Name:       r.Name,
		Photo:      r.Photo,
		Links:      r.Links,
		Categories: r.Categories,
	}
}

type deleteProfileRequest struct {
	ProfileID string `json:"profileId"`
}

func (h HandlerSet) ListProfiles(c *gin.Context) {
	profiles, err := h.profileService.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	docs := make([]models.ProfileDocument, 0, len(profiles))
	for _, p := range profiles {
		docs = append(docs, p.Document())
	}

	c.JSON(http.StatusOK, docs)
}

func (h HandlerSet) AddProfile(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, fmt.Errorf("%w: %w", errInvalidBody, err))
		return
	}

	id, err := h.profileService.Create(c.Request.Context(), req.input())
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.log.Debug().Str("profile_id", id).Msg("profile created")
	c.JSON(http.StatusOK, messageResponse{Message: "profile created"})
}

func (h HandlerSet) EditProfile(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, fmt.Errorf("%w: %w", errInvalidBody, err))
		return
	}

	if err := h.profileService.Update(c.Request.Context(), req.ProfileID, req.input()); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, messageResponse{Message: "profile updated"})
}

func (h HandlerSet) DeleteProfile(c *gin.Context) {
	var req deleteProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, fmt.Errorf("%w: %w", errInvalidBody, err))
		return
	}

	if err := h.profileService.Delete(c.Request.Context(), req.ProfileID); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, messageResponse{Message: "profile deleted"})
}
