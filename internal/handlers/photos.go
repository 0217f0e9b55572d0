package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Nikocoro/prubas123/internal/service"
)

// multipart framing on top of the file itself
const formOverhead = 1 << 20

type uploadResponse struct {
	URL string `json:"url"`
}

func (h HandlerSet) UploadPhoto(c *gin.Context) {
	limit := h.cfg.HTTP.MaxUploadMB<<20 + formOverhead
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.respondError(c, fmt.Errorf("%w: file required", service.ErrInvalidPhoto))
		return
	}
	defer file.Close()

	url, err := h.photoService.Upload(c.Request.Context(), service.UploadInput{
		File:        file,
		ContentType: header.Header.Get("Content-Type"),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, uploadResponse{URL: url})
}
