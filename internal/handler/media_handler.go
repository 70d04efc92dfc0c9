package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/FanzeeApp/sotvolbackend/internal/repository"
)

// MediaHandler serves stored listing media out of GridFS.
type MediaHandler struct {
	Repo *repository.MediaRepository
}

func (h *MediaHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/media/:id", h.Get)
}

func (h *MediaHandler) Get(c *gin.Context) {
	data, contentType, err := h.Repo.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "media not found"})
		return
	}
	c.Data(http.StatusOK, contentType, data)
}
