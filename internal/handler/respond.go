package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/FanzeeApp/sotvolbackend/internal/apperr"
)

func writeError(c *gin.Context, err error) {
	c.JSON(apperr.StatusOf(err), gin.H{"error": apperr.MessageOf(err)})
}
