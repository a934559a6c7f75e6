package response

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"miuhub.app/communityserver/pkg/apperror"
)

// ResponseError standardized error response. Every error body carries a
// human-readable "message" field alongside the short "error" label.
func ResponseError(c *gin.Context, label string, err error) {
	code := apperror.MapErrorToStatus(err)

	// Log internal errors
	if code == http.StatusInternalServerError {
		log.Printf("[Internal Error]: %v", err)
	}

	c.JSON(code, gin.H{"error": label, "message": err.Error()})
}

// BadRequest responds with 400 and the given message.
func BadRequest(c *gin.Context, label, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": label, "message": message})
}
