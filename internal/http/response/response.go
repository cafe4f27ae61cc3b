package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ReplyEnvelope is the /chat body for both answers and failures.
type ReplyEnvelope struct {
	Reply string `json:"reply"`
}

type StatusEnvelope struct {
	Status string `json:"status"`
}

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondReply(c *gin.Context, status int, reply string) {
	c.JSON(status, ReplyEnvelope{Reply: reply})
}

func RespondStatus(c *gin.Context, status int, value string) {
	c.JSON(status, StatusEnvelope{Status: value})
}
