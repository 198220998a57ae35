package controllers

import (
	"context"
	"log"
	"net/http"
	"strings"

	"verifix/structs"

	"github.com/gin-gonic/gin"
)

// Assistant answers one KYC question; it always returns a reply
type Assistant interface {
	Ask(ctx context.Context, question string) string
}

type SevaController struct {
	agent Assistant
}

func NewSevaController(agent Assistant) *SevaController {
	return &SevaController{agent: agent}
}

func (sc *SevaController) Ask(c *gin.Context) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Seva Agent error: %v", r)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Seva Agent failed"})
		}
	}()

	var request structs.SevaAgentRequest
	if err := c.ShouldBindJSON(&request); err != nil || strings.TrimSpace(request.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
		return
	}

	reply := sc.agent.Ask(c.Request.Context(), request.Message)
	c.JSON(http.StatusOK, structs.SevaAgentResponse{Reply: reply})
}
