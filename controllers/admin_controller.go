package controllers

import (
	"log"
	"net/http"
	"strconv"

	"verifix/services"
	"verifix/structs"

	"github.com/gin-gonic/gin"
)

type AdminController struct {
	logs services.VerificationLogStore
}

func NewAdminController(logs services.VerificationLogStore) *AdminController {
	return &AdminController{logs: logs}
}

// Verifications lists logged verifications, newest first
// Query: search (user name or id), limit
func (ac *AdminController) Verifications(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = n
	}

	entries, err := ac.logs.List(c.Request.Context(), c.Query("search"), limit)
	if err != nil {
		log.Printf("Admin: failed to list verifications: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch verifications", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, structs.VerificationListResponse{Verifications: entries, Total: len(entries)})
}

func (ac *AdminController) Analytics(c *gin.Context) {
	entries, err := ac.logs.List(c.Request.Context(), "", 0)
	if err != nil {
		log.Printf("Admin: failed to load analytics: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch analytics", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, services.BuildAnalytics(entries))
}
