package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const healthMessage = "Backend running ✔"

func HealthRouteHandler(ctx *gin.Context) {
	ctx.String(http.StatusOK, healthMessage)
}
