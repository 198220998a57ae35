package routes

import (
	"verifix/controllers"
	"verifix/websocket"

	"github.com/gin-gonic/gin"
)

func SetupSevaRoutes(router gin.IRouter, sc *controllers.SevaController, chat *websocket.SevaChatHandler) {
	router.POST("/api/seva-agent", sc.Ask)
	router.GET("/ws/seva-agent", chat.Serve)
}
