package controllers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"verifix/middlewares"
	"verifix/services"
	"verifix/structs"
	"verifix/utils"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	verifier services.CredentialVerifier
	sessions services.SessionStore
	tokens   *utils.JWTManager
	ttl      time.Duration
}

func NewAuthController(verifier services.CredentialVerifier, sessions services.SessionStore, tokens *utils.JWTManager, ttl time.Duration) *AuthController {
	return &AuthController{verifier: verifier, sessions: sessions, tokens: tokens, ttl: ttl}
}

// Login checks credentials, opens a session and returns a bearer token for it
func (ac *AuthController) Login(c *gin.Context) {
	var request structs.LoginRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "message": err.Error()})
		return
	}

	ctx := c.Request.Context()
	user, err := ac.verifier.Verify(ctx, request.Email, request.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		log.Printf("Login: credential check failed for %s: %v", request.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed", "message": err.Error()})
		return
	}

	sess, err := ac.sessions.Create(ctx, user, ac.ttl)
	if err != nil {
		log.Printf("Login: failed to create session for %s: %v", user.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	token, err := ac.tokens.Generate(sess.ID, user.Email, string(user.Role), ac.ttl)
	if err != nil {
		ac.sessions.Destroy(ctx, sess.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token", "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, structs.LoginResponse{Token: token, User: user})
}

// Logout destroys the current session; its token stops working immediately
func (ac *AuthController) Logout(c *gin.Context) {
	sess, ok := middlewares.CurrentSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Login required"})
		return
	}
	if err := ac.sessions.Destroy(c.Request.Context(), sess.ID); err != nil && !errors.Is(err, services.ErrSessionNotFound) {
		log.Printf("Logout: failed to destroy session %s: %v", sess.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log out"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (ac *AuthController) Session(c *gin.Context) {
	sess, ok := middlewares.CurrentSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Login required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": sess.User, "expiresAt": sess.ExpiresAt})
}
