package structs

import "verifix/models"

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string           `json:"token"`
	User  models.Principal `json:"user"`
}
