package structs

import "verifix/models"

type VerificationListResponse struct {
	Verifications []models.VerificationLog `json:"verifications"`
	Total         int                      `json:"total"`
}
