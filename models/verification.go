package models

import (
	"time"
)

// DocumentType is the identity document a user declares on upload
type DocumentType string

const (
	DocumentAadhaar DocumentType = "aadhaar"
	DocumentPAN     DocumentType = "pan"
	DocumentDL      DocumentType = "dl"
)

// ParseDocumentType accepts the wire value of a declared document type.
// An empty value is allowed and means the client did not declare one.
func ParseDocumentType(s string) (DocumentType, bool) {
	switch DocumentType(s) {
	case DocumentAadhaar, DocumentPAN, DocumentDL, "":
		return DocumentType(s), true
	}
	return "", false
}

// DisplayName is the label the admin dashboard groups documents under
func (d DocumentType) DisplayName() string {
	switch d {
	case DocumentAadhaar:
		return "Aadhaar"
	case DocumentPAN:
		return "PAN"
	case DocumentDL:
		return "Driving License"
	}
	return "Unknown"
}

// VerificationRequest is a single document upload on its way to the OCR service
type VerificationRequest struct {
	FileBytes    []byte
	FileName     string
	MimeType     string
	DeclaredType DocumentType
}

// VerificationResult is the stable contract returned by the /verify relay
type VerificationResult struct {
	CardType    string            `json:"cardType"`
	FraudScore  int               `json:"fraudScore"`
	FraudFlags  []string          `json:"fraudFlags"`
	Extracted   map[string]string `json:"extracted"`
	RawText     string            `json:"rawText"`
	CleanedText string            `json:"cleanedText"`
}

// VerificationLog is one recorded relay outcome, shown on the admin dashboard
type VerificationLog struct {
	ID           string       `bson:"_id" json:"id"`
	UserEmail    string       `bson:"userEmail" json:"userEmail"`
	UserName     string       `bson:"userName" json:"userName"`
	DeclaredType DocumentType `bson:"declaredType" json:"declaredType"`
	DocType      string       `bson:"docType" json:"docType"`
	CardType     string       `bson:"cardType" json:"cardType"`
	FraudScore   int          `bson:"fraudScore" json:"fraudScore"`
	Status       Tier         `bson:"status" json:"status"`
	FraudFlags   []string     `bson:"fraudFlags" json:"fraudFlags"`
	FileName     string       `bson:"fileName" json:"fileName"`
	CreatedAt    time.Time    `bson:"createdAt" json:"date"`
}

// RiskCount is one bar of the risk distribution chart
type RiskCount struct {
	Risk  Tier `json:"risk"`
	Count int  `json:"count"`
}

// DocTypeCount is one slice of the document type pie chart
type DocTypeCount struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// FraudAlert flags a verification an operator should look at
type FraudAlert struct {
	ID       string    `json:"id"`
	User     string    `json:"user"`
	Reason   string    `json:"reason"`
	Severity string    `json:"severity"`
	Time     time.Time `json:"time"`
}

// Analytics summarizes the verification log for the admin dashboard
type Analytics struct {
	Total               int            `json:"total"`
	RiskDistribution    []RiskCount    `json:"riskDistribution"`
	DocTypeDistribution []DocTypeCount `json:"docTypeDistribution"`
	FraudAlerts         []FraudAlert   `json:"fraudAlerts"`
}
