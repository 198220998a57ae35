package models

// Tier is the risk classification of a fraud score
type Tier string

const (
	TierSafe  Tier = "Safe"
	TierRisky Tier = "Risky"
	TierFraud Tier = "Fraud"
)

const (
	MinFraudScore = 0
	MaxFraudScore = 100

	// Lower bounds are inclusive.
	riskyThreshold = 20
	fraudThreshold = 50
)

// StatusInfo is everything a client needs to render a verification outcome
type StatusInfo struct {
	Tier        Tier   `json:"tier"`
	Label       string `json:"label"`
	Color       string `json:"color"`
	BgColor     string `json:"bgColor"`
	BorderColor string `json:"borderColor"`
	Icon        string `json:"icon"`
	Headline    string `json:"headline"`
	Message     string `json:"message"`
}

var statusTable = map[Tier]StatusInfo{
	TierSafe: {
		Tier:        TierSafe,
		Label:       "Safe",
		Color:       "text-green-400",
		BgColor:     "bg-green-500/10",
		BorderColor: "border-green-500/20",
		Icon:        "check-circle",
		Headline:    "Document Verified",
		Message:     "Your document has passed all security checks. No fraud indicators detected.",
	},
	TierRisky: {
		Tier:        TierRisky,
		Label:       "Risky",
		Color:       "text-yellow-400",
		BgColor:     "bg-yellow-500/10",
		BorderColor: "border-yellow-500/20",
		Icon:        "alert-triangle",
		Headline:    "Manual Review Required",
		Message:     "Some irregularities detected. Please contact support for verification.",
	},
	TierFraud: {
		Tier:        TierFraud,
		Label:       "Fraud Detected",
		Color:       "text-red-400",
		BgColor:     "bg-red-500/10",
		BorderColor: "border-red-500/20",
		Icon:        "x-circle",
		Headline:    "Verification Failed",
		Message:     "High fraud risk detected. Document tampering or forgery suspected.",
	},
}

// ClampScore pins a score into [0,100].
func ClampScore(score int) int {
	if score < MinFraudScore {
		return MinFraudScore
	}
	if score > MaxFraudScore {
		return MaxFraudScore
	}
	return score
}

// TierForScore classifies a fraud score. Out-of-range scores are clamped first.
func TierForScore(score int) Tier {
	score = ClampScore(score)
	switch {
	case score < riskyThreshold:
		return TierSafe
	case score < fraudThreshold:
		return TierRisky
	default:
		return TierFraud
	}
}

// StatusForScore returns the display bundle for a fraud score
func StatusForScore(score int) StatusInfo {
	return statusTable[TierForScore(score)]
}
