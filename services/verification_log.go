package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"verifix/models"

	"github.com/oklog/ulid/v2"
)

const AnonymousUser = "anonymous"

// VerificationLogStore records relay outcomes for the admin dashboard
type VerificationLogStore interface {
	Append(ctx context.Context, entry models.VerificationLog) error
	// List returns entries newest first, filtered on user name or id when search is set.
	// A limit of zero means no limit.
	List(ctx context.Context, search string, limit int) ([]models.VerificationLog, error)
}

// NewVerificationLog builds the log entry for one completed verification
func NewVerificationLog(req models.VerificationRequest, res models.VerificationResult, user *models.Principal, at time.Time) models.VerificationLog {
	entry := models.VerificationLog{
		ID:           "VER-" + ulid.Make().String(),
		UserEmail:    AnonymousUser,
		UserName:     AnonymousUser,
		DeclaredType: req.DeclaredType,
		DocType:      req.DeclaredType.DisplayName(),
		CardType:     res.CardType,
		FraudScore:   res.FraudScore,
		Status:       models.TierForScore(res.FraudScore),
		FraudFlags:   res.FraudFlags,
		FileName:     req.FileName,
		CreatedAt:    at.UTC(),
	}
	if user != nil {
		entry.UserEmail = user.Email
		entry.UserName = user.Name
	}
	return entry
}

// MatchesSearch reports whether entry matches a case-insensitive search on user name or id.
func MatchesSearch(entry models.VerificationLog, search string) bool {
	q := strings.ToLower(strings.TrimSpace(search))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(entry.UserName), q) ||
		strings.Contains(strings.ToLower(entry.ID), q)
}

// MemoryVerificationLogStore keeps the log in process memory
type MemoryVerificationLogStore struct {
	mu      sync.RWMutex
	entries []models.VerificationLog
}

func NewMemoryVerificationLogStore() *MemoryVerificationLogStore {
	return &MemoryVerificationLogStore{}
}

func (s *MemoryVerificationLogStore) Append(ctx context.Context, entry models.VerificationLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

func (s *MemoryVerificationLogStore) List(ctx context.Context, search string, limit int) ([]models.VerificationLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.VerificationLog, 0, len(s.entries))
	for i := len(s.entries) - 1; i >= 0; i-- {
		e := s.entries[i]
		if !MatchesSearch(e, search) {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// BuildAnalytics summarizes verification logs into dashboard figures
func BuildAnalytics(entries []models.VerificationLog) models.Analytics {
	a := models.Analytics{
		Total: len(entries),
		RiskDistribution: []models.RiskCount{
			{Risk: models.TierSafe},
			{Risk: models.TierRisky},
			{Risk: models.TierFraud},
		},
		DocTypeDistribution: []models.DocTypeCount{},
		FraudAlerts:         []models.FraudAlert{},
	}

	docCounts := map[string]int{}
	for _, e := range entries {
		tier := models.TierForScore(e.FraudScore)
		for i := range a.RiskDistribution {
			if a.RiskDistribution[i].Risk == tier {
				a.RiskDistribution[i].Count++
			}
		}

		name := e.DocType
		if name == "" {
			name = e.DeclaredType.DisplayName()
		}
		docCounts[name]++

		if alert, ok := alertFor(e, tier); ok {
			a.FraudAlerts = append(a.FraudAlerts, alert)
		}
	}

	for name, n := range docCounts {
		a.DocTypeDistribution = append(a.DocTypeDistribution, models.DocTypeCount{Name: name, Value: n})
	}
	sort.Slice(a.DocTypeDistribution, func(i, j int) bool {
		if a.DocTypeDistribution[i].Value != a.DocTypeDistribution[j].Value {
			return a.DocTypeDistribution[i].Value > a.DocTypeDistribution[j].Value
		}
		return a.DocTypeDistribution[i].Name < a.DocTypeDistribution[j].Name
	})
	sort.SliceStable(a.FraudAlerts, func(i, j int) bool {
		return a.FraudAlerts[i].Time.After(a.FraudAlerts[j].Time)
	})
	return a
}

func alertFor(e models.VerificationLog, tier models.Tier) (models.FraudAlert, bool) {
	alert := models.FraudAlert{ID: e.ID, User: e.UserName, Time: e.CreatedAt}
	switch tier {
	case models.TierFraud:
		alert.Reason = "Document tampering detected"
		alert.Severity = "High"
		if e.FraudScore >= 80 {
			alert.Severity = "Critical"
		}
	case models.TierRisky:
		alert.Reason = "Suspicious pattern match"
		alert.Severity = "Medium"
	default:
		return models.FraudAlert{}, false
	}
	if len(e.FraudFlags) > 0 {
		alert.Reason += ": " + strings.Join(e.FraudFlags, ", ")
	}
	return alert, true
}
