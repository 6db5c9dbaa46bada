// Package autonomy decides whether an agent may enter autonomous thinking
// mode for a request: classification of the request into process categories
// and a risk tier, a fail-closed permission gate, and the post-grant
// monitoring schedule.
package autonomy

// ProcessType is the dominant autonomous-process category of a request.
type ProcessType string

const (
	ProcessCuriosity      ProcessType = "curiosity"
	ProcessCreativity     ProcessType = "creativity"
	ProcessMoral          ProcessType = "moral"
	ProcessExistential    ProcessType = "existential"
	ProcessProblemSolving ProcessType = "problem_solving"
)

// RiskLevel is the coarse oversight tier for a request.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// rank orders tiers for comparisons; unknown tiers rank highest so a
// malformed value never loosens oversight.
func (r RiskLevel) rank() int {
	switch r {
	case RiskLow:
		return 0
	case RiskMedium:
		return 1
	case RiskHigh:
		return 2
	default:
		return 3
	}
}

// AtMost reports whether r is no riskier than limit.
func (r RiskLevel) AtMost(limit RiskLevel) bool {
	return r.rank() <= limit.rank()
}

// PermissionSource records which rule resolved a gate decision, for audit.
type PermissionSource string

const (
	SourceTrustBased PermissionSource = "trust_based"
	SourceUserGrant  PermissionSource = "user_granted"
	SourceUserDeny   PermissionSource = "user_denied"
	SourceAutoDeny   PermissionSource = "auto_denied"
)

// AutonomyLevel bounds how freely a granted agent may operate.
type AutonomyLevel string

const (
	AutonomyRestricted AutonomyLevel = "restricted"
	AutonomyLimited    AutonomyLevel = "limited"
	AutonomyStandard   AutonomyLevel = "standard"
	AutonomyEnhanced   AutonomyLevel = "enhanced"
)

// Analysis is the classification of one request. Immutable once computed;
// re-analysis requires a new interaction id.
type Analysis struct {
	IsRequired           bool        `json:"is_required"`
	ProcessType          ProcessType `json:"process_type"`
	RiskLevel            RiskLevel   `json:"risk_level"`
	Triggers             []string    `json:"triggers"`
	Reasoning            string      `json:"reasoning"`
	PermissionRequired   bool        `json:"permission_required"`
	TrustThreshold       float64     `json:"trust_threshold"`
	EmotionalSafetyCheck bool        `json:"emotional_safety_check"`
}

// Monitoring is the post-grant observation cadence and alert set.
type Monitoring struct {
	Enabled          bool     `json:"enabled"`
	FrequencySeconds int      `json:"frequency_seconds"`
	Alerts           []string `json:"alerts"`
}

// Result is the full autonomy decision returned to the caller.
type Result struct {
	Analysis          Analysis         `json:"analysis"`
	PermissionGranted bool             `json:"permission_granted"`
	PermissionSource  PermissionSource `json:"permission_source"`
	AutonomyLevel     AutonomyLevel    `json:"autonomy_level"`
	Safeguards        []string         `json:"safeguards"`
	Monitoring        Monitoring       `json:"monitoring"`
}

// trustThresholdFor maps a risk tier to the trust score that clears it.
func trustThresholdFor(risk RiskLevel) float64 {
	switch risk {
	case RiskHigh:
		return 0.9
	case RiskMedium:
		return 0.8
	default:
		return 0.7
	}
}
