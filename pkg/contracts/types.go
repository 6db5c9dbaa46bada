// Package contracts defines the request-scoped types exchanged between the
// agent-hosting layer and the governance engine. These types are created by
// the caller, owned by the call, and never mutated by the engine.
package contracts

import "time"

// ContextType identifies the environment an agent is operating in.
// The context influences scoring weight, never ownership.
type ContextType string

const (
	ContextDirectSession ContextType = "direct_session"
	ContextMultiAgent    ContextType = "multi_agent"
	ContextExternalAPI   ContextType = "external_api"
	ContextWrappedAgent  ContextType = "wrapped_agent"
	ContextCrossPlatform ContextType = "cross_platform"
)

// Valid reports whether t is one of the known context types.
func (t ContextType) Valid() bool {
	switch t {
	case ContextDirectSession, ContextMultiAgent, ContextExternalAPI,
		ContextWrappedAgent, ContextCrossPlatform:
		return true
	}
	return false
}

// AgentContext identifies the caller environment for a single request.
// Immutable once constructed.
type AgentContext struct {
	AgentID     string      `json:"agent_id"`
	ContextType ContextType `json:"context_type"`
	Provider    string      `json:"provider,omitempty"`
}

// Interaction is one conversational turn. It produces exactly one trust
// management result and, independently, zero or one autonomy analysis.
type Interaction struct {
	InteractionID string              `json:"interaction_id"`
	Input         InteractionInput    `json:"input"`
	Output        *InteractionOutput  `json:"output,omitempty"`
	Governance    *GovernanceMetadata `json:"governance,omitempty"`
}

// InteractionInput carries the request side of a turn.
type InteractionInput struct {
	Message string `json:"message"`
}

// InteractionOutput carries the agent's response, when one exists.
type InteractionOutput struct {
	Response string `json:"response"`
}

// GovernanceMetadata is supplied by the caller when it has already computed
// emotional-state or compliance signals elsewhere. All fields are optional.
type GovernanceMetadata struct {
	EmotionalState     *EmotionalState         `json:"emotional_state,omitempty"`
	PolicyCompliance   *PolicyCompliance       `json:"policy_compliance,omitempty"`
	AutonomousThinking *AutonomousThinkingMeta `json:"autonomous_thinking,omitempty"`
}

// EmotionalState is a declared safety/confidence reading in [0,1].
type EmotionalState struct {
	OverallSafety float64 `json:"overall_safety"`
	Confidence    float64 `json:"confidence"`
}

// PolicyCompliance is a declared compliance reading in [0,1].
type PolicyCompliance struct {
	OverallCompliance float64 `json:"overall_compliance"`
}

// AutonomousThinkingMeta records a prior autonomy decision attached by the
// caller, if any.
type AutonomousThinkingMeta struct {
	IsRequired        bool `json:"is_required"`
	PermissionGranted bool `json:"permission_granted"`
}

// TrustHistoryEntry is the authoritative record of one score mutation.
// Entries are append-only, ordered by time, and never mutated or reordered.
type TrustHistoryEntry struct {
	EntryID    string    `json:"entry_id"`
	Timestamp  time.Time `json:"timestamp"`
	TrustScore float64   `json:"trust_score"`
	Event      string    `json:"event"`
	Impact     float64   `json:"impact"`
	Context    string    `json:"context"`
}
