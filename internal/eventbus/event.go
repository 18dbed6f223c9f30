package eventbus

type Type string

const (
	TypeAgentRegistered     Type = "agent.registered"
	TypeTaskCompleted       Type = "agent.task_completed"
	TypeVouched             Type = "vouch.recorded"
	TypeVouchWithdrawn      Type = "vouch.withdrawn"
	TypeTrustPropagated     Type = "trust.propagated"
	TypeDecayed             Type = "agent.decayed"
	TypeSlashed             Type = "agent.slashed"
	TypeProposalCreated     Type = "proposal.created"
	TypeVoteCast            Type = "proposal.vote_cast"
	TypeProposalExecuted    Type = "proposal.executed"
	TypeRegistryInitialized Type = "oracle.registry_initialized"
	TypeOracleAdded         Type = "oracle.added"
	TypeAttested            Type = "oracle.attested"
	TypeBadgeMinted         Type = "badge.minted"
	TypeBadgeUpgraded       Type = "badge.upgraded"
	TypeProofSubmitted      Type = "zkproof.submitted"

	// Custody intents. The custody side owns balances and token state.
	TypeStakeLocked   Type = "custody.stake_locked"
	TypeStakeReleased Type = "custody.stake_released"
	TypeBountyOwed    Type = "custody.bounty_owed"
	TypeBadgeIssue    Type = "custody.badge_mint"
)

// IsCustodyIntent reports whether t asks the custody side to move value.
func (t Type) IsCustodyIntent() bool {
	switch t {
	case TypeStakeLocked, TypeStakeReleased, TypeBountyOwed, TypeBadgeIssue:
		return true
	}
	return false
}

type Event struct {
	ID         string            `json:"id"`
	Type       Type              `json:"type"`
	ResourceID string            `json:"resource_id"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	CreatedAt  int64             `json:"created_at"`
}
