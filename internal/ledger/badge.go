package ledger

import (
	"context"

	"github.com/agentrep/trustledger/internal/badge"
	"github.com/agentrep/trustledger/internal/custody"
	"github.com/agentrep/trustledger/internal/eventbus"
	"github.com/agentrep/trustledger/internal/identity"
)

func badgeKey(id identity.ID) string {
	return identity.Key(identity.NamespaceBadge, id.String())
}

// MintBadge issues agentID's badge and asks custody to mint the
// non-transferable token.
func (l *Ledger) MintBadge(ctx context.Context, agentID identity.ID, metadataURI string) (*badge.Badge, error) {
	if err := validIDs(agentID); err != nil {
		return nil, err
	}
	var out badge.Badge
	err := l.transact(ctx, "MintBadge", []string{agentKey(agentID), badgeKey(agentID)}, func(u *unit) error {
		p, err := u.agents.Get(ctx, agentID)
		if err != nil {
			return err
		}
		b, err := badge.Mint(*p, metadataURI, u.now)
		if err != nil {
			return err
		}
		if err := u.badges.Create(ctx, &b); err != nil {
			return err
		}
		out = b
		u.emit(eventbus.TypeBadgeMinted, agentID.String(), map[string]string{"level": string(b.Level)})
		u.emit(eventbus.TypeBadgeIssue, agentID.String(), map[string]string{
			custody.MetaTo:  agentID.String(),
			custody.MetaRef: metadataURI,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpgradeBadge moves the badge to the level of the holder's current score.
func (l *Ledger) UpgradeBadge(ctx context.Context, agentID identity.ID) (*badge.Badge, badge.Level, error) {
	if err := validIDs(agentID); err != nil {
		return nil, "", err
	}
	var (
		out  badge.Badge
		prev badge.Level
	)
	err := l.transact(ctx, "UpgradeBadge", []string{agentKey(agentID), badgeKey(agentID)}, func(u *unit) error {
		b, err := u.badges.Get(ctx, agentID)
		if err != nil {
			return err
		}
		p, err := u.agents.Get(ctx, agentID)
		if err != nil {
			return err
		}
		next, from, err := badge.Upgrade(*b, *p, u.now)
		if err != nil {
			return err
		}
		if err := u.badges.Update(ctx, &next); err != nil {
			return err
		}
		out, prev = next, from
		u.emit(eventbus.TypeBadgeUpgraded, agentID.String(), map[string]string{
			"from": string(from),
			"to":   string(next.Level),
		})
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return &out, prev, nil
}

// VerifyBadge returns the badge as stored: its level and the score it was
// last set from.
func (l *Ledger) VerifyBadge(ctx context.Context, agentID identity.ID) (*badge.Badge, error) {
	if err := validIDs(agentID); err != nil {
		return nil, err
	}
	defer l.reading(badgeKey(agentID))()
	return l.view().badges.Get(ctx, agentID)
}
