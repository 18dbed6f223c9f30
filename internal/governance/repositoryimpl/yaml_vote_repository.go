package repositoryimpl

import (
	"context"
	"errors"

	"gopkg.in/yaml.v3"

	"github.com/agentrep/trustledger/internal/governance"
	"github.com/agentrep/trustledger/internal/identity"
	"github.com/agentrep/trustledger/internal/ledgererr"
	"github.com/agentrep/trustledger/pkg/cerr"
	"github.com/agentrep/trustledger/pkg/storage"
)

type YAMLVoteRepository struct {
	storage storage.Storage
}

func NewYAMLVoteRepository(s storage.Storage) *YAMLVoteRepository {
	return &YAMLVoteRepository{storage: s}
}

func votePath(proposalID string, voter identity.ID) string {
	return identity.Key(identity.NamespaceVote, proposalID, voter.String()) + ".yaml"
}

func (r *YAMLVoteRepository) Create(ctx context.Context, v *governance.Vote) error {
	p := votePath(v.ProposalID, v.Voter)
	exists, err := r.storage.Exists(ctx, p)
	if err != nil {
		return cerr.WrapStorageReadError("vote", err)
	}
	if exists {
		return ledgererr.ErrAlreadyVoted
	}
	data, err := yaml.Marshal(v)
	if err != nil {
		return cerr.WrapMarshalError("vote", err)
	}
	if err := r.storage.Write(ctx, p, data); err != nil {
		return cerr.WrapStorageWriteError("vote", err)
	}
	return nil
}

func (r *YAMLVoteRepository) Get(ctx context.Context, proposalID string, voter identity.ID) (*governance.Vote, error) {
	data, err := r.storage.Read(ctx, votePath(proposalID, voter))
	if err != nil {
		return nil, cerr.WrapStorageReadError("vote", err)
	}
	var v governance.Vote
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, cerr.WrapUnmarshalError("vote", err)
	}
	return &v, nil
}

func (r *YAMLVoteRepository) ListByProposal(ctx context.Context, proposalID string) ([]*governance.Vote, error) {
	paths, err := r.storage.List(ctx, identity.Key(identity.NamespaceVote, proposalID))
	if err != nil {
		return nil, cerr.WrapStorageReadError("votes", err)
	}
	votes := make([]*governance.Vote, 0, len(paths))
	for _, p := range paths {
		data, err := r.storage.Read(ctx, p)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			return nil, cerr.WrapStorageReadError("vote", err)
		}
		var v governance.Vote
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, cerr.WrapUnmarshalError("vote", err)
		}
		votes = append(votes, &v)
	}
	return votes, nil
}
