package repositoryimpl

import (
	"context"
	"errors"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/agentrep/trustledger/internal/governance"
	"github.com/agentrep/trustledger/internal/identity"
	"github.com/agentrep/trustledger/internal/ledgererr"
	"github.com/agentrep/trustledger/pkg/cerr"
	"github.com/agentrep/trustledger/pkg/storage"
)

type YAMLRepository struct {
	storage storage.Storage
}

func NewYAMLRepository(s storage.Storage) *YAMLRepository {
	return &YAMLRepository{storage: s}
}

func path(id string) string {
	return identity.Key(identity.NamespaceProposal, id) + ".yaml"
}

func (r *YAMLRepository) Create(ctx context.Context, p *governance.Proposal) error {
	exists, err := r.storage.Exists(ctx, path(p.ID))
	if err != nil {
		return cerr.WrapStorageReadError("proposal", err)
	}
	if exists {
		return cerr.NewError(cerr.AlreadyExists, "proposal already exists", nil)
	}
	return r.write(ctx, p)
}

func (r *YAMLRepository) Get(ctx context.Context, id string) (*governance.Proposal, error) {
	data, err := r.storage.Read(ctx, path(id))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ledgererr.ErrProposalNotFound
	}
	if err != nil {
		return nil, cerr.WrapStorageReadError("proposal", err)
	}
	var p governance.Proposal
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, cerr.WrapUnmarshalError("proposal", err)
	}
	return &p, nil
}

func (r *YAMLRepository) List(ctx context.Context, limit, offset int) ([]*governance.Proposal, int, error) {
	paths, err := r.storage.List(ctx, identity.NamespaceProposal)
	if err != nil {
		return nil, 0, cerr.WrapStorageReadError("proposals", err)
	}
	total := len(paths)

	// ULID ids sort by creation time.
	sort.Strings(paths)

	if offset >= len(paths) {
		return nil, total, nil
	}
	paths = paths[offset:]
	if limit > 0 && len(paths) > limit {
		paths = paths[:limit]
	}

	proposals := make([]*governance.Proposal, 0, len(paths))
	for _, p := range paths {
		data, err := r.storage.Read(ctx, p)
		if err != nil {
			continue
		}
		var prop governance.Proposal
		if err := yaml.Unmarshal(data, &prop); err != nil {
			continue
		}
		proposals = append(proposals, &prop)
	}
	return proposals, total, nil
}

func (r *YAMLRepository) Update(ctx context.Context, p *governance.Proposal) error {
	exists, err := r.storage.Exists(ctx, path(p.ID))
	if err != nil {
		return cerr.WrapStorageReadError("proposal", err)
	}
	if !exists {
		return ledgererr.ErrProposalNotFound
	}
	return r.write(ctx, p)
}

func (r *YAMLRepository) write(ctx context.Context, p *governance.Proposal) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return cerr.WrapMarshalError("proposal", err)
	}
	if err := r.storage.Write(ctx, path(p.ID), data); err != nil {
		return cerr.WrapStorageWriteError("proposal", err)
	}
	return nil
}
