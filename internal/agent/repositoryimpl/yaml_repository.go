package repositoryimpl

import (
	"context"
	"errors"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/agentrep/trustledger/internal/agent"
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

func path(owner identity.ID) string {
	return identity.Key(identity.NamespaceAgent, owner.String()) + ".yaml"
}

func (r *YAMLRepository) Create(ctx context.Context, p *agent.Profile) error {
	exists, err := r.storage.Exists(ctx, path(p.Owner))
	if err != nil {
		return cerr.WrapStorageReadError("agent", err)
	}
	if exists {
		return ledgererr.ErrAgentAlreadyRegistered
	}
	return r.write(ctx, p)
}

func (r *YAMLRepository) Get(ctx context.Context, owner identity.ID) (*agent.Profile, error) {
	data, err := r.storage.Read(ctx, path(owner))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ledgererr.ErrAgentNotRegistered
	}
	if err != nil {
		return nil, cerr.WrapStorageReadError("agent", err)
	}
	var p agent.Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, cerr.WrapUnmarshalError("agent", err)
	}
	return &p, nil
}

func (r *YAMLRepository) List(ctx context.Context, limit, offset int) ([]*agent.Profile, int, error) {
	paths, err := r.storage.List(ctx, identity.NamespaceAgent)
	if err != nil {
		return nil, 0, cerr.WrapStorageReadError("agents", err)
	}
	total := len(paths)
	sort.Strings(paths)

	if offset >= len(paths) {
		return nil, total, nil
	}
	paths = paths[offset:]
	if limit > 0 && len(paths) > limit {
		paths = paths[:limit]
	}

	profiles := make([]*agent.Profile, 0, len(paths))
	for _, p := range paths {
		data, err := r.storage.Read(ctx, p)
		if err != nil {
			continue
		}
		var prof agent.Profile
		if err := yaml.Unmarshal(data, &prof); err != nil {
			continue
		}
		profiles = append(profiles, &prof)
	}
	return profiles, total, nil
}

func (r *YAMLRepository) Update(ctx context.Context, p *agent.Profile) error {
	exists, err := r.storage.Exists(ctx, path(p.Owner))
	if err != nil {
		return cerr.WrapStorageReadError("agent", err)
	}
	if !exists {
		return ledgererr.ErrAgentNotRegistered
	}
	return r.write(ctx, p)
}

func (r *YAMLRepository) write(ctx context.Context, p *agent.Profile) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return cerr.WrapMarshalError("agent", err)
	}
	if err := r.storage.Write(ctx, path(p.Owner), data); err != nil {
		return cerr.WrapStorageWriteError("agent", err)
	}
	return nil
}
