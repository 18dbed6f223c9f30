package repositoryimpl

import (
	"context"
	"errors"

	"gopkg.in/yaml.v3"

	"github.com/agentrep/trustledger/internal/badge"
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

func path(agent identity.ID) string {
	return identity.Key(identity.NamespaceBadge, agent.String()) + ".yaml"
}

func (r *YAMLRepository) Create(ctx context.Context, b *badge.Badge) error {
	exists, err := r.storage.Exists(ctx, path(b.Agent))
	if err != nil {
		return cerr.WrapStorageReadError("badge", err)
	}
	if exists {
		return ledgererr.ErrBadgeAlreadyMinted
	}
	return r.write(ctx, b)
}

func (r *YAMLRepository) Get(ctx context.Context, agent identity.ID) (*badge.Badge, error) {
	data, err := r.storage.Read(ctx, path(agent))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ledgererr.ErrBadgeNotFound
	}
	if err != nil {
		return nil, cerr.WrapStorageReadError("badge", err)
	}
	var b badge.Badge
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, cerr.WrapUnmarshalError("badge", err)
	}
	return &b, nil
}

func (r *YAMLRepository) Update(ctx context.Context, b *badge.Badge) error {
	exists, err := r.storage.Exists(ctx, path(b.Agent))
	if err != nil {
		return cerr.WrapStorageReadError("badge", err)
	}
	if !exists {
		return ledgererr.ErrBadgeNotFound
	}
	return r.write(ctx, b)
}

func (r *YAMLRepository) write(ctx context.Context, b *badge.Badge) error {
	data, err := yaml.Marshal(b)
	if err != nil {
		return cerr.WrapMarshalError("badge", err)
	}
	if err := r.storage.Write(ctx, path(b.Agent), data); err != nil {
		return cerr.WrapStorageWriteError("badge", err)
	}
	return nil
}
