package repositoryimpl

import (
	"context"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/agentrep/trustledger/internal/identity"
	"github.com/agentrep/trustledger/internal/protocol"
	"github.com/agentrep/trustledger/pkg/cerr"
	"github.com/agentrep/trustledger/pkg/storage"
)

var path = identity.Key(identity.NamespaceProtocol, "config") + ".yaml"

type YAMLRepository struct {
	storage storage.Storage
}

func NewYAMLRepository(s storage.Storage) *YAMLRepository {
	return &YAMLRepository{storage: s}
}

func (r *YAMLRepository) Initialize(ctx context.Context, c *protocol.Config) error {
	if err := c.Params.Validate(); err != nil {
		return err
	}
	exists, err := r.storage.Exists(ctx, path)
	if err != nil {
		return cerr.WrapStorageReadError("protocol config", err)
	}
	if exists {
		return cerr.NewError(cerr.AlreadyExists, "protocol config already initialized", nil)
	}
	return r.write(ctx, c)
}

func (r *YAMLRepository) Get(ctx context.Context) (*protocol.Config, error) {
	data, err := r.storage.Read(ctx, path)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, cerr.NewError(cerr.FailedPrecondition, "protocol config not initialized", err)
	}
	if err != nil {
		return nil, cerr.WrapStorageReadError("protocol config", err)
	}
	var c protocol.Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, cerr.WrapUnmarshalError("protocol config", err)
	}
	return &c, nil
}

func (r *YAMLRepository) Amend(ctx context.Context, a protocol.Amendment) (*protocol.Config, error) {
	if err := a.After.Validate(); err != nil {
		return nil, err
	}
	current, err := r.Get(ctx)
	if err != nil {
		return nil, err
	}
	if current.Revision != a.BaseRevision {
		return nil, cerr.NewError(cerr.Aborted, "protocol config changed concurrently",
			fmt.Errorf("amendment for revision %d, stored revision %d", a.BaseRevision, current.Revision))
	}
	next := &protocol.Config{
		Params:         a.After,
		Revision:       current.Revision + 1,
		LastProposalID: a.ProposalID,
		UpdatedAt:      a.At,
	}
	if err := r.write(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

func (r *YAMLRepository) write(ctx context.Context, c *protocol.Config) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return cerr.WrapMarshalError("protocol config", err)
	}
	if err := r.storage.Write(ctx, path, data); err != nil {
		return cerr.WrapStorageWriteError("protocol config", err)
	}
	return nil
}
