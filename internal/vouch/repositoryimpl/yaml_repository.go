package repositoryimpl

import (
	"context"
	"errors"

	"gopkg.in/yaml.v3"

	"github.com/agentrep/trustledger/internal/identity"
	"github.com/agentrep/trustledger/internal/ledgererr"
	"github.com/agentrep/trustledger/internal/vouch"
	"github.com/agentrep/trustledger/pkg/cerr"
	"github.com/agentrep/trustledger/pkg/storage"
)

type YAMLRepository struct {
	storage storage.Storage
}

func NewYAMLRepository(s storage.Storage) *YAMLRepository {
	return &YAMLRepository{storage: s}
}

// Records live under their target so incoming vouches list as one directory.
func path(voucher, target identity.ID) string {
	return identity.Key(identity.NamespaceVouch, target.String(), voucher.String()) + ".yaml"
}

func (r *YAMLRepository) Get(ctx context.Context, voucher, target identity.ID) (*vouch.Record, error) {
	data, err := r.storage.Read(ctx, path(voucher, target))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ledgererr.ErrVouchNotFound
	}
	if err != nil {
		return nil, cerr.WrapStorageReadError("vouch", err)
	}
	var rec vouch.Record
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return nil, cerr.WrapUnmarshalError("vouch", err)
	}
	return &rec, nil
}

func (r *YAMLRepository) Put(ctx context.Context, rec *vouch.Record) error {
	data, err := yaml.Marshal(rec)
	if err != nil {
		return cerr.WrapMarshalError("vouch", err)
	}
	if err := r.storage.Write(ctx, path(rec.Voucher, rec.VouchedFor), data); err != nil {
		return cerr.WrapStorageWriteError("vouch", err)
	}
	return nil
}

func (r *YAMLRepository) Delete(ctx context.Context, voucher, target identity.ID) error {
	err := r.storage.Delete(ctx, path(voucher, target))
	if errors.Is(err, storage.ErrNotFound) {
		return ledgererr.ErrVouchNotFound
	}
	if err != nil {
		return cerr.WrapStorageDeleteError("vouch", err)
	}
	return nil
}

func (r *YAMLRepository) ListByTarget(ctx context.Context, target identity.ID) ([]*vouch.Record, error) {
	paths, err := r.storage.List(ctx, identity.Key(identity.NamespaceVouch, target.String()))
	if err != nil {
		return nil, cerr.WrapStorageReadError("vouches", err)
	}
	records := make([]*vouch.Record, 0, len(paths))
	for _, p := range paths {
		data, err := r.storage.Read(ctx, p)
		if err != nil {
			return nil, cerr.WrapStorageReadError("vouch", err)
		}
		var rec vouch.Record
		if err := yaml.Unmarshal(data, &rec); err != nil {
			return nil, cerr.WrapUnmarshalError("vouch", err)
		}
		records = append(records, &rec)
	}
	return records, nil
}
