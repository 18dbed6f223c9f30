package repositoryimpl

import (
	"context"
	"errors"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/agentrep/trustledger/internal/identity"
	"github.com/agentrep/trustledger/internal/ledgererr"
	"github.com/agentrep/trustledger/internal/zkproof"
	"github.com/agentrep/trustledger/pkg/cerr"
	"github.com/agentrep/trustledger/pkg/storage"
)

type YAMLRepository struct {
	storage storage.Storage
}

func NewYAMLRepository(s storage.Storage) *YAMLRepository {
	return &YAMLRepository{storage: s}
}

func path(prover identity.ID, id string) string {
	return identity.Key(identity.NamespaceProof, prover.String(), id) + ".yaml"
}

func (r *YAMLRepository) Create(ctx context.Context, rec *zkproof.Record) error {
	p := path(rec.Prover, rec.ID)
	exists, err := r.storage.Exists(ctx, p)
	if err != nil {
		return cerr.WrapStorageReadError("proof", err)
	}
	if exists {
		return cerr.NewError(cerr.AlreadyExists, "proof record already exists", nil)
	}
	data, err := yaml.Marshal(rec)
	if err != nil {
		return cerr.WrapMarshalError("proof", err)
	}
	if err := r.storage.Write(ctx, p, data); err != nil {
		return cerr.WrapStorageWriteError("proof", err)
	}
	return nil
}

func (r *YAMLRepository) Get(ctx context.Context, prover identity.ID, id string) (*zkproof.Record, error) {
	data, err := r.storage.Read(ctx, path(prover, id))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ledgererr.ErrProofNotFound
	}
	if err != nil {
		return nil, cerr.WrapStorageReadError("proof", err)
	}
	var rec zkproof.Record
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return nil, cerr.WrapUnmarshalError("proof", err)
	}
	return &rec, nil
}

// ListByProver returns the prover's records oldest first. ULID ids sort by
// creation time.
func (r *YAMLRepository) ListByProver(ctx context.Context, prover identity.ID) ([]*zkproof.Record, error) {
	paths, err := r.storage.List(ctx, identity.Key(identity.NamespaceProof, prover.String()))
	if err != nil {
		return nil, cerr.WrapStorageReadError("proofs", err)
	}
	sort.Strings(paths)
	out := make([]*zkproof.Record, 0, len(paths))
	for _, p := range paths {
		data, err := r.storage.Read(ctx, p)
		if err != nil {
			return nil, cerr.WrapStorageReadError("proof", err)
		}
		var rec zkproof.Record
		if err := yaml.Unmarshal(data, &rec); err != nil {
			return nil, cerr.WrapUnmarshalError("proof", err)
		}
		out = append(out, &rec)
	}
	return out, nil
}

var keyPath = identity.Key(identity.NamespaceProof, "verification_key") + ".yaml"

type YAMLKeyRepository struct {
	storage storage.Storage
}

func NewYAMLKeyRepository(s storage.Storage) *YAMLKeyRepository {
	return &YAMLKeyRepository{storage: s}
}

func (r *YAMLKeyRepository) Initialize(ctx context.Context, k *zkproof.VerificationKey) error {
	exists, err := r.storage.Exists(ctx, keyPath)
	if err != nil {
		return cerr.WrapStorageReadError("verification key", err)
	}
	if exists {
		return cerr.NewError(cerr.AlreadyExists, "verification key already initialized", nil)
	}
	data, err := yaml.Marshal(k)
	if err != nil {
		return cerr.WrapMarshalError("verification key", err)
	}
	if err := r.storage.Write(ctx, keyPath, data); err != nil {
		return cerr.WrapStorageWriteError("verification key", err)
	}
	return nil
}

func (r *YAMLKeyRepository) Get(ctx context.Context) (*zkproof.VerificationKey, error) {
	data, err := r.storage.Read(ctx, keyPath)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ledgererr.ErrKeyUninitiated
	}
	if err != nil {
		return nil, cerr.WrapStorageReadError("verification key", err)
	}
	var k zkproof.VerificationKey
	if err := yaml.Unmarshal(data, &k); err != nil {
		return nil, cerr.WrapUnmarshalError("verification key", err)
	}
	return &k, nil
}
