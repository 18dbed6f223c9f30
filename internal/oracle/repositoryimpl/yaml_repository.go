package repositoryimpl

import (
	"context"
	"errors"

	"gopkg.in/yaml.v3"

	"github.com/agentrep/trustledger/internal/identity"
	"github.com/agentrep/trustledger/internal/ledgererr"
	"github.com/agentrep/trustledger/internal/oracle"
	"github.com/agentrep/trustledger/pkg/cerr"
	"github.com/agentrep/trustledger/pkg/storage"
)

var registryPath = identity.Key(identity.NamespaceOracle, "registry") + ".yaml"

type YAMLRegistryRepository struct {
	storage storage.Storage
}

func NewYAMLRegistryRepository(s storage.Storage) *YAMLRegistryRepository {
	return &YAMLRegistryRepository{storage: s}
}

func (r *YAMLRegistryRepository) Create(ctx context.Context, reg *oracle.Registry) error {
	exists, err := r.storage.Exists(ctx, registryPath)
	if err != nil {
		return cerr.WrapStorageReadError("oracle registry", err)
	}
	if exists {
		return cerr.NewError(cerr.AlreadyExists, "oracle registry already initialized", nil)
	}
	return r.write(ctx, reg)
}

func (r *YAMLRegistryRepository) Get(ctx context.Context) (*oracle.Registry, error) {
	data, err := r.storage.Read(ctx, registryPath)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ledgererr.ErrRegistryUninitiated
	}
	if err != nil {
		return nil, cerr.WrapStorageReadError("oracle registry", err)
	}
	var reg oracle.Registry
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil, cerr.WrapUnmarshalError("oracle registry", err)
	}
	return &reg, nil
}

func (r *YAMLRegistryRepository) Update(ctx context.Context, reg *oracle.Registry) error {
	exists, err := r.storage.Exists(ctx, registryPath)
	if err != nil {
		return cerr.WrapStorageReadError("oracle registry", err)
	}
	if !exists {
		return ledgererr.ErrRegistryUninitiated
	}
	return r.write(ctx, reg)
}

func (r *YAMLRegistryRepository) write(ctx context.Context, reg *oracle.Registry) error {
	data, err := yaml.Marshal(reg)
	if err != nil {
		return cerr.WrapMarshalError("oracle registry", err)
	}
	if err := r.storage.Write(ctx, registryPath, data); err != nil {
		return cerr.WrapStorageWriteError("oracle registry", err)
	}
	return nil
}

type YAMLAttestationRepository struct {
	storage storage.Storage
}

func NewYAMLAttestationRepository(s storage.Storage) *YAMLAttestationRepository {
	return &YAMLAttestationRepository{storage: s}
}

func attestationPath(agent identity.ID, id string) string {
	return identity.Key(identity.NamespaceAttestation, agent.String(), id) + ".yaml"
}

func (r *YAMLAttestationRepository) Create(ctx context.Context, a *oracle.Attestation) error {
	p := attestationPath(a.Agent, a.ID)
	exists, err := r.storage.Exists(ctx, p)
	if err != nil {
		return cerr.WrapStorageReadError("attestation", err)
	}
	if exists {
		return cerr.NewError(cerr.AlreadyExists, "attestation already exists", nil)
	}
	data, err := yaml.Marshal(a)
	if err != nil {
		return cerr.WrapMarshalError("attestation", err)
	}
	if err := r.storage.Write(ctx, p, data); err != nil {
		return cerr.WrapStorageWriteError("attestation", err)
	}
	return nil
}

func (r *YAMLAttestationRepository) ListByAgent(ctx context.Context, agent identity.ID) ([]*oracle.Attestation, error) {
	paths, err := r.storage.List(ctx, identity.Key(identity.NamespaceAttestation, agent.String()))
	if err != nil {
		return nil, cerr.WrapStorageReadError("attestations", err)
	}
	out := make([]*oracle.Attestation, 0, len(paths))
	for _, p := range paths {
		data, err := r.storage.Read(ctx, p)
		if err != nil {
			return nil, cerr.WrapStorageReadError("attestation", err)
		}
		var a oracle.Attestation
		if err := yaml.Unmarshal(data, &a); err != nil {
			return nil, cerr.WrapUnmarshalError("attestation", err)
		}
		out = append(out, &a)
	}
	return out, nil
}
