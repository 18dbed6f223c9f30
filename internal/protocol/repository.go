package protocol

import "context"

type Repository interface {
	// Initialize stores the first Config and fails if one exists.
	Initialize(ctx context.Context, c *Config) error
	Get(ctx context.Context) (*Config, error)
	// Amend applies a ratified amendment. It fails if the stored revision
	// moved since the amendment was computed.
	Amend(ctx context.Context, a Amendment) (*Config, error)
}
