package protocol

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadGenesis reads a genesis YAML file. Missing params fall back to
// DefaultParams.
func LoadGenesis(path string) (*Genesis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read genesis file: %w", err)
	}
	return ParseGenesis(data)
}

func ParseGenesis(data []byte) (*Genesis, error) {
	g := Genesis{Params: DefaultParams()}
	if err := yaml.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("failed to parse genesis: %w", err)
	}
	if err := g.Params.Validate(); err != nil {
		return nil, err
	}
	if g.OracleAuthority != "" {
		if err := g.OracleAuthority.Validate(); err != nil {
			return nil, fmt.Errorf("oracle_authority: %w", err)
		}
	}
	for _, o := range g.Oracles {
		if err := o.Validate(); err != nil {
			return nil, fmt.Errorf("oracles: %w", err)
		}
	}
	return &g, nil
}
