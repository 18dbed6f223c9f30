package governance

import (
	"fmt"

	"github.com/pmezard/go-difflib/difflib"
	"gopkg.in/yaml.v3"

	"github.com/agentrep/trustledger/internal/protocol"
)

// Preview renders what executing p would do to params as a unified diff of
// the YAML form. An out-of-bounds value is reported as an error.
func Preview(p Proposal, params protocol.Params) (string, error) {
	after, err := Apply(params, p.Type, p.NewValue)
	if err != nil {
		return "", err
	}
	before, err := yaml.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("failed to marshal params: %w", err)
	}
	next, err := yaml.Marshal(after)
	if err != nil {
		return "", fmt.Errorf("failed to marshal params: %w", err)
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(before)),
		B:        difflib.SplitLines(string(next)),
		FromFile: "params",
		ToFile:   "params+" + p.ID,
		Context:  1,
	})
}
