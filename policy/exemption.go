// Package policy evaluates exemption rules over resource descriptors.
// An exempt resource is never flagged as waste regardless of utilization,
// which lets teams opt critical machines out of the report via tags.
package policy

import (
	"context"
	"fmt"
	"os"

	"github.com/open-policy-agent/opa/v1/rego"

	"github.com/purvarane2002/cloud-cost-guardian/types"
)

// DefaultExemptionPolicy mirrors the classic DoNotStop tag convention.
const DefaultExemptionPolicy = `package guardian

default exempt := false

exempt if truthy(input.resource.tags.DoNotStop)

exempt if truthy(input.resource.tags["guardian:exempt"])

truthy(v) if lower(v) in {"1", "true", "yes", "y"}
`

// ExemptionEngine holds one compiled rego query, prepared once and safe for
// concurrent evaluation.
type ExemptionEngine struct {
	query rego.PreparedEvalQuery
}

// NewExemptionEngine compiles a rego module exposing data.guardian.exempt.
func NewExemptionEngine(ctx context.Context, module string) (*ExemptionEngine, error) {
	query := rego.New(
		rego.Query("data.guardian.exempt"),
		rego.Module("exemptions.rego", module),
	)

	prepared, err := query.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile exemption policy: %w", err)
	}

	return &ExemptionEngine{query: prepared}, nil
}

// NewDefaultExemptionEngine compiles the built-in tag policy.
func NewDefaultExemptionEngine(ctx context.Context) (*ExemptionEngine, error) {
	return NewExemptionEngine(ctx, DefaultExemptionPolicy)
}

// LoadExemptionEngine compiles a policy from a rego file on disk.
func LoadExemptionEngine(ctx context.Context, path string) (*ExemptionEngine, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is intentional user input
	if err != nil {
		return nil, fmt.Errorf("read policy file: %w", err)
	}
	return NewExemptionEngine(ctx, string(data))
}

// IsExempt evaluates the policy for one descriptor.
func (e *ExemptionEngine) IsExempt(ctx context.Context, d types.ResourceDescriptor) (bool, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(map[string]any{"resource": d}))
	if err != nil {
		return false, fmt.Errorf("evaluate exemption policy for %s: %w", d.ID, err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return false, nil
	}
	exempt, ok := results[0].Expressions[0].Value.(bool)
	if !ok {
		return false, fmt.Errorf("exemption policy for %s returned non-boolean %T", d.ID, results[0].Expressions[0].Value)
	}
	return exempt, nil
}
