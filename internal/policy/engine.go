// Package policy evaluates admin access decisions with OPA.
package policy

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/rego"
)

// Decisions returned by the admin policy.
const (
	DecisionAllow = "allow"
	DecisionDeny  = "deny"
)

// Input is the document the admin policy is evaluated against.
type Input struct {
	Email   string   `json:"email"`
	Method  string   `json:"method"`
	Path    string   `json:"path"`
	Admins  []string `json:"admins"`
	Editors []string `json:"editors"`
}

// Engine is the OPA policy engine.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine creates a new policy engine with the given policy content.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.admin_policy.decision"),
		rego.Module("admin_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// Evaluate returns DecisionAllow or DecisionDeny for the input.
// A policy that yields no result or a non-string result denies.
func (e *Engine) Evaluate(ctx context.Context, input Input) (string, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return DecisionDeny, fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return DecisionDeny, nil
	}

	if s, ok := results[0].Expressions[0].Value.(string); ok && s == DecisionAllow {
		return DecisionAllow, nil
	}
	return DecisionDeny, nil
}

// DefaultPolicy lets admins do anything and editors read.
const DefaultPolicy = `
package admin_policy

default decision = "deny"

is_admin {
	lower(input.email) == lower(input.admins[_])
}

is_editor {
	lower(input.email) == lower(input.editors[_])
}

decision = "allow" {
	is_admin
}

decision = "allow" {
	is_editor
	input.method == "GET"
}
`
