// Package rules evaluates leave type eligibility rules written in CEL.
//
// A rule is a boolean expression over the request being submitted:
//
//	tenure_days >= 90 && days <= remaining
//	leave_code != "STUDY" || tenure_days > 365
package rules

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/leave"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/google/cel-go/cel"
)

// MaxRuleLength bounds the source of one rule
const MaxRuleLength = 1000

// Evaluator compiles rules once and caches the programs
type Evaluator struct {
	env      *cel.Env
	programs sync.Map // rule source -> cel.Program
}

// NewEvaluator creates the CEL environment with the eligibility variables
func NewEvaluator() (*Evaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable("days", cel.DoubleType),
		cel.Variable("tenure_days", cel.IntType),
		cel.Variable("remaining", cel.DoubleType),
		cel.Variable("leave_code", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("create cel env: %w", err)
	}
	return &Evaluator{env: env}, nil
}

// Validate compiles the rule and checks that it yields a bool
func (e *Evaluator) Validate(rule string) error {
	_, err := e.program(rule)
	return err
}

// Evaluate runs the rule against the request
func (e *Evaluator) Evaluate(rule string, in leave.EligibilityInput) (bool, error) {
	program, err := e.program(rule)
	if err != nil {
		return false, err
	}
	out, _, err := program.Eval(map[string]any{
		"days":        in.Days,
		"tenure_days": int64(in.TenureDays),
		"remaining":   in.Remaining,
		"leave_code":  in.LeaveCode,
	})
	if err != nil {
		return false, shared.NewDomainError(shared.CodeRuleViolation, "Eligibility rule failed: "+err.Error())
	}
	v, ok := out.Value().(bool)
	if !ok {
		return false, errors.New("eligibility rule did not return a bool")
	}
	return v, nil
}

func (e *Evaluator) program(rule string) (cel.Program, error) {
	rule = strings.TrimSpace(rule)
	if rule == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Eligibility rule is empty")
	}
	if len(rule) > MaxRuleLength {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Eligibility rule cannot exceed 1000 characters")
	}
	if cached, ok := e.programs.Load(rule); ok {
		return cached.(cel.Program), nil
	}
	ast, issues := e.env.Compile(rule)
	if issues != nil && issues.Err() != nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Invalid eligibility rule: "+issues.Err().Error())
	}
	if ast.OutputType() != cel.BoolType {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Eligibility rule must evaluate to true or false")
	}
	program, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("build cel program: %w", err)
	}
	e.programs.Store(rule, program)
	return program, nil
}

var _ leave.EligibilityEvaluator = (*Evaluator)(nil)
