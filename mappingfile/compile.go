// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package mappingfile

import (
	"fmt"
	"regexp"

	"github.com/stacklok/remap-core/cel"
	"github.com/stacklok/remap-core/engine"
	"github.com/stacklok/remap-core/transform"
	"github.com/stacklok/remap-core/tree"
	"github.com/stacklok/remap-core/validation"
)

// Registries are the name stores definitions compile against. Nil fields
// fall back to the built-in registries.
type Registries struct {
	Transformers *transform.Registry
	Functions    *transform.FuncRegistry
}

// DefaultRegistries returns the built-in transformers and functions.
func DefaultRegistries() Registries {
	return Registries{
		Transformers: transform.Builtins(),
		Functions:    transform.BuiltinFunctions(),
	}
}

func (r Registries) withDefaults() Registries {
	if r.Transformers == nil {
		r.Transformers = transform.Builtins()
	}
	if r.Functions == nil {
		r.Functions = transform.BuiltinFunctions()
	}
	return r
}

// compiler carries the state shared while compiling one definition.
type compiler struct {
	regs Registries
	cel  *cel.Engine
}

// Compile turns the definition into an executable mapping. Transformer,
// function, and condition references resolve eagerly; any unknown name or
// invalid expression fails here, never at execution time. Additional
// options are applied after the definition's format tags, so callers can
// attach a logger.
func (d *Definition) Compile(regs Registries, opts ...engine.MappingOption) (*engine.Mapping, error) {
	if d.Name == "" {
		return nil, fmt.Errorf("mapping definition has no name")
	}
	if len(d.Rules) == 0 {
		return nil, fmt.Errorf("mapping definition %q has no rules", d.Name)
	}

	c := &compiler{regs: regs.withDefaults(), cel: cel.NewEngine()}
	rules, err := c.compileRules(d.Rules, "rules")
	if err != nil {
		return nil, fmt.Errorf("mapping definition %q: %w", d.Name, err)
	}

	sourceFormat := d.SourceFormat
	if sourceFormat == "" {
		sourceFormat = "json"
	}
	targetFormat := d.TargetFormat
	if targetFormat == "" {
		targetFormat = "json"
	}

	mopts := append([]engine.MappingOption{
		engine.WithFormats(sourceFormat, targetFormat),
	}, opts...)
	return engine.New(rules, mopts...)
}

// CompilePipeline compiles the definition together with its validation
// phases. A definition without a validation section yields a pipeline that
// just executes the mapping.
func (d *Definition) CompilePipeline(regs Registries, opts ...engine.MappingOption) (*validation.Pipeline, error) {
	m, err := d.Compile(regs, opts...)
	if err != nil {
		return nil, err
	}

	var popts []validation.PipelineOption
	if v := d.Validation; v != nil {
		if v.Config != nil {
			popts = append(popts, validation.WithConfig(v.Config.toConfig()))
		}
		if len(v.Pre) > 0 {
			rules, err := compileChecks(v.Pre, "validation.pre")
			if err != nil {
				return nil, fmt.Errorf("mapping definition %q: %w", d.Name, err)
			}
			popts = append(popts, validation.WithPre(rules...))
		}
		for i, anchor := range v.At {
			rules, err := compileChecks(anchor.Rules, fmt.Sprintf("validation.at[%d]", i))
			if err != nil {
				return nil, fmt.Errorf("mapping definition %q: %w", d.Name, err)
			}
			popts = append(popts, validation.WithAt(anchor.After, rules...))
		}
		if len(v.Post) > 0 {
			rules, err := compileChecks(v.Post, "validation.post")
			if err != nil {
				return nil, fmt.Errorf("mapping definition %q: %w", d.Name, err)
			}
			popts = append(popts, validation.WithPost(rules...))
		}
	}

	return validation.NewPipeline(m, popts...)
}

func (c *compiler) compileRules(defs []RuleDef, where string) ([]engine.Rule, error) {
	rules := make([]engine.Rule, 0, len(defs))
	for i, def := range defs {
		rule, err := c.compileRule(&def, fmt.Sprintf("%s[%d]", where, i))
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func (c *compiler) compileRule(def *RuleDef, where string) (engine.Rule, error) {
	if n := def.variantCount(); n != 1 {
		return nil, fmt.Errorf("%s: expected exactly one rule variant, got %d", where, n)
	}

	var (
		rule engine.Rule
		err  error
	)
	switch {
	case def.Direct != nil:
		rule, err = c.compileDirect(def.Direct)
	case def.Bulk != nil:
		rule, err = c.compileBulk(def.Bulk)
	case def.Collection != nil:
		rule, err = c.compileCollection(def.Collection, where)
	case def.Branch != nil:
		rule, err = c.compileBranch(def.Branch, where)
	case def.Nest != nil:
		rule, err = engine.NewNest(def.Nest.From, def.Nest.Match, def.Nest.To)
	case def.Flatten != nil:
		rule, err = c.compileFlatten(def.Flatten)
	case def.Combine != nil:
		rule, err = c.compileCombine(def.Combine)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", where, err)
	}

	if def.Independent {
		rule = engine.Independent(rule)
	}
	return rule, nil
}

func (c *compiler) compileDirect(def *DirectDef) (engine.Rule, error) {
	var opts []engine.DirectOption
	if len(def.Transform) > 0 {
		chain, err := transform.ResolveChain(c.regs.Transformers, def.Transform...)
		if err != nil {
			return nil, err
		}
		opts = append(opts, engine.WithChain(chain))
	}
	if def.When != "" {
		cond, err := c.cel.Compile(def.When)
		if err != nil {
			return nil, err
		}
		opts = append(opts, engine.WithGuard(celPredicate(cond)))
	}
	return engine.NewDirect(def.From, def.To, opts...)
}

func (c *compiler) compileBulk(def *BulkDef) (engine.Rule, error) {
	var opts []engine.BulkOption
	if len(def.Include) > 0 {
		opts = append(opts, engine.WithInclude(def.Include...))
	}
	if len(def.Exclude) > 0 {
		opts = append(opts, engine.WithExclude(def.Exclude...))
	}
	if len(def.Transform) > 0 {
		chain, err := transform.ResolveChain(c.regs.Transformers, def.Transform...)
		if err != nil {
			return nil, err
		}
		opts = append(opts, engine.WithBulkChain(chain))
	}
	return engine.NewBulk(def.From, def.To, opts...)
}

func (c *compiler) compileCollection(def *CollectionDef, where string) (engine.Rule, error) {
	nested, err := c.compileRules(def.Rules, where+".collection.rules")
	if err != nil {
		return nil, err
	}
	return engine.NewCollection(def.From, def.To, def.As, nested)
}

func (c *compiler) compileBranch(def *BranchDef, where string) (engine.Rule, error) {
	arms := make([]engine.Arm, 0, len(def.Arms))
	for i, armDef := range def.Arms {
		cond, err := c.cel.Compile(armDef.When)
		if err != nil {
			return nil, fmt.Errorf("arm %d: %w", i, err)
		}
		nested, err := c.compileRules(armDef.Rules, fmt.Sprintf("%s.branch.arms[%d].rules", where, i))
		if err != nil {
			return nil, err
		}
		arms = append(arms, engine.Arm{When: celPredicate(cond), Rules: nested})
	}

	var opts []engine.BranchOption
	if len(def.Default) > 0 {
		nested, err := c.compileRules(def.Default, where+".branch.default")
		if err != nil {
			return nil, err
		}
		opts = append(opts, engine.WithDefault(nested...))
	}
	return engine.NewBranch(arms, opts...)
}

func (c *compiler) compileFlatten(def *FlattenDef) (engine.Rule, error) {
	var opts []engine.FlattenOption
	if def.Prefix != "" {
		opts = append(opts, engine.WithPrefix(def.Prefix))
	}
	if def.Separator != "" {
		opts = append(opts, engine.WithSeparator(def.Separator))
	}
	if def.MaxDepth > 0 {
		opts = append(opts, engine.WithMaxDepth(def.MaxDepth))
	}
	return engine.NewFlatten(def.From, def.To, opts...)
}

func (c *compiler) compileCombine(def *CombineDef) (engine.Rule, error) {
	var opts []engine.CombineOption
	if len(def.Transform) > 0 {
		chain, err := transform.ResolveChain(c.regs.Transformers, def.Transform...)
		if err != nil {
			return nil, err
		}
		opts = append(opts, engine.WithCombineChain(chain))
	}
	return engine.NewCombine(def.From, def.To, def.Function, c.regs.Functions, opts...)
}

// celPredicate adapts a compiled condition to the engine's predicate
// shape. Conditions see the source document and the current variable
// bindings; there is no target at predicate evaluation time.
func celPredicate(cond *cel.Condition) engine.Predicate {
	return func(ectx *engine.Context) (bool, error) {
		return cond.Eval(cel.Activation{
			Source: ectx.Source(),
			Vars:   ectx.Bindings(),
		})
	}
}

func compileChecks(defs []CheckDef, where string) ([]validation.Rule, error) {
	rules := make([]validation.Rule, 0, len(defs))
	for i, def := range defs {
		rule, err := compileCheck(&def)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", where, i, err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func compileCheck(def *CheckDef) (validation.Rule, error) {
	severity, err := parseSeverity(def.Severity)
	if err != nil {
		return nil, err
	}

	switch {
	case def.Field != "" && def.Group != "":
		return nil, fmt.Errorf("check sets both field and group")

	case def.Field != "":
		checks, err := buildChecks(def)
		if err != nil {
			return nil, err
		}
		rule, err := validation.Field(def.Field, checks...)
		if err != nil {
			return nil, err
		}
		return rule.WithSeverity(severity).WithCode(def.Code), nil

	case def.Group != "":
		pred, err := groupPredicate(def)
		if err != nil {
			return nil, err
		}
		rule, err := validation.Group(def.Group, pred, def.Paths...)
		if err != nil {
			return nil, err
		}
		return rule.WithSeverity(severity).WithCode(def.Code), nil

	default:
		return nil, fmt.Errorf("check sets neither field nor group")
	}
}

func buildChecks(def *CheckDef) ([]validation.Check, error) {
	var checks []validation.Check
	for _, name := range def.Checks {
		switch name {
		case "required":
			checks = append(checks, validation.Required())
		case "non-empty":
			checks = append(checks, validation.NonEmpty())
		default:
			return nil, fmt.Errorf("unknown check %q", name)
		}
	}
	if def.Type != "" {
		kind, err := tree.ParseKind(def.Type)
		if err != nil {
			return nil, err
		}
		checks = append(checks, validation.TypeIs(kind))
	}
	if len(def.Range) > 0 {
		if len(def.Range) != 2 {
			return nil, fmt.Errorf("range needs [min, max], got %d values", len(def.Range))
		}
		checks = append(checks, validation.Range(def.Range[0], def.Range[1]))
	}
	if len(def.Length) > 0 {
		if len(def.Length) != 2 {
			return nil, fmt.Errorf("length needs [min, max], got %d values", len(def.Length))
		}
		checks = append(checks, validation.Length(def.Length[0], def.Length[1]))
	}
	if def.Pattern != "" {
		re, err := regexp.Compile(def.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern: %w", err)
		}
		checks = append(checks, validation.Pattern(re))
	}
	if len(def.OneOf) > 0 {
		allowed := make([]tree.Value, len(def.OneOf))
		for i, raw := range def.OneOf {
			v, err := tree.FromGo(raw)
			if err != nil {
				return nil, fmt.Errorf("one_of value %d: %w", i, err)
			}
			allowed[i] = v
		}
		checks = append(checks, validation.OneOf(allowed...))
	}
	if len(checks) == 0 {
		return nil, fmt.Errorf("field check for %q declares no checks", def.Field)
	}
	return checks, nil
}

func groupPredicate(def *CheckDef) (validation.GroupPredicate, error) {
	switch def.Group {
	case "sum-equals":
		return validation.SumEquals(), nil
	case "concat-equals":
		return validation.ConcatEquals(def.Separator), nil
	case "all-present":
		return validation.AllPresent(), nil
	case "any-present":
		return validation.AnyPresent(), nil
	default:
		return nil, fmt.Errorf("unknown group predicate %q", def.Group)
	}
}

func parseSeverity(s string) (validation.Severity, error) {
	switch s {
	case "":
		return validation.SeverityError, nil
	case "error":
		return validation.SeverityError, nil
	case "warning":
		return validation.SeverityWarning, nil
	case "info":
		return validation.SeverityInfo, nil
	default:
		return "", fmt.Errorf("unknown severity %q", s)
	}
}

func (c *ConfigDef) toConfig() validation.Config {
	cfg := validation.DefaultConfig()
	cfg.FailFast = c.FailFast
	cfg.ThrowOnError = c.ThrowOnError
	if c.IncludeWarnings != nil {
		cfg.IncludeWarnings = *c.IncludeWarnings
	}
	return cfg
}
