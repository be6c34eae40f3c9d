// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package mappingfile

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Definition is one declarative mapping document.
type Definition struct {
	// Name identifies the mapping.
	Name string `yaml:"name" json:"name"`

	// Description and Version are free-form metadata. Bundle packaging
	// records them in artifact labels.
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Version     string `yaml:"version,omitempty" json:"version,omitempty"`

	// SourceFormat and TargetFormat are codec format names. Both default
	// to "json".
	SourceFormat string `yaml:"source_format,omitempty" json:"source_format,omitempty"`
	TargetFormat string `yaml:"target_format,omitempty" json:"target_format,omitempty"`

	// Rules is the ordered rule list.
	Rules []RuleDef `yaml:"rules" json:"rules"`

	// Validation holds the optional validation phases.
	Validation *ValidationDef `yaml:"validation,omitempty" json:"validation,omitempty"`
}

// RuleDef is one rule entry. Exactly one variant field must be set.
type RuleDef struct {
	Direct     *DirectDef     `yaml:"direct,omitempty" json:"direct,omitempty"`
	Bulk       *BulkDef       `yaml:"bulk,omitempty" json:"bulk,omitempty"`
	Collection *CollectionDef `yaml:"collection,omitempty" json:"collection,omitempty"`
	Branch     *BranchDef     `yaml:"branch,omitempty" json:"branch,omitempty"`
	Nest       *NestDef       `yaml:"nest,omitempty" json:"nest,omitempty"`
	Flatten    *FlattenDef    `yaml:"flatten,omitempty" json:"flatten,omitempty"`
	Combine    *CombineDef    `yaml:"combine,omitempty" json:"combine,omitempty"`

	// Independent marks the rule so its failure does not stop execution.
	Independent bool `yaml:"independent,omitempty" json:"independent,omitempty"`
}

// variantCount returns how many rule variants are set.
func (r *RuleDef) variantCount() int {
	n := 0
	for _, set := range []bool{
		r.Direct != nil, r.Bulk != nil, r.Collection != nil,
		r.Branch != nil, r.Nest != nil, r.Flatten != nil, r.Combine != nil,
	} {
		if set {
			n++
		}
	}
	return n
}

// DirectDef copies one source path to one target path.
type DirectDef struct {
	From      string     `yaml:"from" json:"from"`
	To        string     `yaml:"to" json:"to"`
	Transform StringList `yaml:"transform,omitempty" json:"transform,omitempty"`
	When      string     `yaml:"when,omitempty" json:"when,omitempty"`
}

// BulkDef copies every wildcard match under a target prefix.
type BulkDef struct {
	From      string     `yaml:"from" json:"from"`
	To        string     `yaml:"to" json:"to"`
	Include   StringList `yaml:"include,omitempty" json:"include,omitempty"`
	Exclude   StringList `yaml:"exclude,omitempty" json:"exclude,omitempty"`
	Transform StringList `yaml:"transform,omitempty" json:"transform,omitempty"`
}

// CollectionDef maps each element of a source array through nested rules.
type CollectionDef struct {
	From  string    `yaml:"from" json:"from"`
	To    string    `yaml:"to" json:"to"`
	As    string    `yaml:"as" json:"as"`
	Rules []RuleDef `yaml:"rules" json:"rules"`
}

// BranchDef evaluates condition arms in order, first match wins.
type BranchDef struct {
	Arms    []ArmDef  `yaml:"arms" json:"arms"`
	Default []RuleDef `yaml:"default,omitempty" json:"default,omitempty"`
}

// ArmDef is one branch arm.
type ArmDef struct {
	When  string    `yaml:"when" json:"when"`
	Rules []RuleDef `yaml:"rules" json:"rules"`
}

// NestDef groups flat keys matching a wildcard pattern.
type NestDef struct {
	From  string `yaml:"from,omitempty" json:"from,omitempty"`
	Match string `yaml:"match" json:"match"`
	To    string `yaml:"to" json:"to"`
}

// FlattenDef walks a subtree and emits one flat field per leaf.
type FlattenDef struct {
	From      string `yaml:"from" json:"from"`
	To        string `yaml:"to,omitempty" json:"to,omitempty"`
	Prefix    string `yaml:"prefix,omitempty" json:"prefix,omitempty"`
	Separator string `yaml:"separator,omitempty" json:"separator,omitempty"`
	MaxDepth  int    `yaml:"max_depth,omitempty" json:"max_depth,omitempty"`
}

// CombineDef merges several source paths through a named function.
type CombineDef struct {
	From      []string   `yaml:"from" json:"from"`
	To        string     `yaml:"to" json:"to"`
	Function  string     `yaml:"function" json:"function"`
	Transform StringList `yaml:"transform,omitempty" json:"transform,omitempty"`
}

// ValidationDef declares the validation phases of a definition.
type ValidationDef struct {
	Config *ConfigDef    `yaml:"config,omitempty" json:"config,omitempty"`
	Pre    []CheckDef    `yaml:"pre,omitempty" json:"pre,omitempty"`
	At     []AnchoredDef `yaml:"at,omitempty" json:"at,omitempty"`
	Post   []CheckDef    `yaml:"post,omitempty" json:"post,omitempty"`
}

// ConfigDef mirrors validation.Config with YAML field names.
// IncludeWarnings is a pointer so an absent field keeps the default of
// including warnings.
type ConfigDef struct {
	FailFast        bool  `yaml:"fail_fast,omitempty" json:"fail_fast,omitempty"`
	ThrowOnError    bool  `yaml:"throw_on_error,omitempty" json:"throw_on_error,omitempty"`
	IncludeWarnings *bool `yaml:"include_warnings,omitempty" json:"include_warnings,omitempty"`
}

// AnchoredDef attaches checks to a rule index; the checks run against the
// in-progress target right after that rule completes.
type AnchoredDef struct {
	After int        `yaml:"after" json:"after"`
	Rules []CheckDef `yaml:"rules" json:"rules"`
}

// CheckDef is one validation rule: a field rule when Field is set, a
// group rule when Group is set.
type CheckDef struct {
	// Field rule: path expression plus checks.
	Field   string     `yaml:"field,omitempty" json:"field,omitempty"`
	Checks  StringList `yaml:"checks,omitempty" json:"checks,omitempty"`
	Type    string     `yaml:"type,omitempty" json:"type,omitempty"`
	Range   []float64  `yaml:"range,omitempty" json:"range,omitempty"`
	Length  []int      `yaml:"length,omitempty" json:"length,omitempty"`
	Pattern string     `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	OneOf   []any      `yaml:"one_of,omitempty" json:"one_of,omitempty"`

	// Group rule: aggregate predicate over several paths.
	Group     string   `yaml:"group,omitempty" json:"group,omitempty"`
	Separator string   `yaml:"separator,omitempty" json:"separator,omitempty"`
	Paths     []string `yaml:"paths,omitempty" json:"paths,omitempty"`

	Severity string `yaml:"severity,omitempty" json:"severity,omitempty"`
	Code     string `yaml:"code,omitempty" json:"code,omitempty"`
}

// StringList accepts either a single string or a sequence of strings.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var str string
		if err := node.Decode(&str); err != nil {
			return err
		}
		if str != "" {
			*s = StringList{str}
		} else {
			*s = StringList{}
		}
		return nil

	case yaml.SequenceNode:
		var arr []string
		if err := node.Decode(&arr); err != nil {
			return err
		}
		*s = arr
		return nil

	default:
		return fmt.Errorf("line %d: expected string or list of strings", node.Line)
	}
}
