// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package validation

import (
	"fmt"

	"github.com/stacklok/remap-core/engine"
	"github.com/stacklok/remap-core/tree"
)

// Pipeline wraps a mapping with validation phases. The pre phase checks
// the source document before execution, in-phase validators are anchored
// to rule indices and check the target as it is built, and the post phase
// checks the completed target.
type Pipeline struct {
	mapping *engine.Mapping
	pre     *Validator
	in      map[int]*Validator
	post    *Validator
	cfg     Config
}

type pipelineSpec struct {
	pre  []Rule
	in   map[int][]Rule
	post []Rule
	cfg  Config
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*pipelineSpec)

// WithPre adds rules evaluated against the source document before the
// mapping runs.
func WithPre(rules ...Rule) PipelineOption {
	return func(s *pipelineSpec) {
		s.pre = append(s.pre, rules...)
	}
}

// WithAt adds rules evaluated against the in-progress target right after
// the mapping rule at index completes.
func WithAt(index int, rules ...Rule) PipelineOption {
	return func(s *pipelineSpec) {
		s.in[index] = append(s.in[index], rules...)
	}
}

// WithPost adds rules evaluated against the completed target document.
func WithPost(rules ...Rule) PipelineOption {
	return func(s *pipelineSpec) {
		s.post = append(s.post, rules...)
	}
}

// WithConfig sets the evaluation config for every phase. Defaults to
// DefaultConfig.
func WithConfig(cfg Config) PipelineOption {
	return func(s *pipelineSpec) {
		s.cfg = cfg
	}
}

// NewPipeline builds a pipeline around m. In-phase anchor indices must
// name rules of m.
func NewPipeline(m *engine.Mapping, opts ...PipelineOption) (*Pipeline, error) {
	if m == nil {
		return nil, fmt.Errorf("pipeline needs a mapping")
	}

	spec := pipelineSpec{in: make(map[int][]Rule), cfg: DefaultConfig()}
	for _, opt := range opts {
		opt(&spec)
	}

	p := &Pipeline{mapping: m, cfg: spec.cfg}

	var err error
	if len(spec.pre) > 0 {
		if p.pre, err = NewValidator(PhasePre, spec.pre...); err != nil {
			return nil, err
		}
	}
	if len(spec.post) > 0 {
		if p.post, err = NewValidator(PhasePost, spec.post...); err != nil {
			return nil, err
		}
	}
	if len(spec.in) > 0 {
		p.in = make(map[int]*Validator, len(spec.in))
		for idx, rules := range spec.in {
			if idx < 0 || idx >= m.Len() {
				return nil, fmt.Errorf("in-phase anchor %d outside mapping rules [0, %d)", idx, m.Len())
			}
			if p.in[idx], err = NewValidator(PhaseIn, rules...); err != nil {
				return nil, err
			}
		}
	}

	return p, nil
}

// Report collects the per-phase results of one pipeline run. Phases that
// did not run, or had no validators, stay nil.
type Report struct {
	Pre  *Result
	In   map[int]*Result
	Post *Result
}

// IsValid reports whether every phase that ran is valid.
func (r *Report) IsValid() bool {
	if r.Pre != nil && !r.Pre.IsValid() {
		return false
	}
	for _, res := range r.In {
		if !res.IsValid() {
			return false
		}
	}
	if r.Post != nil && !r.Post.IsValid() {
		return false
	}
	return true
}

// Run validates, executes, and validates again. Without ThrowOnError every
// phase runs to completion and the caller inspects the report; with it,
// the first invalid phase aborts the run and the returned error is that
// phase's *Error (or the mapping's own execution error). The target is nil
// whenever the error is non-nil.
func (p *Pipeline) Run(source tree.Value) (tree.Value, *Report, error) {
	report := &Report{}

	if p.pre != nil {
		res, err := p.pre.Validate(source, p.cfg)
		report.Pre = res
		if err != nil {
			return nil, report, err
		}
	}

	hooks := engine.Hooks{}
	if len(p.in) > 0 {
		report.In = make(map[int]*Result, len(p.in))
		hooks.AfterRule = func(index int, target tree.Value) error {
			v, ok := p.in[index]
			if !ok {
				return nil
			}
			res, err := v.Validate(target, p.cfg)
			report.In[index] = res
			return err
		}
	}

	target, err := p.mapping.ExecuteWithHooks(source, hooks)
	if err != nil {
		return nil, report, err
	}

	if p.post != nil {
		res, err := p.post.Validate(target, p.cfg)
		report.Post = res
		if err != nil {
			return nil, report, err
		}
	}

	return target, report, nil
}
