// File: alteon/builder.go
package alteon

import (
	"errors"
	"fmt"
)

// ValidatorFunc defines the signature for a function that can validate a
// built Parser. It receives the fully constructed *Parser and should
// return an error if validation fails.
type ValidatorFunc func(p *Parser) error

// Builder provides a fluent interface for assembling a parser. Option
// mutations are journaled and applied over the options file at Build
// time, so explicit settings always win regardless of call order.
type Builder struct {
	file       string
	ops        []func(*Options)
	validators []ValidatorFunc
}

// NewBuilder creates a new parser builder.
func NewBuilder() *Builder {
	return &Builder{
		ops:        make([]func(*Options), 0),
		validators: make([]ValidatorFunc, 0),
	}
}

// WithOptions replaces the working options wholesale.
func (b *Builder) WithOptions(opts Options) *Builder {
	snapshot := opts.clone()
	b.ops = append(b.ops, func(o *Options) { *o = snapshot.clone() })
	return b
}

// WithOptionsFile names an options file to layer over the defaults.
// A missing file is not fatal; Build reports it and proceeds.
func (b *Builder) WithOptionsFile(path string) *Builder {
	b.file = path
	return b
}

// WithSentinel sets or replaces one sentinel table entry.
func (b *Builder) WithSentinel(kind, begin, end string) *Builder {
	b.ops = append(b.ops, func(o *Options) {
		o.Sentinels[kind] = SentinelSpec{Begin: begin, End: end}
	})
	return b
}

// WithActionVerbs replaces the recognized imperative keywords.
func (b *Builder) WithActionVerbs(verbs ...string) *Builder {
	b.ops = append(b.ops, func(o *Options) {
		o.ActionVerbs = append([]string(nil), verbs...)
	})
	return b
}

// WithMaxFileSize bounds single input files in bytes.
func (b *Builder) WithMaxFileSize(n int64) *Builder {
	b.ops = append(b.ops, func(o *Options) { o.MaxFileSize = n })
	return b
}

// WithPlatformDetection toggles form-factor and hypervisor stamping.
func (b *Builder) WithPlatformDetection(enabled bool) *Builder {
	b.ops = append(b.ops, func(o *Options) { o.DetectPlatform = enabled })
	return b
}

// WithValidator adds a validation function that runs at the end of the
// build. Multiple validators run in the order added.
func (b *Builder) WithValidator(fn ValidatorFunc) *Builder {
	if fn != nil {
		b.validators = append(b.validators, fn)
	}
	return b
}

// Build creates the Parser with all specified options. A missing
// options file is reported through the returned error while the parser
// is still built from defaults; callers branch with
// errors.Is(err, ErrSourceNotFound).
func (b *Builder) Build() (*Parser, error) {
	opts := DefaultOptions()

	var loadErr error
	if b.file != "" {
		fileOpts, err := OptionsFromFile(b.file)
		switch {
		case err == nil:
			opts = fileOpts
		case errors.Is(err, ErrSourceNotFound):
			loadErr = err
		default:
			return nil, err
		}
	}

	for _, op := range b.ops {
		op(&opts)
	}

	p, err := NewWithOptions(opts)
	if err != nil {
		return nil, err
	}

	for _, validator := range b.validators {
		if err := validator(p); err != nil {
			return nil, fmt.Errorf("parser validation failed: %w", err)
		}
	}

	// ErrSourceNotFound or nil
	return p, loadErr
}

// MustBuild is like Build but panics on error. A missing options file
// is not fatal; the parser proceeds with defaults.
func (b *Builder) MustBuild() *Parser {
	p, err := b.Build()
	if err != nil {
		if !errors.Is(err, ErrSourceNotFound) {
			panic(fmt.Sprintf("parser build failed: %v", err))
		}
	}
	return p
}
