// FILE: alteon/module.go
package alteon

import (
	"errors"
	"fmt"
	"strings"
)

// Package sentinel errors. All deeper errors wrap one of these where it
// applies, so callers can branch with errors.Is.
var (
	// ErrSourceNotFound indicates a missing input file or directory
	ErrSourceNotFound = errors.New("source not found")
	// ErrSourceSize indicates an input file above the configured size limit
	ErrSourceSize = errors.New("source file exceeds size limit")
	// ErrUnknownFormat indicates a file whose encoding could not be determined
	ErrUnknownFormat = errors.New("unknown file format")
	// ErrSentinelPattern indicates an invalid multiline begin pattern
	ErrSentinelPattern = errors.New("invalid sentinel pattern")
)

// ModuleType tags a finalized module block. The tag decides which of the
// optional payloads (Multiline, Action) is populated; both are nil for
// every other tag.
type ModuleType string

const (
	// ModuleStandard is a content-bearing module with no index or a numeric index
	ModuleStandard ModuleType = "standard"
	// ModuleIndexed is a content-bearing module addressed by a named index
	ModuleIndexed ModuleType = "indexed"
	// ModuleAction is a one-shot imperative command with no body
	ModuleAction ModuleType = "action"
	// ModuleEmpty is a declaration-only module with no content
	ModuleEmpty ModuleType = "empty"
	// ModuleCert is a certificate, request or key import with a captured payload
	ModuleCert ModuleType = "multiline_cert"
	// ModuleScript is a script import with a captured payload
	ModuleScript ModuleType = "multiline_script"
)

// ModuleTypes lists every valid tag in a stable order.
func ModuleTypes() []ModuleType {
	return []ModuleType{ModuleStandard, ModuleIndexed, ModuleAction, ModuleEmpty, ModuleCert, ModuleScript}
}

// LineRange is a 1-based inclusive span of source lines.
type LineRange struct {
	Start int `json:"start" yaml:"start" toml:"start"`
	End   int `json:"end" yaml:"end" toml:"end"`
}

// MultilineData carries the payload of a multiline import block.
type MultilineData struct {
	// CertType is "cert", "request" or "key" for certificate imports.
	CertType string `json:"cert_type,omitempty" yaml:"cert_type,omitempty" toml:"cert_type,omitempty"`

	// CertName is the quoted name from the certificate import clause.
	CertName string `json:"cert_name,omitempty" yaml:"cert_name,omitempty" toml:"cert_name,omitempty"`

	// ScriptID is the importing block's index for script imports.
	ScriptID string `json:"script_id,omitempty" yaml:"script_id,omitempty" toml:"script_id,omitempty"`

	// Body is the verbatim payload between the begin and end sentinels,
	// original line boundaries preserved, no normalization applied.
	Body string `json:"body" yaml:"body" toml:"body"`

	// Incomplete marks a capture whose end sentinel never arrived before
	// end of input. The body holds everything captured up to that point.
	Incomplete bool `json:"incomplete,omitempty" yaml:"incomplete,omitempty" toml:"incomplete,omitempty"`
}

// ActionData carries the verb and parameters of a one-shot command.
type ActionData struct {
	Verb   string   `json:"verb" yaml:"verb" toml:"verb"`
	Params []string `json:"params,omitempty" yaml:"params,omitempty" toml:"params,omitempty"`
}

// ModuleBlock is one finalized configuration unit. Blocks are immutable
// once emitted by the parser; every field is set at finalization time
// and never revisited.
type ModuleBlock struct {
	// Path is the slash-delimited command path, e.g. "/c/l3/if". Never empty.
	Path string `json:"path" yaml:"path" toml:"path"`

	// Index distinguishes instances under the same path. It may be numeric
	// ("1"), a bare name ("Vision-Analytics") or multi-token ("443 https").
	// Empty when the header carried no index.
	Index string `json:"index,omitempty" yaml:"index,omitempty" toml:"index,omitempty"`

	Type ModuleType `json:"type" yaml:"type" toml:"type"`

	// Lines holds the whitespace-normalized sub-lines in input order.
	Lines []string `json:"lines,omitempty" yaml:"lines,omitempty" toml:"lines,omitempty"`

	// RawText is the verbatim source span from the header line through the
	// block's last contributing line, inner blank lines included.
	RawText string `json:"raw_text" yaml:"raw_text" toml:"raw_text"`

	// Multiline is set for multiline block types only.
	Multiline *MultilineData `json:"multiline_metadata,omitempty" yaml:"multiline_metadata,omitempty" toml:"multiline_metadata,omitempty"`

	// Action is set for ModuleAction blocks only.
	Action *ActionData `json:"action,omitempty" yaml:"action,omitempty" toml:"action,omitempty"`

	// SourceFile names the input the block came from. Empty for in-memory text.
	SourceFile string `json:"source_file,omitempty" yaml:"source_file,omitempty" toml:"source_file,omitempty"`

	LineRange LineRange `json:"line_range" yaml:"line_range" toml:"line_range"`

	// FormFactor is the platform detected for the whole source file.
	FormFactor FormFactor `json:"form_factor,omitempty" yaml:"form_factor,omitempty" toml:"form_factor,omitempty"`

	// Hypervisor is set on VA configs whose path names a cloud platform.
	Hypervisor Hypervisor `json:"hypervisor_support,omitempty" yaml:"hypervisor_support,omitempty" toml:"hypervisor_support,omitempty"`
}

// IsMultiline reports whether the block carries a captured payload.
// Covers the built-in cert and script kinds plus custom sentinel kinds.
func (b *ModuleBlock) IsMultiline() bool {
	return strings.HasPrefix(string(b.Type), "multiline_")
}

// TopPath returns the first two named path segments ("/c/slb" for
// "/c/slb/real"), or the full path when it is that short. Used for
// aggregate statistics.
func (b *ModuleBlock) TopPath() string {
	parts := strings.Split(b.Path, "/")
	if len(parts) > 3 {
		return strings.Join(parts[:3], "/")
	}
	return b.Path
}

// String renders a compact one-line description for logs and debugging.
func (b *ModuleBlock) String() string {
	if b.Index != "" {
		return fmt.Sprintf("<%s %s (%s)>", b.Path, b.Index, b.Type)
	}
	return fmt.Sprintf("<%s (%s)>", b.Path, b.Type)
}

// Warning records a non-fatal parse problem. Parsing always continues
// past the offending line.
type Warning struct {
	File    string `json:"file,omitempty" yaml:"file,omitempty" toml:"file,omitempty"`
	Line    int    `json:"line" yaml:"line" toml:"line"`
	Message string `json:"message" yaml:"message" toml:"message"`
}

func (w Warning) String() string {
	if w.File != "" {
		return fmt.Sprintf("%s:%d: %s", w.File, w.Line, w.Message)
	}
	return fmt.Sprintf("line %d: %s", w.Line, w.Message)
}
