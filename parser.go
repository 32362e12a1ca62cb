// FILE: alteon/parser.go
package alteon

import (
	"fmt"
	"io"
	"strings"
)

// Parser converts line-oriented configuration text into module blocks.
// A Parser is immutable after construction and safe for concurrent use;
// each Parse call runs on its own state.
type Parser struct {
	opts  Options
	rules []SentinelRule
	verbs map[string]struct{}
}

// New returns a parser with default options.
func New() *Parser {
	p, err := NewWithOptions(DefaultOptions())
	if err != nil {
		panic(fmt.Sprintf("default options failed to build: %v", err))
	}
	return p
}

// NewWithOptions returns a parser for the given options.
func NewWithOptions(opts Options) (*Parser, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	rules, err := compileSentinels(opts.Sentinels)
	if err != nil {
		return nil, err
	}
	verbs := make(map[string]struct{}, len(opts.ActionVerbs))
	for _, v := range opts.ActionVerbs {
		verbs[strings.ToLower(v)] = struct{}{}
	}
	return &Parser{opts: opts.clone(), rules: rules, verbs: verbs}, nil
}

// Options returns a copy of the parser's options.
func (p *Parser) Options() Options {
	return p.opts.clone()
}

// Result carries everything one parse produced.
type Result struct {
	// Source is the file the text came from, empty for in-memory input.
	Source string
	// FormFactor is the platform detected from the dump preamble.
	FormFactor FormFactor
	// Modules holds the blocks in input order.
	Modules []ModuleBlock
	// Warnings records lines that could not be honored. They never stop
	// a parse.
	Warnings []Warning
	// LineCount is the number of physical input lines.
	LineCount int
}

// machine states
type machineState int

const (
	stateIdle machineState = iota
	stateInBlock
	stateInMultiline
)

// capture accumulates one multiline payload.
type capture struct {
	rule   *SentinelRule
	match  []string
	body   []string
	closed bool
}

// draft is the single block under construction. finalize freezes it
// into a ModuleBlock; there is never more than one draft open.
type draft struct {
	header    Header
	lines     []string
	startLine int
	lastLine  int
	cap       *capture
}

// machine is the per-parse state.
type machine struct {
	p          *Parser
	state      machineState
	lines      []string
	lineNo     int
	cur        *draft
	out        []ModuleBlock
	warnings   []Warning
	formFactor FormFactor
}

// Parse converts configuration text into module blocks. Input lines are
// consumed exactly once in order; unparseable lines produce warnings,
// never errors.
func (p *Parser) Parse(text string) *Result {
	m := &machine{p: p, lines: strings.Split(text, "\n")}
	if p.opts.DetectPlatform {
		m.formFactor = detectFormFactor(m.lines)
	}
	for i, line := range m.lines {
		m.lineNo = i + 1
		m.step(line)
	}
	m.finalize()
	return &Result{
		FormFactor: m.formFactor,
		Modules:    m.out,
		Warnings:   m.warnings,
		LineCount:  len(m.lines),
	}
}

// ParseReader parses everything the reader yields.
func (p *Parser) ParseReader(r io.Reader) (*Result, error) {
	limit := p.opts.MaxFileSize
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: input exceeds %d bytes", ErrSourceSize, limit)
	}
	return p.Parse(string(data)), nil
}

// ParseFile reads and parses one file, stamping every block and warning
// with its provenance.
func (p *Parser) ParseFile(path string) (*Result, error) {
	data, err := readSource(path, p.opts.MaxFileSize)
	if err != nil {
		return nil, err
	}
	res := p.Parse(string(data))
	stampSource(res, path)
	return res, nil
}

// stampSource marks a result and its blocks with the file they came from.
func stampSource(r *Result, path string) {
	r.Source = path
	for i := range r.Modules {
		r.Modules[i].SourceFile = path
	}
	for i := range r.Warnings {
		r.Warnings[i].File = path
	}
}

// step feeds one line through the machine.
func (m *machine) step(line string) {
	switch m.p.Classify(line, m.captureState()) {
	case LineMultilineEnd:
		m.cur.cap.closed = true
		m.cur.lastLine = m.lineNo
		m.state = stateInBlock
	case LineMultilineBody:
		m.cur.cap.body = append(m.cur.cap.body, line)
		m.cur.lastLine = m.lineNo
	case LineHeader:
		m.openBlock(line)
	case LineMultilineBegin:
		m.beginCapture(line)
	case LineSub:
		m.appendSub(line)
	case LineBlank, LineComment:
		// skipped; blank and comment lines inside a block still appear
		// in RawText through the line span
	}
}

func (m *machine) captureState() CaptureState {
	if m.state == stateInMultiline && m.cur != nil && m.cur.cap != nil {
		return CaptureState{Active: true, Rule: m.cur.cap.rule}
	}
	return CaptureState{}
}

// openBlock finalizes any open draft and starts a new one from a header
// line. A malformed header produces a warning and leaves no block open.
func (m *machine) openBlock(line string) {
	m.finalize()

	h, err := m.p.parseHeader(line)
	if err != nil {
		m.warnings = append(m.warnings, Warning{Line: m.lineNo, Message: err.Error()})
		return
	}

	m.cur = &draft{header: h, startLine: m.lineNo, lastLine: m.lineNo}
	if h.Begin != nil {
		m.cur.cap = &capture{rule: h.Begin, match: h.Match}
		m.state = stateInMultiline
		return
	}
	m.state = stateInBlock
}

// appendSub adds a normalized command line to the open block. A command
// line with no block open has nothing to attach to and is dropped with
// a warning.
func (m *machine) appendSub(line string) {
	if m.cur == nil {
		m.warnings = append(m.warnings, Warning{Line: m.lineNo, Message: fmt.Sprintf("command line outside any module block: '%s'", normalizeLine(line))})
		return
	}
	m.cur.lines = append(m.cur.lines, normalizeLine(line))
	m.cur.lastLine = m.lineNo
}

// beginCapture opens a multiline payload from a command-line import
// clause. The trigger line itself stays in the block's command lines.
func (m *machine) beginCapture(line string) {
	if m.cur == nil {
		m.warnings = append(m.warnings, Warning{Line: m.lineNo, Message: fmt.Sprintf("import clause outside any module block: '%s'", normalizeLine(line))})
		return
	}
	norm := normalizeLine(line)
	rule, match := m.p.matchBegin(norm)
	m.cur.lines = append(m.cur.lines, norm)
	m.cur.lastLine = m.lineNo
	m.cur.cap = &capture{rule: rule, match: match}
	m.state = stateInMultiline
}

// finalize freezes the open draft, if any, into an immutable block.
// A capture still open at this point is kept with its partial body and
// marked incomplete.
func (m *machine) finalize() {
	d := m.cur
	m.cur = nil
	m.state = stateIdle
	if d == nil {
		return
	}

	b := ModuleBlock{
		Path:       d.header.Path,
		Index:      d.header.Index,
		Lines:      d.lines,
		RawText:    strings.Join(m.lines[d.startLine-1:d.lastLine], "\n"),
		LineRange:  LineRange{Start: d.startLine, End: d.lastLine},
		FormFactor: m.formFactor,
	}

	switch {
	case d.cap != nil:
		b.Type = d.cap.rule.Kind
		b.Multiline = d.multilineData()
	case d.header.Action != nil:
		b.Type = ModuleAction
		b.Action = d.header.Action
	case len(d.lines) > 0:
		if b.Index == "" || isNumeric(b.Index) {
			b.Type = ModuleStandard
		} else {
			b.Type = ModuleIndexed
		}
	default:
		b.Type = ModuleEmpty
	}

	if m.p.opts.DetectPlatform && m.formFactor == FormFactorVA {
		b.Hypervisor = detectHypervisor(b.Path)
	}

	m.out = append(m.out, b)
}

// multilineData builds the payload metadata for a captured draft.
func (d *draft) multilineData() *MultilineData {
	c := d.cap
	md := &MultilineData{
		Body:       strings.Join(c.body, "\n"),
		Incomplete: !c.closed,
	}
	switch c.rule.Kind {
	case ModuleCert:
		if len(c.match) > 2 {
			md.CertType = c.match[1]
			md.CertName = c.match[2]
		}
	case ModuleScript:
		md.ScriptID = d.header.Index
	default:
		if len(c.match) > 1 {
			md.CertName = c.match[1]
		}
	}
	return md
}
