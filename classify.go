// FILE: alteon/classify.go
package alteon

import (
	"fmt"
	"strings"
)

// LineKind is the shape category the classifier assigns to one input line.
type LineKind int

const (
	// LineBlank carries nothing but whitespace
	LineBlank LineKind = iota
	// LineComment is a banner comment or dump armor line
	LineComment
	// LineHeader opens a module block with an absolute command path
	LineHeader
	// LineSub is a command line belonging to the open block
	LineSub
	// LineMultilineBegin is a command line that opens a payload capture
	LineMultilineBegin
	// LineMultilineEnd is the end sentinel of the active capture
	LineMultilineEnd
	// LineMultilineBody is verbatim payload inside an active capture
	LineMultilineBody
)

// String returns the kind name used in logs and test output.
func (k LineKind) String() string {
	switch k {
	case LineBlank:
		return "blank"
	case LineComment:
		return "comment"
	case LineHeader:
		return "header"
	case LineSub:
		return "subline"
	case LineMultilineBegin:
		return "multiline_begin"
	case LineMultilineEnd:
		return "multiline_end"
	case LineMultilineBody:
		return "multiline_body"
	}
	return "unknown"
}

// CaptureState is the multiline context a classification runs under.
// The classifier holds no state of its own; the caller passes its
// current capture in on every call.
type CaptureState struct {
	// Active is true while a payload capture is open.
	Active bool
	// Rule is the sentinel rule that opened the capture.
	Rule *SentinelRule
}

// Dump armor markers. The CLI wraps dumps in script start/end lines that
// carry no configuration.
const (
	armorStart = "script start "
	armorEnd   = "script end"
)

// isArmor reports whether a trimmed line is dump armor.
func isArmor(trimmed string) bool {
	if strings.HasPrefix(trimmed, armorStart) {
		return true
	}
	return trimmed == armorEnd || strings.HasPrefix(trimmed, armorEnd+" ")
}

// Classify determines the shape of one raw input line. It is a pure
// function of the line text, the capture state and the parser's
// sentinel table.
//
// Inside a capture only two outcomes exist: a raw line starting with the
// opening rule's end marker closes it, and everything else is payload.
// Indented or embedded end-marker lookalikes never terminate a capture,
// and no normalization or comment handling applies until it closes.
func (p *Parser) Classify(line string, cs CaptureState) LineKind {
	if cs.Active {
		if cs.Rule != nil && strings.HasPrefix(line, cs.Rule.End) {
			return LineMultilineEnd
		}
		return LineMultilineBody
	}

	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "":
		return LineBlank
	case strings.HasPrefix(trimmed, "/*"):
		return LineComment
	case isArmor(trimmed):
		return LineComment
	case strings.HasPrefix(line, "/"):
		return LineHeader
	}

	if rule, _ := p.matchBegin(normalizeLine(line)); rule != nil {
		return LineMultilineBegin
	}
	return LineSub
}

// Header is the parsed form of a module header line.
type Header struct {
	// Path is the absolute command path, first token of the line.
	Path string
	// Index is whatever trails the path: a numeric slot, a quoted or
	// bare object name, possibly spanning several tokens.
	Index string
	// Action is set when the header is an imperative command rather
	// than a block opener.
	Action *ActionData
	// Begin is set when the header itself carries an import clause that
	// opens a payload capture; Match holds the clause submatches.
	Begin *SentinelRule
	Match []string
}

// parseHeader splits a header line into path, index and action form.
//
// The grammar is positional: the first token is the path. An action verb
// may terminate the path ("/c/slb/pip/add 10.1.1.1"), stand alone as the
// last token ("/c/cons/tnet off"), or ride the last token fused with an
// index ("/c/l2/stg 1/clear"). Anything else trailing the path is the
// block index. A header matching a begin sentinel opens a capture
// instead; its trailing tokens belong to the import clause, not the
// index.
func (p *Parser) parseHeader(line string) (Header, error) {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return Header{}, fmt.Errorf("empty header line")
	}

	path := tokens[0]
	if !validPath(path) {
		return Header{}, fmt.Errorf("malformed header path '%s'", path)
	}

	h := Header{Path: path}

	// Import clauses span the path tail and the trailing tokens, so the
	// match runs against the whole normalized line.
	if rule, match, index := p.headerBegin(normalizeLine(line)); rule != nil {
		h.Begin = rule
		h.Match = match
		h.Index = index
		return h, nil
	}

	rest := tokens[1:]
	segs := splitPath(path)
	if verb := strings.ToLower(segs[len(segs)-1]); p.isActionVerb(verb) {
		h.Action = &ActionData{Verb: verb, Params: actionParams(rest)}
		return h, nil
	}

	if len(rest) > 0 {
		last := rest[len(rest)-1]
		if i := strings.IndexByte(last, '/'); i > 0 {
			if verb := strings.ToLower(last[i+1:]); p.isActionVerb(verb) {
				h.Path = path + "/" + verb
				h.Index = last[:i]
				h.Action = &ActionData{Verb: verb, Params: actionParams(rest[:len(rest)-1])}
				return h, nil
			}
		}
		if verb := strings.ToLower(last); p.isActionVerb(verb) {
			h.Action = &ActionData{Verb: verb, Params: actionParams(rest[:len(rest)-1])}
			return h, nil
		}
		h.Index = strings.Join(rest, " ")
	}

	return h, nil
}

// actionParams copies the parameter tokens, nil when there are none so
// serialized forms stay canonical.
func actionParams(tokens []string) []string {
	if len(tokens) == 0 {
		return nil
	}
	return append([]string(nil), tokens...)
}

// isActionVerb reports whether token is a configured imperative verb.
// Matching is case-insensitive; callers pass the token lowered.
func (p *Parser) isActionVerb(token string) bool {
	_, ok := p.verbs[token]
	return ok
}
