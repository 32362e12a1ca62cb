// File: alteon/multiline.go
package alteon

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// SentinelRule defines how one multiline payload kind is recognized.
// Begin runs against the normalized command line (or the whole
// normalized header when the import clause is written as one); End is a
// literal prefix matched at column 0 of the raw line.
type SentinelRule struct {
	// Kind is the module type stamped on blocks this rule captures.
	Kind ModuleType
	// Begin opens a capture when it matches. For the certificate kind
	// the first group is the import kind word and the second the quoted
	// object name; for custom kinds a single group names the payload.
	Begin *regexp.Regexp
	// End closes the capture.
	End string
}

// Built-in sentinel literals, mirroring the device CLI's import syntax.
// Deployments with customized markers override them through Options.
const (
	defaultCertBegin   = `(?i)import\s+(cert|request|key)\s+"([^"]+)"\s+text`
	defaultScriptBegin = `(?i)import\s+text`
	defaultEndMarker   = `-----END`
)

// sentinelKindCert and sentinelKindScript key the built-in table entries.
const (
	sentinelKindCert   = "cert"
	sentinelKindScript = "script"
)

// compileSentinels builds the capture table from its on-disk form. The
// certificate rule is tried before the script rule, then custom kinds
// in name order.
func compileSentinels(specs map[string]SentinelSpec) ([]SentinelRule, error) {
	names := make([]string, 0, len(specs))
	for name := range specs {
		if name != sentinelKindCert && name != sentinelKindScript {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	ordered := make([]string, 0, len(specs))
	for _, name := range []string{sentinelKindCert, sentinelKindScript} {
		if _, ok := specs[name]; ok {
			ordered = append(ordered, name)
		}
	}
	ordered = append(ordered, names...)

	rules := make([]SentinelRule, 0, len(ordered))
	for _, name := range ordered {
		spec := specs[name]
		re, err := regexp.Compile(spec.Begin)
		if err != nil {
			return nil, fmt.Errorf("%w: sentinel '%s' begin pattern: %v", ErrSentinelPattern, name, err)
		}
		rules = append(rules, SentinelRule{Kind: sentinelKind(name), Begin: re, End: spec.End})
	}
	return rules, nil
}

// sentinelKind maps a table key to its module type tag.
func sentinelKind(name string) ModuleType {
	switch name {
	case sentinelKindCert:
		return ModuleCert
	case sentinelKindScript:
		return ModuleScript
	}
	return ModuleType("multiline_" + name)
}

// matchBegin returns the first rule whose begin pattern matches the
// normalized line, with its submatches.
func (p *Parser) matchBegin(norm string) (*SentinelRule, []string) {
	for i := range p.rules {
		if m := p.rules[i].Begin.FindStringSubmatch(norm); m != nil {
			return &p.rules[i], m
		}
	}
	return nil, nil
}

// headerBegin checks whether a normalized header line carries an import
// clause. Whole tokens between the path and the clause form the block
// index; a token fused at a slash boundary ("10/import") contributes
// its leading part.
func (p *Parser) headerBegin(norm string) (*SentinelRule, []string, string) {
	for i := range p.rules {
		loc := p.rules[i].Begin.FindStringSubmatchIndex(norm)
		if loc == nil {
			continue
		}
		match := make([]string, 0, len(loc)/2)
		for g := 0; g*2 < len(loc); g++ {
			s, e := loc[2*g], loc[2*g+1]
			if s < 0 {
				match = append(match, "")
			} else {
				match = append(match, norm[s:e])
			}
		}
		index := ""
		if fields := strings.Fields(norm[:loc[0]]); len(fields) > 1 {
			index = strings.TrimSuffix(strings.Join(fields[1:], " "), "/")
		}
		return &p.rules[i], match, index
	}
	return nil, nil, ""
}
