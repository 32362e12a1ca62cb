// FILE: alteon/detect.go
package alteon

import (
	"regexp"
	"strconv"
	"strings"
)

// FormFactor identifies the platform a configuration dump was taken from.
type FormFactor string

const (
	// FormFactorSA is a standalone hardware appliance (the default)
	FormFactorSA FormFactor = "SA"
	// FormFactorVA is a virtual appliance
	FormFactorVA FormFactor = "VA"
	// FormFactorVX is a virtualization host (vADC Id 0)
	FormFactorVX FormFactor = "VX"
	// FormFactorVADC is a hosted vADC instance (vADC Id > 0)
	FormFactorVADC FormFactor = "vADC"
)

// Hypervisor identifies the cloud platform a VA module is scoped to.
// Empty means the module applies to every platform.
type Hypervisor string

const (
	HypervisorAWS   Hypervisor = "aws"
	HypervisorAzure Hypervisor = "azure"
	HypervisorGCP   Hypervisor = "gcp"
)

// Platform markers in the dump preamble.
var (
	vaQuotedPattern  = regexp.MustCompile(`"[^"]*\sVA\s*"`)
	vaLeadingPattern = regexp.MustCompile(`"VA\s`)
	vadcIDPattern    = regexp.MustCompile(`(?i)vADC\s+Id\s+(\d+)`)
)

// detectFormFactor inspects the leading lines of a dump for platform
// markers. The first line is the dump's script armor; a quoted product
// name ending in "VA" marks a virtual appliance. Banner comments
// carrying "vADC Id N" distinguish the virtualization host (Id 0) from
// hosted instances. Everything else is a standalone appliance.
func detectFormFactor(lines []string) FormFactor {
	if len(lines) > headerWindow {
		lines = lines[:headerWindow]
	}

	if len(lines) > 0 {
		first := lines[0]
		if vaQuotedPattern.MatchString(first) || vaLeadingPattern.MatchString(first) {
			return FormFactorVA
		}
	}

	for _, line := range lines {
		if !strings.HasPrefix(strings.TrimSpace(line), "/*") {
			continue
		}
		m := vadcIDPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		id, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if id == 0 {
			return FormFactorVX
		}
		return FormFactorVADC
	}

	return FormFactorSA
}

// detectHypervisor maps a module path to the cloud platform it targets.
// Matching is a case-insensitive substring check, so "/c/AWS/integration"
// counts as aws.
func detectHypervisor(path string) Hypervisor {
	p := strings.ToLower(path)
	switch {
	case strings.Contains(p, "aws"):
		return HypervisorAWS
	case strings.Contains(p, "azure"):
		return HypervisorAzure
	case strings.Contains(p, "gcp"):
		return HypervisorGCP
	}
	return ""
}
