// FILE: alteon/options.go
package alteon

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// SentinelSpec is the on-disk form of one sentinel table entry.
type SentinelSpec struct {
	// Begin is a regular expression matched against normalized lines.
	Begin string `json:"begin" yaml:"begin" toml:"begin"`
	// End is the literal end-marker prefix, matched at column 0.
	End string `json:"end" yaml:"end" toml:"end"`
}

// Options configures parsing behavior. The zero value is not usable;
// start from DefaultOptions and override what differs.
type Options struct {
	// Sentinels is the multiline capture table, keyed by kind ("cert",
	// "script", or a custom kind name).
	Sentinels map[string]SentinelSpec `json:"sentinels" yaml:"sentinels" toml:"sentinels"`

	// ActionVerbs are the imperative keywords recognized in header lines.
	ActionVerbs []string `json:"action_verbs" yaml:"action_verbs" toml:"action_verbs"`

	// MaxFileSize bounds a single input file in bytes. Options files may
	// give it a suffixed string ("10MB").
	MaxFileSize int64 `json:"max_file_size" yaml:"max_file_size" toml:"max_file_size"`

	// DetectPlatform toggles form-factor and hypervisor stamping.
	DetectPlatform bool `json:"detect_platform" yaml:"detect_platform" toml:"detect_platform"`
}

// DefaultOptions returns the options a bare New parser runs with.
func DefaultOptions() Options {
	return Options{
		Sentinels: map[string]SentinelSpec{
			sentinelKindCert:   {Begin: defaultCertBegin, End: defaultEndMarker},
			sentinelKindScript: {Begin: defaultScriptBegin, End: defaultEndMarker},
		},
		ActionVerbs:    []string{"clear", "add", "delete", "remove", "on", "off"},
		MaxFileSize:    maxSourceFileSize,
		DetectPlatform: true,
	}
}

// clone returns a deep copy, so parsers never share mutable state with
// their callers.
func (o Options) clone() Options {
	out := o
	out.Sentinels = make(map[string]SentinelSpec, len(o.Sentinels))
	for k, v := range o.Sentinels {
		out.Sentinels[k] = v
	}
	out.ActionVerbs = append([]string(nil), o.ActionVerbs...)
	return out
}

// Validate checks the options for internal consistency.
func (o Options) Validate() error {
	if o.MaxFileSize <= 0 {
		return fmt.Errorf("max_file_size must be positive, got %d", o.MaxFileSize)
	}
	if len(o.Sentinels) == 0 {
		return fmt.Errorf("sentinel table must not be empty")
	}
	for name, spec := range o.Sentinels {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("sentinel kind name must not be empty")
		}
		if spec.Begin == "" {
			return fmt.Errorf("%w: sentinel '%s' has no begin pattern", ErrSentinelPattern, name)
		}
		if spec.End == "" {
			return fmt.Errorf("sentinel '%s' has no end marker", name)
		}
	}
	for _, v := range o.ActionVerbs {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("action verb must not be empty")
		}
	}
	return nil
}

// OptionsFromFile loads options from a TOML, YAML or JSON file, layered
// over the defaults. Keys absent from the file keep their default
// values; a file defining only one sentinel kind leaves the others in
// place.
func OptionsFromFile(path string) (Options, error) {
	opts := DefaultOptions()

	data, err := readSource(path, maxOptionsFileSize)
	if err != nil {
		return opts, err
	}

	raw, err := unmarshalAny(data, resolveFormat(path, data))
	if err != nil {
		return opts, fmt.Errorf("failed to load options file '%s': %w", path, err)
	}

	if err := decodeOptions(raw, &opts); err != nil {
		return opts, fmt.Errorf("failed to decode options file '%s': %w", path, err)
	}
	if err := opts.Validate(); err != nil {
		return opts, fmt.Errorf("invalid options in '%s': %w", path, err)
	}
	return opts, nil
}

// Save writes the options to path in the format its extension names
// (TOML when the extension decides nothing).
func (o Options) Save(path string) error {
	format := detectFileFormat(path)
	if format == "" {
		format = FormatTOML
	}
	data, err := marshalAny(o, format)
	if err != nil {
		return fmt.Errorf("failed to encode options: %w", err)
	}
	return atomicWriteFile(path, data)
}

// decodeOptions maps loosely typed file data onto Options with the same
// weakly-typed decoding the rest of the package uses.
func decodeOptions(raw map[string]any, target *Options) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "toml",
		WeaklyTypedInput: true,
		DecodeHook:       optionsDecodeHook(),
	})
	if err != nil {
		return fmt.Errorf("decoder creation failed: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}
	return nil
}

// optionsDecodeHook returns the composite decode hook for options files.
func optionsDecodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		stringToByteSizeHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
}

// stringToByteSizeHookFunc converts suffixed size strings ("512K",
// "10MB") into byte counts for int64 fields.
func stringToByteSizeHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String || t.Kind() != reflect.Int64 {
			return data, nil
		}
		return parseByteSize(data.(string))
	}
}

// parseByteSize reads "4096", "512K", "10MB" or "1G" into bytes.
func parseByteSize(s string) (int64, error) {
	orig := s
	s = strings.ToUpper(strings.TrimSpace(s))

	mult := int64(1)
	switch {
	case strings.HasSuffix(s, "GB"):
		mult, s = 1<<30, strings.TrimSuffix(s, "GB")
	case strings.HasSuffix(s, "G"):
		mult, s = 1<<30, strings.TrimSuffix(s, "G")
	case strings.HasSuffix(s, "MB"):
		mult, s = 1<<20, strings.TrimSuffix(s, "MB")
	case strings.HasSuffix(s, "M"):
		mult, s = 1<<20, strings.TrimSuffix(s, "M")
	case strings.HasSuffix(s, "KB"):
		mult, s = 1<<10, strings.TrimSuffix(s, "KB")
	case strings.HasSuffix(s, "K"):
		mult, s = 1<<10, strings.TrimSuffix(s, "K")
	case strings.HasSuffix(s, "B"):
		s = strings.TrimSuffix(s, "B")
	}

	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return int64(0), fmt.Errorf("invalid size '%s'", orig)
	}
	return n * mult, nil
}
