// FILE: alteon/document.go
package alteon

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format identifies a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// DocumentMeta describes a written document.
type DocumentMeta struct {
	GeneratedAt  time.Time `json:"generated_at" yaml:"generated_at" toml:"generated_at"`
	Generator    string    `json:"generator" yaml:"generator" toml:"generator"`
	TotalModules int       `json:"total_modules" yaml:"total_modules" toml:"total_modules"`
	SourceFiles  []string  `json:"source_files,omitempty" yaml:"source_files,omitempty" toml:"source_files,omitempty"`
	Stats        Stats     `json:"stats" yaml:"stats" toml:"stats"`
}

// Document is the serializable form of a module set: its blocks in
// order, plus the aggregate views computed when the set was frozen.
type Document struct {
	Metadata   DocumentMeta     `json:"metadata" yaml:"metadata" toml:"metadata"`
	Modules    []ModuleBlock    `json:"modules" yaml:"modules" toml:"modules"`
	Duplicates []DuplicateGroup `json:"duplicates,omitempty" yaml:"duplicates,omitempty" toml:"duplicates,omitempty"`
	Warnings   []Warning        `json:"warnings,omitempty" yaml:"warnings,omitempty" toml:"warnings,omitempty"`
}

// NewDocument snapshots a module set.
func NewDocument(set *ModuleSet) *Document {
	return &Document{
		Metadata: DocumentMeta{
			GeneratedAt:  time.Now().UTC(),
			Generator:    "alteon",
			TotalModules: set.Len(),
			SourceFiles:  set.Sources(),
			Stats:        set.Stats(),
		},
		Modules:    set.All(),
		Duplicates: set.Duplicates(),
		Warnings:   set.Warnings(),
	}
}

// ModuleSet rebuilds the queryable set this document was written from.
func (d *Document) ModuleSet() *ModuleSet {
	return newModuleSet(append([]ModuleBlock(nil), d.Modules...), append([]Warning(nil), d.Warnings...), append([]string(nil), d.Metadata.SourceFiles...))
}

// Encode writes the document to w in the given format.
func (d *Document) Encode(w io.Writer, format Format) error {
	data, err := marshalAny(d, format)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}

// WriteFile writes the document atomically, in the format the file
// extension names (JSON when the extension decides nothing).
func (d *Document) WriteFile(path string) error {
	format := detectFileFormat(path)
	if format == "" {
		format = FormatJSON
	}
	data, err := marshalAny(d, format)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	return atomicWriteFile(path, data)
}

// ReadDocument loads a previously written document. The format comes
// from the extension, then from the content.
func ReadDocument(path string) (*Document, error) {
	data, err := readSource(path, maxDocumentSize)
	if err != nil {
		return nil, err
	}

	format := resolveFormat(path, data)
	if format == "" {
		return nil, fmt.Errorf("document '%s': %w", path, ErrUnknownFormat)
	}

	doc := &Document{}
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, doc); err != nil {
			return nil, fmt.Errorf("failed to parse JSON document '%s': %w", path, err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, doc); err != nil {
			return nil, fmt.Errorf("failed to parse YAML document '%s': %w", path, err)
		}
	case FormatTOML:
		if err := toml.Unmarshal(data, doc); err != nil {
			return nil, fmt.Errorf("failed to parse TOML document '%s': %w", path, err)
		}
	}
	return doc, nil
}

// LatestDocument finds the newest document in dir whose name matches
// pattern (shell glob). Timestamped names sort lexically, so the last
// match is the newest.
func LatestDocument(dir, pattern string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return "", fmt.Errorf("invalid document pattern '%s': %w", pattern, err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("%w: no documents matching '%s' in '%s'", ErrSourceNotFound, pattern, dir)
	}
	latest := matches[0]
	for _, m := range matches[1:] {
		if m > latest {
			latest = m
		}
	}
	return latest, nil
}

// readSource reads one bounded input file.
func readSource(path string, limit int64) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: '%s'", ErrSourceNotFound, path)
		}
		return nil, fmt.Errorf("failed to stat '%s': %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("'%s' is a directory, not a file", path)
	}
	if limit > 0 && info.Size() > limit {
		return nil, fmt.Errorf("%w: '%s' is %d bytes (limit %d)", ErrSourceSize, path, info.Size(), limit)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open '%s': %w", path, err)
	}
	defer file.Close()

	// LimitReader guards against the file growing between stat and read
	var reader io.Reader = file
	if limit > 0 {
		reader = io.LimitReader(file, limit)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read '%s': %w", path, err)
	}
	return data, nil
}

// atomicWriteFile writes data via a temp file and rename, so readers
// never observe a partial document.
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory '%s': %w", dir, err)
	}

	tempFile, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	tempPath := tempFile.Name()
	defer os.Remove(tempPath) // Clean up on any error

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to write temporary file: %w", err)
	}

	if err := tempFile.Sync(); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to sync temporary file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	if err := os.Chmod(tempPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}

// detectFileFormat maps a file extension onto a format.
func detectFileFormat(path string) Format {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".toml", ".tml":
		return FormatTOML
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return ""
	}
}

// detectFormatFromContent attempts to detect format by parsing. The
// targets are typed maps so scalar-friendly YAML cannot claim every
// input.
func detectFormatFromContent(data []byte) Format {
	// Try JSON first (strict format)
	var jsonTest map[string]any
	if err := json.Unmarshal(data, &jsonTest); err == nil {
		return FormatJSON
	}

	// Try YAML (superset of JSON, so check after JSON)
	var yamlTest map[string]any
	if err := yaml.Unmarshal(data, &yamlTest); err == nil {
		return FormatYAML
	}

	// Try TOML last
	var tomlTest map[string]any
	if err := toml.Unmarshal(data, &tomlTest); err == nil {
		return FormatTOML
	}

	return ""
}

// resolveFormat tries the extension, then the content.
func resolveFormat(path string, data []byte) Format {
	if format := detectFileFormat(path); format != "" {
		return format
	}
	return detectFormatFromContent(data)
}

// unmarshalAny decodes data in the given format into a loose map.
func unmarshalAny(data []byte, format Format) (map[string]any, error) {
	out := make(map[string]any)
	switch format {
	case FormatTOML:
		if err := toml.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
	case FormatJSON:
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.UseNumber() // Preserve number precision
		if err := decoder.Decode(&out); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	default:
		return nil, ErrUnknownFormat
	}
	return out, nil
}

// marshalAny encodes v in the given format.
func marshalAny(v any, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode JSON: %w", err)
		}
		return append(data, '\n'), nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return nil, fmt.Errorf("failed to encode YAML: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("failed to finish YAML encoding: %w", err)
		}
		return buf.Bytes(), nil
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(v); err != nil {
			return nil, fmt.Errorf("failed to encode TOML: %w", err)
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("%w: '%s'", ErrUnknownFormat, format)
}
