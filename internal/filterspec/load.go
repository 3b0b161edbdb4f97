package filterspec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

// Format is the syntax of a filter document.
type Format int

const (
	FormatYAML Format = iota
	FormatJSON
	FormatCUE
)

func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatJSON:
		return "json"
	case FormatCUE:
		return "cue"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// FormatForPath picks the format from the file extension.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".cue":
		return FormatCUE, nil
	default:
		return 0, fmt.Errorf("unsupported filter file %q: want .yaml, .yml, .json or .cue", path)
	}
}

// LoadFile reads and decodes a filter file.
func LoadFile(path string) (*Filter, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read filter file: %w", err)
	}

	doc, err := parse(data, format, path)
	if err != nil {
		return nil, err
	}
	return Decode(*doc)
}

// Parse decodes a filter document held in memory.
func Parse(data []byte, format Format) (*Filter, error) {
	doc, err := parse(data, format, "filter."+format.String())
	if err != nil {
		return nil, err
	}
	return Decode(*doc)
}

func parse(data []byte, format Format, name string) (*Document, error) {
	switch format {
	case FormatYAML:
		return parseYAML(data)
	case FormatJSON:
		return parseJSON(data)
	case FormatCUE:
		return parseCUE(data, name)
	default:
		return nil, fmt.Errorf("unsupported format %s", format)
	}
}

func parseYAML(data []byte) (*Document, error) {
	var doc Document
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty filter document")
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &doc, nil
}

func parseJSON(data []byte) (*Document, error) {
	var doc Document
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	// Keep 3 and 3.0 apart.
	decoder.UseNumber()
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty filter document")
		}
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return &doc, nil
}

// parseCUE evaluates the document and decodes its concrete JSON form.
func parseCUE(data []byte, name string) (*Document, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(name))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	raw, err := v.MarshalJSON()
	if err != nil {
		return nil, formatCUEError(err)
	}
	return parseJSON(raw)
}
