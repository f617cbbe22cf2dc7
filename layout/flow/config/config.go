// Package config loads the style-chain defaults flow falls back to when an
// element doesn't carry its own explicit value — paragraph spacing,
// leading, widow/orphan costs, and wrap/masthead clearance (spec.md §4.3
// "resolve above/below spacing with fallback", §4.7 "Clearance ... zero
// means use flow/config default"). Loading is grounded on
// boergens-gotypst's eval/fileops.go yaml()/toml() native functions: read
// the file, unmarshal into the library's own representation, surface parse
// failures as a single wrapped error type rather than the raw decoder
// error.
package config

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/andreyvit/flowtype/layout"
)

// Config holds the document-wide style-chain defaults a composer applies
// before handing elements to flow.Collect, the same role boergens-gotypst's
// loaded TOML/YAML documents play for its own native function results:
// plain data, decoded once, consulted repeatedly.
type Config struct {
	// ParSpacing is the fallback above/below amount for a block whose
	// Above/Below is nil, carrying WeaknessParagraphAuto (spec.md §4.3).
	ParSpacing Relative `toml:"par_spacing" yaml:"par_spacing"`
	// Leading is the default paragraph line leading.
	Leading layout.Abs `toml:"leading" yaml:"leading"`
	// Costs are the default widow/orphan avoidance weights a paragraph
	// uses when it doesn't specify its own Costs.
	Costs Costs `toml:"costs" yaml:"costs"`
	// WrapClearance and MastheadClearance are the fallback Clearance
	// values for WrapElement/MastheadElement when theirs is zero
	// (spec.md §4.7).
	WrapClearance     layout.Abs `toml:"wrap_clearance" yaml:"wrap_clearance"`
	MastheadClearance layout.Abs `toml:"masthead_clearance" yaml:"masthead_clearance"`
}

// Relative mirrors layout.Relative with decoder-visible field names;
// toml/yaml can't be pointed at an imported struct's unexported layout, so
// config carries its own and converts with Resolve's inputs at the call
// site via ToLayout.
type Relative struct {
	Abs layout.Abs  `toml:"abs" yaml:"abs"`
	Rel layout.Ratio `toml:"rel" yaml:"rel"`
}

// ToLayout converts to the layout package's own Relative type.
func (r Relative) ToLayout() layout.Relative {
	return layout.Relative{Abs: r.Abs, Rel: r.Rel}
}

// Costs mirrors flow.Costs's fields for decoding; kept separate so this
// package never imports flow just to shape a config file.
type Costs struct {
	Orphan float64 `toml:"orphan" yaml:"orphan"`
	Widow  float64 `toml:"widow" yaml:"widow"`
}

// Default returns the built-in fallback values a composer uses when no
// config file is supplied, matching Typst's defaults for par leading,
// spacing, and the zero-weighted widow/orphan costs original_source ships
// when a paragraph doesn't set its own.
func Default() Config {
	return Config{
		ParSpacing:        Relative{Abs: layout.Pt * 12},
		Leading:           layout.Pt * 1.2 * 11,
		Costs:             Costs{Orphan: 0, Widow: 0},
		WrapClearance:     layout.Pt * 6,
		MastheadClearance: layout.Pt * 6,
	}
}

// ParseError wraps a config decode failure with the path and format that
// produced it, the way boergens-gotypst's FileParseError reports a failed
// yaml()/toml() call to its caller.
type ParseError struct {
	Path   string
	Format string
	Err    error
}

func (e *ParseError) Error() string {
	return errors.Wrapf(e.Err, "%s: parse %s", e.Path, e.Format).Error()
}

func (e *ParseError) Unwrap() error { return e.Err }

// LoadTOML reads path and decodes it into a Config, the way TomlFunc reads
// a file with the engine's world and decodes it with toml.Decode.
func LoadTOML(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config: read %s", path)
	}
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return Config{}, &ParseError{Path: path, Format: "toml", Err: err}
	}
	return cfg, nil
}

// LoadYAML reads path and decodes it into a Config, the way yamlNative
// reads a file with the engine's world and decodes it with yaml.Unmarshal.
func LoadYAML(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config: read %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, &ParseError{Path: path, Format: "yaml", Err: err}
	}
	return cfg, nil
}

// WrapClearanceOr returns clearance if non-zero, else the config default.
func (c Config) WrapClearanceOr(clearance layout.Abs) layout.Abs {
	if clearance != 0 {
		return clearance
	}
	return c.WrapClearance
}

// MastheadClearanceOr returns clearance if non-zero, else the config
// default.
func (c Config) MastheadClearanceOr(clearance layout.Abs) layout.Abs {
	if clearance != 0 {
		return clearance
	}
	return c.MastheadClearance
}
