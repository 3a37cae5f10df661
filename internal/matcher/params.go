package matcher

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Params holds the tunable scoring and assignment knobs. The blend weights,
// assignment floor, and confidence cutoffs are calibration targets, not
// fixed law; deployments override them via config or a matching.yaml file.
type Params struct {
	// TokenWeight and StringWeight blend the two similarity signals.
	// Token overlap is weighted higher because it is less prone to
	// spurious partial matches on short names.
	TokenWeight  float64 `yaml:"tokenWeight"`
	StringWeight float64 `yaml:"stringWeight"`

	// Floor is the minimum score required to accept an assignment.
	Floor float64 `yaml:"floor"`

	// HighCutoff and MediumCutoff bucket accepted matches for reporting.
	HighCutoff   float64 `yaml:"highCutoff"`
	MediumCutoff float64 `yaml:"mediumCutoff"`

	// MaxAlternates caps the next-best candidates reported per file.
	MaxAlternates int `yaml:"maxAlternates"`
}

// DefaultParams returns the default engine parameters.
func DefaultParams() Params {
	return Params{
		TokenWeight:   0.7,
		StringWeight:  0.3,
		Floor:         0.3,
		HighCutoff:    0.8,
		MediumCutoff:  0.5,
		MaxAlternates: 3,
	}
}

// ParamsFromReader reads YAML parameter overrides on top of the defaults.
func ParamsFromReader(r io.Reader) (Params, error) {
	p := DefaultParams()
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&p); err != nil && err != io.EOF {
		return Params{}, fmt.Errorf("decoding matching params: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

// LoadParamsFile reads YAML overrides from path on top of base. A missing
// file is not an error; base comes back unchanged.
func LoadParamsFile(path string, base Params) (Params, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return base, nil
	}
	if err != nil {
		return base, fmt.Errorf("opening matching params: %w", err)
	}
	defer f.Close()

	p := base
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&p); err != nil && err != io.EOF {
		return base, fmt.Errorf("decoding matching params: %w", err)
	}
	if err := p.Validate(); err != nil {
		return base, err
	}
	return p, nil
}

// Validate checks that the parameters describe a usable scoring model.
func (p Params) Validate() error {
	for name, v := range map[string]float64{
		"tokenWeight":  p.TokenWeight,
		"stringWeight": p.StringWeight,
		"floor":        p.Floor,
		"highCutoff":   p.HighCutoff,
		"mediumCutoff": p.MediumCutoff,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("matching param %s out of range [0,1]: %v", name, v)
		}
	}
	if p.TokenWeight+p.StringWeight == 0 {
		return fmt.Errorf("matching params: blend weights sum to zero")
	}
	if p.MediumCutoff > p.HighCutoff {
		return fmt.Errorf("matching params: mediumCutoff %v above highCutoff %v", p.MediumCutoff, p.HighCutoff)
	}
	if p.MaxAlternates < 0 {
		return fmt.Errorf("matching params: maxAlternates must be >= 0")
	}
	return nil
}
