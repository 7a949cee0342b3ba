package slo

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// ErrConfiguration is returned for malformed threshold files.
var ErrConfiguration = errors.New("invalid SLO configuration")

// file is the on-disk layout of a threshold file.
type file struct {
	DefaultSLO Override            `yaml:"default_slo"`
	TargetSLOs map[string]Override `yaml:"target_slos"`
}

// Load reads a YAML threshold file. Keys under default_slo replace the
// built-in defaults; keys under target_slos.<host> replace the resolved
// defaults for that host only.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse is like Load but reads from r.
func Parse(r io.Reader) (*Config, error) {
	var raw file
	err := yaml.NewDecoder(r).Decode(&raw)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	if err := validate("default_slo", raw.DefaultSLO); err != nil {
		return nil, err
	}
	hosts := make([]string, 0, len(raw.TargetSLOs))
	for host := range raw.TargetSLOs {
		hosts = append(hosts, host)
	}
	sort.Strings(hosts)
	for _, host := range hosts {
		if host == "" {
			return nil, fmt.Errorf("%w: target_slos: empty host", ErrConfiguration)
		}
		if err := validate("target_slos."+host, raw.TargetSLOs[host]); err != nil {
			return nil, err
		}
	}
	return NewConfig(raw.DefaultSLO.apply(DefaultThresholds()), raw.TargetSLOs), nil
}

func validate(section string, o Override) error {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		switch k {
		case KeyLatencyP95, KeyLatencyP99, KeyMaxLoss:
		default:
			return fmt.Errorf("%w: %s: unknown key %q", ErrConfiguration, section, k)
		}
		v := o[k]
		if v == nil {
			continue
		}
		if *v < 0 || math.IsNaN(*v) {
			return fmt.Errorf("%w: %s.%s: must be a non-negative number, got %v",
				ErrConfiguration, section, k, *v)
		}
	}
	return nil
}
