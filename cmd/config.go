package cmd

import (
	"fmt"
	"os"

	"github.com/ghodss/yaml"

	"github.com/styrainc/jsondoc/pkg/json"
)

// Config holds defaults read from the --config file. Command line flags take
// precedence over it.
type Config struct {
	Render RenderConfig `json:"render"`
	Log    LogConfig    `json:"log"`
}

type RenderConfig struct {
	Compact      bool   `json:"compact"`
	SortKeys     bool   `json:"sort_keys"`
	RawStrings   bool   `json:"raw_strings"`
	NumberFormat string `json:"number_format"`
}

type LogConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// LoadConfig reads a YAML (or JSON) config file.
func LoadConfig(name string) (*Config, error) {
	bs, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(bs)
}

func ParseConfig(bs []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(bs, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if _, err := json.ParseNumberFormat(c.Render.NumberFormat); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &c, nil
}

func (c RenderConfig) options() json.RenderOptions {
	nf, _ := json.ParseNumberFormat(c.NumberFormat)
	return json.RenderOptions{
		Compact:      c.Compact,
		SortKeys:     c.SortKeys,
		RawStrings:   c.RawStrings,
		NumberFormat: nf,
	}
}
