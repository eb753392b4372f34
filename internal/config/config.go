// Package config loads the kernel's YAML configuration file: the simulated
// tick rate, default task stack size, shutdown timeout and logging setup.
// It follows a named-section YAML layout, trimmed to the sections a
// cooperative scheduler actually needs.
package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/docker/go-units"
	"gopkg.in/yaml.v3"

	"github.com/rajszym/intros/internal/klog"
)

const (
	SectionName = "intros_config"

	DefaultTickFrequencyHz = 1000
	DefaultStackSizeStr    = "8KiB"
	DefaultShutdownMaxWait = 5 * time.Second
)

// Config is the root "intros_config" section of the YAML file.
type Config struct {
	// How often the simulated clock advances, in Hz. 0 disables the
	// simulated tick source entirely (System.Tick must be driven manually,
	// as in tests).
	TickFrequencyHz uint32 `yaml:"tick_frequency_hz"`

	// Default task stack size, human-readable (e.g. "8KiB", "64KiB"). Go
	// goroutines grow their stacks on demand, so this is informational —
	// carried for config parity and diagnostics, not enforced.
	DefaultStackSize string `yaml:"default_stack_size"`

	// How long Boot waits for the dispatcher to return after shutdown is
	// signalled.
	// Negative means wait indefinitely, zero means don't wait at all.
	ShutdownMaxWait time.Duration `yaml:"shutdown_max_wait"`

	LogConfig *klog.Config `yaml:"log_config"`
}

func Default() *Config {
	return &Config{
		TickFrequencyHz:  DefaultTickFrequencyHz,
		DefaultStackSize: DefaultStackSizeStr,
		ShutdownMaxWait:  DefaultShutdownMaxWait,
		LogConfig:        klog.DefaultConfig(),
	}
}

// StackSizeBytes parses DefaultStackSize into a byte count, e.g. for
// passing to NewTask as diagnostic metadata.
func (c *Config) StackSizeBytes() (uint32, error) {
	n, err := units.RAMInBytes(c.DefaultStackSize)
	if err != nil {
		return 0, fmt.Errorf("config: default_stack_size %q: %w", c.DefaultStackSize, err)
	}
	return uint32(n), nil
}

// TickInterval converts TickFrequencyHz into the time.Duration NewSimPort
// expects. A zero frequency yields a zero interval (simulated clock off).
func (c *Config) TickInterval() time.Duration {
	if c.TickFrequencyHz == 0 {
		return 0
	}
	return time.Second / time.Duration(c.TickFrequencyHz)
}

// Load reads and parses cfgFile into a Config seeded with defaults for any
// field the file omits. Passing a non-nil buf bypasses the file read, for
// tests.
func Load(cfgFile string, buf []byte) (*Config, error) {
	if buf == nil {
		f, err := os.Open(cfgFile)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		buf, err = io.ReadAll(f)
		if err != nil {
			return nil, fmt.Errorf("file: %q: %w", cfgFile, err)
		}
	}

	docNode := yaml.Node{}
	if err := yaml.Unmarshal(buf, &docNode); err != nil {
		return nil, fmt.Errorf("file: %q: %w", cfgFile, err)
	}

	cfg := Default()
	if docNode.Kind == yaml.DocumentNode && len(docNode.Content) > 0 {
		rootNode := docNode.Content[0]
		if rootNode.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("file: %q: invalid YAML root node %q", cfgFile, rootNode.Tag)
		}
		var toCfg any
		for _, n := range rootNode.Content {
			if n.Kind == yaml.ScalarNode {
				if n.Value == SectionName {
					toCfg = cfg
				} else {
					toCfg = nil
				}
				continue
			}
			if n.Kind == yaml.MappingNode && toCfg != nil {
				if err := n.Decode(toCfg); err != nil {
					return nil, fmt.Errorf("file: %q: %w", cfgFile, err)
				}
			}
			toCfg = nil
		}
	}

	return cfg, nil
}
