package config

import (
	"fmt"
	"os"
	"slices"

	"github.com/raphaelgruber/railvoice/internal/browser"
	"github.com/raphaelgruber/railvoice/internal/ticket"
	"gopkg.in/yaml.v3"
)

// Profile describes the deployment's route and the shape of the fallback
// website. Every field is optional; empty fields keep the built-in defaults.
//
//	markers:
//	  origin: [Junction, BSB]
//	  destination: [New Delhi, NDLS]
//	browser:
//	  input_selectors:
//	    - {name: name, kind: query, selector: "input[name='pnr']"}
//	  error_phrases: ["Something went wrong"]
type Profile struct {
	Markers ticket.Markers `yaml:"markers"`
	Browser BrowserProfile `yaml:"browser"`
}

// BrowserProfile overrides the driver's selector strategies and phrases.
type BrowserProfile struct {
	InputSelectors  []browser.Strategy `yaml:"input_selectors"`
	SubmitSelectors []browser.Strategy `yaml:"submit_selectors"`
	ErrorPhrases    []string           `yaml:"error_phrases"`
}

// LoadProfile reads a YAML profile. An empty path yields an empty profile.
func LoadProfile(path string) (Profile, error) {
	var p Profile
	if path == "" {
		return p, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read profile: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse profile %s: %w", path, err)
	}

	for _, s := range slices.Concat(p.Browser.InputSelectors, p.Browser.SubmitSelectors) {
		if s.Selector == "" {
			return p, fmt.Errorf("parse profile %s: selector %q has no selector", path, s.Name)
		}
		if s.Kind != browser.KindQuery && s.Kind != browser.KindXPath {
			return p, fmt.Errorf("parse profile %s: selector %q has unknown kind %q", path, s.Name, s.Kind)
		}
	}
	return p, nil
}

// Markers merges route markers. Environment lists win over the profile.
func (c Config) Markers(p Profile) ticket.Markers {
	m := p.Markers
	if len(c.OriginMarkers) > 0 {
		m.Origin = c.OriginMarkers
	}
	if len(c.DestinationMarkers) > 0 {
		m.Destination = c.DestinationMarkers
	}
	return m
}

// BrowserOptions builds driver options from the environment and profile.
func (c Config) BrowserOptions(p Profile) browser.Options {
	return browser.Options{
		URL:              c.LookupURL,
		RemoteURL:        c.BrowserWSURL,
		ExecPath:         c.ChromePath,
		Headless:         c.Headless,
		ElementWait:      c.ElementWait,
		DebugDir:         c.DebugDir,
		InputStrategies:  p.Browser.InputSelectors,
		SubmitStrategies: p.Browser.SubmitSelectors,
		ErrorPhrases:     p.Browser.ErrorPhrases,
	}
}
