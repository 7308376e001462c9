package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Dosada05/card-league/standings"
)

type scoringFile struct {
	Scoring standings.ScoringRules `yaml:"scoring"`
}

// LoadScoringRules reads scoring rules from a YAML file of the form
//
//	scoring:
//	  win_mark: W
//	  loss_mark: L
//	  tie_mark: T
//	  win_bonus: 0
//	  shutout_is_boston: false
//
// An empty path or a missing file yields the default rules.
func LoadScoringRules(path string) (standings.ScoringRules, error) {
	if path == "" {
		return standings.DefaultRules(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return standings.DefaultRules(), nil
		}
		return standings.ScoringRules{}, fmt.Errorf("read scoring rules %s: %w", path, err)
	}
	return ParseScoringRules(data)
}

// ParseScoringRules decodes YAML scoring rules over the defaults.
func ParseScoringRules(data []byte) (standings.ScoringRules, error) {
	file := scoringFile{Scoring: standings.DefaultRules()}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return standings.ScoringRules{}, fmt.Errorf("parse scoring rules: %w", err)
	}
	rules, err := file.Scoring.Normalize()
	if err != nil {
		return standings.ScoringRules{}, fmt.Errorf("scoring rules: %w", err)
	}
	return rules, nil
}
