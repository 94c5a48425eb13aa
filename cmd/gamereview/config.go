package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// config is the YAML configuration file layout.
//
//	engine:
//	  path: /usr/bin/stockfish
//	  depth: 18
//	  options:
//	    Threads: "2"
//	book: book.tsv.zst
//	cache_size: 4096
//	workers: 4
//	thresholds:
//	  inaccuracy: 50
//	  mistake: 100
//	  blunder: 200
type config struct {
	Engine struct {
		Path     string            `yaml:"path"`
		Args     []string          `yaml:"args"`
		Depth    int               `yaml:"depth"`
		MoveTime time.Duration     `yaml:"movetime"`
		Options  map[string]string `yaml:"options"`
	} `yaml:"engine"`

	Book      string `yaml:"book"`
	CacheSize int    `yaml:"cache_size"`
	Workers   int    `yaml:"workers"`

	Thresholds *struct {
		Inaccuracy int `yaml:"inaccuracy"`
		Mistake    int `yaml:"mistake"`
		Blunder    int `yaml:"blunder"`
	} `yaml:"thresholds"`
}

// loadConfig reads the YAML file, or returns an empty config when no file
// is given.
func loadConfig(path string) (*config, error) {
	var cfg config
	if path == "" {
		return &cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return &cfg, nil
}

// mergeFlags lets command-line flags override file values.
func (c *config) mergeFlags() {
	if enginePath != "" {
		c.Engine.Path = enginePath
	}
	if depth > 0 {
		c.Engine.Depth = depth
	}
	if moveTime > 0 {
		c.Engine.MoveTime = moveTime
	}
	if bookFile != "" {
		c.Book = bookFile
	}
}
