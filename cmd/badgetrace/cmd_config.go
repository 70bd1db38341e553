package main

// ---------------------------------------------------------------------------
// cmd_config.go — init / show the YAML configuration
// ---------------------------------------------------------------------------

import (
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/badgetrace-project/badgetrace/internal/core"
)

func cmdConfig(args []string) {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	configPath := fs.String("config", "configs/default.yaml", "Config file path")
	initFlag := fs.Bool("init", false, "Write a default config file")
	force := fs.Bool("force", false, "Overwrite an existing config file on -init")
	fs.Parse(args)

	if *initFlag {
		if _, err := os.Stat(*configPath); err == nil && !*force {
			errorf("config file %s already exists (use -force to overwrite)", *configPath)
		}
		if err := core.SaveConfig(core.DefaultConfig(), *configPath); err != nil {
			errorf("writing config: %v", err)
		}
		fmt.Printf("wrote default config to %s\n", *configPath)
		return
	}

	cfg := loadConfig(*configPath)
	data, err := yaml.Marshal(cfg)
	if err != nil {
		errorf("marshaling config: %v", err)
	}
	os.Stdout.Write(data)
}
