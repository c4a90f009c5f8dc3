// Package config provides configuration parsing for weave projects.
//
// The configuration lives at the project root as weave.json, weave.yaml or
// weave.toml; the first one found in that order wins.
//
// # Configuration File Structure
//
//	{
//	  "renderer": {"id": "ssr:node", "debug": true},
//	  "dev": {
//	    "port": 3000,
//	    "host": "localhost",
//	    "hotReload": true,
//	    "watch": ["modules"],
//	    "ignore": ["*.swp"]
//	  },
//	  "extensions": {"enabled": ["tree-directives"]},
//	  "logging": {"level": "debug", "format": "json"},
//	  "metrics": {"enabled": true, "path": "/metrics"}
//	}
//
// # Usage
//
//	cfg, err := config.LoadFromWorkingDir()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Listening on", cfg.DevAddress())
package config
