// Package config loads pool settings from a YAML or JSON file.
//
//	cfg, err := config.LoadFile("threadpool.yaml")
//	if err != nil {
//	    return err
//	}
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
//	settings, err := cfg.ToSettings()
//
// Fields left empty keep the values from DefaultSettings; a pool size of 0
// means one worker per CPU.
package config
