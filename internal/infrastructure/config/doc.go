// Package config handles loading and validating the tracker configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Reading an optional .env file
//   - Overriding with GPSTRACKER_* environment variables
//   - Validation of required fields
//
// Sensitive values (the JWT secret, broker and InfluxDB credentials, the
// bootstrap password) should come from the environment or the .env file,
// never from a committed config.yaml.
//
// Configuration is loaded once at startup and is never reloaded.
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.API.Port)
package config
