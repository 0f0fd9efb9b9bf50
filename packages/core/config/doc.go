// Package config holds the defaults that request and response
// specifications are created from.
//
// It provides:
//   - Config, loadable from .hitchain.json or .hitchain.yaml files
//   - HITCHAIN_* environment overrides, with optional .env files
//   - Registry, the mutable process-wide defaults with Reset and Snapshot
package config
