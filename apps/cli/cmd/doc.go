// Package cmd implements the hitchain CLI commands using Cobra.
//
// Available commands:
//   - check: Send one request and verify the response
//   - serve: Run the fixture server
//   - init: Write a starter config file
//   - version: Show hitchain version information
//   - completion: Generate shell completion scripts
//
// check reads .hitchain.json or .hitchain.yaml from the working directory,
// then HITCHAIN_* environment variables, then its own flags.
package cmd
