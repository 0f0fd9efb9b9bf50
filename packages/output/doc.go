// Package output renders executed requests, their responses and failed
// expectations.
//
// Supported output formats:
//   - Console: Human-readable colored terminal output
//   - JSON: Machine-readable JSON output
//
// Each formatter implements the Formatter interface. JSON also implements
// Flushable because it writes one document after all results are known.
package output
