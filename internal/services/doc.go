// Package services defines shared utilities consumed by the pipeline and the
// external tool integrations beneath it.
//
// It provides context helpers that stamp the input file, stage name, and run
// ID for logging, plus sentinel error markers and the Wrap helper so failures
// can be classified uniformly in the end-of-run report.
package services
