// Package configs provides the embedded configuration template for docvec.
//
// The template is embedded at build time with //go:embed so it ships inside
// the binary regardless of how docvec is installed. It is written out by
// `docvec init` as .docvec.yaml.
//
// Configuration hierarchy (see internal/config/config.go Load()):
//  1. Hardcoded defaults (internal/config/config.go NewConfig())
//  2. Project config (.docvec.yaml)
//  3. Environment variables (DOCVEC_*)
package configs

import _ "embed"

// ConfigTemplate is the annotated starter configuration written by
// `docvec init`.
//
//go:embed config.example.yaml
var ConfigTemplate string
