// Package configs provides the embedded configuration template for applogs.
//
// The template is embedded at build time so that 'applogs config init' works
// from any distribution. It documents every key; values match the defaults in
// internal/config NewConfig().
//
// Configuration precedence (see internal/config Load()):
//  1. Hardcoded defaults
//  2. applogs.yaml (or --config)
//  3. Environment variables (APPLOGS_*)
package configs

import _ "embed"

// ConfigTemplate is the starter applogs.yaml.
//
//go:embed applogs.example.yaml
var ConfigTemplate string
