// Package config loads and validates the subcast TOML configuration.
//
// All tunables are threaded into components at construction time; no package
// in this repository reads process environment state mid-pipeline. Load
// applies repository defaults, decodes an optional config file, expands ~ in
// path fields, and validates the result before anything else starts.
package config
