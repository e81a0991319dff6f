// Package config loads, normalizes, and validates saveatlas
// configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every
// knob the CLI needs: the data directory holding the resource files, the
// wiki API endpoint, the product-info subprocess, and logging options.
package config
