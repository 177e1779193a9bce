// Package file provides file-based implementations of driven port interfaces.
//
// Adapters:
//   - ConfigStore: TOML configuration at ~/.unisearch/config.toml, with Watch
//     for live reloads
package file
