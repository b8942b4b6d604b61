// Package cli holds bacboot's command-line layer.
//
//   - cli/cmd: The cobra command tree
//   - cli/ui: Prompts, the interactive menu, the banner and error rendering
package cli
