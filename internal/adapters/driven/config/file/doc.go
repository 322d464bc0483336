// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data under the reqsync home directory.
//
// Adapters:
//   - ConfigStore: TOML configuration with dotted keys
//   - PromptStore: user-editable oracle prompt templates
//   - TemplateLoader: YAML record template schemas
package file
