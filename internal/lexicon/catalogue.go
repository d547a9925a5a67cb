package lexicon

import _ "embed"

// DefaultCharacter is the built-in tsundere character profile in YAML form.
//
//go:embed catalogue.yaml
var DefaultCharacter []byte
