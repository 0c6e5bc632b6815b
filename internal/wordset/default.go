package wordset

import (
	_ "embed"
)

//go:embed default.yaml
var defaultCatalog []byte

// Default returns the built-in catalog used when no catalog file exists.
func Default() Catalog {
	cat, err := ParseCatalog(defaultCatalog)
	if err != nil {
		panic("wordset: invalid built-in catalog: " + err.Error())
	}
	return cat
}
