// Package reference holds the static canonical name table used to
// resolve 4-language names for ingested tracks by position.
package reference

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/otabekh/minbar/internal/domain"
)

//go:embed names.yaml
var namesYAML []byte

type entry struct {
	AR string `yaml:"ar"`
	UZ string `yaml:"uz"`
	RU string `yaml:"ru"`
	EN string `yaml:"en"`
}

var canonical map[int]entry

func init() {
	if err := yaml.Unmarshal(namesYAML, &canonical); err != nil {
		panic(fmt.Sprintf("reference: bad embedded name table: %v", err))
	}
}

// Names resolves the canonical 4-language name set for a position.
// Positions outside the table get placeholder names embedding the
// position number, so ingestion never stalls on a missing entry.
func Names(position int) domain.Localized {
	if e, ok := canonical[position]; ok {
		return domain.Localized{AR: e.AR, UZ: e.UZ, RU: e.RU, EN: e.EN}
	}
	return domain.Localized{
		AR: fmt.Sprintf("سورة %d", position),
		UZ: fmt.Sprintf("Sura %d", position),
		RU: fmt.Sprintf("Сура %d", position),
		EN: fmt.Sprintf("Surah %d", position),
	}
}

// Known reports whether the table carries a canonical entry for the
// position.
func Known(position int) bool {
	_, ok := canonical[position]
	return ok
}

// Count returns the number of canonical entries.
func Count() int {
	return len(canonical)
}
