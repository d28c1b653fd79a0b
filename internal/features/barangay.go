package features

import "strings"

// Barangays is the canonical set of administrative areas the model covers,
// in encoder order.
var Barangays = []string{
	"General Paulino Santos",
	"Morales",
	"Santa Cruz",
	"Sto. Niño",
	"Zone II",
}

// Spellings seen in the wild, lowercased, mapped to canonical names.
var barangayAliases = map[string]string{
	"general paulino santos": "General Paulino Santos",
	"general paulino":        "General Paulino Santos",
	"gps":                    "General Paulino Santos",
	"zone ii":                "Zone II",
	"zone 2":                 "Zone II",
	"zone2":                  "Zone II",
	"santa cruz":             "Santa Cruz",
	"sto. niño":              "Sto. Niño",
	"sto niño":               "Sto. Niño",
	"st. niño":               "Sto. Niño",
	"santo niño":             "Sto. Niño",
	"morales":                "Morales",
}

// NormalizeBarangay trims and resolves aliases case-insensitively. Unrecognized
// names come back trimmed but otherwise untouched.
func NormalizeBarangay(name string) string {
	trimmed := strings.TrimSpace(name)
	if canonical, ok := barangayAliases[strings.ToLower(trimmed)]; ok {
		return canonical
	}
	return trimmed
}

// KnownBarangay reports whether the normalized name is in the canonical set.
func KnownBarangay(name string) bool {
	normalized := NormalizeBarangay(name)
	for _, b := range Barangays {
		if b == normalized {
			return true
		}
	}
	return false
}

// Encoder maps canonical barangay names to the integer codes the classifier
// was trained with. Unknown names encode to 0, which collides with the first
// class; callers that care should check the second return value.
type Encoder struct {
	classes []string
	index   map[string]int
}

// NewEncoder builds an encoder from the class list persisted with the model.
func NewEncoder(classes []string) *Encoder {
	index := make(map[string]int, len(classes))
	for i, c := range classes {
		index[c] = i
	}
	return &Encoder{classes: classes, index: index}
}

// FallbackEncoder covers the fixed barangay set for deployments without a
// persisted encoder.
func FallbackEncoder() *Encoder {
	return NewEncoder(Barangays)
}

func (e *Encoder) Encode(name string) (int, bool) {
	code, ok := e.index[NormalizeBarangay(name)]
	if !ok {
		return 0, false
	}
	return code, true
}

func (e *Encoder) Classes() []string {
	return e.classes
}
