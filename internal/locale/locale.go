// Package locale renders user-facing messages from a translation catalog.
// Messages are addressed by stable identifiers so callers never embed one
// language's text.
package locale

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Default is the language used when none is configured or the configured one is unknown.
var Default = language.English

var english = map[string]string{
	"state.locked":                 "Locked For Editing",
	"state.locked.tooltip":         "Locked for editing by current user",
	"state.locked_other":           "Locked by %s",
	"state.locked_other.tooltip":   "Locked for editing by: %s",
	"state.not_current":            "Not current",
	"state.not_current.tooltip":    "The file(s) are not at the head revision",
	"state.unknown":                "Unknown",
	"state.unknown.tooltip":        "Unknown source control state",
	"state.unchanged":              "Unchanged",
	"state.unchanged.tooltip":      "There are no modifications",
	"state.added":                  "Added",
	"state.added.tooltip":          "Item is scheduled for addition",
	"state.deleted":                "Deleted",
	"state.deleted.tooltip":        "Item is scheduled for deletion",
	"state.modified":               "Modified",
	"state.modified.tooltip":       "Item has been modified",
	"state.renamed":                "Renamed",
	"state.renamed.tooltip":        "Item has been renamed",
	"state.copied":                 "Copied",
	"state.copied.tooltip":         "Item has been copied",
	"state.conflicted":             "Contents Conflict",
	"state.conflicted.tooltip":     "The contents of the item conflict with updates received from the repository.",
	"state.ignored":                "Ignored",
	"state.ignored.tooltip":        "Item is being ignored.",
	"state.not_controlled":         "Not Under Source Control",
	"state.not_controlled.tooltip": "Item is not under version control.",
	"state.missing":                "Missing",
	"state.missing.tooltip":        "Item is missing (e.g., you moved or deleted it without using Git). This also indicates that a directory is incomplete (a checkout or update was interrupted).",
}

var cat = newCatalog()

func newCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(Default))
	for id, text := range english {
		// SetString only fails on malformed tags.
		_ = b.SetString(language.English, id, text)
	}
	return b
}

// Has reports whether id has a registered translation.
func Has(id string) bool {
	_, ok := english[id]
	return ok
}

// ids returns every registered message identifier.
func ids() []string {
	ids := make([]string, 0, len(english))
	for id := range english {
		ids = append(ids, id)
	}
	return ids
}

// Parse returns the language tag for s, or Default when s is empty or unknown.
func Parse(s string) language.Tag {
	if s == "" {
		return Default
	}
	tag, err := language.Parse(s)
	if err != nil {
		return Default
	}
	return tag
}

// Render formats the message id in the given language. An empty id renders as "".
func Render(tag language.Tag, id string, args ...any) string {
	if id == "" {
		return ""
	}
	p := message.NewPrinter(tag, message.Catalog(cat))
	return p.Sprintf(id, args...)
}
