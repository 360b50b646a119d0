package i18n

import (
	"embed"
	"encoding/json"
	"sync"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

var (
	mu     sync.RWMutex
	bundle = newBundle()
)

func newBundle() *goi18n.Bundle {
	b := goi18n.NewBundle(language.English)
	b.RegisterUnmarshalFunc("json", json.Unmarshal)
	for _, f := range []string{"locales/active.en.json", "locales/active.id.json"} {
		// embedded files are compiled in; a parse failure here is a build defect
		if _, err := b.LoadMessageFileFS(localeFS, f); err != nil {
			panic(err)
		}
	}
	return b
}

// Init resets the bundle to the embedded locales.
func Init() {
	mu.Lock()
	bundle = newBundle()
	mu.Unlock()
}

// Load merges an additional message file (e.g. active.fr.json) into the bundle.
func Load(path string) error {
	mu.Lock()
	defer mu.Unlock()
	_, err := bundle.LoadMessageFile(path)
	return err
}

// Localize renders messageID for the first supported language in langs.
// Unknown ids render as the id itself.
func Localize(messageID string, data map[string]interface{}, count int, langs ...string) string {
	mu.RLock()
	loc := goi18n.NewLocalizer(bundle, langs...)
	mu.RUnlock()

	cfg := &goi18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: data,
	}
	if count >= 0 {
		cfg.PluralCount = count
	}
	msg, err := loc.Localize(cfg)
	if err != nil {
		return messageID
	}
	return msg
}
