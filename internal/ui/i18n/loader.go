// loader.go — загрузка каталогов переводов из embed.FS.
package i18n

import (
	"fmt"
	"log/slog"
)

// Load создаёт Bundle и загружает в него каталоги всех поддерживаемых языков
// (locales/<lang>.json).
func Load(defaultLang string, logger *slog.Logger) (*Bundle, error) {
	bundle := NewBundle(defaultLang, logger)

	for _, lang := range Languages {
		path := fmt.Sprintf("locales/%s.json", lang)
		data, err := LocaleFS.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("i18n: не удалось прочитать %s: %w", path, err)
		}
		if err := bundle.LoadMessages(lang, data); err != nil {
			return nil, err
		}
	}

	logger.Info("i18n каталоги загружены",
		slog.Int("languages", len(Languages)),
		slog.String("default", bundle.defaultLang),
	)
	return bundle, nil
}
