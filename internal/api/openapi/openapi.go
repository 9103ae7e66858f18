// Пакет openapi — встроенный OpenAPI документ JSON API.
// Документ загружается и валидируется kin-openapi при старте,
// отдаётся клиентам в JSON на /api/v1/openapi.json.
package openapi

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var specYAML []byte

// Load загружает и валидирует встроенный документ.
func Load() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(specYAML)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки OpenAPI документа: %w", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("невалидный OpenAPI документ: %w", err)
	}
	return doc, nil
}

// Handler отдаёт документ в JSON.
type Handler struct {
	body []byte
}

// NewHandler создаёт обработчик. Документ сериализуется один раз.
func NewHandler(doc *openapi3.T) (*Handler, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации OpenAPI документа: %w", err)
	}
	return &Handler{body: body}, nil
}

// ServeHTTP — GET /api/v1/openapi.json.
func (h *Handler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(h.body)
}
