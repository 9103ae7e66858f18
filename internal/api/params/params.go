// Пакет params — разбор параметров пути запроса.
package params

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ErrInvalidID — идентификатор записи не является положительным целым.
var ErrInvalidID = errors.New("некорректный идентификатор файла")

// FileID извлекает параметр пути {id} (simple style, int64).
func FileID(r *http.Request) (int64, error) {
	var id int64
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{
			ParamLocation: runtime.ParamLocationPath,
			Explode:       false,
			Required:      true,
		})
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidID, err)
	}
	if id < 1 {
		return 0, ErrInvalidID
	}
	return id, nil
}
