// errors.go — ошибки бизнес-логики сервисного слоя.
package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound — запись не найдена.
	ErrNotFound = errors.New("файл не найден")
	// ErrValidation — ошибка валидации входных данных.
	ErrValidation = errors.New("ошибка валидации")
)

// Конкретные ошибки валидации. Все оборачивают ErrValidation.
var (
	// ErrNoFile — в запросе нет файловой части.
	ErrNoFile = fmt.Errorf("%w: файл не передан", ErrValidation)
	// ErrEmptyFilename — файл передан с пустым именем.
	ErrEmptyFilename = fmt.Errorf("%w: пустое имя файла", ErrValidation)
	// ErrExtensionNotAllowed — расширение не входит в список разрешённых.
	ErrExtensionNotAllowed = fmt.Errorf("%w: недопустимое расширение файла", ErrValidation)
	// ErrInvalidFilename — после санитизации от имени ничего не осталось.
	ErrInvalidFilename = fmt.Errorf("%w: недопустимое имя файла", ErrValidation)
	// ErrEmptyName — пустое новое имя при переименовании.
	ErrEmptyName = fmt.Errorf("%w: новое имя не указано", ErrValidation)
)
