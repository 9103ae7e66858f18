package model

// FileRecord — запись о загруженном файле.
// Хранится в таблице files.
type FileRecord struct {
	// ID — идентификатор, назначается хранилищем при создании и не переиспользуется
	ID int64
	// Filename — отображаемое имя файла (не обязательно уникальное)
	Filename string
	// Filepath — абсолютный путь к содержимому файла в директории загрузок
	Filepath string
}
