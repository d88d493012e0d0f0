package repository

import "errors"

// Ошибки уровня хранилища. Сервисный слой переводит их в бизнес-ошибки,
// наружу они не выходят.
var ErrNotFound = errors.New("запись не найдена")
var ErrDuplicate = errors.New("запись уже существует")
