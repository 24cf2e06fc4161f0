package repository

import "errors"

var ErrNotFound = errors.New("запись не найдена")
var ErrConflict = errors.New("нарушение уникальности")
var ErrInvalidSortField = errors.New("неизвестное поле сортировки")
