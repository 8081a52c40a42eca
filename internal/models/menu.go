package models

import "time"

// MenuItem — пункт навигационного меню, закрытый одной строкой-разрешением.
// Parent позволяет один уровень вложенности; пункт с дочерними элементами
// нельзя удалить, пока существуют ссылки на него.
type MenuItem struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Path       *string   `json:"path"`
	Icon       string    `json:"icon"`
	Permission string    `json:"permission"` // Уникальная строка-разрешение
	Order      int       `json:"order"`
	Parent     *int64    `json:"parent"`
	CreatedAt  time.Time `json:"created_at"`
}

// MenuNode — пункт меню с дочерними элементами, как его видит клиент
// после фильтрации по эффективным правам пользователя.
type MenuNode struct {
	MenuItem
	Children []*MenuNode `json:"children"`
}
