package task

import "time"

// Update — набор полей для частичного обновления.
// nil означает «поле в запросе не передано», оно остаётся как есть.
type Update struct {
	Title       *string
	Description *string
	Status      *Status
	Priority    *Priority
	DueDate     *time.Time
}

func (u Update) Empty() bool {
	return u.Title == nil &&
		u.Description == nil &&
		u.Status == nil &&
		u.Priority == nil &&
		u.DueDate == nil
}

// Filter — условия выборки списка задач. Все условия объединяются по AND,
// владелец задаётся отдельным обязательным параметром.
type Filter struct {
	Status   *Status
	Priority *Priority
	Limit    int
	Offset   int
}
