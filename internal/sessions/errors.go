package sessions

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrNoChecklist       = errors.New("no checklist")
	ErrTodoNotFound      = errors.New("todo not found")
	ErrNotSkillsItem     = errors.New("not a skills item")
	ErrInvalidTodoID     = errors.New("invalid todo id")
	ErrInterviewNotFound = errors.New("interview not found")
)
