package domain

import "errors"

var (
	ErrInvalidID           = errors.New("invalid id")
	ErrInvalidSubject      = errors.New("invalid subject")
	ErrInvalidTitle        = errors.New("invalid title")
	ErrInvalidDay          = errors.New("invalid day")
	ErrInvalidQuantity     = errors.New("invalid quantity")
	ErrTargetAfterDue      = errors.New("target date after due date")
	ErrInvalidWeekday      = errors.New("invalid weekday")
	ErrInvalidReminderTime = errors.New("invalid reminder time")
	ErrInvalidReminderDays = errors.New("invalid reminder days")
	ErrTaskNotFound        = errors.New("day task not found")
)
