package app

import (
	"context"
	"time"
)

// contextWithTimeout ограничивает запрос к внешнему сервису; нулевой
// таймаут означает отсутствие ограничения.
func contextWithTimeout(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}
