package cache

import "time"

// Noop — кеш, который ничего не хранит. Используется, когда redis
// не настроен: приложение остаётся рабочим, просто без кеша.
type Noop struct{}

func (Noop) Get(string, any) (bool, error)        { return false, nil }
func (Noop) Set(string, any, time.Duration) error { return nil }
func (Noop) Invalidate(string) error              { return nil }
