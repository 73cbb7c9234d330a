// Package lock содержит блокировки по ключу внутри процесса
package lock

import (
	"context"
	"sync"
)

// KeyedLocker взаимное исключение по строковому ключу
// Ожидание блокировки прерывается отменой контекста
type KeyedLocker struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	ch      chan struct{} // буфер 1: токен есть - блокировка свободна
	waiters int
}

// NewKeyedLocker создает блокировщик
func NewKeyedLocker() *KeyedLocker {
	return &KeyedLocker{locks: make(map[string]*entry)}
}

// Lock захватывает блокировку key
// Возвращает функцию освобождения (вызывать ровно один раз) либо ошибку контекста
func (l *KeyedLocker) Lock(ctx context.Context, key string) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	e, ok := l.locks[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		e.ch <- struct{}{}
		l.locks[key] = e
	}
	e.waiters++
	l.mu.Unlock()

	select {
	case <-e.ch:
		var once sync.Once
		return func() {
			once.Do(func() { l.release(key, e) })
		}, nil
	case <-ctx.Done():
		l.mu.Lock()
		l.forget(key, e)
		l.mu.Unlock()
		return nil, ctx.Err()
	}
}

func (l *KeyedLocker) release(key string, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e.ch <- struct{}{}
	l.forget(key, e)
}

// forget убирает запись, когда её больше никто не ждёт и не держит
func (l *KeyedLocker) forget(key string, e *entry) {
	e.waiters--
	if e.waiters == 0 {
		delete(l.locks, key)
	}
}

// size количество ключей в памяти
func (l *KeyedLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
