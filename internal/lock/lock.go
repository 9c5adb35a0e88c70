// Package lock содержит блокировки, сериализующие операции одного пользователя.
package lock

import (
	"context"
	"sync"
)

// Locker захватывает эксклюзивную блокировку по ключу.
// Возвращённая функция освобождает блокировку и может вызываться только один раз.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

type keyedEntry struct {
	ch   chan struct{}
	refs int
}

// KeyedMutex реализует Locker внутри одного процесса.
// Записи удаляются, когда на ключ никто не ссылается.
type KeyedMutex struct {
	mu      sync.Mutex
	entries map[string]*keyedEntry
}

// NewKeyedMutex создаёт блокировку по ключам для одного процесса.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{entries: make(map[string]*keyedEntry)}
}

// Lock ожидает освобождения ключа или отмены контекста.
func (k *KeyedMutex) Lock(ctx context.Context, key string) (func(), error) {
	k.mu.Lock()
	e, ok := k.entries[key]
	if !ok {
		e = &keyedEntry{ch: make(chan struct{}, 1)}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		k.release(key, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			k.release(key, e)
		})
	}, nil
}

func (k *KeyedMutex) release(key string, e *keyedEntry) {
	k.mu.Lock()
	defer k.mu.Unlock()

	e.refs--
	if e.refs == 0 {
		delete(k.entries, key)
	}
}

func (k *KeyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}
