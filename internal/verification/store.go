// Package verification хранит короткоживущие коды подтверждения.
// Доставка кодов (почта и т.п.) лежит за пределами сервиса — здесь только
// выдача и одноразовая проверка с истечением по TTL.
package verification

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"
)

// DefaultTTL срок жизни кода, как в исходной системе
const DefaultTTL = 5 * time.Minute

type entry struct {
	code      string
	expiresAt time.Time
}

// Store потокобезопасное хранилище кодов с ленивым истечением
type Store struct {
	mu    sync.Mutex
	ttl   time.Duration
	codes map[string]entry
	now   func() time.Time
}

func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		ttl:   ttl,
		codes: make(map[string]entry),
		now:   time.Now,
	}
}

// Issue выдаёт шестизначный код для ключа. Повторная выдача заменяет
// прежний код и сдвигает срок.
func (s *Store) Issue(key string) string {
	code := fmt.Sprintf("%06d", rand.IntN(1000000))
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[key] = entry{code: code, expiresAt: s.now().Add(s.ttl)}
	return code
}

// Verify сверяет код. Успешная проверка одноразовая: код удаляется.
// Истёкший или отсутствующий код — false.
func (s *Store) Verify(key, code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.codes[key]
	if !ok {
		return false
	}
	if s.now().After(e.expiresAt) {
		delete(s.codes, key)
		return false
	}
	if e.code != code {
		return false
	}
	delete(s.codes, key)
	return true
}
