// Package jitter считает интервалы повторных попыток со случайной добавкой,
// чтобы повторы разных экземпляров не совпадали по времени.
package jitter

import (
	"math/rand"
	"sync"
	"time"
)

// DefaultJitter — стандартный коэффициент джиттера (50%)
const DefaultJitter = 0.5

var (
	globalRand = rand.New(rand.NewSource(time.Now().UnixNano()))
	randMutex  sync.Mutex
)

// Backoff описывает политику экспоненциального отступления.
type Backoff struct {
	Base   time.Duration
	Max    time.Duration
	Factor float64 // коэффициент джиттера, 0 отключает случайность
	rng    *rand.Rand
}

// NewBackoff создаёт политику с глобальным генератором случайных чисел.
func NewBackoff(base, max time.Duration, factor float64) *Backoff {
	return &Backoff{Base: base, Max: max, Factor: factor}
}

// WithRand возвращает копию политики с детерминированным генератором (для тестов).
func (b *Backoff) WithRand(rng *rand.Rand) *Backoff {
	cp := *b
	cp.rng = rng
	return &cp
}

// Next возвращает задержку перед попыткой attempt (нумерация с нуля).
// Результат лежит в диапазоне [d, d*(1+Factor)], где d = min(Base*2^attempt, Max).
func (b *Backoff) Next(attempt int) time.Duration {
	d := b.Base
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= b.Max {
			d = b.Max
			break
		}
	}
	if d > b.Max {
		d = b.Max
	}

	if b.rng != nil {
		return d + time.Duration(b.rng.Float64()*b.Factor*float64(d))
	}

	return Duration(d, b.Factor)
}

// Duration возвращает продолжительность с применённым джиттером.
func Duration(d time.Duration, jitterFactor float64) time.Duration {
	randMutex.Lock()
	jitter := globalRand.Float64() * jitterFactor * float64(d)
	randMutex.Unlock()
	return d + time.Duration(jitter)
}
