package memory

import (
	"context"
	"sync"
)

// TxManager сериализует изменения: пока fn выполняется, другие мутации ждут.
// Отката нет — хранилище в памяти не поддерживает транзакции.
type TxManager struct {
	mu sync.Mutex
}

func NewTxManager() *TxManager {
	return &TxManager{}
}

func (m *TxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return fn(ctx)
}
