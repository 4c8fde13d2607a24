// Package tr связывает репозитории с транзакцией, открытой менеджером транзакций.
package tr

import (
	"context"

	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2/manager"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewManager создаёт менеджер транзакций поверх пула соединений.
func NewManager(pool *pgxpool.Pool) trm.Manager {
	return manager.Must(trmpgx.NewDefaultFactory(pool))
}

// FromCtx возвращает транзакцию из контекста, а если её нет — сам пул.
// Репозитории вызывают его на каждый запрос, чтобы участвовать во внешней транзакции.
func FromCtx(ctx context.Context, pool *pgxpool.Pool) trmpgx.Tr {
	return trmpgx.DefaultCtxGetter.DefaultTrOrDB(ctx, pool)
}
