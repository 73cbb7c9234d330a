package memory

import "context"

// TxManager выполняет функции без транзакции
// Атомарность отдельных операций обеспечивает Store
// Как и BeginTx, не начинает работу с уже отменённым контекстом
type TxManager struct{}

func (TxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return run(ctx, fn)
}

func (TxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return run(ctx, fn)
}

func (TxManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return run(ctx, fn)
}

func run(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}
