package service

import "context"

// TxRunner ejecuta fn de forma atomica. db.PgTxRunner es la implementacion real.
type TxRunner interface {
	Exec(ctx context.Context, fn func(ctx context.Context) error) error
}

type noopTxRunner struct{}

func (noopTxRunner) Exec(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
