package ports

import "context"

// TxRunner executes fn within one storage transaction. Every write performed
// through the repositories with the derived context commits or aborts as a
// unit. Implementations without transactional storage may run fn directly.
type TxRunner interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
