package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

// SessionTxRunner runs a function inside a MongoDB multi-document
// transaction. The adjudication unit of work (credential update, request
// closure, score persist) commits or aborts as one.
//
// Requires a replica set deployment; standalone mongod does not support
// transactions.
type SessionTxRunner struct {
	client *mongo.Client
}

func NewTxRunner(client *mongo.Client) *SessionTxRunner {
	return &SessionTxRunner{client: client}
}

// WithinTransaction starts a session, runs fn inside a transaction and
// commits it when fn returns nil. The context passed to fn carries the
// session, so repository calls made with it participate in the transaction.
func (r *SessionTxRunner) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc)
	})
	return err
}
