// Package txn runs a group of writes as one Mongo transaction when the
// deployment supports it.
//
// Standalone mongod and some hosted document stores reject transactions.
// In that case Run executes fn directly, without a session, so every write
// in fn must be idempotent: a retried or partially applied call has to leave
// the data in a state the next call (or the order repair worker) can finish.
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Run executes fn inside a transaction. If the server reports that
// transactions or sessions are unavailable, fn runs once more without one.
// fn must use the ctx it receives so its writes join the session.
func Run(ctx context.Context, db *mongo.Database, log *zap.Logger, fn func(ctx context.Context) error) error {
	sess, err := db.Client().StartSession()
	if err != nil {
		if IsNotSupported(err) {
			warnFallback(log, err)
			return fn(ctx)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		warnFallback(log, err)
		return fn(ctx)
	}
	return err
}

func warnFallback(log *zap.Logger, err error) {
	if log == nil {
		return
	}
	log.Warn("transactions unavailable; running writes without a transaction", zap.Error(err))
}

// IsNotSupported reports whether err means the deployment cannot run
// multi-document transactions (standalone server, unsupported storage
// engine, operation not allowed in a transaction).
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var ce mongo.CommandError
	if errors.As(err, &ce) {
		switch ce.Code {
		case 20, // IllegalOperation: transaction numbers need a replica set
			51,  // IllegalOperation (older servers)
			263: // OperationNotSupportedInTransaction
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	has := func(s string) bool { return strings.Contains(msg, s) }

	switch {
	case has("illegal operation"):
		return true
	case has("transaction") && has("replica set"):
		return true
	case has("transaction") && has("session"):
		return true
	case has("session") && has("not supported"):
		return true
	}
	return false
}
