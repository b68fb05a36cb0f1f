// Package mongo connects to MongoDB for the Mongo ledger backend.
//
//	db, err := mongo.NewWithDatabase(ctx, cfg, "subgate")
//	if err != nil {
//		return err
//	}
//	store := subscription.NewMongoStore(db, cfg.OpTimeout, cfg.EventRetention)
//
// Settings come from MONGODB_* variables; see Config. Connection failures
// are joined with ErrConnect.
package mongo
