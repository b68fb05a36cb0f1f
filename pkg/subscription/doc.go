// Package subscription keeps the paid-subscription ledger of each account.
//
// The ledger is fed exclusively by billing webhooks. Every event carries a
// globally unique id and a provider timestamp; the ledger applies an event at
// most once and never lets an older event overwrite newer state, so webhooks
// may arrive out of order or be redelivered without corrupting the record.
//
// # Status model
//
//	none ──created──▶ active ──payment_failed──▶ past_due
//	                    ▲  ◀──payment_recovered──┘   │
//	                    │                            │
//	        resumed     └──cancel_scheduled──┐       │ cancel_scheduled
//	                                         ▼       ▼
//	                                      cancelling
//	                                         │
//	active | past_due | cancelling ──cancelled──▶ cancelled (terminal)
//
//	active | past_due ──paused──▶ paused ──resumed──▶ active
//
// activated moves any live status to active; updated changes no status.
// A paused subscription is not entitled. A cancelling subscription keeps its
// entitlement until CurrentPeriodEnd.
// EffectiveStatus reports it as cancelled afterwards without writing to the
// store.
//
// # Applying events
//
//	ledger := subscription.NewLedger(store, subscription.WithLogger(log))
//	outcome, err := ledger.ApplyEvent(ctx, event)
//	switch {
//	case err != nil:
//		// store fault, the provider should redeliver
//	case !outcome.Applied:
//		log.Info("event ignored", "reason", outcome.Reason)
//	}
//
// Ignored events are not errors. Duplicate, stale and unknown-subscription
// events must be acknowledged to the provider like applied ones.
//
// # Storage
//
// Store implementations perform a conditional write keyed on the previous
// revision (the last applied event id and timestamp) and record the event id
// in the same step. MemoryStore serves tests, RedisStore uses Lua scripts,
// PostgresStore a transaction with a conditional UPDATE, MongoStore a
// filtered ReplaceOne. The Postgres schema ships as goose migrations in
// Migrations.
package subscription
