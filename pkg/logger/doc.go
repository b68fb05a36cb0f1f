// Package logger builds the service's *slog.Logger.
//
// New is the single factory. Options select the output format, the level,
// static attributes and ContextExtractor callbacks that pull request-scoped
// values out of a context.Context on every record.
//
//	log := logger.New(
//	    logger.WithEnvironment(cfg.Env, "subgate"),
//	    logger.WithLevelName(cfg.Level),
//	)
//	log.InfoContext(ctx, "subscription updated",
//	    logger.AccountID(accountID),
//	    logger.SubscriptionID(sub.ProviderSubID),
//	    logger.EventID(ev.ID),
//	)
//
// Attribute helpers in attr.go keep key names consistent across packages.
// Helpers taking an error or an id return an empty Attr for nil or empty
// input, which slog drops, so call sites need no nil checks.
//
// Components that accept a logger default to Discard.
package logger
