package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/counterpos/api/responses"
	"github.com/angelmondragon/counterpos/internal/storage"
	"github.com/angelmondragon/counterpos/pkg/config"
	pkgerrors "github.com/angelmondragon/counterpos/pkg/errors"
	"github.com/angelmondragon/counterpos/pkg/logger"
)

const envHeader = "X-CounterPOS-Env"

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the state store backend.
func HealthReady(cfg *config.Config, logg *logger.Logger, store storage.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		if store != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := store.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store unavailable").
					WithDetails(map[string]string{"store": cfg.Store.Backend}))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready", "store": cfg.Store.Backend})
	}
}
