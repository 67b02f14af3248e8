// Package handler is the Vercel serverless entry for POST /api/telegram.
package handler

import (
	"net/http"
	"os"
	"sync"

	"github.com/aliqulovx561-ai/writing-set-two/internal/app"
	"github.com/aliqulovx561-ai/writing-set-two/internal/config"
	"github.com/aliqulovx561-ai/writing-set-two/internal/logger"
	"github.com/aliqulovx561-ai/writing-set-two/internal/relay"
)

var (
	once    sync.Once
	relayer http.Handler
)

// Handler serves one invocation. The relay is built on the first call and
// reused while the instance stays warm.
func Handler(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		relayer = build()
	})
	relayer.ServeHTTP(w, r)
}

func build() http.Handler {
	cfg, err := config.Load("")
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		return unavailable(err)
	}

	a, err := app.Build(cfg, os.Stdout, os.Stdout)
	if err != nil {
		return unavailable(err)
	}
	return a.Relay()
}

// unavailable serves a relay with no credentials, which keeps preflight and
// method handling intact and answers every POST with the configuration error.
func unavailable(err error) http.Handler {
	logger.Error("Relay configuration invalid", nil, err)
	return relay.New(config.Config{}, nil, nil, nil)
}
