package handler

import (
	"context"
	"net/http"

	"github.com/wadjakorntonsri/tinylink/pkg/app"
	"github.com/wadjakorntonsri/tinylink/pkg/config"
)

var mux http.Handler

func init() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	// Note: On Vercel, db.sqlite is ephemeral unless using a remote SQL/Turso URL in DATABASE_URL
	env, err := app.Build(context.Background(), cfg)
	if err != nil {
		panic(err)
	}
	mux = env.Handler()
}

// Handler is the entrypoint for Vercel
func Handler(w http.ResponseWriter, r *http.Request) {
	mux.ServeHTTP(w, r)
}
