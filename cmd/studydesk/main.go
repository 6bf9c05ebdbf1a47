// cmd/studydesk/main.go
package main

import (
	"context"
	"log"

	"github.com/dalemusser/studydesk/internal/app/bootstrap"
	"github.com/dalemusser/waffle/app"
)

func main() {
	// WAFFLE owns flag/env/file config loading, the zap logger, the HTTP
	// server and graceful shutdown; the app only supplies its hooks.
	if err := app.Run(context.Background(), bootstrap.Hooks); err != nil {
		log.Fatal(err)
	}
}
