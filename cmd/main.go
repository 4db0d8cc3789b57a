// Command threadcapture is a minimal end-to-end demonstration of the
// library: it installs a request-scoped logger, fans work out through
// dispatch, and shows the logger following that work across the
// goroutine boundary via capturedispatch.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/temurbekov/threadcapture/capturedispatch"
	"github.com/temurbekov/threadcapture/capturelog"
	"github.com/temurbekov/threadcapture/dispatch"
)

func run() error {
	requestLogger := log.New(os.Stdout, "[req-42] ", 0)

	guard := capturelog.InstallCrossing(requestLogger)
	defer guard.MustClose()

	capturelog.Println("handling request")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := dispatch.Run(ctx, func(sp dispatch.Spawner) {
		crossing := capturedispatch.NewCrossingSpawner(sp)

		crossing.Go("fetch-user", func(ctx context.Context) error {
			// This runs on a fresh goroutine, yet capturelog.Current
			// still resolves to requestLogger.
			capturelog.Println("fetched user")
			return nil
		})

		crossing.Go("fetch-orders", func(ctx context.Context) error {
			capturelog.Println("fetched orders")
			return nil
		})
	}, dispatch.WithPolicy(dispatch.Collect))

	if err != nil {
		return err
	}

	capturelog.Println("request complete")
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("request failed: %v", err)
	}
}
