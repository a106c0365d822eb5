package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"media-browser/internal/enrichment"
	"media-browser/internal/logging"
)

func main() {
	size := flag.Int("size", enrichment.DefaultThumbnailSize, "Thumbnail bounding box in pixels")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc := enrichment.NewLocalService()
	svc.ThumbnailSize = *size

	logging.Debug("enrichd: serving on stdio")
	err := enrichment.Serve(ctx, enrichment.NewStdio(os.Stdin, os.Stdout), svc)
	if err != nil && !errors.Is(err, context.Canceled) {
		logging.Fatal("enrichd: %v", err)
	}
}
