package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"verireg/internal/platform/kafka/consumer"
	audit "verireg/pkg/platform/audit"
	auditconsumer "verireg/pkg/platform/audit/consumer"
)

type auditTailConfig struct {
	Brokers    []string
	Topic      string
	Group      string
	Categories []string
	FromStart  bool
}

func tailAudit(ctx context.Context, out io.Writer, cfg auditTailConfig) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	c, err := consumer.New(consumer.Config{
		Brokers:   cfg.Brokers,
		Topics:    []string{cfg.Topic},
		GroupID:   cfg.Group,
		ClientID:  "regctl",
		FromStart: cfg.FromStart,
	}, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	return c.Run(ctx, newAuditRouter(out, cfg.Categories, logger))
}

// newAuditRouter prints every event, or only the listed categories when any
// are given.
func newAuditRouter(out io.Writer, categories []string, logger *slog.Logger) *auditconsumer.Router {
	printer := auditconsumer.EventHandlerFunc(func(_ context.Context, event audit.Event) error {
		return printEvent(out, event)
	})
	if len(categories) == 0 {
		return auditconsumer.NewRouter(logger, printer)
	}
	router := auditconsumer.NewRouter(logger, nil)
	for _, c := range categories {
		router.Register(audit.EventCategory(c), printer)
	}
	return router
}

func printEvent(out io.Writer, event audit.Event) error {
	line := fmt.Sprintf("%s %-10s %-18s account=%s actor=%s request_id=%s",
		event.Timestamp.UTC().Format(time.RFC3339),
		event.Category,
		event.Action,
		event.Account,
		event.ActorID,
		event.RequestID,
	)
	if event.ProofHash != "" {
		line += " proof=" + event.ProofHash
	}
	_, err := fmt.Fprintln(out, line)
	return err
}
