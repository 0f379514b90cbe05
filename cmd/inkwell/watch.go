package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/inkwell/internal/config"
	"github.com/xxxsen/inkwell/internal/service"
	"github.com/xxxsen/inkwell/internal/session"
	"github.com/xxxsen/inkwell/internal/watch"
)

func newWatchCmd() *cobra.Command {
	var (
		configPath string
		userID     string
		docID      string
	)
	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "edit a document by writing to a local file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			if userID == "" {
				return fmt.Errorf("--user is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			initLogger(cfg)
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, cfg, userID, docID, args[0], cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	cmd.Flags().StringVar(&userID, "user", "", "owner of the document")
	cmd.Flags().StringVar(&docID, "doc", "", "document id, a new document is created when empty")
	return cmd
}

func runWatch(ctx context.Context, cfg *config.Config, userID, docID, path string, out io.Writer) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	conn, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer conn.Close()
	engine, err := buildEngine(cfg, true)
	if err != nil {
		return err
	}
	svcs := buildServices(cfg, conn, engine)
	if docID == "" {
		title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		doc, err := svcs.documents.Create(ctx, userID, service.DocumentInput{Title: title, Content: string(raw)})
		if err != nil {
			return fmt.Errorf("create document: %w", err)
		}
		docID = doc.ID
		fmt.Fprintf(out, "created document %s\n", docID)
	}

	userDocs := svcs.documents.ForUser(userID)
	logger := logutil.GetLogger(ctx).With(zap.String("document_id", docID))
	sess, err := session.Open(ctx, docID, session.Deps{
		Fetcher:     userDocs,
		Persister:   session.WithBreaker("documents", userDocs, cfg.Breaker),
		Snapshotter: svcs.versions.CoordinatorFor(userID),
		Suggester:   engine,
		OnEvent: func(ev session.Event) {
			reportEvent(out, logger, ev)
		},
		OnSuggestions: func(items []session.Item) {
			reportSuggestions(out, items)
		},
	}, session.Options{
		SaveDelay:    time.Duration(cfg.Session.SaveDelayMS) * time.Millisecond,
		SuggestDelay: time.Duration(cfg.Session.SuggestDelayMS) * time.Millisecond,
	})
	if err != nil {
		return err
	}
	if sess.Content() != string(raw) {
		sess.Edit(string(raw))
	}

	w, err := watch.New(path, sess, string(raw))
	if err != nil {
		_ = sess.Close(context.Background())
		return err
	}
	runErr := w.Run(ctx)
	if err := sess.Close(context.Background()); err != nil {
		logger.Error("final save failed", zap.Error(err))
	}
	m := sess.Metrics()
	fmt.Fprintf(out, "closed: %d words, ease %.1f, grade %.1f (%s)\n",
		m.WordCount, m.FleschReadingEase, m.FleschKincaidGrade, m.ReadabilityLevel)
	return runErr
}

func reportEvent(out io.Writer, logger *zap.Logger, ev session.Event) {
	switch ev.Kind {
	case session.EventSaved:
		if ev.Result == nil {
			return
		}
		fmt.Fprintf(out, "saved (%s): %d words, ease %.1f\n", ev.Trigger, ev.Result.Metrics.WordCount, ev.Result.Metrics.FleschReadingEase)
	case session.EventSaveFailed:
		logger.Error("save failed", zap.String("trigger", ev.Trigger), zap.Error(ev.Err))
		fmt.Fprintf(out, "save failed: %v\n", ev.Err)
	case session.EventVersionCreated:
		fmt.Fprintln(out, "version created")
	case session.EventStateChanged:
		logger.Debug("save state", zap.String("state", ev.State.String()))
	}
}

func reportSuggestions(out io.Writer, items []session.Item) {
	if len(items) == 0 {
		fmt.Fprintln(out, "no suggestions")
		return
	}
	fmt.Fprintf(out, "%d suggestions\n", len(items))
	for _, it := range items {
		fmt.Fprintf(out, "  [%d,%d) %s %q -> %q: %s\n", it.Start, it.End, it.Category, it.Original, it.Replacement, it.Message)
	}
}
