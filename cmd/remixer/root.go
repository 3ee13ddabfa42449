package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"archive-remix/internal/archive"
	"archive-remix/internal/orchestrator"
	"archive-remix/internal/platform/config"
	"archive-remix/internal/platform/logger"
	"archive-remix/internal/platform/metrics"
	"archive-remix/internal/remix"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newRootCommand() *cobra.Command {
	s := config.FromEnv(time.Now())

	cmd := &cobra.Command{
		Use:           "remixer [NAME]",
		Short:         "Assemble archived live chunks into a vod2live output",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				s.Name = args[0]
			}
			p, err := s.Resolve()
			if err != nil {
				return err
			}
			return run(cmd.Context(), s, p)
		},
	}

	f := cmd.Flags()
	f.StringVar(&s.StartTime, "start-time", s.StartTime, "Window start, ISO 8601 with offset")
	f.StringVar(&s.EndTime, "end-time", s.EndTime, "Window end, ISO 8601 with offset")
	f.StringVar(&s.ArchiveInterval, "archive-interval", s.ArchiveInterval, "Archive chunk length, ISO 8601 duration")
	f.StringVar(&s.ArchiveChannel, "archive-channel", s.ArchiveChannel, "Channel directory inside the archive bucket")
	f.StringSliceVar(&s.ArchiveDates, "archive-dates", s.ArchiveDates, "Archive date directories to list (default: today, UTC)")
	f.StringVar(&s.S3Endpoint, "s3-endpoint", s.S3Endpoint, "Object store endpoint, host:port")
	f.StringVar(&s.S3Bucket, "s3-bucket", s.S3Bucket, "Archive bucket")
	f.StringVar(&s.S3AccessKey, "s3-access-key", s.S3AccessKey, "Object store access key")
	f.StringVar(&s.S3SecretKey, "s3-secret-key", s.S3SecretKey, "Object store secret key")
	f.StringVar(&s.S3Region, "s3-region", s.S3Region, "Object store region")
	f.BoolVar(&s.S3Secure, "s3-secure", s.S3Secure, "Use https for the object store")
	f.IntVar(&s.TimeShift, "delay", s.TimeShift, "Seconds the vod2live output trails the live edge")
	f.IntVar(&s.PollInterval, "poll-interval", s.PollInterval, "Seconds between archive polls")
	f.StringVar(&s.Vod2LiveStartTime, "vod2live-start-time", s.Vod2LiveStartTime, "vod2live start (default: start-time plus two intervals)")
	f.StringVar(&s.WorkDir, "work-dir", s.WorkDir, "Directory for generated smil, mp4 and isml files")
	f.StringVar(&s.UnifiedRemix, "unified-remix", s.UnifiedRemix, "unified_remix binary")
	f.StringVar(&s.MP4Split, "mp4split", s.MP4Split, "mp4split binary")
	f.StringVar(&s.Port, "port", s.Port, "Status server port, empty to disable")
	f.StringVar(&s.LogLevel, "log-level", s.LogLevel, "debug, info, warn or error")
	f.StringVar(&s.LogFormat, "log-format", s.LogFormat, "json or text")

	return cmd
}

func run(ctx context.Context, s config.Settings, p *config.Params) error {
	log, _ := logger.WithRun(logger.New(s.LogLevel, s.LogFormat))

	lister, err := archive.NewMinioLister(archive.StorageConfig{
		Endpoint:  p.Endpoint,
		AccessKey: p.AccessKey,
		SecretKey: p.SecretKey,
		Region:    p.Region,
		Secure:    p.Secure,
	})
	if err != nil {
		return err
	}

	client := remix.New(p.UnifiedRemix, p.MP4Split, p.WorkDir,
		remix.WithLogger(log),
		remix.WithSecrets(p.SecretKey),
	)
	auth := remix.S3AuthArgs(p.AccessKey, p.SecretKey, p.Region)

	repo := orchestrator.NewInMemoryRepository()
	met := metrics.New()

	assembler := orchestrator.NewAssembler(orchestrator.AssemblerConfig{
		Name:         p.Name,
		Channel:      p.Channel,
		Bucket:       p.Bucket,
		BaseURL:      p.BaseURL(),
		Dates:        p.Dates,
		Start:        p.Start,
		End:          p.End,
		Interval:     p.Interval,
		PollInterval: p.PollInterval,
		RemixOptions: []any{auth},
		ISMLOptions:  remix.ISMLOptions(p.Vod2LiveStart, p.TimeShift, auth),
		LockPath:     filepath.Join(p.WorkDir, p.Name+".lock"),
	}, lister, client, repo, log, met)

	log.Debug("resolved configuration",
		slog.String("bucket", p.Bucket),
		slog.String("base_url", p.BaseURL()),
		slog.Time("vod2live_start", p.Vod2LiveStart),
		slog.Int("delay", p.TimeShift),
		slog.String("work_dir", p.WorkDir))

	var srv *http.Server
	if s.Port != "" {
		srv = &http.Server{Addr: ":" + s.Port, Handler: newRouter(repo, met, log)}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("status server error", slog.Any("error", err))
			}
		}()
		log.Info("status server listening", slog.String("port", s.Port))
	}

	runErr := assembler.Run(ctx)

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown error", slog.Any("error", err))
		}
	}

	return runErr
}

func newRouter(repo orchestrator.Repository, met *metrics.Metrics, log *slog.Logger) http.Handler {
	h := orchestrator.NewHandler(repo, log)

	r := chi.NewRouter()
	r.Use(logger.RequestLogger(log, "/metrics"))
	r.Use(metrics.RequestMiddleware(met))
	r.Method(http.MethodGet, "/metrics", met.Handler(nil))
	r.Get("/outputs", h.ListOutputs)
	r.Route("/outputs/{name}", func(r chi.Router) {
		r.Get("/playlist.smil", h.GetPlaylist)
		r.Get("/period", h.GetPeriod)
	})
	return r
}
