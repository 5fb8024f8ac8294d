package serverrun

import (
	"context"
	"errors"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	cfgpkg "github.com/rzbill/msgquery/internal/config"
	"github.com/rzbill/msgquery/internal/query"
	"github.com/rzbill/msgquery/internal/runtime"
	httpserver "github.com/rzbill/msgquery/internal/server/http"
	pebblestore "github.com/rzbill/msgquery/internal/storage/pebble"
	logpkg "github.com/rzbill/msgquery/pkg/log"
)

func getenvDefault(key, def string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return def
}

// small wrapper to allow testing
var getenv = func(key string) string { return os.Getenv(key) }

type Options struct {
	DataDir       string
	HTTPAddr      string
	Engine        string
	Fsync         pebblestore.FsyncMode
	FsyncInterval time.Duration
	// MaxThreads overrides Config.Query.MaxThreads when positive.
	MaxThreads int
	// LogLevel and LogFormat override MSGQ_LOG_LEVEL and MSGQ_LOG_FORMAT.
	LogLevel  string
	LogFormat string
	Config    cfgpkg.Config
	// Ready, if set, is called with the bound HTTP address once listening.
	Ready func(addr string)
}

func buildLogger(opts Options) (logpkg.Logger, *logpkg.Config) {
	cfg := &logpkg.Config{
		Level:  getenvDefault("MSGQ_LOG_LEVEL", "info"),
		Format: getenvDefault("MSGQ_LOG_FORMAT", "text"),
	}
	if opts.LogLevel != "" {
		cfg.Level = opts.LogLevel
	}
	if opts.LogFormat != "" {
		cfg.Format = opts.LogFormat
	}
	logger, err := logpkg.ApplyConfig(cfg)
	if err != nil {
		lvl := logpkg.InfoLevel
		if l, e := logpkg.ParseLevel(cfg.Level); e == nil {
			lvl = l
		}
		logger = logpkg.NewLogger(logpkg.WithLevel(lvl), logpkg.WithFormatter(&logpkg.TextFormatter{}))
	}
	return logger, cfg
}

// Run opens the store, starts the HTTP server and blocks until ctx is
// cancelled or a termination signal arrives.
func Run(ctx context.Context, opts Options) error {
	sctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if opts.DataDir == "" {
		opts.DataDir = cfgpkg.DefaultDataDir()
	}
	if opts.MaxThreads > 0 {
		opts.Config.Query.MaxThreads = opts.MaxThreads
	}

	procLogger, logCfg := buildLogger(opts)
	// Redirect stdlib logs to our logger
	logpkg.RedirectStdLog(procLogger)

	rt, err := runtime.Open(runtime.Options{
		DataDir:       opts.DataDir,
		Engine:        opts.Engine,
		Fsync:         opts.Fsync,
		FsyncInterval: opts.FsyncInterval,
		Config:        opts.Config,
		Logger:        procLogger,
	})
	if err != nil {
		return err
	}
	defer rt.Close()
	cfg := rt.Config()

	procLogger.Info("Starting msgquery server",
		logpkg.Str("http", opts.HTTPAddr),
		logpkg.Str("data_dir", opts.DataDir),
		logpkg.Str("engine", rt.Engine()),
		logpkg.Str("fsync", opts.Fsync.String()),
		logpkg.Int("max_threads", cfg.Query.MaxThreads),
		logpkg.Str("param", cfg.Query.Param),
		logpkg.Str("level", logCfg.Level),
		logpkg.Str("format", logCfg.Format),
	)

	exec := query.NewExecutor(query.ExecutorOptions{
		MaxWorkers: cfg.Query.MaxThreads,
		Name:       "query",
		Logger:     procLogger,
	})
	disp := query.NewDispatcher(rt.Store(), exec, procLogger)
	hsrv := httpserver.New(rt, disp, procLogger)

	lis, err := net.Listen("tcp", opts.HTTPAddr)
	if err != nil {
		_ = exec.Close()
		return err
	}
	if opts.Ready != nil {
		opts.Ready(lis.Addr().String())
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := hsrv.Serve(sctx, lis); err != nil && sctx.Err() == nil {
			procLogger.Error("http error", logpkg.Err(err))
			stop()
		}
	}()

	<-sctx.Done()
	// Stop taking requests and let open streams finish before the pool and
	// the store go away.
	wg.Wait()
	hsrv.Close()
	if err := exec.Close(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			st := exec.Stats()
			procLogger.Warn("query executor shutdown grace expired",
				logpkg.Int("running", st.Running),
				logpkg.Int("queued", st.QueueDepth))
		} else {
			procLogger.Error("query executor shutdown", logpkg.Err(err))
		}
	}
	procLogger.Info("msgquery server stopped")
	return nil
}
