package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/devilmonastery/projectboard/internal/auth"
	"github.com/devilmonastery/projectboard/internal/auth/kakao"
	"github.com/devilmonastery/projectboard/internal/config"
	"github.com/devilmonastery/projectboard/internal/pkg/metrics"
	"github.com/devilmonastery/projectboard/web/internal/handlers"
	"github.com/devilmonastery/projectboard/web/internal/middleware"
	"github.com/devilmonastery/projectboard/web/internal/render"
	"github.com/devilmonastery/projectboard/web/internal/session"
)

const (
	shutdownTimeout = 10 * time.Second
	gaugeInterval   = time.Minute
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		Long:  "Serve the board pages, the read-only JSON API and /metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts.cfg)
		},
	}
}

func runServe(ctx context.Context, cfg *config.Config) error {
	log := slog.Default().With("component", "web")
	log.Info("starting projectboard", "version", version, "environment", cfg.Environment)

	a, err := openApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	templates, err := render.LoadTemplates(cfg.Templates.Path)
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}
	render.LogTemplateNames(log, templates)

	secret, source, err := sessionSecret(cfg.Session.Secret)
	if err != nil {
		return err
	}
	if source == secretRandom {
		log.Warn("no session secret configured, generating random one (sessions won't persist)")
	} else {
		log.Info("using session secret (sessions will persist across restarts)", "source", source)
	}

	signingKey := cfg.Auth.JWT.SigningKey
	if signingKey == "" {
		log.Warn("JWT signing key not configured, using a random key (logins won't survive a restart)")
		signingKey, err = randomKey()
		if err != nil {
			return err
		}
	}
	jwtManager := auth.NewJWTManager(signingKey, cfg.Auth.JWT.Lifetime)
	sessions := session.NewManager(secret, jwtManager, cfg.Session.Secure)

	var kakaoClient *kakao.Client
	if cfg.OAuth.Kakao.Enabled() {
		kakaoClient = kakao.New(kakao.Config{
			ClientID:     cfg.OAuth.Kakao.ClientID,
			ClientSecret: cfg.OAuth.Kakao.ClientSecret,
			RedirectURI:  cfg.OAuth.Kakao.RedirectURI,
		})
		log.Info("kakao login enabled", "redirect_uri", cfg.OAuth.Kakao.RedirectURI)
	}

	h := handlers.New(handlers.Deps{
		Articles:  a.articles,
		Comments:  a.comments,
		Hashtags:  a.hashtags,
		Users:     a.users,
		Sessions:  sessions,
		Templates: templates,
		Kakao:     kakaoClient,
		PageSize:  cfg.Board.PageSize,
	}, log)
	am := middleware.NewAuthMiddleware(sessions, log)

	router := h.Router(am, cfg.Server.StaticPath)
	router.HandleFunc("/version", versionHandler).Methods(http.MethodGet)
	if cfg.Server.MetricsPort == 0 {
		router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	}

	servers := []*http.Server{{
		Addr:              cfg.Server.Address(),
		Handler:           am.LoadUser(middleware.LogRequest(log)(router)),
		ReadHeaderTimeout: 10 * time.Second,
	}}
	if cfg.Server.MetricsPort != 0 {
		metricsMux := mux.NewRouter()
		metricsMux.Handle("/metrics", promhttp.Handler())
		servers = append(servers, &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.MetricsPort),
			Handler:           metricsMux,
			ReadHeaderTimeout: 10 * time.Second,
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		g.Go(func() error {
			log.Info("listening", "address", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server on %s failed: %w", srv.Addr, err)
			}
			return nil
		})
	}

	g.Go(func() error {
		refreshGauges(gctx, a, log, gaugeInterval)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		var errs []error
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("shutdown %s: %w", srv.Addr, err))
			}
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}

const (
	secretEnv    = "environment variable"
	secretConfig = "config file"
	secretRandom = "random (temporary)"
)

// sessionSecret picks the cookie key: SESSION_SECRET, then the config file,
// then a random key. Configured values are base64 encoded.
func sessionSecret(configured string) ([]byte, string, error) {
	if env := os.Getenv("SESSION_SECRET"); env != "" {
		secret, err := base64.StdEncoding.DecodeString(env)
		if err == nil {
			return secret, secretEnv, nil
		}
		slog.Warn("failed to decode SESSION_SECRET env var, trying config", "error", err)
	}

	if configured != "" {
		secret, err := base64.StdEncoding.DecodeString(configured)
		if err == nil {
			return secret, secretConfig, nil
		}
		slog.Warn("failed to decode session secret from config", "error", err)
	}

	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, "", fmt.Errorf("failed to generate session secret: %w", err)
	}
	return secret, secretRandom, nil
}

func randomKey() (string, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return "", fmt.Errorf("failed to generate signing key: %w", err)
	}
	return base64.StdEncoding.EncodeToString(key), nil
}

func versionHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"version": version})
}

// refreshGauges keeps the board gauges current until ctx is done
func refreshGauges(ctx context.Context, a *app, log *slog.Logger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		updateGauges(ctx, a, log)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func updateGauges(ctx context.Context, a *app, log *slog.Logger) {
	if n, err := a.articles.GetArticleCount(ctx); err == nil {
		metrics.ArticlesTotal.Set(float64(n))
	} else if ctx.Err() == nil {
		log.Warn("failed to count articles", "error", err)
	}
	if n, err := a.hashtags.Count(ctx); err == nil {
		metrics.HashtagsTotal.Set(float64(n))
	} else if ctx.Err() == nil {
		log.Warn("failed to count hashtags", "error", err)
	}
	if n, err := a.users.Count(ctx); err == nil {
		metrics.UsersTotal.Set(float64(n))
	} else if ctx.Err() == nil {
		log.Warn("failed to count users", "error", err)
	}
}
