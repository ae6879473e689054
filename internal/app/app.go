package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/hitoshi/livefes/internal/artist"
	"github.com/hitoshi/livefes/internal/auth"
	"github.com/hitoshi/livefes/internal/bookmark"
	"github.com/hitoshi/livefes/internal/config"
	"github.com/hitoshi/livefes/internal/database"
	"github.com/hitoshi/livefes/internal/event"
	"github.com/hitoshi/livefes/internal/handler"
	"github.com/hitoshi/livefes/internal/ingest"
	"github.com/hitoshi/livefes/internal/logger"
	"github.com/hitoshi/livefes/internal/message"
	"github.com/hitoshi/livefes/internal/metrics"
	"github.com/hitoshi/livefes/internal/middleware"
	"github.com/hitoshi/livefes/internal/repository"
	"github.com/hitoshi/livefes/internal/security"
	"github.com/hitoshi/livefes/internal/storage"
	"github.com/hitoshi/livefes/internal/user"
	"github.com/hitoshi/livefes/internal/worker/cleanup"
	ingestworker "github.com/hitoshi/livefes/internal/worker/ingest"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
	)

	switch cmd {
	case CommandServe:
		return runServe(cfg)
	case CommandWorker:
		return runWorker(cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// rateLimiterConfig はconfigのreq/min設定をRateLimiterConfigに変換する。
func rateLimiterConfig(cfg *config.Config) middleware.RateLimiterConfig {
	rlCfg := middleware.DefaultRateLimiterConfig()
	if cfg.RateLimitGeneral > 0 {
		rlCfg.GeneralRate = rate.Limit(float64(cfg.RateLimitGeneral) / 60.0)
		rlCfg.GeneralBurst = cfg.RateLimitGeneral
	}
	if cfg.RateLimitUpload > 0 {
		rlCfg.UploadRate = rate.Limit(float64(cfg.RateLimitUpload) / 60.0)
		rlCfg.UploadBurst = cfg.RateLimitUpload
	}
	return rlCfg
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	// 2. リポジトリの初期化
	userRepo := repository.NewPostgresUserRepo(db)
	sessionRepo := repository.NewPostgresSessionRepo(db)
	eventRepo := repository.NewPostgresEventRepo(db)
	artistRepo := repository.NewPostgresArtistRepo(db)
	eventArtistRepo := repository.NewPostgresEventArtistRepo(db)
	messageRepo := repository.NewPostgresMessageRepo(db)
	bookmarkRepo := repository.NewPostgresBookmarkRepo(db)

	// 3. インフラサービスの初期化
	gateway := storage.NewLocalGateway(cfg.UploadDir)
	sanitizer := security.NewMessageSanitizer()

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 4. ドメインサービスの初期化
	oauthProvider := auth.NewGoogleOAuthProvider(auth.GoogleOAuthConfig{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
	})
	userService := user.NewService(
		userRepo, sessionRepo, gateway,
		user.ServiceConfig{SessionMaxAge: cfg.SessionMaxAge},
	)

	eventService := event.NewEventService(eventRepo, artistRepo, eventArtistRepo, gateway)
	artistService := artist.NewArtistService(artistRepo, gateway)
	messageService := message.NewMessageService(messageRepo, eventRepo, sanitizer)
	bookmarkService := bookmark.NewBookmarkService(bookmarkRepo, eventRepo)

	// 5. ルーターの構築
	deps := &handler.RouterDeps{
		SessionFinder:     sessionRepo,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       middleware.NewRateLimiter(rateLimiterConfig(cfg)),
		CSRFConfig: middleware.CSRFConfig{
			CookieSecure: cfg.CookieSecure,
			CookieDomain: cfg.CookieDomain,
		},

		Logger:    slog.Default(),
		Collector: collector,
		Gatherer:  registry,

		AuthService:   userService,
		OAuthProvider: oauthProvider,
		AuthConfig: handler.AuthHandlerConfig{
			BaseURL:       cfg.BaseURL,
			CookieDomain:  cfg.CookieDomain,
			CookieSecure:  cfg.CookieSecure,
			SessionMaxAge: cfg.SessionMaxAge,
		},

		EventService:    eventService,
		ArtistService:   artistService,
		MessageService:  messageService,
		BookmarkService: bookmarkService,
		UserService:     userService,

		MaxUploadSize: cfg.UploadMaxSize,
		PublicDir:     cfg.UploadDir,
	}

	router := handler.NewRouter(deps)

	// 6. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runWorker はワーカーモードで起動する。
// パートナーフィードの定期取り込みランナーとセッションクリーンアップジョブを起動し、
// 取り込みメトリクスを公開する軽量HTTPサーバーを立てる。
// SIGINTまたはSIGTERMシグナルを受信するとシャットダウンする。
func runWorker(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established (worker)")

	// 2. リポジトリの初期化
	eventRepo := repository.NewPostgresEventRepo(db)
	artistRepo := repository.NewPostgresArtistRepo(db)
	eventArtistRepo := repository.NewPostgresEventArtistRepo(db)

	// 3. 取り込みパイプラインの初期化
	ssrfGuard := security.NewSSRFGuard()
	gateway := storage.NewLocalGateway(cfg.UploadDir)
	artistService := artist.NewArtistService(artistRepo, gateway)

	geocoder := ingest.NewNominatimGeocoder(
		ssrfGuard.NewSafeClient(cfg.IngestTimeout, cfg.IngestMaxSize),
		cfg.GeocoderBaseURL,
	)
	ingester := ingest.NewIngester(
		eventRepo, artistService, eventArtistRepo,
		geocoder, ssrfGuard, cfg.IngestTimeout, cfg.IngestMaxSize,
	)

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	runner := ingestworker.NewRunner(
		cfg.PartnerFeedURLs, ingester, collector, slog.Default(), 4,
	)

	// 4. セッションクリーンアップジョブの初期化
	cleanupJob := cleanup.NewCleanupJob(db, slog.Default())

	// グレースフルシャットダウンのためのシグナルハンドリング
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-stop
		slog.Info("shutting down worker...")
		cancel()
	}()

	// 5. メトリクス・ヘルスチェック用の軽量HTTPサーバー
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(registry))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	metricsServer := &http.Server{
		Addr:        ":" + cfg.ServerPort,
		Handler:     mux,
		ReadTimeout: 15 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics server listen error", slog.String("error", err.Error()))
		}
	}()
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	slog.Info("worker starting",
		slog.Duration("ingest_interval", cfg.IngestInterval),
		slog.Int("feed_count", len(cfg.PartnerFeedURLs)),
	)

	// セッションクリーンアップを1時間おきにバックグラウンド実行
	go cleanupJob.Start(ctx, 1*time.Hour)

	// 取り込みランナーをメインgoroutineで実行（ブロッキング）
	runner.Start(ctx, cfg.IngestInterval)

	// フィード未設定の場合はランナーが即時復帰するため、シグナルまで待機する
	<-ctx.Done()

	slog.Info("worker stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /healthz エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/healthz", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
