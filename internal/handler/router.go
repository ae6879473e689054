package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/livefes/internal/auth"
	"github.com/hitoshi/livefes/internal/metrics"
	"github.com/hitoshi/livefes/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	CSRFConfig        middleware.CSRFConfig

	// 観測
	Logger    *slog.Logger
	Collector metrics.MetricsCollector
	Gatherer  prometheus.Gatherer

	// 認証
	AuthService   AuthServiceInterface
	OAuthProvider auth.OAuthProvider
	AuthConfig    AuthHandlerConfig

	// ドメインサービス
	EventService    EventServiceInterface
	ArtistService   ArtistServiceInterface
	MessageService  MessageServiceInterface
	BookmarkService BookmarkServiceInterface
	UserService     UserServiceInterface

	// アップロード
	MaxUploadSize int64
	PublicDir     string // アップロード済みファイルの公開ルート
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORS → SecurityHeaders → Recovery → Metrics → Logging
//
// リソースごとに1つのルートツリーを構成し、変更系メソッドにのみ
// Session → RateLimit → CSRFをメソッド単位で適用する。
// 読み取り系（イベント・アーティスト・メッセージ一覧）と/auth/*は認証不要。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewMetricsMiddleware(deps.Collector))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))

	authHandler := NewAuthHandler(deps.AuthService, deps.OAuthProvider, deps.AuthConfig)
	eventHandler := NewEventHandler(deps.EventService, deps.MaxUploadSize, deps.Collector)
	artistHandler := NewArtistHandler(deps.ArtistService, deps.MaxUploadSize, deps.Collector)
	messageHandler := NewMessageHandler(deps.MessageService)
	bookmarkHandler := NewBookmarkHandler(deps.BookmarkService)
	userHandler := NewUserHandler(deps.UserService, deps.MaxUploadSize, deps.Collector)

	// --- 運用エンドポイント ---

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", metrics.Handler(deps.Gatherer))

	// CSRFトークン取得
	r.Method(http.MethodGet, "/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig))

	// アップロード済みファイルの配信
	if deps.PublicDir != "" {
		r.Handle("/uploads/*", http.FileServer(http.Dir(deps.PublicDir)))
	}

	// --- 認証ルート ---

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)

		// OAuthフロー
		r.Get("/google/login", authHandler.OAuthLogin)
		r.Get("/google/callback", authHandler.OAuthCallback)
	})

	// 変更系メソッドに適用するミドルウェアチェーン: Session → RateLimit(General) → CSRF
	authed := []func(http.Handler) http.Handler{
		middleware.NewSessionMiddleware(deps.SessionFinder),
		deps.RateLimiter.GeneralMiddleware(),
		middleware.NewCSRFMiddleware(deps.CSRFConfig),
	}
	// バナーアップロードを伴うルートにはアップロード専用レート制限を追加する
	uploadLimit := deps.RateLimiter.UploadMiddleware()

	// --- イベント ---
	// GETは認証不要。同一パターンを複数のグループに登録すると
	// 後勝ちで読み取りが認証必須になるため、リソースごとに単一のルートツリーとする。

	r.Route("/api/events", func(r chi.Router) {
		r.Get("/", eventHandler.ListEvents)
		r.With(authed...).With(uploadLimit).Post("/", eventHandler.CreateEvent)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", eventHandler.GetEvent)
			r.With(authed...).With(uploadLimit).Patch("/", eventHandler.UpdateEvent)
			r.With(authed...).Delete("/", eventHandler.DeleteEvent)

			// メッセージ
			r.Get("/messages", messageHandler.ListMessages)
			r.With(authed...).Post("/messages", messageHandler.CreateMessage)

			// ブックマーク
			r.With(authed...).Put("/bookmark", bookmarkHandler.SetBookmark)
			r.With(authed...).Delete("/bookmark", bookmarkHandler.RemoveBookmark)
		})
	})

	// --- メッセージ編集・削除 ---

	r.Route("/api/messages/{messageId}", func(r chi.Router) {
		r.Use(authed...)
		r.Patch("/", messageHandler.UpdateMessage)
		r.Delete("/", messageHandler.DeleteMessage)
	})

	// --- アーティスト ---

	r.Route("/api/artists", func(r chi.Router) {
		r.Get("/", artistHandler.ListArtists)
		r.With(authed...).With(uploadLimit).Post("/", artistHandler.CreateArtist)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", artistHandler.GetArtist)
			r.With(authed...).With(uploadLimit).Patch("/", artistHandler.UpdateArtist)
			r.With(authed...).Delete("/", artistHandler.DeleteArtist)
		})
	})

	// --- ユーザー ---

	r.Route("/api/users/me", func(r chi.Router) {
		r.Use(authed...)
		r.Patch("/", userHandler.UpdateMe)
		r.Delete("/", userHandler.Withdraw)
		r.With(uploadLimit).Post("/banner", userHandler.UploadBanner)
		r.Put("/password", userHandler.ResetPassword)
		r.Get("/bookmarks", bookmarkHandler.ListBookmarks)
	})

	return r
}
