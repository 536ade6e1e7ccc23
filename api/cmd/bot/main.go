package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"net"
	"net/http"
	"os"
	"os/signal"
	"regexp"
	"strconv"
	"strings"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"go.uber.org/zap"

	"pedidos-bot/api/internal/catalog"
	"pedidos-bot/api/internal/config"
	"pedidos-bot/api/internal/conversation"
	"pedidos-bot/api/internal/httpserver"
	"pedidos-bot/api/internal/logger"
	"pedidos-bot/api/internal/matcher"
	"pedidos-bot/api/internal/notify"
	"pedidos-bot/api/internal/order"
	"pedidos-bot/api/internal/session"
	"pedidos-bot/api/internal/store"
	"pedidos-bot/api/internal/telegram"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config", zap.Error(err))
	}
	log := logger.New(cfg.LogFilePath, cfg.IsProd())
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Postgres ---
	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		log.Fatal("sql.Open", zap.Error(err))
	}
	defer db.Close()
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(1 * time.Hour)

	{
		pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := db.PingContext(pctx)
		cancel()
		if err != nil {
			log.Fatal("db.Ping", zap.Error(err))
		}
		log.Info("db connected", zap.String("dsn", config.SafeDSNSummary(cfg.DatabaseURL)))
	}
	if err := store.Migrate(ctx, db, log); err != nil {
		log.Fatal("migrate", zap.Error(err))
	}

	catalogRepo := store.NewCatalogRepo(db)
	clientRepo := store.NewClientRepo(db)
	orderRepo := store.NewOrderRepo(db)

	// --- Catalog ---
	cache := catalog.NewCache(catalogRepo, log.Named("catalog"))
	if err := cache.Reload(ctx); err != nil {
		// searches fall back to the database until /recargar succeeds
		log.Warn("starting with an empty catalog cache", zap.Error(err))
	}

	// --- Notifications ---
	bus := notify.NewBus(log.Named("bus"))
	defer func() { _ = bus.Close() }()
	if err := bus.Consume(ctx, notify.LogOrders(log.Named("orders"))); err != nil {
		log.Fatal("bus subscribe", zap.Error(err))
	}
	notifiers := notify.Fanout{bus}

	if cfg.NATSURL != "" {
		nc, err := notify.NewNATS(ctx, cfg.NATSURL, log.Named("nats"))
		if err != nil {
			log.Warn("nats disabled", zap.Error(err))
		} else {
			defer nc.Close()
			notifiers = append(notifiers, nc)
		}
	}
	if cfg.RedisURL != "" {
		rc := notify.NewRedis(cfg.RedisURL)
		pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := rc.Ping(pctx)
		cancel()
		if err != nil {
			log.Warn("redis disabled", zap.Error(err))
			_ = rc.Close()
		} else {
			defer func() { _ = rc.Close() }()
			notifiers = append(notifiers, rc)
		}
	}

	// --- Conversation ---
	engine := conversation.NewEngine(conversation.Deps{
		Sessions: session.NewStore(cfg.SessionTTL),
		Products: matcher.New(cache, catalogRepo, log.Named("matcher")),
		Catalog:  cache,
		Source:   catalogRepo,
		Clients:  clientRepo,
		Orders:   order.NewAssembler(orderRepo, notifiers, log.Named("order")),
		Stats:    orderRepo,
		Log:      log.Named("conversation"),
	})
	dispatcher := conversation.NewDispatcher()

	// --- Telegram bot ---
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		log.Fatal("telegram", zap.Error(err))
	}
	bot.Debug = false
	log.Info("authorized", zap.String("bot", bot.Self.UserName))

	r := &telegram.Router{
		Bot:     bot,
		Handler: engine,
		Queue:   dispatcher,
		Log:     log.Named("telegram"),
	}

	addr := "0.0.0.0:" + cfg.Port
	webhookURL := strings.TrimSpace(cfg.WebhookURL)
	if webhookURL != "" {
		runWebhook(ctx, log, addr, bot, r, db, webhookURL)
	} else {
		runPollingMode(ctx, log, addr, bot, r, db)
	}

	dispatcher.Close()
	log.Info("stopped")
}

// ---------------- Modes -----------------

func runWebhook(ctx context.Context, log *zap.Logger, addr string, bot *tgbotapi.BotAPI, r *telegram.Router, db *sql.DB, baseURL string) {
	path := "/webhook/" + shortHash(bot.Token)
	public := strings.TrimRight(baseURL, "/") + path

	wh, err := tgbotapi.NewWebhook(public)
	if err != nil {
		log.Fatal("webhook config", zap.Error(err))
	}
	wh.DropPendingUpdates = true
	if _, err := bot.Request(wh); err != nil {
		log.Fatal("set webhook", zap.Error(err))
	}

	hook := http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		upd, err := bot.HandleUpdate(req)
		if err != nil {
			log.Warn("bad webhook update", zap.Error(err))
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		r.HandleUpdate(ctx, *upd)
		w.WriteHeader(http.StatusOK)
	})

	srv := httpserver.Server(addr, httpserver.NewMux(db, path, hook))
	log.Info("webhook listening", zap.String("addr", addr), zap.String("path", path))
	serve(ctx, log, srv)
}

func runPollingMode(ctx context.Context, log *zap.Logger, addr string, bot *tgbotapi.BotAPI, r *telegram.Router, db *sql.DB) {
	if _, err := bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		log.Warn("delete webhook", zap.Error(err))
	}
	srv := httpserver.Server(addr, httpserver.NewMux(db, "", nil))
	go serve(ctx, log, srv)

	log.Info("polling started")
	runPolling(ctx, log, bot, func(upd tgbotapi.Update) {
		r.HandleUpdate(ctx, upd)
	})
}

func serve(ctx context.Context, log *zap.Logger, srv *http.Server) {
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}()
	log.Info("health server listening", zap.String("addr", srv.Addr+"/healthz"))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("http server", zap.Error(err))
	}
}

// ---------------- Polling loop -----------------

var reRetryAfter = regexp.MustCompile(`(?i)retry after\s+(\d+)`)

func retryDelayFromError(err error) time.Duration {
	if err == nil {
		return 0
	}
	s := strings.ToLower(err.Error())
	if strings.Contains(s, "too many requests") {
		if m := reRetryAfter.FindStringSubmatch(s); len(m) == 2 {
			if n, _ := strconv.Atoi(m[1]); n > 0 {
				return time.Duration(n) * time.Second
			}
		}
		return 3 * time.Second
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return 2 * time.Second
	}
	return 1 * time.Second
}

func runPolling(ctx context.Context, log *zap.Logger, bot *tgbotapi.BotAPI, handle func(tgbotapi.Update)) {
	offset := 0
	baseDelay := 1 * time.Second
	maxDelay := 15 * time.Second

	for {
		if ctx.Err() != nil {
			log.Info("polling: context cancelled")
			return
		}

		u := tgbotapi.NewUpdate(offset)
		u.Timeout = 30

		updates, err := bot.GetUpdates(u)
		if err != nil {
			d := min(max(retryDelayFromError(err), baseDelay), maxDelay)
			log.Warn("polling error", zap.Error(err), zap.Duration("retry_in", d))
			if !sleep(ctx, d) {
				return
			}
			continue
		}

		for _, upd := range updates {
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
			}
			handle(upd)
		}

		if len(updates) == 0 && !sleep(ctx, 200*time.Millisecond) {
			return
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// shortHash is a stable FNV-1a hex digest of the token used as the webhook path.
func shortHash(s string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return fmt.Sprintf("%016x", h.Sum64())
}
