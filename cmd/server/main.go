package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"asistencia-backend/internal/config"
	"asistencia-backend/internal/dashboard"
	"asistencia-backend/internal/services"
	"asistencia-backend/internal/websocket"
)

const notifyTimeout = 10 * time.Second

func main() {
	log.Println("═══════════════════════════════════════════════════════════════════")
	log.Println("🚀 ASISTENCIA BACKEND SERVER STARTING")
	log.Println("═══════════════════════════════════════════════════════════════════")

	log.Println("📂 Loading environment variables...")
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		log.Println("❌ FATAL ERROR: Invalid configuration")
		log.Printf("   Error: %v", err)
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		log.Fatal(err)
	}
	log.Printf("✅ Store driver: %s, timezone: %s", cfg.StoreDriver, cfg.Location)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Println("🔌 Opening attendance store...")
	st, err := openStore(ctx, cfg)
	if err != nil {
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		log.Println("❌ FATAL ERROR: Store initialization failed")
		log.Printf("   Error: %v", err)
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		log.Fatal(err)
	}
	defer st.Close()
	log.Println("✅ Attendance store ready")

	wsHub := websocket.NewHub()
	go wsHub.Run(ctx)
	log.Println("✅ WebSocket hub started")

	opts := []dashboard.Option{dashboard.WithNotifier(wsHub)}
	for _, n := range initNotifiers(ctx, cfg) {
		opts = append(opts, dashboard.WithNotifier(services.Async(n, notifyTimeout)))
	}
	svc := dashboard.NewService(st.store, cfg.Location, opts...)

	if _, err := svc.Load(ctx); err != nil {
		log.Printf("⚠️  Initial snapshot load failed: %v (will retry on first request)", err)
	}

	r := newRouter(cfg, svc, wsHub, st.authorizer)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		<-ctx.Done()
		log.Println("🛑 Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Println("═══════════════════════════════════════════════════════════════════")
	log.Println("✅ ALL INITIALIZATION COMPLETE")
	log.Printf("🚀 Server starting on http://localhost:%s", cfg.Port)
	log.Println("🔌 Ready to accept requests!")
	log.Println("═══════════════════════════════════════════════════════════════════")

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		log.Println("❌ FATAL ERROR: Server failed to start")
		log.Printf("   Error: %v", err)
		log.Printf("   Port: %s", cfg.Port)
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		log.Fatal(err)
	}
}

// initNotifiers builds the optional push and chat notifiers. A notifier
// that fails to start is logged and skipped.
func initNotifiers(ctx context.Context, cfg *config.Config) []dashboard.Notifier {
	var out []dashboard.Notifier

	// Supports both file path and base64-encoded credentials (for cloud deployments)
	switch {
	case cfg.FirebaseCredentialsBase64 != "":
		fcm, err := services.NewFCMServiceFromBase64(ctx, cfg.FirebaseCredentialsBase64, cfg.FCMTopic)
		if err != nil {
			log.Printf("⚠️  Failed to initialize FCM from base64: %v (push notifications disabled)", err)
		} else {
			log.Println("✅ Firebase Cloud Messaging initialized from base64 credentials")
			out = append(out, fcm)
		}
	case cfg.FirebaseCredentialsFile != "":
		fcm, err := services.NewFCMService(ctx, cfg.FirebaseCredentialsFile, cfg.FCMTopic)
		if err != nil {
			log.Printf("⚠️  Failed to initialize FCM from file: %v (push notifications disabled)", err)
		} else {
			log.Println("✅ Firebase Cloud Messaging initialized from file")
			out = append(out, fcm)
		}
	}

	if cfg.TelegramToken != "" && len(cfg.TelegramChatIDs) > 0 {
		tg, err := services.NewTelegramService(cfg.TelegramToken, cfg.TelegramChatIDs)
		if err != nil {
			log.Printf("⚠️  Failed to initialize Telegram: %v (chat notifications disabled)", err)
		} else {
			out = append(out, tg)
		}
	}
	return out
}
