package cli

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"blood-helpline/pkg/api"
	"blood-helpline/pkg/clients/twilio"
	"blood-helpline/pkg/clients/whisper"
	"blood-helpline/pkg/config"
	"blood-helpline/pkg/ivr"
	"blood-helpline/pkg/middleware"
	"blood-helpline/pkg/services"
	"blood-helpline/pkg/session"
)

// NewServeCmd creates the serve command
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the telephony webhook server",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if err := cfg.RequireServer(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.close(); err != nil {
			log.Printf("Error closing storage: %v", err)
		}
	}()
	logBackends(cfg)

	twilioClient := twilio.NewClient(cfg.TwilioSID, cfg.TwilioAuthToken, cfg.TwilioPhoneNumber)
	sessions := session.NewStore(cfg.SessionTTL)
	stats := &services.Stats{}

	dispatcher := services.NewDispatcher(newSMSSender(cfg, twilioClient), cfg.CountryCode, cfg.NotifyConcurrency, stats)
	intake := services.NewIntakeService(
		ivr.NewMachine(cfg.MaxPhoneAttempts),
		sessions,
		twilioClient,
		newConverter(cfg),
		whisper.NewClient(cfg.OpenAIAPIKey, cfg.TranscriptionModel),
		services.NewFinalizer(store.records, store.donors, dispatcher),
		stats,
		services.IntakeConfig{RecordingsDir: cfg.RecordingsDir, KeepRecordings: cfg.KeepRecordings},
	)

	router := newRouter(cfg, api.NewHandlers(intake, ivr.NewSigner(cfg.ContinuationSecret), cfg.OperatorNumber))
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sessions.Run(ctx, cfg.SessionSweepInterval)
		return nil
	})
	g.Go(func() error {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Println("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func newRouter(cfg *config.Config, handlers *api.Handlers) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), middleware.RequestID())

	var webhook []gin.HandlerFunc
	if cfg.TwilioValidateWebhooks {
		webhook = append(webhook, middleware.TwilioSignature(twilio.NewSignatureValidator(cfg.TwilioAuthToken), cfg.PublicBaseURL))
	}
	api.RegisterRoutes(router, handlers, webhook...)
	return router
}
