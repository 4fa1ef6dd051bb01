package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	config "github.com/anjiri1684/school_admin/configs"
	"github.com/anjiri1684/school_admin/database"
	"github.com/anjiri1684/school_admin/handlers"
	"github.com/anjiri1684/school_admin/jobs"
	"github.com/anjiri1684/school_admin/notifications"
	"github.com/anjiri1684/school_admin/repositories"
	"github.com/anjiri1684/school_admin/routes"
	"github.com/anjiri1684/school_admin/services"
	"github.com/anjiri1684/school_admin/websocket"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const shutdownTimeout = 30 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, websocket hub and scheduled jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		return err
	}
	if err := database.Migrate(db, log); err != nil {
		return err
	}
	if err := database.SeedAdmin(ctx, db, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword, log); err != nil {
		return err
	}

	hub := websocket.NewHub(log.With().Str("component", "hub").Logger())
	if cfg.RedisURL != "" {
		relay, err := websocket.NewRedisRelay(ctx, cfg.RedisURL, log)
		if err != nil {
			return err
		}
		defer relay.Close()
		hub.WithRelay(relay)
	}

	h, notifier, err := buildHandler(cfg, db, hub, log)
	if err != nil {
		return err
	}

	users := repositories.NewUserRepository(db)
	scheduler := jobs.NewScheduler(log.With().Str("component", "jobs").Logger())
	if err := scheduler.Add(cfg.ReminderSchedule, jobs.NewEventReminder(repositories.NewEventRepository(db), users, notifier, log)); err != nil {
		return fmt.Errorf("schedule event reminders: %w", err)
	}
	if err := scheduler.Add(cfg.AbsenceAlertSchedule, jobs.NewAbsenceAlert(db, notifier, log)); err != nil {
		return fmt.Errorf("schedule absence alerts: %w", err)
	}

	app := routes.NewApp(h, routes.Options{
		JWTSecret:     cfg.JWTSecret,
		CORSOrigins:   cfg.CORSOrigins,
		AuthRateLimit: cfg.AuthRateLimit,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return hub.Run(gctx)
	})
	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("✅ Server is running")
		if err := app.Listen(":" + cfg.Port); err != nil {
			return fmt.Errorf("server failed to start: %w", err)
		}
		return nil
	})
	scheduler.Start()

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		scheduler.Stop(shutdownCtx)
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("server stopped with error")
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}

// buildHandler constructs every service over db and returns the handler set
// along with the notification service the jobs share.
func buildHandler(cfg *config.Config, db *gorm.DB, hub *websocket.Hub, log zerolog.Logger) (*handlers.Handler, *services.NotificationService, error) {
	users := repositories.NewUserRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)
	mailer := notifications.NewMailer(cfg.BrevoAPIKey, cfg.EmailSender, cfg.EmailSenderName, log)

	uploads, err := services.NewUploadService(cfg.CloudinaryURL)
	if err != nil {
		return nil, nil, err
	}
	if uploads == nil {
		log.Warn().Msg("⚠️ CLOUDINARY_URL not set, upload signatures disabled")
	}

	notifier := services.NewNotificationService(notificationRepo, users, hub, log)
	dashboard := services.NewDashboardService(db, users)

	messaging := services.NewMessagingService(
		users,
		repositories.NewConversationRepository(db),
		repositories.NewMessageRepository(db),
		notificationRepo,
		hub,
		log,
	)

	h := &handlers.Handler{
		Auth:          services.NewAuthService(users, mailer, cfg.JWTSecret, cfg.TokenTTL, log),
		Messaging:     messaging,
		Announcements: services.NewAnnouncementService(repositories.NewAnnouncementRepository(db), log),
		Notifications: notifier,
		Users:         services.NewUserService(users, repositories.NewProfileRepository(db)),
		Roster:        services.NewRosterService(db, log),
		Events:        services.NewEventService(repositories.NewEventRepository(db), log),
		Attendance:    services.NewAttendanceService(db),
		Finance:       services.NewFinanceService(db),
		Dashboard:     dashboard,
		Reports:       services.NewReportService(dashboard, services.ChromeRenderer{Timeout: cfg.ChromeTimeout}, log),
		Uploads:       uploads,
		Hub:           hub,
		Log:           log,
		SecureCookie:  cfg.IsProduction(),
	}
	return h, notifier, nil
}
