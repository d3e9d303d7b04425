package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	common_api "npo-crm/internal/common/api"
	common_models "npo-crm/internal/common/models"
	"npo-crm/internal/config"
	"npo-crm/internal/database"
	"npo-crm/internal/features/account"
	"npo-crm/internal/features/audit"
	"npo-crm/internal/features/casework"
	"npo-crm/internal/features/catalog"
	"npo-crm/internal/features/contact"
	"npo-crm/internal/features/dashboard"
	"npo-crm/internal/features/donation"
	"npo-crm/internal/features/meeting"
	"npo-crm/internal/features/notify"
	"npo-crm/internal/features/report"
	"npo-crm/internal/features/settings"
	"npo-crm/internal/features/system"
	"npo-crm/internal/features/user"
	"npo-crm/internal/features/volunteer"
	"npo-crm/internal/features/website"
	"npo-crm/internal/logger"
	"npo-crm/internal/middleware"
	"npo-crm/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates the Fiber app with the shared error handler.
// Typed AppErrors keep their status and code; anything unexpected is
// logged with the request's correlation id and surfaces as a plain 500.
func NewFiberServer(log *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var appErr *common_models.AppError
			if errors.As(err, &appErr) {
				return common_api.Error(c, appErr)
			}
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
			}
			log.Error("unhandled request error",
				zap.String("request_id", middleware.RequestID(c)),
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Internal server error",
			})
		},
	})

	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.CORSMiddleware())

	return app
}

// AsRoute tags a constructor so Fx collects its result into the "routes"
// group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),
		fx.ResultTags(`group:"routes"`),
	)
}

// RegisterAllRoutes calls Setup() on every collected route.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route) {
	for _, route := range routes {
		route.Setup(app)
	}
	log.Printf("Registered %d route groups\n", len(routes))
}

var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`),
)

// StartServer runs Fiber in a goroutine and shuts it down with the app.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				if err := app.Listen(port); err != nil {
					log.Fatalf("Server failed to start: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.Shutdown()
		},
	})
}

func maxPageSize(cfg *config.Config) int {
	return cfg.MaxPageSize
}

func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			database.NewDatabase,
			logger.NewLogger,
			NewFiberServer,
			catalog.NewCatalog,
			middleware.NewAuthenticator,
			maxPageSize,

			// Identity and scope resolution
			user.NewUserRepository,
			user.NewScopeService,
			user.NewUserService,
			user.NewUserController,

			// Interface adapters
			func(s *user.ScopeService) middleware.ScopeResolver { return s },
			func(s *user.ScopeService) report.OwnerScopeResolver { return s },
			func(r user.UserRepository) audit.UserFinder { return r },

			// Audit trail
			audit.NewAuditRepository,
			audit.NewAuditService,
			audit.NewAuditController,

			// Event hub
			notify.NewHub,
			notify.NewWebSocketController,

			// Report engine
			report.NewValidator,
			report.NewBuilder,
			report.NewQueryRunner,
			report.NewReportService,
			report.NewSavedReportRepository,
			report.NewSavedReportService,
			report.NewScheduleRepository,
			report.NewScheduleService,
			report.NewReportController,

			// CRM entities
			contact.NewContactRepository,
			contact.NewContactService,
			contact.NewContactController,
			account.NewAccountRepository,
			account.NewAccountService,
			account.NewAccountController,
			donation.NewDonationRepository,
			donation.NewDonationService,
			donation.NewDonationController,
			volunteer.NewVolunteerRepository,
			volunteer.NewVolunteerService,
			volunteer.NewVolunteerController,
			casework.NewCaseRepository,
			casework.NewCaseService,
			casework.NewCaseController,
			meeting.NewMeetingRepository,
			meeting.NewMeetingService,
			meeting.NewMeetingController,

			// Dashboard, website, settings
			dashboard.NewDashboardRepository,
			dashboard.NewDashboardService,
			dashboard.NewDashboardController,
			website.NewPageRepository,
			website.NewPageService,
			website.NewPageController,
			settings.NewSettingsRepository,
			settings.NewSettingsService,
			settings.NewSettingsController,

			// API routes
			AsRoute(contact.NewContactApi),
			AsRoute(account.NewAccountApi),
			AsRoute(donation.NewDonationApi),
			AsRoute(volunteer.NewVolunteerApi),
			AsRoute(casework.NewCaseApi),
			AsRoute(meeting.NewMeetingApi),
			AsRoute(report.NewReportApi),
			AsRoute(user.NewUserApi),
			AsRoute(audit.NewAuditApi),
			AsRoute(dashboard.NewDashboardApi),
			AsRoute(website.NewPageApi),
			AsRoute(settings.NewSettingsApi),
			AsRoute(notify.NewWebSocketApi),
			AsRoute(system.NewHealthApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			func(cfg *config.Config) { utils.SetSecret(cfg.JWTSecret) },
			RegisterAllRoutesWithAnnotation,
			StartServer,
			func(lc fx.Lifecycle, schedules report.ScheduleService) {
				lc.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						return schedules.InitializeScheduler(ctx)
					},
					OnStop: func(ctx context.Context) error {
						return schedules.StopScheduler()
					},
				})
			},
		),
	)

	app.Run()
}
