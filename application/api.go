package application

import (
	"net/http"
	"time"

	configs "github.com/digitalogic/catalog/configs"
	"github.com/digitalogic/catalog/internal/audit"
	authPkg "github.com/digitalogic/catalog/internal/auth"
	redisdb "github.com/digitalogic/catalog/internal/database/redis"
	"github.com/digitalogic/catalog/internal/email/smtp"
	"github.com/digitalogic/catalog/internal/pricing"
	"github.com/digitalogic/catalog/internal/products"
	"github.com/digitalogic/catalog/internal/rates"
	"github.com/digitalogic/catalog/internal/scheduler"
	"github.com/digitalogic/catalog/internal/transfer"
	"github.com/digitalogic/catalog/internal/user"
	"github.com/digitalogic/catalog/internal/webhooks"
	"github.com/digitalogic/catalog/pkg/auth"
	"github.com/digitalogic/catalog/pkg/parser"
	"github.com/digitalogic/catalog/pkg/rest"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

type Application struct {
	Config configs.Configs
	Logger *zap.Logger
	DB     *pgxpool.Pool
	Redis  *redisdb.Client
}

func (app *Application) Mount() http.Handler {
	mailer := smtp.New(
		app.Config.SMTPFrom,
		app.Config.SMTPHost,
		app.Config.SMTPUser,
		app.Config.SMTPPass,
		app.Config.SMTPPort,
	)

	e := echo.New()
	e.HTTPErrorHandler = app.CustomErrorHandler
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000"},
		AllowMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderAuthorization,
		},
		AllowCredentials: true,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogLatency:  true,
		LogStatus:   true,
		LogURI:      true,
		LogMethod:   true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			status := v.Status
			if v.Error != nil {
				switch err := v.Error.(type) {
				case *echo.HTTPError:
					status = err.Code
				case *rest.ApiErr:
					status = err.Code
				}
			}

			fields := []zap.Field{
				zap.Duration("latency", v.Latency),
				zap.Int("status", status),
				zap.String("uri", v.URI),
				zap.String("method", v.Method),
			}

			switch {
			case status >= 500:
				app.Logger.Error("request", fields...)
			case status >= 400:
				app.Logger.Warn("request", fields...)
			default:
				app.Logger.Info("request", fields...)
			}
			return nil
		},
	}))

	jwtConfig := echojwt.Config{
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(auth.JWTCustomClaims)
		},
		SigningKey:  []byte(app.Config.JWTSecret),
		TokenLookup: "header:Authorization",
		SuccessHandler: func(c echo.Context) {
			usr := c.Get("user").(*jwt.Token)
			claims := usr.Claims.(*auth.JWTCustomClaims)
			pgUUID, err := parser.PgUUIDFromString(claims.UserID)
			if err != nil {
				_ = c.NoContent(http.StatusUnauthorized)
				return
			}

			user.SetCurrentUser(c, user.CurrentUser{
				ID:         pgUUID,
				Email:      claims.Email,
				Capability: claims.Capability,
			})
		},
	}

	// Repositories
	settingsRepo := rates.NewSettingsRepository(app.DB)
	auditRepo := audit.NewRepository(app.DB)
	productRepo := products.NewRepository(app.DB)
	userRepo := user.NewRepository(app.DB)
	tokenRepo := authPkg.NewTokenRepository(app.Redis.Client)

	// Services
	dispatcher := webhooks.NewDispatcher(webhooks.Config{
		URLs:    app.Config.WebhookURLs,
		Secret:  app.Config.WebhookSecret,
		Timeout: time.Duration(app.Config.WebhookTimeout) * time.Second,
	}, app.Logger)

	auditService := audit.NewService(auditRepo, app.Logger)
	ratesService := rates.NewService(settingsRepo, app.Redis.Client, auditService, app.Logger)
	productService := products.NewService(productRepo, auditService, dispatcher, app.Logger)
	pricingService := pricing.NewService(productRepo, ratesService, auditService, dispatcher, app.Logger)
	transferService := transfer.NewService(productService, auditService, app.Logger)
	userService := user.NewService(userRepo)

	authService := authPkg.NewService(
		userRepo,
		tokenRepo,
		app.Config.JWTSecret,
		app.Config.AccessTokenExp,
		app.Config.RefreshTokenExp,
	)

	// Handlers
	authHandler := authPkg.NewHandler(authService)
	userHandler := user.NewHandler(userService)
	auditHandler := audit.NewHandler(auditService)
	ratesHandler := rates.NewHandler(ratesService, pricingService, dispatcher)
	productHandler := products.NewHandler(productService)
	pricingHandler := pricing.NewHandler(pricingService)
	transferHandler := transfer.NewHandler(transferService)

	// Background jobs
	jobs := scheduler.NewScheduler(auditService, pricingService, app.Logger, mailer, app.Config.AlertRecipients, scheduler.Config{
		PruneCron:        app.Config.PruneCronExpression,
		LogRetentionDays: app.Config.LogRetentionDays,
		RecalcCron:       app.Config.RecalcCronExpression,
	})
	if err := jobs.Start(); err != nil {
		app.Logger.Fatal("failed to start scheduler", zap.Error(err))
	}

	// Public routes
	e.POST("/signup", authHandler.Signup)
	e.POST("/signin", authHandler.Signin)
	e.POST("/refresh", authHandler.Refresh)

	// Protected routes (JWT + catalog capability required)
	protected := e.Group("")
	protected.Use(echojwt.WithConfig(jwtConfig))
	protected.Use(authPkg.RequireCapability(auth.CapabilityManageCatalog))
	protected.Use(authPkg.WithRequestInfo())

	protected.POST("/logout", authHandler.Logout)
	protected.POST("/logout-all", authHandler.LogoutAll)
	protected.GET("/me", userHandler.GetMe)
	protected.PUT("/user", userHandler.Update)

	protected.GET("/currency", ratesHandler.GetRates)
	protected.POST("/currency", ratesHandler.UpdateRates)

	protected.GET("/products", productHandler.GetProducts)
	protected.GET("/products/count", productHandler.GetProductCount)
	protected.GET("/products/sku/:sku", productHandler.GetProductBySKU)
	protected.PUT("/products/sku/:sku", productHandler.UpdateProductBySKU)
	protected.POST("/products/batch", productHandler.BatchUpdate)
	protected.GET("/products/:id", productHandler.GetProduct)
	protected.PUT("/products/:id", productHandler.UpdateProduct)
	protected.GET("/products/:id/metadata", productHandler.GetMetadata)

	protected.POST("/pricing/recalculate", pricingHandler.Recalculate)

	protected.GET("/export", transferHandler.Export)
	protected.POST("/import", transferHandler.Import)

	protected.GET("/logs", auditHandler.GetLogs)

	return e
}

func (app *Application) Run(h http.Handler) error {
	srv := &http.Server{
		Addr:         app.Config.WebServerPort,
		Handler:      h,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	app.Logger.Info("server started", zap.String("addr", app.Config.WebServerPort))

	return srv.ListenAndServe()
}
