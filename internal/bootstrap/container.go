package bootstrap

import (
	"context"
	"fmt"
	"time"

	"tradie-recovery-be/internal/config"
	"tradie-recovery-be/internal/controller"
	"tradie-recovery-be/internal/handler"
	"tradie-recovery-be/internal/pkg/logger"
	"tradie-recovery-be/internal/pkg/mailer"
	"tradie-recovery-be/internal/pkg/serverutils"
	"tradie-recovery-be/internal/repository/implementation"
	"tradie-recovery-be/internal/repository/unitofwork"
	"tradie-recovery-be/internal/service"
	"tradie-recovery-be/internal/websocket"
	"tradie-recovery-be/pkg/events"
	"tradie-recovery-be/pkg/llm"
	"tradie-recovery-be/pkg/llm/factory"
	pktNats "tradie-recovery-be/pkg/nats"
	"tradie-recovery-be/pkg/payment"
	"tradie-recovery-be/pkg/session"
	"tradie-recovery-be/pkg/storage"
	"tradie-recovery-be/pkg/strategy"
	"tradie-recovery-be/pkg/tagging"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const oauthStateTTL = 10 * time.Minute

type Container struct {
	// Controllers
	AuthController        controller.IAuthController
	UserController        controller.IUserController
	AdminController       controller.IAdminController
	ApplicationController controller.IApplicationController
	CaseController        controller.ICaseController
	ContractController    controller.IContractController
	DocumentController    controller.IDocumentController
	PaymentController     controller.IPaymentController
	CalendarController    controller.ICalendarController

	// Background Services (Exposed for main.go to run)
	ConsumerService     service.IConsumerService
	NotificationService *service.NotificationService
	TagService          service.ITagService

	// WebSockets & Notification
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub

	Logger         logger.ILogger
	UploadMaxBytes int64

	eventSource service.EventSource
	closers     []func()
}

type options struct {
	logger       logger.ILogger
	sessionStore session.Store
	mailer       mailer.IEmailService
	llmSet       bool
	llm          llm.LLMProvider
	storage      storage.Storage
	gateways     []payment.Gateway
	gatewaysSet  bool
}

type Option func(*options)

func WithLogger(l logger.ILogger) Option {
	return func(o *options) { o.logger = l }
}

// WithSessionStore replaces the Redis-backed store for admin sessions and OAuth state.
func WithSessionStore(s session.Store) Option {
	return func(o *options) { o.sessionStore = s }
}

func WithMailer(m mailer.IEmailService) Option {
	return func(o *options) { o.mailer = m }
}

// WithLLMProvider overrides the configured provider. A nil provider forces fallback content.
func WithLLMProvider(p llm.LLMProvider) Option {
	return func(o *options) {
		o.llm = p
		o.llmSet = true
	}
}

func WithStorage(s storage.Storage) Option {
	return func(o *options) { o.storage = s }
}

func WithPaymentGateways(gws ...payment.Gateway) Option {
	return func(o *options) {
		o.gateways = gws
		o.gatewaysSet = true
	}
}

func NewContainer(db *gorm.DB, cfg *config.Config, opts ...Option) (*Container, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := o.logger
	if sysLogger == nil {
		sysLogger = logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	}
	c := &Container{Logger: sysLogger, UploadMaxBytes: cfg.Storage.UploadMaxBytes}

	emailService := o.mailer
	if emailService == nil {
		emailService = mailer.NewEmailService(
			cfg.SMTP.Host,
			cfg.SMTP.Port,
			cfg.SMTP.Email,
			cfg.SMTP.Password,
			cfg.SMTP.Email,
			cfg.SMTP.SenderName,
			cfg.App.ClientURL,
		)
	}

	// 2. Task queue
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
	c.closers = append(c.closers, func() { _ = pubSub.Close() })
	tasks := service.NewTaskDispatcher(pubSub, sysLogger)

	// 3. Infrastructure
	// Redis
	var rdb *redis.Client
	if o.sessionStore == nil && cfg.App.RedisURL != "" {
		rdb = connectRedis(cfg.App.RedisURL, sysLogger)
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	}
	sessionStore := o.sessionStore
	if sessionStore == nil && rdb != nil {
		sessionStore = session.NewRedisStore(rdb, "tradie:")
	}

	var adminSessions *session.AdminSessions
	var oauthStates *session.OAuthStates
	if sessionStore != nil {
		adminSessions = session.NewAdminSessions(sessionStore, time.Duration(cfg.Auth.AdminSessionTTL)*time.Hour)
		oauthStates = session.NewOAuthStates(sessionStore, oauthStateTTL)
	}

	// NATS, with the in-process bus when no broker is reachable
	var publisher events.Publisher
	notifLogger := logger.NewIsolatedLogger(cfg.App.NotificationLog)
	wsHub := websocket.NewHub(rdb, notifLogger)
	notifRepo := implementation.NewNotificationRepository(db)
	notifService := service.NewNotificationService(notifRepo, uowFactory, wsHub, notifLogger)

	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			sysLogger.Warn("Bootstrap", "NATS publisher unavailable, delivering events in-process", map[string]interface{}{"error": err.Error()})
		} else {
			natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
			if err != nil {
				natsPub.Close()
				sysLogger.Warn("Bootstrap", "NATS subscriber unavailable, delivering events in-process", map[string]interface{}{"error": err.Error()})
			} else {
				publisher = natsPub
				c.eventSource = natsSub
				c.closers = append(c.closers, natsPub.Close, natsSub.Close)
			}
		}
	}
	if publisher == nil {
		bus := events.NewLocalBus(watermill.NewStdLogger(false, false))
		if err := bus.Subscribe(context.Background(), notifService.HandleEvent); err != nil {
			return nil, err
		}
		publisher = bus
		c.closers = append(c.closers, func() { _ = bus.Close() })
	}

	// AI
	provider := o.llm
	if !o.llmSet {
		var err error
		provider, err = factory.NewLLMProvider(factory.Settings{
			Provider:       cfg.Ai.LLMProvider,
			Model:          cfg.Ai.LLMModel,
			OpenAIKey:      cfg.Keys.OpenAI,
			OpenAIBaseURL:  cfg.Ai.OpenAIBaseURL,
			HuggingFaceKey: cfg.Keys.HuggingFace,
			OllamaBaseURL:  cfg.Ai.OllamaBaseURL,
		})
		if err != nil {
			return nil, fmt.Errorf("llm provider: %w", err)
		}
	}
	generator := strategy.NewGenerator(provider, time.Duration(cfg.Ai.TimeoutSeconds)*time.Second)
	if generator.Enabled() {
		sysLogger.Info("Bootstrap", "AI generation enabled", map[string]interface{}{"provider": cfg.Ai.LLMProvider, "model": cfg.Ai.LLMModel})
	} else {
		sysLogger.Warn("Bootstrap", "No AI provider configured, serving fallback content", nil)
	}

	// Storage
	store := o.storage
	if store == nil {
		var err error
		store, err = newStorage(cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("storage: %w", err)
		}
	}

	// Payments
	gateways := o.gateways
	if !o.gatewaysSet {
		gateways = []payment.Gateway{
			payment.NewStripeGateway(cfg.Payment.StripeSecretKey, cfg.Payment.StripeWebhookSecret, cfg.Payment.StripeSubscriptionPrice),
			payment.NewMidtransGateway(cfg.Payment.MidtransServerKey, cfg.Payment.MidtransIsProduction, cfg.App.ClientURL+"/payments/finish"),
		}
	}

	// 4. Services
	issuer := serverutils.NewTokenIssuer(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)
	authService := service.NewAuthService(uowFactory, issuer, adminSessions, tasks, sysLogger)
	userService := service.NewUserService(uowFactory)
	applicationService := service.NewApplicationService(uowFactory, generator, publisher, tasks, sysLogger)
	caseService := service.NewCaseService(uowFactory, generator, publisher, tasks, sysLogger)
	contractService := service.NewContractService(uowFactory, generator, sysLogger)
	strategyService := service.NewStrategyService(uowFactory, generator, store, publisher, tasks, sysLogger)
	documentService := service.NewDocumentService(uowFactory, store, cfg.Storage.UploadMaxBytes, sysLogger)
	tagService := service.NewTagService(uowFactory, tagging.NewSuggester(generator), store, sysLogger)
	paymentService := service.NewPaymentService(uowFactory, gateways, service.PaymentSettings{
		Provider:               cfg.Payment.Provider,
		Currency:               cfg.Payment.Currency,
		StrategyPackPriceCents: cfg.Payment.StrategyPackPriceCents,
	}, publisher, sysLogger)
	calendarService := service.NewCalendarService(uowFactory, oauthStates, service.CalendarSettings{
		Google: service.OAuthClient{
			ClientID:     cfg.Calendar.GoogleClientID,
			ClientSecret: cfg.Calendar.GoogleClientSecret,
			RedirectURL:  cfg.Calendar.GoogleRedirectURL,
		},
		Outlook: service.OAuthClient{
			ClientID:     cfg.Calendar.OutlookClientID,
			ClientSecret: cfg.Calendar.OutlookClientSecret,
			RedirectURL:  cfg.Calendar.OutlookRedirectURL,
		},
	}, sysLogger)
	adminService := service.NewAdminService(uowFactory, sysLogger)

	c.ConsumerService = service.NewConsumerService(pubSub, uowFactory, emailService, caseService, sysLogger)
	c.NotificationService = notifService
	c.TagService = tagService

	// 5. HTTP
	verifier, err := newVerifier(cfg.Auth)
	if err != nil {
		return nil, err
	}
	var checker serverutils.SessionChecker
	if adminSessions != nil {
		checker = adminSessions
	}
	auth := serverutils.NewAuthenticator(verifier, authService, checker)

	c.AuthController = controller.NewAuthController(authService, auth)
	c.UserController = controller.NewUserController(userService, auth)
	c.AdminController = controller.NewAdminController(adminService, auth)
	c.ApplicationController = controller.NewApplicationController(applicationService, auth)
	c.CaseController = controller.NewCaseController(caseService, strategyService, auth)
	c.ContractController = controller.NewContractController(contractService, auth)
	c.DocumentController = controller.NewDocumentController(documentService, tagService, auth)
	c.PaymentController = controller.NewPaymentController(paymentService, auth)
	c.CalendarController = controller.NewCalendarController(calendarService, auth)

	c.WebSocketHub = wsHub
	c.NotificationHandler = handler.NewNotificationHandler(notifService, wsHub, auth, notifLogger)

	return c, nil
}

// Seed inserts the notification type registry and the tag vocabulary.
func (c *Container) Seed(ctx context.Context) error {
	if err := c.NotificationService.SeedTypes(ctx); err != nil {
		return fmt.Errorf("seed notification types: %w", err)
	}
	if _, err := c.TagService.Seed(ctx); err != nil {
		return fmt.Errorf("seed tags: %w", err)
	}
	return nil
}

// Start runs the websocket hub, the task consumer and the broker subscription.
func (c *Container) Start(ctx context.Context) error {
	go c.WebSocketHub.Run(ctx)

	if err := c.ConsumerService.Consume(ctx); err != nil {
		return err
	}
	if c.eventSource != nil {
		if err := c.NotificationService.Start(c.eventSource); err != nil {
			return err
		}
	}
	return nil
}

func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}

func connectRedis(url string, log logger.ILogger) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Warn("Bootstrap", "Failed to parse Redis URL, using it as an address", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{Addr: url}
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	// go-redis reconnects on demand, so a failed ping is not fatal
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("Bootstrap", "Failed to connect to Redis", map[string]interface{}{"error": err.Error()})
	}
	return rdb
}

func newStorage(cfg config.StorageConfig) (storage.Storage, error) {
	switch cfg.Driver {
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("S3_BUCKET must be set for the s3 driver")
		}
		return storage.NewS3StorageFromEnv(context.Background(), cfg.AWSRegion, cfg.S3Bucket)
	case "", "local":
		return storage.NewLocalStorage(cfg.LocalDir)
	}
	return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
}

func newVerifier(cfg config.AuthConfig) (serverutils.TokenVerifier, error) {
	chain := serverutils.ChainVerifier{}
	if cfg.JWTSecret != "" {
		chain = append(chain, serverutils.NewHMACVerifier(cfg.JWTSecret))
	}
	if cfg.JWKSURL != "" {
		jwks, err := serverutils.NewJWKSVerifier(cfg.JWKSURL, cfg.Issuer, cfg.Audience)
		if err != nil {
			return nil, err
		}
		chain = append(chain, jwks)
	}
	if len(chain) == 0 {
		return nil, fmt.Errorf("JWT_SECRET or AUTH_JWKS_URL must be set")
	}
	return chain, nil
}
