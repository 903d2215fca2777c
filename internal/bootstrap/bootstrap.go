package bootstrap

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/hertz-contrib/monitor-prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"bookwall/biz/dal/pgdal"
	libraryHandler "bookwall/biz/handler/library"
	"bookwall/biz/repo/cachedrepo"
	"bookwall/biz/repo/librepo"
	"bookwall/biz/repo/redisrepo"
	"bookwall/biz/service"
	"bookwall/infrastructure/database"
	"bookwall/infrastructure/rabbitmq"
	"bookwall/pkg/cache"
	"bookwall/pkg/config"
)

// App 持有初始化完成的服务器和需要在退出时释放的资源。
type App struct {
	Server    *server.Hertz
	Logger    *zap.Logger
	DB        *bun.DB
	Redis     *redis.Client
	Publisher *rabbitmq.Publisher
	Consumer  *rabbitmq.Consumer
}

// Init 执行所有应用程序的初始化步骤。
func Init(configPath string) (*App, error) {
	// 1. 加载配置
	cfg, err := config.InitConfig(configPath)
	if err != nil {
		// logger 初始化前只能用标准 log
		log.Printf("Error: 加载配置失败: %v", err)
		return nil, fmt.Errorf("加载配置失败: %w", err)
	}

	// 2. 初始化 Zap Logger
	logger := InitLogger(cfg.Logging)
	logger.Info("配置加载完成", zap.String("path", configPath))

	// 3. 初始化存储连接
	db, err := database.InitPostgres(cfg.Database.Postgres, logger)
	if err != nil {
		return nil, fmt.Errorf("初始化 PostgreSQL 失败: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := database.ApplySchemaIfNeeded(ctx, db, logger); err != nil {
		return nil, fmt.Errorf("应用数据库 schema 失败: %w", err)
	}

	redisClient, err := database.InitRedis(cfg.Database.Redis, logger)
	if err != nil {
		return nil, fmt.Errorf("初始化 Redis 失败: %w", err)
	}

	// 4. 初始化缓存 Store
	store, err := cache.NewRedisStore(redisClient, cfg.Cache.Prefix, cfg.Cache.EstimatedKeys, cfg.Cache.FpRate)
	if err != nil {
		return nil, fmt.Errorf("创建 Redis Store 失败: %w", err)
	}
	logger.Info("缓存 Store 初始化完成")

	// 5. 初始化仓库（缓存实现 + 权威实现 + 协调器）
	repos := InitRepositories(logger, db, store, cfg.Cache.TTL)
	logger.Info("Repositories 初始化完成")

	// 6. 初始化 RabbitMQ（可选）
	app := &App{Logger: logger, DB: db, Redis: redisClient}
	var publisher service.LendingEventPublisher
	if cfg.RabbitMQ.Enabled {
		pub, err := rabbitmq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, logger)
		if err != nil {
			return nil, fmt.Errorf("初始化 RabbitMQ Publisher 失败: %w", err)
		}
		app.Publisher = pub
		publisher = pub

		consumer, err := rabbitmq.NewConsumer(
			cfg.RabbitMQ.URL,
			rabbitmq.NewInvalidationHandler(store, logger),
			rabbitmq.ConsumerOptions{
				ExchangeName: cfg.RabbitMQ.Exchange,
				QueueName:    cfg.RabbitMQ.Queue,
				RoutingKeys: []string{
					rabbitmq.RoutingKeyLendingCreated,
					rabbitmq.RoutingKeyLendingReturned,
				},
			},
			logger,
		)
		if err != nil {
			return nil, fmt.Errorf("初始化 RabbitMQ Consumer 失败: %w", err)
		}
		app.Consumer = consumer
		logger.Info("RabbitMQ 初始化完成", zap.String("exchange", cfg.RabbitMQ.Exchange))
	} else {
		logger.Info("RabbitMQ 已禁用，借阅事件不会发布")
	}

	// 7. 初始化 Service 并注入 Handler
	librarySvc := service.NewLibraryService(
		repos.Authors, repos.Books, repos.Genres, repos.Readers, repos.Lendings,
		publisher, cfg.Lending, logger,
	)
	libraryHandler.SetLibraryService(librarySvc, logger)
	logger.Info("Service 初始化并注入 Handler 完成")

	// 8. 初始化 Hertz 服务器
	h := server.New(
		server.WithHostPorts(cfg.Server.Address),
		server.WithTracer(prometheus.NewServerTracer(":9091", "/metrics")),
	)
	logger.Info("Hertz 服务器实例创建完成", zap.String("address", cfg.Server.Address))

	app.Server = h
	return app, nil
}

// InitLogger 根据配置的级别创建 zap logger。
func InitLogger(cfg config.LoggingConfig) *zap.Logger {
	logLevel := zapcore.InfoLevel
	switch cfg.Level {
	case "debug":
		logLevel = zapcore.DebugLevel
	case "info":
		logLevel = zapcore.InfoLevel
	case "warn":
		logLevel = zapcore.WarnLevel
	case "error":
		logLevel = zapcore.ErrorLevel
	default:
		log.Printf("Warning: 无效的日志级别 '%s'，将使用 'info'", cfg.Level)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(log.Default().Writer()),
		logLevel,
	)
	return zap.New(core, zap.AddCaller())
}

// Repositories 是五个实体的缓存协调仓库集合。
type Repositories struct {
	Authors  librepo.AuthorRepository
	Books    librepo.BookRepository
	Genres   librepo.GenreRepository
	Readers  librepo.ReaderRepository
	Lendings librepo.LendingRepository
}

// InitRepositories 组装每个实体的三层仓库：
// redisrepo（缓存）+ pgdal（权威）→ cachedrepo（协调器）。
func InitRepositories(logger *zap.Logger, db *bun.DB, store cache.Store, ttl config.CacheTTLConfig) *Repositories {
	authorTTL := time.Duration(ttl.Author) * time.Second
	bookTTL := time.Duration(ttl.Book) * time.Second
	genreTTL := time.Duration(ttl.Genre) * time.Second
	readerTTL := time.Duration(ttl.Reader) * time.Second
	lendingTTL := time.Duration(ttl.Lending) * time.Second

	return &Repositories{
		Authors: cachedrepo.NewAuthorRepository(
			redisrepo.NewAuthorRepository(store, authorTTL, logger),
			pgdal.NewAuthorRepository(db, logger),
			logger,
		),
		Books: cachedrepo.NewBookRepository(
			redisrepo.NewBookRepository(store, bookTTL, logger),
			pgdal.NewBookRepository(db, logger),
			logger,
		),
		Genres: cachedrepo.NewGenreRepository(
			redisrepo.NewGenreRepository(store, genreTTL, logger),
			pgdal.NewGenreRepository(db, logger),
			logger,
		),
		Readers: cachedrepo.NewReaderRepository(
			redisrepo.NewReaderRepository(store, readerTTL, logger),
			pgdal.NewReaderRepository(db, logger),
			logger,
		),
		Lendings: cachedrepo.NewLendingRepository(
			redisrepo.NewLendingRepository(store, lendingTTL, logger),
			pgdal.NewLendingRepository(db, logger),
			logger,
		),
	}
}

// Shutdown 释放 App 持有的全部资源。
func (a *App) Shutdown() {
	if a.Consumer != nil {
		if err := a.Consumer.Shutdown(); err != nil {
			a.Logger.Error("关闭 RabbitMQ Consumer 失败", zap.Error(err))
		}
	}
	if a.Publisher != nil {
		a.Publisher.Close()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Logger.Error("关闭 Redis 连接失败", zap.Error(err))
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Logger.Error("关闭 PostgreSQL 连接失败", zap.Error(err))
		}
	}
	a.Logger.Sync()
}
