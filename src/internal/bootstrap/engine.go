package bootstrap

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	apployalty "github.com/jackyeh168/shop_loyalty/src/internal/application/loyalty"
	"github.com/jackyeh168/shop_loyalty/src/internal/domain/loyalty"
	"github.com/jackyeh168/shop_loyalty/src/internal/infrastructure/config"
	"github.com/jackyeh168/shop_loyalty/src/internal/infrastructure/observability"
	"github.com/jackyeh168/shop_loyalty/src/internal/infrastructure/persistence"
	"github.com/jackyeh168/shop_loyalty/src/internal/infrastructure/session"
)

// Options Engine 的可選協作者
type Options struct {
	// Logger 為 nil 時依 AppConfig.Log 建立
	Logger *zap.Logger
	// Registerer 為 nil 時指標不註冊
	Registerer prometheus.Registerer
	// Categories 宿主的商品分類查詢，可為 nil
	Categories loyalty.CategoryResolver
}

// Engine 組裝完成的會員積分引擎
type Engine struct {
	Hooks        *apployalty.Hooks
	Ledger       *apployalty.LedgerService
	Cart         *apployalty.CartService
	MemberStatus *apployalty.GetMemberStatusUseCase
	Snapshots    *session.MemorySnapshotStore
	Metrics      *observability.LedgerMetrics
	Logger       *zap.Logger

	// ConfigSource 啟動時選定的設定來源
	ConfigSource config.ProviderSource

	db *gorm.DB
}

// NewEngine 依設定組裝所有元件
func NewEngine(cfg *config.AppConfig, opts Options) (*Engine, error) {
	if cfg == nil {
		cfg = config.DefaultAppConfig()
	}

	logger := opts.Logger
	if logger == nil {
		var err error
		logger, err = observability.NewLogger(cfg.Log.Level, cfg.Log.Development)
		if err != nil {
			return nil, err
		}
	}

	db, err := openDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	metrics, err := observability.NewLedgerMetrics(opts.Registerer)
	if err != nil {
		closeDatabase(db)
		return nil, fmt.Errorf("registering metrics: %w", err)
	}

	provider, source := config.ResolveProvider(cfg.Loyalty)
	logger.Info("loyalty config source resolved", zap.String("source", string(source)))

	snapshots := session.NewMemorySnapshotStore(cfg.Session.TTL.Duration, nil)
	accounts := persistence.NewMemberAccountRepository(db)
	ledgerEntries := persistence.NewLedgerEntryRepository(db)

	ledger := apployalty.NewLedgerService(apployalty.LedgerDependencies{
		Accounts:  accounts,
		Orders:    persistence.NewOrderRecordRepository(db),
		Ledger:    ledgerEntries,
		Snapshots: snapshots,
		TxManager: persistence.NewGORMTransactionManager(db),
		Config:    provider,
		Publisher: observability.NewLoggingEventPublisher(logger, metrics),
		Metrics:   metrics,
		Logger:    logger,
	})
	cart := apployalty.NewCartService(ledger, snapshots, provider, opts.Categories, metrics, logger)

	return &Engine{
		Hooks:        apployalty.NewHooks(cart, ledger, logger),
		Ledger:       ledger,
		Cart:         cart,
		MemberStatus: apployalty.NewGetMemberStatusUseCase(ledger, ledgerEntries, provider, logger),
		Snapshots:    snapshots,
		Metrics:      metrics,
		Logger:       logger,
		ConfigSource: source,
		db:           db,
	}, nil
}

// Close 關閉資料庫連線並刷新日誌
func (e *Engine) Close() error {
	_ = e.Logger.Sync()
	return closeDatabase(e.db)
}

func openDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(cfg.DSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	if err := persistence.AutoMigrate(db); err != nil {
		closeDatabase(db)
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	return db, nil
}

func closeDatabase(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
