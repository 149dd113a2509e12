// Package daemon wires the authorization core together: database, services
// and the RPC server.
package daemon

import (
	"fmt"

	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/audit"
	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/authn"
	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/authz"
	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/config"
	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/db/dsn"
	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/rpc"
	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/session"
)

// Daemon is the assembled authorization core.
type Daemon struct {
	cfg *config.Config
	db  *gorm.DB

	Evaluator *authz.Evaluator
	Sessions  *session.Manager
	Auth      *authn.Service
	Recorder  *audit.Recorder

	rpcService *rpc.Service
}

// Start starts the RPC server and blocks until it stops.
func (d *Daemon) Start() error {
	addr := fmt.Sprintf("%s:%d", d.cfg.Server.Host, d.cfg.Server.Port)

	go d.rpcService.WaitShutdown()

	log.Info().Str("addr", addr).Msg("starting rpc server")

	return d.rpcService.Start(addr)
}

// New assembles a Daemon from the configuration: opens the database, migrates
// the schema, seeds defaults and constructs the services.
func New(cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, config.ErrConfigNil
	}

	db, err := OpenDB(cfg)
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	if err := seed(cfg, db); err != nil {
		return nil, err
	}

	d := NewWithDB(cfg, db)

	return d, nil
}

// NewWithDB assembles a Daemon over an already opened database. Used by the
// maintenance commands, which skip migration and seeding.
func NewWithDB(cfg *config.Config, db *gorm.DB) *Daemon {
	recorder := audit.NewRecorder(db, cfg.Audit.OutboxSize)
	sessions := session.NewManager(db, recorder).WithDefaultTimeout(cfg.Session.DefaultTimeoutMinutes)
	evaluator := authz.NewEvaluator(db, recorder, 0)
	auth := authn.NewService(db, sessions, recorder)

	return &Daemon{
		cfg:        cfg,
		db:         db,
		Evaluator:  evaluator,
		Sessions:   sessions,
		Auth:       auth,
		Recorder:   recorder,
		rpcService: rpc.New(cfg, db, evaluator, sessions, auth, recorder),
	}
}

// OpenDB opens the configured database engine.
func OpenDB(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.DB.GormEngine {
	case "postgres":
		dialector = gormpostgres.Open(dsn.Create(cfg))
	default:
		dialector = gormmysql.Open(dsn.Create(cfg))
	}

	return gorm.Open(dialector, &gorm.Config{TranslateError: true})
}

// Close flushes queued audit events.
func (d *Daemon) Close() {
	d.Recorder.Close()
}
