package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harentsoaR/mediflow-portal/internal/access"
	"github.com/harentsoaR/mediflow-portal/internal/config"
	"github.com/harentsoaR/mediflow-portal/internal/directory"
	"github.com/harentsoaR/mediflow-portal/internal/handlers"
	"github.com/harentsoaR/mediflow-portal/internal/logger"
	"github.com/harentsoaR/mediflow-portal/internal/metrics"
	"github.com/harentsoaR/mediflow-portal/internal/mockdata"
	"github.com/harentsoaR/mediflow-portal/internal/models"
	"github.com/harentsoaR/mediflow-portal/internal/services"
	"github.com/harentsoaR/mediflow-portal/internal/session"
	"github.com/harentsoaR/mediflow-portal/internal/storage"
)

// sessionBackend persists the session blob and the emergency audit trail.
type sessionBackend interface {
	session.Persister
	services.AuditJournal
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("info").WithError(err).Fatal("Invalid configuration")
	}
	log := logger.New(cfg.LogLevel)
	log.WithComponent("main").WithFields(map[string]interface{}{
		"port":          cfg.Port,
		"session_db":    cfg.SessionDBPath,
		"mongo":         cfg.MongoURI != "",
		"signed_blob":   cfg.SessionSecret != "",
		"auth_latency":  cfg.AuthLatency.String(),
		"notice_buffer": cfg.NoticeBuffer,
	}).Info("Starting MediFlow portal")

	// --- Session storage ---
	var backend sessionBackend
	if cfg.SessionDBPath == config.InMemory {
		backend = storage.NewMemory()
	} else {
		db, err := storage.OpenLevelDB(cfg.SessionDBPath)
		if err != nil {
			log.WithError(err).Fatal("Failed to open session database")
		}
		defer db.Close()
		backend = db
	}

	// --- Credential directory ---
	dir, disconnect, err := openDirectory(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to open credential directory")
	}
	defer disconnect()

	// --- Metrics ---
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// --- Services ---
	notificationSvc := services.NewNotificationService(log, cfg.NoticeBuffer)
	auditSvc := services.NewAuditService(backend, log)

	opts := []session.Option{session.WithLatency(cfg.AuthLatency), session.WithMetrics(m)}
	if cfg.SessionSecret != "" {
		opts = append(opts, session.WithCodec(session.SignedCodec{Secret: []byte(cfg.SessionSecret)}))
	}
	store := session.NewStore(dir, backend, notificationSvc, log, opts...)
	go store.Restore(context.Background())

	roles := make([]models.Role, 0, len(cfg.EmergencyRoles))
	for _, r := range cfg.EmergencyRoles {
		role, err := models.ParseRole(r)
		if err != nil {
			log.WithError(err).Fatal("Invalid EMERGENCY_ROLES")
		}
		roles = append(roles, role)
	}
	policy, err := access.NewPolicy(roles, cfg.EmergencyMessage)
	if err != nil {
		log.WithError(err).Fatal("Invalid emergency policy")
	}
	gate := access.NewGate(policy, notificationSvc, auditSvc, log, m)

	// --- Handlers and routes ---
	h := handlers.NewHandler(store, gate, mockdata.NewRepository(), notificationSvc, auditSvc, log, cfg.AuthTimeout)
	gin.SetMode(gin.ReleaseMode)
	r := handlers.Router(h, access.DefaultRules(), cfg.CORSOrigins, reg)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		log.WithComponent("main").Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server shutdown failed")
	}
	log.WithComponent("main").Info("Server stopped")
}

// openDirectory connects to MongoDB when MONGO_URI is set and falls back to
// the in-memory mock accounts otherwise.
func openDirectory(cfg *config.Config, log *logger.Logger) (directory.Directory, func(), error) {
	if cfg.MongoURI == "" {
		dir, err := directory.NewMemory(directory.MockAccounts())
		return dir, func() {}, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, nil, err
	}
	disconnect := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(ctx)
	}
	if err := client.Ping(ctx, nil); err != nil {
		disconnect()
		return nil, nil, err
	}

	dir := directory.NewMongo(client.Database(cfg.MongoDatabase))
	if err := dir.Init(ctx, directory.MockAccounts()); err != nil {
		disconnect()
		return nil, nil, err
	}
	log.WithComponent("main").Info("Successfully connected to MongoDB")
	return dir, disconnect, nil
}
