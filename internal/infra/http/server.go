package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"docvault/internal/config"
	"docvault/internal/infra/alertmem"
	"docvault/internal/infra/alertredis"
	"docvault/internal/infra/auditmem"
	"docvault/internal/infra/auth/rbac"
	"docvault/internal/infra/auth/token"
	"docvault/internal/infra/awsclient"
	"docvault/internal/infra/db"
	"docvault/internal/infra/docmem"
	"docvault/internal/infra/fingerprint"
	"docvault/internal/infra/keys/gcpsm"
	"docvault/internal/infra/keys/soft"
	"docvault/internal/infra/keys/vault"
	"docvault/internal/infra/notify"
	"docvault/internal/infra/objectstore"
	"docvault/internal/infra/signature"
	"docvault/internal/infra/usermem"
	"docvault/internal/usecase"
)

type Server struct {
	cfg    config.Config
	store  *db.Store
	r      *gin.Engine
	logger *zap.Logger

	registerUC *usecase.RegisterDocument
	verifyUC   *usecase.VerifyDocument
	documents  *usecase.DocumentService
	users      *usecase.UserService
	alerts     *usecase.AlertService
	auditQ     *usecase.AuditQuery

	userStore  usecase.UserRepository
	authorizer *rbac.Authorizer
	tokens     *token.Issuer

	initErr error
}

func NewServer(cfg config.Config, store *db.Store, logger *zap.Logger) *Server {
	r := gin.New()
	r.Use(gin.Recovery())
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{cfg: cfg, store: store, r: r, logger: logger}
	s.initDeps()
	s.routes()
	return s
}

// ServerDeps lets tests assemble a server from fakes.
type ServerDeps struct {
	Register  *usecase.RegisterDocument
	Verify    *usecase.VerifyDocument
	Documents *usecase.DocumentService
	Users     *usecase.UserService
	Alerts    *usecase.AlertService
	Audit     *usecase.AuditQuery
	UserStore usecase.UserRepository
	Tokens    *token.Issuer
}

func NewServerWithDeps(cfg config.Config, deps ServerDeps) *Server {
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{
		cfg:        cfg,
		r:          r,
		logger:     zap.NewNop(),
		registerUC: deps.Register,
		verifyUC:   deps.Verify,
		documents:  deps.Documents,
		users:      deps.Users,
		alerts:     deps.Alerts,
		auditQ:     deps.Audit,
		userStore:  deps.UserStore,
		tokens:     deps.Tokens,
		authorizer: rbac.NewAuthorizer(),
	}
	s.routes()
	return s
}

func (s *Server) initDeps() {
	s.authorizer = rbac.NewAuthorizer()

	issuer, err := token.NewIssuer(s.cfg.JWTSecret, s.cfg.TokenTTL())
	if err != nil {
		s.initErr = err
		return
	}
	s.tokens = issuer

	var (
		documents usecase.DocumentRepository
		users     usecase.UserRepository
		audit     usecase.AuditLog
	)
	if s.store != nil && s.store.DB != nil {
		documents = db.NewDocumentRepository(s.store.DB)
		users = db.NewUserRepository(s.store.DB)
		audit = db.NewAuditEventRepository(s.store.DB)
	} else {
		documents = docmem.New()
		users = usermem.New()
		audit = auditmem.New()
	}
	s.userStore = users

	var mailbox usecase.AlertMailbox
	if s.cfg.RedisAddr != "" {
		redisBox, err := alertredis.New(s.cfg.RedisAddr, s.cfg.RedisPassword, s.cfg.RedisDB)
		if err != nil {
			s.logger.Warn("redis mailbox unavailable, using memory", zap.Error(err))
		} else {
			mailbox = redisBox
		}
	}
	if mailbox == nil {
		mailbox = alertmem.New()
	}

	signatures := s.buildSignatureService()

	var blobs usecase.ObjectStore
	if s.cfg.S3Bucket != "" {
		if client, err := awsclient.NewFromConfig(s.cfg); err != nil {
			s.logger.Warn("s3 store unavailable, using filesystem", zap.Error(err))
		} else if s3Store, err := objectstore.NewS3Store(client, s.cfg.S3Bucket); err == nil {
			blobs = s3Store
		}
	}
	if blobs == nil {
		fsStore, err := objectstore.NewFSStore(s.cfg.BlobDir)
		if err != nil {
			s.initErr = err
			return
		}
		blobs = fsStore
	}

	var notifier usecase.Notifier = notify.NewLogNotifier(s.logger)
	if s.cfg.NotifyWebhookURL != "" {
		if webhook, err := notify.NewWebhookNotifier(s.cfg.NotifyWebhookURL); err == nil {
			notifier = notify.Fanout{notify.NewLogNotifier(s.logger), webhook}
		}
	}

	policy, ok := usecase.ParseAlertPolicy(s.cfg.AlertPolicy)
	if !ok {
		s.logger.Warn("unknown alert policy, defaulting to owner", zap.String("policy", s.cfg.AlertPolicy))
	}

	prints := fingerprint.NewService()
	s.registerUC = &usecase.RegisterDocument{
		Guard:        s.authorizer,
		Fingerprints: prints,
		Signatures:   signatures,
		Registry:     documents,
		Blobs:        blobs,
		Audit:        audit,
		Alerts:       mailbox,
		Logger:       s.logger,
	}
	s.verifyUC = &usecase.VerifyDocument{
		Guard:        s.authorizer,
		Fingerprints: prints,
		Signatures:   signatures,
		Registry:     documents,
		Audit:        audit,
		Alerts:       mailbox,
		Notify:       notifier,
		Policy:       policy,
		Logger:       s.logger,
	}
	s.documents = &usecase.DocumentService{
		Guard:    s.authorizer,
		Registry: documents,
		Blobs:    blobs,
		Alerts:   mailbox,
		Logger:   s.logger,
	}
	s.users = &usecase.UserService{
		Users:     users,
		Guard:     s.authorizer,
		Tokens:    issuer,
		Passwords: token.Hasher{},
		Alerts:    mailbox,
		Logger:    s.logger,
	}
	s.alerts = &usecase.AlertService{Mailbox: mailbox}
	s.auditQ = &usecase.AuditQuery{
		Guard:    s.authorizer,
		Audit:    audit,
		Alerts:   mailbox,
		MaxLimit: s.cfg.AuditQueryLimit,
	}
}

// buildSignatureService picks the signing backend once. The choice is
// recorded on every signature block, never re-probed at verify time.
func (s *Server) buildSignatureService() *signature.Service {
	timeout := s.cfg.SigningTimeout()
	switch s.cfg.SignatureBackend {
	case "echo":
		return signature.NewEchoService(s.logger)
	case "soft":
		return signature.NewService(soft.NewManager(), timeout, s.logger)
	case "vault":
		manager, err := vault.NewManagerFromConfig(s.cfg)
		if err != nil {
			s.logger.Warn("vault signing unavailable, degrading to echo", zap.Error(err))
			return signature.NewEchoService(s.logger)
		}
		return signature.NewService(manager, timeout, s.logger)
	case "gcp":
		manager, err := gcpsm.NewManagerFromConfig(s.cfg)
		if err != nil {
			s.logger.Warn("gcp signing unavailable, degrading to echo", zap.Error(err))
			return signature.NewEchoService(s.logger)
		}
		return signature.NewService(manager, timeout, s.logger)
	default:
		if manager, err := vault.NewManagerFromConfig(s.cfg); err == nil {
			return signature.NewService(manager, timeout, s.logger)
		}
		if manager, err := gcpsm.NewManagerFromConfig(s.cfg); err == nil {
			return signature.NewService(manager, timeout, s.logger)
		}
		return signature.NewService(soft.NewManager(), timeout, s.logger)
	}
}

func (s *Server) routes() {
	s.r.GET("/healthz", func(c *gin.Context) {
		mode := "no-db"
		if s.store != nil && s.store.DB != nil {
			mode = "db"
		}
		secure := false
		if s.registerUC != nil && s.registerUC.Signatures != nil {
			secure = s.registerUC.Signatures.Secure()
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "mode": mode, "secure_signing": secure})
	})

	v1 := s.r.Group("/v1")
	{
		v1.POST("/auth/signup", s.handleSignup)
		v1.POST("/auth/login", s.handleLogin)
		v1.POST("/auth/password", s.handleChangePassword)

		v1.POST("/documents", s.handleRegister)
		v1.GET("/documents", s.handleListDocuments)
		v1.GET("/documents/:name", s.handleGetDocument)
		v1.DELETE("/documents/:name", s.handleDeleteDocument)
		v1.POST("/documents/:name/verify", s.handleVerify)

		v1.GET("/audit-logs", s.handleAuditLogs)
		v1.GET("/audit-logs/export", s.handleAuditExport)

		v1.GET("/alerts", s.handleListAlerts)
		v1.POST("/alerts/:id/read", s.handleMarkAlertRead)
		v1.POST("/alerts/read-all", s.handleMarkAllAlertsRead)
		v1.DELETE("/alerts", s.handleClearAlerts)

		v1.GET("/roles/:role", s.handleDescribeRole)

		v1.POST("/admin/users", s.handleAdminCreateUser)
		v1.PUT("/admin/users/:username/role", s.handleAdminChangeRole)
		v1.DELETE("/admin/users/:username", s.handleAdminDeactivateUser)
	}

	s.r.NoRoute(func(c *gin.Context) {
		writeErrorCode(c, http.StatusNotFound, "NOT_FOUND", "route not found")
	})
}

func (s *Server) Run() error {
	if s.initErr != nil {
		return s.initErr
	}
	return s.r.Run(s.cfg.HTTPAddr)
}
