// Package httpapi exposes the ledger over REST/JSON.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/hisabkitab/internal/logging"
	"github.com/dmitrijs2005/hisabkitab/internal/server/config"
	"github.com/dmitrijs2005/hisabkitab/internal/server/metrics"
	"github.com/dmitrijs2005/hisabkitab/internal/server/models"
	"github.com/dmitrijs2005/hisabkitab/internal/server/services"
)

type UserService interface {
	SendRegistrationOTP(ctx context.Context, name, email, password string) error
	CompleteRegistration(ctx context.Context, email, code string) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	GetProfile(ctx context.Context, userID string) (*models.User, error)
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

type PasswordResetService interface {
	SendOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, code string) error
	Reset(ctx context.Context, email, code, newPassword string) error
}

type ProfileImageService interface {
	Upload(ctx context.Context, userID string, img services.ProfileImage) (string, *models.User, error)
}

type TransactionService interface {
	List(ctx context.Context, userID string) ([]*models.Transaction, error)
	Get(ctx context.Context, userID, id string) (*models.Transaction, error)
	Create(ctx context.Context, userID string, in services.TransactionInput) (*models.Transaction, error)
	Update(ctx context.Context, userID, id string, in services.TransactionInput) (*models.Transaction, error)
	Delete(ctx context.Context, userID, id string) (*models.Transaction, error)
	MonthlySummary(ctx context.Context, userID string) ([]models.MonthlySummary, error)
}

type TransactionLogService interface {
	ListForUser(ctx context.Context, userID string) ([]*models.TransactionLog, error)
	ListForTransaction(ctx context.Context, userID, transactionID string) ([]*models.TransactionLog, error)
}

type ExpenseService interface {
	List(ctx context.Context, userID string) ([]*models.Expense, error)
	Create(ctx context.Context, userID string, in services.ExpenseInput) (*models.Expense, error)
	Update(ctx context.Context, userID, id string, in services.ExpenseInput) (*models.Expense, error)
	Delete(ctx context.Context, userID, id string) (*models.Expense, error)
}

type FriendService interface {
	List(ctx context.Context, userID string) ([]string, error)
	Add(ctx context.Context, userID, name string) ([]string, error)
	Remove(ctx context.Context, userID, name string) ([]string, error)
	Clear(ctx context.Context, userID string) ([]string, error)
}

// Services groups the business services the handlers call into.
type Services struct {
	Users           UserService
	PasswordReset   PasswordResetService
	ProfileImages   ProfileImageService
	Transactions    TransactionService
	TransactionLogs TransactionLogService
	Expenses        ExpenseService
	Friends         FriendService
}

type Server struct {
	address      string
	prefix       string
	cookieSecure bool
	maxUpload    int64
	origins      corsPolicy

	svc     Services
	metrics *metrics.Metrics
	logger  logging.Logger

	handler http.Handler
}

func NewServer(cfg *config.Config, l logging.Logger, m *metrics.Metrics, svc Services) *Server {
	s := &Server{
		address:      cfg.EndpointAddrHTTP,
		prefix:       cfg.APIPrefix,
		cookieSecure: cfg.CookieSecure,
		maxUpload:    cfg.MaxUploadSize,
		origins:      newCORSPolicy(cfg.CORSOrigins),
		svc:          svc,
		metrics:      m,
		logger:       l.With("module", "http_server"),
	}
	s.handler = s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:      s.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(shutdownCtx, "shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
