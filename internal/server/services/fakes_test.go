package services

import (
	"context"
	"database/sql"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/hisabkitab/internal/common"
	"github.com/dmitrijs2005/hisabkitab/internal/dbx"
	"github.com/dmitrijs2005/hisabkitab/internal/logging"
	"github.com/dmitrijs2005/hisabkitab/internal/server/auth"
	"github.com/dmitrijs2005/hisabkitab/internal/server/metrics"
	"github.com/dmitrijs2005/hisabkitab/internal/server/models"
	"github.com/dmitrijs2005/hisabkitab/internal/server/repositories/expenses"
	"github.com/dmitrijs2005/hisabkitab/internal/server/repositories/transactionlogs"
	"github.com/dmitrijs2005/hisabkitab/internal/server/repositories/transactions"
	"github.com/dmitrijs2005/hisabkitab/internal/server/repositories/users"
	"github.com/google/uuid"
)

// --- users ---

type fakeUsersRepo struct {
	mu   sync.Mutex
	byID map[string]*models.User

	getErr    error
	upsertErr error
	setOTPErr error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byID: map[string]*models.User{}}
}

func cloneUser(u *models.User) *models.User {
	c := *u
	c.Friends = slices.Clone(u.Friends)
	return &c
}

func (f *fakeUsersRepo) put(u *models.User) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	f.byID[u.ID] = cloneUser(u)
	return u
}

func (f *fakeUsersRepo) findEmail(email string) *models.User {
	for _, u := range f.byID {
		if u.Email == email {
			return u
		}
	}
	return nil
}

func (f *fakeUsersRepo) UpsertPending(_ context.Context, user *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}

	existing := f.findEmail(user.Email)
	if existing != nil && existing.IsVerified {
		return nil, common.ErrorAlreadyExists
	}
	if existing != nil {
		existing.Name, existing.PasswordHash = user.Name, user.PasswordHash
		existing.OTP, existing.OTPExpiry, existing.OTPPurpose = user.OTP, user.OTPExpiry, user.OTPPurpose
		return cloneUser(existing), nil
	}

	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	f.byID[user.ID] = cloneUser(user)
	return cloneUser(user), nil
}

func (f *fakeUsersRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	if u := f.findEmail(email); u != nil {
		return cloneUser(u), nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	if u, ok := f.byID[id]; ok {
		return cloneUser(u), nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) SetOTP(_ context.Context, userID, code string, expiry time.Time, purpose string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setOTPErr != nil {
		return f.setOTPErr
	}
	u, ok := f.byID[userID]
	if !ok {
		return common.ErrorNotFound
	}
	u.OTP, u.OTPExpiry, u.OTPPurpose = code, expiry, purpose
	return nil
}

// consume mirrors the conditional UPDATE: it applies fn only while the
// stored code, purpose and expiry still match.
func (f *fakeUsersRepo) consume(userID, code, purpose string, now time.Time, fn func(*models.User)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[userID]
	if !ok || u.OTP == "" || u.OTP != code || u.OTPPurpose != purpose || u.OTPExpiry.Before(now) {
		return common.ErrorNotFound
	}
	fn(u)
	u.OTP, u.OTPExpiry, u.OTPPurpose = "", time.Time{}, ""
	return nil
}

func (f *fakeUsersRepo) CompleteRegistration(_ context.Context, userID, code, purpose string, now time.Time) error {
	return f.consume(userID, code, purpose, now, func(u *models.User) { u.IsVerified = true })
}

func (f *fakeUsersRepo) ResetPassword(_ context.Context, userID, code, purpose, passwordHash string, now time.Time) error {
	return f.consume(userID, code, purpose, now, func(u *models.User) { u.PasswordHash = passwordHash })
}

func (f *fakeUsersRepo) SetProfileImage(_ context.Context, userID, url string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	u.ProfileImage = url
	return cloneUser(u), nil
}

func (f *fakeUsersRepo) GetFriendsForUpdate(_ context.Context, userID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return slices.Clone(u.Friends), nil
}

func (f *fakeUsersRepo) SetFriends(_ context.Context, userID string, friends []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[userID]
	if !ok {
		return common.ErrorNotFound
	}
	u.Friends = slices.Clone(friends)
	return nil
}

// --- transactions ---

type fakeTransactionsRepo struct {
	mu   sync.Mutex
	byID map[string]*models.Transaction
	seq  int

	createErr error
}

func newFakeTransactionsRepo() *fakeTransactionsRepo {
	return &fakeTransactionsRepo{byID: map[string]*models.Transaction{}}
}

func (f *fakeTransactionsRepo) Create(_ context.Context, tx *models.Transaction) (*models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	c := *tx
	c.ID = uuid.NewString()
	f.seq++
	c.CreatedAt = time.Unix(int64(f.seq), 0)
	f.byID[c.ID] = &c
	out := c
	return &out, nil
}

func (f *fakeTransactionsRepo) GetByID(_ context.Context, userID, id string) (*models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tx, ok := f.byID[id]
	if !ok || tx.UserID != userID {
		return nil, common.ErrorNotFound
	}
	out := *tx
	return &out, nil
}

func (f *fakeTransactionsRepo) ListByUser(_ context.Context, userID string) ([]*models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.Transaction{}
	for _, tx := range f.byID {
		if tx.UserID == userID {
			c := *tx
			out = append(out, &c)
		}
	}
	slices.SortFunc(out, func(a, b *models.Transaction) int { return b.Date.Compare(a.Date.Time) })
	return out, nil
}

func (f *fakeTransactionsRepo) Update(_ context.Context, tx *models.Transaction) (*models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.byID[tx.ID]
	if !ok || stored.UserID != tx.UserID {
		return nil, common.ErrorNotFound
	}
	c := *tx
	f.byID[tx.ID] = &c
	out := c
	return &out, nil
}

func (f *fakeTransactionsRepo) Delete(_ context.Context, userID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	tx, ok := f.byID[id]
	if !ok || tx.UserID != userID {
		return common.ErrorNotFound
	}
	delete(f.byID, id)
	return nil
}

// --- transaction logs ---

type fakeLogsRepo struct {
	mu      sync.Mutex
	entries []*models.TransactionLog

	createErr error
}

func (f *fakeLogsRepo) Create(_ context.Context, e *models.TransactionLog) (*models.TransactionLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	c := *e
	c.ID = uuid.NewString()
	c.Timestamp = time.Now()
	f.entries = append(f.entries, &c)
	out := c
	return &out, nil
}

func (f *fakeLogsRepo) filter(keep func(*models.TransactionLog) bool) []*models.TransactionLog {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.TransactionLog{}
	for i := len(f.entries) - 1; i >= 0; i-- {
		if keep(f.entries[i]) {
			c := *f.entries[i]
			out = append(out, &c)
		}
	}
	return out
}

func (f *fakeLogsRepo) ListByUser(_ context.Context, userID string) ([]*models.TransactionLog, error) {
	return f.filter(func(e *models.TransactionLog) bool { return e.UserID == userID }), nil
}

func (f *fakeLogsRepo) ListByTransaction(_ context.Context, userID, transactionID string) ([]*models.TransactionLog, error) {
	return f.filter(func(e *models.TransactionLog) bool {
		return e.UserID == userID && e.TransactionID == transactionID
	}), nil
}

// --- expenses ---

type fakeExpensesRepo struct {
	mu   sync.Mutex
	byID map[string]*models.Expense
}

func newFakeExpensesRepo() *fakeExpensesRepo {
	return &fakeExpensesRepo{byID: map[string]*models.Expense{}}
}

func (f *fakeExpensesRepo) Create(_ context.Context, e *models.Expense) (*models.Expense, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := *e
	c.ID = uuid.NewString()
	f.byID[c.ID] = &c
	out := c
	return &out, nil
}

func (f *fakeExpensesRepo) GetByID(_ context.Context, userID, id string) (*models.Expense, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.byID[id]
	if !ok || e.UserID != userID {
		return nil, common.ErrorNotFound
	}
	out := *e
	return &out, nil
}

func (f *fakeExpensesRepo) ListByUser(_ context.Context, userID string) ([]*models.Expense, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.Expense{}
	for _, e := range f.byID {
		if e.UserID == userID {
			c := *e
			out = append(out, &c)
		}
	}
	return out, nil
}

func (f *fakeExpensesRepo) Update(_ context.Context, e *models.Expense) (*models.Expense, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.byID[e.ID]
	if !ok || stored.UserID != e.UserID {
		return nil, common.ErrorNotFound
	}
	c := *e
	f.byID[e.ID] = &c
	out := c
	return &out, nil
}

func (f *fakeExpensesRepo) Delete(_ context.Context, userID, id string) (*models.Expense, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.byID[id]
	if !ok || e.UserID != userID {
		return nil, common.ErrorNotFound
	}
	delete(f.byID, id)
	return e, nil
}

// --- manager ---

type fakeRepoManager struct {
	users    *fakeUsersRepo
	txs      *fakeTransactionsRepo
	logs     *fakeLogsRepo
	expenses *fakeExpensesRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		users:    newFakeUsersRepo(),
		txs:      newFakeTransactionsRepo(),
		logs:     &fakeLogsRepo{},
		expenses: newFakeExpensesRepo(),
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error        { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository                     { return m.users }
func (m *fakeRepoManager) Transactions(dbx.DBTX) transactions.Repository       { return m.txs }
func (m *fakeRepoManager) TransactionLogs(dbx.DBTX) transactionlogs.Repository { return m.logs }
func (m *fakeRepoManager) Expenses(dbx.DBTX) expenses.Repository               { return m.expenses }

// --- mail ---

type sentMail struct {
	to, subject, body string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (f *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func (f *fakeMailer) last(t *testing.T) sentMail {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		t.Fatal("no mail sent")
	}
	return f.sent[len(f.sent)-1]
}

// --- helpers ---

var testNow = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// codes returns a generator that hands out the given codes in order.
func codes(cs ...string) func() (string, error) {
	var mu sync.Mutex
	i := 0
	return func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		c := cs[i%len(cs)]
		i++
		return c, nil
	}
}

type env struct {
	rm       *fakeRepoManager
	mail     *fakeMailer
	clock    *clock
	metrics  *metrics.Metrics
	sessions *auth.Sessions
	issuer   *OTPIssuer
	users    *UserService
	reset    *PasswordResetService
}

func newEnv(t *testing.T, otpCodes ...string) *env {
	t.Helper()
	if len(otpCodes) == 0 {
		otpCodes = []string{"123456"}
	}

	e := &env{
		rm:       newFakeRepoManager(),
		mail:     &fakeMailer{},
		clock:    &clock{now: testNow},
		metrics:  metrics.New(),
		sessions: auth.NewSessions("test-secret", 0),
	}

	e.issuer = NewOTPIssuer(e.mail, 5*time.Minute, logging.Nop{}, e.metrics)
	e.issuer.now = e.clock.Now
	e.issuer.generate = codes(otpCodes...)

	e.users = NewUserService(nil, e.rm, e.sessions, e.issuer, logging.Nop{})
	e.users.now = e.clock.Now

	e.reset = NewPasswordResetService(nil, e.rm, e.issuer, logging.Nop{})
	e.reset.now = e.clock.Now
	return e
}

// verifiedUser stores a verified account with the given password.
func (e *env) verifiedUser(t *testing.T, email, password string) *models.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	return e.rm.users.put(&models.User{Name: "Asha", Email: email, PasswordHash: hash, IsVerified: true, Friends: []string{}})
}

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}
