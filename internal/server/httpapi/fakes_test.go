package httpapi

import (
	"context"
	"io"
	"sync"

	"github.com/dmitrijs2005/hisabkitab/internal/common"
	"github.com/dmitrijs2005/hisabkitab/internal/server/models"
	"github.com/dmitrijs2005/hisabkitab/internal/server/services"
)

type fakeUsers struct {
	mu sync.Mutex

	tokens  map[string]*models.User
	authErr error

	sendErr  error
	gotName  string
	gotEmail string

	completeUser  *models.User
	completeToken string
	completeErr   error

	loginUser  *models.User
	loginToken string
	loginErr   error

	profile    *models.User
	profileErr error
}

func (f *fakeUsers) SendRegistrationOTP(_ context.Context, name, email, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gotName, f.gotEmail = name, email
	return f.sendErr
}

func (f *fakeUsers) CompleteRegistration(_ context.Context, email, _ string) (*models.User, string, error) {
	f.gotEmail = email
	return f.completeUser, f.completeToken, f.completeErr
}

func (f *fakeUsers) Login(_ context.Context, email, _ string) (*models.User, string, error) {
	f.gotEmail = email
	return f.loginUser, f.loginToken, f.loginErr
}

func (f *fakeUsers) GetProfile(_ context.Context, _ string) (*models.User, error) {
	return f.profile, f.profileErr
}

func (f *fakeUsers) Authenticate(_ context.Context, token string) (*models.User, error) {
	if f.authErr != nil {
		return nil, f.authErr
	}
	if u, ok := f.tokens[token]; ok {
		return u, nil
	}
	return nil, common.ErrInvalidToken
}

type fakeReset struct {
	sendErr, verifyErr, resetErr error

	gotEmail, gotCode, gotPassword string
}

func (f *fakeReset) SendOTP(_ context.Context, email string) error {
	f.gotEmail = email
	return f.sendErr
}

func (f *fakeReset) VerifyOTP(_ context.Context, email, code string) error {
	f.gotEmail, f.gotCode = email, code
	return f.verifyErr
}

func (f *fakeReset) Reset(_ context.Context, email, code, password string) error {
	f.gotEmail, f.gotCode, f.gotPassword = email, code, password
	return f.resetErr
}

type fakeImages struct {
	url  string
	user *models.User
	err  error

	got     services.ProfileImage
	gotBody []byte
}

func (f *fakeImages) Upload(_ context.Context, _ string, img services.ProfileImage) (string, *models.User, error) {
	f.got = img
	f.gotBody, _ = io.ReadAll(img.Body)
	return f.url, f.user, f.err
}

type fakeTransactions struct {
	list    []*models.Transaction
	tx      *models.Transaction
	summary []models.MonthlySummary
	err     error

	calls    []string
	gotUser  string
	gotID    string
	gotInput services.TransactionInput
}

func (f *fakeTransactions) record(call, userID, id string) {
	f.calls = append(f.calls, call)
	f.gotUser, f.gotID = userID, id
}

func (f *fakeTransactions) List(_ context.Context, userID string) ([]*models.Transaction, error) {
	f.record("list", userID, "")
	return f.list, f.err
}

func (f *fakeTransactions) Get(_ context.Context, userID, id string) (*models.Transaction, error) {
	f.record("get", userID, id)
	return f.tx, f.err
}

func (f *fakeTransactions) Create(_ context.Context, userID string, in services.TransactionInput) (*models.Transaction, error) {
	f.record("create", userID, "")
	f.gotInput = in
	return f.tx, f.err
}

func (f *fakeTransactions) Update(_ context.Context, userID, id string, in services.TransactionInput) (*models.Transaction, error) {
	f.record("update", userID, id)
	f.gotInput = in
	return f.tx, f.err
}

func (f *fakeTransactions) Delete(_ context.Context, userID, id string) (*models.Transaction, error) {
	f.record("delete", userID, id)
	return f.tx, f.err
}

func (f *fakeTransactions) MonthlySummary(_ context.Context, userID string) ([]models.MonthlySummary, error) {
	f.record("summary", userID, "")
	return f.summary, f.err
}

type fakeLogs struct {
	entries []*models.TransactionLog
	err     error

	gotUser, gotID string
}

func (f *fakeLogs) ListForUser(_ context.Context, userID string) ([]*models.TransactionLog, error) {
	f.gotUser = userID
	return f.entries, f.err
}

func (f *fakeLogs) ListForTransaction(_ context.Context, userID, id string) ([]*models.TransactionLog, error) {
	f.gotUser, f.gotID = userID, id
	return f.entries, f.err
}

type fakeExpenses struct {
	list    []*models.Expense
	expense *models.Expense
	err     error

	gotID    string
	gotInput services.ExpenseInput
}

func (f *fakeExpenses) List(context.Context, string) ([]*models.Expense, error) {
	return f.list, f.err
}

func (f *fakeExpenses) Create(_ context.Context, _ string, in services.ExpenseInput) (*models.Expense, error) {
	f.gotInput = in
	return f.expense, f.err
}

func (f *fakeExpenses) Update(_ context.Context, _, id string, in services.ExpenseInput) (*models.Expense, error) {
	f.gotID, f.gotInput = id, in
	return f.expense, f.err
}

func (f *fakeExpenses) Delete(_ context.Context, _, id string) (*models.Expense, error) {
	f.gotID = id
	return f.expense, f.err
}

type fakeFriends struct {
	friends []string
	err     error

	gotName string
}

func (f *fakeFriends) List(context.Context, string) ([]string, error) { return f.friends, f.err }

func (f *fakeFriends) Add(_ context.Context, _, name string) ([]string, error) {
	f.gotName = name
	return f.friends, f.err
}

func (f *fakeFriends) Remove(_ context.Context, _, name string) ([]string, error) {
	f.gotName = name
	return f.friends, f.err
}

func (f *fakeFriends) Clear(context.Context, string) ([]string, error) { return []string{}, f.err }
