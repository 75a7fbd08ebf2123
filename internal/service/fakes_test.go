package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sakif/password-analyzer/internal/apperror"
	"github.com/sakif/password-analyzer/internal/auth"
	"github.com/sakif/password-analyzer/internal/cracker"
	"github.com/sakif/password-analyzer/internal/model"
	"github.com/sakif/password-analyzer/internal/ratelimit"
	"github.com/sakif/password-analyzer/internal/repository"
)

// =========================================================================
// FAKES
// =========================================================================

// fakeUserRepo is an in-memory repository.UserRepository with the same
// uniqueness rules as the SQLite table.
type fakeUserRepo struct {
	mu     sync.Mutex
	users  []*model.User
	nextID int

	// set to make every call fail
	err error
	// set to make Update alone fail
	updateErr error
	// rows exactly as Create received them
	created []model.User
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 100}
}

func (f *fakeUserRepo) conflict(u *model.User) error {
	for _, other := range f.users {
		if other.ID == u.ID {
			continue
		}
		if strings.EqualFold(other.Email, u.Email) {
			return apperror.Conflict("email", "Email already registered")
		}
		if u.GitHubID != 0 && other.GitHubID == u.GitHubID {
			return apperror.Conflict("githubId", "GitHub account already linked")
		}
	}
	return nil
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if user.ID == "" {
		user.ID = fmt.Sprintf("u%d", f.nextID)
		f.nextID++
	}
	if err := f.conflict(user); err != nil {
		return err
	}
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	f.users = append(f.users, &stored)
	f.created = append(f.created, stored)
	return nil
}

func (f *fakeUserRepo) find(match func(*model.User) bool, notFound error) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if match(u) {
			out := *u
			return &out, nil
		}
	}
	return nil, notFound
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	return f.find(func(u *model.User) bool { return u.ID == id }, apperror.NotFound("user", id))
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	return f.find(func(u *model.User) bool { return strings.EqualFold(u.Email, email) },
		apperror.NotFoundMessage("user not found with email "+email))
}

func (f *fakeUserRepo) GetByGitHubID(_ context.Context, id int64) (*model.User, error) {
	return f.find(func(u *model.User) bool { return u.GitHubID != 0 && u.GitHubID == id },
		apperror.NotFound("user", fmt.Sprint(id)))
}

func (f *fakeUserRepo) Update(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.updateErr != nil {
		return f.updateErr
	}
	if err := f.conflict(user); err != nil {
		return err
	}
	for i, u := range f.users {
		if u.ID == user.ID {
			user.UpdatedAt = time.Now().UTC()
			stored := *user
			f.users[i] = &stored
			return nil
		}
	}
	return apperror.NotFound("user", user.ID)
}

func (f *fakeUserRepo) List(_ context.Context, opts repository.ListOptions) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]model.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUserRepo) Count(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	return len(f.users), nil
}

// fakeKV is an in-memory repository.KVRepository.
type fakeKV struct {
	mu   sync.Mutex
	data map[string]map[string]string
}

var _ repository.KVRepository = (*fakeKV)(nil)

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string]map[string]string{}}
}

func (f *fakeKV) Get(_ context.Context, ns, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[ns][key]
	if !ok {
		return "", apperror.NotFound("key", ns+"/"+key)
	}
	return v, nil
}

func (f *fakeKV) Set(_ context.Context, ns, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.data[ns] == nil {
		f.data[ns] = map[string]string{}
	}
	f.data[ns][key] = value
	return nil
}

func (f *fakeKV) Delete(_ context.Context, ns, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data[ns], key)
	return nil
}

func (f *fakeKV) List(_ context.Context, ns string) ([]model.KV, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.KV{}
	for k, v := range f.data[ns] {
		out = append(out, model.KV{Namespace: ns, Key: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// fakeMessages is an in-memory repository.MessageRepository.
type fakeMessages struct {
	mu   sync.Mutex
	msgs []model.Message
	n    int
}

var _ repository.MessageRepository = (*fakeMessages)(nil)

func (f *fakeMessages) Create(_ context.Context, msg *model.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.n++
	msg.ID = fmt.Sprintf("m%03d", f.n)
	msg.CreatedAt = time.Now().UTC()
	stored := *msg
	stored.IsCurrentUser = false
	f.msgs = append(f.msgs, stored)
	return nil
}

func (f *fakeMessages) ListByChannel(_ context.Context, ch model.Channel, opts repository.ListOptions) ([]model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Message
	for _, m := range f.msgs {
		if m.Channel == ch {
			out = append(out, m)
		}
	}
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[len(out)-opts.Limit:]
	}
	return out, nil
}

type sentMail struct {
	kind, name, to string
}

// fakeMailer records what would have been sent.
type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (f *fakeMailer) record(kind, name, to string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{kind: kind, name: name, to: to})
	return nil
}

func (f *fakeMailer) SendVerification(_ context.Context, name, to string) error {
	return f.record("verify", name, to)
}

func (f *fakeMailer) SendPasswordReset(_ context.Context, name, to string) error {
	return f.record("reset", name, to)
}

// fakeGitHub answers the device flow with a fixed identity.
type fakeGitHub struct {
	user        *auth.GitHubUser
	startErr    error
	completeErr error
}

func (f *fakeGitHub) StartDeviceLogin(context.Context) (*auth.DeviceCode, error) {
	if f.startErr != nil {
		return nil, f.startErr
	}
	return &auth.DeviceCode{
		UserCode:        "WDJB-MJHT",
		VerificationURI: "https://github.com/login/device",
		Expiry:          time.Now().Add(15 * time.Minute),
	}, nil
}

func (f *fakeGitHub) CompleteDeviceLogin(context.Context, *auth.DeviceCode) (*auth.GitHubUser, error) {
	if f.completeErr != nil {
		return nil, f.completeErr
	}
	u := *f.user
	return &u, nil
}

// fakeAvatars keeps uploads in memory.
type fakeAvatars struct {
	data        []byte
	contentType string
	err         error
}

func (f *fakeAvatars) Put(_ context.Context, userID string, r io.Reader, _ int64, contentType string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.data, f.contentType = b, contentType
	return "https://cdn.example.com/avatars/" + userID, nil
}

// =========================================================================
// HELPERS
// =========================================================================

type testEnv struct {
	users    *fakeUserRepo
	kv       *fakeKV
	messages *fakeMessages
	mailer   *fakeMailer
	github   *fakeGitHub
	avatars  *fakeAvatars
	tokens   *auth.TokenService
	session  *Session
	auth     *AuthService
	profile  *ProfileService
	settings *SettingsService
	chat     *ChatService
	analyzer *AnalyzerService
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixedRand int

func (f fixedRand) IntN(n int) int { return int(f) % n }

// newTestEnv wires every service over fakes. bcrypt runs at its minimum
// cost and the simulator and chat bot never wait.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!", time.Hour)
	require.NoError(t, err)

	logger := discardLogger()
	env := &testEnv{
		users:    newFakeUserRepo(),
		kv:       newFakeKV(),
		messages: &fakeMessages{},
		mailer:   &fakeMailer{},
		github:   &fakeGitHub{},
		avatars:  &fakeAvatars{},
		tokens:   tokens,
	}

	passwords := auth.NewPasswordServiceForTest(4)
	limiter := ratelimit.New(ratelimit.NewKVStore(env.kv), ratelimit.Config{MaxAttempts: 3, Window: time.Minute})

	env.session = NewSession(env.kv, env.users, tokens, logger)
	env.auth = NewAuthService(env.users, passwords, env.session, limiter, env.mailer, env.github, logger)
	env.profile = NewProfileService(env.users, passwords, env.session, env.avatars,
		func(email string) bool { return email == "admin@example.com" }, logger)
	env.settings = NewSettingsService(env.kv, logger)
	env.chat = NewChatService(env.messages, 0, logger)
	env.analyzer = NewAnalyzerService(cracker.New(cracker.Config{}, fixedRand(7)), env.session, logger)
	return env
}

// signup creates an account and signs it in.
func (e *testEnv) signup(t *testing.T, name, email, password string) *model.User {
	t.Helper()
	ctx := context.Background()
	_, err := e.auth.Signup(ctx, SignupRequest{Name: name, Email: email, Password: password})
	require.NoError(t, err)
	user, err := e.auth.Login(ctx, email, password)
	require.NoError(t, err)
	return user
}
