package usecase

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/hartonodwi/authgate/internal/auth/entity"
	"github.com/hartonodwi/authgate/internal/pkg/config"
	"github.com/hartonodwi/authgate/internal/pkg/goerror"
	"github.com/hartonodwi/authgate/internal/pkg/goroutine"
	"github.com/hartonodwi/authgate/internal/pkg/hash"
	"github.com/hartonodwi/authgate/internal/pkg/instrument"
	"github.com/hartonodwi/authgate/internal/pkg/lock"
	"github.com/hartonodwi/authgate/internal/pkg/validator"
)

type fakeDB struct {
	mu         sync.Mutex
	users      map[string]*entity.User // keyed by lowercase username
	challenges map[string]entity.Challenge

	getUserErr error
	upsertErr  error
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		users:      map[string]*entity.User{},
		challenges: map[string]entity.Challenge{},
	}
}

func (f *fakeDB) GetUserByUsername(_ context.Context, username string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getUserErr != nil {
		return nil, f.getUserErr
	}

	user, ok := f.users[strings.ToLower(username)]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	out := *user
	return &out, nil
}

func (f *fakeDB) GetChallenge(_ context.Context, identifier string) (*entity.Challenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	chal, ok := f.challenges[identifier]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &chal, nil
}

func (f *fakeDB) UpsertChallenge(_ context.Context, in entity.Challenge) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.challenges[in.Identifier] = in
	return nil
}

func (f *fakeDB) MarkChallengeVerified(_ context.Context, identifier string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	chal, ok := f.challenges[identifier]
	if !ok {
		return goerror.ErrNotFound
	}
	chal.Status = entity.ChallengeStatusVerified
	f.challenges[identifier] = chal
	return nil
}

func (f *fakeDB) DeleteChallenge(_ context.Context, identifier string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.challenges, identifier)
	return nil
}

func (f *fakeDB) DeleteExpiredChallenges(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var deleted int64
	for id, chal := range f.challenges {
		if chal.Expired(now) {
			delete(f.challenges, id)
			deleted++
		}
	}
	return deleted, nil
}

// NewRegistration mirrors the real transaction: a username conflict leaves the
// challenge untouched, a success removes it.
func (f *fakeDB) NewRegistration(_ context.Context, user entity.NewUser, hashed, identifier string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := strings.ToLower(user.Username)
	if _, ok := f.users[key]; ok {
		return goerror.ErrConflict
	}
	delete(f.challenges, identifier)
	f.users[key] = &entity.User{ID: user.ID, Username: user.Username, Email: user.Email, Phone: user.Phone, Password: hashed}
	return nil
}

func (f *fakeDB) NewUser(_ context.Context, user entity.NewUser, hashed string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := strings.ToLower(user.Username)
	if _, ok := f.users[key]; ok {
		return goerror.ErrConflict
	}
	f.users[key] = &entity.User{ID: user.ID, Username: user.Username, Email: user.Email, Phone: user.Phone, Password: hashed}
	return nil
}

type sentOTP struct {
	To   string
	Code string
}

type fakeDispatcher struct {
	mu          sync.Mutex
	emailReady  bool
	phoneReady  bool
	sendErr     error
	sentEmails  []sentOTP
	sentSMS     []sentOTP
}

func (f *fakeDispatcher) SendEmailOTP(_ context.Context, email, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.sendErr != nil {
		return f.sendErr
	}
	f.sentEmails = append(f.sentEmails, sentOTP{To: email, Code: code})
	return nil
}

func (f *fakeDispatcher) SendSMSOTP(_ context.Context, phone, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.sendErr != nil {
		return f.sendErr
	}
	f.sentSMS = append(f.sentSMS, sentOTP{To: phone, Code: code})
	return nil
}

func (f *fakeDispatcher) Configured(ch entity.Channel) bool {
	if ch == entity.ChannelEmail {
		return f.emailReady
	}
	return f.phoneReady
}

type fakeLocker struct {
	mu       sync.Mutex
	acquired []string
}

func (f *fakeLocker) Acquire(_ context.Context, key string) (lock.UnlockFunc, error) {
	f.mu.Lock()
	f.acquired = append(f.acquired, key)
	f.mu.Unlock()
	return func(context.Context) error { return nil }, nil
}

type fakeMessaging struct {
	mu     sync.Mutex
	events []UserRegisteredEvent
}

func (f *fakeMessaging) PublishUserRegistered(_ context.Context, msg UserRegisteredEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.events = append(f.events, msg)
	return nil
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type fixedCodes struct{ code string }

func (c fixedCodes) Generate() (string, error) { return c.code, nil }

type seqID struct{ next int64 }

func (s *seqID) Generate() int64 {
	s.next++
	return s.next
}

const testConfigYAML = `
modules:
  auth:
    require_otp: true
    otp_ttl_minutes: 10
    otp_dev_echo: false
`

type fixture struct {
	uc         *Usecase
	db         *fakeDB
	dispatcher *fakeDispatcher
	locker     *fakeLocker
	messaging  *fakeMessaging
	goroutine  *goroutine.Manager
	now        time.Time
}

func newFixture(t *testing.T, configYAML string) *fixture {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(configYAML))
	require.NoError(t, err)
	t.Cleanup(func() { cfg.Close() })

	v10, err := validator.NewV10Validator()
	require.NoError(t, err)

	f := &fixture{
		db:         newFakeDB(),
		dispatcher: &fakeDispatcher{emailReady: true, phoneReady: true},
		locker:     &fakeLocker{},
		messaging:  &fakeMessaging{},
		goroutine:  goroutine.NewManager(10),
		now:        time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	f.uc = New(Dependency{
		RepoDB:        f.db,
		RepoMessaging: f.messaging,
		Dispatcher:    f.dispatcher,
		Locker:        f.locker,
		Validator:     v10,
		Config:        cfg,
		Bcrypt:        hash.NewBcrypt(4, ""),
		HMAC:          hash.NewHMACSHA256("test-secret"),
		Codes:         fixedCodes{code: "123456"},
		UID:           &seqID{},
		Clock:         fixedClock{now: f.now},
		Instrument:    instrument.NewNoop(),
		Goroutine:     f.goroutine,
	})

	return f
}

// verifiedChallenge seeds a challenge already marked verified for identifier.
func (f *fixture) verifiedChallenge(t *testing.T, identifier string, expiresAt time.Time) {
	t.Helper()

	codeHash, err := hash.NewHMACSHA256("test-secret").Hash("123456")
	require.NoError(t, err)

	f.db.challenges[identifier] = entity.Challenge{
		Identifier: identifier,
		CodeHash:   string(codeHash),
		Status:     entity.ChallengeStatusVerified,
		ExpiresAt:  expiresAt,
	}
}

func requireBusinessError(t *testing.T, err error, msg string, code goerror.Code) {
	t.Helper()

	var gerr *goerror.Error
	require.ErrorAs(t, err, &gerr)
	require.Equal(t, msg, gerr.Msg())
	require.Equal(t, code, gerr.Code())
}
