package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/fleetadmin/internal/client/client"
	"github.com/dmitrijs2005/fleetadmin/internal/client/models"
	"github.com/dmitrijs2005/fleetadmin/internal/client/permissions"
	"github.com/dmitrijs2005/fleetadmin/internal/logging"
)

const logoutTimeout = 5 * time.Second

// AuthAPI is the part of the backend the session talks to.
type AuthAPI interface {
	Login(ctx context.Context, identifier string, secret []byte) (models.TokenPair, error)
	Me(ctx context.Context) (*models.UserProfile, error)
	Logout(ctx context.Context, accessToken string) error
}

// TokenStore persists credentials between runs.
type TokenStore interface {
	AccessToken(ctx context.Context) (string, error)
	SetTokens(ctx context.Context, access, refresh string) error
	Permissions(ctx context.Context) ([]string, error)
	SetPermissions(ctx context.Context, codes []string) error
	Clear(ctx context.Context) error
}

// Status is a snapshot of the session. It is safe to keep and share.
type Status struct {
	User        *models.UserProfile
	Permissions permissions.Set
	Loading     bool
	Err         string
}

func (s Status) IsAuthenticated() bool { return s.User != nil }

type Session struct {
	api    AuthAPI
	tokens TokenStore
	logger logging.Logger

	mu      sync.Mutex
	epoch   uint64
	user    *models.UserProfile
	perms   permissions.Set
	loading bool
	checks  int
	errMsg  string

	ready chan struct{}
	bg    sync.WaitGroup
}

// New creates the session and starts the initial CheckSession in the
// background. Ready is closed when it completes. Until then Status carries
// the permissions saved by the previous run.
func New(ctx context.Context, api AuthAPI, tokens TokenStore, logger logging.Logger) *Session {
	if logger == nil {
		logger = logging.Nop()
	}
	s := &Session{
		api:     api,
		tokens:  tokens,
		logger:  logger,
		loading: true,
		ready:   make(chan struct{}),
	}
	s.restorePermissions(ctx)

	go func() {
		defer close(s.ready)
		if err := s.CheckSession(ctx); err != nil && !errors.Is(err, ErrNotAuthenticated) {
			s.logger.Info(ctx, "stored session is not valid", "err", err)
		}
	}()

	return s
}

func (s *Session) restorePermissions(ctx context.Context) {
	codes, err := s.tokens.Permissions(ctx)
	if err != nil {
		s.logger.Warn(ctx, "failed to read saved permissions", "err", err)
		return
	}
	s.perms, _ = permissions.FromCodes(codes)
}

// Ready is closed once the initial check has finished.
func (s *Session) Ready() <-chan struct{} {
	return s.ready
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{Permissions: s.perms, Loading: s.loading, Err: s.errMsg}
	if s.user != nil {
		u := *s.user
		u.Permissions = slices.Clone(s.user.Permissions)
		st.User = &u
	}
	return st
}

// Login exchanges credentials for tokens and loads the profile. It returns
// nil only when both steps succeed. A failed login leaves any current
// session as it was.
func (s *Session) Login(ctx context.Context, identifier string, secret []byte) error {
	pair, err := s.api.Login(ctx, identifier, secret)
	if err != nil {
		err = classifyLogin(err)
		s.mu.Lock()
		s.errMsg = loginMessage(err)
		s.mu.Unlock()
		s.logger.Warn(ctx, "login failed", "identifier", identifier, "err", err)
		return fmt.Errorf("login: %w", err)
	}

	s.mu.Lock()
	s.epoch++
	s.mu.Unlock()

	if err := s.tokens.SetTokens(ctx, pair.Access, pair.Refresh); err != nil {
		s.mu.Lock()
		s.errMsg = MsgLoginFailed
		s.mu.Unlock()
		return fmt.Errorf("save tokens: %w", err)
	}

	if err := s.CheckSession(ctx); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	s.logger.Info(ctx, "logged in", "identifier", identifier)
	return nil
}

// CheckSession fetches the profile for the stored token. On success the
// user and permissions are replaced; on any failure the session and the
// stored tokens are cleared. If a Login, Logout or Expire happens while the
// request is in flight the result is dropped and ErrSuperseded returned.
func (s *Session) CheckSession(ctx context.Context) error {
	s.mu.Lock()
	s.checks++
	s.loading = true
	epoch := s.epoch
	s.mu.Unlock()

	token, err := s.tokens.AccessToken(ctx)
	if err == nil && token == "" {
		err = ErrNotAuthenticated
	}

	var profile *models.UserProfile
	if err == nil {
		profile, err = s.api.Me(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.checks--
	s.loading = s.checks > 0

	if s.epoch != epoch {
		return ErrSuperseded
	}

	if err != nil {
		s.user = nil
		s.perms = permissions.Set{}
		if !errors.Is(err, ErrNotAuthenticated) {
			s.errMsg = checkMessage(err)
		}
		if cerr := s.tokens.Clear(ctx); cerr != nil {
			s.logger.Error(ctx, "failed to clear tokens", "err", cerr)
		}
		return err
	}

	perms, unknown := permissions.FromCodes(profile.Permissions)
	if len(unknown) > 0 {
		s.logger.Warn(ctx, "ignoring unknown permission codes", "codes", unknown)
	}
	if profile.IsSuperuser {
		perms = permissions.NewSet(permissions.All()...)
	}

	s.user = profile
	s.perms = perms
	s.errMsg = ""

	if err := s.tokens.SetPermissions(ctx, profile.Permissions); err != nil {
		s.logger.Warn(ctx, "failed to persist permissions", "err", err)
	}
	return nil
}

func checkMessage(err error) string {
	if errors.Is(err, client.ErrUnavailable) {
		return MsgNetwork
	}
	return MsgSessionExpired
}

// Logout ends the session locally right away, then tells the backend in the
// background. The backend call is best effort; its failure is only logged.
func (s *Session) Logout(ctx context.Context) {
	s.reset("")

	token, err := s.tokens.AccessToken(ctx)
	if err != nil {
		s.logger.Warn(ctx, "failed to read token on logout", "err", err)
	}
	if err := s.tokens.Clear(ctx); err != nil {
		s.logger.Error(ctx, "failed to clear tokens", "err", err)
	}
	s.logger.Info(ctx, "logged out")

	if token == "" {
		return
	}

	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), logoutTimeout)
		defer cancel()
		if err := s.api.Logout(ctx, token); err != nil {
			s.logger.Warn(ctx, "logout request failed", "err", err)
		}
	}()
}

// Expire is the teardown hook for a rejected token. It clears the session
// and the stored tokens without contacting the backend.
func (s *Session) Expire(ctx context.Context) {
	s.reset(MsgSessionExpired)
	if err := s.tokens.Clear(ctx); err != nil {
		s.logger.Error(ctx, "failed to clear tokens", "err", err)
	}
	s.logger.Warn(ctx, "session expired")
}

func (s *Session) reset(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	s.user = nil
	s.perms = permissions.Set{}
	s.errMsg = msg
}

// Wait blocks until background logout requests have finished.
func (s *Session) Wait() {
	s.bg.Wait()
}
