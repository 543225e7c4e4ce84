// AngelaMos | 2026
// stubs_test.go

package auth

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/BuildAppolis/Nexus-Forge/internal/config"
	"github.com/BuildAppolis/Nexus-Forge/internal/core"
	"github.com/BuildAppolis/Nexus-Forge/internal/email"
)

// memRepo is an in-memory Repository with the same single-artifact
// and consume-once behavior as the SQL implementation.
type memRepo struct {
	mu         sync.Mutex
	sessions   map[string]*Session
	codes      map[string]*EmailVerificationCode
	resets     map[string]*PasswordResetToken
	nextCodeID int64
}

func newMemRepo() *memRepo {
	return &memRepo{
		sessions: make(map[string]*Session),
		codes:    make(map[string]*EmailVerificationCode),
		resets:   make(map[string]*PasswordResetToken),
	}
}

func (r *memRepo) CreateSession(_ context.Context, session *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session.CreatedAt = time.Now()
	cp := *session
	r.sessions[session.ID] = &cp
	return nil
}

func (r *memRepo) GetSession(_ context.Context, id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *session
	return &cp, nil
}

func (r *memRepo) ExtendSession(
	_ context.Context,
	id string,
	expiresAt time.Time,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return core.ErrNotFound
	}
	session.ExpiresAt = expiresAt
	return nil
}

func (r *memRepo) DeleteSession(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

func (r *memRepo) DeleteUserSessions(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, session := range r.sessions {
		if session.UserID == userID {
			delete(r.sessions, id)
		}
	}
	return nil
}

func (r *memRepo) DeleteExpiredSessions(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var purged int64
	for id, session := range r.sessions {
		if session.IsExpired() {
			delete(r.sessions, id)
			purged++
		}
	}
	return purged, nil
}

func (r *memRepo) ReplaceVerificationCode(
	_ context.Context,
	code *EmailVerificationCode,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextCodeID++
	code.ID = r.nextCodeID
	code.CreatedAt = time.Now()
	cp := *code
	r.codes[code.UserID] = &cp
	return nil
}

func (r *memRepo) LatestVerificationCode(
	_ context.Context,
	userID string,
) (*EmailVerificationCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	code, ok := r.codes[userID]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *code
	return &cp, nil
}

func (r *memRepo) ConsumeVerificationCode(
	_ context.Context,
	userID string,
) (*EmailVerificationCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	code, ok := r.codes[userID]
	if !ok {
		return nil, core.ErrNotFound
	}
	delete(r.codes, userID)
	return code, nil
}

func (r *memRepo) ReplaceResetToken(
	_ context.Context,
	token *PasswordResetToken,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, existing := range r.resets {
		if existing.UserID == token.UserID {
			delete(r.resets, id)
		}
	}
	token.CreatedAt = time.Now()
	cp := *token
	r.resets[token.ID] = &cp
	return nil
}

func (r *memRepo) ConsumeResetToken(
	_ context.Context,
	token string,
) (*PasswordResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.resets[token]
	if !ok {
		return nil, core.ErrNotFound
	}
	delete(r.resets, token)
	return stored, nil
}

func (r *memRepo) sessionCount(userID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, session := range r.sessions {
		if session.UserID == userID {
			n++
		}
	}
	return n
}

type stubUsers struct {
	mu     sync.Mutex
	byID   map[string]*UserInfo
	nextID int
}

func newStubUsers() *stubUsers {
	return &stubUsers{byID: make(map[string]*UserInfo)}
}

func (s *stubUsers) add(user *UserInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *user
	s.byID[user.ID] = &cp
}

func (s *stubUsers) GetByID(_ context.Context, id string) (*UserInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.byID[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *user
	return &cp, nil
}

func (s *stubUsers) GetByEmail(
	_ context.Context,
	userEmail string,
) (*UserInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.byID {
		if user.Email == userEmail {
			cp := *user
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (s *stubUsers) ExistsByEmail(
	_ context.Context,
	userEmail string,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.byID {
		if user.Email == userEmail {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubUsers) Create(
	_ context.Context,
	userEmail, passwordHash string,
) (*UserInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.byID {
		if user.Email == userEmail {
			return nil, core.ErrDuplicateKey
		}
	}
	s.nextID++
	user := &UserInfo{
		ID:           fmt.Sprintf("user-%d", s.nextID),
		Email:        userEmail,
		PasswordHash: passwordHash,
		Role:         "basic",
	}
	s.byID[user.ID] = user
	cp := *user
	return &cp, nil
}

func (s *stubUsers) MarkEmailVerified(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.byID[userID]
	if !ok {
		return core.ErrNotFound
	}
	user.EmailVerified = true
	return nil
}

func (s *stubUsers) UpdatePassword(
	_ context.Context,
	userID, passwordHash string,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.byID[userID]
	if !ok {
		return core.ErrNotFound
	}
	user.PasswordHash = passwordHash
	return nil
}

type sentEmail struct {
	to  string
	msg email.Message
}

type stubMailer struct {
	mu      sync.Mutex
	sent    []sentEmail
	sendErr error
}

func (m *stubMailer) Send(
	_ context.Context,
	to string,
	msg email.Message,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, sentEmail{to: to, msg: msg})
	return nil
}

func (m *stubMailer) lastSent() *sentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return nil
	}
	return &m.sent[len(m.sent)-1]
}

func (m *stubMailer) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type testEnv struct {
	svc      *Service
	repo     *memRepo
	users    *stubUsers
	mailer   *stubMailer
	issuer   *TokenIssuer
	sessions *SessionManager
}

func newTestEnv() *testEnv {
	repo := newMemRepo()
	users := newStubUsers()
	mailer := &stubMailer{}
	issuer := NewTokenIssuer(repo)
	sessions := NewSessionManager(repo, users, config.SessionConfig{})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc := NewService(
		users,
		issuer,
		sessions,
		mailer,
		"https://app.example.com",
		logger,
	)

	return &testEnv{
		svc:      svc,
		repo:     repo,
		users:    users,
		mailer:   mailer,
		issuer:   issuer,
		sessions: sessions,
	}
}
