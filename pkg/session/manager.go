package session

import "time"

// CredentialChecker verifies a username/password pair. Implementations must
// return ErrInvalidCredentials for unknown user, wrong password and
// disabled/locked account alike, so the failure does not leak which it was.
type CredentialChecker interface {
	Verify(username, password string) error
}

// TokenPair bundles a short-lived access token and a longer-lived refresh
// token.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Manager orchestrates the refresh token lifecycle. It is the sole writer
// of the Store; request-path access token checks go through Decode alone
// and never touch the store.
type Manager struct {
	creds      CredentialChecker
	store      Store
	accessCtx  SigningContext
	refreshCtx SigningContext
}

func NewManager(creds CredentialChecker, store Store, access, refresh SigningContext) *Manager {
	return &Manager{creds: creds, store: store, accessCtx: access, refreshCtx: refresh}
}

// AccessContext returns the signing context for access tokens, for callers
// that resolve principals from bearer tokens.
func (m *Manager) AccessContext() SigningContext {
	return m.accessCtx
}

// Login verifies the credentials and, on success, issues a token pair and
// persists the refresh half. On failure nothing is persisted.
func (m *Manager) Login(username, password string) (*TokenPair, error) {
	if err := m.creds.Verify(username, password); err != nil {
		return nil, err
	}
	return m.issuePair(username)
}

// Refresh rotates a refresh token: the presented token is consumed and a
// fresh pair is issued for the same subject. A token can be refreshed at
// most once; any later presentation fails with ErrInvalidToken.
func (m *Manager) Refresh(presented string) (*TokenPair, error) {
	subject, _, err := Decode(presented, m.refreshCtx)
	if err != nil {
		return nil, ErrInvalidToken
	}
	rec, err := m.store.FindByToken(presented)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if rec.Revoked {
		return nil, ErrInvalidToken
	}
	// The stored expiry is authoritative even when the signed payload
	// would still verify. Stale rows are dropped on detection.
	if time.Now().After(rec.ExpiresAt) {
		_ = m.store.Delete(presented)
		return nil, ErrInvalidToken
	}
	// Consume before minting the replacement; a concurrent refresh with
	// the same token must observe the record as already revoked.
	if err := m.store.Consume(presented); err != nil {
		return nil, ErrInvalidToken
	}
	return m.issuePair(subject)
}

// Logout revokes the presented refresh token. Logging out twice with the
// same token fails the second time, since the record is already revoked.
func (m *Manager) Logout(presented string) error {
	if err := m.store.Consume(presented); err != nil {
		return ErrInvalidToken
	}
	return nil
}

func (m *Manager) issuePair(username string) (*TokenPair, error) {
	access, err := Issue(username, m.accessCtx)
	if err != nil {
		return nil, err
	}
	refresh, err := Issue(username, m.refreshCtx)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	rec := Record{
		Token:     refresh,
		Username:  username,
		CreatedAt: now,
		ExpiresAt: now.Add(m.refreshCtx.TTL),
	}
	if err := m.store.Save(rec); err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
