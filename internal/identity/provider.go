// Package identity implements account registration, login, and logout over
// the document store, issuing JWT access tokens backed by a revocable
// server-side session.
package identity

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/nexwaste/nexwaste-backend/pkg/auth"
	"github.com/nexwaste/nexwaste-backend/pkg/auth/session"
	"github.com/nexwaste/nexwaste-backend/pkg/config"
	"github.com/nexwaste/nexwaste-backend/pkg/docstore"
	"github.com/nexwaste/nexwaste-backend/pkg/enums"
	"github.com/nexwaste/nexwaste-backend/pkg/logger"
	"github.com/nexwaste/nexwaste-backend/pkg/security"
)

const (
	credentialsCollection = "credentials"
	usersCollection       = "users"
)

// Identity is the authenticated principal handed to the portal layer.
type Identity struct {
	UID         string          `json:"uid"`
	Email       string          `json:"email"`
	DisplayName string          `json:"displayName"`
	Role        enums.ActorRole `json:"role"`
}

// Session couples an identity with its minted access token.
type Session struct {
	Identity Identity `json:"identity"`
	Token    string   `json:"token"`
	AccessID string   `json:"-"`
}

// CustomerDetails is the profile data captured at customer registration.
type CustomerDetails struct {
	Name   string
	Phone  string
	Area   string
	FlatNo string
	Street string
}

// RegisterInput is a registration request for either portal role.
type RegisterInput struct {
	Email    string
	Password string
	Role     enums.ActorRole
	Details  CustomerDetails
}

// Provider is the authentication surface both portals depend on.
type Provider interface {
	Register(ctx context.Context, in RegisterInput) (Session, error)
	Login(ctx context.Context, email, password string) (Session, error)
	Logout(ctx context.Context, accessID string) error
}

type sessionStore interface {
	Open(ctx context.Context, accessID, uid string) error
	Revoke(ctx context.Context, accessID string) error
}

// LocalProvider keeps credentials in the document store and sessions in
// Redis.
type LocalProvider struct {
	store    docstore.Store
	sessions sessionStore
	jwtCfg   config.JWTConfig
	pwCfg    config.PasswordConfig
	logg     *logger.Logger
	now      func() time.Time
}

// NewLocalProvider wires the provider.
func NewLocalProvider(store docstore.Store, sessions *session.Manager, jwtCfg config.JWTConfig, pwCfg config.PasswordConfig, logg *logger.Logger) *LocalProvider {
	return &LocalProvider{
		store:    store,
		sessions: sessions,
		jwtCfg:   jwtCfg,
		pwCfg:    pwCfg,
		logg:     logg,
		now:      time.Now,
	}
}

// WithSessionStore swaps the session backend. Test hook.
func (p *LocalProvider) WithSessionStore(s sessionStore) *LocalProvider {
	p.sessions = s
	return p
}

// WithClock overrides the token clock. Test hook.
func (p *LocalProvider) WithClock(now func() time.Time) *LocalProvider {
	p.now = now
	return p
}

// FullAddress derives the display address persisted on the customer profile.
func FullAddress(d CustomerDetails) string {
	streetOrArea := d.Street
	if streetOrArea == "" {
		streetOrArea = d.Area
	}
	if d.FlatNo != "" {
		return d.FlatNo + ", " + streetOrArea
	}
	return streetOrArea
}

// Register creates the credential record, writes the customer profile for
// customer accounts, and opens an authenticated session.
func (p *LocalProvider) Register(ctx context.Context, in RegisterInput) (Session, error) {
	email := normalizeEmail(in.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return Session{}, newAuthError(AuthErrInvalidEmail)
	}
	if len(in.Password) < p.pwCfg.MinLength {
		return Session{}, newAuthError(AuthErrWeakPassword)
	}
	if !in.Role.IsValid() {
		return Session{}, newAuthError(AuthErrInvalidCredential)
	}

	if _, err := p.findCredential(ctx, email); err == nil {
		return Session{}, newAuthError(AuthErrEmailInUse)
	} else if !errors.Is(err, docstore.ErrNotFound) {
		return Session{}, &AuthError{Code: AuthErrNetwork, Err: err}
	}

	hash, err := security.HashPassword(in.Password, p.pwCfg)
	if err != nil {
		return Session{}, &AuthError{Code: AuthErrNetwork, Err: err}
	}

	doc, err := p.store.Create(ctx, credentialsCollection, map[string]any{
		"email":        email,
		"passwordHash": hash,
		"role":         string(in.Role),
		"displayName":  in.Details.Name,
	})
	if err != nil {
		return Session{}, &AuthError{Code: AuthErrNetwork, Err: err}
	}
	uid := doc.ID

	if in.Role == enums.ActorRoleCustomer {
		profile := map[string]any{
			"uid":         uid,
			"name":        in.Details.Name,
			"email":       email,
			"phone":       in.Details.Phone,
			"area":        in.Details.Area,
			"flatNo":      in.Details.FlatNo,
			"street":      in.Details.Street,
			"fullAddress": FullAddress(in.Details),
		}
		if err := p.store.Set(ctx, usersCollection, uid, profile); err != nil {
			return Session{}, &AuthError{Code: AuthErrNetwork, Err: err}
		}
	}

	ident := Identity{UID: uid, Email: email, DisplayName: in.Details.Name, Role: in.Role}
	sess, err := p.openSession(ctx, ident)
	if err != nil {
		return Session{}, err
	}
	p.logg.Info(p.logg.WithUserID(ctx, uid), "account registered")
	return sess, nil
}

// Login verifies the credential and opens an authenticated session.
func (p *LocalProvider) Login(ctx context.Context, email, password string) (Session, error) {
	email = normalizeEmail(email)

	cred, err := p.findCredential(ctx, email)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return Session{}, newAuthError(AuthErrUserNotFound)
		}
		return Session{}, &AuthError{Code: AuthErrNetwork, Err: err}
	}

	hash, _ := cred.Fields["passwordHash"].(string)
	ok, err := security.VerifyPassword(password, hash)
	if err != nil {
		return Session{}, &AuthError{Code: AuthErrInvalidCredential, Err: err}
	}
	if !ok {
		return Session{}, newAuthError(AuthErrWrongPassword)
	}

	role, _ := cred.Fields["role"].(string)
	name, _ := cred.Fields["displayName"].(string)
	ident := Identity{
		UID:         cred.ID,
		Email:       email,
		DisplayName: name,
		Role:        enums.ActorRole(role),
	}
	sess, err := p.openSession(ctx, ident)
	if err != nil {
		return Session{}, err
	}
	p.logg.Info(p.logg.WithUserID(ctx, ident.UID), "login succeeded")
	return sess, nil
}

// Logout revokes the server-side session; the JWT dies with it.
func (p *LocalProvider) Logout(ctx context.Context, accessID string) error {
	if err := p.sessions.Revoke(ctx, accessID); err != nil {
		return &AuthError{Code: AuthErrNetwork, Err: err}
	}
	return nil
}

func (p *LocalProvider) openSession(ctx context.Context, ident Identity) (Session, error) {
	accessID := session.NewAccessID()
	token, err := auth.MintAccessToken(p.jwtCfg, p.now(), auth.AccessTokenPayload{
		UID:   ident.UID,
		Email: ident.Email,
		Role:  ident.Role,
		JTI:   accessID,
	})
	if err != nil {
		return Session{}, &AuthError{Code: AuthErrNetwork, Err: err}
	}
	if err := p.sessions.Open(ctx, accessID, ident.UID); err != nil {
		return Session{}, &AuthError{Code: AuthErrNetwork, Err: err}
	}
	return Session{Identity: ident, Token: token, AccessID: accessID}, nil
}

func (p *LocalProvider) findCredential(ctx context.Context, email string) (docstore.Document, error) {
	docs, err := p.store.Query(ctx, docstore.Query{
		Collection: credentialsCollection,
		Filters:    []docstore.Filter{{Field: "email", Value: email}},
	})
	if err != nil {
		return docstore.Document{}, err
	}
	if len(docs) == 0 {
		return docstore.Document{}, docstore.ErrNotFound
	}
	return docs[0], nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
