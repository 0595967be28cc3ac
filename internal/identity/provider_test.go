package identity

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/nexwaste/nexwaste-backend/pkg/config"
	"github.com/nexwaste/nexwaste-backend/pkg/docstore/memstore"
	"github.com/nexwaste/nexwaste-backend/pkg/enums"
	"github.com/nexwaste/nexwaste-backend/pkg/logger"
)

type fakeSessions struct {
	open    map[string]string
	revoked []string
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{open: make(map[string]string)}
}

func (f *fakeSessions) Open(_ context.Context, accessID, uid string) error {
	f.open[accessID] = uid
	return nil
}

func (f *fakeSessions) Revoke(_ context.Context, accessID string) error {
	delete(f.open, accessID)
	f.revoked = append(f.revoked, accessID)
	return nil
}

func newTestProvider() (*LocalProvider, *fakeSessions, *memstore.Store) {
	store := memstore.New()
	sessions := newFakeSessions()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	provider := NewLocalProvider(store, nil, config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "nexwaste",
		ExpirationMinutes: 15,
	}, config.PasswordConfig{
		ArgonMemoryKB:    8 * 1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
		MinLength:        6,
	}, logg).WithSessionStore(sessions).WithClock(func() time.Time {
		return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	})
	return provider, sessions, store
}

func customerInput() RegisterInput {
	return RegisterInput{
		Email:    "asha@example.com",
		Password: "secret1",
		Role:     enums.ActorRoleCustomer,
		Details: CustomerDetails{
			Name:   "Asha",
			Phone:  "9000000000",
			Area:   "Kothrud",
			FlatNo: "B-12",
			Street: "Paud Road",
		},
	}
}

func TestRegisterCreatesCredentialAndProfile(t *testing.T) {
	provider, sessions, store := newTestProvider()
	ctx := context.Background()

	sess, err := provider.Register(ctx, customerInput())
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if sess.Token == "" || sess.AccessID == "" {
		t.Fatal("expected minted token and access id")
	}
	if sess.Identity.Role != enums.ActorRoleCustomer {
		t.Fatalf("unexpected role %s", sess.Identity.Role)
	}
	if sessions.open[sess.AccessID] != sess.Identity.UID {
		t.Fatal("session not opened for the new account")
	}

	profile, err := store.Get(ctx, "users", sess.Identity.UID)
	if err != nil {
		t.Fatalf("profile not written: %v", err)
	}
	if profile.Fields["fullAddress"] != "B-12, Paud Road" {
		t.Fatalf("unexpected fullAddress %v", profile.Fields["fullAddress"])
	}
}

func TestRegisterPartnerSkipsCustomerProfile(t *testing.T) {
	provider, _, store := newTestProvider()
	in := customerInput()
	in.Email = "fleet@example.com"
	in.Role = enums.ActorRolePartner

	sess, err := provider.Register(context.Background(), in)
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, err := store.Get(context.Background(), "users", sess.Identity.UID); err == nil {
		t.Fatal("partner registration must not write a customer profile")
	}
}

func TestRegisterRejections(t *testing.T) {
	provider, _, _ := newTestProvider()
	ctx := context.Background()

	in := customerInput()
	in.Email = "not-an-email"
	if _, err := provider.Register(ctx, in); CodeOf(err) != AuthErrInvalidEmail {
		t.Fatalf("expected invalid-email, got %v", err)
	}

	in = customerInput()
	in.Password = "short"
	if _, err := provider.Register(ctx, in); CodeOf(err) != AuthErrWeakPassword {
		t.Fatalf("expected weak-password, got %v", err)
	}

	if _, err := provider.Register(ctx, customerInput()); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, err := provider.Register(ctx, customerInput()); CodeOf(err) != AuthErrEmailInUse {
		t.Fatalf("expected email-in-use, got %v", err)
	}
}

func TestLoginRoundTrip(t *testing.T) {
	provider, _, _ := newTestProvider()
	ctx := context.Background()
	provider.Register(ctx, customerInput())

	sess, err := provider.Login(ctx, "Asha@Example.com ", "secret1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if sess.Identity.Email != "asha@example.com" {
		t.Fatalf("email not normalized: %q", sess.Identity.Email)
	}
	if sess.Identity.DisplayName != "Asha" {
		t.Fatalf("display name lost: %q", sess.Identity.DisplayName)
	}
}

func TestLoginFailures(t *testing.T) {
	provider, _, _ := newTestProvider()
	ctx := context.Background()
	provider.Register(ctx, customerInput())

	if _, err := provider.Login(ctx, "ghost@example.com", "secret1"); CodeOf(err) != AuthErrUserNotFound {
		t.Fatalf("expected user-not-found, got %v", err)
	}
	if _, err := provider.Login(ctx, "asha@example.com", "wrong-pass"); CodeOf(err) != AuthErrWrongPassword {
		t.Fatalf("expected wrong-password, got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	provider, sessions, _ := newTestProvider()
	ctx := context.Background()
	sess, _ := provider.Register(ctx, customerInput())

	if err := provider.Logout(ctx, sess.AccessID); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if _, stillOpen := sessions.open[sess.AccessID]; stillOpen {
		t.Fatal("session should be revoked")
	}
}

func TestFullAddressDerivation(t *testing.T) {
	cases := []struct {
		name    string
		details CustomerDetails
		want    string
	}{
		{"flat and street", CustomerDetails{FlatNo: "B-12", Street: "Paud Road", Area: "Kothrud"}, "B-12, Paud Road"},
		{"flat without street", CustomerDetails{FlatNo: "B-12", Area: "Kothrud"}, "B-12, Kothrud"},
		{"street only", CustomerDetails{Street: "Paud Road"}, "Paud Road"},
		{"area only", CustomerDetails{Area: "Kothrud"}, "Kothrud"},
		{"nothing", CustomerDetails{}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FullAddress(tc.details); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestFriendlyMessageFallback(t *testing.T) {
	if got := FriendlyMessage(AuthErrEmailInUse); got != "This email is already registered. Try logging in." {
		t.Fatalf("unexpected message %q", got)
	}
	if got := FriendlyMessage("something-else"); got != genericAuthMessage {
		t.Fatalf("expected generic fallback, got %q", got)
	}
}
