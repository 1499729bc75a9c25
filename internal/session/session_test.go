package session_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/employee-management/internal"
	"github.com/frahmantamala/employee-management/internal/session"
	"github.com/frahmantamala/employee-management/internal/storage"
	"github.com/frahmantamala/employee-management/internal/storage/memory"
)

func TestSession(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Session Suite")
}

var _ = Describe("Manager", func() {
	var (
		ctx     context.Context
		store   *memory.Store
		logger  *slog.Logger
		manager *session.Manager
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = memory.New()
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		manager = session.NewManager(store, session.DefaultVerifier(), logger)
	})

	Describe("AttemptLogin", func() {
		Context("with the demo credentials", func() {
			It("should authenticate and remember the user when asked", func() {
				ok, err := manager.AttemptLogin(ctx, "admin", "password", true)
				Expect(err).NotTo(HaveOccurred())
				Expect(ok).To(BeTrue())
				Expect(manager.IsAuthenticated()).To(BeTrue())

				current, ok := manager.Current()
				Expect(ok).To(BeTrue())
				Expect(current).To(Equal(session.Session{Username: "admin", Name: "Administrator"}))

				snapshot := store.Snapshot()
				Expect(snapshot[storage.KeyRememberedUser]).To(MatchJSON(`{"username":"admin","name":"Administrator"}`))
				Expect(snapshot[storage.KeyRememberedUsername]).To(Equal("admin"))
			})

			It("should clear remembered data when not asked to remember", func() {
				Expect(store.Set(ctx, storage.KeyRememberedUser, `{"username":"admin","name":"Administrator"}`)).To(Succeed())
				Expect(store.Set(ctx, storage.KeyRememberedUsername, "admin")).To(Succeed())

				ok, err := manager.AttemptLogin(ctx, "admin", "password", false)
				Expect(err).NotTo(HaveOccurred())
				Expect(ok).To(BeTrue())
				Expect(store.Snapshot()).To(BeEmpty())
			})
		})

		Context("with wrong credentials", func() {
			It("should stay anonymous and write nothing", func() {
				Expect(store.Set(ctx, storage.KeyRememberedUsername, "someone")).To(Succeed())
				before := store.Snapshot()

				ok, err := manager.AttemptLogin(ctx, "admin", "wrong", true)
				Expect(err).NotTo(HaveOccurred())
				Expect(ok).To(BeFalse())
				Expect(manager.IsAuthenticated()).To(BeFalse())
				Expect(store.Snapshot()).To(Equal(before))
			})

			It("should reject a wrong username", func() {
				ok, err := manager.AttemptLogin(ctx, "Admin", "password", false)
				Expect(err).NotTo(HaveOccurred())
				Expect(ok).To(BeFalse())
			})
		})

		Context("when the store is unavailable", func() {
			It("should return the store error and stay anonymous", func() {
				Expect(store.Close()).To(Succeed())

				ok, err := manager.AttemptLogin(ctx, "admin", "password", true)
				Expect(err).To(MatchError(storage.ErrClosed))
				Expect(ok).To(BeFalse())
				Expect(manager.IsAuthenticated()).To(BeFalse())
			})
		})
	})

	Describe("RestoreSession", func() {
		It("should restore a remembered session after restart", func() {
			_, err := manager.AttemptLogin(ctx, "admin", "password", true)
			Expect(err).NotTo(HaveOccurred())

			restarted := session.NewManager(store, session.DefaultVerifier(), logger)
			s, ok := restarted.RestoreSession(ctx)
			Expect(ok).To(BeTrue())
			Expect(s.Username).To(Equal("admin"))
			Expect(s.Name).To(Equal("Administrator"))
			Expect(restarted.IsAuthenticated()).To(BeTrue())

			current, ok := restarted.Current()
			Expect(ok).To(BeTrue())
			Expect(current.Name).To(Equal("Administrator"))
		})

		It("should not restore a session that was not remembered", func() {
			_, err := manager.AttemptLogin(ctx, "admin", "password", false)
			Expect(err).NotTo(HaveOccurred())

			restarted := session.NewManager(store, session.DefaultVerifier(), logger)
			_, ok := restarted.RestoreSession(ctx)
			Expect(ok).To(BeFalse())
			Expect(restarted.IsAuthenticated()).To(BeFalse())
		})

		It("should treat malformed data as absent", func() {
			Expect(store.Set(ctx, storage.KeyRememberedUser, "{broken")).To(Succeed())

			s, ok := manager.RestoreSession(ctx)
			Expect(ok).To(BeFalse())
			Expect(s).To(BeNil())
			Expect(manager.IsAuthenticated()).To(BeFalse())
		})
	})

	Describe("Logout", func() {
		It("should forget the session but keep the remembered username", func() {
			_, err := manager.AttemptLogin(ctx, "admin", "password", true)
			Expect(err).NotTo(HaveOccurred())

			Expect(manager.Logout(ctx)).To(Succeed())
			Expect(manager.IsAuthenticated()).To(BeFalse())

			snapshot := store.Snapshot()
			Expect(snapshot).NotTo(HaveKey(storage.KeyRememberedUser))
			Expect(snapshot).To(HaveKeyWithValue(storage.KeyRememberedUsername, "admin"))
			Expect(manager.RememberedUsername(ctx)).To(Equal("admin"))

			restarted := session.NewManager(store, session.DefaultVerifier(), logger)
			_, ok := restarted.RestoreSession(ctx)
			Expect(ok).To(BeFalse())
		})

		It("should succeed when already anonymous", func() {
			Expect(manager.Logout(ctx)).To(Succeed())
		})
	})

	Describe("Authorize", func() {
		It("should accept only the active user", func() {
			_, err := manager.Authorize("admin")
			Expect(err).To(MatchError(internal.ErrUnauthenticated))

			_, err = manager.AttemptLogin(ctx, "admin", "password", false)
			Expect(err).NotTo(HaveOccurred())

			s, err := manager.Authorize("admin")
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Name).To(Equal("Administrator"))

			_, err = manager.Authorize("mallory")
			Expect(err).To(MatchError(internal.ErrUnauthenticated))
		})
	})
})

var _ = Describe("BcryptVerifier", func() {
	It("should verify configured users", func() {
		hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
		Expect(err).NotTo(HaveOccurred())

		v := session.NewBcryptVerifier([]internal.UserCredential{
			{Username: "hr", Name: "HR Desk", PasswordHash: string(hash)},
		})

		name, ok := v.Verify(context.Background(), "hr", "s3cret")
		Expect(ok).To(BeTrue())
		Expect(name).To(Equal("HR Desk"))

		_, ok = v.Verify(context.Background(), "hr", "password")
		Expect(ok).To(BeFalse())
		_, ok = v.Verify(context.Background(), "admin", "password")
		Expect(ok).To(BeFalse())
	})

	It("should fall back to the demo account without configured users", func() {
		v := session.NewVerifier(internal.SecurityConfig{})
		_, ok := v.Verify(context.Background(), "admin", "password")
		Expect(ok).To(BeTrue())
	})
})

var _ = Describe("TokenIssuer", func() {
	It("should issue tokens that validate", func() {
		issuer := session.NewTokenIssuer("test-secret", time.Hour)

		token, expiresAt, err := issuer.Issue(session.Session{Username: "admin", Name: "Administrator"})
		Expect(err).NotTo(HaveOccurred())
		Expect(expiresAt).To(BeTemporally("~", time.Now().Add(time.Hour), time.Minute))

		claims, err := issuer.Validate(token)
		Expect(err).NotTo(HaveOccurred())
		Expect(claims.Subject).To(Equal("admin"))
		Expect(claims.Name).To(Equal("Administrator"))
	})

	It("should reject tokens signed with another secret", func() {
		token, _, err := session.NewTokenIssuer("one", time.Hour).Issue(session.Session{Username: "admin"})
		Expect(err).NotTo(HaveOccurred())

		_, err = session.NewTokenIssuer("two", time.Hour).Validate(token)
		Expect(err).To(MatchError(internal.ErrInvalidToken))
	})

	It("should reject garbage", func() {
		_, err := session.NewTokenIssuer("one", time.Hour).Validate("not-a-token")
		Expect(err).To(MatchError(internal.ErrInvalidToken))
	})
})
