package events_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/employee-management/internal/core/events"
)

func TestEvents(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Events Suite")
}

var _ = Describe("EventBus", func() {
	var (
		bus *events.EventBus
		buf *bytes.Buffer
	)

	BeforeEach(func() {
		buf = &bytes.Buffer{}
		bus = events.NewEventBus(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	})

	It("should deliver to type and wildcard subscribers", func() {
		var (
			mu   sync.Mutex
			seen []string
		)
		record := func(tag string) events.Handler {
			return func(_ context.Context, e events.Event) error {
				mu.Lock()
				defer mu.Unlock()
				seen = append(seen, tag+":"+e.EventType())
				return nil
			}
		}
		bus.Subscribe(events.EventTypeEmployeeCreated, record("typed"))
		bus.Subscribe(events.AllEvents, record("all"))

		Expect(bus.Publish(context.Background(), events.NewEmployeeCreatedEvent("admin", "id-1", "EMP004", "Ann"))).To(Succeed())
		Expect(bus.Publish(context.Background(), events.NewLoggedOutEvent("admin"))).To(Succeed())
		bus.Wait()

		Expect(seen).To(ConsistOf(
			"typed:employee.created",
			"all:employee.created",
			"all:session.logged_out",
		))
	})

	It("should run handlers after the publisher's context is cancelled", func() {
		done := make(chan error, 1)
		bus.Subscribe(events.EventTypeEmployeeDeleted, func(ctx context.Context, _ events.Event) error {
			done <- ctx.Err()
			return nil
		})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		Expect(bus.Publish(ctx, events.NewEmployeeDeletedEvent("admin", "id-1", "EMP001", "John Doe"))).To(Succeed())
		Eventually(done).Should(Receive(BeNil()))
	})

	It("should surface handler errors from PublishSync", func() {
		boom := errors.New("boom")
		bus.Subscribe(events.EventTypeLoggedIn, func(context.Context, events.Event) error { return boom })

		err := bus.PublishSync(context.Background(), events.NewLoggedInEvent("admin", true))
		Expect(err).To(MatchError(boom))
	})

	It("should write audit lines", func() {
		audit := events.AuditLogger(slog.New(slog.NewTextHandler(buf, nil)))
		bus.Subscribe(events.AllEvents, audit)

		Expect(bus.PublishSync(context.Background(), events.NewEmployeeUpdatedEvent("admin", "id-9", "EMP009", "Zed"))).To(Succeed())
		Expect(buf.String()).To(ContainSubstring("event_type=employee.updated"))
		Expect(buf.String()).To(ContainSubstring("actor=admin"))
		Expect(buf.String()).To(ContainSubstring("employee_code=EMP009"))
	})
})
