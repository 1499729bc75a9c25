package cmd

import (
	"context"
	"fmt"

	"github.com/frahmantamala/employee-management/internal/core/events"
	"github.com/frahmantamala/employee-management/pkg/logger"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect the audit event pipeline",
	Long:  `List the audit event types and publish a sample event through the audit logger`,
}

var eventTypesCmd = &cobra.Command{
	Use:   "types",
	Short: "List audit event types",
	Run: func(cmd *cobra.Command, args []string) {
		for _, t := range auditEventTypes {
			fmt.Fprintln(cmd.OutOrStdout(), t)
		}
	},
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [event-type]",
	Short: "Publish a sample event",
	Long:  `Publish a sample event synchronously so the audit log line can be checked`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return publishSampleEvent(cmd.Context(), args[0])
	},
}

var (
	eventActor string
	eventName  string

	auditEventTypes = []string{
		events.EventTypeLoggedIn,
		events.EventTypeLoggedOut,
		events.EventTypeEmployeeCreated,
		events.EventTypeEmployeeUpdated,
		events.EventTypeEmployeeDeleted,
	}
)

func sampleEvent(eventType string) (events.Event, error) {
	switch eventType {
	case events.EventTypeLoggedIn:
		return events.NewLoggedInEvent(eventActor, true), nil
	case events.EventTypeLoggedOut:
		return events.NewLoggedOutEvent(eventActor), nil
	case events.EventTypeEmployeeCreated:
		return events.NewEmployeeCreatedEvent(eventActor, "sample", "EMP000", eventName), nil
	case events.EventTypeEmployeeUpdated:
		return events.NewEmployeeUpdatedEvent(eventActor, "sample", "EMP000", eventName), nil
	case events.EventTypeEmployeeDeleted:
		return events.NewEmployeeDeletedEvent(eventActor, "sample", "EMP000", eventName), nil
	}
	return nil, fmt.Errorf("unknown event type %q", eventType)
}

func publishSampleEvent(ctx context.Context, eventType string) error {
	event, err := sampleEvent(eventType)
	if err != nil {
		return err
	}

	lg := logger.LoggerWrapper()
	eventBus := events.NewEventBus(lg)
	eventBus.Subscribe(events.AllEvents, events.AuditLogger(lg.With("component", "audit")))

	lg.Info("publishing sample event", "event_type", eventType, "event_id", event.EventID())
	return eventBus.PublishSync(ctx, event)
}

func init() {
	publishEventCmd.Flags().StringVar(&eventActor, "actor", "admin", "acting username")
	publishEventCmd.Flags().StringVar(&eventName, "name", "Sample Employee", "employee name for employee events")

	eventCmd.AddCommand(eventTypesCmd, publishEventCmd)

	rootCmd.AddCommand(eventCmd)
}
