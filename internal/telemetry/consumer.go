package telemetry

import (
	"context"
	"encoding/json"
	"errors"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	pkgerrors "github.com/ducvu/wasteflow-backend/pkg/errors"
	"github.com/ducvu/wasteflow-backend/pkg/logger"
)

type vehicleUpdater interface {
	ApplyTelemetry(ctx context.Context, id uuid.UUID, lat, lon, load float64) error
}

// payload is the wire format pushed by vehicle tracking units.
type payload struct {
	VehicleID string  `json:"vehicleId"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	Load      float64 `json:"load"`
}

type processResult struct {
	ack  bool
	nack bool
}

// Consumer streams vehicle position/load updates from Pub/Sub into vehicle
// state. Updates are last-write-wins; the dispatch engine only ever reads the
// columns this consumer feeds.
type Consumer struct {
	vehicles     vehicleUpdater
	subscription *pubsub.Subscriber
	logg         *logger.Logger
}

// NewConsumer wires the telemetry stream to vehicle state.
func NewConsumer(vehicles vehicleUpdater, subscription *pubsub.Subscriber, logg *logger.Logger) (*Consumer, error) {
	if vehicles == nil {
		return nil, errors.New("vehicle updater is required")
	}
	if subscription == nil {
		return nil, errors.New("telemetry subscription is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &Consumer{vehicles: vehicles, subscription: subscription, logg: logg}, nil
}

// Run processes telemetry messages until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	logCtx := c.logg.WithField(ctx, "message_id", msg.ID)

	var update payload
	if err := json.Unmarshal(msg.Data, &update); err != nil {
		c.logg.Error(logCtx, "failed to unmarshal telemetry payload", err)
		return processResult{ack: true}
	}

	vehicleID, err := uuid.Parse(update.VehicleID)
	if err != nil {
		c.logg.Error(logCtx, "telemetry payload carries malformed vehicle id", err)
		return processResult{ack: true}
	}
	logCtx = c.logg.WithVehicleID(logCtx, vehicleID.String())

	if err := c.vehicles.ApplyTelemetry(ctx, vehicleID, update.Latitude, update.Longitude, update.Load); err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			switch typed.Code() {
			case pkgerrors.CodeNotFound:
				// tracker for a decommissioned vehicle keeps sending; drop it
				c.logg.Warn(logCtx, "telemetry for unknown vehicle dropped")
				return processResult{ack: true}
			case pkgerrors.CodeValidation:
				c.logg.Error(logCtx, "invalid telemetry update", err)
				return processResult{ack: true}
			}
		}
		c.logg.Error(logCtx, "failed to apply telemetry", err)
		return processResult{nack: true}
	}

	return processResult{ack: true}
}
