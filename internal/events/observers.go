package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"

	"moodfeed/internal/config"
)

type LogObserver struct {
	log *logrus.Logger
}

func NewLogObserver(log *logrus.Logger) *LogObserver {
	return &LogObserver{log: log}
}

func (l *LogObserver) Name() string {
	return "log_observer"
}

func (l *LogObserver) Update(event Event) error {
	l.log.WithFields(logrus.Fields{
		"event":   event.Type,
		"actor":   event.ActorID,
		"target":  event.TargetID,
		"subject": event.SubjectID,
	}).Info("domain event")
	return nil
}

// subjectPublisher is the slice of *nats.Conn the observer needs.
type subjectPublisher interface {
	Publish(subject string, data []byte) error
}

// NATSObserver forwards events as JSON to "<prefix>.<event type>".
type NATSObserver struct {
	conn   subjectPublisher
	prefix string
}

func NewNATSObserver(conn *nats.Conn, prefix string) *NATSObserver {
	return &NATSObserver{conn: conn, prefix: prefix}
}

func (n *NATSObserver) Name() string {
	return "nats_observer"
}

func (n *NATSObserver) Update(event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := n.conn.Publish(n.prefix+"."+string(event.Type), payload); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

func NewNATSConnection(cfg config.NATSConfig, log *logrus.Logger) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name(cfg.ClientName),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(time.Duration(cfg.ReconnectWait) * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				log.WithError(err).Warn("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.WithField("url", nc.ConnectedUrl()).Info("NATS reconnected")
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Info("NATS connection closed")
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	log.WithField("url", nc.ConnectedUrl()).Info("connected to NATS")
	return nc, nil
}
