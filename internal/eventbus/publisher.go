// Package eventbus publishes completed analysis reports to NATS.
package eventbus

import (
	"encoding/json"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/ledger-forensics/internal/report"
)

// ReportEvent is the message published for every completed analysis.
type ReportEvent struct {
	ID          string         `json:"id"`
	Source      string         `json:"source"`
	GeneratedAt time.Time      `json:"generated_at"`
	Report      *report.Report `json:"report"`
}

// Publisher publishes events to NATS
type Publisher struct {
	conn    *nats.Conn
	subject string
}

// NewPublisher connects to natsURL. Reports go to subject.
func NewPublisher(natsURL, subject string) (*Publisher, error) {
	conn, err := nats.Connect(natsURL,
		nats.Name("ledger-forensics"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(10),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"url":     natsURL,
		"subject": subject,
	}).Info("EventBus.Publisher.Connected")

	return &Publisher{
		conn:    conn,
		subject: subject,
	}, nil
}

// PublishReport publishes rep, analysed from source, and returns the event id.
func (p *Publisher) PublishReport(source string, rep *report.Report) (string, error) {
	event := NewReportEvent(source, rep, time.Now().UTC())
	data, err := json.Marshal(event)
	if err != nil {
		return "", err
	}

	if err := p.conn.Publish(p.subject, data); err != nil {
		return "", err
	}

	logrus.WithFields(logrus.Fields{
		"id":       event.ID,
		"subject":  p.subject,
		"findings": len(rep.Findings),
		"failures": len(rep.Failures),
	}).Info("EventBus.Publisher.Published")

	return event.ID, nil
}

func NewReportEvent(source string, rep *report.Report, generatedAt time.Time) ReportEvent {
	return ReportEvent{
		ID:          uuid.Must(uuid.NewV4()).String(),
		Source:      source,
		GeneratedAt: generatedAt,
		Report:      rep,
	}
}

// Close drains pending messages and closes the NATS connection
func (p *Publisher) Close() {
	if p.conn == nil {
		return
	}
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
	}
	logrus.Info("EventBus.Publisher.Disconnected")
}

// IsConnected returns true if connected to NATS
func (p *Publisher) IsConnected() bool {
	return p.conn != nil && p.conn.IsConnected()
}
