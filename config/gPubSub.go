package config

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"sync"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// ReportExported is published after a report workbook is stored in the bucket.
type ReportExported struct {
	Report        string    `json:"report"`
	Company       string    `json:"company"`
	ObjectKey     string    `json:"object_key"`
	RequestedBy   string    `json:"requested_by,omitempty"`
	ExportedAt    time.Time `json:"exported_at"`
	CorrelationId string    `json:"correlation_id,omitempty"`
}

var (
	pubsubClient   *pubsub.Client
	pubsubClientMu sync.Mutex
)

const pubsubConnectAttempts = 5

func getPubSubProjectID() string {
	if v := os.Getenv("PUBSUB_PROJECT_ID"); v != "" {
		return v
	}
	// Cloud Run sets this.
	if v := os.Getenv("GOOGLE_CLOUD_PROJECT"); v != "" {
		return v
	}
	return os.Getenv("GCP_PROJECT")
}

// ReportTopic is the topic for ReportExported events; empty disables publishing.
func ReportTopic() string {
	return os.Getenv("PUBSUB_REPORT_TOPIC")
}

func getPubSubClient(ctx context.Context) (*pubsub.Client, error) {
	pubsubClientMu.Lock()
	defer pubsubClientMu.Unlock()
	if pubsubClient != nil {
		return pubsubClient, nil
	}

	projectID := getPubSubProjectID()
	if projectID == "" {
		return nil, errors.New("PUBSUB_PROJECT_ID/GOOGLE_CLOUD_PROJECT not set")
	}
	credJSON := os.Getenv("PUBSUB_CREDENTIALS_JSON")

	var err error
	for attempt := 1; attempt <= pubsubConnectAttempts; attempt++ {
		var c *pubsub.Client
		if credJSON != "" {
			c, err = pubsub.NewClient(ctx, projectID, option.WithCredentialsJSON([]byte(credJSON)))
		} else {
			c, err = pubsub.NewClient(ctx, projectID)
		}
		if err == nil {
			pubsubClient = c
			logg.WithFields(logrus.Fields{"project_id": projectID, "attempt": attempt}).Info("pubsub client ready")
			return c, nil
		}

		sleep := time.Second * time.Duration(1<<attempt)
		logg.WithFields(logrus.Fields{"project_id": projectID, "attempt": attempt}).
			Warnf("failed to init pubsub client: %v; retrying in %s", err, sleep)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(sleep):
		}
	}
	return nil, err
}

// PublishReportExported publishes msg on PUBSUB_REPORT_TOPIC and returns the server-assigned id.
// It is a no-op returning "" when the topic is not configured.
func PublishReportExported(ctx context.Context, msg ReportExported) (string, error) {
	topicName := ReportTopic()
	if topicName == "" {
		return "", nil
	}

	client, err := getPubSubClient(ctx)
	if err != nil {
		return "", err
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return "", err
	}
	result := client.Topic(topicName).Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: map[string]string{"report": msg.Report, "company": msg.Company},
	})
	return result.Get(ctx)
}

func ClosePubSub() {
	pubsubClientMu.Lock()
	defer pubsubClientMu.Unlock()
	if pubsubClient != nil {
		_ = pubsubClient.Close()
		pubsubClient = nil
	}
}
