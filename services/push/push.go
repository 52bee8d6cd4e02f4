// Package push delivers best-effort FCM notifications to leader devices. It
// complements email; a failure here never reaches the submitting operator.
package push

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

type Sender interface {
	SendMulticast(tokens []string, title, body string, data map[string]string) error
}

type FCMSender struct {
	app *firebase.App
	log *zap.Logger
}

func NewFCMSender(credentialsPath string, log *zap.Logger) (*FCMSender, error) {
	if credentialsPath == "" {
		return nil, fmt.Errorf("firebase credentials not configured")
	}
	ctx := context.Background()
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("error initializing app: %v", err)
	}
	return &FCMSender{app: app, log: log}, nil
}

func (s *FCMSender) SendMulticast(tokens []string, title, body string, data map[string]string) error {
	ctx := context.Background()

	client, err := s.app.Messaging(ctx)
	if err != nil {
		return fmt.Errorf("error getting Messaging client: %v", err)
	}

	// FCM caps multicast at 500 tokens per request.
	const batchSize = 500
	for i := 0; i < len(tokens); i += batchSize {
		end := i + batchSize
		if end > len(tokens) {
			end = len(tokens)
		}

		batch := tokens[i:end]
		message := &messaging.MulticastMessage{
			Data: data,
			Notification: &messaging.Notification{
				Title: title,
				Body:  body,
			},
			Tokens: batch,
		}

		response, err := client.SendEachForMulticast(ctx, message)
		if err != nil {
			s.log.Warn("push batch failed", zap.Int("from", i), zap.Error(err))
			continue
		}
		if response.FailureCount > 0 {
			s.log.Warn("push partially delivered",
				zap.Int("success", response.SuccessCount),
				zap.Int("failure", response.FailureCount))
		}
	}

	return nil
}
