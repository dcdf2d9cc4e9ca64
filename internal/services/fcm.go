package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"strconv"

	"asistencia-backend/internal/dashboard"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

type messageSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FCMService publishes attendance changes to a Firebase Cloud Messaging
// topic that supervisors' phones subscribe to.
type FCMService struct {
	client messageSender
	topic  string
}

// NewFCMService creates a new FCM service instance from a credentials file
func NewFCMService(ctx context.Context, credentialsFile, topic string) (*FCMService, error) {
	return newFCMService(ctx, topic, option.WithCredentialsFile(credentialsFile))
}

// NewFCMServiceFromBase64 creates a new FCM service instance from base64-encoded credentials
// This is useful for cloud deployments where you can't upload files easily
func NewFCMServiceFromBase64(ctx context.Context, credentialsBase64, topic string) (*FCMService, error) {
	credentialsJSON, err := base64.StdEncoding.DecodeString(credentialsBase64)
	if err != nil {
		return nil, fmt.Errorf("error decoding base64 credentials: %w", err)
	}
	return newFCMService(ctx, topic, option.WithCredentialsJSON(credentialsJSON))
}

func newFCMService(ctx context.Context, topic string, opt option.ClientOption) (*FCMService, error) {
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing Firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting messaging client: %w", err)
	}

	return &FCMService{client: client, topic: topic}, nil
}

// Notify sends the event to the configured topic
func (s *FCMService) Notify(ctx context.Context, ev dashboard.Event) {
	response, err := s.client.Send(ctx, attendanceMessage(s.topic, ev))
	if err != nil {
		log.Printf("❌ Error sending FCM message: %v", err)
		return
	}
	log.Printf("✅ FCM notification sent successfully: %s", response)
}

func attendanceMessage(topic string, ev dashboard.Event) *messaging.Message {
	return &messaging.Message{
		Topic: topic,
		Notification: &messaging.Notification{
			Title: actionTitle(ev.Action),
			Body:  fmt.Sprintf("%s: %s", displayName(ev), ev.Message),
		},
		Data: map[string]string{
			"type":       ev.Type,
			"action":     ev.Action,
			"cedula":     ev.Cedula,
			"fecha":      ev.Date,
			"presentes":  strconv.Itoa(ev.Stats.Present),
			"total":      strconv.Itoa(ev.Stats.Total),
			"porcentaje": strconv.Itoa(ev.Stats.Percentage),
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					ContentAvailable: true,
					Sound:            "default",
				},
			},
		},
	}
}

func actionTitle(action string) string {
	switch action {
	case "entrada":
		return "Entrada registrada"
	case "salida":
		return "Salida registrada"
	case "editar":
		return "Hora corregida"
	case "eliminar":
		return "Registro eliminado"
	}
	return "Asistencia actualizada"
}

func displayName(ev dashboard.Event) string {
	if ev.Nombre == "" {
		return ev.Cedula
	}
	return fmt.Sprintf("%s (%s)", ev.Nombre, ev.Cedula)
}
