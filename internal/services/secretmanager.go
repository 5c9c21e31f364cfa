package services

import (
	"context"
	"fmt"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	apperrors "github.com/cas124/media-pacing/internal/errors"
)

// SecretManagerService wraps the Secret Manager API for the handful of
// operations the pipelines need: reading the latest version of a secret and
// persisting rotated credentials back as a new version.
type SecretManagerService struct {
	client *secretmanager.Client
}

func NewSecretManagerService(ctx context.Context) (*SecretManagerService, error) {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create secret manager client: %w", err)
	}

	return &SecretManagerService{client: client}, nil
}

// AccessLatest retrieves the latest version of a secret as a string
func (s *SecretManagerService) AccessLatest(ctx context.Context, projectID, name string) (string, error) {
	resource := fmt.Sprintf("projects/%s/secrets/%s/versions/latest", projectID, name)

	result, err := s.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: resource,
	})
	if err != nil {
		return "", fmt.Errorf("failed to access secret %s: %w", name, err)
	}

	if result.Payload == nil || len(result.Payload.Data) == 0 {
		return "", fmt.Errorf("secret %s: %w", name, apperrors.ErrEmptySecret)
	}

	return string(result.Payload.Data), nil
}

// AddVersion stores payload as a new version of an existing secret.
// Used to persist the rotated QuickBooks refresh token.
func (s *SecretManagerService) AddVersion(ctx context.Context, projectID, name, payload string) error {
	parent := fmt.Sprintf("projects/%s/secrets/%s", projectID, name)

	_, err := s.client.AddSecretVersion(ctx, &secretmanagerpb.AddSecretVersionRequest{
		Parent: parent,
		Payload: &secretmanagerpb.SecretPayload{
			Data: []byte(payload),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to add version to secret %s: %w", name, err)
	}

	return nil
}

// ServiceAccountKey fetches a service account key JSON stored as a secret
func (s *SecretManagerService) ServiceAccountKey(ctx context.Context, projectID, name string) ([]byte, error) {
	payload, err := s.AccessLatest(ctx, projectID, name)
	if err != nil {
		return nil, err
	}
	return []byte(payload), nil
}

// Close releases the underlying gRPC connection
func (s *SecretManagerService) Close() error {
	return s.client.Close()
}
