package aws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// SecretsAPI is the slice of the Secrets Manager client used here.
type SecretsAPI interface {
	GetSecretValue(ctx context.Context, in *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// SecretsClient resolves secret strings once per process. Services read
// their database credentials through it at startup.
type SecretsClient struct {
	api SecretsAPI

	mu       sync.Mutex
	resolved map[string]string
}

func NewSecretsClient(cfg sdkaws.Config) *SecretsClient {
	return NewSecretsClientFrom(secretsmanager.NewFromConfig(cfg))
}

func NewSecretsClientFrom(api SecretsAPI) *SecretsClient {
	return &SecretsClient{api: api, resolved: make(map[string]string)}
}

func (s *SecretsClient) GetSecret(ctx context.Context, name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.resolved[name]; ok {
		return v, nil
	}

	out, err := s.api.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{SecretId: sdkaws.String(name)})
	if err != nil {
		return "", fmt.Errorf("secret %s: %w", name, err)
	}
	if out.SecretString == nil {
		return "", fmt.Errorf("secret %s: binary secrets are not supported", name)
	}
	s.resolved[name] = *out.SecretString
	return *out.SecretString, nil
}

// GetSecretJSON decodes a JSON secret into out.
func (s *SecretsClient) GetSecretJSON(ctx context.Context, name string, out any) error {
	raw, err := s.GetSecret(ctx, name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("secret %s is not valid json: %w", name, err)
	}
	return nil
}
