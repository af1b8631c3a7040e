package secrets

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const awsRequestTimeout = 10 * time.Second

// AWSConfig holds configuration for AWS Secrets Manager
type AWSConfig struct {
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access_key_id,omitempty"`
	SecretAccessKey string `yaml:"secret_access_key,omitempty"`
	SecretName      string `yaml:"secret_name"`
	Endpoint        string `yaml:"endpoint,omitempty"` // LocalStack or other custom endpoints
}

// Validate checks if the AWSConfig has all required fields set.
// Static credentials are optional; the default credential chain is used otherwise.
func (a AWSConfig) Validate() error {
	if a.Region == "" {
		return errors.New("AWS region is required")
	}
	if a.SecretName == "" {
		return errors.New("AWS secret name is required")
	}
	if (a.AccessKeyID == "") != (a.SecretAccessKey == "") {
		return errors.New("AWS access_key_id and secret_access_key must be set together")
	}
	return nil
}

// CreateClient creates an AWS Secrets Manager client from this config.
func (a AWSConfig) CreateClient() (*secretsmanager.Client, error) {
	if err := a.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid AWS configuration")
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(a.Region),
	}
	if a.Endpoint != "" {
		opts = append(opts, config.WithBaseEndpoint(a.Endpoint))
	}
	if a.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(a.AccessKeyID, a.SecretAccessKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load AWS configuration")
	}
	return secretsmanager.NewFromConfig(cfg), nil
}

// SecretsManagerAPI is the subset of *secretsmanager.Client used by AWSResolver.
type SecretsManagerAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// AWSResolver retrieves values from one AWS Secrets Manager secret. A JSON object
// secret is indexed by key; any other secret string is returned whole and the key
// is ignored.
//
//	password: ${aws:DATABASE_PASSWORD}
type AWSResolver struct {
	client     SecretsManagerAPI
	secretName string
}

// NewAWSResolver creates a resolver for secretName
func NewAWSResolver(client SecretsManagerAPI, secretName string) *AWSResolver {
	return &AWSResolver{client: client, secretName: secretName}
}

// Resolve retrieves key from the configured secret
func (a *AWSResolver) Resolve(key string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), awsRequestTimeout)
	defer cancel()

	result, err := a.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(a.secretName),
	})
	if err != nil {
		return "", errors.Wrapf(err, "failed to read secret %q from AWS Secrets Manager", a.secretName)
	}
	if result.SecretString == nil {
		return "", errors.Errorf("secret %q has no string value", a.secretName)
	}

	secretString := *result.SecretString

	var fields map[string]interface{}
	if err := json.Unmarshal([]byte(secretString), &fields); err == nil {
		value, ok := fields[key].(string)
		if !ok {
			return "", errors.Errorf("key %q not found in AWS secret %q", key, a.secretName)
		}
		log.Debug().
			Str("secret_name", a.secretName).
			Str("key", key).
			Msg("Retrieved secret from AWS Secrets Manager")
		return value, nil
	}

	log.Debug().
		Str("secret_name", a.secretName).
		Msg("Retrieved plain text secret from AWS Secrets Manager")
	return secretString, nil
}

// Name returns the resolver name
func (a *AWSResolver) Name() string {
	return "AWS Secrets Manager"
}
