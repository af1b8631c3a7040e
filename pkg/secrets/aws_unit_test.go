//go:build unit

package secrets

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"
)

type fakeSecretsManager struct {
	output *secretsmanager.GetSecretValueOutput
	err    error
	ids    []string
}

func (f *fakeSecretsManager) GetSecretValue(_ context.Context, in *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	f.ids = append(f.ids, aws.ToString(in.SecretId))
	return f.output, f.err
}

var _ = Describe("AWS Secrets", func() {
	Context("AWSConfig Validate", func() {
		It("should return error if region is empty", func() {
			err := AWSConfig{SecretName: "kernel"}.Validate()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("AWS region is required"))
		})

		It("should return error if secret name is empty", func() {
			err := AWSConfig{Region: "us-east-1"}.Validate()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("AWS secret name is required"))
		})

		It("should require both static credential parts", func() {
			err := AWSConfig{Region: "us-east-1", SecretName: "kernel", AccessKeyID: "key"}.Validate()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("must be set together"))
		})

		It("should pass with valid config", func() {
			err := AWSConfig{
				Region:          "us-east-1",
				AccessKeyID:     "key",
				SecretAccessKey: "secret",
				SecretName:      "kernel",
			}.Validate()
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Context("AWSConfig CreateClient", func() {
		It("should create a client with static credentials and endpoint", func() {
			client, err := AWSConfig{
				Region:          "us-east-1",
				AccessKeyID:     "test",
				SecretAccessKey: "test",
				SecretName:      "kernel",
				Endpoint:        "http://localhost:4566",
			}.CreateClient()
			Expect(err).NotTo(HaveOccurred())
			Expect(client).NotTo(BeNil())
		})

		It("should reject invalid config", func() {
			client, err := AWSConfig{}.CreateClient()
			Expect(err).To(HaveOccurred())
			Expect(client).To(BeNil())
		})
	})

	Context("AWSResolver Resolve", func() {
		It("should index JSON secrets by key", func() {
			fake := &fakeSecretsManager{output: &secretsmanager.GetSecretValueOutput{
				SecretString: aws.String(`{"db_password":"json-secret","port":5432}`),
			}}
			resolver := NewAWSResolver(fake, "kernel/prod")

			value, err := resolver.Resolve("db_password")
			Expect(err).NotTo(HaveOccurred())
			Expect(value).To(Equal("json-secret"))
			Expect(fake.ids).To(Equal([]string{"kernel/prod"}))
		})

		It("should fail for missing or non-string JSON keys", func() {
			fake := &fakeSecretsManager{output: &secretsmanager.GetSecretValueOutput{
				SecretString: aws.String(`{"port":5432}`),
			}}
			resolver := NewAWSResolver(fake, "kernel/prod")

			_, err := resolver.Resolve("port")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring(`key "port" not found`))
		})

		It("should return plain text secrets whole", func() {
			fake := &fakeSecretsManager{output: &secretsmanager.GetSecretValueOutput{
				SecretString: aws.String("plain-token"),
			}}

			value, err := NewAWSResolver(fake, "kernel/token").Resolve("ignored")
			Expect(err).NotTo(HaveOccurred())
			Expect(value).To(Equal("plain-token"))
		})

		It("should fail for binary secrets", func() {
			fake := &fakeSecretsManager{output: &secretsmanager.GetSecretValueOutput{SecretBinary: []byte{1, 2}}}

			_, err := NewAWSResolver(fake, "kernel/bin").Resolve("key")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("has no string value"))
		})

		It("should wrap client errors", func() {
			fake := &fakeSecretsManager{err: errors.New("access denied")}

			_, err := NewAWSResolver(fake, "kernel/prod").Resolve("key")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("access denied"))
		})
	})
})
