//go:build unit

package secrets

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("FileResolver", func() {
	var (
		secretsDir string
		registry   *Registry
	)

	writeSecret := func(name, content string) {
		path := filepath.Join(secretsDir, name)
		Expect(os.MkdirAll(filepath.Dir(path), 0o700)).To(Succeed())
		Expect(os.WriteFile(path, []byte(content), 0o600)).To(Succeed())
	}

	BeforeEach(func() {
		secretsDir = filepath.Join(GinkgoT().TempDir(), "run-secrets")
		Expect(os.Mkdir(secretsDir, 0o700)).To(Succeed())

		resolver, err := FileConfig{SecretsDir: secretsDir}.CreateClient()
		Expect(err).NotTo(HaveOccurred())
		registry = NewRegistry()
		registry.Register("file", resolver)
	})

	Context("FileConfig", func() {
		It("should require secrets_dir", func() {
			Expect(FileConfig{}.Validate()).To(MatchError(ContainSubstring("secrets_dir is required")))
		})

		It("should reject a missing directory", func() {
			_, err := FileConfig{SecretsDir: filepath.Join(secretsDir, "absent")}.CreateClient()
			Expect(err).To(MatchError(ContainSubstring("does not exist")))
		})

		It("should reject a regular file", func() {
			writeSecret("kernel.key", "x")
			err := FileConfig{SecretsDir: filepath.Join(secretsDir, "kernel.key")}.Validate()
			Expect(err).To(MatchError(ContainSubstring("is not a directory")))
		})
	})

	Context("file: placeholders", func() {
		It("should resolve the trimmed file content", func() {
			writeSecret("db_password", "  s3cr3t\n")

			value, err := registry.Resolve("file:db_password")
			Expect(err).NotTo(HaveOccurred())
			Expect(value).To(Equal("s3cr3t"))
		})

		It("should resolve nested names and keep colons after the prefix", func() {
			writeSecret(filepath.Join("carbon", "keystore:pass"), `wso2\carbon`)

			value, err := registry.Resolve("file:carbon/keystore:pass")
			Expect(err).NotTo(HaveOccurred())
			Expect(value).To(Equal(`wso2\carbon`))
		})

		It("should name the missing file and directory", func() {
			_, err := registry.Resolve("file:vault_token")
			Expect(err).To(MatchError(ContainSubstring(`secret file "vault_token" does not exist in ` + secretsDir)))
			Expect(err).To(MatchError(ContainSubstring(`failed to resolve "file:vault_token" using File resolver`)))
		})

		It("should reject an empty name", func() {
			_, err := registry.Resolve("file: ")
			Expect(err).To(MatchError(ContainSubstring("empty secret file name")))
		})

		DescribeTable("should reject names outside the secrets directory",
			func(name string) {
				_, err := registry.Resolve("file:" + name)
				Expect(err).To(MatchError(ContainSubstring("must be a relative path inside")))
			},
			Entry("parent directory", "../carbon.xml"),
			Entry("nested climb", "conf/../../carbon.xml"),
			Entry("absolute path", "/etc/passwd"),
		)

		It("should not follow symlinks out of the secrets directory", func() {
			outside := filepath.Join(filepath.Dir(secretsDir), "carbon.xml")
			Expect(os.WriteFile(outside, []byte("<Server/>"), 0o600)).To(Succeed())
			Expect(os.Symlink(outside, filepath.Join(secretsDir, "server_config"))).To(Succeed())

			_, err := registry.Resolve("file:server_config")
			Expect(err).To(MatchError(ContainSubstring(`failed to read secret file "server_config"`)))
		})

		It("should fail without a secrets directory", func() {
			_, err := NewFileResolver("").Resolve("db_password")
			Expect(err).To(MatchError(ContainSubstring("no secrets directory")))
		})
	})
})
