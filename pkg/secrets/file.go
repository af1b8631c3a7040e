package secrets

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// FileConfig configures the file-based resolver
type FileConfig struct {
	SecretsDir string `yaml:"secrets_dir"`
}

// Validate checks that the secrets directory is set and is an existing directory
func (f FileConfig) Validate() error {
	if f.SecretsDir == "" {
		return errors.New("secrets_dir is required for file resolver")
	}

	info, err := os.Stat(f.SecretsDir)
	if os.IsNotExist(err) {
		return errors.Errorf("secrets_dir %q does not exist", f.SecretsDir)
	}
	if err != nil {
		return errors.Wrapf(err, "error accessing secrets_dir %q", f.SecretsDir)
	}
	if !info.IsDir() {
		return errors.Errorf("secrets_dir %q is not a directory", f.SecretsDir)
	}
	return nil
}

// CreateClient validates the config and returns a FileResolver for it.
func (f FileConfig) CreateClient() (*FileResolver, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return NewFileResolver(f.SecretsDir), nil
}

// FileResolver serves ${file:<name>} placeholders from files in a secrets
// directory, as mounted by Docker or Kubernetes secrets.
//
//	password: ${file:db_password}  # contents of <secretsDir>/db_password
//
// name must be a local path: absolute names and names climbing out of the
// directory are rejected, and reads go through an os.Root so symlinks cannot
// escape it either. Surrounding whitespace of the content is dropped.
type FileResolver struct {
	secretsDir string
}

// NewFileResolver creates a resolver reading from secretsDir
func NewFileResolver(secretsDir string) *FileResolver {
	return &FileResolver{secretsDir: secretsDir}
}

// Resolve returns the trimmed content of the file called name.
func (f *FileResolver) Resolve(name string) (string, error) {
	if f.secretsDir == "" {
		return "", errors.New("file resolver has no secrets directory")
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("empty secret file name")
	}
	if !filepath.IsLocal(name) {
		return "", errors.Errorf("secret file name %q must be a relative path inside %s", name, f.secretsDir)
	}

	root, err := os.OpenRoot(f.secretsDir)
	if err != nil {
		return "", errors.Wrapf(err, "failed to open secrets directory %s", f.secretsDir)
	}
	defer func() { _ = root.Close() }()

	content, err := root.ReadFile(name)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "", errors.Errorf("secret file %q does not exist in %s", name, f.secretsDir)
	case err != nil:
		return "", errors.Wrapf(err, "failed to read secret file %q", name)
	}

	log.Debug().Str("secrets_dir", f.secretsDir).Str("file", name).Msg("Resolved secret file")
	return strings.TrimSpace(string(content)), nil
}

// Name returns the resolver name
func (f *FileResolver) Name() string {
	return "File"
}
