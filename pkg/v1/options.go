package v1

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	configFile string
	journalDir string
	project    string
}

// WithConfigFile reads client configuration from a specific file instead of
// the default ~/.devdaily/config.yaml.
func WithConfigFile(path string) Option {
	return func(c *clientConfig) {
		c.configFile = path
	}
}

// WithJournalDir overrides the directory the journal is stored in.
func WithJournalDir(dir string) Option {
	return func(c *clientConfig) {
		c.journalDir = dir
	}
}

// WithProject pins every call to a project ID instead of deriving it from
// the working directory's repository.
func WithProject(id string) Option {
	return func(c *clientConfig) {
		c.project = id
	}
}
