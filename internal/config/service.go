package config

// ConfigService implements the Service interface on top of a Repo
type ConfigService struct {
	repo Repo
}

// NewConfigService returns a new instance of ConfigService
func NewConfigService(repo Repo) *ConfigService {
	return &ConfigService{repo: repo}
}

// Get returns a config by name
func (s *ConfigService) Get(name string) (*Config, error) {
	return s.repo.Get(name)
}

// GetAll returns all stored configs
func (s *ConfigService) GetAll() ([]*Config, error) {
	return s.repo.GetAll()
}

// Create creates a new config
func (s *ConfigService) Create(conf *Config) (*Config, error) {
	return s.repo.Create(conf)
}

// Update updates an existing config
func (s *ConfigService) Update(conf *Config) (*Config, error) {
	return s.repo.Update(conf)
}

// Delete removes a config by name
func (s *ConfigService) Delete(name string) error {
	return s.repo.Delete(name)
}

// SetLastLoaded marks a config as the most recently loaded
func (s *ConfigService) SetLastLoaded(name string) error {
	return s.repo.SetLastLoaded(name)
}

// LastLoaded returns the most recently loaded config
func (s *ConfigService) LastLoaded() (*Config, error) {
	return s.repo.LastLoaded()
}
