package config

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"lookbook/internal/auth"
)

const (
	DefaultAPIURL       = "http://127.0.0.1:7480"
	DefaultLogLevel     = "info"
	DefaultStoreBackend = "sqlite"
	DefaultDataDirName  = ".lookbook"
	ConfigFileName      = ".lookbook.toml"

	DefaultDescriptionMaxBytes    = 500
	DefaultMaxDimension           = 1280
	DefaultQuality                = 1.0
	DefaultUploadTimeout          = "2m"
	DefaultPropagationConcurrency = 8

	DefaultMaxRequestBytes    int64 = 64 * 1024 * 1024
	DefaultMultipartMaxMemory int64 = 8 * 1024 * 1024

	configDirEnvKey          = "LOOKBOOK_CONFIG_DIR"
	trustProjectConfigEnvKey = "LOOKBOOK_TRUST_PROJECT_CONFIG"

	apiURLEnvKey            = "LOOKBOOK_API_URL"
	storeBackendEnvKey      = "LOOKBOOK_STORE_BACKEND"
	storePathEnvKey         = "LOOKBOOK_STORE_PATH"
	blobRootEnvKey          = "LOOKBOOK_BLOB_ROOT"
	allowedMediaTypesEnvKey = "LOOKBOOK_ALLOWED_ITEM_MEDIA_TYPES"
)

// DefaultAllowedItemMediaTypes is the item picture allow-list used when none is configured.
var DefaultAllowedItemMediaTypes = []string{"image/avif", "image/jpeg", "image/png", "image/webp"}

// StoreConfig selects the document store backend.
type StoreConfig struct {
	Backend string `toml:"backend"`
	Path    string `toml:"path"`
}

// BlobConfig locates the object store.
type BlobConfig struct {
	Root      string `toml:"root"`
	PublicURL string `toml:"public_url"`
}

// UploadConfig tunes the upload workflow and its HTTP intake.
type UploadConfig struct {
	AllowedItemMediaTypes  []string `toml:"allowed_item_media_types"`
	DescriptionMaxBytes    int      `toml:"description_max_bytes"`
	MaxDimension           int      `toml:"max_dimension"`
	Quality                float64  `toml:"quality"`
	Timeout                string   `toml:"timeout"`
	PropagationConcurrency int      `toml:"propagation_concurrency"`
	MaxRequestBytes        int64    `toml:"max_request_bytes"`
	MultipartMaxMemory     int64    `toml:"multipart_max_memory"`
}

// AuthConfig protects mutating routes when a curator password hash is set.
type AuthConfig struct {
	CuratorPasswordHash string `toml:"curator_password_hash"`
}

// Config defines runtime configuration for lookbook.
type Config struct {
	APIURL                   string       `toml:"api_url"`
	LogLevel                 string       `toml:"log_level"`
	Store                    StoreConfig  `toml:"store"`
	Blobs                    BlobConfig   `toml:"blobs"`
	Upload                   UploadConfig `toml:"upload"`
	Auth                     AuthConfig   `toml:"auth"`
	TrustedProjectConfigPath string       `toml:"-"`
}

// Default returns default configuration values. Paths stay empty until Load
// resolves them against the working directory.
func Default() Config {
	return Config{
		APIURL:   DefaultAPIURL,
		LogLevel: DefaultLogLevel,
		Store:    StoreConfig{Backend: DefaultStoreBackend},
		Upload: UploadConfig{
			AllowedItemMediaTypes:  append([]string(nil), DefaultAllowedItemMediaTypes...),
			DescriptionMaxBytes:    DefaultDescriptionMaxBytes,
			MaxDimension:           DefaultMaxDimension,
			Quality:                DefaultQuality,
			Timeout:                DefaultUploadTimeout,
			PropagationConcurrency: DefaultPropagationConcurrency,
			MaxRequestBytes:        DefaultMaxRequestBytes,
			MultipartMaxMemory:     DefaultMultipartMaxMemory,
		},
	}
}

// UploadTimeout parses upload.timeout. Invalid values fall back to the default.
func (c *Config) UploadTimeout() time.Duration {
	if d, err := time.ParseDuration(strings.TrimSpace(c.Upload.Timeout)); err == nil && d > 0 {
		return d
	}
	d, _ := time.ParseDuration(DefaultUploadTimeout)
	return d
}

func loadFile(path string, cfg *Config) error {
	_, err := loadFileIfExists(path, cfg)
	return err
}

func loadFileIfExists(path string, cfg *Config) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if info.IsDir() {
		return false, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return false, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return true, nil
}

func overrideConfigPath() (string, bool) {
	dir := strings.TrimSpace(os.Getenv(configDirEnvKey))
	if dir == "" {
		return "", false
	}
	return filepath.Join(dir, ConfigFileName), true
}

func trustProjectConfig() bool {
	raw := strings.TrimSpace(os.Getenv(trustProjectConfigEnvKey))
	if raw == "" {
		return false
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false
	}
	return value
}

var allowedKeys = []string{
	"api_url",
	"log_level",
	"store.backend",
	"store.path",
	"blobs.root",
	"blobs.public_url",
	"upload.allowed_item_media_types",
	"upload.description_max_bytes",
	"upload.max_dimension",
	"upload.quality",
	"upload.timeout",
	"upload.propagation_concurrency",
	"upload.max_request_bytes",
	"upload.multipart_max_memory",
	"auth.curator_password_hash",
}

// AllowedKeys returns the set of valid config keys.
func AllowedKeys() []string {
	return allowedKeys
}

// IsAllowedKey checks if a key is a valid config key.
func IsAllowedKey(key string) bool {
	for _, k := range allowedKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Get returns the value of a config key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "api_url":
		return c.APIURL, nil
	case "log_level":
		return c.LogLevel, nil
	case "store.backend":
		return c.Store.Backend, nil
	case "store.path":
		return c.Store.Path, nil
	case "blobs.root":
		return c.Blobs.Root, nil
	case "blobs.public_url":
		return c.Blobs.PublicURL, nil
	case "upload.allowed_item_media_types":
		return strings.Join(c.Upload.AllowedItemMediaTypes, ","), nil
	case "upload.description_max_bytes":
		return strconv.Itoa(c.Upload.DescriptionMaxBytes), nil
	case "upload.max_dimension":
		return strconv.Itoa(c.Upload.MaxDimension), nil
	case "upload.quality":
		return strconv.FormatFloat(c.Upload.Quality, 'g', -1, 64), nil
	case "upload.timeout":
		return c.Upload.Timeout, nil
	case "upload.propagation_concurrency":
		return strconv.Itoa(c.Upload.PropagationConcurrency), nil
	case "upload.max_request_bytes":
		return strconv.FormatInt(c.Upload.MaxRequestBytes, 10), nil
	case "upload.multipart_max_memory":
		return strconv.FormatInt(c.Upload.MultipartMaxMemory, 10), nil
	case "auth.curator_password_hash":
		return c.Auth.CuratorPasswordHash, nil
	default:
		return "", fmt.Errorf("unknown key: %s", key)
	}
}

// GlobalPath returns the path to the global config file.
func GlobalPath() (string, error) {
	if path, ok := overrideConfigPath(); ok {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ConfigFileName), nil
}

// ProjectPath returns the path to the project config file.
func ProjectPath() (string, error) {
	if path, ok := overrideConfigPath(); ok {
		return path, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, ConfigFileName), nil
}

// SetKey reads the TOML file at path, sets key=value, and writes it back.
func SetKey(path, key, value string) error {
	if !IsAllowedKey(key) {
		return fmt.Errorf("unknown key: %s", key)
	}

	data := make(map[string]any)
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &data); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	}

	parsedValue, err := parseSetValue(key, value)
	if err != nil {
		return err
	}
	if err := setNestedKey(data, strings.Split(key, "."), parsedValue); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(data)
}

// Load reads config from trusted files and applies env overrides.
func Load() (*Config, error) {
	cfg := Default()

	if overridePath, ok := overrideConfigPath(); ok {
		if err := loadFile(overridePath, &cfg); err != nil {
			return nil, err
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			if err := loadFile(filepath.Join(home, ConfigFileName), &cfg); err != nil {
				return nil, err
			}
		}

		if trustProjectConfig() {
			if cwd, err := os.Getwd(); err == nil {
				projectPath := filepath.Join(cwd, ConfigFileName)
				info, statErr := os.Stat(projectPath)
				switch {
				case statErr == nil && !info.IsDir():
					if err := loadFile(projectPath, &cfg); err != nil {
						return nil, err
					}
					cfg.TrustedProjectConfigPath = projectPath
				case statErr != nil && !os.IsNotExist(statErr):
					return nil, statErr
				}
			}
		}
	}

	if apiURL := os.Getenv(apiURLEnvKey); apiURL != "" {
		cfg.APIURL = apiURL
	}
	if backend := strings.TrimSpace(os.Getenv(storeBackendEnvKey)); backend != "" {
		cfg.Store.Backend = backend
	}
	if path := os.Getenv(storePathEnvKey); path != "" {
		cfg.Store.Path = path
	}
	if root := os.Getenv(blobRootEnvKey); root != "" {
		cfg.Blobs.Root = root
	}
	if raw := strings.TrimSpace(os.Getenv(allowedMediaTypesEnvKey)); raw != "" {
		cfg.Upload.AllowedItemMediaTypes = splitCSV(raw)
	}

	cfg.normalize()
	return &cfg, nil
}

// DefaultStorePath returns the store location used for backend under dataDir.
func DefaultStorePath(backend, dataDir string) string {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "badger":
		return filepath.Join(dataDir, "badger")
	case "bolt":
		return filepath.Join(dataDir, "lookbook.bolt")
	default:
		return filepath.Join(dataDir, "lookbook.db")
	}
}

func parseSetValue(key, value string) (any, error) {
	value = strings.TrimSpace(value)
	switch key {
	case "upload.max_request_bytes", "upload.multipart_max_memory":
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("%s must be a positive integer", key)
		}
		return parsed, nil
	case "upload.description_max_bytes", "upload.max_dimension", "upload.propagation_concurrency":
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("%s must be a positive integer", key)
		}
		return parsed, nil
	case "upload.quality":
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil || parsed <= 0 || parsed > 1 {
			return nil, fmt.Errorf("%s must be a number in (0, 1]", key)
		}
		return parsed, nil
	case "upload.timeout":
		parsed, err := time.ParseDuration(value)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("%s must be a positive duration such as 90s", key)
		}
		return value, nil
	case "store.backend":
		switch strings.ToLower(value) {
		case "sqlite", "badger", "bolt", "memory":
			return strings.ToLower(value), nil
		}
		return nil, fmt.Errorf("%s must be one of sqlite, badger, bolt, memory", key)
	case "upload.allowed_item_media_types":
		return splitCSV(value), nil
	case "auth.curator_password_hash":
		if value != "" && !auth.ValidHash(value) {
			return nil, fmt.Errorf("%s must be a bcrypt hash; generate one with: lookbook admin hash-password", key)
		}
		return value, nil
	default:
		return value, nil
	}
}

func setNestedKey(data map[string]any, parts []string, value any) error {
	if len(parts) == 0 {
		return fmt.Errorf("invalid config key")
	}
	if len(parts) == 1 {
		data[parts[0]] = value
		return nil
	}
	childRaw, ok := data[parts[0]]
	if !ok {
		child := map[string]any{}
		data[parts[0]] = child
		return setNestedKey(child, parts[1:], value)
	}
	child, ok := childRaw.(map[string]any)
	if !ok {
		return fmt.Errorf("cannot set nested key %q", strings.Join(parts, "."))
	}
	return setNestedKey(child, parts[1:], value)
}

func splitCSV(value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

func (c *Config) normalize() {
	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = DefaultLogLevel
	}
	if strings.TrimSpace(c.Store.Backend) == "" {
		c.Store.Backend = DefaultStoreBackend
	}
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))

	dataDir := DefaultDataDirName
	if cwd, err := os.Getwd(); err == nil {
		dataDir = filepath.Join(cwd, DefaultDataDirName)
	}
	if c.Store.Path == "" && c.Store.Backend != "memory" {
		c.Store.Path = DefaultStorePath(c.Store.Backend, dataDir)
	}
	if c.Blobs.Root == "" {
		c.Blobs.Root = filepath.Join(dataDir, "blobs")
	}

	u := &c.Upload
	if u.DescriptionMaxBytes <= 0 {
		u.DescriptionMaxBytes = DefaultDescriptionMaxBytes
	}
	if u.MaxDimension <= 0 {
		u.MaxDimension = DefaultMaxDimension
	}
	if u.Quality <= 0 || u.Quality > 1 {
		u.Quality = DefaultQuality
	}
	if strings.TrimSpace(u.Timeout) == "" {
		u.Timeout = DefaultUploadTimeout
	}
	if u.PropagationConcurrency <= 0 {
		u.PropagationConcurrency = DefaultPropagationConcurrency
	}
	if u.MaxRequestBytes <= 0 {
		u.MaxRequestBytes = DefaultMaxRequestBytes
	}
	if u.MultipartMaxMemory <= 0 {
		u.MultipartMaxMemory = DefaultMultipartMaxMemory
	}
	u.AllowedItemMediaTypes = normalizeConfiguredMediaTypes(u.AllowedItemMediaTypes)
	if len(u.AllowedItemMediaTypes) == 0 {
		u.AllowedItemMediaTypes = append([]string(nil), DefaultAllowedItemMediaTypes...)
	}
}

func normalizeConfiguredMediaTypes(rawValues []string) []string {
	if len(rawValues) == 0 {
		return nil
	}
	out := make([]string, 0, len(rawValues))
	seen := map[string]struct{}{}
	for _, raw := range rawValues {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		parsed, _, err := mime.ParseMediaType(raw)
		if err != nil {
			continue
		}
		normalized := strings.ToLower(strings.TrimSpace(parsed))
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	sort.Strings(out)
	if len(out) == 0 {
		return nil
	}
	return out
}
