// Package config holds the suite configuration: target urls, encrypted
// credentials, browser and run settings. It is read from `e2e.json5` (plus an
// optional `e2e.local.json5`) and then overridden by environment variables,
// which may come from a `.env` file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"storefront-e2e/lib/cipher"
	"storefront-e2e/lib/configutil"
	"storefront-e2e/lib/telemetry"

	"github.com/joho/godotenv"
)

const FileName = "e2e.json5"

// timeouts used by page objects and action wrappers
const (
	InstantTimeout  = 1 * time.Second
	SmallTimeout    = 5 * time.Second
	StandardTimeout = 15 * time.Second
	BigTimeout      = 30 * time.Second
	MaxTimeout      = 15 * time.Second
)

type Storefront struct {
	BaseUrl        string `json:"base_url"`
	Username       string `json:"username"`
	Password       string `json:"password"`
	MyAccountTitle string `json:"my_account_title"`
}

type Bookstore struct {
	BaseUrl           string `json:"base_url"`
	CreateUserPath    string `json:"create_user_path"`
	GenerateTokenPath string `json:"generate_token_path"`
	BooksPath         string `json:"books_path"`
	BookPath          string `json:"book_path"`
	Password          string `json:"password"`
	CloudflareBypass  bool   `json:"cloudflare_bypass"`
}

type Browser struct {
	Name         string `json:"name"`
	Headless     *bool  `json:"headless"`
	Screenshots  *bool  `json:"screenshots"`
	StorageState string `json:"storage_state"`
}

func (b Browser) IsHeadless() bool {
	return b.Headless == nil || *b.Headless
}

func (b Browser) ScreenshotsEnabled() bool {
	return b.Screenshots == nil || *b.Screenshots
}

type Run struct {
	UIWorkers         int      `json:"ui_workers"`
	APIWorkers        int      `json:"api_workers"`
	Retries           *int     `json:"retries"`
	Timeout           Duration `json:"timeout"`
	VisibilityTimeout Duration `json:"visibility_timeout"`
}

func (r Run) RetryCount() int {
	if r.Retries == nil {
		return 2
	}
	return *r.Retries
}

type Smtp struct {
	Server   string   `json:"server"`
	Port     int      `json:"port"`
	From     string   `json:"from"`
	Password string   `json:"password"`
	To       []string `json:"to"`
}

type Report struct {
	HistoryDB string `json:"history_db"`
	Email     Smtp   `json:"email"`
}

type Config struct {
	Storefront    Storefront       `json:"storefront"`
	Bookstore     Bookstore        `json:"bookstore"`
	EncryptionKey string           `json:"encryption_key"`
	Browser       Browser          `json:"browser"`
	Run           Run              `json:"run"`
	DataDir       string           `json:"data_dir"`
	ResultsDir    string           `json:"results_dir"`
	Report        Report           `json:"report"`
	Telemetry     telemetry.Config `json:"telemetry"`

	// directory the config file was found in, relative paths resolve against it
	root string
}

// Duration accepts either a go duration string ("30s") or milliseconds.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	if ms, err := strconv.ParseFloat(s, 64); err == nil {
		*d = Duration(time.Duration(ms * float64(time.Millisecond)))
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Load finds e2e.json5 by walking up from the cwd, loads `.env` next to it
// (if any) and applies environment overrides. A missing config file is not an
// error as long as the environment provides the values.
func Load() (Config, error) {
	cfg, path, err := configutil.ReadRecursively[Config](FileName)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}
	root, _ := os.Getwd()
	if path != "" {
		root = filepath.Dir(path)
	}
	return finish(cfg, root)
}

// LoadFile is Load for an explicit config path.
func LoadFile(path string) (Config, error) {
	cfg, err := configutil.ReadConfig[Config](path)
	if err != nil {
		return Config{}, err
	}
	return finish(cfg, filepath.Dir(path))
}

func finish(cfg Config, root string) (Config, error) {
	envFile := filepath.Join(root, ".env")
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	cfg.root = root
	cfg.ApplyEnv(os.LookupEnv)
	cfg.applyDefaults()
	return cfg, nil
}

// ApplyEnv overrides config values with the environment variable names used
// by the original dotenv setup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(target *string, key string) {
		if v, ok := lookup(key); ok && v != "" {
			*target = v
		}
	}
	set(&c.Storefront.BaseUrl, "Base_URL")
	set(&c.Storefront.Username, "Default_Username")
	set(&c.Storefront.Password, "Default_Password")
	set(&c.Storefront.MyAccountTitle, "PageTitleMyAccountPage")
	set(&c.EncryptionKey, "ENCRYPTION_KEY")
	set(&c.Bookstore.BaseUrl, "API_BASE_URL")
	set(&c.Bookstore.CreateUserPath, "API_CreateUser_URL")
	set(&c.Bookstore.GenerateTokenPath, "API_GenerateToken_URL")
	set(&c.Bookstore.BooksPath, "API_GetBook_URL")
	set(&c.Bookstore.BookPath, "API_DeleteBook_URL")
	set(&c.Bookstore.Password, "API_Password")
	if v, ok := lookup("HEADLESS"); ok && v != "" {
		headless := v != "false"
		c.Browser.Headless = &headless
	}
}

func (c *Config) applyDefaults() {
	if c.Browser.Name == "" {
		c.Browser.Name = "chromium"
	}
	if c.DataDir == "" {
		c.DataDir = "test-data"
	}
	if c.ResultsDir == "" {
		c.ResultsDir = "test-results"
	}
	if c.Browser.StorageState == "" {
		c.Browser.StorageState = filepath.Join(c.ResultsDir, "state.json")
	}
	if c.Run.UIWorkers <= 0 {
		c.Run.UIWorkers = 1
	}
	if c.Run.APIWorkers <= 0 {
		c.Run.APIWorkers = 2
	}
	if c.Run.VisibilityTimeout == 0 {
		c.Run.VisibilityTimeout = Duration(SmallTimeout)
	}
	if c.Report.HistoryDB == "" {
		c.Report.HistoryDB = filepath.Join(c.ResultsDir, "history.db")
	}
	if c.Bookstore.CreateUserPath == "" {
		c.Bookstore.CreateUserPath = "/Account/v1/User"
	}
	if c.Bookstore.GenerateTokenPath == "" {
		c.Bookstore.GenerateTokenPath = "/Account/v1/GenerateToken"
	}
	if c.Bookstore.BooksPath == "" {
		c.Bookstore.BooksPath = "/BookStore/v1/Books"
	}
	if c.Bookstore.BookPath == "" {
		c.Bookstore.BookPath = "/BookStore/v1/Book"
	}
}

// Resolve makes a config-relative path absolute.
func (c Config) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || c.root == "" {
		return path
	}
	return filepath.Join(c.root, path)
}

// Validate reports every missing field the given suite needs.
func (c Config) Validate(suite string) error {
	var missing []string
	require := func(v, name string) {
		if v == "" {
			missing = append(missing, name)
		}
	}
	require(c.EncryptionKey, "encryption_key")
	switch suite {
	case "storefront":
		require(c.Storefront.BaseUrl, "storefront.base_url")
		require(c.Storefront.Username, "storefront.username")
		require(c.Storefront.Password, "storefront.password")
		require(c.Storefront.MyAccountTitle, "storefront.my_account_title")
	case "bookstore":
		require(c.Bookstore.BaseUrl, "bookstore.base_url")
		require(c.Bookstore.Password, "bookstore.password")
	default:
		return fmt.Errorf("unknown suite %q", suite)
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing configuration for %s: %s", suite, strings.Join(missing, ", "))
	}
	return nil
}

// StorefrontPassword decrypts the storefront login password.
func (c Config) StorefrontPassword() (string, error) {
	return cipher.Decrypt(c.Storefront.Password, c.EncryptionKey)
}

// BookstorePassword decrypts the password used for every API user.
func (c Config) BookstorePassword() (string, error) {
	return cipher.Decrypt(c.Bookstore.Password, c.EncryptionKey)
}

// SmtpPassword decrypts the report mailer password. An empty password means
// the server takes mail without authentication.
func (c Config) SmtpPassword() (string, error) {
	if c.Report.Email.Password == "" {
		return "", nil
	}
	return cipher.Decrypt(c.Report.Email.Password, c.EncryptionKey)
}
