package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config stores every knob of the dataset/training pipeline. Values are layered:
// defaults, then the YAML file, then .env and process environment, then CLI flags.
type Config struct {
	Corpus   Corpus   `yaml:"corpus"`
	Features Features `yaml:"features"`
	Cache    Cache    `yaml:"cache"`
	Model    Model    `yaml:"model"`
	Build    Build    `yaml:"build"`
	Redis    Redis    `yaml:"redis"`
	Minio    Minio    `yaml:"minio"`
	DB       DB       `yaml:"db"`
	Log      Log      `yaml:"log"`
}

// Corpus locates the waveform and annotation directories.
type Corpus struct {
	Root          string `yaml:"root"`
	AudioDir      string `yaml:"audio_dir"`      // relative to Root unless absolute
	AnnotationDir string `yaml:"annotation_dir"` // relative to Root unless absolute
}

// Features holds the extraction parameters that shape the dataset.
type Features struct {
	OverSamplingRate float64 `yaml:"over_sampling_rate"`
	NFFT             int     `yaml:"n_fft"`
	SampleRate       int     `yaml:"sample_rate"` // ffmpeg resamples to it, wav rejects other rates
	Loader           string  `yaml:"loader"`      // "wav" or "ffmpeg"
	FFmpegPath       string  `yaml:"ffmpeg_path"`
}

type Cache struct {
	Backend string        `yaml:"backend"` // file, redis, minio, badger, none
	Path    string        `yaml:"path"`    // file path or badger directory
	TTL     time.Duration `yaml:"ttl"`     // redis only; 0 keeps forever
}

type Model struct {
	Path        string `yaml:"path"`
	Upload      bool   `yaml:"upload"` // also push the artifact to MinIO
	Trees       int    `yaml:"trees"`
	MaxDepth    int    `yaml:"max_depth"`
	MinLeaf     int    `yaml:"min_leaf"`
	MaxFeatures int    `yaml:"max_features"`
	Seed        int64  `yaml:"seed"`
}

type Build struct {
	Workers       int  `yaml:"workers"`
	Strict        bool `yaml:"strict"`   // abort the run on the first failing track
	Progress      bool `yaml:"progress"` // render the terminal progress bar
	RecordCatalog bool `yaml:"record_catalog"`
}

type Redis struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type Minio struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type DB struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// Default returns the stock parameters: 48x oversampling, 128-point FFT, 22050 Hz.
func Default() *Config {
	return &Config{
		Corpus: Corpus{
			Root:          "dataset",
			AudioDir:      "musics",
			AnnotationDir: "annotations",
		},
		Features: Features{
			OverSamplingRate: 48,
			NFFT:             128,
			SampleRate:       22050,
			Loader:           "wav",
			FFmpegPath:       "ffmpeg",
		},
		Cache: Cache{
			Backend: "file",
			Path:    filepath.Join("dataset", "xy.gob"),
		},
		Model: Model{
			Path:    filepath.Join("models", "RTF.gob"),
			Trees:   100,
			MinLeaf: 1,
			Seed:    1,
		},
		Build: Build{
			Workers:  1,
			Progress: true,
		},
		Redis: Redis{Host: "127.0.0.1", Port: "6379"},
		Minio: Minio{Bucket: "chordprep"},
		DB:    DB{Host: "127.0.0.1", Port: "3306", User: "root", Name: "chordprep"},
		Log:   Log{Level: "info", Format: "json"},
	}
}

// Load layers the YAML file at path (optional when empty), the .env file and the
// CHORDPREP_* environment over the defaults, then validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config %s: %w", path, err)
		}
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode config %s: %w", path, err)
		}
	}

	// godotenv.Load never overrides variables that are already set
	_ = godotenv.Load()
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func (c *Config) applyEnv() {
	c.Corpus.Root = getEnv("CHORDPREP_CORPUS_ROOT", c.Corpus.Root)
	c.Corpus.AudioDir = getEnv("CHORDPREP_AUDIO_DIR", c.Corpus.AudioDir)
	c.Corpus.AnnotationDir = getEnv("CHORDPREP_ANNOTATION_DIR", c.Corpus.AnnotationDir)

	c.Features.OverSamplingRate = getEnvFloat("CHORDPREP_OVERSAMPLING_RATE", c.Features.OverSamplingRate)
	c.Features.NFFT = getEnvInt("CHORDPREP_N_FFT", c.Features.NFFT)
	c.Features.SampleRate = getEnvInt("CHORDPREP_SAMPLE_RATE", c.Features.SampleRate)
	c.Features.Loader = getEnv("CHORDPREP_LOADER", c.Features.Loader)
	c.Features.FFmpegPath = getEnv("FFMPEG_PATH", c.Features.FFmpegPath)

	c.Cache.Backend = getEnv("CHORDPREP_CACHE_BACKEND", c.Cache.Backend)
	c.Cache.Path = getEnv("CHORDPREP_CACHE_PATH", c.Cache.Path)
	if v, ok := os.LookupEnv("CHORDPREP_CACHE_TTL"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			c.Cache.TTL = d
		}
	}

	c.Model.Path = getEnv("CHORDPREP_MODEL_PATH", c.Model.Path)
	c.Model.Upload = getEnvBool("CHORDPREP_MODEL_UPLOAD", c.Model.Upload)
	c.Model.Trees = getEnvInt("CHORDPREP_TREES", c.Model.Trees)

	c.Build.Workers = getEnvInt("CHORDPREP_WORKERS", c.Build.Workers)
	c.Build.Strict = getEnvBool("CHORDPREP_STRICT", c.Build.Strict)
	c.Build.RecordCatalog = getEnvBool("CHORDPREP_RECORD_CATALOG", c.Build.RecordCatalog)

	c.Redis.Host = getEnv("REDIS_HOST", c.Redis.Host)
	c.Redis.Port = getEnv("REDIS_PORT", c.Redis.Port)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = getEnvInt("REDIS_DB", c.Redis.DB)

	c.Minio.Endpoint = getEnv("MINIO_ENDPOINT", c.Minio.Endpoint)
	c.Minio.AccessKey = getEnv("MINIO_ACCESS_KEY", c.Minio.AccessKey)
	c.Minio.SecretKey = getEnv("MINIO_SECRET_KEY", c.Minio.SecretKey)
	c.Minio.Bucket = getEnv("MINIO_BUCKET", c.Minio.Bucket)
	c.Minio.Region = getEnv("MINIO_REGION", c.Minio.Region)
	c.Minio.UseSSL = getEnvBool("MINIO_USE_SSL", c.Minio.UseSSL)

	c.DB.Host = getEnv("DB_HOST", c.DB.Host)
	c.DB.Port = getEnv("DB_PORT", c.DB.Port)
	c.DB.User = getEnv("DB_USER", c.DB.User)
	c.DB.Password = getEnv("DB_PASSWORD", c.DB.Password)
	c.DB.Name = getEnv("DB_NAME", c.DB.Name)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
	c.Log.File = getEnv("LOG_FILE", c.Log.File)
}

// Validate rejects parameter sets the pipeline cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Features.OverSamplingRate <= 0 {
		errs = append(errs, fmt.Errorf("over_sampling_rate must be positive, got %v", c.Features.OverSamplingRate))
	}
	if c.Features.NFFT < 2 {
		errs = append(errs, fmt.Errorf("n_fft must be at least 2, got %d", c.Features.NFFT))
	}
	if c.Features.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("sample_rate must be positive, got %d", c.Features.SampleRate))
	}
	switch c.Features.Loader {
	case "wav", "ffmpeg":
	default:
		errs = append(errs, fmt.Errorf("unknown loader %q", c.Features.Loader))
	}
	switch c.Cache.Backend {
	case "file", "badger":
		if c.Cache.Path == "" {
			errs = append(errs, fmt.Errorf("cache backend %s needs a path", c.Cache.Backend))
		}
	case "redis", "minio", "none":
	default:
		errs = append(errs, fmt.Errorf("unknown cache backend %q", c.Cache.Backend))
	}
	if c.Model.Trees <= 0 {
		errs = append(errs, fmt.Errorf("trees must be positive, got %d", c.Model.Trees))
	}
	if c.Build.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", c.Build.Workers))
	}
	return errors.Join(errs...)
}

// AudioPath resolves the waveform directory against the corpus root.
func (c *Config) AudioPath() string {
	return c.resolve(c.Corpus.AudioDir)
}

// AnnotationPath resolves the annotation directory against the corpus root.
func (c *Config) AnnotationPath() string {
	return c.resolve(c.Corpus.AnnotationDir)
}

func (c *Config) resolve(dir string) string {
	if filepath.IsAbs(dir) || c.Corpus.Root == "" {
		return dir
	}
	return filepath.Join(c.Corpus.Root, dir)
}

// RedisAddr is the host:port pair for the redis client.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// MySQLDSN is the gorm/mysql connection string.
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}
