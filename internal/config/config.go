// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) initializer to build a Config with defaults.
// - Load layers defaults, an optional YAML file, and ROOTS_-prefixed env vars.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// StoreDriver selects the record store: memory or postgres.
	StoreDriver string `koanf:"store_driver"`

	// PostgresDSN is the connection string used when StoreDriver is postgres.
	PostgresDSN string `koanf:"postgres_dsn"`

	// BlobDriver selects the avatar store: memory, fs, or s3.
	BlobDriver string `koanf:"blob_driver"`

	// BlobFSDir is the directory backing the fs blob driver.
	BlobFSDir string `koanf:"blob_fs_dir"`

	// BlobFSBaseURL prefixes avatar URLs served by the fs blob driver.
	BlobFSBaseURL string `koanf:"blob_fs_base_url"`

	// S3 settings used when BlobDriver is s3.
	S3Bucket        string `koanf:"s3_bucket"`
	S3Region        string `koanf:"s3_region"`
	S3Endpoint      string `koanf:"s3_endpoint"`
	S3PathStyle     bool   `koanf:"s3_path_style"`
	S3PublicBaseURL string `koanf:"s3_public_base_url"`

	// BaseCapacity is the slot count of layer 0; layer i holds
	// BaseCapacity*2^i slots unless overridden.
	BaseCapacity int `koanf:"base_capacity"`

	// MaxLayer closes the structure at the given layer index; negative
	// keeps it unbounded.
	MaxLayer int `koanf:"max_layer"`

	// CapacityOverrides pins individual layers to fixed capacities.
	CapacityOverrides map[int]int `koanf:"capacity_overrides"`

	// Placement geometry.
	BaseRadius      float64   `koanf:"base_radius"`
	RadiusStep      float64   `koanf:"radius_step"`
	HalfStepOffset  bool      `koanf:"half_step_offset"`
	LayerZeroAngles []float64 `koanf:"layer_zero_angles"`

	// Input bounds.
	TermMaxLen     int   `koanf:"term_max_len"`
	NameMaxLen     int   `koanf:"name_max_len"`
	AvatarMaxBytes int64 `koanf:"avatar_max_bytes"`

	// SingleWordPerVisitor enforces at most one word per browser token.
	SingleWordPerVisitor bool `koanf:"single_word_per_visitor"`

	// FoldLocale is the BCP-47 tag used for duplicate-term case folding.
	FoldLocale string `koanf:"fold_locale"`

	// Write-back pipeline sizing.
	WritebackQueueSize int `koanf:"writeback_queue_size"`
	WritebackWorkers   int `koanf:"writeback_workers"`
}

// New creates a Config with the service defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		Addr:                 ":8080",
		StoreDriver:          "memory",
		BlobDriver:           "memory",
		BlobFSDir:            "data/avatars",
		BlobFSBaseURL:        "/avatars",
		S3Region:             "us-east-1",
		BaseCapacity:         4,
		MaxLayer:             -1,
		BaseRadius:           90,
		RadiusStep:           60,
		HalfStepOffset:       true,
		LayerZeroAngles:      []float64{45, 135, 225, 315},
		TermMaxLen:           64,
		NameMaxLen:           48,
		AvatarMaxBytes:       5 << 20,
		SingleWordPerVisitor: true,
		FoldLocale:           "",
		WritebackQueueSize:   1024,
		WritebackWorkers:     2,
	}
}
