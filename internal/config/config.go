package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
)

/*
Two configuration surfaces, both following the same builder+DTO+JSON-file
pattern:

  - PlatformConfig: process-wide. Where state lives on disk, what the
    control API listens on, and the defaults applied when a job submission
    omits a field.
  - JobConfig: the validated inputs of a single job descriptor (spec.md
    §3's "Job descriptor / configuration"). Build() is the boundary
    validation spec.md §3 requires: it is the only place a job's ranges are
    enforced, and it returns ErrInvalidConfig (mapped to InvalidInput/400 at
    the HTTP boundary) on violation.
*/

// PlatformConfig holds process-wide settings: where crawl state lives, what
// the control API binds to, and the defaults new jobs inherit when they
// don't specify a field.
type PlatformConfig struct {
	dataDir              string
	listenAddr           string
	defaultHitRate       float64
	defaultMaxDepth      int
	defaultQueueCapacity int
	defaultMaxURLs       int
	logRingSize          int
}

type platformConfigDTO struct {
	DataDir              string  `json:"dataDir,omitempty"`
	ListenAddr           string  `json:"listenAddr,omitempty"`
	DefaultHitRate       float64 `json:"defaultHitRate,omitempty"`
	DefaultMaxDepth      int     `json:"defaultMaxDepth,omitempty"`
	DefaultQueueCapacity int     `json:"defaultQueueCapacity,omitempty"`
	DefaultMaxURLs       int     `json:"defaultMaxUrlsToVisit,omitempty"`
	LogRingSize          int     `json:"logRingSize,omitempty"`
}

// WithDefault returns the out-of-the-box PlatformConfig: data rooted at
// "data", control API on ":3600", and per-job defaults matching spec.md
// §3's valid ranges.
func WithDefault() *PlatformConfig {
	return &PlatformConfig{
		dataDir:              "data",
		listenAddr:           ":3600",
		defaultHitRate:       1.0,
		defaultMaxDepth:      3,
		defaultQueueCapacity: 1000,
		defaultMaxURLs:       0,
		logRingSize:          10000,
	}
}

// WithConfigFile loads a PlatformConfig from a JSON file, starting from
// WithDefault() and overriding only the fields present in the file.
func WithConfigFile(path string) (PlatformConfig, error) {
	if _, err := os.Stat(path); err != nil {
		return PlatformConfig{}, fmt.Errorf("%w: %s", ErrFileDoesNotExist, err.Error())
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return PlatformConfig{}, fmt.Errorf("%w: %s", ErrReadConfigFail, err.Error())
	}

	var dto platformConfigDTO
	if err := json.Unmarshal(raw, &dto); err != nil {
		return PlatformConfig{}, fmt.Errorf("%w: %s", ErrConfigParsingFail, err.Error())
	}

	cfg := WithDefault()
	if dto.DataDir != "" {
		cfg.dataDir = dto.DataDir
	}
	if dto.ListenAddr != "" {
		cfg.listenAddr = dto.ListenAddr
	}
	if dto.DefaultHitRate != 0 {
		cfg.defaultHitRate = dto.DefaultHitRate
	}
	if dto.DefaultMaxDepth != 0 {
		cfg.defaultMaxDepth = dto.DefaultMaxDepth
	}
	if dto.DefaultQueueCapacity != 0 {
		cfg.defaultQueueCapacity = dto.DefaultQueueCapacity
	}
	// DefaultMaxURLs == 0 means unbounded and is also the zero value, so a
	// file that sets it to 0 explicitly and one that omits it are
	// indistinguishable here; WithDefault already carries 0, so this is a
	// no-op either way.
	cfg.defaultMaxURLs = dto.DefaultMaxURLs
	if dto.LogRingSize != 0 {
		cfg.logRingSize = dto.LogRingSize
	}

	return *cfg, nil
}

func (c *PlatformConfig) WithDataDir(dir string) *PlatformConfig {
	c.dataDir = dir
	return c
}

func (c *PlatformConfig) WithListenAddr(addr string) *PlatformConfig {
	c.listenAddr = addr
	return c
}

func (c *PlatformConfig) WithDefaultHitRate(rate float64) *PlatformConfig {
	c.defaultHitRate = rate
	return c
}

func (c *PlatformConfig) WithDefaultMaxDepth(depth int) *PlatformConfig {
	c.defaultMaxDepth = depth
	return c
}

func (c *PlatformConfig) WithDefaultQueueCapacity(capacity int) *PlatformConfig {
	c.defaultQueueCapacity = capacity
	return c
}

func (c *PlatformConfig) WithDefaultMaxURLs(max int) *PlatformConfig {
	c.defaultMaxURLs = max
	return c
}

func (c *PlatformConfig) WithLogRingSize(size int) *PlatformConfig {
	c.logRingSize = size
	return c
}

func (c *PlatformConfig) Build() (PlatformConfig, error) {
	if c.dataDir == "" {
		return PlatformConfig{}, fmt.Errorf("%w: dataDir cannot be empty", ErrInvalidConfig)
	}
	if c.listenAddr == "" {
		return PlatformConfig{}, fmt.Errorf("%w: listenAddr cannot be empty", ErrInvalidConfig)
	}
	return *c, nil
}

func (c PlatformConfig) DataDir() string          { return c.dataDir }
func (c PlatformConfig) ListenAddr() string       { return c.listenAddr }
func (c PlatformConfig) DefaultHitRate() float64  { return c.defaultHitRate }
func (c PlatformConfig) DefaultMaxDepth() int     { return c.defaultMaxDepth }
func (c PlatformConfig) DefaultQueueCapacity() int { return c.defaultQueueCapacity }
func (c PlatformConfig) DefaultMaxURLs() int      { return c.defaultMaxURLs }
func (c PlatformConfig) LogRingSize() int         { return c.logRingSize }

// JobConfig is the validated configuration of a single job descriptor:
// spec.md §3's Origin, MaxDepth ∈[1,1000], HitRate ∈[0.1,1000],
// MaxQueueCapacity ∈[100,100000], MaxURLsToVisit ∈[0,10000] (0 ==
// unbounded, never reinterpreted).
type JobConfig struct {
	origin           url.URL
	maxDepth         int
	hitRate          float64
	maxQueueCapacity int
	maxURLsToVisit   int
}

// JobConfigInput is the raw, not-yet-validated shape a job submission
// arrives in (e.g. decoded from the control API's JSON body). Zero-valued
// optional fields are filled from the owning PlatformConfig's defaults by
// NewJobConfig, except MaxURLsToVisit, whose zero value is itself a valid,
// meaningful setting ("unbounded") and is therefore never silently
// defaulted away unless the caller says it was never set.
type JobConfigInput struct {
	Origin            string
	MaxDepth          int
	HitRate           float64
	MaxQueueCapacity  int
	MaxURLsToVisit    int
	HasMaxURLsToVisit bool
}

// NewJobConfig parses and validates input against the ranges spec.md §3
// requires, filling unset optional fields from platform defaults. It
// returns ErrInvalidConfig (wrapped with the offending field) on any
// violation, including a non-http(s) or unparsable Origin.
func NewJobConfig(input JobConfigInput, platform PlatformConfig) (JobConfig, error) {
	origin, err := url.Parse(input.Origin)
	if err != nil || (origin.Scheme != "http" && origin.Scheme != "https") || origin.Hostname() == "" {
		return JobConfig{}, fmt.Errorf("%w: origin must be an absolute http(s) URL", ErrInvalidConfig)
	}

	maxDepth := input.MaxDepth
	if maxDepth == 0 {
		maxDepth = platform.DefaultMaxDepth()
	}
	hitRate := input.HitRate
	if hitRate == 0 {
		hitRate = platform.DefaultHitRate()
	}
	maxQueueCapacity := input.MaxQueueCapacity
	if maxQueueCapacity == 0 {
		maxQueueCapacity = platform.DefaultQueueCapacity()
	}
	maxURLsToVisit := input.MaxURLsToVisit
	if !input.HasMaxURLsToVisit {
		maxURLsToVisit = platform.DefaultMaxURLs()
	}

	cfg := JobConfig{
		origin:           *origin,
		maxDepth:         maxDepth,
		hitRate:          hitRate,
		maxQueueCapacity: maxQueueCapacity,
		maxURLsToVisit:   maxURLsToVisit,
	}
	return cfg.Build()
}

func (c JobConfig) Build() (JobConfig, error) {
	if c.maxDepth < 1 || c.maxDepth > 1000 {
		return JobConfig{}, fmt.Errorf("%w: maxDepth must be in [1,1000], got %d", ErrInvalidConfig, c.maxDepth)
	}
	if c.hitRate < 0.1 || c.hitRate > 1000 {
		return JobConfig{}, fmt.Errorf("%w: hitRate must be in [0.1,1000], got %f", ErrInvalidConfig, c.hitRate)
	}
	if c.maxQueueCapacity < 100 || c.maxQueueCapacity > 100000 {
		return JobConfig{}, fmt.Errorf("%w: maxQueueCapacity must be in [100,100000], got %d", ErrInvalidConfig, c.maxQueueCapacity)
	}
	// maxURLsToVisit == 0 means unbounded, per spec.md §9; any other value
	// must fall in [0,10000].
	if c.maxURLsToVisit < 0 || c.maxURLsToVisit > 10000 {
		return JobConfig{}, fmt.Errorf("%w: maxUrlsToVisit must be in [0,10000] (0 == unbounded), got %d", ErrInvalidConfig, c.maxURLsToVisit)
	}
	return c, nil
}

func (c JobConfig) Origin() url.URL       { return c.origin }
func (c JobConfig) MaxDepth() int         { return c.maxDepth }
func (c JobConfig) HitRate() float64      { return c.hitRate }
func (c JobConfig) MaxQueueCapacity() int { return c.maxQueueCapacity }
func (c JobConfig) MaxURLsToVisit() int   { return c.maxURLsToVisit }

// JobConfigFromFields reconstructs an already-validated JobConfig from its
// component fields, re-running Build()'s range checks as a boundary check.
// Used by internal/registry when rebuilding a job descriptor from an
// on-disk status snapshot, where the original JobConfigInput is long gone.
func JobConfigFromFields(origin url.URL, maxDepth int, hitRate float64, maxQueueCapacity int, maxURLsToVisit int) (JobConfig, error) {
	cfg := JobConfig{
		origin:           origin,
		maxDepth:         maxDepth,
		hitRate:          hitRate,
		maxQueueCapacity: maxQueueCapacity,
		maxURLsToVisit:   maxURLsToVisit,
	}
	return cfg.Build()
}
