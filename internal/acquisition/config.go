package acquisition

import "time"

// Config parameterizes the acquisition engine's pagination, batching, and
// rate-limiting behavior.
type Config struct {
	BaseURL string `mapstructure:"base_url" validate:"required,url"`

	// RequestTimeout bounds every individual HTTP round trip.
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"required"`

	// MinRequestInterval is the minimum spacing enforced between any two
	// outbound HTTP requests, regardless of which sub-window issued them.
	MinRequestInterval time.Duration `mapstructure:"min_request_interval"`

	// MaxRetries bounds the retry-with-delay discipline on a failed
	// request.
	MaxRetries int `mapstructure:"max_retries" validate:"min=0"`

	// PageSizes is the descending page-size ladder tried per window.
	PageSizes []int `mapstructure:"page_sizes"`

	// EmptyPageStreakLimit is the number of consecutive empty pages
	// observed (with no record yet produced) before an attempt at a
	// given page size is abandoned for the next smaller size.
	EmptyPageStreakLimit int `mapstructure:"empty_page_streak_limit" validate:"min=1"`

	// MaxDaysPerBatch is the widest single date sub-window the engine
	// will request in one pass.
	MaxDaysPerBatch int `mapstructure:"max_days_per_batch" validate:"min=1"`

	// BatchOverlapDays lets adjacent sub-windows overlap to defend
	// against boundary misses at the day granularity ArXiv buckets by.
	BatchOverlapDays int `mapstructure:"batch_overlap_days" validate:"min=0"`

	// MinBatchInterval is the sleep enforced between sub-window
	// requests, on top of MinRequestInterval.
	MinBatchInterval time.Duration `mapstructure:"min_batch_interval"`
}

// DefaultConfig returns the engine's baseline pagination and rate limits.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:               baseURL,
		RequestTimeout:        30 * time.Second,
		MinRequestInterval:    3 * time.Second,
		MaxRetries:            3,
		PageSizes:             []int{500, 250, 100, 50, 10},
		EmptyPageStreakLimit:  3,
		MaxDaysPerBatch:       7,
		BatchOverlapDays:      0,
		MinBatchInterval:      1 * time.Second,
	}
}
