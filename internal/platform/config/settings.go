package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"archive-remix/internal/isotime"
)

// ErrInvalidConfiguration is matched by every ParamError.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// DefaultVod2LiveIntervals is the number of bucket intervals between the
// window start and the default vod2live start time.
const DefaultVod2LiveIntervals = 2

// ParamError names the parameter that failed validation.
type ParamError struct {
	Param string
	Value string
	Err   error
}

func (e *ParamError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %v", e.Param, e.Err)
	}
	return fmt.Sprintf("invalid %s %q: %v", e.Param, e.Value, e.Err)
}

func (e *ParamError) Unwrap() []error { return []error{ErrInvalidConfiguration, e.Err} }

// Settings holds raw configuration values as read from the environment or
// command flags. Resolve validates them.
type Settings struct {
	Name              string
	StartTime         string
	EndTime           string
	ArchiveInterval   string
	ArchiveChannel    string
	ArchiveDates      []string
	S3Endpoint        string
	S3Bucket          string
	S3AccessKey       string
	S3SecretKey       string
	S3Region          string
	S3Secure          bool
	TimeShift         int
	PollInterval      int
	Vod2LiveStartTime string
	WorkDir           string
	UnifiedRemix      string
	MP4Split          string
	Port              string
	LogLevel          string
	LogFormat         string
}

// FromEnv reads Settings from the environment. The window defaults to the
// start of the current UTC hour through one hour after now.
func FromEnv(now time.Time) Settings {
	now = now.UTC()
	return Settings{
		Name:              GetEnv("NAME", ""),
		StartTime:         GetEnv("START_TIME", isotime.Format(now.Truncate(time.Hour))),
		EndTime:           GetEnv("END_TIME", isotime.Format(now.Add(time.Hour).Truncate(time.Second))),
		ArchiveInterval:   GetEnv("ARCHIVE_INTERVAL", ""),
		ArchiveChannel:    GetEnv("ARCHIVE_CHANNEL", ""),
		ArchiveDates:      GetEnvList("ARCHIVE_DATES"),
		S3Endpoint:        GetEnv("S3_ENDPOINT", "localhost:9000"),
		S3Bucket:          GetEnv("S3_BUCKET", ""),
		S3AccessKey:       GetEnv("S3_ACCESS_KEY", "minioadmin"),
		S3SecretKey:       GetEnv("S3_SECRET_KEY", "minioadmin"),
		S3Region:          GetEnv("S3_REGION", "default"),
		S3Secure:          GetEnvBool("S3_SECURE", false),
		TimeShift:         GetEnvInt("TIME_SHIFT", 600),
		PollInterval:      GetEnvInt("POLL_INTERVAL", 60),
		Vod2LiveStartTime: GetEnv("VOD2LIVE_START_TIME", ""),
		WorkDir:           GetEnv("WORK_DIR", "."),
		UnifiedRemix:      GetEnv("UNIFIED_REMIX", "unified_remix"),
		MP4Split:          GetEnv("MP4SPLIT", "mp4split"),
		Port:              GetEnv("PORT", "8080"),
		LogLevel:          GetEnv("LOG_LEVEL", "info"),
		LogFormat:         GetEnv("LOG_FORMAT", "json"),
	}
}

// Params are validated Settings with derived values filled in.
type Params struct {
	Name          string
	Start         time.Time
	End           time.Time
	Interval      time.Duration
	Channel       string
	Dates         []string
	Endpoint      string
	Bucket        string
	AccessKey     string
	SecretKey     string
	Region        string
	Secure        bool
	TimeShift     int
	PollInterval  time.Duration
	Vod2LiveStart time.Time
	WorkDir       string
	UnifiedRemix  string
	MP4Split      string
}

// BaseURL is the locator chunk paths are resolved against.
func (p *Params) BaseURL() string {
	scheme := "http"
	if p.Secure {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s", scheme, p.Endpoint, p.Bucket)
}

// Resolve validates s and derives Params. Errors are *ParamError.
func (s Settings) Resolve() (*Params, error) {
	if err := required("name", s.Name); err != nil {
		return nil, err
	}
	if err := required("archive-channel", s.ArchiveChannel); err != nil {
		return nil, err
	}
	if err := required("s3-bucket", s.S3Bucket); err != nil {
		return nil, err
	}
	if err := required("s3-endpoint", s.S3Endpoint); err != nil {
		return nil, err
	}

	start, err := isotime.Parse(s.StartTime)
	if err != nil {
		return nil, &ParamError{Param: "start-time", Value: s.StartTime, Err: err}
	}
	end, err := isotime.Parse(s.EndTime)
	if err != nil {
		return nil, &ParamError{Param: "end-time", Value: s.EndTime, Err: err}
	}
	if !end.After(start) {
		return nil, &ParamError{Param: "end-time", Value: s.EndTime, Err: errors.New("must be after start-time")}
	}

	interval, err := isotime.ParseDuration(s.ArchiveInterval)
	if err != nil {
		return nil, &ParamError{Param: "archive-interval", Value: s.ArchiveInterval,
			Err: fmt.Errorf("must be an ISO 8601 duration: %w", err)}
	}
	if interval <= 0 {
		return nil, &ParamError{Param: "archive-interval", Value: s.ArchiveInterval, Err: errors.New("must be positive")}
	}

	for _, d := range s.ArchiveDates {
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return nil, &ParamError{Param: "archive-dates", Value: d, Err: errors.New("must be YYYY-MM-DD")}
		}
	}

	if s.PollInterval <= 0 {
		return nil, &ParamError{Param: "poll-interval", Value: fmt.Sprint(s.PollInterval), Err: errors.New("must be positive")}
	}
	if s.TimeShift < 0 {
		return nil, &ParamError{Param: "delay", Value: fmt.Sprint(s.TimeShift), Err: errors.New("must not be negative")}
	}

	vod2live := start.Add(DefaultVod2LiveIntervals * interval)
	if s.Vod2LiveStartTime != "" {
		vod2live, err = isotime.Parse(s.Vod2LiveStartTime)
		if err != nil {
			return nil, &ParamError{Param: "vod2live-start-time", Value: s.Vod2LiveStartTime, Err: err}
		}
	}

	return &Params{
		Name:          s.Name,
		Start:         start,
		End:           end,
		Interval:      interval,
		Channel:       s.ArchiveChannel,
		Dates:         s.ArchiveDates,
		Endpoint:      s.S3Endpoint,
		Bucket:        s.S3Bucket,
		AccessKey:     s.S3AccessKey,
		SecretKey:     s.S3SecretKey,
		Region:        s.S3Region,
		Secure:        s.S3Secure,
		TimeShift:     s.TimeShift,
		PollInterval:  time.Duration(s.PollInterval) * time.Second,
		Vod2LiveStart: vod2live,
		WorkDir:       s.WorkDir,
		UnifiedRemix:  s.UnifiedRemix,
		MP4Split:      s.MP4Split,
	}, nil
}

func required(param, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ParamError{Param: param, Err: errors.New("required")}
	}
	return nil
}
