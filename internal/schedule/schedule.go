// Package schedule parses the schedule of repeated runs in serve mode.
package schedule

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

var (
	DefaultSchedule = Schedule(IntervalSchedule{5 * time.Minute})

	// MinInterval is the shortest interval of IntervalSchedule.
	MinInterval = time.Second
)

// Schedule decides when the next run starts.
type Schedule interface {
	cron.Schedule
	fmt.Stringer

	// NeedKickWhenStart reports if a run should start immediately when the scheduler starts.
	NeedKickWhenStart() bool
}

// Parse parses an interval like "5m" or a cron spec like "*/5 * * * *".
func Parse(spec string) (Schedule, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return DefaultSchedule, nil
	}

	if s, err := ParseInterval(spec); err == nil {
		return s, nil
	}

	s, err := ParseCron(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return s, nil
}

// IntervalSchedule runs at a fixed interval, starting immediately.
type IntervalSchedule struct {
	Interval time.Duration
}

func ParseInterval(spec string) (IntervalSchedule, error) {
	d, err := time.ParseDuration(spec)
	if err != nil {
		return IntervalSchedule{}, err
	}
	if d < MinInterval {
		return IntervalSchedule{}, fmt.Errorf("interval must be %s or longer", MinInterval)
	}
	return IntervalSchedule{d}, nil
}

func (s IntervalSchedule) Next(t time.Time) time.Time {
	return t.Add(s.Interval)
}

func (s IntervalSchedule) String() string {
	return s.Interval.String()
}

func (s IntervalSchedule) NeedKickWhenStart() bool {
	return true
}

// CronSchedule runs at the times that the cron spec matches.
type CronSchedule struct {
	spec     string
	schedule cron.Schedule
}

var fieldDelimiter = regexp.MustCompile("[ \t]+")

func ParseCron(spec string) (CronSchedule, error) {
	switch spec {
	case "@yearly", "@annually":
		spec = "0 0 1 1 ?"
	case "@monthly":
		spec = "0 0 1 * ?"
	case "@weekly":
		spec = "0 0 * * 0"
	case "@daily":
		spec = "0 0 * * ?"
	case "@hourly":
		spec = "0 * * * ?"
	default:
		ss := fieldDelimiter.Split(strings.TrimSpace(spec), -1)
		if len(ss) == 4 {
			ss = append(ss, "?")
		}
		spec = strings.Join(ss, " ")
	}

	s, err := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.DowOptional).Parse(spec)
	if err != nil {
		return CronSchedule{}, err
	}
	return CronSchedule{
		spec:     spec,
		schedule: s,
	}, nil
}

func (s CronSchedule) Next(t time.Time) time.Time {
	return s.schedule.Next(t)
}

func (s CronSchedule) String() string {
	return s.spec
}

func (s CronSchedule) NeedKickWhenStart() bool {
	return false
}
