// Package cleanup removes orphaned recording files: WAVs in the recordings
// directory that no stored meeting references.
package cleanup

import (
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// PathLister reports the audio paths referenced by stored meetings.
type PathLister interface {
	AudioPaths() (map[string]bool, error)
}

// Scheduler periodically deletes unreferenced recordings once they pass a
// grace age. The grace age keeps artifacts from failed pipeline runs
// inspectable instead of silently deleting them.
type Scheduler struct {
	recordingsDir string
	interval      time.Duration
	maxAge        time.Duration
	store         PathLister
	stopChan      chan struct{}
	log           zerolog.Logger
}

// NewScheduler creates a cleanup scheduler over recordingsDir.
func NewScheduler(recordingsDir string, interval, maxAge time.Duration, store PathLister, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		recordingsDir: recordingsDir,
		interval:      interval,
		maxAge:        maxAge,
		store:         store,
		stopChan:      make(chan struct{}),
		log:           log.With().Str("component", "cleanup").Logger(),
	}
}

// Start runs one sweep immediately, then sweeps on the configured interval
// until Stop is called.
func (s *Scheduler) Start() {
	s.sweep()

	ticker := time.NewTicker(s.interval)
	go func() {
		for {
			select {
			case <-ticker.C:
				s.sweep()
			case <-s.stopChan:
				ticker.Stop()
				return
			}
		}
	}()

	s.log.Info().Dur("interval", s.interval).Dur("max_age", s.maxAge).Msg("cleanup scheduler started")
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	close(s.stopChan)
}

func (s *Scheduler) sweep() {
	referenced, err := s.store.AudioPaths()
	if err != nil {
		s.log.Error().Err(err).Msg("listing referenced recordings")
		return
	}

	files, err := filepath.Glob(filepath.Join(s.recordingsDir, "meeting_*.wav"))
	if err != nil {
		s.log.Error().Err(err).Msg("scanning recordings directory")
		return
	}

	now := time.Now()
	var deleted int
	for _, path := range files {
		if referenced[path] {
			continue
		}
		info, err := os.Stat(path)
		if err != nil || now.Sub(info.ModTime()) < s.maxAge {
			continue
		}
		if err := os.Remove(path); err != nil {
			s.log.Warn().Err(err).Str("path", path).Msg("deleting orphaned recording")
			continue
		}
		deleted++
		s.log.Info().Str("path", path).Msg("deleted orphaned recording")
	}
	if deleted > 0 {
		s.log.Info().Int("deleted", deleted).Msg("cleanup sweep complete")
	}
}
