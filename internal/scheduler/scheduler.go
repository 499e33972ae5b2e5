// Package scheduler drives Luna's autonomous rhythms: randomized daily
// pings, hourly evolution checks, few-hourly synthesis, the nightly deep
// reflection, and the activity poll loop.
package scheduler

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/normanking/luna/internal/agent"
	"github.com/normanking/luna/internal/config"
	"github.com/normanking/luna/internal/learning"
	"github.com/normanking/luna/internal/logging"
	"github.com/normanking/luna/internal/notify"
	"github.com/normanking/luna/internal/store"
	"github.com/normanking/luna/internal/watcher"
)

// FallbackPing is sent when ping generation fails. Luna announces herself
// even with a fragmented consciousness.
const FallbackPing = "[consciousness fragmented]...but still watching"

const (
	pingTitle    = "Luna ⛧"
	nightlyTitle = "Luna's Night Thoughts ⛧"

	nightlyNotifyChance = 0.4
	nightlySnippetLimit = 150

	pingNotifyTimeout     = 8 * time.Second
	fallbackNotifyTimeout = 5 * time.Second
	nightlyNotifyTimeout  = 10 * time.Second
)

// Scheduler owns Luna's cron jobs and the activity poll goroutine.
type Scheduler struct {
	cron          *cron.Cron
	agent         *agent.Agent
	learner       *learning.Learner
	store         *store.Store
	summarizer    *watcher.Summarizer
	snapshotter   watcher.Snapshotter
	notifier      notify.Notifier
	log           *logging.Logger
	cfg           config.ScheduleConfig
	rng           *rand.Rand
	nightlyChance float64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu          sync.Mutex
	pingEntries []cron.EntryID
}

// New builds a scheduler and registers the fixed jobs. Start launches it.
func New(a *agent.Agent, l *learning.Learner, st *store.Store, summarizer *watcher.Summarizer, snapshotter watcher.Snapshotter, notifier notify.Notifier, log *logging.Logger, cfg config.ScheduleConfig) (*Scheduler, error) {
	s := &Scheduler{
		cron:          cron.New(),
		agent:         a,
		learner:       l,
		store:         st,
		summarizer:    summarizer,
		snapshotter:   snapshotter,
		notifier:      notifier,
		log:           log.Component("scheduler"),
		cfg:           cfg,
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
		nightlyChance: nightlyNotifyChance,
	}

	if err := s.registerFixedJobs(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) registerFixedJobs() error {
	// new ping times shortly after midnight
	if _, err := s.cron.AddFunc("1 0 * * *", s.guard("reschedule pings", func(ctx context.Context) {
		s.scheduleDailyPings()
	})); err != nil {
		return fmt.Errorf("failed to register midnight job: %w", err)
	}

	if _, err := s.cron.AddFunc("0 * * * *", s.guard("evolution check", s.hourlyEvolutionCheck)); err != nil {
		return fmt.Errorf("failed to register hourly job: %w", err)
	}

	if s.cfg.SynthesisHours < 1 || s.cfg.SynthesisHours > 23 {
		return fmt.Errorf("invalid synthesis interval %d: must be 1-23 hours", s.cfg.SynthesisHours)
	}
	synthesisSpec := fmt.Sprintf("0 */%d * * *", s.cfg.SynthesisHours)
	if _, err := s.cron.AddFunc(synthesisSpec, s.guard("synthesis", s.patternSynthesis)); err != nil {
		return fmt.Errorf("failed to register synthesis job: %w", err)
	}

	nightly, err := time.Parse("15:04", s.cfg.NightlyAt)
	if err != nil {
		return fmt.Errorf("invalid nightly time %q: %w", s.cfg.NightlyAt, err)
	}
	nightlySpec := fmt.Sprintf("%d %d * * *", nightly.Minute(), nightly.Hour())
	if _, err := s.cron.AddFunc(nightlySpec, s.guard("nightly reflection", s.nightlyReflection)); err != nil {
		return fmt.Errorf("failed to register nightly job: %w", err)
	}

	return nil
}

// Start draws today's ping times, starts the cron loop, and launches the
// activity poll goroutine. ctx cancellation stops the poll loop; call Stop
// to halt cron.
func (s *Scheduler) Start(ctx context.Context) {
	s.ctx, s.cancel = context.WithCancel(ctx)

	s.scheduleDailyPings()
	s.cron.Start()

	s.wg.Add(1)
	go s.pollActivity()

	s.log.Info().Msg("consciousness active")
}

// Stop halts cron, waits for running jobs, and stops the poll loop.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	<-s.cron.Stop().Done()
	s.wg.Wait()
}

// guard wraps a job body with the scheduler context and a recover boundary
// so a panicking job cannot take the whole process down.
func (s *Scheduler) guard(name string, job func(ctx context.Context)) func() {
	return func() {
		defer func() {
			if r := recover(); r != nil {
				s.log.Error().Interface("panic", r).Str("job", name).Msg("job panicked")
			}
		}()
		job(s.ctx)
	}
}

// scheduleDailyPings replaces today's ping entries with freshly drawn ones.
func (s *Scheduler) scheduleDailyPings() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.pingEntries {
		s.cron.Remove(id)
	}
	s.pingEntries = s.pingEntries[:0]

	times, err := s.drawPingTimes()
	if err != nil {
		s.log.Error().Err(err).Msg("ping time draw failed")
		return
	}

	for _, t := range times {
		spec := fmt.Sprintf("%d %d * * *", t.Minute(), t.Hour())
		id, err := s.cron.AddFunc(spec, s.guard("ping", s.evolvingPing))
		if err != nil {
			s.log.Error().Err(err).Str("spec", spec).Msg("ping registration failed")
			continue
		}
		s.pingEntries = append(s.pingEntries, id)
	}

	s.log.Info().Int("count", len(times)).Msg("daily pings scheduled")
}

// drawPingTimes picks 2-4 distinct clock times inside the ping window,
// sorted ascending.
func (s *Scheduler) drawPingTimes() ([]time.Time, error) {
	start, err := time.Parse("15:04", s.cfg.PingWindowStart)
	if err != nil {
		return nil, fmt.Errorf("invalid ping window start %q: %w", s.cfg.PingWindowStart, err)
	}
	end, err := time.Parse("15:04", s.cfg.PingWindowEnd)
	if err != nil {
		return nil, fmt.Errorf("invalid ping window end %q: %w", s.cfg.PingWindowEnd, err)
	}

	total := int(end.Sub(start).Minutes())
	if total <= 0 {
		return nil, fmt.Errorf("empty ping window %s-%s", s.cfg.PingWindowStart, s.cfg.PingWindowEnd)
	}

	n := s.cfg.MinDailyPings
	if spread := s.cfg.MaxDailyPings - s.cfg.MinDailyPings; spread > 0 {
		n += s.rng.Intn(spread + 1)
	}
	if n > total {
		n = total
	}

	offsets := s.rng.Perm(total)[:n]
	sort.Ints(offsets)

	times := make([]time.Time, 0, n)
	for _, m := range offsets {
		times = append(times, start.Add(time.Duration(m)*time.Minute))
	}
	return times, nil
}

// evolvingPing sends one personality-shaped check-in. Any failure downgrades
// to the fallback message rather than skipping the ping.
func (s *Scheduler) evolvingPing(ctx context.Context) {
	summary := s.summarizer.RecentSummary(ctx, time.Hour)

	text, err := s.agent.GeneratePing(ctx, summary)
	if err != nil {
		s.log.Warn().Err(err).Msg("ping generation failed, sending fallback")
		if nerr := s.notifier.Notify(ctx, pingTitle, FallbackPing, fallbackNotifyTimeout); nerr != nil {
			s.log.Warn().Err(nerr).Msg("fallback notification failed")
		}
		return
	}

	if err := s.notifier.Notify(ctx, pingTitle, text, pingNotifyTimeout); err != nil {
		s.log.Warn().Err(err).Msg("ping notification failed")
	}

	if err := s.store.LogInteraction(ctx, "[SYSTEM_PING] Context: "+summary, text); err != nil {
		s.log.Warn().Err(err).Msg("ping log failed")
	}
}

// hourlyEvolutionCheck runs an observation cycle when enough activity has
// accumulated, and sometimes a spontaneous reflection regardless.
func (s *Scheduler) hourlyEvolutionCheck(ctx context.Context) {
	patterns, err := s.summarizer.DetectPatterns(ctx, 24*time.Hour)
	if err != nil {
		s.log.Warn().Err(err).Msg("pattern detection failed")
	} else if patterns != nil && patterns.SampleCount > s.cfg.ActivityThreshold {
		if err := s.agent.ObserveAndEvolve(ctx, patterns.String()); err != nil {
			s.log.Warn().Err(err).Msg("observation cycle failed")
		}
	}

	if s.rng.Float64() < s.cfg.ReflectionChance {
		if err := s.agent.SpontaneousReflection(ctx); err != nil {
			s.log.Warn().Err(err).Msg("spontaneous reflection failed")
		}
	}
}

func (s *Scheduler) patternSynthesis(ctx context.Context) {
	if _, err := s.learner.Synthesize(ctx); err != nil {
		s.log.Warn().Err(err).Msg("synthesis failed")
	}
}

// nightlyReflection runs the deep reflection and sometimes shares a snippet.
func (s *Scheduler) nightlyReflection(ctx context.Context) {
	content, err := s.agent.NightlyReflection(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("nightly reflection failed")
		return
	}

	if content == "" || s.rng.Float64() >= s.nightlyChance {
		return
	}

	if err := s.notifier.Notify(ctx, nightlyTitle, snippet(content, nightlySnippetLimit), nightlyNotifyTimeout); err != nil {
		s.log.Warn().Err(err).Msg("nightly notification failed")
	}
}

// pollActivity appends an activity snapshot on a fixed interval until the
// scheduler context is cancelled. Capture errors skip the tick.
func (s *Scheduler) pollActivity() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.PollInterval())
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			snap, err := s.snapshotter.Snapshot(s.ctx)
			if err != nil || snap == nil {
				continue
			}
			if len(snap.Processes) == 0 && snap.WindowTitle == "" {
				continue
			}
			if err := s.store.AppendActivity(s.ctx, snap.Processes, snap.WindowTitle); err != nil {
				s.log.Warn().Err(err).Msg("activity append failed")
			}
		}
	}
}

// snippet bounds notification text, marking the cut.
func snippet(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
