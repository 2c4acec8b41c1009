package scheduler

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Sweeper drops sessions idle for longer than ttl
type Sweeper interface {
	Sweep(now time.Time, ttl time.Duration) int
}

// Task is a housekeeping job run alongside the sweep. It returns how many
// entries it removed.
type Task struct {
	Name string
	Run  func() int
}

// Scheduler runs the idle-session sweep, plus any registered tasks, on a
// cron schedule
type Scheduler struct {
	cron      *cron.Cron
	sweeper   Sweeper
	spec      string
	ttl       time.Duration
	now       func() time.Time
	tasks     []Task
	isRunning bool
}

// NewScheduler creates a new scheduler. spec is a standard 5-field cron
// expression or a descriptor such as "@every 5m".
func NewScheduler(sweeper Sweeper, spec string, ttl time.Duration) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		sweeper: sweeper,
		spec:    spec,
		ttl:     ttl,
		now:     time.Now,
	}
}

// AddTask registers fn to run on every tick. Call it before Start.
func (s *Scheduler) AddTask(name string, fn func() int) {
	s.tasks = append(s.tasks, Task{Name: name, Run: fn})
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	if s.spec == "" || s.ttl <= 0 {
		log.Println("[scheduler] session sweep disabled")
		return nil
	}

	if _, err := s.cron.AddFunc(s.spec, s.RunOnce); err != nil {
		return err
	}

	s.cron.Start()
	s.isRunning = true
	log.Printf("[scheduler] started session sweep (cron: %s, ttl: %s)", s.spec, s.ttl)
	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	if s.isRunning {
		<-s.cron.Stop().Done()
		s.isRunning = false
		log.Println("[scheduler] stopped")
	}
}

// RunOnce performs a single sweep followed by the registered tasks
func (s *Scheduler) RunOnce() {
	if n := s.sweeper.Sweep(s.now(), s.ttl); n > 0 {
		log.Printf("[scheduler] removed %d idle sessions", n)
	}
	for _, t := range s.tasks {
		if n := t.Run(); n > 0 {
			log.Printf("[scheduler] %s: removed %d", t.Name, n)
		}
	}
}
