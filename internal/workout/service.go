package workout

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/myrjola/fitroadmap/internal/coach"
	"github.com/myrjola/fitroadmap/internal/errors"
	"github.com/myrjola/fitroadmap/internal/sqlite"
	"golang.org/x/sync/errgroup"
)

// Service handles the coaching use cases of the user identified by the request context.
type Service struct {
	repo    *repository
	logger  *slog.Logger
	now     func() time.Time
	newRand func() *rand.Rand
}

// NewService creates a new coaching service.
func NewService(db *sqlite.Database, logger *slog.Logger) *Service {
	return &Service{
		repo:   newRepository(db, logger),
		logger: logger,
		now:    time.Now,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) //nolint:gosec // not for security.
		},
	}
}

// SaveProfile normalizes in and replaces the stored profile. The start date and completed session count of an
// existing profile carry over unless in sets them.
func (s *Service) SaveProfile(ctx context.Context, in coach.Input) (coach.Profile, error) {
	p := coach.Normalize(in)
	err := s.repo.transaction(ctx, func(tx *repository) error {
		prev, err := tx.profiles.Get(ctx, "")
		switch {
		case err == nil:
			if p.StartedAt.IsZero() {
				p.StartedAt = prev.StartedAt
			}
			if p.SessionsCompleted == 0 {
				p.SessionsCompleted = prev.SessionsCompleted
			}
		case errors.Is(err, ErrCorruptState):
			s.logger.LogAttrs(ctx, slog.LevelWarn, "replacing corrupt profile", errors.SlogError(err))
		case !errors.Is(err, ErrNotFound):
			return err
		}
		if p.StartedAt.IsZero() {
			p.StartedAt = coach.DateOf(s.now())
		}
		return tx.profiles.Put(ctx, "", p)
	})
	if err != nil {
		return coach.Profile{}, fmt.Errorf("save profile: %w", err)
	}
	return p, nil
}

// Profile returns the stored profile or ErrNotFound before onboarding.
func (s *Service) Profile(ctx context.Context) (coach.Profile, error) {
	p, err := s.repo.profiles.Get(ctx, "")
	if err != nil {
		return coach.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

// profileOrDefault lets the scheduler work before onboarding.
func (s *Service) profileOrDefault(ctx context.Context) (coach.Profile, error) {
	p, err := s.repo.profiles.Get(ctx, "")
	if errors.Is(err, ErrNotFound) {
		p = coach.Normalize(nil)
		p.StartedAt = coach.DateOf(s.now())
		return p, nil
	}
	if err != nil {
		return coach.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

// Menu generates the quick menu for the stored profile.
func (s *Service) Menu(ctx context.Context) ([]coach.PlanItem, error) {
	p, err := s.Profile(ctx)
	if err != nil {
		return nil, err
	}
	return coach.GenerateMenu(p), nil
}

// SwapMenuItem replaces the menu item key with a random eligible exercise not listed in exclude.
func (s *Service) SwapMenuItem(ctx context.Context, key string, exclude []string) (coach.PlanItem, error) {
	if key == "" {
		return coach.PlanItem{}, fmt.Errorf("%w: missing menu item key", ErrInvalidInput)
	}
	p, err := s.Profile(ctx)
	if err != nil {
		return coach.PlanItem{}, err
	}
	item, ok := coach.Substitute(s.newRand(), p, key, exclude)
	if !ok {
		return coach.PlanItem{}, fmt.Errorf("swap %s: %w", key, ErrNoAlternative)
	}
	return item, nil
}

// weekPlan returns the plan of the week containing date. A missing plan is copied from the previous week or
// seeded from the profile's weekly schedule, and then stored.
func (r *repository) weekPlan(ctx context.Context, date coach.Date) (coach.WeekPlan, error) {
	start := coach.WeekStart(date)
	wp, err := r.weekPlans.Get(ctx, start.String())
	if err == nil {
		return wp, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return coach.WeekPlan{}, err
	}

	prev, err := r.weekPlans.Get(ctx, start.AddDays(-7).String()) //nolint:mnd // previous week.
	switch {
	case err == nil:
		wp = prev.CopyTo(start)
	case errors.Is(err, ErrNotFound):
		var schedule coach.Weekdays
		p, pErr := r.profiles.Get(ctx, "")
		switch {
		case pErr == nil:
			schedule = p.WeeklySchedule
		case !errors.Is(pErr, ErrNotFound):
			return coach.WeekPlan{}, pErr
		}
		wp = coach.FirstWeekPlan(start, schedule)
	default:
		return coach.WeekPlan{}, err
	}
	if err = r.weekPlans.Put(ctx, start.String(), wp); err != nil {
		return coach.WeekPlan{}, err
	}
	return wp, nil
}

// WeekPlan returns the plan of the week containing date.
func (s *Service) WeekPlan(ctx context.Context, date coach.Date) (coach.WeekPlan, error) {
	return s.updateWeekPlan(ctx, date, nil)
}

// ToggleDay flips whether day is a training day in the week containing date.
func (s *Service) ToggleDay(ctx context.Context, date coach.Date, day coach.Weekday) (coach.WeekPlan, error) {
	if day < coach.Monday || day > coach.Sunday {
		return coach.WeekPlan{}, fmt.Errorf("%w: weekday %d", ErrInvalidInput, day)
	}
	return s.updateWeekPlan(ctx, date, func(wp coach.WeekPlan) coach.WeekPlan {
		return wp.Toggle(day)
	})
}

// SetSessionsPerWeek changes the rotation length of the week containing date.
func (s *Service) SetSessionsPerWeek(ctx context.Context, date coach.Date, n int) (coach.WeekPlan, error) {
	if !coach.ValidSessionsPerWeek(n) {
		return coach.WeekPlan{}, fmt.Errorf("%w: %d sessions per week", ErrInvalidInput, n)
	}
	return s.updateWeekPlan(ctx, date, func(wp coach.WeekPlan) coach.WeekPlan {
		wp.SessionsPerWeek = n
		return wp
	})
}

func (s *Service) updateWeekPlan(
	ctx context.Context,
	date coach.Date,
	update func(coach.WeekPlan) coach.WeekPlan,
) (coach.WeekPlan, error) {
	if date.IsZero() {
		return coach.WeekPlan{}, fmt.Errorf("%w: missing date", ErrInvalidInput)
	}
	var wp coach.WeekPlan
	err := s.repo.transaction(ctx, func(tx *repository) error {
		var err error
		if wp, err = tx.weekPlan(ctx, date); err != nil {
			return err
		}
		if update == nil {
			return nil
		}
		wp = update(wp)
		return tx.weekPlans.Put(ctx, wp.WeekStart.String(), wp)
	})
	if err != nil {
		return coach.WeekPlan{}, fmt.Errorf("week plan %s: %w", date, err)
	}
	return wp, nil
}

// Today returns the scheduled session for date. Today only reads the week plan, and a week without a stored plan
// is a rest day until the schedule is opened with WeekPlan.
func (s *Service) Today(ctx context.Context, date coach.Date) (coach.Session, error) {
	if date.IsZero() {
		return coach.Session{}, fmt.Errorf("%w: missing date", ErrInvalidInput)
	}
	var (
		p    coach.Profile
		wp   *coach.WeekPlan
		logs []coach.DailyLog
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		p, err = s.profileOrDefault(gctx)
		return err
	})
	g.Go(func() error {
		stored, err := s.repo.weekPlans.Get(gctx, coach.WeekStart(date).String())
		switch {
		case err == nil:
			wp = &stored
		case !errors.Is(err, ErrNotFound):
			return err
		}
		return nil
	})
	g.Go(func() error {
		var err error
		logs, err = s.Logs(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return coach.Session{}, fmt.Errorf("today %s: %w", date, err)
	}
	return coach.ScheduleFor(p, wp, date, logs), nil
}

// SwapTodayExercise replaces exercise index of the session scheduled for date with a random alternative of the
// same kind. The current exercise and the names in exclude are never picked.
func (s *Service) SwapTodayExercise(
	ctx context.Context,
	date coach.Date,
	index int,
	exclude []string,
) (coach.SessionExercise, error) {
	session, err := s.Today(ctx, date)
	if err != nil {
		return coach.SessionExercise{}, err
	}
	if index < 0 || index >= len(session.Exercises) {
		return coach.SessionExercise{}, fmt.Errorf("%w: no exercise %d on %s", ErrInvalidInput, index, date)
	}
	current := session.Exercises[index]
	alt, ok := coach.SubstituteLift(s.newRand(), current.Kind, current.BaseLoadKg,
		append(slices.Clone(exclude), current.Name))
	if !ok {
		return coach.SessionExercise{}, fmt.Errorf("swap %s: %w", current.Name, ErrNoAlternative)
	}
	return alt, nil
}

// SaveLog stores log, replacing any log of the same date, and grants the rewards it earns. The daily XP is
// granted once per date and the big-3 bonus once per date when all three lifts succeed.
func (s *Service) SaveLog(ctx context.Context, log coach.DailyLog) (LogOutcome, error) {
	log = coach.NormalizeLog(log)
	if log.Date.IsZero() {
		return LogOutcome{}, fmt.Errorf("%w: log without date", ErrInvalidInput)
	}
	key := log.Date.String()

	var out LogOutcome
	err := s.repo.transaction(ctx, func(tx *repository) error {
		prev, err := tx.logs.Get(ctx, key)
		// A corrupt log still occupied the date, so the rewards of that date count as granted.
		corrupt := errors.Is(err, ErrCorruptState)
		existed := err == nil || corrupt
		switch {
		case corrupt:
			s.logger.LogAttrs(ctx, slog.LevelWarn, "replacing corrupt log", errors.SlogError(err))
		case err != nil && !errors.Is(err, ErrNotFound):
			return err
		}
		if err = tx.logs.Put(ctx, key, log); err != nil {
			return err
		}

		xp := 0
		if !existed {
			xp = coach.DailyXP
		}
		if !existed || (!corrupt && coach.Big3Bonus(prev) == 0) {
			xp += coach.Big3Bonus(log)
		}

		g, err := tx.gamification.Get(ctx, "")
		if errors.Is(err, ErrNotFound) {
			g, err = coach.Gamification{XP: 0, Streak: 0, LastDate: coach.Date{}, Badges: []string{}}, nil
		}
		if err != nil {
			return err
		}
		// Backfilling an earlier day adds XP without touching the streak.
		grantDate := log.Date
		if log.Date.Before(g.LastDate) {
			grantDate = g.LastDate
		}
		g, badges := coach.GrantDaily(g, grantDate, xp)
		if err = tx.gamification.Put(ctx, "", g); err != nil {
			return err
		}

		if coach.DidTrain(log) && !(existed && (corrupt || coach.DidTrain(prev))) {
			if err = tx.countSession(ctx); err != nil {
				return err
			}
		}

		logs, err := tx.logs.List(ctx)
		if err != nil {
			return err
		}
		streak := coach.CurrentStreak(logs, log.Date)
		out = LogOutcome{
			Log:          log,
			XPGained:     xp,
			NewBadges:    badges,
			Gamification: g,
			Streak:       streak,
			Praise:       coach.Praise(streak, s.newRand()),
		}
		return nil
	})
	if err != nil {
		return LogOutcome{}, fmt.Errorf("save log %s: %w", key, err)
	}
	if len(out.NewBadges) > 0 {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "badges earned", slog.Any("badges", out.NewBadges))
	}
	return out, nil
}

// countSession increments the completed session count that drives menu progression.
func (r *repository) countSession(ctx context.Context) error {
	p, err := r.profiles.Get(ctx, "")
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	p.SessionsCompleted++
	return r.profiles.Put(ctx, "", p)
}

// Log returns the log of date.
func (s *Service) Log(ctx context.Context, date coach.Date) (coach.DailyLog, error) {
	l, err := s.repo.logs.Get(ctx, date.String())
	if err != nil {
		return coach.DailyLog{}, fmt.Errorf("get log %s: %w", date, err)
	}
	return l, nil
}

// Logs returns every log in ascending date order.
func (s *Service) Logs(ctx context.Context) ([]coach.DailyLog, error) {
	logs, err := s.repo.logs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}
	return logs, nil
}

// Rewards returns the gamification state together with the streak and achievements derived from the logs.
func (s *Service) Rewards(ctx context.Context, today coach.Date) (Rewards, error) {
	var (
		g    coach.Gamification
		p    coach.Profile
		logs []coach.DailyLog
	)
	eg, gctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		g, err = s.repo.gamification.Get(gctx, "")
		if errors.Is(err, ErrNotFound) {
			g, err = coach.Gamification{XP: 0, Streak: 0, LastDate: coach.Date{}, Badges: []string{}}, nil
		}
		return err
	})
	eg.Go(func() error {
		var err error
		p, err = s.profileOrDefault(gctx)
		return err
	})
	eg.Go(func() error {
		var err error
		logs, err = s.Logs(gctx)
		return err
	})
	if err := eg.Wait(); err != nil {
		return Rewards{}, fmt.Errorf("rewards: %w", err)
	}

	streak := coach.CurrentStreak(logs, today)
	praise := ""
	if streak > 0 {
		praise = coach.Praise(streak, s.newRand())
	}
	achievements := coach.EvaluateAchievements(p, logs)
	if achievements == nil {
		achievements = []coach.Achievement{}
	}
	locked := slices.DeleteFunc(coach.Achievements(), func(a coach.Achievement) bool {
		return slices.ContainsFunc(achievements, func(u coach.Achievement) bool { return u.ID == a.ID })
	})
	return Rewards{
		Gamification: g,
		LogStreak:    streak,
		Praise:       praise,
		Achievements: achievements,
		Locked:       locked,
	}, nil
}

// ExportUserData writes everything stored for the user into a SQLite file under dir and returns its path.
func (s *Service) ExportUserData(ctx context.Context, dir string) (string, error) {
	user, err := userKey(ctx)
	if err != nil {
		return "", err
	}
	path, err := s.repo.db.ExportUserData(ctx, user, dir)
	if err != nil {
		return "", fmt.Errorf("export user data: %w", err)
	}
	return path, nil
}

// Roadmap projects the stored profile week by week and places the logged body weights and lifts on the same
// axis.
func (s *Service) Roadmap(ctx context.Context, today coach.Date) (Roadmap, error) {
	var (
		p    coach.Profile
		logs []coach.DailyLog
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		p, err = s.Profile(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		logs, err = s.Logs(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Roadmap{}, fmt.Errorf("roadmap: %w", err)
	}
	if p.StartedAt.IsZero() {
		p.StartedAt = today
	}

	points := coach.ProjectRoadmap(p)
	actuals := make([]RoadmapActual, 0, len(logs))
	for _, l := range logs {
		if l.Date.Before(p.StartedAt) || !coach.DidTrain(l) {
			continue
		}
		actuals = append(actuals, RoadmapActual{
			Week:     coach.WeekIndex(p.StartedAt, l.Date),
			Date:     l.Date,
			WeightKg: l.BodyWeightKg,
			Bench:    l.Lift(coach.Bench).Weight,
			Squat:    l.Lift(coach.Squat).Weight,
			Dead:     l.Lift(coach.Dead).Weight,
		})
	}
	slices.SortStableFunc(actuals, func(a, b RoadmapActual) int { return a.Date.DaysSince(b.Date) })

	return Roadmap{
		GoalWeightKg: coach.EstimateGoalWeight(p),
		CurrentWeek:  min(coach.WeekIndex(p.StartedAt, today), len(points)-1),
		Points:       points,
		Actuals:      actuals,
	}, nil
}
