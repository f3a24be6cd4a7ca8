package progress

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/msksk8cool/sk8school-bot/pkg/achievement"
	"github.com/msksk8cool/sk8school-bot/pkg/booking"
	"github.com/msksk8cool/sk8school-bot/pkg/catalog"
	"github.com/msksk8cool/sk8school-bot/pkg/metrics"
	"github.com/msksk8cool/sk8school-bot/pkg/store"
	"github.com/sirupsen/logrus"
)

// DocumentName is the store collection holding progress records.
const DocumentName = "user_progress"

// RecentSessions is how many sessions the progress summary lists.
const RecentSessions = 5

// TrackerConfig configures a Tracker.
type TrackerConfig struct {
	Tiers    []catalog.Tier
	Now      func() time.Time
	Location *time.Location
}

// Tracker records confirmed sessions and evaluates achievements.
type Tracker struct {
	doc    *store.Document[Record]
	engine *achievement.Engine
	tiers  []catalog.Tier
	now    func() time.Time
	loc    *time.Location
}

// NewTracker creates a progress tracker over a store backend.
func NewTracker(backend store.Backend, engine *achievement.Engine, cfg TrackerConfig) *Tracker {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if len(cfg.Tiers) == 0 {
		cfg.Tiers = catalog.Default().Tiers
	}

	return &Tracker{
		doc:    store.NewDocument[Record](backend, DocumentName),
		engine: engine,
		tiers:  cfg.Tiers,
		now:    cfg.Now,
		loc:    cfg.Location,
	}
}

func userKey(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

// history converts a record's sessions to the rule input. Sessions with a
// malformed date are left out.
func (t *Tracker) history(key string, rec *Record, now time.Time) achievement.History {
	h := achievement.History{UserID: key, Now: now}
	for _, s := range rec.Sessions {
		d, err := time.ParseInLocation(booking.DateLayout, s.Date, t.loc)
		if err != nil {
			logrus.Warnf("skipping session with invalid date %q for user %s", s.Date, key)
			continue
		}
		h.Dates = append(h.Dates, d)
	}
	return h
}

// AddSession appends a session, recomputes the tier and unlocks new achievements.
// The whole progress document is rewritten.
func (t *Tracker) AddSession(ctx context.Context, in SessionInput) (*Result, error) {
	key := userKey(in.UserID)
	now := t.now()
	var res Result

	err := t.doc.Mutate(ctx, func(items map[string]Record) (bool, error) {
		rec, ok := items[key]
		if !ok {
			rec = Record{
				UserName:     in.UserName,
				Username:     in.Username,
				Sessions:     []Session{},
				Achievements: []string{},
				Level:        TierFor(t.tiers, 0).ID,
			}
		}

		rec.Sessions = append(rec.Sessions, Session{
			Date:      in.Date,
			Time:      in.Time,
			Park:      in.Park,
			Timestamp: now,
		})
		rec.TotalSessions = len(rec.Sessions)
		if rec.FirstSession == "" {
			rec.FirstSession = in.Date
		}
		rec.LastSession = in.Date

		tier := TierFor(t.tiers, rec.TotalSessions)
		rec.Level = tier.ID

		unlocked := t.engine.Evaluate(ctx, t.history(key, &rec, now), rec.Achievements)
		for _, u := range unlocked {
			rec.Achievements = append(rec.Achievements, u.ID)
		}

		items[key] = rec
		res = Result{NewAchievements: unlocked, Level: tier, Total: rec.TotalSessions}
		return true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record session for user %d: %w", in.UserID, err)
	}

	for _, u := range res.NewAchievements {
		metrics.AchievementsUnlockedTotal.WithLabelValues(u.ID).Inc()
	}

	logrus.Infof("user %d has %d sessions, level %s, %d new achievements",
		in.UserID, res.Total, res.Level.ID, len(res.NewAchievements))
	return &res, nil
}

// UserProgress builds the progress summary. The bool is false when the user
// has no record yet.
func (t *Tracker) UserProgress(ctx context.Context, userID int64) (*Summary, bool) {
	var (
		rec Record
		ok  bool
	)
	t.doc.Read(ctx, func(items map[string]Record) {
		rec, ok = items[userKey(userID)]
		if ok {
			rec.Sessions = append([]Session(nil), rec.Sessions...)
			rec.Achievements = append([]string(nil), rec.Achievements...)
		}
	})
	if !ok {
		return nil, false
	}

	cur := tierByID(t.tiers, rec.Level, rec.TotalSessions)
	next := NextTier(t.tiers, rec.TotalSessions)

	recent := rec.Sessions
	if len(recent) > RecentSessions {
		recent = recent[len(recent)-RecentSessions:]
	}

	return &Summary{
		UserName:          rec.UserName,
		Username:          rec.Username,
		Tier:              cur,
		Next:              next,
		Percent:           Percent(rec.TotalSessions, cur, next),
		Total:             rec.TotalSessions,
		Achievements:      t.engine.Describe(rec.Achievements),
		AchievementsTotal: t.engine.Total(),
		FirstSession:      rec.FirstSession,
		LastSession:       rec.LastSession,
		Recent:            recent,
	}, true
}

// Leaderboard ranks users by total sessions, highest first. Ties are broken
// by ascending user id. A limit of zero or less returns everyone.
func (t *Tracker) Leaderboard(ctx context.Context, limit int) []Entry {
	var entries []Entry
	t.doc.Read(ctx, func(items map[string]Record) {
		for key, rec := range items {
			id, err := strconv.ParseInt(key, 10, 64)
			if err != nil {
				logrus.Warnf("skipping progress record with invalid user id %q", key)
				continue
			}
			entries = append(entries, Entry{
				UserID:       id,
				UserName:     rec.UserName,
				Username:     rec.Username,
				Total:        rec.TotalSessions,
				Level:        tierByID(t.tiers, rec.Level, rec.TotalSessions).Name,
				Achievements: len(rec.Achievements),
			})
		}
	})

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Total != entries[j].Total {
			return entries[i].Total > entries[j].Total
		}
		return entries[i].UserID < entries[j].UserID
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}
