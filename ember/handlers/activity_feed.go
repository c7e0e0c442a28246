package handlers

import (
	"context"
	"log/slog"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"github.com/emberbot/ember/ember/achievements"
	"github.com/emberbot/ember/ember/database/models"
	"github.com/emberbot/ember/ember/database/repositories"
	"github.com/emberbot/ember/ember/streaks"
)

const debounceCacheSize = 4096

// ActivityFeed turns raw platform events into activity counters, streak
// touches and achievement evaluation. It is the only write path from the
// gateway into the activity stores.
//
// Debounce contract: at most one streak touch and one evaluation per
// (user, guild) per window. Debouncing is pure load shedding - a suppressed
// touch loses nothing because repeat same-day touches are no-ops, and the
// background sweep re-evaluates recently active users anyway. Storage
// failures are logged and dropped; a platform event is never retried.
type ActivityFeed struct {
	activities repositories.ActivityRepository
	social     repositories.SocialStatsRepository
	tracker    *streaks.Tracker
	evaluator  *achievements.Evaluator

	touchSeen     *lru.Cache
	evalSeen      *lru.Cache
	touchDebounce time.Duration
	evalDebounce  time.Duration

	mu            sync.Mutex
	voiceSessions map[string]time.Time

	now func() time.Time
}

func NewActivityFeed(
	activities repositories.ActivityRepository,
	social repositories.SocialStatsRepository,
	tracker *streaks.Tracker,
	evaluator *achievements.Evaluator,
	touchDebounce, evalDebounce time.Duration,
) *ActivityFeed {
	touchSeen, _ := lru.New(debounceCacheSize)
	evalSeen, _ := lru.New(debounceCacheSize)
	return &ActivityFeed{
		activities:    activities,
		social:        social,
		tracker:       tracker,
		evaluator:     evaluator,
		touchSeen:     touchSeen,
		evalSeen:      evalSeen,
		touchDebounce: touchDebounce,
		evalDebounce:  evalDebounce,
		voiceSessions: make(map[string]time.Time),
		now:           time.Now,
	}
}

func pairKey(userID, guildID string) string {
	return userID + "/" + guildID
}

// OnMessage credits one message and drives the streak pipeline.
func (f *ActivityFeed) OnMessage(ctx context.Context, userID, guildID string) {
	if err := f.activities.RecordActivity(ctx, userID, guildID, models.ActivityKindMessage, 1); err != nil {
		slog.Error("Failed to record message activity",
			slog.String("user_id", userID),
			slog.String("guild_id", guildID),
			slog.Any("error", err))
		return
	}
	f.touchAndEvaluate(ctx, userID, guildID)
}

// OnCommand credits one command invocation and drives the streak pipeline.
func (f *ActivityFeed) OnCommand(ctx context.Context, userID, guildID string) {
	if err := f.activities.RecordActivity(ctx, userID, guildID, models.ActivityKindCommand, 1); err != nil {
		slog.Error("Failed to record command activity",
			slog.String("user_id", userID),
			slog.String("guild_id", guildID),
			slog.Any("error", err))
		return
	}
	f.touchAndEvaluate(ctx, userID, guildID)
}

// OnReaction credits the giver's and receiver's social counters. Reactions
// count toward social achievements but do not touch streaks.
func (f *ActivityFeed) OnReaction(ctx context.Context, giverID, receiverID, guildID string) {
	if err := f.social.Increment(ctx, giverID, guildID, 1, 0); err != nil {
		slog.Error("Failed to record reaction given",
			slog.String("user_id", giverID),
			slog.String("guild_id", guildID),
			slog.Any("error", err))
	}
	if receiverID != "" && receiverID != giverID {
		if err := f.social.Increment(ctx, receiverID, guildID, 0, 1); err != nil {
			slog.Error("Failed to record reaction received",
				slog.String("user_id", receiverID),
				slog.String("guild_id", guildID),
				slog.Any("error", err))
		}
	}
	f.maybeEvaluate(ctx, giverID, guildID)
}

// VoiceJoin opens a voice session for the pair.
func (f *ActivityFeed) VoiceJoin(userID, guildID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, open := f.voiceSessions[pairKey(userID, guildID)]; !open {
		f.voiceSessions[pairKey(userID, guildID)] = f.now()
	}
}

// VoiceLeave closes the session and credits whole minutes spent. Sessions
// under a minute still count as activity for the streak, just zero minutes.
func (f *ActivityFeed) VoiceLeave(ctx context.Context, userID, guildID string) {
	f.mu.Lock()
	started, open := f.voiceSessions[pairKey(userID, guildID)]
	delete(f.voiceSessions, pairKey(userID, guildID))
	f.mu.Unlock()

	if !open {
		return
	}

	minutes := int64(f.now().Sub(started) / time.Minute)
	if minutes > 0 {
		if err := f.activities.RecordActivity(ctx, userID, guildID, models.ActivityKindVoiceMinutes, minutes); err != nil {
			slog.Error("Failed to record voice activity",
				slog.String("user_id", userID),
				slog.String("guild_id", guildID),
				slog.Any("error", err))
			return
		}
	}
	f.touchAndEvaluate(ctx, userID, guildID)
}

func (f *ActivityFeed) touchAndEvaluate(ctx context.Context, userID, guildID string) {
	if f.debounced(f.touchSeen, userID, guildID, f.touchDebounce) {
		return
	}

	result, err := f.tracker.TouchActivity(ctx, userID, guildID)
	if err != nil {
		slog.Error("Streak touch failed",
			slog.String("user_id", userID),
			slog.String("guild_id", guildID),
			slog.Any("error", err))
		return
	}

	if result.Outcome == streaks.OutcomeBridged {
		slog.Info("Streak bridged with a freeze",
			slog.String("user_id", userID),
			slog.String("guild_id", guildID),
			slog.Int("streak", result.State.CurrentStreak))
	}

	f.maybeEvaluate(ctx, userID, guildID)
}

func (f *ActivityFeed) maybeEvaluate(ctx context.Context, userID, guildID string) {
	if f.debounced(f.evalSeen, userID, guildID, f.evalDebounce) {
		return
	}

	if _, err := f.evaluator.CheckAllAchievements(ctx, userID, guildID); err != nil {
		slog.Error("Achievement evaluation failed",
			slog.String("user_id", userID),
			slog.String("guild_id", guildID),
			slog.Any("error", err))
	}
}

// debounced records a firing and reports whether the previous one for the
// pair was inside the window.
func (f *ActivityFeed) debounced(cache *lru.Cache, userID, guildID string, window time.Duration) bool {
	key := pairKey(userID, guildID)
	now := f.now()
	if last, ok := cache.Get(key); ok {
		if now.Sub(last.(time.Time)) < window {
			return true
		}
	}
	cache.Add(key, now)
	return false
}
