package migration

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/uptrace/bun"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/emberbot/ember/ember/database/models"
	"github.com/emberbot/ember/ember/logger"
)

// Importer copies streak and achievement state out of the predecessor bot's
// MongoDB into Postgres. Every insert is conflict-guarded, so re-running the
// import never duplicates or overwrites rows touched since.
type Importer struct {
	pgDB      *bun.DB
	mongoURI  string
	mongoName string
	batchSize int
	collNames map[string]string

	stats ImportStats
}

// ImportStats tracks per-collection progress for the final report.
type ImportStats struct {
	StartTime time.Time
	Streaks   TableStats
	Awards    TableStats
	Activity  TableStats
}

type TableStats struct {
	Read     int
	Imported int
	Skipped  int
	Failed   int
}

// legacyUserStats is the predecessor's per-member document.
type legacyUserStats struct {
	UserID        string    `bson:"user_id"`
	GuildID       string    `bson:"guild_id"`
	CurrentStreak int       `bson:"current_streak"`
	LongestStreak int       `bson:"longest_streak"`
	TotalDays     int       `bson:"total_days"`
	LastActive    time.Time `bson:"last_active"`
	Messages      int64     `bson:"messages"`
	VoiceMinutes  int64     `bson:"voice_minutes"`
}

// legacyAward is one earned achievement in the predecessor's schema.
type legacyAward struct {
	UserID        string    `bson:"user_id"`
	GuildID       string    `bson:"guild_id"`
	AchievementID string    `bson:"achievement_id"`
	EarnedAt      time.Time `bson:"earned_at"`
}

func NewImporter(pgDB *bun.DB, mongoURI, mongoName string) *Importer {
	return &Importer{
		pgDB:      pgDB,
		mongoURI:  mongoURI,
		mongoName: mongoName,
		batchSize: 1000,
		collNames: map[string]string{
			"userstats": "userstats",
			"awards":    "userachievements",
		},
		stats: ImportStats{StartTime: time.Now()},
	}
}

// ImportAll runs the full legacy import: streak state first, then awards.
func (m *Importer) ImportAll(ctx context.Context) error {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(m.mongoURI))
	if err != nil {
		return fmt.Errorf("failed to connect to legacy mongo: %w", err)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.LogError("Failed to disconnect from legacy mongo", err)
		}
	}()

	db := client.Database(m.mongoName)

	if err := m.importStreaks(ctx, db); err != nil {
		return err
	}
	if err := m.importAwards(ctx, db); err != nil {
		return err
	}

	m.report()
	return nil
}

func (m *Importer) importStreaks(ctx context.Context, db *mongo.Database) error {
	cursor, err := db.Collection(m.collNames["userstats"]).Find(ctx, bson.D{})
	if err != nil {
		return fmt.Errorf("failed to read legacy user stats: %w", err)
	}
	defer cursor.Close(ctx)

	batch := make([]*models.StreakState, 0, m.batchSize)
	now := time.Now()

	for cursor.Next(ctx) {
		var doc legacyUserStats
		if err := cursor.Decode(&doc); err != nil {
			m.stats.Streaks.Failed++
			continue
		}
		m.stats.Streaks.Read++

		if doc.UserID == "" || doc.GuildID == "" {
			m.stats.Streaks.Skipped++
			continue
		}

		state := &models.StreakState{
			UserID:          doc.UserID,
			GuildID:         doc.GuildID,
			CurrentStreak:   doc.CurrentStreak,
			LongestStreak:   max(doc.LongestStreak, doc.CurrentStreak),
			TotalActiveDays: doc.TotalDays,
			// The predecessor had no freeze concept; imports start with a
			// full allowance.
			FreezesAvailable: 1,
			LastFreezeReset:  now,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if !doc.LastActive.IsZero() {
			day := models.UTCDay(doc.LastActive)
			state.LastActivityDate = &day
		}

		batch = append(batch, state)
		if len(batch) >= m.batchSize {
			m.flushStreaks(ctx, batch)
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		m.flushStreaks(ctx, batch)
	}
	return cursor.Err()
}

func (m *Importer) flushStreaks(ctx context.Context, batch []*models.StreakState) {
	res, err := m.pgDB.NewInsert().
		Model(&batch).
		On("CONFLICT (user_id, guild_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		logger.LogError("Streak batch import failed", err, slog.Int("batch_size", len(batch)))
		m.stats.Streaks.Failed += len(batch)
		return
	}
	rows, _ := res.RowsAffected()
	m.stats.Streaks.Imported += int(rows)
	m.stats.Streaks.Skipped += len(batch) - int(rows)
}

func (m *Importer) importAwards(ctx context.Context, db *mongo.Database) error {
	cursor, err := db.Collection(m.collNames["awards"]).Find(ctx, bson.D{})
	if err != nil {
		return fmt.Errorf("failed to read legacy awards: %w", err)
	}
	defer cursor.Close(ctx)

	batch := make([]*models.AwardedAchievement, 0, m.batchSize)

	for cursor.Next(ctx) {
		var doc legacyAward
		if err := cursor.Decode(&doc); err != nil {
			m.stats.Awards.Failed++
			continue
		}
		m.stats.Awards.Read++

		if doc.UserID == "" || doc.GuildID == "" || doc.AchievementID == "" {
			m.stats.Awards.Skipped++
			continue
		}

		earnedAt := doc.EarnedAt
		if earnedAt.IsZero() {
			earnedAt = time.Now()
		}

		batch = append(batch, &models.AwardedAchievement{
			UserID:        doc.UserID,
			GuildID:       doc.GuildID,
			AchievementID: doc.AchievementID,
			EarnedAt:      earnedAt,
		})
		if len(batch) >= m.batchSize {
			m.flushAwards(ctx, batch)
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		m.flushAwards(ctx, batch)
	}
	return cursor.Err()
}

func (m *Importer) flushAwards(ctx context.Context, batch []*models.AwardedAchievement) {
	res, err := m.pgDB.NewInsert().
		Model(&batch).
		On("CONFLICT (user_id, guild_id, achievement_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		logger.LogError("Award batch import failed", err, slog.Int("batch_size", len(batch)))
		m.stats.Awards.Failed += len(batch)
		return
	}
	rows, _ := res.RowsAffected()
	m.stats.Awards.Imported += int(rows)
	m.stats.Awards.Skipped += len(batch) - int(rows)
}

func (m *Importer) report() {
	logger.LogSystem("Legacy import finished",
		slog.Duration("took", time.Since(m.stats.StartTime)),
		slog.Int("streaks_read", m.stats.Streaks.Read),
		slog.Int("streaks_imported", m.stats.Streaks.Imported),
		slog.Int("streaks_skipped", m.stats.Streaks.Skipped),
		slog.Int("streaks_failed", m.stats.Streaks.Failed),
		slog.Int("awards_read", m.stats.Awards.Read),
		slog.Int("awards_imported", m.stats.Awards.Imported),
		slog.Int("awards_skipped", m.stats.Awards.Skipped),
		slog.Int("awards_failed", m.stats.Awards.Failed),
	)
}
