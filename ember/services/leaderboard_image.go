package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/emberbot/ember/ember/database/models"
)

// LeaderboardImageService renders the guild streak leaderboard to a PNG via
// headless Chrome. Rendering failures are the caller's cue to fall back to a
// plain embed.
type LeaderboardImageService struct {
	logger *slog.Logger
}

type leaderboardEntry struct {
	Rank          int
	DisplayName   string
	CurrentStreak int
	LongestStreak int
	TotalDays     int
}

type leaderboardData struct {
	GuildName string
	Timestamp string
	Entries   []leaderboardEntry
}

func NewLeaderboardImageService() *LeaderboardImageService {
	service := &LeaderboardImageService{
		logger: slog.With(slog.String("service", "leaderboard_image")),
	}
	service.testChromedpAvailability()
	return service
}

func (s *LeaderboardImageService) testChromedpAvailability() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	chromedpCtx, cancel := chromedp.NewContext(ctx)
	defer cancel()

	err := chromedp.Run(chromedpCtx, chromedp.Navigate("data:text/html,<html><body>test</body></html>"))
	if err != nil {
		s.logger.Error("chromedp not available - image generation will fail",
			slog.String("error", err.Error()))
	} else {
		s.logger.Info("chromedp is available and working")
	}
}

// GenerateStreakLeaderboard renders the top streaks. names maps user ids to
// display names; unknown ids fall back to the raw id.
func (s *LeaderboardImageService) GenerateStreakLeaderboard(ctx context.Context, guildName string, states []*models.StreakState, names map[string]string) ([]byte, error) {
	start := time.Now()

	if len(states) == 0 {
		return nil, fmt.Errorf("no streak entries provided")
	}
	if len(states) > 10 {
		states = states[:10]
	}

	entries := make([]leaderboardEntry, 0, len(states))
	for i, state := range states {
		name := names[state.UserID]
		if name == "" {
			name = state.UserID
		}
		entries = append(entries, leaderboardEntry{
			Rank:          i + 1,
			DisplayName:   name,
			CurrentStreak: state.CurrentStreak,
			LongestStreak: state.LongestStreak,
			TotalDays:     state.TotalActiveDays,
		})
	}

	data := leaderboardData{
		GuildName: guildName,
		Timestamp: time.Now().Format("15:04 MST"),
		Entries:   entries,
	}

	htmlContent, err := s.generateHTML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	chromedpCtx, cancel := chromedp.NewContext(ctx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancel()

	chromedpCtx, cancel = context.WithTimeout(chromedpCtx, 15*time.Second)
	defer cancel()

	var imageBytes []byte
	err = chromedp.Run(chromedpCtx,
		chromedp.Navigate("data:text/html,"+htmlContent),
		chromedp.WaitVisible("#leaderboard-container", chromedp.ByID),
		chromedp.Sleep(500*time.Millisecond),
		chromedp.Screenshot("#leaderboard-container", &imageBytes, chromedp.ByID),
	)
	if err != nil {
		s.logger.Error("Failed to generate image with chromedp",
			slog.String("error", err.Error()),
			slog.Duration("elapsed", time.Since(start)))
		return nil, fmt.Errorf("failed to generate image: %w", err)
	}

	s.logger.Info("Streak leaderboard image generated",
		slog.String("guild", guildName),
		slog.Int("image_size", len(imageBytes)),
		slog.Duration("elapsed", time.Since(start)))

	return imageBytes, nil
}

func (s *LeaderboardImageService) generateHTML(data leaderboardData) (string, error) {
	templatePath := filepath.Join("ember", "templates", "streak_leaderboard.html")

	templateContent, err := os.ReadFile(templatePath)
	if err != nil {
		return "", fmt.Errorf("failed to read template file: %w", err)
	}

	tmpl, err := template.New("streak_leaderboard").Parse(string(templateContent))
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	// data: URLs treat # as a fragment, so escape it before navigating.
	htmlContent := strings.ReplaceAll(buf.String(), "#", "%23")
	htmlContent = strings.ReplaceAll(htmlContent, "\n", "")
	return htmlContent, nil
}
