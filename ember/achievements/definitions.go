package achievements

import (
	"time"

	"github.com/emberbot/ember/ember/database/models"
)

func streakMilestone(id, title, emoji string, days int64, rarity models.Rarity, points int, grantRole bool) *models.AchievementDefinition {
	return &models.AchievementDefinition{
		AchievementID: id,
		Title:         title,
		Description:   descDays("Keep a daily activity streak alive for", days),
		Emoji:         emoji,
		Category:      models.CategoryStreak,
		Rarity:        rarity,
		CheckType:     models.CheckTypeExact,
		Criteria:      models.CriteriaSpec{Criteria: models.ExactCriteria{Stat: models.StatCurrentStreak, Value: days}},
		GrantRole:     grantRole,
		Points:        points,
	}
}

func thresholdDef(id, title, description, emoji, category string, stat models.StatKind, value int64, rarity models.Rarity, points int) *models.AchievementDefinition {
	return &models.AchievementDefinition{
		AchievementID: id,
		Title:         title,
		Description:   description,
		Emoji:         emoji,
		Category:      category,
		Rarity:        rarity,
		CheckType:     models.CheckTypeThreshold,
		Criteria:      models.CriteriaSpec{Criteria: models.ThresholdCriteria{Stat: stat, Value: value}},
		Points:        points,
	}
}

func specialDef(id, title, description, emoji string, predicate string, rarity models.Rarity, points int) *models.AchievementDefinition {
	return &models.AchievementDefinition{
		AchievementID: id,
		Title:         title,
		Description:   description,
		Emoji:         emoji,
		Category:      models.CategorySpecial,
		Rarity:        rarity,
		CheckType:     models.CheckTypeSpecial,
		Criteria:      models.CriteriaSpec{Criteria: models.SpecialCriteria{Predicate: predicate}},
		Points:        points,
	}
}

func comboDef(id, title, description, emoji string, parts []models.StatThreshold, rarity models.Rarity, points int) *models.AchievementDefinition {
	return &models.AchievementDefinition{
		AchievementID: id,
		Title:         title,
		Description:   description,
		Emoji:         emoji,
		Category:      models.CategoryCombo,
		Rarity:        rarity,
		CheckType:     models.CheckTypeCombo,
		Criteria:      models.CriteriaSpec{Criteria: models.ComboCriteria{Parts: parts}},
		Points:        points,
	}
}

func metaDef(id, title, emoji string, count int, rarity models.Rarity, points int) *models.AchievementDefinition {
	return &models.AchievementDefinition{
		AchievementID: id,
		Title:         title,
		Description:   descCount("Earn", count, "other achievements"),
		Emoji:         emoji,
		Category:      models.CategoryMeta,
		Rarity:        rarity,
		CheckType:     models.CheckTypeMeta,
		Criteria:      models.CriteriaSpec{Criteria: models.MetaCriteria{Count: count}},
		Points:        points,
	}
}

func descDays(prefix string, days int64) string {
	if days == 1 {
		return prefix + " 1 day"
	}
	return prefix + " " + itoa(days) + " days"
}

func descCount(prefix string, count int, suffix string) string {
	return prefix + " " + itoa(int64(count)) + " " + suffix
}

func itoa(n int64) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

func seasonWindow(start, end time.Time) (s, e *time.Time) {
	return &start, &end
}

// CoreDefinitions returns the seeded catalog. Ids are stable; display
// fields may change between releases and are refreshed on startup.
func CoreDefinitions() []*models.AchievementDefinition {
	defs := []*models.AchievementDefinition{
		// Streak milestones. These grant roles from a week up.
		streakMilestone("streak_3", "Kindling", "🕯️", 3, models.RarityCommon, 10, false),
		streakMilestone("streak_7", "First Flame", "🔥", 7, models.RarityCommon, 25, true),
		streakMilestone("streak_14", "Two Weeks Strong", "🔥", 14, models.RarityUncommon, 50, true),
		streakMilestone("streak_21", "Three Week Blaze", "🔥", 21, models.RarityUncommon, 75, true),
		streakMilestone("streak_30", "Monthly Flame", "🔥", 30, models.RarityRare, 100, true),
		streakMilestone("streak_50", "Fifty Days of Fire", "🔥", 50, models.RarityRare, 150, true),
		streakMilestone("streak_60", "Two Month Torch", "🔥", 60, models.RarityRare, 200, true),
		streakMilestone("streak_90", "Quarterly Inferno", "🌋", 90, models.RarityEpic, 300, true),
		streakMilestone("streak_100", "Century of Sparks", "💯", 100, models.RarityEpic, 350, true),
		streakMilestone("streak_180", "Half Year Hearth", "🌋", 180, models.RarityEpic, 500, true),
		streakMilestone("streak_365", "Eternal Flame", "☀️", 365, models.RarityLegendary, 1000, true),
		streakMilestone("streak_500", "Five Hundred Suns", "☀️", 500, models.RarityLegendary, 1500, true),
		streakMilestone("streak_730", "Two Year Beacon", "🌟", 730, models.RarityMythic, 2500, true),
		streakMilestone("streak_1000", "The Unextinguished", "🌟", 1000, models.RarityMythic, 5000, true),

		// Lifetime active days.
		thresholdDef("total_5", "Getting Settled", "Be active on 5 different days", "🌱", models.CategoryTotal, models.StatTotalDays, 5, models.RarityCommon, 10),
		thresholdDef("total_10", "Regular Visitor", "Be active on 10 different days", "🌱", models.CategoryTotal, models.StatTotalDays, 10, models.RarityCommon, 20),
		thresholdDef("total_20", "Familiar Face", "Be active on 20 different days", "🌿", models.CategoryTotal, models.StatTotalDays, 20, models.RarityCommon, 35),
		thresholdDef("total_30", "Month of Moments", "Be active on 30 different days", "🌿", models.CategoryTotal, models.StatTotalDays, 30, models.RarityUncommon, 50),
		thresholdDef("total_50", "Fifty Days In", "Be active on 50 different days", "🌳", models.CategoryTotal, models.StatTotalDays, 50, models.RarityUncommon, 75),
		thresholdDef("total_75", "Diamond Attendance", "Be active on 75 different days", "🌳", models.CategoryTotal, models.StatTotalDays, 75, models.RarityUncommon, 100),
		thresholdDef("total_100", "Hundred Day Club", "Be active on 100 different days", "🏛️", models.CategoryTotal, models.StatTotalDays, 100, models.RarityRare, 150),
		thresholdDef("total_150", "Deep Roots", "Be active on 150 different days", "🏛️", models.CategoryTotal, models.StatTotalDays, 150, models.RarityRare, 200),
		thresholdDef("total_200", "Two Hundred Strong", "Be active on 200 different days", "🏔️", models.CategoryTotal, models.StatTotalDays, 200, models.RarityRare, 250),
		thresholdDef("total_250", "Cornerstone", "Be active on 250 different days", "🏔️", models.CategoryTotal, models.StatTotalDays, 250, models.RarityEpic, 300),
		thresholdDef("total_300", "Village Elder", "Be active on 300 different days", "🗿", models.CategoryTotal, models.StatTotalDays, 300, models.RarityEpic, 400),
		thresholdDef("total_365", "A Year of Days", "Be active on 365 different days", "🗿", models.CategoryTotal, models.StatTotalDays, 365, models.RarityEpic, 500),
		thresholdDef("total_500", "Living Landmark", "Be active on 500 different days", "⛰️", models.CategoryTotal, models.StatTotalDays, 500, models.RarityLegendary, 750),
		thresholdDef("total_750", "Institution", "Be active on 750 different days", "⛰️", models.CategoryTotal, models.StatTotalDays, 750, models.RarityLegendary, 1000),
		thresholdDef("total_1000", "Thousand Day Legend", "Be active on 1000 different days", "🏰", models.CategoryTotal, models.StatTotalDays, 1000, models.RarityMythic, 2000),

		// Lifetime messages.
		thresholdDef("msg_100", "Ice Breaker", "Send 100 messages", "💬", models.CategoryMessage, models.StatMessages, 100, models.RarityCommon, 10),
		thresholdDef("msg_500", "Conversationalist", "Send 500 messages", "💬", models.CategoryMessage, models.StatMessages, 500, models.RarityCommon, 25),
		thresholdDef("msg_1000", "Chatterbox", "Send 1,000 messages", "🗨️", models.CategoryMessage, models.StatMessages, 1000, models.RarityUncommon, 50),
		thresholdDef("msg_2500", "Wordsmith", "Send 2,500 messages", "🗨️", models.CategoryMessage, models.StatMessages, 2500, models.RarityUncommon, 75),
		thresholdDef("msg_5000", "Town Crier", "Send 5,000 messages", "📣", models.CategoryMessage, models.StatMessages, 5000, models.RarityRare, 125),
		thresholdDef("msg_10000", "Five Digit Talker", "Send 10,000 messages", "📣", models.CategoryMessage, models.StatMessages, 10000, models.RarityRare, 200),
		thresholdDef("msg_25000", "Keyboard Warrior", "Send 25,000 messages", "⌨️", models.CategoryMessage, models.StatMessages, 25000, models.RarityEpic, 350),
		thresholdDef("msg_50000", "Archive Unto Yourself", "Send 50,000 messages", "📚", models.CategoryMessage, models.StatMessages, 50000, models.RarityLegendary, 600),
		thresholdDef("msg_100000", "The Voice of the Server", "Send 100,000 messages", "📜", models.CategoryMessage, models.StatMessages, 100000, models.RarityMythic, 1200),

		// Lifetime voice minutes.
		thresholdDef("voice_60", "Mic Check", "Spend an hour in voice channels", "🎤", models.CategoryVoice, models.StatVoiceMinutes, 60, models.RarityCommon, 10),
		thresholdDef("voice_300", "Warmed Up", "Spend 5 hours in voice channels", "🎤", models.CategoryVoice, models.StatVoiceMinutes, 300, models.RarityCommon, 25),
		thresholdDef("voice_600", "Ten Hour Talker", "Spend 10 hours in voice channels", "🎧", models.CategoryVoice, models.StatVoiceMinutes, 600, models.RarityUncommon, 50),
		thresholdDef("voice_1500", "Voice Regular", "Spend 25 hours in voice channels", "🎧", models.CategoryVoice, models.StatVoiceMinutes, 1500, models.RarityUncommon, 75),
		thresholdDef("voice_3000", "Fifty Hour Fixture", "Spend 50 hours in voice channels", "🔊", models.CategoryVoice, models.StatVoiceMinutes, 3000, models.RarityRare, 125),
		thresholdDef("voice_6000", "Hundred Hour Voice", "Spend 100 hours in voice channels", "🔊", models.CategoryVoice, models.StatVoiceMinutes, 6000, models.RarityRare, 200),
		thresholdDef("voice_15000", "Always On Air", "Spend 250 hours in voice channels", "📻", models.CategoryVoice, models.StatVoiceMinutes, 15000, models.RarityEpic, 350),
		thresholdDef("voice_30000", "Broadcast Tower", "Spend 500 hours in voice channels", "🗼", models.CategoryVoice, models.StatVoiceMinutes, 30000, models.RarityLegendary, 600),
		thresholdDef("voice_60000", "The Thousand Hour Voice", "Spend 1,000 hours in voice channels", "🛰️", models.CategoryVoice, models.StatVoiceMinutes, 60000, models.RarityMythic, 1200),

		// Lifetime commands.
		thresholdDef("cmd_10", "Button Presser", "Run 10 commands", "🔘", models.CategoryCommand, models.StatCommands, 10, models.RarityCommon, 10),
		thresholdDef("cmd_50", "Power User", "Run 50 commands", "🔘", models.CategoryCommand, models.StatCommands, 50, models.RarityCommon, 25),
		thresholdDef("cmd_100", "Command Line", "Run 100 commands", "🕹️", models.CategoryCommand, models.StatCommands, 100, models.RarityUncommon, 50),
		thresholdDef("cmd_250", "Macro Mind", "Run 250 commands", "🕹️", models.CategoryCommand, models.StatCommands, 250, models.RarityUncommon, 75),
		thresholdDef("cmd_500", "Scriptless Automation", "Run 500 commands", "⚙️", models.CategoryCommand, models.StatCommands, 500, models.RarityRare, 125),
		thresholdDef("cmd_1000", "Terminal Velocity", "Run 1,000 commands", "⚙️", models.CategoryCommand, models.StatCommands, 1000, models.RarityRare, 200),
		thresholdDef("cmd_2500", "Bot Whisperer", "Run 2,500 commands", "🤖", models.CategoryCommand, models.StatCommands, 2500, models.RarityEpic, 350),
		thresholdDef("cmd_5000", "Machine Symbiosis", "Run 5,000 commands", "🦾", models.CategoryCommand, models.StatCommands, 5000, models.RarityLegendary, 600),

		// Social counters.
		thresholdDef("social_react_10", "First Impressions", "React to 10 messages", "👍", models.CategorySocial, models.StatReactionsGiven, 10, models.RarityCommon, 10),
		thresholdDef("social_react_50", "Supportive Soul", "React to 50 messages", "👍", models.CategorySocial, models.StatReactionsGiven, 50, models.RarityCommon, 25),
		thresholdDef("social_react_100", "Hype Machine", "React to 100 messages", "🙌", models.CategorySocial, models.StatReactionsGiven, 100, models.RarityUncommon, 50),
		thresholdDef("social_react_500", "Emoji Economist", "React to 500 messages", "🙌", models.CategorySocial, models.StatReactionsGiven, 500, models.RarityRare, 125),
		thresholdDef("social_react_1000", "Reaction Royalty", "React to 1,000 messages", "👑", models.CategorySocial, models.StatReactionsGiven, 1000, models.RarityEpic, 300),
		thresholdDef("social_popular_10", "Noticed", "Receive reactions on your messages 10 times", "✨", models.CategorySocial, models.StatReactionsReceived, 10, models.RarityCommon, 10),
		thresholdDef("social_popular_50", "Crowd Pleaser", "Receive reactions on your messages 50 times", "✨", models.CategorySocial, models.StatReactionsReceived, 50, models.RarityCommon, 25),
		thresholdDef("social_popular_100", "Fan Favorite", "Receive reactions on your messages 100 times", "🌟", models.CategorySocial, models.StatReactionsReceived, 100, models.RarityUncommon, 50),
		thresholdDef("social_popular_500", "Server Celebrity", "Receive reactions on your messages 500 times", "🌟", models.CategorySocial, models.StatReactionsReceived, 500, models.RarityRare, 125),
		thresholdDef("social_popular_1000", "Beloved", "Receive reactions on your messages 1,000 times", "💖", models.CategorySocial, models.StatReactionsReceived, 1000, models.RarityEpic, 300),

		// Specials: each predicate is its own routine over daily records.
		specialDef("special_voice_half_day", "Half Day On Air", "Spend 12 hours in voice within one day", "🌙", PredicateVoiceHalfDay, models.RarityEpic, 300),
		specialDef("special_marathon", "Message Marathon", "Send 500 messages within one day", "🏃", PredicateMessageMarathon, models.RarityRare, 200),
		specialDef("special_all_rounder", "All-Rounder", "Chat, talk and run commands all in the same day", "🎯", PredicateAllRounder, models.RarityUncommon, 75),
		specialDef("special_anniversary", "Anniversary", "Be part of the community for a full year", "🎂", PredicateAnniversary, models.RarityEpic, 365),
		specialDef("special_weekend_warrior", "Weekend Warrior", "Be active on both days of four different weekends", "🛡️", PredicateWeekendWarrior, models.RarityRare, 150),

		// Combos: every leg must hold at once.
		comboDef("combo_settled_chatter", "Settled Chatter", "1,000 messages and 30 active days", "🧩",
			[]models.StatThreshold{
				{Stat: models.StatMessages, Value: 1000},
				{Stat: models.StatTotalDays, Value: 30},
			}, models.RarityUncommon, 100),
		comboDef("combo_voice_and_text", "Two Channels", "5,000 messages and 50 voice hours", "🧩",
			[]models.StatThreshold{
				{Stat: models.StatMessages, Value: 5000},
				{Stat: models.StatVoiceMinutes, Value: 3000},
			}, models.RarityRare, 200),
		comboDef("combo_triple_threat", "Triple Threat", "1,000 messages, 10 voice hours and 100 commands", "🎭",
			[]models.StatThreshold{
				{Stat: models.StatMessages, Value: 1000},
				{Stat: models.StatVoiceMinutes, Value: 600},
				{Stat: models.StatCommands, Value: 100},
			}, models.RarityRare, 250),
		comboDef("combo_dedicated", "Dedicated", "A 30 day streak and 100 active days", "🏅",
			[]models.StatThreshold{
				{Stat: models.StatCurrentStreak, Value: 30},
				{Stat: models.StatTotalDays, Value: 100},
			}, models.RarityEpic, 400),
		comboDef("combo_socialite", "Socialite", "Give and receive 100 reactions", "🎊",
			[]models.StatThreshold{
				{Stat: models.StatReactionsGiven, Value: 100},
				{Stat: models.StatReactionsReceived, Value: 100},
			}, models.RarityRare, 200),
		comboDef("combo_all_in", "All In", "10,000 messages, 100 voice hours, 500 commands, 200 active days", "💎",
			[]models.StatThreshold{
				{Stat: models.StatMessages, Value: 10000},
				{Stat: models.StatVoiceMinutes, Value: 6000},
				{Stat: models.StatCommands, Value: 500},
				{Stat: models.StatTotalDays, Value: 200},
			}, models.RarityLegendary, 750),

		// Meta: counts non-meta achievements only.
		metaDef("meta_5", "Collector", "🧺", 5, models.RarityCommon, 25),
		metaDef("meta_10", "Curator", "🗃️", 10, models.RarityUncommon, 75),
		metaDef("meta_25", "Completionist", "🏆", 25, models.RarityRare, 200),
		metaDef("meta_40", "Trophy Hunter", "🏆", 40, models.RarityEpic, 400),
		metaDef("meta_60", "Gotta Earn Them All", "👑", 60, models.RarityLegendary, 1000),
	}

	// Seasonal specials carry an awarding window independent of criteria.
	newYear := specialDef("seasonal_new_year", "New Year, Same Flame", "Be active through the turn of the year", "🎆", PredicateAllRounder, models.RarityRare, 100)
	newYear.SeasonStart, newYear.SeasonEnd = seasonWindow(
		time.Date(2026, time.December, 27, 0, 0, 0, 0, time.UTC),
		time.Date(2027, time.January, 8, 0, 0, 0, 0, time.UTC),
	)

	summer := specialDef("seasonal_summer_marathon", "Summer Marathon", "Run a message marathon during the summer festival", "🏖️", PredicateMessageMarathon, models.RarityEpic, 250)
	summer.SeasonStart, summer.SeasonEnd = seasonWindow(
		time.Date(2026, time.June, 21, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC),
	)

	spooky := streakMilestone("seasonal_spooky_streak", "Spooky Streak", "🎃", 13, models.RarityRare, 130, false)
	spooky.Description = "Hold a 13 day streak during the haunted season"
	spooky.SeasonStart, spooky.SeasonEnd = seasonWindow(
		time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.November, 2, 0, 0, 0, 0, time.UTC),
	)

	return append(defs, newYear, summer, spooky)
}
