package achievements

import "errors"

var (
	// ErrUnknownAchievement is returned when a referenced achievement id
	// does not exist in the catalog for that guild.
	ErrUnknownAchievement = errors.New("achievement does not exist")
	// ErrAlreadyAwarded is returned for a manual award of an achievement
	// the user already holds.
	ErrAlreadyAwarded = errors.New("achievement already awarded")
	// ErrOutOfSeason is returned when an award is attempted outside a
	// seasonal achievement's active window.
	ErrOutOfSeason = errors.New("achievement is outside its active window")
)
