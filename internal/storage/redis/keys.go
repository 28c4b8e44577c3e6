package redis

import "fmt"

// Key prefix for all roster data
const keyPrefix = "rpg"

// winsKey returns the sorted set of battle wins per character
func winsKey() string {
	return fmt.Sprintf("%s:leaderboard:wins", keyPrefix)
}

// lossesKey returns the sorted set of battle losses per character
func lossesKey() string {
	return fmt.Sprintf("%s:leaderboard:losses", keyPrefix)
}
