package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Storage keys
const (
	keyPreferences = "preferences"
	keyStats       = "stats"
	keySelfPlay    = "selfplay_stats"
	keyFirstLaunch = "first_launch"
	gamePrefix     = "game/"
)

// GameMode represents who controls each side.
type GameMode int

const (
	ModeHumanVsHuman GameMode = iota
	ModeHumanVsBot
	ModeBotVsBot
)

func (m GameMode) key() string {
	switch m {
	case ModeHumanVsHuman:
		return "hvh"
	case ModeBotVsBot:
		return "bvb"
	default:
		return "hvb"
	}
}

// Difficulty mirrors engine.Difficulty without importing the engine.
type Difficulty int

const (
	DifficultyEasy Difficulty = iota
	DifficultyMedium
	DifficultyHard
)

func (d Difficulty) key() string {
	switch d {
	case DifficultyMedium:
		return "medium"
	case DifficultyHard:
		return "hard"
	default:
		return "easy"
	}
}

// PlayerColor represents which color the human plays
type PlayerColor int

const (
	ColorWhite PlayerColor = iota
	ColorBlack
)

// UserPreferences stores user settings
type UserPreferences struct {
	Username       string      `json:"username"`
	Difficulty     Difficulty  `json:"difficulty"`
	GameMode       GameMode    `json:"game_mode"`
	PlayerColor    PlayerColor `json:"player_color"`
	Simulations    int         `json:"simulations"`
	Cpuct          float64     `json:"cpuct"`
	ModelPath      string      `json:"model_path"`
	ShowLegalMoves bool        `json:"show_legal_moves"`
	LastPlayed     time.Time   `json:"last_played"`
}

// DefaultPreferences returns default user preferences. Zero Simulations means
// the difficulty's setting is used.
func DefaultPreferences() *UserPreferences {
	return &UserPreferences{
		Username:       "Player",
		Difficulty:     DifficultyMedium,
		GameMode:       ModeHumanVsBot,
		PlayerColor:    ColorWhite,
		Cpuct:          1.0,
		ShowLegalMoves: true,
		LastPlayed:     time.Now(),
	}
}

// GameStats stores statistics of games played by a human.
type GameStats struct {
	GamesPlayed    int            `json:"games_played"`
	Wins           int            `json:"wins"`
	Losses         int            `json:"losses"`
	Draws          int            `json:"draws"`
	WinsByMode     map[string]int `json:"wins_by_mode"`
	WinsByDiff     map[string]int `json:"wins_by_difficulty"`
	TotalPlayTime  time.Duration  `json:"total_play_time"`
	LongestWinStrk int            `json:"longest_win_streak"`
	CurrentStreak  int            `json:"current_streak"`
}

// NewGameStats returns empty game statistics
func NewGameStats() *GameStats {
	return &GameStats{
		WinsByMode: make(map[string]int),
		WinsByDiff: make(map[string]int),
	}
}

// GameResult represents the result of a completed game
type GameResult struct {
	Won        bool
	Draw       bool
	Mode       GameMode
	Difficulty Difficulty
	Duration   time.Duration
}

// SelfPlayStats aggregates engine-vs-engine games.
type SelfPlayStats struct {
	Games     int   `json:"games"`
	WhiteWins int   `json:"white_wins"`
	BlackWins int   `json:"black_wins"`
	Draws     int   `json:"draws"`
	Truncated int   `json:"truncated"`
	Plies     int64 `json:"plies"`
}

// AveragePlies returns the mean game length.
func (s *SelfPlayStats) AveragePlies() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.Plies) / float64(s.Games)
}

// GameRecord is a finished game kept for later review.
type GameRecord struct {
	ID       string    `json:"id"`
	Mode     GameMode  `json:"mode"`
	Moves    []string  `json:"moves"`
	Result   string    `json:"result"`
	Reason   string    `json:"reason"`
	Finished time.Time `json:"finished"`
}

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db *badger.DB
}

// NewStorage opens the database in the platform data directory.
func NewStorage() (*Storage, error) {
	dbDir, err := GetDatabaseDir()
	if err != nil {
		return nil, err
	}
	return NewStorageAt(dbDir)
}

// NewStorageAt opens (or creates) a database in dir.
func NewStorageAt(dir string) (*Storage, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", dir, err)
	}
	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Storage) put(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// get decodes key into v and leaves v untouched when the key is absent.
func (s *Storage) get(key string, v any) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})
}

// IsFirstLaunch returns true if this is the first launch
func (s *Storage) IsFirstLaunch() (bool, error) {
	firstLaunch := true
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(keyFirstLaunch))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		firstLaunch = false
		return nil
	})
	return firstLaunch, err
}

// MarkFirstLaunchComplete marks that first launch setup is complete
func (s *Storage) MarkFirstLaunchComplete() error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyFirstLaunch), []byte("done"))
	})
}

// SavePreferences saves user preferences
func (s *Storage) SavePreferences(prefs *UserPreferences) error {
	prefs.LastPlayed = time.Now()
	return s.put(keyPreferences, prefs)
}

// LoadPreferences loads user preferences, returns defaults if not found
func (s *Storage) LoadPreferences() (*UserPreferences, error) {
	prefs := DefaultPreferences()
	err := s.get(keyPreferences, prefs)
	return prefs, err
}

// SaveStats saves game statistics
func (s *Storage) SaveStats(stats *GameStats) error {
	return s.put(keyStats, stats)
}

// LoadStats loads game statistics, returns empty stats if not found
func (s *Storage) LoadStats() (*GameStats, error) {
	stats := NewGameStats()
	err := s.get(keyStats, stats)
	if stats.WinsByMode == nil {
		stats.WinsByMode = make(map[string]int)
	}
	if stats.WinsByDiff == nil {
		stats.WinsByDiff = make(map[string]int)
	}
	return stats, err
}

// RecordGame records a completed game and updates statistics
func (s *Storage) RecordGame(result GameResult) error {
	stats, err := s.LoadStats()
	if err != nil {
		return err
	}

	stats.GamesPlayed++
	stats.TotalPlayTime += result.Duration

	switch {
	case result.Draw:
		stats.Draws++
		stats.CurrentStreak = 0
	case result.Won:
		stats.Wins++
		stats.CurrentStreak++
		if stats.CurrentStreak > stats.LongestWinStrk {
			stats.LongestWinStrk = stats.CurrentStreak
		}
		stats.WinsByMode[result.Mode.key()]++
		stats.WinsByDiff[result.Difficulty.key()]++
	default:
		stats.Losses++
		stats.CurrentStreak = 0
	}

	return s.SaveStats(stats)
}

// GetWinRate returns the win rate as a percentage (0-100)
func (s *GameStats) GetWinRate() float64 {
	if s.GamesPlayed == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.GamesPlayed) * 100
}

// LoadSelfPlayStats returns the self-play totals, zero if none were recorded.
func (s *Storage) LoadSelfPlayStats() (*SelfPlayStats, error) {
	stats := &SelfPlayStats{}
	err := s.get(keySelfPlay, stats)
	return stats, err
}

// RecordSelfPlay adds one finished self-play game. outcome is "1-0", "0-1"
// or "1/2-1/2".
func (s *Storage) RecordSelfPlay(outcome string, plies int, truncated bool) error {
	return s.db.Update(func(txn *badger.Txn) error {
		stats := &SelfPlayStats{}
		item, err := txn.Get([]byte(keySelfPlay))
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
		case err != nil:
			return err
		default:
			if err := item.Value(func(val []byte) error { return json.Unmarshal(val, stats) }); err != nil {
				return err
			}
		}

		stats.Games++
		stats.Plies += int64(plies)
		switch outcome {
		case "1-0":
			stats.WhiteWins++
		case "0-1":
			stats.BlackWins++
		default:
			stats.Draws++
		}
		if truncated {
			stats.Truncated++
		}

		data, err := json.Marshal(stats)
		if err != nil {
			return err
		}
		return txn.Set([]byte(keySelfPlay), data)
	})
}

// SaveGame stores a finished game. An empty ID is replaced by one derived
// from the finish time, which keeps keys in chronological order.
func (s *Storage) SaveGame(rec *GameRecord) error {
	if rec.Finished.IsZero() {
		rec.Finished = time.Now()
	}
	if rec.ID == "" {
		rec.ID = fmt.Sprintf("%020d", rec.Finished.UnixNano())
	}
	return s.put(gamePrefix+rec.ID, rec)
}

// RecentGames returns up to n stored games, newest first.
func (s *Storage) RecentGames(n int) ([]GameRecord, error) {
	var out []GameRecord
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = []byte(gamePrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		// Reverse iteration has to start past the last key with the prefix.
		seek := append([]byte(gamePrefix), 0xFF)
		for it.Seek(seek); it.ValidForPrefix(opts.Prefix) && len(out) < n; it.Next() {
			var rec GameRecord
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return err
			}
			out = append(out, rec)
		}
		return nil
	})
	return out, err
}
