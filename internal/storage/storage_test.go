package storage

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func openTemp(t *testing.T) *Storage {
	t.Helper()
	s, err := NewStorageAt(t.TempDir())
	if err != nil {
		t.Fatalf("NewStorageAt: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStorage(t *testing.T) {
	t.Run("DefaultPreferences", func(t *testing.T) {
		prefs := DefaultPreferences()
		if prefs.Username != "Player" {
			t.Errorf("Expected username 'Player', got '%s'", prefs.Username)
		}
		if prefs.Difficulty != DifficultyMedium {
			t.Errorf("Expected medium difficulty")
		}
		if prefs.GameMode != ModeHumanVsBot {
			t.Errorf("Expected human vs bot by default")
		}
		if prefs.Cpuct != 1.0 || prefs.Simulations != 0 {
			t.Errorf("Expected cpuct 1 and difficulty-driven simulations, got %v/%d", prefs.Cpuct, prefs.Simulations)
		}
	})

	t.Run("NewGameStats", func(t *testing.T) {
		stats := NewGameStats()
		if stats.GamesPlayed != 0 {
			t.Errorf("Expected 0 games played")
		}
		if stats.GetWinRate() != 0 {
			t.Errorf("Expected 0 win rate")
		}
	})

	t.Run("WinRate", func(t *testing.T) {
		stats := &GameStats{
			GamesPlayed: 10,
			Wins:        5,
			Losses:      3,
			Draws:       2,
		}
		rate := stats.GetWinRate()
		if rate != 50 {
			t.Errorf("Expected 50%% win rate, got %.2f%%", rate)
		}
	})
}

func TestPreferencesRoundTrip(t *testing.T) {
	s := openTemp(t)

	prefs, err := s.LoadPreferences()
	if err != nil {
		t.Fatal(err)
	}
	if prefs.Username != "Player" {
		t.Fatalf("empty db should yield defaults, got %+v", prefs)
	}

	prefs.PlayerColor = ColorBlack
	prefs.Simulations = 400
	prefs.Cpuct = 1.5
	prefs.ModelPath = "/models/net.onnx"
	if err := s.SavePreferences(prefs); err != nil {
		t.Fatal(err)
	}

	got, err := s.LoadPreferences()
	if err != nil {
		t.Fatal(err)
	}
	if got.PlayerColor != ColorBlack || got.Simulations != 400 || got.Cpuct != 1.5 || got.ModelPath != "/models/net.onnx" {
		t.Errorf("loaded %+v", got)
	}
}

func TestFirstLaunch(t *testing.T) {
	s := openTemp(t)
	first, err := s.IsFirstLaunch()
	if err != nil || !first {
		t.Fatalf("IsFirstLaunch = %v, %v", first, err)
	}
	if err := s.MarkFirstLaunchComplete(); err != nil {
		t.Fatal(err)
	}
	if first, _ := s.IsFirstLaunch(); first {
		t.Error("still first launch after marking complete")
	}
}

func TestRecordGame(t *testing.T) {
	s := openTemp(t)
	results := []GameResult{
		{Won: true, Mode: ModeHumanVsBot, Difficulty: DifficultyHard, Duration: time.Minute},
		{Won: true, Mode: ModeHumanVsBot, Difficulty: DifficultyEasy, Duration: time.Minute},
		{Draw: true, Mode: ModeHumanVsHuman},
		{Mode: ModeHumanVsBot},
	}
	for _, r := range results {
		if err := s.RecordGame(r); err != nil {
			t.Fatal(err)
		}
	}

	stats, err := s.LoadStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.GamesPlayed != 4 || stats.Wins != 2 || stats.Draws != 1 || stats.Losses != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.LongestWinStrk != 2 || stats.CurrentStreak != 0 {
		t.Errorf("streaks = %d/%d", stats.LongestWinStrk, stats.CurrentStreak)
	}
	if stats.WinsByMode["hvb"] != 2 || stats.WinsByDiff["hard"] != 1 || stats.WinsByDiff["easy"] != 1 {
		t.Errorf("breakdown = %v %v", stats.WinsByMode, stats.WinsByDiff)
	}
	if stats.TotalPlayTime != 2*time.Minute {
		t.Errorf("TotalPlayTime = %v", stats.TotalPlayTime)
	}
}

func TestRecordSelfPlay(t *testing.T) {
	s := openTemp(t)
	for _, g := range []struct {
		outcome   string
		plies     int
		truncated bool
	}{
		{"1-0", 40, false},
		{"0-1", 60, false},
		{"1/2-1/2", 300, true},
	} {
		if err := s.RecordSelfPlay(g.outcome, g.plies, g.truncated); err != nil {
			t.Fatal(err)
		}
	}

	stats, err := s.LoadSelfPlayStats()
	if err != nil {
		t.Fatal(err)
	}
	want := SelfPlayStats{Games: 3, WhiteWins: 1, BlackWins: 1, Draws: 1, Truncated: 1, Plies: 400}
	if *stats != want {
		t.Errorf("stats = %+v, want %+v", *stats, want)
	}
	if avg := stats.AveragePlies(); avg < 133.3 || avg > 133.4 {
		t.Errorf("AveragePlies = %v", avg)
	}
}

func TestRecentGamesNewestFirst(t *testing.T) {
	s := openTemp(t)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		rec := &GameRecord{
			Moves:    []string{"e2e4"},
			Result:   "1-0",
			Finished: base.Add(time.Duration(i) * time.Hour),
		}
		if err := s.SaveGame(rec); err != nil {
			t.Fatal(err)
		}
		if rec.ID == "" {
			t.Fatal("SaveGame did not assign an ID")
		}
	}
	if err := s.SavePreferences(DefaultPreferences()); err != nil {
		t.Fatal(err)
	}

	games, err := s.RecentGames(3)
	if err != nil {
		t.Fatal(err)
	}
	if len(games) != 3 {
		t.Fatalf("got %d games, want 3", len(games))
	}
	for i, g := range games {
		want := base.Add(time.Duration(4-i) * time.Hour)
		if !g.Finished.Equal(want) {
			t.Errorf("game %d finished %v, want %v", i, g.Finished, want)
		}
	}
}

func TestDataPaths(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	dataDir, err := GetDataDir()
	if err != nil {
		t.Fatalf("GetDataDir failed: %v", err)
	}
	if dataDir == "" {
		t.Error("GetDataDir returned empty path")
	}
	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		t.Errorf("Data directory was not created: %s", dataDir)
	}
	if _, err := GetModelDir(); err != nil {
		t.Errorf("GetModelDir: %v", err)
	}
}

func TestDataDirsFollowXDG(t *testing.T) {
	if runtime.GOOS == "darwin" || runtime.GOOS == "windows" {
		t.Skip("XDG_DATA_HOME is only consulted on Unix-like systems")
	}
	root := t.TempDir()
	t.Setenv("XDG_DATA_HOME", root)

	models, err := GetModelDir()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(root, appName, "models"); models != want {
		t.Errorf("model dir %s, want %s", models, want)
	}
	db, err := GetDatabaseDir()
	if err != nil {
		t.Fatal(err)
	}
	if info, err := os.Stat(db); err != nil || !info.IsDir() {
		t.Errorf("database dir %s not created: %v", db, err)
	}
}
