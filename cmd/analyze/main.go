// Command analyze prints quick, human-readable heuristics over a match
// history database: matches per map, forfeit rate, average duration and the
// most active players.
package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/frfrance/pong-arena/game/history"
)

// mapCount pairs a map name with how often it was played.
type mapCount struct {
	Name  string
	Count int
}

func main() {
	dbPath := "pong.db"
	if len(os.Args) > 1 {
		dbPath = os.Args[1]
	}

	store, err := history.OpenSQLite(dbPath)
	if err != nil {
		fmt.Printf("Error opening history database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx := context.Background()
	matches, err := store.History(ctx, 10000)
	if err != nil {
		fmt.Printf("Error loading matches: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("=== Analyzing %s ===\n\n", dbPath)
	analyzeMatches(matches)

	standings, err := store.Leaderboard(ctx)
	if err != nil {
		fmt.Printf("Error loading leaderboard: %v\n", err)
		os.Exit(1)
	}
	printTopPlayers(standings, 10)
}

func analyzeMatches(matches []*history.Match) {
	fmt.Printf("Finished matches: %d\n", len(matches))
	if len(matches) == 0 {
		return
	}

	forfeits := 0
	var totalDuration time.Duration
	timed := 0
	perMap := make(map[string]int)

	for _, m := range matches {
		if m.Forfeit {
			forfeits++
		}
		if m.Duration > 0 {
			totalDuration += m.Duration
			timed++
		}
		perMap[m.Map]++
	}

	fmt.Printf("Forfeit rate: %.1f%% (%d of %d)\n",
		100*float64(forfeits)/float64(len(matches)), forfeits, len(matches))
	if timed > 0 {
		fmt.Printf("Average duration: %s\n", (totalDuration / time.Duration(timed)).Round(time.Second))
	}

	counts := make([]mapCount, 0, len(perMap))
	for name, n := range perMap {
		counts = append(counts, mapCount{Name: name, Count: n})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Name < counts[j].Name
	})

	fmt.Println("\nMatches per map:")
	for _, c := range counts {
		name := c.Name
		if name == "" {
			name = "(none)"
		}
		fmt.Printf("  %-12s %d\n", name, c.Count)
	}
}

func printTopPlayers(standings []*history.Standing, limit int) {
	if len(standings) == 0 {
		return
	}
	if len(standings) > limit {
		standings = standings[:limit]
	}

	fmt.Println("\nTop players:")
	for i, s := range standings {
		fmt.Printf("  %2d. %-16s %d wins / %d losses (%d forfeits, %d played)\n",
			i+1, s.Login, s.Wins, s.Losses, s.Forfeits, s.Played)
	}
}
