package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Global settings
	apiURL := "http://localhost:9999"
	if envURL := os.Getenv("API_URL"); envURL != "" {
		apiURL = envURL
	}
	pin := os.Getenv("DEVICE_PIN")

	command := os.Args[1]
	args := os.Args[2:]
	client := NewAPIClient(apiURL, pin)

	switch command {
	case "full":
		fullCmd(client, args)
	case "favorite":
		favoriteCmd(client, args)
	case "team":
		teamCmd(client, args)
	case "status":
		statusCmd(client)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Superhero Simulator - Development tool for exercising the catalog API

USAGE:
  simulator <command> [options]

COMMANDS:
  full      Refresh the catalog, favorite the strongest heroes, and build a team
  favorite  Add or remove favorites by superhero id
  team      Create a team and fill it with the given superhero ids
  status    Print the application state, favorites and teams
  help      Show this help message

ENVIRONMENT:
  API_URL     Backend API URL (default: http://localhost:9999)
  DEVICE_PIN  PIN sent with team requests

EXAMPLES:
  # Refresh, favorite the top 3 heroes, and build a 5-hero team
  DEVICE_PIN=1234 simulator full

  # Build a team named "Bruisers" from the 4 strongest heroes
  DEVICE_PIN=1234 simulator full --name=Bruisers --size=4

  # Favorite two heroes, then remove one again
  simulator favorite --ids=70,644
  simulator favorite --ids=644 --remove

  # Create a team with explicit members
  DEVICE_PIN=1234 simulator team --name=Justice --ids=70,644,720`)
}

func fullCmd(client *APIClient, args []string) {
	fs := flag.NewFlagSet("full", flag.ExitOnError)
	name := fs.String("name", "Strike Force", "Team name")
	size := fs.Int("size", 5, "Number of heroes to put on the team")
	favorites := fs.Int("favorites", 3, "Number of heroes to favorite")
	skipRefresh := fs.Bool("skip-refresh", false, "Use the local catalog without contacting the remote source")
	fs.Parse(args)

	if *size < 1 || *favorites < 0 {
		fmt.Println("Error: --size must be at least 1 and --favorites must not be negative")
		os.Exit(1)
	}

	fmt.Println("=== Superhero Simulator: Full Flow ===")
	fmt.Println()

	var heroes []Hero
	var err error
	if *skipRefresh {
		fmt.Print("Loading local catalog... ")
		heroes, err = client.Heroes("")
	} else {
		fmt.Print("Refreshing catalog... ")
		heroes, err = client.Refresh()
	}
	if err != nil {
		fmt.Printf("FAILED\n  Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("OK (%d heroes)\n", len(heroes))
	if len(heroes) == 0 {
		fmt.Println("Catalog is empty, nothing to do.")
		return
	}

	ranked := strongest(heroes)

	fmt.Println()
	fmt.Printf("Favoriting %d heroes:\n", min(*favorites, len(ranked)))
	for i := 0; i < *favorites && i < len(ranked); i++ {
		h := ranked[i]
		if _, err := client.SetFavorite(h.ID, true); err != nil {
			fmt.Printf("  [%d] FAILED %s: %v\n", i+1, h.Name, err)
			os.Exit(1)
		}
		fmt.Printf("  [%d] %s (score %.1f)\n", i+1, h.Name, h.PowerScore)
	}

	fmt.Println()
	fmt.Printf("Creating team %q... ", *name)
	team, err := client.CreateTeam(*name)
	if err != nil {
		fmt.Printf("FAILED\n  Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("OK (%s)\n", team.ID)

	for i := 0; i < *size && i < len(ranked); i++ {
		h := ranked[i]
		if _, err := client.AddMember(team.ID, h.ID); err != nil {
			fmt.Printf("  [%d/%d] FAILED to add %s: %v\n", i+1, *size, h.Name, err)
			os.Exit(1)
		}
		fmt.Printf("  [%d/%d] %s joined\n", i+1, *size, h.Name)
	}

	fmt.Println()
	statusCmd(client)
}

func favoriteCmd(client *APIClient, args []string) {
	fs := flag.NewFlagSet("favorite", flag.ExitOnError)
	ids := fs.String("ids", "", "Comma separated superhero ids (required)")
	remove := fs.Bool("remove", false, "Remove instead of add")
	fs.Parse(args)

	heroIDs, err := parseIDs(*ids)
	if err != nil || len(heroIDs) == 0 {
		fmt.Println("Error: --ids is required")
		fmt.Println("\nUsage: simulator favorite --ids=70,644 [--remove]")
		os.Exit(1)
	}

	var favorites []Hero
	for _, id := range heroIDs {
		favorites, err = client.SetFavorite(id, !*remove)
		if err != nil {
			fmt.Printf("  %d FAILED: %v\n", id, err)
			continue
		}
		fmt.Printf("  %d OK\n", id)
	}

	fmt.Println()
	fmt.Printf("Favorites (%d):\n", len(favorites))
	for _, h := range favorites {
		fmt.Printf("  %4d  %s\n", h.ID, h.Name)
	}
}

func teamCmd(client *APIClient, args []string) {
	fs := flag.NewFlagSet("team", flag.ExitOnError)
	name := fs.String("name", "", "Team name (required)")
	ids := fs.String("ids", "", "Comma separated superhero ids to add")
	fs.Parse(args)

	heroIDs, err := parseIDs(*ids)
	if *name == "" || err != nil {
		fmt.Println("Error: --name is required and --ids must be numeric")
		fmt.Println("\nUsage: simulator team --name=Justice [--ids=70,644]")
		os.Exit(1)
	}

	team, err := client.CreateTeam(*name)
	if err != nil {
		fmt.Printf("Failed to create team: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Created %s (%s)\n", team.Name, team.ID)

	for _, id := range heroIDs {
		team, err = client.AddMember(team.ID, id)
		if err != nil {
			fmt.Printf("  %d FAILED: %v\n", id, err)
			continue
		}
		fmt.Printf("  %d added\n", id)
	}
	printTeam(*team)
}

func statusCmd(client *APIClient) {
	summary, err := client.State()
	if err != nil {
		fmt.Printf("Failed to get state: %v\n", err)
		os.Exit(1)
	}
	teams, err := client.Teams()
	if err != nil {
		fmt.Printf("Failed to list teams: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("=========================================")
	fmt.Printf("  HEROES %d  FAVORITES %d  TEAMS %d\n", summary.Heroes, summary.Favorites, summary.Teams)
	if summary.Error != "" {
		fmt.Printf("  LAST ERROR: %s\n", summary.Error)
	}
	fmt.Println("=========================================")
	for _, t := range teams {
		printTeam(t)
	}
}

func printTeam(t Team) {
	fmt.Println()
	fmt.Printf("  %s (%d members)\n", t.Name, len(t.Members))
	for _, m := range t.Members {
		fmt.Printf("    %4d  %-24s %.1f\n", m.ID, m.Name, m.PowerScore)
	}
}

// strongest orders heroes by power score, highest first.
func strongest(heroes []Hero) []Hero {
	ranked := append([]Hero(nil), heroes...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].PowerScore > ranked[j].PowerScore
	})
	return ranked
}

func parseIDs(raw string) ([]int, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var ids []int
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
