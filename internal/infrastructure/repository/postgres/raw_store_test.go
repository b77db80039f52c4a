package postgres

import (
	"strings"
	"testing"
)

func TestBuildListGamesQuery_VariantTeamColumns(t *testing.T) {
	modern, args, err := buildListGamesQuery(modernSchema, "2026-winter")
	if err != nil {
		t.Fatalf("build modern games query: %v", err)
	}
	if !strings.Contains(modern, "visitor_team_public_id AS visitor_team_id") {
		t.Fatalf("modern games query missing visitor alias: %s", modern)
	}
	if len(args) != 1 || args[0] != "2026-winter" {
		t.Fatalf("unexpected args: %v", args)
	}

	legacy, _, err := buildListGamesQuery(legacySchema, "2026-winter")
	if err != nil {
		t.Fatalf("build legacy games query: %v", err)
	}
	if !strings.Contains(legacy, "away_team_id AS visitor_team_id") {
		t.Fatalf("legacy games query missing away alias: %s", legacy)
	}
}

func TestBuildListGoalEventsQuery_LegacyAliases(t *testing.T) {
	query, args, err := buildListGoalEventsQuery(legacySchema, "2026-winter")
	if err != nil {
		t.Fatalf("build legacy goal events query: %v", err)
	}

	for _, fragment := range []string{
		"FROM scoring_plays g JOIN games gm ON gm.public_id = g.game_id",
		"g.game_id AS game_public_id",
		"g.team_id AS team_public_id",
		"COALESCE(g.scorer_id, '') AS scorer_public_id",
		"COALESCE(g.assist1_id, '') AS assist1_public_id",
		"COALESCE(g.assist2_id, '') AS assist2_public_id",
		"ORDER BY g.game_id, g.public_id",
	} {
		if !strings.Contains(query, fragment) {
			t.Fatalf("legacy goal events query missing %q: %s", fragment, query)
		}
	}
	if len(args) != 1 || args[0] != "2026-winter" {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestBuildListGoalEventsQuery_ModernAliases(t *testing.T) {
	query, _, err := buildListGoalEventsQuery(modernSchema, "2026-winter")
	if err != nil {
		t.Fatalf("build modern goal events query: %v", err)
	}

	for _, fragment := range []string{
		"FROM goal_events g JOIN games gm ON gm.public_id = g.game_public_id",
		"g.game_public_id AS game_public_id",
		"COALESCE(g.scorer_public_id, '') AS scorer_public_id",
	} {
		if !strings.Contains(query, fragment) {
			t.Fatalf("modern goal events query missing %q: %s", fragment, query)
		}
	}
}

func TestBuildListPenaltyEventsQuery_LegacyAliases(t *testing.T) {
	query, _, err := buildListPenaltyEventsQuery(legacySchema, "2026-winter")
	if err != nil {
		t.Fatalf("build legacy penalty events query: %v", err)
	}

	for _, fragment := range []string{
		"FROM penalties p JOIN games gm ON gm.public_id = p.game_id",
		"p.team_id AS team_public_id",
		"COALESCE(p.player_id, '') AS player_public_id",
	} {
		if !strings.Contains(query, fragment) {
			t.Fatalf("legacy penalty events query missing %q: %s", fragment, query)
		}
	}
}

func TestBuildListRosterEntriesQuery_LegacyAliases(t *testing.T) {
	query, _, err := buildListRosterEntriesQuery(legacySchema, "2026-winter")
	if err != nil {
		t.Fatalf("build legacy roster entries query: %v", err)
	}

	for _, fragment := range []string{
		"FROM game_rosters r JOIN games gm ON gm.public_id = r.game_id",
		"r.player_id AS player_public_id",
		"ORDER BY r.game_id, r.player_id",
	} {
		if !strings.Contains(query, fragment) {
			t.Fatalf("legacy roster entries query missing %q: %s", fragment, query)
		}
	}
}
