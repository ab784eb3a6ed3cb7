package service

import (
	"encoding/json"
	"testing"
)

func TestBoxPlayerEntryCarriesIdentity(t *testing.T) {
	entry := BoxPlayerEntry{
		PlayerID:  203507,
		Name:      "Giannis Antetokounmpo",
		PlusMinus: 12,
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"player_id", "name", "stats", "+/-"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("box player row missing %q", key)
		}
	}
	// Per-row game fields belong to the page, not the player row.
	for _, key := range []string{"game_id", "game_date", "matchup"} {
		if _, ok := fields[key]; ok {
			t.Errorf("box player row carries redundant %q", key)
		}
	}
}
