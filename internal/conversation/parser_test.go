package conversation

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/hammamikhairi/proofbox/internal/domain"
	"github.com/hammamikhairi/proofbox/internal/logger"
	"github.com/hammamikhairi/proofbox/internal/storage"
)

func TestKeywordParser(t *testing.T) {
	log := logger.New(logger.LevelOff, io.Discard)
	parser := NewKeywordParser(log)

	tests := []struct {
		input       string
		wantType    domain.CommandType
		wantPayload string
	}{
		// Help
		{"help", domain.CommandHelp, ""},
		{"?", domain.CommandHelp, ""},

		// Formula browsing
		{"list", domain.CommandListFormulas, ""},
		{"formulas", domain.CommandListFormulas, ""},
		{"show tampa-country-levain", domain.CommandShowFormula, "tampa-country-levain"},

		// Calculator
		{"calc 900 75 2.2 20", domain.CommandCalc, "900 75 2.2 20"},
		{"calc", domain.CommandCalc, ""},
		{"save formula everyday loaf", domain.CommandSaveFormula, "everyday loaf"},

		// Wizard
		{"new", domain.CommandNewBake, ""},
		{"new bake", domain.CommandNewBake, ""},
		{"select 2", domain.CommandSelectFormula, "2"},
		{"pick tampa-country-levain", domain.CommandSelectFormula, "tampa-country-levain"},
		{"2", domain.CommandSelectFormula, "2"},
		{"target 18:00", domain.CommandTarget, "18:00"},
		{"ready by 2026-07-12 18:00", domain.CommandTarget, "2026-07-12 18:00"},
		{"env 83 72 on", domain.CommandEnv, "83 72 on"},
		{"next", domain.CommandNextStep, ""},
		{"back", domain.CommandBackStep, ""},
		{"start", domain.CommandStart, ""},
		{"let's go", domain.CommandStart, ""},

		// Active bake
		{"log 78 40 smells ripe", domain.CommandLog, "78 40 smells ripe"},
		{"stage", domain.CommandStage, ""},
		{"done", domain.CommandStage, ""},
		{"pause", domain.CommandPause, ""},
		{"resume", domain.CommandResume, ""},
		{"status", domain.CommandStatus, ""},
		{"complete 5", domain.CommandComplete, "5"},
		{"finish", domain.CommandComplete, ""},
		{"abandon", domain.CommandAbandon, ""},
		{"levain", domain.CommandLevain, ""},
		{"levain start 100 20", domain.CommandLevain, "start 100 20"},
		{"starter ready domed, airy", domain.CommandLevain, "ready domed, airy"},

		// Records
		{"history", domain.CommandHistory, ""},
		{"stats", domain.CommandHistory, ""},
		{"export", domain.CommandExport, ""},
		{"import backup.json", domain.CommandImport, "backup.json"},

		// Settings
		{"settings", domain.CommandSettings, ""},
		{"set theme dark", domain.CommandSet, "theme dark"},
		{"clear", domain.CommandClear, ""},
		{"clear data", domain.CommandClear, "data"},
		{"clear data confirm", domain.CommandClear, "data confirm"},

		// Quit
		{"quit", domain.CommandQuit, ""},
		{"q", domain.CommandQuit, ""},

		// Case and whitespace tolerance
		{"  STATUS  ", domain.CommandStatus, ""},
		{"Target 18:00", domain.CommandTarget, "18:00"},

		// Unknown keeps the raw input
		{"flibbertigibbet", domain.CommandUnknown, "flibbertigibbet"},
		{"", domain.CommandUnknown, ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := parser.Parse(tt.input)
			if got.Type != tt.wantType {
				t.Fatalf("Parse(%q) type = %s, want %s", tt.input, got.Type, tt.wantType)
			}
			if got.Payload != tt.wantPayload {
				t.Fatalf("Parse(%q) payload = %q, want %q", tt.input, got.Payload, tt.wantPayload)
			}
		})
	}
}

func TestCLINotifierRespectsSettings(t *testing.T) {
	log := logger.New(logger.LevelOff, io.Discard)
	store := storage.NewMemoryStore(log)
	ctx := context.Background()

	var out []string
	n := NewCLINotifier(store, log, func(format string, a ...interface{}) {
		out = append(out, strings.TrimSpace(format))
		_ = a
	})

	if err := n.Notify(ctx, "fold time"); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if err := n.NotifyUrgent(ctx, "oven time"); err != nil {
		t.Fatalf("NotifyUrgent: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("printed %d messages, want 2", len(out))
	}

	set, _ := store.Load(ctx)
	set.EnableNotifications = false
	if err := store.Save(ctx, set); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := n.Notify(ctx, "should be muted"); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("muted notifier still printed (%d messages)", len(out))
	}
}
