// Package conversation provides prompt-input parsing and user
// notification implementations.
package conversation

import (
	"regexp"
	"strings"

	"github.com/hammamikhairi/proofbox/internal/domain"
	"github.com/hammamikhairi/proofbox/internal/logger"
)

// KeywordParser matches prompt input to commands using keywords and
// simple patterns. A bare number selects a formula inside the wizard.
type KeywordParser struct {
	log      *logger.Logger
	patterns []patternRule
}

type patternRule struct {
	regex   *regexp.Regexp
	command domain.CommandType
	payload bool // carry the argument text
}

// NewKeywordParser creates a keyword-based command parser.
func NewKeywordParser(log *logger.Logger) *KeywordParser {
	p := &KeywordParser{log: log}
	p.patterns = []patternRule{
		{regex: regexp.MustCompile(`(?i)^(help|h|\?)$`), command: domain.CommandHelp},
		{regex: regexp.MustCompile(`(?i)^(list|formulas|recipes|browse)$`), command: domain.CommandListFormulas},
		{regex: regexp.MustCompile(`(?i)^(show|formula)\s+(.+)$`), command: domain.CommandShowFormula, payload: true},
		{regex: regexp.MustCompile(`(?i)^calc\b(.*)$`), command: domain.CommandCalc, payload: true},
		{regex: regexp.MustCompile(`(?i)^(save formula|save)\s+(.+)$`), command: domain.CommandSaveFormula, payload: true},
		{regex: regexp.MustCompile(`(?i)^(new|new bake|bake|plan)$`), command: domain.CommandNewBake},
		{regex: regexp.MustCompile(`(?i)^(select|pick|use)\s+(.+)$`), command: domain.CommandSelectFormula, payload: true},
		{regex: regexp.MustCompile(`(?i)^(target|ready by|bake at)\s+(.+)$`), command: domain.CommandTarget, payload: true},
		{regex: regexp.MustCompile(`(?i)^env\b(.*)$`), command: domain.CommandEnv, payload: true},
		{regex: regexp.MustCompile(`(?i)^(next|n|continue)$`), command: domain.CommandNextStep},
		{regex: regexp.MustCompile(`(?i)^(back|b|previous)$`), command: domain.CommandBackStep},
		{regex: regexp.MustCompile(`(?i)^(start|go|begin|let'?s go)$`), command: domain.CommandStart},
		{regex: regexp.MustCompile(`(?i)^log\b(.*)$`), command: domain.CommandLog, payload: true},
		{regex: regexp.MustCompile(`(?i)^(stage|advance|done)$`), command: domain.CommandStage},
		{regex: regexp.MustCompile(`(?i)^(pause|hold|p)$`), command: domain.CommandPause},
		{regex: regexp.MustCompile(`(?i)^(resume|unpause)$`), command: domain.CommandResume},
		{regex: regexp.MustCompile(`(?i)^(status|where|progress|info)$`), command: domain.CommandStatus},
		{regex: regexp.MustCompile(`(?i)^(complete|finish|finished)\b(.*)$`), command: domain.CommandComplete, payload: true},
		{regex: regexp.MustCompile(`(?i)^abandon$`), command: domain.CommandAbandon},
		{regex: regexp.MustCompile(`(?i)^(levain|starter)\b(.*)$`), command: domain.CommandLevain, payload: true},
		{regex: regexp.MustCompile(`(?i)^(history|bakes|stats)$`), command: domain.CommandHistory},
		{regex: regexp.MustCompile(`(?i)^export$`), command: domain.CommandExport},
		{regex: regexp.MustCompile(`(?i)^import\s+(.+)$`), command: domain.CommandImport, payload: true},
		{regex: regexp.MustCompile(`(?i)^settings$`), command: domain.CommandSettings},
		{regex: regexp.MustCompile(`(?i)^set\s+(.+)$`), command: domain.CommandSet, payload: true},
		{regex: regexp.MustCompile(`(?i)^(clear|reset)\b(.*)$`), command: domain.CommandClear, payload: true},
		{regex: regexp.MustCompile(`(?i)^(quit|exit|q)$`), command: domain.CommandQuit},
	}
	return p
}

// Parse converts prompt input into a command.
func (p *KeywordParser) Parse(input string) domain.Command {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return domain.Command{Type: domain.CommandUnknown}
	}

	p.log.Debug("parsing input: %q", trimmed)

	// A bare number is a formula pick (wizard step 1 lists them numbered).
	if len(trimmed) <= 2 && isDigits(trimmed) {
		return domain.Command{Type: domain.CommandSelectFormula, Payload: trimmed}
	}

	for _, rule := range p.patterns {
		m := rule.regex.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}
		p.log.Debug("matched command: %s", rule.command)
		cmd := domain.Command{Type: rule.command}
		if rule.payload {
			cmd.Payload = strings.TrimSpace(m[len(m)-1])
		}
		return cmd
	}

	p.log.Debug("no match, returning unknown command")
	return domain.Command{Type: domain.CommandUnknown, Payload: trimmed}
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}
