package domain

// CommandType enumerates what the user asked for at the prompt.
type CommandType int

const (
	CommandUnknown CommandType = iota
	CommandHelp
	CommandListFormulas
	CommandShowFormula
	CommandCalc
	CommandSaveFormula
	CommandNewBake
	CommandSelectFormula
	CommandTarget
	CommandEnv
	CommandNextStep
	CommandBackStep
	CommandStart
	CommandLog
	CommandStage
	CommandPause
	CommandResume
	CommandStatus
	CommandComplete
	CommandAbandon
	CommandLevain
	CommandHistory
	CommandExport
	CommandImport
	CommandSettings
	CommandSet
	CommandClear
	CommandQuit
)

// String returns the command name for logging.
func (t CommandType) String() string {
	switch t {
	case CommandHelp:
		return "help"
	case CommandListFormulas:
		return "list-formulas"
	case CommandShowFormula:
		return "show-formula"
	case CommandCalc:
		return "calc"
	case CommandSaveFormula:
		return "save-formula"
	case CommandNewBake:
		return "new-bake"
	case CommandSelectFormula:
		return "select-formula"
	case CommandTarget:
		return "target"
	case CommandEnv:
		return "env"
	case CommandNextStep:
		return "next-step"
	case CommandBackStep:
		return "back-step"
	case CommandStart:
		return "start"
	case CommandLog:
		return "log"
	case CommandStage:
		return "stage"
	case CommandPause:
		return "pause"
	case CommandResume:
		return "resume"
	case CommandStatus:
		return "status"
	case CommandComplete:
		return "complete"
	case CommandAbandon:
		return "abandon"
	case CommandLevain:
		return "levain"
	case CommandHistory:
		return "history"
	case CommandExport:
		return "export"
	case CommandImport:
		return "import"
	case CommandSettings:
		return "settings"
	case CommandSet:
		return "set"
	case CommandClear:
		return "clear"
	case CommandQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Command is a parsed user input. Payload carries the argument text for
// commands that take one (select, target, log, complete, ...).
type Command struct {
	Type    CommandType
	Payload string
}
