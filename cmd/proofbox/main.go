// Proofbox — a sourdough baking companion.
//
// Usage:
//
//	proofbox [-verbose] [-quiet] [-db path]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/hammamikhairi/proofbox/internal/bake"
	"github.com/hammamikhairi/proofbox/internal/chime"
	"github.com/hammamikhairi/proofbox/internal/conversation"
	"github.com/hammamikhairi/proofbox/internal/display"
	"github.com/hammamikhairi/proofbox/internal/domain"
	"github.com/hammamikhairi/proofbox/internal/export"
	"github.com/hammamikhairi/proofbox/internal/formula"
	"github.com/hammamikhairi/proofbox/internal/idgen"
	"github.com/hammamikhairi/proofbox/internal/logger"
	"github.com/hammamikhairi/proofbox/internal/schedule"
	"github.com/hammamikhairi/proofbox/internal/storage"
	"github.com/hammamikhairi/proofbox/internal/timer"
)

func main() {
	_ = godotenv.Load()

	verbose := flag.Bool("verbose", false, "enable verbose/debug logging")
	quiet := flag.Bool("quiet", false, "disable all logging")
	logFile := flag.String("log-file", ".proofbox/proofbox.log", "file to write logs to (use \"stderr\" to log to console)")
	dbPath := flag.String("db", defaultDBPath(), "path to the SQLite database")
	noSound := flag.Bool("no-sound", false, "disable the alert chime")
	exportDir := flag.String("export-dir", ".", "directory for data exports")
	flag.Parse()

	// Configure logger.
	logLevel := logger.LevelNormal
	if *verbose {
		logLevel = logger.LevelVerbose
	}
	if *quiet {
		logLevel = logger.LevelOff
	}

	// Direct logs to a file by default so the REPL stays clean.
	var logOut io.Writer = os.Stderr
	if *logFile != "" && *logFile != "stderr" {
		dir := filepath.Dir(*logFile)
		if dir != "" && dir != "." {
			os.MkdirAll(dir, 0o755)
		}
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", *logFile, err)
		} else {
			logOut = f
			defer f.Close()
		}
	}

	// Redirect Go's default log package to the same output so
	// third-party libraries don't spam the terminal.
	stdlog.SetOutput(logOut)
	stdlog.SetFlags(stdlog.Ltime)

	log := logger.New(logLevel, logOut)

	// Set up context — cancelled when the UI quits.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Wire dependencies. The SQLite store backs formulas, the active
	// bake, history, settings, and levain builds.
	store, err := storage.Open(*dbPath, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: opening database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := store.Seed(ctx, formula.Defaults()); err != nil {
		log.Error("seeding default formulas: %v", err)
	}

	ui := display.NewUI(store)
	textNotifier := conversation.NewCLINotifier(store, log, ui.Printf)
	parser := conversation.NewKeywordParser(log)
	lifecycle := bake.New(store, store, store, log)

	// Wrap the notifier with the chime when the audio device is up.
	var activeNotifier domain.Notifier = textNotifier
	if !*noSound {
		bell, err := chime.New(log)
		if err != nil {
			log.Warn("audio unavailable, running silent: %v", err)
		} else {
			activeNotifier = chime.NewRingingNotifier(textNotifier, bell)
		}
	}

	supervisor := timer.New(store, store, activeNotifier, log,
		timer.WithWatcher(),
	)

	// Pick up an interrupted bake before anything fires at the user.
	restored, err := lifecycle.Restore(ctx)
	if err != nil {
		log.Error("restoring active bake: %v", err)
	}

	supervisor.Start(ctx)
	defer supervisor.Stop()

	app := &cliApp{
		lifecycle: lifecycle,
		formulas:  store,
		store:     store,
		settings:  store,
		levains:   store,
		resetter:  store,
		parser:    parser,
		exportDir: *exportDir,
		log:       log,
		ui:        ui,
	}

	fmt.Println(display.RenderBanner())
	if restored != nil {
		fmt.Println(display.BannerStyle.Render(fmt.Sprintf("  Picking up %q — %s, started %s.",
			restored.Name, restored.Stage, restored.StartTime.Format(time.Kitchen))))
	}
	fmt.Println(display.BannerStyle.Render("  Type 'help' for commands, 'quit' to exit."))
	fmt.Println()

	// Run app logic in a background goroutine.
	go func() {
		ui.WaitReady()
		app.run(ctx)
		ui.Quit()
	}()

	// Bubble Tea owns the terminal — blocks until quit.
	if err := ui.Run(); err != nil {
		log.Error("display: %v", err)
	}
	cancel()
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".proofbox/proofbox.db"
	}
	return filepath.Join(home, ".proofbox", "proofbox.db")
}

// dataResetter wipes every collection back to first-run defaults.
type dataResetter interface {
	Reset(ctx context.Context, seeds []*domain.Formula) error
}

type cliApp struct {
	lifecycle *bake.Lifecycle
	formulas  domain.FormulaSource
	store     domain.BakeStore
	settings  domain.SettingsStore
	levains   domain.LevainStore
	resetter  dataResetter
	parser    *conversation.KeywordParser
	exportDir string
	log       *logger.Logger
	ui        *display.UI

	lastCalc   *domain.Formula // remembered for "save formula <name>"
	lastLevain string          // ID of the build started this session
}

func (a *cliApp) run(ctx context.Context) {
	if a.lifecycle.Active() == nil {
		a.ui.PrintChat("Ready when you are. 'new' plans a bake, 'calc' does the math.")
	} else {
		a.showStatus(ctx)
	}

	uiCh := a.ui.InputChan()

	for {
		var input string
		var ok bool

		select {
		case <-ctx.Done():
			return
		case input, ok = <-uiCh:
			if !ok {
				return
			}
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		cmd := a.parser.Parse(input)
		a.log.Debug("command: %s (payload=%q)", cmd.Type, cmd.Payload)
		a.handleCommand(ctx, cmd)
	}
}

func (a *cliApp) handleCommand(ctx context.Context, cmd domain.Command) {
	switch cmd.Type {
	case domain.CommandHelp:
		a.showHelp()
	case domain.CommandListFormulas:
		a.showFormulas(ctx)
	case domain.CommandShowFormula:
		a.showFormula(ctx, cmd.Payload)
	case domain.CommandCalc:
		a.calc(cmd.Payload)
	case domain.CommandSaveFormula:
		a.saveFormula(ctx, cmd.Payload)
	case domain.CommandNewBake:
		a.newBake(ctx)
	case domain.CommandSelectFormula:
		a.selectFormula(ctx, cmd.Payload)
	case domain.CommandTarget:
		a.setTarget(cmd.Payload)
	case domain.CommandEnv:
		a.setEnvironment(ctx, cmd.Payload)
	case domain.CommandNextStep:
		a.nextStep(ctx)
	case domain.CommandBackStep:
		a.backStep(ctx)
	case domain.CommandStart:
		a.startBake(ctx)
	case domain.CommandLog:
		a.logReading(ctx, cmd.Payload)
	case domain.CommandStage:
		a.advanceStage(ctx)
	case domain.CommandPause:
		a.pause(ctx)
	case domain.CommandResume:
		a.resume(ctx)
	case domain.CommandStatus:
		a.showStatus(ctx)
	case domain.CommandComplete:
		a.complete(ctx, cmd.Payload)
	case domain.CommandAbandon:
		a.abandon(ctx)
	case domain.CommandLevain:
		a.levain(ctx, cmd.Payload)
	case domain.CommandHistory:
		a.showHistory(ctx)
	case domain.CommandExport:
		a.exportData(ctx)
	case domain.CommandImport:
		a.importData(ctx, cmd.Payload)
	case domain.CommandSettings:
		a.showSettings(ctx)
	case domain.CommandSet:
		a.updateSetting(ctx, cmd.Payload)
	case domain.CommandClear:
		a.clear(ctx, cmd.Payload)
	case domain.CommandQuit:
		a.quit()
	case domain.CommandUnknown:
		a.ui.PrintHint(fmt.Sprintf("Didn't catch that (%q). Type 'help' for commands.", cmd.Payload))
	}
}

// reportErr prints an error, downgrading persistence warnings: the
// operation itself went through.
func (a *cliApp) reportErr(err error) bool {
	if err == nil {
		return false
	}
	if domain.IsPersistenceWarning(err) {
		a.ui.PrintHint(fmt.Sprintf("Warning: %v — the change may not survive a restart.", err))
		return false
	}
	a.ui.PrintUrgent(fmt.Sprintf("Error: %v", err))
	return true
}

// ── Formulas and the calculator ──────────────────────────────────

func (a *cliApp) showFormulas(ctx context.Context) {
	list, err := a.formulas.List(ctx)
	if a.reportErr(err) {
		return
	}

	a.ui.PrintHeading("Formulas:")
	a.ui.Println("")
	for i, f := range list {
		a.ui.PrintLine(fmt.Sprintf("[%d] %s", i+1, f.Name))
		detail := fmt.Sprintf("%.0fg dough at %.0f%% hydration", f.TotalDoughG, f.HydrationPct)
		if f.Complexity != "" {
			detail += " — " + f.Complexity
		}
		a.ui.PrintHint(detail)
	}
	a.ui.Println("")
	a.ui.PrintChat("'show <n>' for the full breakdown, 'new' to bake one.")
}

func (a *cliApp) showFormula(ctx context.Context, payload string) {
	f, err := a.resolveFormula(ctx, payload)
	if a.reportErr(err) {
		return
	}

	a.ui.PrintHeading(fmt.Sprintf("=== %s ===", f.Name))
	if f.Complexity != "" {
		a.ui.PrintHint(f.Complexity)
	}

	weights, err := formula.ForFormula(f)
	if a.reportErr(err) {
		return
	}
	a.printWeights(f, weights)

	if len(f.FlourComposition) > 0 {
		a.ui.Println("")
		a.ui.PrintHeading("Flour mix:")
		for name, pct := range f.FlourComposition {
			a.ui.PrintLine(fmt.Sprintf("  %-24s %.0f%%", name, pct))
		}
	}
	if f.Notes != "" {
		a.ui.Println("")
		a.ui.PrintHint(f.Notes)
	}
	a.ui.Println("")
	a.ui.PrintHint("Share it: " + strings.ReplaceAll(export.FormatFormula(f), "\n", " | "))
}

// resolveFormula accepts a 1-based list index or a formula ID.
func (a *cliApp) resolveFormula(ctx context.Context, payload string) (*domain.Formula, error) {
	payload = strings.TrimSpace(payload)
	if idx, err := strconv.Atoi(payload); err == nil {
		list, err := a.formulas.List(ctx)
		if err != nil {
			return nil, err
		}
		if idx < 1 || idx > len(list) {
			return nil, domain.Invalidf("pick a number between 1 and %d", len(list))
		}
		return a.formulas.Get(ctx, list[idx-1].ID)
	}
	return a.formulas.Get(ctx, payload)
}

func (a *cliApp) calc(payload string) {
	fields := strings.Fields(payload)
	if len(fields) < 4 {
		a.ui.PrintHint("Usage: calc <total g> <hydration %> <salt %> <levain %> [levain hydration %]")
		a.ui.PrintHint("Example: calc 900 75 2.2 20")
		return
	}

	nums := make([]float64, len(fields))
	for i, fld := range fields {
		v, err := strconv.ParseFloat(strings.TrimSuffix(fld, "%"), 64)
		if err != nil {
			a.ui.PrintUrgent(fmt.Sprintf("Error: %q is not a number.", fld))
			return
		}
		nums[i] = v
	}

	f := &domain.Formula{
		Name:         "untitled",
		TotalDoughG:  nums[0],
		HydrationPct: nums[1],
		SaltPct:      nums[2],
		LevainPct:    nums[3],
	}
	if len(nums) >= 5 {
		f.LevainHydrationPct = &nums[4]
	}

	weights, err := formula.ForFormula(f)
	if a.reportErr(err) {
		return
	}

	a.printWeights(f, weights)
	a.lastCalc = f
	a.ui.Println("")
	a.ui.PrintChat("Keep it with 'save formula <name>'.")
}

func (a *cliApp) printWeights(f *domain.Formula, w domain.Weights) {
	a.ui.PrintLine(fmt.Sprintf("  Total dough   %.0fg", f.TotalDoughG))
	a.ui.PrintLine(fmt.Sprintf("  Flour         %dg", w.Flour))
	a.ui.PrintLine(fmt.Sprintf("  Water         %dg  (%.1f%% hydration)", w.Water, f.HydrationPct))
	a.ui.PrintLine(fmt.Sprintf("  Salt          %dg  (%.1f%%)", w.Salt, f.SaltPct))
	if f.LevainHydrationPct != nil {
		a.ui.PrintLine(fmt.Sprintf("  Levain        %dg  (%.1f%% at %.0f%% hydration)", w.Levain, f.LevainPct, *f.LevainHydrationPct))
	} else {
		a.ui.PrintLine(fmt.Sprintf("  Levain        %dg  (%.1f%%, from the amounts above)", w.Levain, f.LevainPct))
	}
}

func (a *cliApp) saveFormula(ctx context.Context, name string) {
	if a.lastCalc == nil {
		a.ui.PrintHint("Run 'calc' first — there's nothing to save yet.")
		return
	}
	if name == "" {
		a.ui.PrintHint("Give it a name: save formula <name>.")
		return
	}

	f := *a.lastCalc
	f.ID = slugify(name)
	f.Name = name
	f.Version = 1
	if err := a.formulas.Add(ctx, &f); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			a.ui.PrintUrgent(fmt.Sprintf("Error: a formula named %q already exists.", name))
			return
		}
		a.reportErr(err)
		return
	}
	a.lastCalc = nil
	a.ui.PrintChat(fmt.Sprintf("Saved %q. It's in 'list' now.", name))
}

// ── The new-bake wizard ──────────────────────────────────────────

func (a *cliApp) newBake(ctx context.Context) {
	if err := a.lifecycle.StartWizard(); a.reportErr(err) {
		return
	}
	a.showWizardStep(ctx)
}

func (a *cliApp) selectFormula(ctx context.Context, payload string) {
	if !a.lifecycle.WizardOpen() {
		a.ui.PrintHint("Start with 'new' to plan a bake first.")
		return
	}

	f, err := a.resolveFormula(ctx, payload)
	if a.reportErr(err) {
		return
	}
	if _, err := a.lifecycle.SelectFormula(ctx, f.ID); a.reportErr(err) {
		return
	}
	a.ui.PrintChat(fmt.Sprintf("%s it is. 'next' to set the timing.", f.Name))
}

func (a *cliApp) setTarget(payload string) {
	if !a.lifecycle.WizardOpen() {
		a.ui.PrintHint("Start with 'new' to plan a bake first.")
		return
	}

	t, err := parseTargetTime(payload, time.Now())
	if err != nil {
		a.ui.PrintUrgent(fmt.Sprintf("Error: %v", err))
		a.ui.PrintHint("Try 'target 18:00', 'target 2026-07-12 18:00', or 'target +8h30m'.")
		return
	}
	if err := a.lifecycle.SetTarget(t); a.reportErr(err) {
		return
	}
	a.ui.PrintChat(fmt.Sprintf("Aiming for bread at %s. 'next' when ready.", t.Format("Mon 15:04")))
}

func (a *cliApp) setEnvironment(ctx context.Context, payload string) {
	if !a.lifecycle.WizardOpen() {
		a.ui.PrintHint("Start with 'new' to plan a bake first.")
		return
	}

	fields := strings.Fields(payload)
	if len(fields) == 0 {
		a.ui.PrintHint("Usage: env <ambient °F> [humidity %] [ac on|off]")
		return
	}

	env := domain.Environment{}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		a.ui.PrintUrgent(fmt.Sprintf("Error: %q is not a temperature.", fields[0]))
		return
	}
	env.AmbientTemp = v
	if len(fields) > 1 {
		if h, err := strconv.ParseFloat(fields[1], 64); err == nil {
			env.Humidity = h
		}
	}
	if len(fields) > 2 {
		env.ACStatus = strings.ToLower(fields[2])
	}

	if err := a.lifecycle.SetEnvironment(env); a.reportErr(err) {
		return
	}
	a.ui.PrintChat(fmt.Sprintf("Noted: %.0f°F ambient. The schedule adjusts to it.", env.AmbientTemp))
}

func (a *cliApp) nextStep(ctx context.Context) {
	if !a.lifecycle.WizardOpen() {
		a.ui.PrintHint("No wizard open. 'new' starts one.")
		return
	}
	if _, err := a.lifecycle.AdvanceStep(); a.reportErr(err) {
		return
	}
	a.showWizardStep(ctx)
}

func (a *cliApp) backStep(ctx context.Context) {
	if !a.lifecycle.WizardOpen() {
		a.ui.PrintHint("No wizard open. 'new' starts one.")
		return
	}
	if _, err := a.lifecycle.RetreatStep(); a.reportErr(err) {
		return
	}
	a.showWizardStep(ctx)
}

func (a *cliApp) showWizardStep(ctx context.Context) {
	step := a.lifecycle.Step()
	a.ui.PrintHeading(fmt.Sprintf("New bake — step %d/%d", step, bake.WizardSteps))

	switch step {
	case bake.StepFormula:
		list, err := a.formulas.List(ctx)
		if a.reportErr(err) {
			return
		}
		for i, f := range list {
			marker := " "
			if sel := a.lifecycle.SelectedFormula(); sel != nil && sel.ID == f.ID {
				marker = "*"
			}
			a.ui.PrintLine(fmt.Sprintf("%s [%d] %s — %.0fg at %.0f%%", marker, i+1, f.Name, f.TotalDoughG, f.HydrationPct))
		}
		a.ui.PrintChat("Pick a formula by number, then 'next'.")

	case bake.StepTiming:
		if t := a.lifecycle.Target(); !t.IsZero() {
			a.ui.PrintLine("Target bake time: " + t.Format("Mon Jan 2, 15:04"))
		}
		a.ui.PrintChat("When do you want bread? 'target 18:00' or 'target +9h'.")

	case bake.StepEnvironment:
		set, err := a.settings.Load(ctx)
		if err == nil {
			a.ui.PrintHint(fmt.Sprintf("Defaults: %.0f°F ambient, %.0f%% humidity.", set.DefaultAmbientTemp, set.DefaultHumidity))
		}
		a.ui.PrintChat("How's the kitchen? 'env 83 72 on', or 'next' to use the defaults.")

	case bake.StepSummary:
		f := a.lifecycle.SelectedFormula()
		target := a.lifecycle.Target()
		weights, err := formula.ForFormula(f)
		if a.reportErr(err) {
			return
		}
		a.ui.PrintLine("Formula: " + f.Name)
		a.printWeights(f, weights)
		a.ui.Println("")

		// Preview with the conditions the bake will actually run
		// under: the wizard's env when entered, defaults otherwise.
		var ambient float64
		if env, ok := a.lifecycle.Environment(); ok {
			ambient = env.AmbientTemp
		} else {
			set, _ := a.settings.Load(ctx)
			ambient = set.DefaultAmbientTemp
		}
		plan := schedule.Project(target, ambient)
		a.ui.PrintHeading("Schedule:")
		a.ui.PrintLine(fmt.Sprintf("  Mix & start bulk  %s", plan.StartBulk.Format("15:04")))
		a.ui.PrintLine(fmt.Sprintf("  Pre-shape         %s", plan.StartProof.Format("15:04")))
		a.ui.PrintLine(fmt.Sprintf("  Bake              %s", plan.BakeAt.Format("15:04")))
		if plan.Adjustment != 1.0 {
			a.ui.PrintHint(fmt.Sprintf("  (times scaled ×%.2f for %.0f°F)", plan.Adjustment, ambient))
		}
		a.ui.PrintChat("'start' begins the bake. 'back' to adjust.")
	}
}

func (a *cliApp) startBake(ctx context.Context) {
	if !a.lifecycle.WizardOpen() {
		a.ui.PrintHint("Plan the bake first: 'new'.")
		return
	}

	b, err := a.lifecycle.CommitBake(ctx)
	if err != nil && !domain.IsPersistenceWarning(err) {
		a.reportErr(err)
		return
	}
	a.reportErr(err) // prints the warning, if any

	a.ui.PrintChat(fmt.Sprintf("Bulk fermentation is on. Bread at %s — I'll nudge you along the way.",
		b.TargetTime.Format(time.Kitchen)))
}

// ── The active bake ──────────────────────────────────────────────

func (a *cliApp) logReading(ctx context.Context, payload string) {
	fields := strings.Fields(payload)
	if len(fields) == 0 {
		a.ui.PrintHint("Usage: log <dough °F> [rise %] [notes...]")
		a.ui.PrintHint("Example: log 78 40 jiggly, smells ripe")
		return
	}

	entry := domain.EnvironmentLog{}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		a.ui.PrintUrgent(fmt.Sprintf("Error: %q is not a temperature.", fields[0]))
		return
	}
	entry.DoughTemp = v

	rest := fields[1:]
	if len(rest) > 0 {
		if r, err := strconv.Atoi(strings.TrimSuffix(rest[0], "%")); err == nil {
			entry.RisePct = r
			rest = rest[1:]
		}
	}
	entry.Notes = strings.Join(rest, " ")

	if b := a.lifecycle.Active(); b != nil {
		entry.AmbientTemp = b.Environment.AmbientTemp
		entry.Humidity = b.Environment.Humidity
	}

	if err := a.lifecycle.AppendLog(ctx, entry); a.reportErr(err) {
		return
	}
	line := fmt.Sprintf("Logged: dough %.1f°F", entry.DoughTemp)
	if entry.RisePct > 0 {
		line += fmt.Sprintf(", %d%% rise", entry.RisePct)
	}
	a.ui.PrintChat(line + ".")
}

func (a *cliApp) advanceStage(ctx context.Context) {
	stage, done, err := a.lifecycle.AdvanceStage(ctx)
	if err != nil && !domain.IsPersistenceWarning(err) {
		a.reportErr(err)
		return
	}
	a.reportErr(err)

	if done {
		a.ui.PrintChat("That's a bake! It's in 'history' — rate it with 'complete <1-5>' next time, before the last stage.")
		return
	}

	switch stage {
	case domain.StagePreShape:
		a.ui.PrintChat("Pre-shape time. Flour the bench, be gentle with it.")
	case domain.StageFinalProof:
		a.ui.PrintChat("Into the banneton. Final proof is running.")
	case domain.StageBaking:
		a.ui.PrintChat("Oven time! 'stage' once more when it's out, or 'complete <rating>' to finish with a score.")
	}
}

func (a *cliApp) pause(ctx context.Context) {
	if a.reportErr(a.lifecycle.Pause(ctx)) {
		return
	}
	a.ui.PrintChat("Clock paused. The dough, of course, has no pause button.")
}

func (a *cliApp) resume(ctx context.Context) {
	if a.reportErr(a.lifecycle.Resume(ctx)) {
		return
	}
	a.ui.PrintChat(fmt.Sprintf("Back on the clock at %s elapsed.", fmtClock(a.lifecycle.Elapsed())))
}

func (a *cliApp) showStatus(ctx context.Context) {
	b := a.lifecycle.Active()
	if b == nil {
		if a.lifecycle.WizardOpen() {
			a.showWizardStep(ctx)
			return
		}
		a.ui.PrintHint("No bake in progress. 'new' starts one.")
		return
	}

	now := time.Now()
	a.ui.PrintHeading(fmt.Sprintf("=== %s ===", b.Name))
	a.ui.PrintLine(fmt.Sprintf("Stage:    %s", b.Stage))
	status := fmtClock(b.Elapsed(now))
	if b.Paused() {
		status += "  (PAUSED)"
	}
	a.ui.PrintLine(fmt.Sprintf("Elapsed:  %s", status))
	a.ui.PrintLine(fmt.Sprintf("Target:   %s", b.TargetTime.Format("Mon 15:04")))

	plan := schedule.Project(b.TargetTime, b.Environment.AmbientTemp)
	switch b.Stage {
	case domain.StageBulkFermentation:
		a.printDue(now, plan.StartProof, "pre-shape")
	case domain.StageFinalProof:
		a.printDue(now, plan.BakeAt, "the oven")
	}

	if n := len(b.Logs); n > 0 {
		last := b.Logs[n-1]
		a.ui.PrintHint(fmt.Sprintf("Last check (%s ago): dough %.1f°F, %d%% rise.",
			now.Sub(last.Timestamp).Round(time.Minute), last.DoughTemp, last.RisePct))
	} else {
		a.ui.PrintHint("No dough checks logged yet. 'log 78 30' records one.")
	}
}

func (a *cliApp) printDue(now, due time.Time, what string) {
	if now.Before(due) {
		a.ui.PrintLine(fmt.Sprintf("Next:     %s in %s (%s)", what, fmtClock(due.Sub(now)), due.Format("15:04")))
	} else {
		a.ui.PrintUrgent(fmt.Sprintf("Next:     %s — overdue by %s!", what, fmtClock(now.Sub(due))))
	}
}

func (a *cliApp) complete(ctx context.Context, payload string) {
	rating, issues, notes := parseCompletion(payload)

	b, err := a.lifecycle.CompleteBake(ctx, rating, issues, notes)
	if err != nil && !domain.IsPersistenceWarning(err) {
		a.reportErr(err)
		return
	}
	a.reportErr(err)

	line := fmt.Sprintf("Done! %q took %s.", b.Name, fmtClock(b.Elapsed(*b.EndTime)))
	if len(issues) > 0 {
		line += " Tagged: " + strings.Join(issues, ", ") + "."
	}
	if rating != nil {
		line += fmt.Sprintf(" %s.", strings.Repeat("★", *rating))
	}
	a.ui.PrintChat(line)
}

func (a *cliApp) abandon(ctx context.Context) {
	b, err := a.lifecycle.AbandonBake(ctx)
	if err != nil && !domain.IsPersistenceWarning(err) {
		a.reportErr(err)
		return
	}
	a.reportErr(err)
	a.ui.PrintChat(fmt.Sprintf("%q set aside at %s. It's in the history, no shame in it.", b.Name, b.Stage))
}

// levain manages a starter build: 'levain start 100 20 [flour mix]'
// records one, 'levain ready [signals]' marks it peaked, bare 'levain'
// shows where it stands.
func (a *cliApp) levain(ctx context.Context, payload string) {
	fields := strings.Fields(payload)
	if len(fields) == 0 {
		a.showLevain(ctx)
		return
	}

	switch fields[0] {
	case "start", "build":
		a.startLevain(ctx, fields[1:])
	case "ready", "peaked":
		a.levainReady(ctx, fields[1:])
	default:
		a.ui.PrintHint("Usage: levain | levain start [hydration %] [inoculation %] [flour mix] | levain ready [signals...]")
	}
}

func (a *cliApp) startLevain(ctx context.Context, args []string) {
	lb := &domain.LevainBuild{
		ID:             idgen.New(),
		Status:         domain.LevainBuilding,
		StartedAt:      time.Now(),
		HydrationPct:   100,
		InoculationPct: 20,
	}
	if b := a.lifecycle.Active(); b != nil {
		lb.BakeID = b.ID
	}
	if len(args) > 0 {
		if v, err := strconv.ParseFloat(strings.TrimSuffix(args[0], "%"), 64); err == nil {
			lb.HydrationPct = v
			args = args[1:]
		}
	}
	if len(args) > 0 {
		if v, err := strconv.ParseFloat(strings.TrimSuffix(args[0], "%"), 64); err == nil {
			lb.InoculationPct = v
			args = args[1:]
		}
	}
	lb.FlourMix = strings.Join(args, " ")

	if err := a.levains.SaveLevain(ctx, lb); a.reportErr(err) {
		return
	}
	a.lastLevain = lb.ID
	a.ui.PrintChat(fmt.Sprintf("Levain build started at %.0f%% hydration, %.0f%% inoculation. 'levain ready' when it peaks.",
		lb.HydrationPct, lb.InoculationPct))
}

func (a *cliApp) levainReady(ctx context.Context, signals []string) {
	lb, err := a.currentLevain(ctx)
	if a.reportErr(err) {
		return
	}
	if lb == nil {
		a.ui.PrintHint("No levain build going. 'levain start' begins one.")
		return
	}

	now := time.Now()
	lb.Status = domain.LevainReady
	lb.ReadyAt = &now
	lb.ReadySignals = signals
	if err := a.levains.SaveLevain(ctx, lb); a.reportErr(err) {
		return
	}
	a.ui.PrintChat(fmt.Sprintf("Levain ready after %s. Time to mix.", fmtClock(now.Sub(lb.StartedAt))))
}

func (a *cliApp) showLevain(ctx context.Context) {
	lb, err := a.currentLevain(ctx)
	if a.reportErr(err) {
		return
	}
	if lb == nil {
		a.ui.PrintHint("No levain build on record. 'levain start 100 20' begins one.")
		return
	}

	a.ui.PrintHeading("Levain build:")
	a.ui.PrintLine(fmt.Sprintf("  Status       %s", lb.Status))
	a.ui.PrintLine(fmt.Sprintf("  Started      %s (%s ago)", lb.StartedAt.Format(time.Kitchen), fmtClock(time.Since(lb.StartedAt))))
	a.ui.PrintLine(fmt.Sprintf("  Hydration    %.0f%%, inoculation %.0f%%", lb.HydrationPct, lb.InoculationPct))
	if lb.FlourMix != "" {
		a.ui.PrintLine("  Flour mix    " + lb.FlourMix)
	}
	if lb.ReadyAt != nil {
		a.ui.PrintLine(fmt.Sprintf("  Ready after  %s", fmtClock(lb.ReadyAt.Sub(lb.StartedAt))))
	}
	if len(lb.ReadySignals) > 0 {
		a.ui.PrintHint("  signals: " + strings.Join(lb.ReadySignals, ", "))
	}
}

// currentLevain prefers the build tied to the active bake, falling back
// to whatever this session started.
func (a *cliApp) currentLevain(ctx context.Context) (*domain.LevainBuild, error) {
	if b := a.lifecycle.Active(); b != nil {
		if lb, err := a.levains.LevainForBake(ctx, b.ID); err == nil && lb != nil {
			return lb, nil
		} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}
	if a.lastLevain == "" {
		return nil, nil
	}
	lb, err := a.levains.Levain(ctx, a.lastLevain)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return lb, err
}

// ── Records ──────────────────────────────────────────────────────

func (a *cliApp) showHistory(ctx context.Context) {
	history, err := a.store.History(ctx)
	if a.reportErr(err) {
		return
	}
	if len(history) == 0 {
		a.ui.PrintHint("No finished bakes yet.")
		return
	}

	a.ui.PrintHeading("Bake history:")
	for _, b := range history {
		line := fmt.Sprintf("  %s  %s", b.StartTime.Format("Jan 02"), b.Name)
		switch {
		case b.Status == domain.BakeAbandoned:
			line += "  (abandoned)"
		case b.Rating != nil:
			line += "  " + strings.Repeat("★", *b.Rating)
		}
		a.ui.PrintLine(line)
		if len(b.Issues) > 0 {
			a.ui.PrintHint("    issues: " + strings.Join(b.Issues, ", "))
		}
	}

	stats, err := a.lifecycle.Stats(ctx)
	if a.reportErr(err) {
		return
	}
	a.ui.Println("")
	line := fmt.Sprintf("%d bakes, %.0f%% finished", stats.Total, stats.SuccessRate*100)
	if stats.Rated > 0 {
		line += fmt.Sprintf(", avg %.1f★ over %d rated", stats.AvgRating, stats.Rated)
	}
	a.ui.PrintHint(line + ".")
}

func (a *cliApp) exportData(ctx context.Context) {
	snap, err := export.Build(ctx, a.formulas, a.store, a.settings)
	if a.reportErr(err) {
		return
	}
	path, err := export.Write(snap, a.exportDir)
	if a.reportErr(err) {
		return
	}
	a.ui.PrintChat(fmt.Sprintf("Exported %d formulas and %d bakes to %s.",
		len(snap.Formulas), len(snap.History), path))
}

func (a *cliApp) importData(ctx context.Context, path string) {
	if path == "" {
		a.ui.PrintHint("Usage: import <file.json or a file with a shared formula>")
		return
	}

	if snap, err := export.Read(path); err == nil {
		added := 0
		for _, f := range snap.Formulas {
			if err := a.formulas.Add(ctx, f); err == nil {
				added++
			} else if !errors.Is(err, domain.ErrAlreadyExists) {
				a.log.Warn("importing formula %s: %v", f.ID, err)
			}
		}
		if snap.Settings != nil {
			if err := a.settings.Save(ctx, snap.Settings); err != nil {
				a.log.Warn("importing settings: %v", err)
			}
		}
		a.ui.PrintChat(fmt.Sprintf("Imported %d new formulas from the snapshot.", added))
		return
	}

	// Not a snapshot — maybe a pasted formula block saved to a file.
	data, err := os.ReadFile(path)
	if err != nil {
		a.ui.PrintUrgent(fmt.Sprintf("Error: reading %s: %v", path, err))
		return
	}
	f, err := export.ParseFormula(string(data))
	if err != nil {
		var pe *domain.ParseError
		if errors.As(err, &pe) {
			a.ui.PrintUrgent(fmt.Sprintf("Error: that doesn't look like a formula — missing %s.",
				strings.Join(pe.Missing, ", ")))
			return
		}
		a.reportErr(err)
		return
	}
	if err := a.formulas.Add(ctx, f); a.reportErr(err) {
		return
	}
	a.ui.PrintChat(fmt.Sprintf("Imported %q from shared text.", f.Name))
}

// ── Settings ─────────────────────────────────────────────────────

func (a *cliApp) showSettings(ctx context.Context) {
	set, err := a.settings.Load(ctx)
	if a.reportErr(err) {
		return
	}

	a.ui.PrintHeading("Settings:")
	a.ui.PrintLine(fmt.Sprintf("  ambient        %.0f°F", set.DefaultAmbientTemp))
	a.ui.PrintLine(fmt.Sprintf("  humidity       %.0f%%", set.DefaultHumidity))
	a.ui.PrintLine(fmt.Sprintf("  summer         %s", set.SummerMode))
	a.ui.PrintLine(fmt.Sprintf("  notifications  %s", onOff(set.EnableNotifications)))
	a.ui.PrintLine(fmt.Sprintf("  folds          %s", onOff(set.EnableFoldReminders)))
	a.ui.PrintLine(fmt.Sprintf("  theme          %s", set.Theme))
	a.ui.PrintHint("Change one with 'set <key> <value>', e.g. 'set ambient 80'.")
}

func (a *cliApp) updateSetting(ctx context.Context, payload string) {
	fields := strings.Fields(payload)
	if len(fields) != 2 {
		a.ui.PrintHint("Usage: set <key> <value>")
		return
	}
	key, val := strings.ToLower(fields[0]), strings.ToLower(fields[1])

	set, err := a.settings.Load(ctx)
	if a.reportErr(err) {
		return
	}

	switch key {
	case "ambient":
		v, err := strconv.ParseFloat(val, 64)
		if err != nil {
			a.ui.PrintUrgent(fmt.Sprintf("Error: %q is not a temperature.", val))
			return
		}
		set.DefaultAmbientTemp = v
	case "humidity":
		v, err := strconv.ParseFloat(val, 64)
		if err != nil {
			a.ui.PrintUrgent(fmt.Sprintf("Error: %q is not a percentage.", val))
			return
		}
		set.DefaultHumidity = v
	case "summer":
		if val != "auto" && val != "on" && val != "off" {
			a.ui.PrintUrgent("Error: summer mode is auto, on, or off.")
			return
		}
		set.SummerMode = val
	case "notifications":
		set.EnableNotifications = val == "on" || val == "true"
	case "folds":
		set.EnableFoldReminders = val == "on" || val == "true"
	case "theme":
		if val != "light" && val != "dark" {
			a.ui.PrintUrgent("Error: theme is light or dark.")
			return
		}
		set.Theme = val
	default:
		a.ui.PrintHint(fmt.Sprintf("Unknown setting %q. Keys: ambient, humidity, summer, notifications, folds, theme.", key))
		return
	}

	if err := a.settings.Save(ctx, set); a.reportErr(err) {
		return
	}
	a.ui.PrintChat(fmt.Sprintf("Set %s to %s.", key, val))
}

// ── Misc ─────────────────────────────────────────────────────────

// clear with no argument discards the open wizard; 'clear data' wipes
// formulas, history, settings, and levain builds back to defaults,
// gated behind an explicit confirmation.
func (a *cliApp) clear(ctx context.Context, payload string) {
	args := strings.Fields(strings.ToLower(payload))
	if len(args) == 0 {
		if a.lifecycle.WizardOpen() {
			a.lifecycle.CancelWizard()
			a.ui.PrintChat("Wizard discarded. 'new' starts fresh.")
			return
		}
		a.lastCalc = nil
		a.ui.PrintHint("Nothing to clear. 'clear data' wipes everything back to defaults.")
		return
	}
	if args[0] != "data" {
		a.ui.PrintHint("Usage: clear | clear data")
		return
	}
	if a.lifecycle.Active() != nil {
		a.ui.PrintUrgent("Error: a bake is in progress. Complete or abandon it before clearing data.")
		return
	}
	if len(args) < 2 || args[1] != "confirm" {
		a.ui.PrintUrgent("This wipes formulas, history, settings, and levain builds back to the defaults.")
		a.ui.PrintHint("Type 'clear data confirm' to go through with it.")
		return
	}

	if err := a.resetter.Reset(ctx, formula.Defaults()); a.reportErr(err) {
		return
	}
	a.lifecycle.CancelWizard()
	a.lastCalc = nil
	a.lastLevain = ""
	a.ui.PrintChat("Fresh start. Defaults are back, history is gone.")
}

func (a *cliApp) quit() {
	if b := a.lifecycle.Active(); b != nil {
		a.ui.PrintChat(fmt.Sprintf("%q keeps going — I'll pick it up next time.", b.Name))
	}
	a.ui.Quit()
}

func (a *cliApp) showHelp() {
	a.ui.PrintHeading("Commands:")
	a.ui.PrintLine("  list / formulas   Show saved formulas")
	a.ui.PrintLine("  show <n>          Full formula breakdown")
	a.ui.PrintLine("  calc <g> <h> <s> <l> [lh]   Dough math from percentages")
	a.ui.PrintLine("  save formula <name>         Keep the last calc")
	a.ui.Println("")
	a.ui.PrintLine("  new               Plan a bake (4-step wizard)")
	a.ui.PrintLine("  select / 1, 2...  Pick a formula in the wizard")
	a.ui.PrintLine("  target <time>     When you want bread (18:00, +9h)")
	a.ui.PrintLine("  env <°F> [%] [ac] Kitchen conditions")
	a.ui.PrintLine("  next / back       Move through the wizard")
	a.ui.PrintLine("  start             Begin the bake")
	a.ui.Println("")
	a.ui.PrintLine("  log <°F> [rise%] [notes]    Record a dough check")
	a.ui.PrintLine("  stage / done      Advance to the next stage")
	a.ui.PrintLine("  pause / resume    Freeze and continue the clock")
	a.ui.PrintLine("  status            Where the bake stands")
	a.ui.PrintLine("  complete [1-5] [#tag] [notes]  Finish, rate, tag issues")
	a.ui.PrintLine("  abandon           Set the bake aside")
	a.ui.PrintLine("  levain start/ready          Track a starter build")
	a.ui.Println("")
	a.ui.PrintLine("  history / stats   Past bakes and the numbers")
	a.ui.PrintLine("  export            Write everything to a JSON file")
	a.ui.PrintLine("  import <path>     Load a snapshot or shared formula")
	a.ui.PrintLine("  settings / set    Show and change configuration")
	a.ui.PrintLine("  clear             Discard the open wizard")
	a.ui.PrintLine("  clear data        Wipe everything back to defaults")
	a.ui.PrintLine("  quit              Exit (an active bake survives)")
}

// ── Helpers ──────────────────────────────────────────────────────

// parseTargetTime accepts a clock time ("18:00", rolled to tomorrow if
// already past), a full timestamp ("2026-07-12 18:00"), or a relative
// offset ("+8h30m").
func parseTargetTime(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("no time given")
	}

	if strings.HasPrefix(s, "+") {
		d, err := time.ParseDuration(s[1:])
		if err != nil {
			return time.Time{}, fmt.Errorf("bad offset %q", s)
		}
		return now.Add(d), nil
	}

	if t, err := time.ParseInLocation("2006-01-02 15:04", s, now.Location()); err == nil {
		return t, nil
	}

	if t, err := time.ParseInLocation("15:04", s, now.Location()); err == nil {
		target := time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location())
		if !target.After(now) {
			target = target.AddDate(0, 0, 1)
		}
		return target, nil
	}

	return time.Time{}, fmt.Errorf("can't read %q as a time", s)
}

// parseCompletion splits a completion payload like
// "4 #dense-crumb #pale cut it too soon" into an optional leading
// rating, #-prefixed issue tags (hyphens read as spaces), and the
// remaining words as notes.
func parseCompletion(payload string) (rating *int, issues []string, notes string) {
	fields := strings.Fields(payload)
	if len(fields) > 0 {
		if r, err := strconv.Atoi(fields[0]); err == nil {
			rating = &r
			fields = fields[1:]
		}
	}
	var noteWords []string
	for _, f := range fields {
		if tag := strings.TrimPrefix(f, "#"); tag != f && tag != "" {
			issues = append(issues, strings.ReplaceAll(tag, "-", " "))
			continue
		}
		noteWords = append(noteWords, f)
	}
	return rating, issues, strings.Join(noteWords, " ")
}

// slugify turns a display name into a stable formula ID.
func slugify(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteByte('-')
		}
	}
	return strings.Trim(b.String(), "-")
}

func fmtClock(d time.Duration) string {
	d = d.Round(time.Minute)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh%02dm", h, m)
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
