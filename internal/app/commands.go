package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/nutrilog/internal/identity"
	"github.com/dmitrijs2005/nutrilog/internal/mode"
	"github.com/dmitrijs2005/nutrilog/internal/models"
	"github.com/dmitrijs2005/nutrilog/internal/storage/remote"
	"github.com/dmitrijs2005/nutrilog/internal/summary"
)

const usage = `Usage: nutrilog [flags] <command>

Commands:
  mode                     show the active mode
  mode set <local|cloud>   store the mode preference for the next run
  schema check             check the remote tables
  schema apply             create or upgrade the remote tables
  migrate                  upload local data to the remote and clear it
  archive [days]           roll up entries older than the retention window
  summaries                daily totals, newest first
  list [YYYY-MM-DD]        entries (lite), optionally of one day
  add <kcal> <protein> <carbs> <fat> [label...]
                           log a manual entry now
  delete <id>              remove an entry
  image <id>               print the image payload of an entry
  goal [kcal]              show or set the daily calorie goal
  profile [json]           show or replace the profile
  token <user-id> [email]  sign an access token with the configured secret
`

// tokenValidity is the lifetime of tokens issued by the token command.
const tokenValidity = 24 * time.Hour

// Exec runs one CLI command and writes its result to out.
func (a *App) Exec(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		_, err := io.WriteString(out, usage)
		return err
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "help":
		_, err := io.WriteString(out, usage)
		return err
	case "mode":
		return a.modeCmd(ctx, rest, out)
	case "schema":
		return a.schemaCmd(ctx, rest, out)
	case "migrate":
		rep, err := a.migration.MigrateLocalToRemote(ctx)
		if err != nil {
			return err
		}
		return writeJSON(out, rep)
	case "archive":
		days := a.config.RetentionDays
		if len(rest) > 0 {
			n, err := strconv.Atoi(rest[0])
			if err != nil {
				return fmt.Errorf("archive: bad day count %q", rest[0])
			}
			days = n
		}
		rep, err := a.summaries.ArchiveOlderThan(ctx, days)
		if err != nil {
			return err
		}
		return writeJSON(out, archiveView(rep))
	case "summaries":
		s, err := a.summaries.SummariesLite(ctx)
		if err != nil {
			return err
		}
		return writeJSON(out, s)
	case "list":
		if len(rest) > 0 {
			e, err := a.entries.ListForDate(ctx, rest[0])
			if err != nil {
				return err
			}
			return writeJSON(out, e)
		}
		e, err := a.entries.ListLite(ctx)
		if err != nil {
			return err
		}
		return writeJSON(out, e)
	case "add":
		return a.addCmd(ctx, rest, out)
	case "delete":
		if len(rest) != 1 {
			return fmt.Errorf("usage: delete <id>")
		}
		return a.entries.Delete(ctx, rest[0])
	case "image":
		if len(rest) != 1 {
			return fmt.Errorf("usage: image <id>")
		}
		img, err := a.entries.GetImage(ctx, rest[0])
		if err != nil {
			return err
		}
		return writeJSON(out, img)
	case "goal":
		return a.goalCmd(ctx, rest, out)
	case "profile":
		return a.profileCmd(ctx, rest, out)
	case "token":
		return a.tokenCmd(rest, out)
	}
	return fmt.Errorf("unknown command %q, try help", cmd)
}

func (a *App) addCmd(ctx context.Context, args []string, out io.Writer) error {
	if len(args) < 4 {
		return fmt.Errorf("usage: add <kcal> <protein> <carbs> <fat> [label...]")
	}
	var macros [4]int
	for i := range macros {
		n, err := strconv.Atoi(args[i])
		if err != nil {
			return fmt.Errorf("add: bad number %q", args[i])
		}
		macros[i] = n
	}
	manual := true
	e := &models.Entry{
		Label:    strings.Join(args[4:], " "),
		Calories: macros[0],
		Protein:  macros[1],
		Carbs:    macros[2],
		Fat:      macros[3],
		Manual:   &manual,
	}
	if err := a.entries.Save(ctx, e); err != nil {
		return err
	}
	return writeJSON(out, e.Lite())
}

func (a *App) goalCmd(ctx context.Context, args []string, out io.Writer) error {
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("goal: bad calorie count %q", args[0])
		}
		if err := a.settings.SetDailyGoal(ctx, n); err != nil {
			return err
		}
	}
	goal, err := a.settings.DailyGoal(ctx)
	if err != nil {
		return err
	}
	return writeJSON(out, map[string]int{"daily_goal": goal})
}

func (a *App) profileCmd(ctx context.Context, args []string, out io.Writer) error {
	if len(args) > 0 {
		var p models.Profile
		if err := json.Unmarshal([]byte(strings.Join(args, " ")), &p); err != nil {
			return fmt.Errorf("%w: %v", models.ErrInvalidProfile, err)
		}
		if err := a.settings.SaveProfile(ctx, &p); err != nil {
			return err
		}
	}
	p, err := a.settings.Profile(ctx)
	if err != nil {
		return err
	}
	return writeJSON(out, p)
}

func (a *App) tokenCmd(args []string, out io.Writer) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("usage: token <user-id> [email]")
	}
	if a.config.TokenSecret == "" {
		return fmt.Errorf("token: secret not configured")
	}
	u := models.User{ID: args[0]}
	if len(args) == 2 {
		u.Email = args[1]
	}
	tok, err := identity.GenerateToken(u, []byte(a.config.TokenSecret), tokenValidity)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, tok)
	return err
}

func (a *App) modeCmd(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		pref, err := a.local.Preference(ctx)
		if err != nil {
			return err
		}
		return writeJSON(out, map[string]any{
			"mode":       a.mode,
			"configured": a.resolver.Configured(),
			"preference": pref,
		})
	}
	if args[0] != "set" || len(args) != 2 {
		return fmt.Errorf("usage: mode set <local|cloud>")
	}
	m, err := mode.Parse(args[1])
	if err != nil {
		return err
	}
	if err := a.resolver.SetPreference(ctx, m); err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "mode preference set to %s, takes effect on the next run\n", m)
	return err
}

func (a *App) schemaCmd(ctx context.Context, args []string, out io.Writer) error {
	if a.remote == nil {
		return ErrRemoteNotConfigured
	}
	sub := "check"
	if len(args) > 0 {
		sub = args[0]
	}
	switch sub {
	case "check":
		return writeJSON(out, a.remote.CheckSchema(ctx))
	case "apply":
		if err := remote.RunMigrations(ctx, a.remoteDB); err != nil {
			return err
		}
		return writeJSON(out, a.remote.CheckSchema(ctx))
	}
	return fmt.Errorf("usage: schema <check|apply>")
}

func archiveView(rep summary.Report) map[string]any {
	dates := rep.Archived
	if dates == nil {
		dates = []string{}
	}
	skipped := make(map[string]string, len(rep.Skipped))
	for _, s := range rep.Skipped {
		skipped[s.Date] = s.Err.Error()
	}
	return map[string]any{"cutoff": rep.Cutoff, "archived": dates, "entries": rep.Entries, "skipped": skipped}
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
