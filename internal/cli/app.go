// Package cli is the terminal front end. Every command prints a ✓ or ✗
// acknowledgement, and destructive commands ask for confirmation first.
package cli

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"

	"sharebite/internal/apiclient"
	"sharebite/internal/domain"
	"sharebite/internal/donations"
	"sharebite/internal/reports"
	"sharebite/internal/session"
	"sharebite/internal/storage"
	"sharebite/internal/verification"
)

// App bundles the client models for the commands.
type App struct {
	Session      *session.Store
	Donations    *donations.Model
	Verification *verification.Model
	Reports      *reports.Model

	In  io.Reader
	Out io.Writer

	reader *bufio.Reader
}

// NewApp builds the models on top of a signed-in (or restorable) session.
// Reports that cannot be delivered are queued in durable.
func NewApp(client *apiclient.Client, sess *session.Store, durable storage.Store, in io.Reader, out io.Writer) *App {
	sink := reports.NewTiered(reports.NewRemoteSink(client), reports.NewQueue(durable))
	return &App{
		Session:      sess,
		Donations:    donations.NewModel(client, sess),
		Verification: verification.NewModel(client, sess),
		Reports:      reports.NewModel(sink, client, sess),
		In:           in,
		Out:          out,
	}
}

// Close stops the models from applying late responses.
func (a *App) Close() {
	a.Donations.Close()
}

type command struct {
	usage string
	help  string
	run   func(a *App, ctx context.Context, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"register":      {"register", "Register a new organization", (*App).register},
		"login":         {"login <email>", "Sign in", (*App).login},
		"logout":        {"logout", "Sign out", (*App).logout},
		"whoami":        {"whoami", "Show the signed-in organization", (*App).whoami},
		"browse":        {"browse [-search text] [-category c]", "List available donations", (*App).browse},
		"claim":         {"claim [-yes] <post-id>", "Claim a donation", (*App).claim},
		"cancel-claim":  {"cancel-claim <post-id>", "Cancel a claim", (*App).cancelClaim},
		"my-claims":     {"my-claims", "List your claims", (*App).myClaims},
		"post":          {"post -title t -description d -category c -quantity q -location l -start t -end t -expires t", "Post a donation", (*App).post},
		"my-posts":      {"my-posts", "List your donations", (*App).myPosts},
		"complete":      {"complete [-yes] <post-id>", "Mark a claimed donation as picked up", (*App).complete},
		"delete":        {"delete [-yes] <post-id>", "Delete an unclaimed donation", (*App).deletePost},
		"report":        {"report -type t -org-id id -org-type t -org-name n [-priority p] <description>", "Report an organization", (*App).report},
		"flush-reports": {"flush-reports", "Send locally queued reports", (*App).flushReports},
		"pending":       {"pending", "Admin: list organizations awaiting verification", (*App).pending},
		"verified":      {"verified", "Admin: list verified organizations", (*App).verified},
		"approve":       {"approve <org-id> [notes]", "Admin: approve an organization", (*App).approve},
		"reject":        {"reject [-yes] <org-id> [notes]", "Admin: reject an organization", (*App).reject},
		"suspend":       {"suspend [-yes] <org-id> <reason>", "Admin: suspend an organization", (*App).suspend},
		"unsuspend":     {"unsuspend <org-id> <reason>", "Admin: lift a suspension", (*App).unsuspend},
		"details":       {"details <org-id>", "Admin: organization details", (*App).details},
		"stats":         {"stats", "Admin: dashboard counters", (*App).stats},
		"activity":      {"activity", "Admin: recent activity", (*App).activity},
		"reports":       {"reports", "Admin: list reports", (*App).listReports},
		"resolve":       {"resolve <report-id>", "Admin: resolve a report", (*App).resolve},
	}
}

// Run executes one command and returns the process exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" {
		a.usage()
		return 0
	}
	cmd, ok := commands[args[0]]
	if !ok {
		a.fail(fmt.Errorf("unknown command %q", args[0]))
		a.usage()
		return 2
	}
	if err := cmd.run(a, ctx, args[1:]); err != nil {
		a.fail(err)
		return 1
	}
	return 0
}

func (a *App) usage() {
	fmt.Fprintln(a.Out, "Usage: sharebite [-config file] <command> [args]")
	fmt.Fprintln(a.Out)
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(a.Out, "  %-16s %s\n", name, commands[name].help)
	}
}

func (a *App) ok(format string, args ...any) {
	fmt.Fprintf(a.Out, "✓ "+format+"\n", args...)
}

func (a *App) fail(err error) {
	msg := domain.UserMessage(err)
	if msg == "" || domain.KindOf(err) == domain.KindInternal {
		msg = err.Error()
	}
	fmt.Fprintf(a.Out, "✗ %s\n", msg)
}

func (a *App) line(prompt string) (string, error) {
	if a.reader == nil {
		a.reader = bufio.NewReader(a.In)
	}
	fmt.Fprint(a.Out, prompt)
	text, err := a.reader.ReadString('\n')
	if err != nil && text == "" {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// confirm asks before a destructive action. skip is the -yes flag.
func (a *App) confirm(question string, skip bool) bool {
	if skip {
		return true
	}
	answer, err := a.line(question + " [y/N]: ")
	if err != nil {
		return false
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes"
}

var errCancelled = domain.NewValidationError("Cancelled")

func newFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func usageError(name string) error {
	return domain.NewValidationError("usage: sharebite " + commands[name].usage)
}
