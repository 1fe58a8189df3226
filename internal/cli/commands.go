package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"sharebite/internal/domain"
	"sharebite/internal/donations"
	"sharebite/internal/reports"
	"sharebite/internal/session"
)

func parseID(raw string) (int32, error) {
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError(fmt.Sprintf("invalid id %q", raw))
	}
	return int32(id), nil
}

// idWithYes parses "[-yes] <id> [rest...]".
func idWithYes(name string, args []string) (id int32, yes bool, rest []string, err error) {
	fs := newFlags(name)
	fs.BoolVar(&yes, "yes", false, "skip confirmation")
	if err := fs.Parse(args); err != nil || fs.NArg() == 0 {
		return 0, false, nil, usageError(name)
	}
	id, err = parseID(fs.Arg(0))
	return id, yes, fs.Args()[1:], err
}

var timeLayouts = []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02T15:04", "2006-01-02"}

func parseTime(label, raw string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, domain.NewValidationError(fmt.Sprintf("%s: use a time like 2026-05-01 18:00", label))
}

func (a *App) printPosts(posts []domain.FoodPost) {
	if len(posts) == 0 {
		fmt.Fprintln(a.Out, "No donations found.")
		return
	}
	w := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tCATEGORY\tQUANTITY\tSTATUS\tRESTAURANT\tCLAIMED BY\tPICKUP")
	for _, p := range posts {
		claimant := "-"
		if p.Claimant != nil {
			claimant = p.Claimant.Name
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s - %s\n",
			p.ID, p.Title, p.Category, p.Quantity, p.Status, p.PostedBy.Name, claimant,
			p.PickupTimeStart.Format("Jan 2 15:04"), p.PickupTimeEnd.Format("15:04"))
	}
	w.Flush()
}

func (a *App) printOrgs(orgs []domain.OrganizationSummary) {
	if len(orgs) == 0 {
		fmt.Fprintln(a.Out, "No organizations found.")
		return
	}
	w := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTYPE\tSTATUS\tSUSPENDED\tEMAIL\tREGISTERED")
	for _, o := range orgs {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%t\t%s\t%s\n",
			o.ID, o.Name, o.OrganizationType, o.VerificationStatus, o.Suspended, o.Email, o.CreatedAt.Format("2006-01-02"))
	}
	w.Flush()
}

func (a *App) register(ctx context.Context, args []string) error {
	var form session.RegistrationForm
	fields := []struct {
		prompt string
		dst    *string
	}{
		{"Organization type (restaurant/welfare_organization): ", (*string)(&form.OrganizationType)},
		{"Organization name: ", &form.OrganizationName},
		{"Registration number: ", &form.RegistrationNumber},
		{"Phone number: ", &form.PhoneNumber},
		{"Contact person: ", &form.ContactPerson},
		{"Email: ", &form.Email},
		{"Address: ", &form.Address},
		{"Password: ", &form.Password},
		{"Confirm password: ", &form.ConfirmPassword},
	}
	for _, f := range fields {
		v, err := a.line(f.prompt)
		if err != nil {
			return errCancelled
		}
		*f.dst = v
	}

	msg, err := a.Session.Register(ctx, form)
	if err != nil {
		return err
	}
	a.ok("%s", msg)
	return nil
}

func (a *App) login(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("login")
	}
	password, err := a.line("Password: ")
	if err != nil {
		return errCancelled
	}
	sess, err := a.Session.Login(ctx, args[0], password)
	if err != nil {
		return err
	}
	a.ok("Signed in as %s (%s)", sess.User.Name, sess.User.Role)
	return nil
}

func (a *App) logout(ctx context.Context, args []string) error {
	a.Session.Logout(ctx)
	a.Session.Wait()
	a.ok("Signed out")
	return nil
}

func (a *App) whoami(ctx context.Context, args []string) error {
	sess := a.Session.Current()
	if !sess.IsAuthenticated {
		if sess.Notice != "" {
			return domain.NewAuthenticationError(sess.Notice)
		}
		return domain.NewAuthenticationError("Not signed in")
	}
	a.ok("%s <%s> role=%s status=%s", sess.User.Name, sess.User.Email, sess.User.Role, sess.User.VerificationStatus)
	return nil
}

func (a *App) browse(ctx context.Context, args []string) error {
	var filter donations.Filter
	var category string
	fs := newFlags("browse")
	fs.StringVar(&filter.SearchText, "search", "", "search title and description")
	fs.StringVar(&category, "category", "", "category")
	if err := fs.Parse(args); err != nil {
		return usageError("browse")
	}
	filter.Category = domain.FoodCategory(category)
	if category != "" && !filter.Category.IsValid() {
		return domain.NewValidationError("Unknown food category: " + category)
	}

	posts, err := a.Donations.ListAvailable(ctx, filter)
	if err != nil {
		return err
	}
	a.printPosts(posts)
	return nil
}

func (a *App) claim(ctx context.Context, args []string) error {
	id, yes, _, err := idWithYes("claim", args)
	if err != nil {
		return err
	}
	if !a.confirm(fmt.Sprintf("Claim donation %d? You commit to picking it up in the pickup window.", id), yes) {
		return errCancelled
	}
	post, err := a.Donations.Claim(ctx, id)
	if err != nil {
		return err
	}
	a.ok("Claimed %q. Pick it up at %s between %s and %s.", post.Title, post.PickupLocation,
		post.PickupTimeStart.Format("Jan 2 15:04"), post.PickupTimeEnd.Format("15:04"))
	return nil
}

func (a *App) cancelClaim(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("cancel-claim")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	return a.Donations.CancelClaim(ctx, id)
}

func (a *App) myClaims(ctx context.Context, args []string) error {
	posts, err := a.Donations.ListOwnClaims(ctx)
	if err != nil {
		return err
	}
	a.printPosts(posts)
	return nil
}

func (a *App) post(ctx context.Context, args []string) error {
	var p domain.FoodPost
	var category, start, end, expires string
	fs := newFlags("post")
	fs.StringVar(&p.Title, "title", "", "")
	fs.StringVar(&p.Description, "description", "", "")
	fs.StringVar(&category, "category", "", "")
	fs.StringVar(&p.Quantity, "quantity", "", "")
	fs.StringVar(&p.PickupLocation, "location", "", "")
	fs.StringVar(&start, "start", "", "")
	fs.StringVar(&end, "end", "", "")
	fs.StringVar(&expires, "expires", "", "")
	fs.StringVar(&p.SpecialInstructions, "instructions", "", "")
	if err := fs.Parse(args); err != nil {
		return usageError("post")
	}
	p.Category = domain.FoodCategory(category)

	var err error
	for _, t := range []struct {
		label, raw string
		dst        *time.Time
	}{
		{"pickup start", start, &p.PickupTimeStart},
		{"pickup end", end, &p.PickupTimeEnd},
		{"expiry", expires, &p.ExpiryDate},
	} {
		if t.raw == "" {
			continue
		}
		if *t.dst, err = parseTime(t.label, t.raw); err != nil {
			return err
		}
	}

	created, err := a.Donations.CreatePost(ctx, p)
	if err != nil {
		return err
	}
	a.ok("Posted %q (id %d)", created.Title, created.ID)
	return nil
}

func (a *App) myPosts(ctx context.Context, args []string) error {
	posts, err := a.Donations.ListOwnPosts(ctx)
	if err != nil {
		return err
	}
	a.printPosts(posts)
	return nil
}

func (a *App) complete(ctx context.Context, args []string) error {
	id, yes, _, err := idWithYes("complete", args)
	if err != nil {
		return err
	}
	if !a.confirm(fmt.Sprintf("Mark donation %d as picked up?", id), yes) {
		return errCancelled
	}
	post, err := a.Donations.MarkComplete(ctx, id)
	if err != nil {
		return err
	}
	a.ok("Donation %q marked as completed", post.Title)
	return nil
}

func (a *App) deletePost(ctx context.Context, args []string) error {
	id, yes, _, err := idWithYes("delete", args)
	if err != nil {
		return err
	}
	if !a.confirm(fmt.Sprintf("Delete donation %d? This cannot be undone.", id), yes) {
		return errCancelled
	}
	if err := a.Donations.DeletePost(ctx, id); err != nil {
		return err
	}
	a.ok("Post deleted successfully")
	return nil
}

func (a *App) report(ctx context.Context, args []string) error {
	var typ, orgType, orgName, orgIDRaw, priority string
	fs := newFlags("report")
	fs.StringVar(&typ, "type", "", "")
	fs.StringVar(&orgType, "org-type", "", "")
	fs.StringVar(&orgName, "org-name", "", "")
	fs.StringVar(&orgIDRaw, "org-id", "", "")
	fs.StringVar(&priority, "priority", "", "")
	if err := fs.Parse(args); err != nil {
		return usageError("report")
	}
	orgID, err := parseID(orgIDRaw)
	if err != nil {
		return err
	}

	receipt, err := a.Reports.Submit(ctx,
		domain.ReportedEntity{Type: domain.OrganizationType(orgType), ID: orgID, Name: orgName},
		reports.Input{
			Type:        domain.ReportType(typ),
			Description: strings.Join(fs.Args(), " "),
			Priority:    domain.ReportPriority(priority),
		})
	if err != nil {
		return err
	}
	if receipt.Queued {
		a.ok("Report saved locally and will be sent with flush-reports")
		return nil
	}
	a.ok("Report submitted. Our team will review it shortly.")
	return nil
}

func (a *App) flushReports(ctx context.Context, args []string) error {
	n, err := a.Reports.Flush(ctx)
	if err != nil {
		fmt.Fprintf(a.Out, "%d queued report(s) sent\n", n)
		return err
	}
	a.ok("%d queued report(s) sent", n)
	return nil
}
