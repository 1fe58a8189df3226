package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
)

func (a *App) pending(ctx context.Context, args []string) error {
	orgs, err := a.Verification.ListPending(ctx)
	if err != nil {
		return err
	}
	a.printOrgs(orgs)
	return nil
}

func (a *App) verified(ctx context.Context, args []string) error {
	orgs, err := a.Verification.ListVerified(ctx)
	if err != nil {
		return err
	}
	a.printOrgs(orgs)
	return nil
}

func (a *App) approve(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("approve")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	org, err := a.Verification.Approve(ctx, id, strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	a.ok("%s approved", org.Name)
	return nil
}

func (a *App) reject(ctx context.Context, args []string) error {
	id, yes, rest, err := idWithYes("reject", args)
	if err != nil {
		return err
	}
	if !a.confirm(fmt.Sprintf("Reject organization %d? Rejection is final.", id), yes) {
		return errCancelled
	}
	org, err := a.Verification.Reject(ctx, id, strings.Join(rest, " "))
	if err != nil {
		return err
	}
	a.ok("%s rejected", org.Name)
	return nil
}

func (a *App) suspend(ctx context.Context, args []string) error {
	id, yes, rest, err := idWithYes("suspend", args)
	if err != nil {
		return err
	}
	if !a.confirm(fmt.Sprintf("Suspend organization %d?", id), yes) {
		return errCancelled
	}
	org, err := a.Verification.Suspend(ctx, id, strings.Join(rest, " "))
	if err != nil {
		return err
	}
	a.ok("%s suspended", org.Name)
	return nil
}

func (a *App) unsuspend(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("unsuspend")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	org, err := a.Verification.Unsuspend(ctx, id, strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	a.ok("%s unsuspended", org.Name)
	return nil
}

func (a *App) details(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("details")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	d, err := a.Verification.FetchDetails(ctx, id)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.Out, "%s (%s)\n", d.Name, d.OrganizationType)
	fmt.Fprintf(a.Out, "  Email:        %s\n", d.Email)
	fmt.Fprintf(a.Out, "  Contact:      %s, %s\n", d.ContactPerson, d.PhoneNumber)
	fmt.Fprintf(a.Out, "  Address:      %s\n", d.Address)
	fmt.Fprintf(a.Out, "  Registration: %s\n", d.RegistrationNumber)
	fmt.Fprintf(a.Out, "  Status:       %s (suspended: %t)\n", d.VerificationStatus, d.Suspended)
	if d.Degraded {
		fmt.Fprintln(a.Out, "  (details are incomplete: the server could not provide them)")
	}
	for _, entry := range d.ActivityLog {
		fmt.Fprintf(a.Out, "  - %s\n", entry)
	}
	return nil
}

func (a *App) stats(ctx context.Context, args []string) error {
	// the report count falls back to the local queue like the report list
	reps, err := a.Reports.List(ctx)
	if err != nil {
		return err
	}
	s, err := a.Verification.Stats(ctx, reps)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Organizations\t%d\n", s.TotalOrganizations)
	fmt.Fprintf(w, "Pending verifications\t%d\n", s.PendingVerifications)
	fmt.Fprintf(w, "Restaurants\t%d\n", s.Restaurants)
	fmt.Fprintf(w, "Welfare organizations\t%d\n", s.WelfareOrgs)
	fmt.Fprintf(w, "Active donations\t%d\n", s.ActiveDonations)
	fmt.Fprintf(w, "Completed donations\t%d\n", s.CompletedDonations)
	fmt.Fprintf(w, "Reported issues\t%d\n", s.ReportedIssues)
	return w.Flush()
}

func (a *App) activity(ctx context.Context, args []string) error {
	regs, err := a.Verification.ListPending(ctx)
	if err != nil {
		return err
	}
	feed, err := a.Donations.RecentActivity(ctx, regs)
	if err != nil {
		return err
	}
	if len(feed) == 0 {
		fmt.Fprintln(a.Out, "No recent activity.")
		return nil
	}
	for _, item := range feed {
		fmt.Fprintf(a.Out, "%s  %s\n", item.At.Local().Format("Jan 2 15:04"), item.Message)
	}
	return nil
}

func (a *App) listReports(ctx context.Context, args []string) error {
	reps, err := a.Reports.List(ctx)
	if err != nil {
		return err
	}
	if len(reps) == 0 {
		fmt.Fprintln(a.Out, "No reports.")
		return nil
	}
	w := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tPRIORITY\tSTATUS\tREPORTED\tBY\tDESCRIPTION")
	for _, r := range reps {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Type, r.Priority, r.Status, r.ReportedEntity.Name, r.ReportedBy.Name, r.Description)
	}
	return w.Flush()
}

func (a *App) resolve(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("resolve")
	}
	r, err := a.Reports.Resolve(ctx, args[0])
	if err != nil {
		return err
	}
	a.ok("Report %s resolved", r.ID)
	return nil
}
