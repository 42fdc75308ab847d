package autolink

import (
	"fmt"
	"time"
)

// relativeTime renders the distance between t and now as a short
// human-readable phrase ("3 days ago").
func relativeTime(t time.Time, now time.Time) string {
	d := now.Sub(t)
	if d < 0 {
		d = 0
	}

	switch {
	case d < time.Minute:
		return "just now"
	case d < 2*time.Minute:
		return "a minute ago"
	case d < time.Hour:
		return fmt.Sprintf("%d minutes ago", int(d.Minutes()))
	case d < 2*time.Hour:
		return "an hour ago"
	case d < 24*time.Hour:
		return fmt.Sprintf("%d hours ago", int(d.Hours()))
	case d < 48*time.Hour:
		return "yesterday"
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%d days ago", int(d.Hours()/24))
	case d < 60*24*time.Hour:
		return "a month ago"
	case d < 365*24*time.Hour:
		return fmt.Sprintf("%d months ago", int(d.Hours()/(24*30)))
	case d < 2*365*24*time.Hour:
		return "a year ago"
	default:
		return fmt.Sprintf("%d years ago", int(d.Hours()/(24*365)))
	}
}

// issueStatus summarizes an enrichment result's state and age:
// "merged 3 days ago", "closed yesterday", "opened just now".
func issueStatus(v *IssueOrPullRequest, now time.Time) string {
	switch v.State {
	case IssueStateMerged:
		return "merged " + relativeTime(v.ClosedAt, now)
	case IssueStateClosed:
		return "closed " + relativeTime(v.ClosedAt, now)
	default:
		return "opened " + relativeTime(v.CreatedAt, now)
	}
}
