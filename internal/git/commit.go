package git

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// AmendDate rewrites the author date of HEAD, keeping message and content
func (r *realRunner) AmendDate(ctx context.Context, date time.Time) error {
	_, err := r.cmd.Run(ctx, "commit", "--amend", "--no-edit", "--date="+date.Format(time.RFC1123Z))
	if err != nil {
		return fmt.Errorf("failed to amend commit date: %w", err)
	}
	return nil
}

// AmendTrailersCommand returns the shell command that amends HEAD with the given
// trailers, skipping any trailer the message already carries. It is meant to be
// passed to RebaseOptions.Exec.
func AmendTrailersCommand(trailers []string) string {
	var sb strings.Builder
	sb.WriteString("git -c trailer.ifexists=addIfDifferent commit --amend --no-edit")
	for _, trailer := range trailers {
		sb.WriteString(" --trailer ")
		sb.WriteString(shellQuote(trailer))
	}
	return sb.String()
}

// shellQuote wraps s in single quotes for sh
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
