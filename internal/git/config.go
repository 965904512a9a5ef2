package git

import (
	"context"
	"fmt"
	"strings"
)

// ConfigValue returns a git config value, or an error when it is unset
func (r *realRunner) ConfigValue(ctx context.Context, key string) (string, error) {
	value, err := r.cmd.Run(ctx, "config", "--get", key)
	if err != nil {
		return "", fmt.Errorf("failed to read git config %s: %w", key, err)
	}
	return value, nil
}

// SetGlobalAlias installs "git <name>" as an alias for command in the user's global config
func (r *realRunner) SetGlobalAlias(ctx context.Context, name, command string) error {
	_, err := r.cmd.Run(ctx, "config", "--global", "alias."+name, command)
	if err != nil {
		return fmt.Errorf("failed to set alias %s: %w", name, err)
	}
	return nil
}

// Identity formats the configured git author as "name <email>", or whichever half is set.
// It returns an empty string when neither user.name nor user.email is configured.
func Identity(ctx context.Context, q Querier) string {
	name, _ := q.ConfigValue(ctx, "user.name")
	email, _ := q.ConfigValue(ctx, "user.email")
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	switch {
	case name != "" && email != "":
		return fmt.Sprintf("%s <%s>", name, email)
	case name != "":
		return name
	}
	return email
}
