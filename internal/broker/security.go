package broker

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// SecurityAPI exposes the backing server's ACL-based security roles.
// Rule strings (e.g. "+get", "~channel:*", "allkeys") are opaque and passed
// through to the server unmodified.
type SecurityAPI interface {
	// ListRoles returns the names of all security roles defined on the server.
	ListRoles(ctx context.Context) ([]string, error)

	// GetRole returns the server's description of one role, as a list of
	// attribute lines.
	GetRole(ctx context.Context, name string) ([]string, error)

	// PutRole creates or updates a role with the given rule strings.
	PutRole(ctx context.Context, name string, rules []string) error

	// DeleteRole removes a role. Returns the number of roles removed (0 or 1).
	DeleteRole(ctx context.Context, name string) (int64, error)
}

type securityAPI struct {
	client redis.UniversalClient
}

func (s *securityAPI) ListRoles(ctx context.Context) ([]string, error) {
	roles, err := s.client.Do(ctx, "acl", "users").StringSlice()
	if err != nil {
		return nil, fmt.Errorf("failed to list security roles: %w", err)
	}
	return roles, nil
}

func (s *securityAPI) GetRole(ctx context.Context, name string) ([]string, error) {
	// ACL GETUSER replies with an attribute list whose shape varies across
	// server versions, so it is flattened to strings rather than decoded
	// into a struct.
	reply, err := s.client.Do(ctx, "acl", "getuser", name).Slice()
	if err != nil {
		return nil, fmt.Errorf("failed to get security role '%s': %w", name, err)
	}

	lines := make([]string, 0, len(reply))
	for _, item := range reply {
		lines = append(lines, fmt.Sprintf("%v", item))
	}
	return lines, nil
}

func (s *securityAPI) PutRole(ctx context.Context, name string, rules []string) error {
	args := make([]any, 0, len(rules)+3)
	args = append(args, "acl", "setuser", name)
	for _, rule := range rules {
		args = append(args, rule)
	}
	if err := s.client.Do(ctx, args...).Err(); err != nil {
		return fmt.Errorf("failed to update security role '%s': %w", name, err)
	}
	return nil
}

func (s *securityAPI) DeleteRole(ctx context.Context, name string) (int64, error) {
	n, err := s.client.Do(ctx, "acl", "deluser", name).Int64()
	if err != nil {
		return 0, fmt.Errorf("failed to delete security role '%s': %w", name, err)
	}
	return n, nil
}
