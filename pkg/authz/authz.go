package authz

import (
	"context"
	"strings"

	"github.com/samber/lo"
)

const (
	RoleAdmin = "Admin"
	RoleCoach = "Coach"
	RoleUser  = "User"
)

var AllRoles = []string{RoleAdmin, RoleCoach, RoleUser}

// Account is the authenticated caller as supplied by the auth middleware.
type Account struct {
	ID    string   `json:"id"`
	Roles []string `json:"roles"`
}

// HasRole reports whether the account holds any of required.
// An empty required list only demands an authenticated account.
func HasRole(account Account, required ...string) bool {
	if account.ID == "" {
		return false
	}
	if len(required) == 0 {
		return true
	}
	return lo.SomeBy(account.Roles, func(r string) bool {
		return lo.ContainsBy(required, func(want string) bool { return strings.EqualFold(r, want) })
	})
}

func IsValidRole(role string) bool {
	return lo.Contains(AllRoles, role)
}

type ctxKey struct{}

// WithAccount stores the caller on ctx. Services never read it; handlers pass
// the account id explicitly.
func WithAccount(ctx context.Context, a Account) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

func AccountFromCtx(ctx context.Context) (Account, bool) {
	a, ok := ctx.Value(ctxKey{}).(Account)
	return a, ok
}
