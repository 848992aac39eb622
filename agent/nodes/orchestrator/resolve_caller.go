package orchestratornode

import (
	"context"
	"fmt"

	contractx "github.com/spinlab/coach/agent/contract"
	logx "github.com/spinlab/coach/pkg/logger"
)

// ResolveCaller loads the employee identity every tool call is scoped by.
func ResolveCaller(ctx context.Context, in *GraphState, resolver contractx.CallerResolver) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	caller, err := resolver.ResolveCaller(ctx, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("resolve caller: %w", err)
	}
	if caller == nil || caller.CompanyID == "" {
		return nil, contractx.ErrNoTenant
	}

	scoped := *caller
	scoped.Viewing = in.Viewing
	in.Caller = &scoped

	logx.From(ctx).Debug().
		Str("employee_id", scoped.EmployeeID).
		Str("company_id", scoped.CompanyID).
		Str("role", string(scoped.Role)).
		Msg("caller resolved")
	return in, nil
}
