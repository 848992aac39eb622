package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	contractx "github.com/spinlab/coach/agent/contract"
	"github.com/spinlab/coach/agent/store"
)

const (
	teamPeriodDays    = 30
	teamSpinDays      = 90
	teamSessionLimit  = 2000
	teamChallengeRows = 500

	rankByAverage  = "average_score"
	rankBySessions = "sessions"
)

// requireManager checks the caller's current role in the database. The
// catalog already hides team tools from sellers; this runs regardless.
func (d *Dispatcher) requireManager(ctx context.Context, caller *contractx.Caller) (contractx.Role, error) {
	role := caller.Role
	if caller.EmployeeID != "" {
		emp, err := d.data.GetEmployee(ctx, caller.CompanyID, caller.EmployeeID)
		if err != nil {
			return "", err
		}
		parsed, ok := contractx.ParseRole(emp.Role)
		if !ok {
			return "", fmt.Errorf("%w: unknown role %q", contractx.ErrForbidden, emp.Role)
		}
		role = parsed
	}
	if !role.IsManager() {
		return "", fmt.Errorf("%w: role %q", contractx.ErrForbidden, role)
	}
	return role, nil
}

type memberStat struct {
	employee store.Employee
	sessions int
	scored   int
	sum      float64
	spinSum  SpinAverages
	last     time.Time
}

func (m *memberStat) average() *float64 {
	if m.scored == 0 {
		return nil
	}
	avg := round(m.sum/float64(m.scored), 1)
	return &avg
}

// memberStats loads every employee of the company with their session
// activity since the given time, ordered by name.
func (d *Dispatcher) memberStats(ctx context.Context, companyID string, since time.Time, evaluatedOnly bool) ([]*memberStat, error) {
	employees, err := d.data.ListEmployees(ctx, companyID)
	if err != nil {
		return nil, err
	}
	sessions, err := d.data.ListSessions(ctx, store.SessionQuery{
		CompanyID:     companyID,
		EvaluatedOnly: evaluatedOnly,
		Since:         since,
		Limit:         teamSessionLimit,
	})
	if err != nil {
		return nil, err
	}

	stats := make([]*memberStat, 0, len(employees))
	byUser := make(map[string]*memberStat, len(employees))
	for _, e := range employees {
		st := &memberStat{employee: e}
		stats = append(stats, st)
		byUser[e.UserID] = st
	}
	for _, s := range sessions {
		st, ok := byUser[s.UserID]
		if !ok {
			continue
		}
		st.sessions++
		if s.CreatedAt.After(st.last) {
			st.last = s.CreatedAt
		}
		if s.Evaluation != nil {
			st.scored++
			st.sum += d.policy.Normalize(s.Evaluation.OverallScore)
			st.spinSum = addSpin(st.spinSum, d.policy.normalizeSpin(s.Evaluation.Spin))
		}
	}
	sort.SliceStable(stats, func(i, j int) bool { return stats[i].employee.Name < stats[j].employee.Name })
	return stats, nil
}

func (d *Dispatcher) teamOverview(ctx context.Context, caller *contractx.Caller, _ json.RawMessage) (Payload, error) {
	if _, err := d.requireManager(ctx, caller); err != nil {
		return nil, err
	}
	since := d.today().AddDate(0, 0, -teamPeriodDays)
	stats, err := d.memberStats(ctx, caller.CompanyID, since, false)
	if err != nil {
		return nil, err
	}

	out := TeamOverviewPayload{
		TeamSize:   len(stats),
		PeriodDays: teamPeriodDays,
		Members:    make([]MemberSummary, 0, len(stats)),
	}
	var sum float64
	var scored int
	for _, st := range stats {
		if st.sessions > 0 {
			out.ActiveMembers++
		}
		out.TotalSessions += st.sessions
		sum += st.sum
		scored += st.scored

		m := MemberSummary{
			EmployeeID:   st.employee.ID,
			Name:         st.employee.Name,
			Role:         st.employee.Role,
			Sessions:     st.sessions,
			AverageScore: st.average(),
		}
		if !st.last.IsZero() {
			m.LastActivity = formatDate(st.last.In(d.loc))
		}
		out.Members = append(out.Members, m)
	}
	if scored > 0 {
		avg := round(sum/float64(scored), 1)
		out.TeamAverage = &avg
	}
	return out, nil
}

type rankingArgs struct {
	Metric string   `json:"metric"`
	Limit  looseInt `json:"limit"`
}

func (d *Dispatcher) teamRanking(ctx context.Context, caller *contractx.Caller, raw json.RawMessage) (Payload, error) {
	if _, err := d.requireManager(ctx, caller); err != nil {
		return nil, err
	}
	args, err := decodeArgs[rankingArgs](raw)
	if err != nil {
		return nil, err
	}
	metric := args.Metric
	switch metric {
	case "":
		metric = rankByAverage
	case rankByAverage, rankBySessions:
	default:
		return nil, validation("metric deve ser average_score ou sessions")
	}

	since := d.today().AddDate(0, 0, -teamPeriodDays)
	stats, err := d.memberStats(ctx, caller.CompanyID, since, false)
	if err != nil {
		return nil, err
	}

	ranked := make([]*memberStat, 0, len(stats))
	for _, st := range stats {
		if metric == rankByAverage && st.scored == 0 {
			continue
		}
		ranked = append(ranked, st)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if metric == rankByAverage {
			av, bv := *a.average(), *b.average()
			if av != bv {
				return av > bv
			}
		}
		return a.sessions > b.sessions
	})

	limit := clampLimit(args.Limit, defaultListLimit, maxListLimit)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	out := TeamRankingPayload{Metric: metric, Total: len(ranked), Ranking: make([]RankingEntry, 0, len(ranked))}
	for i, st := range ranked {
		out.Ranking = append(out.Ranking, RankingEntry{
			Position:     i + 1,
			EmployeeID:   st.employee.ID,
			Name:         st.employee.Name,
			Sessions:     st.sessions,
			AverageScore: st.average(),
		})
	}
	return out, nil
}

type employeeArgs struct {
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
}

func (d *Dispatcher) employeePerformance(ctx context.Context, caller *contractx.Caller, raw json.RawMessage) (Payload, error) {
	if _, err := d.requireManager(ctx, caller); err != nil {
		return nil, err
	}
	args, err := decodeArgs[employeeArgs](raw)
	if err != nil {
		return nil, err
	}
	// fall back to the employee open on the caller's screen
	if args.EmployeeID == "" && args.EmployeeName == "" {
		args.EmployeeID = caller.Viewing.EmployeeID
		args.EmployeeName = caller.Viewing.EmployeeName
	}

	var emp *store.Employee
	switch {
	case args.EmployeeID != "":
		if emp, err = d.data.GetEmployee(ctx, caller.CompanyID, args.EmployeeID); err != nil {
			return nil, err
		}
	case strings.TrimSpace(args.EmployeeName) != "":
		matches, err := d.data.FindEmployeesByName(ctx, caller.CompanyID, args.EmployeeName)
		if err != nil {
			return nil, err
		}
		emp = pickEmployee(matches, args.EmployeeName)
		if emp == nil && len(matches) > 1 {
			out := EmployeePerformancePayload{Message: "Mais de um colaborador encontrado. Informe employee_id."}
			for i := range matches {
				out.Candidates = append(out.Candidates, colleagueItem(&matches[i]))
			}
			return out, nil
		}
		if emp == nil {
			return nil, fmt.Errorf("%w: colaborador %q", contractx.ErrNotFound, args.EmployeeName)
		}
	default:
		return nil, validation("informe employee_id ou employee_name")
	}

	perf, err := d.resolvePerformance(ctx, caller.CompanyID, emp.UserID)
	if err != nil {
		return nil, err
	}
	item := colleagueItem(emp)
	out := EmployeePerformancePayload{Employee: &item}
	switch p := perf.(type) {
	case PerformanceSummaryPayload:
		out.Performance = &p
	case NoPerformancePayload:
		out.Message = p.Message
	}
	return out, nil
}

// pickEmployee returns the single match, or the exact case-insensitive
// name match among several.
func pickEmployee(matches []store.Employee, name string) *store.Employee {
	if len(matches) == 1 {
		return &matches[0]
	}
	for i := range matches {
		if strings.EqualFold(strings.TrimSpace(matches[i].Name), strings.TrimSpace(name)) {
			return &matches[i]
		}
	}
	return nil
}

func (d *Dispatcher) teamSpinAverages(ctx context.Context, caller *contractx.Caller, _ json.RawMessage) (Payload, error) {
	if _, err := d.requireManager(ctx, caller); err != nil {
		return nil, err
	}
	since := d.today().AddDate(0, 0, -teamSpinDays)
	stats, err := d.memberStats(ctx, caller.CompanyID, since, true)
	if err != nil {
		return nil, err
	}

	out := TeamSpinPayload{PerMember: make([]MemberSpin, 0, len(stats))}
	var sum SpinAverages
	for _, st := range stats {
		if st.scored == 0 {
			continue
		}
		out.Sessions += st.scored
		sum = addSpin(sum, st.spinSum)
		out.PerMember = append(out.PerMember, MemberSpin{
			EmployeeID: st.employee.ID,
			Name:       st.employee.Name,
			Sessions:   st.scored,
			Spin:       divideSpin(st.spinSum, st.scored),
		})
	}
	if out.Sessions > 0 {
		out.Averages = divideSpin(sum, out.Sessions)
		_, out.Weakest = spinExtremes(out.Averages)
	}
	return out, nil
}

type teamChallengesArgs struct {
	Date   string `json:"date"`
	Status string `json:"status"`
}

func (d *Dispatcher) teamChallenges(ctx context.Context, caller *contractx.Caller, raw json.RawMessage) (Payload, error) {
	if _, err := d.requireManager(ctx, caller); err != nil {
		return nil, err
	}
	args, err := decodeArgs[teamChallengesArgs](raw)
	if err != nil {
		return nil, err
	}
	day := d.today()
	if args.Date != "" {
		if day, err = parseDate(args.Date, d.loc); err != nil {
			return nil, err
		}
	}

	rows, err := d.data.ListChallenges(ctx, store.ChallengeQuery{
		CompanyID: caller.CompanyID,
		Status:    args.Status,
		Date:      day,
		Limit:     teamChallengeRows,
	})
	if err != nil {
		return nil, err
	}
	employees, err := d.data.ListEmployees(ctx, caller.CompanyID)
	if err != nil {
		return nil, err
	}
	byUser := make(map[string]*store.Employee, len(employees))
	for i := range employees {
		byUser[employees[i].UserID] = &employees[i]
	}

	out := TeamChallengesPayload{Date: formatDate(day), Total: len(rows), Challenges: make([]TeamChallengeItem, 0, len(rows))}
	for _, c := range rows {
		switch c.Status {
		case challengeCompleted:
			out.Completed++
		case challengePending:
			out.Pending++
		}
		item := TeamChallengeItem{Title: c.Title, Status: c.Status}
		if e, ok := byUser[c.UserID]; ok {
			item.EmployeeID, item.Name = e.ID, e.Name
		}
		if c.ResultScore != nil {
			score := round(d.policy.Normalize(*c.ResultScore), 1)
			item.ResultScore = &score
		}
		out.Challenges = append(out.Challenges, item)
	}
	return out, nil
}

type roleArgs struct {
	EmployeeID string `json:"employee_id"`
	Role       string `json:"role"`
}

func (d *Dispatcher) updateEmployeeRole(ctx context.Context, caller *contractx.Caller, raw json.RawMessage) (Payload, error) {
	callerRole, err := d.requireManager(ctx, caller)
	if err != nil {
		return nil, err
	}
	args, err := decodeArgs[roleArgs](raw)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(args.EmployeeID) == "" {
		return nil, validation("employee_id é obrigatório")
	}
	role, ok := contractx.ParseRole(args.Role)
	if !ok {
		return nil, validation("role deve ser vendedor, gestor ou admin")
	}

	emp, err := d.data.GetEmployee(ctx, caller.CompanyID, args.EmployeeID)
	if err != nil {
		return nil, err
	}
	if emp.UserID == caller.UserID || emp.ID == caller.EmployeeID {
		return nil, validation("não é possível alterar o próprio papel")
	}
	current, _ := contractx.ParseRole(emp.Role)
	// managers below admin cannot grant admin or touch existing admins
	if callerRole != contractx.RoleAdmin && (role == contractx.RoleAdmin || current == contractx.RoleAdmin) {
		return nil, fmt.Errorf("%w: only admins manage admin roles", contractx.ErrForbidden)
	}

	out := RoleUpdatePayload{Success: true, EmployeeID: emp.ID, Name: emp.Name, Role: string(role)}
	if current == role {
		out.Message = fmt.Sprintf("%s já possui o papel %s", emp.Name, role)
		return out, nil
	}
	if err := d.data.UpdateEmployeeRole(ctx, caller.CompanyID, emp.ID, role); err != nil {
		return nil, err
	}
	out.Message = fmt.Sprintf("Papel de %s alterado para %s", emp.Name, role)
	return out, nil
}
