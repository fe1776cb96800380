package query

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"comms-metrics-backend/internal/model"
)

// RowLimit caps every failure detail query.
const RowLimit = 1000

var (
	identifierRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

	DefaultStartTime = model.TimeOfDay{Hour: 0, Minute: 0, Second: 0}
	DefaultEndTime   = model.TimeOfDay{Hour: 23, Minute: 59, Second: 59}
)

var failureColumns = []string{
	"timestamp", "tenantId", "dealerId", "eventSubType",
	"eventMessage", "errorMessage", "origin", "metadata",
}

// Query is SQL text with positional $n bind variables and their values.
type Query struct {
	Text string
	Args []any
}

type Builder struct {
	table        string
	loc          *time.Location
	now          func() time.Time
	defaultStart model.TimeOfDay
	defaultEnd   model.TimeOfDay
}

type Option func(*Builder)

func WithLocation(loc *time.Location) Option {
	return func(b *Builder) {
		if loc != nil {
			b.loc = loc
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		if now != nil {
			b.now = now
		}
	}
}

func WithDefaultWindow(start, end model.TimeOfDay) Option {
	return func(b *Builder) {
		b.defaultStart = start
		b.defaultEnd = end
	}
}

// NewBuilder validates the table identifier once so that building a query
// never fails afterwards.
func NewBuilder(table string, opts ...Option) (*Builder, error) {
	if !identifierRegex.MatchString(table) {
		return nil, fmt.Errorf("invalid table name: %q", table)
	}
	b := &Builder{
		table:        table,
		loc:          time.UTC,
		now:          time.Now,
		defaultStart: DefaultStartTime,
		defaultEnd:   DefaultEndTime,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

func (b *Builder) Table() string {
	return b.table
}

func (b *Builder) Location() *time.Location {
	return b.loc
}

// Now is the builder clock's current instant in the builder's location.
func (b *Builder) Now() time.Time {
	return b.now().In(b.loc)
}

// Window resolves the filter's date/time bounds, filling gaps with the
// current calendar month and the default daily window.
func (b *Builder) Window(f model.Filter) (time.Time, time.Time) {
	now := b.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, b.loc)
	monthEnd := monthStart.AddDate(0, 1, -1)

	startDate, endDate := f.StartDate, f.EndDate
	if startDate.IsZero() {
		startDate = monthStart
	}
	if endDate.IsZero() {
		endDate = monthEnd
	}
	startTime, endTime := b.defaultStart, b.defaultEnd
	if f.StartTime != nil {
		startTime = *f.StartTime
	}
	if f.EndTime != nil {
		endTime = *f.EndTime
	}
	return startTime.On(startDate, b.loc), endTime.On(endDate, b.loc)
}

// BuildQuery returns the failure detail query for category, newest first.
func (b *Builder) BuildQuery(category model.FailureCategory, f model.Filter) Query {
	w := b.newWhere(f)
	for _, c := range PredicatesFor(category).Clauses() {
		w.add(c)
	}
	w.addScope(f.TenantID, f.DealerID)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("SELECT %s FROM %s WHERE %s", strings.Join(failureColumns, ", "), b.table, w.sql()))
	sb.WriteString(fmt.Sprintf(" ORDER BY %s DESC LIMIT %d", colTimestamp, RowLimit))
	return Query{Text: sb.String(), Args: w.args}
}

// BuildAggregateQuery counts events per (tenant, dealer, provider).
func (b *Builder) BuildAggregateQuery(tenantID, dealerID string, f model.Filter) Query {
	w := b.newWhere(f)
	w.addScope(tenantID, dealerID)
	if f.ProviderType != "" && f.ProviderType != model.ProviderAll {
		w.add(Clause{Column: colProviderType, Op: "=", Value: string(f.ProviderType)})
	}

	groupCols := strings.Join([]string{colTenantID, colDealerID, colProviderType}, ", ")
	text := fmt.Sprintf("SELECT %s, COUNT(*) AS count FROM %s WHERE %s GROUP BY %s",
		groupCols, b.table, w.sql(), groupCols)
	return Query{Text: text, Args: w.args}
}

type where struct {
	clauses []string
	args    []any
}

func (b *Builder) newWhere(f model.Filter) *where {
	start, end := b.Window(f)
	w := &where{}
	w.add(Clause{Column: colTimestamp, Op: ">=", Value: start.Unix()})
	w.add(Clause{Column: colTimestamp, Op: "<=", Value: end.Unix()})
	return w
}

func (w *where) add(c Clause) {
	if c.Value == nil {
		w.clauses = append(w.clauses, fmt.Sprintf("%s %s", c.Column, c.Op))
		return
	}
	w.args = append(w.args, c.Value)
	w.clauses = append(w.clauses, fmt.Sprintf("%s %s $%d", c.Column, c.Op, len(w.args)))
}

// addScope treats empty and whitespace-only ids as absent.
func (w *where) addScope(tenantID, dealerID string) {
	if t := strings.TrimSpace(tenantID); t != "" {
		w.add(Clause{Column: colTenantID, Op: "=", Value: t})
	}
	if d := strings.TrimSpace(dealerID); d != "" {
		w.add(Clause{Column: colDealerID, Op: "=", Value: d})
	}
}

func (w *where) sql() string {
	return strings.Join(w.clauses, " AND ")
}
