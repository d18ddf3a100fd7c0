package filter

import (
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"

	"github.com/steamlytics/steamglass/internal/domain"
)

// exprEnv is built once; compiled programs are cheap after that.
var exprEnv *cel.Env

func init() {
	env, err := cel.NewEnv(
		cel.Variable("customer_id", cel.StringType),
		cel.Variable("region", cel.StringType),
		cel.Variable("continent", cel.StringType),
		cel.Variable("genre", cel.StringType),
		cel.Variable("publisher", cel.StringType),
		cel.Variable("age_group", cel.StringType),
		cel.Variable("churn_risk", cel.StringType),
		cel.Variable("year_month", cel.StringType),
		cel.Variable("net_revenue", cel.DoubleType),
		cel.Variable("playtime_hours", cel.DoubleType),
		cel.Variable("games_purchased", cel.IntType),
		cel.Variable("avg_game_price", cel.DoubleType),
		cel.Variable("discount_pct", cel.DoubleType),
		cel.Variable("retention_days", cel.DoubleType),
	)
	if err != nil {
		panic(fmt.Sprintf("filter: failed to create CEL environment: %v", err))
	}
	exprEnv = env
}

// ExprFilter is a compiled CEL predicate over a single transaction.
type ExprFilter struct {
	source  string
	program cel.Program
}

// CompileExpr compiles a CEL expression such as
// `net_revenue > 50.0 && genre == "RPG"`. The expression must yield bool.
func CompileExpr(expression string) (*ExprFilter, error) {
	ast, issues := exprEnv.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("failed to compile expression: %w", issues.Err())
	}
	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("expression must return bool, got %s", ast.OutputType())
	}
	program, err := exprEnv.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create program: %w", err)
	}
	return &ExprFilter{source: expression, program: program}, nil
}

// Match evaluates the predicate against one transaction.
func (f *ExprFilter) Match(tx domain.Transaction) (bool, error) {
	out, _, err := f.program.Eval(map[string]any{
		"customer_id":     tx.CustomerID,
		"region":          tx.Region,
		"continent":       tx.Continent,
		"genre":           tx.Genre,
		"publisher":       tx.Publisher,
		"age_group":       tx.AgeGroup,
		"churn_risk":      tx.ChurnRisk,
		"year_month":      tx.YearMonth,
		"net_revenue":     tx.NetRevenue,
		"playtime_hours":  tx.PlaytimeHours,
		"games_purchased": tx.GamesPurchased,
		"avg_game_price":  tx.AvgGamePrice,
		"discount_pct":    tx.DiscountPct,
		"retention_days":  tx.RetentionDays,
	})
	if err != nil {
		return false, fmt.Errorf("evaluation error: %w", err)
	}
	b, ok := out.(types.Bool)
	if !ok {
		return false, fmt.Errorf("expression %q did not yield bool", f.source)
	}
	return bool(b), nil
}

// Apply keeps the transactions matching the predicate.
func (f *ExprFilter) Apply(txs []domain.Transaction) ([]domain.Transaction, error) {
	out := make([]domain.Transaction, 0, len(txs))
	for _, tx := range txs {
		ok, err := f.Match(tx)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, tx)
		}
	}
	return out, nil
}
