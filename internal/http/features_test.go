package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"

	"finweb/internal/api"
	"finweb/internal/core"
)

// scenario is the per-scenario state shared by the step definitions.
type scenario struct {
	env *testEnv
	rec *httptest.ResponseRecorder
}

type scenarioKey struct{}

func scenarioFrom(ctx context.Context) *scenario {
	sc, _ := ctx.Value(scenarioKey{}).(*scenario)
	return sc
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		Name:                "finweb",
		ScenarioInitializer: initializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"../../features"},
			Strict:   true,
			TestingT: t,
		},
	}
	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}

func initializeScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		gw := &stubGateway{}
		sc := &scenario{env: &testEnv{gw: gw, server: newTestServer(gw, nil)}}
		return context.WithValue(ctx, scenarioKey{}, sc), nil
	})
	ctx.After(func(ctx context.Context, _ *godog.Scenario, err error) (context.Context, error) {
		if sc := scenarioFrom(ctx); sc != nil {
			sc.env.server.rateLimiter.Stop()
		}
		return ctx, err
	})

	ctx.Step(`^the backend has categories:$`, theBackendHasCategories)
	ctx.Step(`^the backend has expenses:$`, theBackendHasExpenses)
	ctx.Step(`^the backend fails to list expenses$`, theBackendFailsToListExpenses)
	ctx.Step(`^the backend generates (\d+) instances$`, theBackendGeneratesInstances)
	ctx.Step(`^the backend refuses to delete categories with "([^"]*)"$`, theBackendRefusesToDelete)
	ctx.Step(`^I am logged in as "([^"]*)"$`, iAmLoggedInAs)

	ctx.Step(`^I submit the expense form with:$`, iSubmitTheExpenseForm)
	ctx.Step(`^I open the expenses panel for "([^"]*)"$`, iOpenTheExpensesPanel)
	ctx.Step(`^I generate all recurring expenses$`, iGenerateAll)
	ctx.Step(`^I generate recurring expense (\d+)$`, iGenerateOne)
	ctx.Step(`^I delete category (\d+)$`, iDeleteCategory)

	ctx.Step(`^the response status should be (\d+)$`, theResponseStatusShouldBe)
	ctx.Step(`^the response should contain "([^"]*)"$`, theResponseShouldContain)
	ctx.Step(`^the "([^"]*)" event should fire$`, theEventShouldFire)
	ctx.Step(`^no event should fire$`, noEventShouldFire)
	ctx.Step(`^the backend should have received (\d+) expenses?$`, theBackendShouldHaveReceived)
}

// tableRows maps each data row onto the header row.
func tableRows(table *godog.Table) []map[string]string {
	if len(table.Rows) == 0 {
		return nil
	}
	header := table.Rows[0].Cells
	var out []map[string]string
	for _, row := range table.Rows[1:] {
		m := make(map[string]string, len(header))
		for i, cell := range row.Cells {
			m[header[i].Value] = cell.Value
		}
		out = append(out, m)
	}
	return out
}

func theBackendHasCategories(ctx context.Context, table *godog.Table) error {
	sc := scenarioFrom(ctx)
	for _, row := range tableRows(table) {
		id, err := strconv.ParseInt(row["id"], 10, 64)
		if err != nil {
			return fmt.Errorf("category id %q: %w", row["id"], err)
		}
		sc.env.gw.categories = append(sc.env.gw.categories, core.Category{
			ID:     id,
			Name:   row["name"],
			Type:   core.CategoryType(row["type"]),
			Color:  row["color"],
			Active: row["active"] == "true",
		})
	}
	return nil
}

func theBackendHasExpenses(ctx context.Context, table *godog.Table) error {
	sc := scenarioFrom(ctx)
	for i, row := range tableRows(table) {
		d, err := core.ParseDate(row["date"])
		if err != nil {
			return err
		}
		amt, err := decimal.NewFromString(row["amount"])
		if err != nil {
			return err
		}
		catID, err := strconv.ParseInt(row["categoryId"], 10, 64)
		if err != nil {
			return err
		}
		sc.env.gw.expenses = append(sc.env.gw.expenses, core.Expense{
			ID:          int64(i + 1),
			Date:        d,
			Amount:      amt,
			CategoryID:  catID,
			Description: row["description"],
		})
	}
	return nil
}

func theBackendFailsToListExpenses(ctx context.Context) error {
	scenarioFrom(ctx).env.gw.listErr = &api.Error{Kind: api.KindNetwork, Op: "GET /expenses", Err: errors.New("connection refused")}
	return nil
}

func theBackendGeneratesInstances(ctx context.Context, n int) error {
	scenarioFrom(ctx).env.gw.genResult = core.GenerationResult{Success: true, Count: n}
	return nil
}

func theBackendRefusesToDelete(ctx context.Context, msg string) error {
	scenarioFrom(ctx).env.gw.deleteErr = &api.Error{Kind: api.KindApplication, Op: "DELETE /category", Status: http.StatusOK, Message: msg}
	return nil
}

func iAmLoggedInAs(ctx context.Context, email string) error {
	return scenarioFrom(ctx).env.loginAs(email)
}

func iSubmitTheExpenseForm(ctx context.Context, table *godog.Table) error {
	form := url.Values{}
	for _, row := range table.Rows {
		if len(row.Cells) != 2 {
			return fmt.Errorf("expected key/value rows, got %d cells", len(row.Cells))
		}
		form.Set(row.Cells[0].Value, row.Cells[1].Value)
	}
	sc := scenarioFrom(ctx)
	sc.rec = sc.env.do(http.MethodPost, "/expenses", form.Encode(), true)
	return nil
}

func iOpenTheExpensesPanel(ctx context.Context, month string) error {
	sc := scenarioFrom(ctx)
	sc.rec = sc.env.do(http.MethodGet, "/ui/expenses?month="+url.QueryEscape(month), "", true)
	return nil
}

func iGenerateAll(ctx context.Context) error {
	sc := scenarioFrom(ctx)
	sc.rec = sc.env.do(http.MethodPost, "/recurring/generate-all", "", true)
	return nil
}

func iGenerateOne(ctx context.Context, id int) error {
	sc := scenarioFrom(ctx)
	sc.rec = sc.env.do(http.MethodPost, fmt.Sprintf("/recurring/%d/generate", id), "", true)
	return nil
}

func iDeleteCategory(ctx context.Context, id int) error {
	sc := scenarioFrom(ctx)
	sc.rec = sc.env.do(http.MethodDelete, fmt.Sprintf("/categories/%d", id), "", true)
	return nil
}

func theResponseStatusShouldBe(ctx context.Context, code int) error {
	sc := scenarioFrom(ctx)
	if sc.rec == nil {
		return errors.New("no request was sent")
	}
	if sc.rec.Code != code {
		return fmt.Errorf("expected status %d, got %d: %s", code, sc.rec.Code, sc.rec.Body.String())
	}
	return nil
}

func theResponseShouldContain(ctx context.Context, text string) error {
	sc := scenarioFrom(ctx)
	if sc.rec == nil {
		return errors.New("no request was sent")
	}
	if !strings.Contains(sc.rec.Body.String(), text) {
		return fmt.Errorf("expected response to contain %q, got: %s", text, sc.rec.Body.String())
	}
	return nil
}

func theEventShouldFire(ctx context.Context, event string) error {
	trigger := scenarioFrom(ctx).rec.Header().Get("HX-Trigger")
	if !strings.Contains(trigger, `"`+event+`"`) {
		return fmt.Errorf("expected HX-Trigger to include %q, got %q", event, trigger)
	}
	return nil
}

func noEventShouldFire(ctx context.Context) error {
	if trigger := scenarioFrom(ctx).rec.Header().Get("HX-Trigger"); trigger != "" {
		return fmt.Errorf("expected no HX-Trigger, got %q", trigger)
	}
	return nil
}

func theBackendShouldHaveReceived(ctx context.Context, n int) error {
	if got := scenarioFrom(ctx).env.gw.count("CreateExpense"); got != n {
		return fmt.Errorf("expected %d CreateExpense call(s), got %d", n, got)
	}
	return nil
}
