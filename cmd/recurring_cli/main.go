// Command recurring_cli triggers one recurring-transaction generation pass and prints what it created.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SscSPs/construction_budget_app/internal/core/domain"
	portssvc "github.com/SscSPs/construction_budget_app/internal/core/ports/services"
	"github.com/SscSPs/construction_budget_app/internal/core/services"
	"github.com/SscSPs/construction_budget_app/internal/dto"
	"github.com/SscSPs/construction_budget_app/internal/platform/config"
	"github.com/SscSPs/construction_budget_app/internal/repositories/database/pgsql"
	"github.com/SscSPs/construction_budget_app/internal/utils/recurrence"
	"github.com/SscSPs/construction_budget_app/pkg/database"
	"github.com/jonboulle/clockwork"
	flag "github.com/spf13/pflag"
)

type options struct {
	today    bool
	month    string
	backlog  bool
	from     string
	to       string
	upcoming int
	catchUp  string
}

func main() {
	var opts options
	flag.BoolVar(&opts.today, "today", false, "generate the current month up to today")
	flag.StringVar(&opts.month, "month", "", "generate a whole month (YYYY-MM)")
	flag.BoolVar(&opts.backlog, "backlog", false, "generate every day between --from and --to")
	flag.StringVar(&opts.from, "from", "", "backlog start date (YYYY-MM-DD), defaults to BACKLOG_DEFAULT_DAYS before today")
	flag.StringVar(&opts.to, "to", "", "backlog end date (YYYY-MM-DD), defaults to today")
	flag.IntVar(&opts.upcoming, "upcoming", -1, "generate from today through the next N days")
	flag.StringVar(&opts.catchUp, "catch-up", "", "generate every missing instance of a project up to today")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(logger)

	if n := opts.modeCount(); n != 1 {
		fmt.Fprintln(os.Stderr, "exactly one of --today, --month, --backlog, --upcoming or --catch-up is required")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, true, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(dbPool, logger)

	clock := clockwork.NewRealClock()
	container := services.NewServiceContainer(cfg, pgsql.NewRepositoryProvider(dbPool), clock)

	if err := run(ctx, os.Stdout, container.Generator, opts, clock.Now(), cfg.BacklogDefaultDays); err != nil {
		// generation problems are reported, not fatal
		logger.Error("Generation finished with errors", slog.String("error", err.Error()))
	}
}

func (o options) modeCount() int {
	n := 0
	for _, set := range []bool{o.today, o.month != "", o.backlog, o.upcoming >= 0, o.catchUp != ""} {
		if set {
			n++
		}
	}
	return n
}

// run executes the selected pass and writes a summary line plus one line per created transaction.
func run(ctx context.Context, out io.Writer, generator portssvc.RecurringGeneratorSvc, opts options, now time.Time, backlogDays int) error {
	today := domain.DateOf(now)

	var (
		report *domain.GenerationReport
		err    error
	)
	switch {
	case opts.today:
		report, err = generator.GenerateMonthToDate(ctx, now)
	case opts.month != "":
		month, perr := recurrence.ParseMonth(opts.month)
		if perr != nil {
			return fmt.Errorf("--month: %w", perr)
		}
		report, err = generator.GenerateForMonth(ctx, month.Year, month.Month)
	case opts.backlog:
		from, to := today.AddDate(0, 0, -backlogDays), today
		if opts.from != "" {
			if from, err = domain.ParseDate(opts.from); err != nil {
				return fmt.Errorf("invalid --from %q: expected YYYY-MM-DD", opts.from)
			}
		}
		if opts.to != "" {
			if to, err = domain.ParseDate(opts.to); err != nil {
				return fmt.Errorf("invalid --to %q: expected YYYY-MM-DD", opts.to)
			}
		}
		report, err = generator.GenerateBacklog(ctx, from, to)
	case opts.upcoming >= 0:
		report, err = generator.GenerateUpcoming(ctx, opts.upcoming)
	case opts.catchUp != "":
		generated, cerr := generator.EnsureCaughtUp(ctx, opts.catchUp)
		fmt.Fprintf(out, "project %s: generated %d transactions\n", opts.catchUp, generated)
		return cerr
	}

	if report != nil {
		printReport(out, report)
	}
	return err
}

func printReport(out io.Writer, report *domain.GenerationReport) {
	fmt.Fprintf(out, "created %d, skipped %d, failed %d\n", len(report.Created), report.SkippedTotal(), report.Failed)
	for _, txn := range report.Created {
		template := ""
		if txn.RecurringTemplateID != nil {
			template = *txn.RecurringTemplateID
		}
		fmt.Fprintf(out, "  %s  %-7s %12s  %s  (template %s)\n",
			dto.FormatDate(txn.TxDate), txn.Kind, txn.Amount.StringFixed(2), txn.Description, template)
	}
}
