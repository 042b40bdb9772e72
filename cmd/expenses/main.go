package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"expenses/internal/amqp"
	"expenses/internal/cli"
	"expenses/internal/config"
	"expenses/internal/log"
	"expenses/internal/services"
	"expenses/internal/store"
	"expenses/internal/store/csvstore"
	"expenses/internal/store/memory"
)

const usage = `Usage:
  expenses [flags]                              interactive menu
  expenses [flags] add <name> <category> <amount>
  expenses [flags] summary [-chart out.png]

Flags:
`

func main() {
	os.Exit(run())
}

func run() int {
	cli.LoadEnvFile()

	fs := flag.NewFlagSet("expenses", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usage)
		fs.PrintDefaults()
	}
	file := fs.String("file", "", "expense file (overrides EXPENSES_FILE)")
	budgetFlag := fs.String("budget", "", "monthly budget (overrides MONTHLY_BUDGET)")
	dryRun := fs.Bool("dry-run", false, "keep expenses in memory, nothing is written")
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	// Logs go to stderr so they never interleave with prompts.
	cfg, logger := cli.LoadAndValidateConfig(os.Stderr, func(c *config.Config) error {
		if *file != "" {
			c.ExpensesFile = *file
		}
		if *budgetFlag != "" {
			c.MonthlyBudget = *budgetFlag
		}
		return c.Validate()
	})
	logger = logger.WithComponent(log.ComponentCLI)

	table, err := config.LoadBudgetTable(cfg.BudgetsFile)
	if err != nil {
		logger.Error("Failed to load budget table",
			log.FieldPath, cfg.BudgetsFile,
			log.FieldErrorType, log.ErrorTypeConfiguration,
			log.FieldError, err)
		return 1
	}
	budget, haveBudget, err := cfg.Budget()
	if err != nil {
		logger.Error("Invalid monthly budget",
			log.FieldErrorType, log.ErrorTypeConfiguration,
			log.FieldError, err)
		return 1
	}

	ctx := context.Background()

	var st store.Store
	if *dryRun {
		st = memory.New()
		logger.Info("Dry run, expenses stay in memory")
	} else {
		st = csvstore.New(cfg.ExpensesFile,
			csvstore.WithReadCache(cfg.ReadCacheTTL),
			csvstore.WithLogger(logger.WithComponent(log.ComponentStorage)))
	}

	opts := []services.Option{services.WithLogger(logger.WithComponent(log.ComponentExpense))}
	if cfg.PublishingEnabled() && !*dryRun {
		client, err := amqp.NewClient(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger.WithComponent(log.ComponentAMQP))
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without publishing",
				log.FieldErrorType, log.ErrorTypeNetwork,
				log.FieldError, err)
		} else {
			defer client.Close()
			opts = append(opts, services.WithPublisher(client))
		}
	}
	svc := services.NewExpenseService(st, table, opts...)

	a := &app{svc: svc, out: os.Stdout, errOut: os.Stderr, now: time.Now}

	args := fs.Args()
	if len(args) == 0 {
		if err := a.runInteractive(ctx, cli.NewPrompter(os.Stdin, os.Stdout), budget, haveBudget); err != nil {
			fmt.Fprintf(os.Stderr, "expenses: %v\n", err)
			return 1
		}
		return 0
	}

	switch args[0] {
	case "add":
		err = a.runAdd(ctx, args[1:])
	case "summary":
		sfs := flag.NewFlagSet("summary", flag.ContinueOnError)
		chart := sfs.String("chart", "", "write a PNG bar chart of category spending to this path")
		if err := sfs.Parse(args[1:]); err != nil {
			return 2
		}
		if !haveBudget {
			err = errors.New("monthly budget required: set MONTHLY_BUDGET or pass -budget")
			break
		}
		err = a.runSummary(ctx, budget, *chart)
	default:
		fs.Usage()
		return 2
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "expenses: %v\n", err)
		return 1
	}
	return 0
}
