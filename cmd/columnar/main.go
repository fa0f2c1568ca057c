package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"math/rand/v2"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/paveg/columnar"
	"github.com/paveg/columnar/internal/array"
	"github.com/paveg/columnar/internal/config"
	"github.com/paveg/columnar/internal/monitoring"
	"github.com/paveg/columnar/internal/version"
)

func customUsage(w io.Writer) func() {
	return func() {
		fmt.Fprintf(w, "Columnar compute CLI (version %s)\n\n", version.Version)
		fmt.Fprintf(w, "Usage: columnar [options]\n\n")
		fmt.Fprintf(w, "Options:\n")
		fmt.Fprintf(w, "  --demo\n\t\tBuild a sample employee table, filter and sort it\n")
		fmt.Fprintf(w, "  --benchmark\n\t\tBenchmark sequential and parallel sorts\n")
		fmt.Fprintf(w, "  --rows N\n\t\tNumber of rows to use (default: 1000 for demo, 1000000 for benchmark)\n")
		fmt.Fprintf(w, "  --sort KEYS\n\t\tDemo sort keys, each COLUMN or COLUMN:desc (default: department,salary:desc)\n")
		fmt.Fprintf(w, "  --nulls-last\n\t\tPlace nulls after valid values\n")
		fmt.Fprintf(w, "  --limit N\n\t\tNumber of demo rows to print (default: 10)\n")
		fmt.Fprintf(w, "  --config FILE\n\t\tLoad configuration from a JSON or YAML file (default: %s* environment variables)\n", config.EnvPrefix)
		fmt.Fprintf(w, "  --metrics\n\t\tPrint a kernel metrics summary to stderr\n")
		fmt.Fprintf(w, "  --verbose\n\t\tLog kernel activity to stderr\n")
		fmt.Fprintf(w, "  -v, --version\n\t\tPrint version information and exit\n")
		fmt.Fprintf(w, "  -h, --help\n\t\tShow this help message and exit\n")
	}
}

// options holds the parsed command line.
type options struct {
	demo       bool
	benchmark  bool
	rows       int
	sort       string
	nullsLast  bool
	limit      int
	configFile string
	metrics    bool
	verbose    bool
	version    bool
}

var errUsage = errors.New("usage")

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("columnar", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = customUsage(stderr)

	fs.BoolVar(&opts.version, "v", false, "Print version and exit")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit") // alias
	fs.BoolVar(&opts.demo, "demo", false, "Run the demo")
	fs.BoolVar(&opts.benchmark, "benchmark", false, "Benchmark sorts")
	fs.IntVar(&opts.rows, "rows", 0, "Number of rows to use")
	fs.StringVar(&opts.sort, "sort", "department,salary:desc", "Demo sort keys")
	fs.BoolVar(&opts.nullsLast, "nulls-last", false, "Place nulls after valid values")
	fs.IntVar(&opts.limit, "limit", 10, "Number of demo rows to print")
	fs.StringVar(&opts.configFile, "config", "", "Configuration file")
	fs.BoolVar(&opts.metrics, "metrics", false, "Print a metrics summary")
	fs.BoolVar(&opts.verbose, "verbose", false, "Log kernel activity")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() > 0 || (!opts.version && !opts.demo && !opts.benchmark) {
		fs.Usage()
		return opts, errUsage
	}
	return opts, nil
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) && !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "columnar: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	if opts.version {
		fmt.Fprint(stdout, version.Info().String())
		return nil
	}

	cfg := config.LoadFromEnv()
	if opts.configFile != "" {
		if cfg, err = config.LoadFromFile(opts.configFile); err != nil {
			return err
		}
	}
	if opts.nullsLast {
		cfg.DefaultNullsFirst = false
	}
	cfg.MetricsCollection = cfg.MetricsCollection || opts.metrics
	if opts.verbose {
		columnar.SetLogger(columnar.NewTextLogger(slog.LevelDebug))
	}
	if err := columnar.Configure(cfg); err != nil {
		return err
	}

	switch {
	case opts.demo:
		err = runDemo(ctx, stdout, opts)
	case opts.benchmark:
		err = runBenchmark(ctx, stdout, opts.rows)
	}
	if err != nil {
		return err
	}

	if opts.metrics {
		printSummary(stderr, columnar.MetricsSummary())
	}
	return nil
}

const (
	baseAge            = 25
	ageRange           = 40
	baseSalary         = 40000
	salaryIncrement    = 1000
	salaryRange        = 60
	ageFilterThreshold = 35 // keep employees older than this age
)

// employees builds a sample table. Every seventh age is null.
func employees(rows int) (*columnar.Table, error) {
	depts := []string{"Engineering", "Sales", "Marketing", "HR", "Finance"}

	names := make([]string, rows)
	ages := make([]int64, rows)
	ageValid := make([]bool, rows)
	salaries := make([]float64, rows)
	departments := make([]string, rows)
	for i := range rows {
		names[i] = fmt.Sprintf("Employee_%d", i+1)
		ages[i] = int64(baseAge + (i % ageRange))
		ageValid[i] = i%7 != 6
		salaries[i] = float64(baseSalary + (i%salaryRange)*salaryIncrement)
		departments[i] = depts[i%len(depts)]
	}

	dept, err := columnar.DictionaryEncode(array.Utf8From[int32](departments, nil))
	if err != nil {
		return nil, err
	}
	return columnar.NewTable(
		columnar.Column{Name: "name", Values: array.Utf8From[int32](names, nil)},
		columnar.Column{Name: "age", Values: array.PrimitiveFrom(arrow.PrimitiveTypes.Int64, ages, ageValid)},
		columnar.Column{Name: "salary", Values: array.PrimitiveFrom(arrow.PrimitiveTypes.Float64, salaries, nil)},
		columnar.Column{Name: "department", Values: dept},
	)
}

// olderThan keeps the rows whose age is valid and above threshold.
func olderThan(t *columnar.Table, threshold int64) (*columnar.Table, error) {
	col, _ := t.Column("age")
	ages, ok := col.(*array.Primitive[int64])
	if !ok {
		return nil, fmt.Errorf("age column has type %s", col.DataType())
	}

	mask := make([]bool, ages.Len())
	for i := range mask {
		mask[i] = ages.IsValid(i) && ages.Value(i) > threshold
	}
	filter := array.BooleanFrom(mask, nil)

	out := make([]columnar.Column, 0, t.Width())
	for _, name := range t.Columns() {
		values, _ := t.Column(name)
		filtered, err := columnar.Filter(values, filter)
		if err != nil {
			return nil, err
		}
		out = append(out, columnar.Column{Name: name, Values: filtered})
	}
	return columnar.NewTable(out...)
}

func runDemo(ctx context.Context, w io.Writer, opts options) error {
	rows := opts.rows
	if rows == 0 {
		rows = 1000
	}

	table, err := employees(rows)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, table)
	fmt.Fprintln(w)

	if table, err = olderThan(table, ageFilterThreshold); err != nil {
		return err
	}
	fmt.Fprintf(w, "Employees older than %d: %d\n", ageFilterThreshold, table.Len())

	keys, err := parseSortKeys(opts.sort)
	if err != nil {
		return err
	}
	if table, err = columnar.SortTable(ctx, table, opts.limit, keys...); err != nil {
		return err
	}
	fmt.Fprintf(w, "Sorted by %s:\n\n", opts.sort)
	return table.Format(w, -1)
}

// parseSortKeys parses "a,b:desc,c:asc".
func parseSortKeys(arg string) ([]columnar.SortKey, error) {
	var keys []columnar.SortKey
	for _, part := range strings.Split(arg, ",") {
		name, dir, _ := strings.Cut(strings.TrimSpace(part), ":")
		if name == "" {
			return nil, fmt.Errorf("empty sort key in %q", arg)
		}
		switch strings.ToLower(dir) {
		case "", "asc":
			keys = append(keys, columnar.Asc(name))
		case "desc":
			keys = append(keys, columnar.Desc(name))
		default:
			return nil, fmt.Errorf("unknown sort direction %q for column %s", dir, name)
		}
	}
	return keys, nil
}

func printSummary(w io.Writer, s monitoring.MetricsSummary) {
	fmt.Fprintf(w, "operations: %d (failed %d)\n", s.TotalOperations, s.Failures)
	fmt.Fprintf(w, "elements:   %d\n", s.TotalElements)
	fmt.Fprintf(w, "duration:   %s (avg %s)\n", s.TotalDuration, s.AverageDuration)
	for _, kernel := range slices.Sorted(maps.Keys(s.Kernels)) {
		k := s.Kernels[kernel]
		fmt.Fprintf(w, "  %-26s calls=%d failed=%d parallel=%d elements=%d duration=%s\n",
			kernel, k.Calls, k.Failures, k.ParallelCalls, k.Elements, k.Duration)
	}
}

func runBenchmark(ctx context.Context, w io.Writer, rows int) error {
	if rows == 0 {
		rows = 1_000_000
	}
	fmt.Fprintf(w, "Benchmarking sorts over %d rows\n", rows)

	rng := rand.New(rand.NewPCG(uint64(rows), 42)) //nolint:gosec // benchmark data
	values := make([]int64, rows)
	valid := make([]bool, rows)
	for i := range values {
		values[i] = rng.Int64()
		valid[i] = rng.IntN(100) != 0
	}

	start := time.Now()
	input := array.PrimitiveFrom(arrow.PrimitiveTypes.Int64, values, valid)
	fmt.Fprintf(w, "Array creation:  %s\n", time.Since(start))

	opts := columnar.DefaultSortOptions()

	start = time.Now()
	if _, err := columnar.Sort(input, opts, columnar.NoLimit); err != nil {
		return err
	}
	fmt.Fprintf(w, "Sequential sort: %s\n", time.Since(start))

	start = time.Now()
	if _, err := columnar.ParallelSort(ctx, input, opts, columnar.NoLimit); err != nil {
		return err
	}
	fmt.Fprintf(w, "Parallel sort:   %s\n", time.Since(start))

	start = time.Now()
	if _, err := columnar.ParallelSort(ctx, input, opts, 100); err != nil {
		return err
	}
	fmt.Fprintf(w, "Top-100 sort:    %s\n", time.Since(start))
	return nil
}
