package main

import (
	"fmt"
	"math"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/diffgrid/internal/analysis"
	"github.com/san-kum/diffgrid/internal/config"
	"github.com/san-kum/diffgrid/internal/diffusion"
	"github.com/san-kum/diffgrid/internal/experiment"
	"github.com/san-kum/diffgrid/internal/export"
	"github.com/san-kum/diffgrid/internal/operator"
	"github.com/san-kum/diffgrid/internal/stationary"
	"github.com/san-kum/diffgrid/internal/storage"
	"github.com/san-kum/diffgrid/internal/tui"
)

var (
	dataDir    string
	target     float64
	speed      float64
	volatility float64
	gridLength int
	cutoff     float64
	spacing    float64
	loBound    float64
	hiBound    float64
	delta      float64
	configFile string
	preset     string
	saveRun    bool
	// Sweep range
	sweepFrom  float64
	sweepTo    float64
	sweepSteps int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "diffgrid",
		Short: "discretize 1-d diffusions and compute stationary distributions",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".diffgrid", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [process]",
		Short: "solve the stationary distribution of a process",
		Args:  cobra.ExactArgs(1),
		RunE:  runProcess,
	}
	addProcessFlags(runCmd)
	runCmd.Flags().BoolVar(&saveRun, "save", false, "save the run to the data directory")

	generatorCmd := &cobra.Command{
		Use:   "generator [process]",
		Short: "print the generator diagonals",
		Args:  cobra.ExactArgs(1),
		RunE:  showGenerator,
	}
	addProcessFlags(generatorCmd)

	spectrumCmd := &cobra.Command{
		Use:   "spectrum [process]",
		Short: "spectral gap and relaxation time",
		Args:  cobra.ExactArgs(1),
		RunE:  showSpectrum,
	}
	addProcessFlags(spectrumCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep [process] [parameter]",
		Short: "sweep a parameter (target, speed, volatility or delta)",
		Args:  cobra.ExactArgs(2),
		RunE:  runSweep,
	}
	addProcessFlags(sweepCmd)
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", 0.05, "first swept value")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 1.0, "last swept value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 8, "number of swept values")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id] [out.svg]",
		Short: "export a saved density as SVG",
		Args:  cobra.ExactArgs(2),
		RunE:  exportRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [process]",
		Short: "list available presets for a process",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for process: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	exploreCmd := &cobra.Command{
		Use:   "explore",
		Short: "interactive parameter explorer",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(cmd, "ou")
			if err != nil {
				return err
			}
			return tui.Run(cfg)
		},
	}
	addProcessFlags(exploreCmd)

	rootCmd.AddCommand(runCmd, generatorCmd, spectrumCmd, sweepCmd, listCmd, showCmd, exportCmd, presetsCmd, exploreCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addProcessFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&target, "target", 0.0, "long-run mean")
	cmd.Flags().Float64Var(&speed, "speed", 0.1, "mean-reversion speed")
	cmd.Flags().Float64Var(&volatility, "vol", 1.0, "volatility")
	cmd.Flags().IntVar(&gridLength, "length", 100, "grid length")
	cmd.Flags().Float64Var(&cutoff, "cutoff", 1e-4, "tail probability cutoff")
	cmd.Flags().Float64Var(&spacing, "spacing", 0, "grid spacing exponent (cir)")
	cmd.Flags().Float64Var(&loBound, "lo", math.NaN(), "explicit lower grid bound")
	cmd.Flags().Float64Var(&hiBound, "hi", math.NaN(), "explicit upper grid bound")
	cmd.Flags().Float64Var(&delta, "delta", 0, "discount rate (0 = eigenvector solve)")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

// buildConfig merges preset, config file and flags; flags win.
func buildConfig(cmd *cobra.Command, process string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	cfg.Process = process

	if preset != "" {
		p := config.GetPreset(process, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(process))
		}
		*cfg = *p
	}
	if configFile != "" {
		fileCfg, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		*cfg = *fileCfg
		cfg.Process = process
	}

	if cmd.Flags().Changed("target") {
		cfg.Target = target
	}
	if cmd.Flags().Changed("speed") {
		cfg.Speed = speed
	}
	if cmd.Flags().Changed("vol") {
		cfg.Volatility = volatility
	}
	if cmd.Flags().Changed("length") {
		cfg.GridLength = gridLength
	}
	if cmd.Flags().Changed("cutoff") {
		cfg.Cutoff = cutoff
	}
	if cmd.Flags().Changed("spacing") {
		cfg.Spacing = spacing
	}
	if cmd.Flags().Changed("delta") {
		cfg.Delta = delta
	}
	if cmd.Flags().Changed("lo") || cmd.Flags().Changed("hi") {
		if math.IsNaN(loBound) || math.IsNaN(hiBound) {
			return nil, fmt.Errorf("both --lo and --hi are required for explicit bounds")
		}
		cfg.Bounds = &config.BoundsConfig{Lo: loBound, Hi: hiBound}
	}
	return cfg, nil
}

func solve(cfg *config.Config) (*diffusion.Process, *stationary.Result, error) {
	p, err := cfg.BuildProcess()
	if err != nil {
		return nil, nil, err
	}
	var psi []float64
	if cfg.Delta > 0 {
		psi = make([]float64, p.Len())
		for i := range psi {
			psi[i] = 1 / float64(p.Len())
		}
	}
	res, err := stationary.ForProcess(p, cfg.Delta, psi)
	if err != nil {
		return nil, nil, err
	}
	return p, res, nil
}

func runProcess(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}
	p, res, err := solve(cfg)
	if err != nil {
		return err
	}

	m := analysis.DensityMoments(p.X, res.Density)
	fmt.Printf("%s  n=%d  delta=%g\n\n", cfg.Process, p.Len(), cfg.Delta)
	fmt.Println(asciigraph.Plot(res.Density, asciigraph.Width(70), asciigraph.Height(14)))
	fmt.Printf("\nstate range [%.4f, %.4f]\n\n", p.X[0], p.X[p.Len()-1])

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "mean\t%.6f\n", m.Mean)
	fmt.Fprintf(w, "variance\t%.6f\n", m.Variance)
	fmt.Fprintf(w, "stddev\t%.6f\n", m.StdDev)
	fmt.Fprintf(w, "skewness\t%.6f\n", m.Skewness)
	if cfg.Delta == 0 {
		fmt.Fprintf(w, "eigenvalue\t%.3g\n", res.Eigenvalue)
	}
	w.Flush()

	if res.Warning != "" {
		fmt.Printf("\nwarning: %s\n", res.Warning)
	}

	if saveRun {
		gen, err := operator.FromProcess(p)
		if err != nil {
			return err
		}
		store := storage.New(dataDir)
		if err := store.Init(); err != nil {
			return err
		}
		runID, err := store.Save(cfg, p, gen, res)
		if err != nil {
			return err
		}
		fmt.Printf("\nsaved: %s\n", runID)
	}
	return nil
}

func showGenerator(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}
	p, err := cfg.BuildProcess()
	if err != nil {
		return err
	}
	gen, err := operator.FromProcess(p)
	if err != nil {
		return err
	}

	n, _ := gen.Dims()
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "i\tx\tsub\tmain\tsuper")
	for i := 0; i < n; i++ {
		sub, sup := 0.0, 0.0
		if i > 0 {
			sub = gen.At(i, i-1)
		}
		if i < n-1 {
			sup = gen.At(i, i+1)
		}
		fmt.Fprintf(w, "%d\t%.4f\t%.6g\t%.6g\t%.6g\n", i, p.X[i], sub, gen.At(i, i), sup)
	}
	return w.Flush()
}

func showSpectrum(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}
	p, err := cfg.BuildProcess()
	if err != nil {
		return err
	}
	gen, err := operator.FromProcess(p)
	if err != nil {
		return err
	}
	gap, err := analysis.SpectralGap(gen)
	if err != nil {
		return err
	}

	fmt.Printf("%s  n=%d\n", cfg.Process, p.Len())
	fmt.Printf("spectral gap     %.6g\n", gap)
	fmt.Printf("relaxation time  %.6g\n", analysis.RelaxationTime(gap))
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}
	parameter := args[1]
	if sweepSteps < 2 {
		return fmt.Errorf("sweep needs at least 2 steps, got %d", sweepSteps)
	}

	if parameter == "delta" {
		return runDeltaSweep(cfg)
	}

	values := make([]float64, sweepSteps)
	for i := range values {
		values[i] = sweepFrom + (sweepTo-sweepFrom)*float64(i)/float64(sweepSteps-1)
	}

	build := func(v float64) (*diffusion.Process, error) {
		c := *cfg
		switch parameter {
		case "target":
			c.Target = v
		case "speed":
			c.Speed = v
		case "vol", "volatility":
			c.Volatility = v
		default:
			return nil, fmt.Errorf("unknown sweep parameter: %s", parameter)
		}
		return c.BuildProcess()
	}

	points, err := experiment.ParamSweep(build, values, cfg.Delta)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tmean\tvariance\tskewness\n", parameter)
	for _, pt := range points {
		fmt.Fprintf(w, "%.4g\t%.6f\t%.6f\t%.6f\n", pt.Value, pt.Moments.Mean, pt.Moments.Variance, pt.Moments.Skewness)
	}
	return w.Flush()
}

// runDeltaSweep studies convergence of the discounted solve toward the
// eigenvector solution on log-spaced deltas.
func runDeltaSweep(cfg *config.Config) error {
	p, err := cfg.BuildProcess()
	if err != nil {
		return err
	}
	gen, err := operator.FromProcess(p)
	if err != nil {
		return err
	}

	lo, hi := sweepFrom, sweepTo
	if lo <= 0 || hi <= 0 {
		return fmt.Errorf("delta sweep bounds must be positive, got [%g, %g]", lo, hi)
	}
	deltas := make([]float64, sweepSteps)
	for i := range deltas {
		f := float64(i) / float64(sweepSteps-1)
		deltas[i] = lo * math.Pow(hi/lo, f)
	}

	points, err := experiment.DeltaConvergence(gen, deltas)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "delta\ttv distance")
	for _, pt := range points {
		fmt.Fprintf(w, "%.3g\t%.3g\n", pt.Delta, pt.TV)
	}
	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	runs, err := store.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no saved runs")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "id\tprocess\tn\tdelta\tmean\tvariance\twhen")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%g\t%.4f\t%.4f\t%s\n",
			r.ID, r.Process, r.GridLength, r.Delta,
			r.Moments["mean"], r.Moments["variance"],
			r.Timestamp.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	meta, err := store.Load(args[0])
	if err != nil {
		return err
	}
	_, density, err := store.LoadDensity(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("%s  %s  delta=%g\n\n", meta.ID, meta.Process, meta.Delta)
	if len(density) > 1 {
		fmt.Println(asciigraph.Plot(density, asciigraph.Width(70), asciigraph.Height(14)))
		fmt.Println()
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, k := range []string{"mean", "variance", "stddev", "skewness"} {
		fmt.Fprintf(w, "%s\t%.6f\n", k, meta.Moments[k])
	}
	w.Flush()

	if meta.Warning != "" {
		fmt.Printf("\nwarning: %s\n", meta.Warning)
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	x, density, err := store.LoadDensity(args[0])
	if err != nil {
		return err
	}
	svg := export.DensitySVG(x, density, 800, 400, "#00ccff")
	if svg == "" {
		return fmt.Errorf("run %s has no density to export", args[0])
	}
	if err := os.WriteFile(args[1], []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d points)\n", args[1], len(x))
	return nil
}
