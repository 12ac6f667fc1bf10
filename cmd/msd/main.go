package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/spinsim/msd/internal/analysis"
	"github.com/spinsim/msd/internal/config"
	"github.com/spinsim/msd/internal/export"
	"github.com/spinsim/msd/internal/molecule"
	"github.com/spinsim/msd/internal/msd"
	"github.com/spinsim/msd/internal/stats"
	"github.com/spinsim/msd/internal/storage"
	"github.com/spinsim/msd/internal/tui"
)

var (
	dataDir    string
	configFile string
	preset     string
	paramsFile string

	sweeps    uint64
	freq      uint64
	seed      int64
	runs      int
	randomize bool
	model     string

	// Sweep series
	coupling string
	from     float64
	to       float64
	points   int
	sweepOut string

	// Live view
	tickSteps uint64

	// Molecule tool
	molKind  string
	molNodes int
	outFile  string

	// Chart export
	chartWidth  int
	chartHeight int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "msd",
		Short: "Monte Carlo simulation of a molecular spintronic device",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".msd", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the simulation and store the trajectory",
		RunE:  runSimulation,
	}
	addSetupFlags(runCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep one coupling and report equilibrium observables",
		RunE:  runSweep,
	}
	addSetupFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&coupling, "coupling", "kT", "coupling to sweep (kT, B_x, B_y, B_z)")
	sweepCmd.Flags().Float64Var(&from, "from", 0.05, "first value")
	sweepCmd.Flags().Float64Var(&to, "to", 1.0, "last value")
	sweepCmd.Flags().IntVar(&points, "points", 20, "number of points")
	sweepCmd.Flags().StringVar(&sweepOut, "csv", "", "also write the table to a CSV file")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "watch the simulation in the terminal",
		RunE:  runLive,
	}
	addSetupFlags(liveCmd)
	liveCmd.Flags().Uint64Var(&tickSteps, "tick-steps", 2000, "Monte Carlo steps per frame")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored trajectory",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	reportCmd := &cobra.Command{
		Use:   "report [run_id]",
		Short: "equilibrium statistics of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  reportRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print run metadata as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "print the whole run as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSONRun,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render a stored trajectory as an svg chart",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVGRun,
	}
	exportSVGCmd.Flags().StringVar(&outFile, "out", "run.svg", "output file")
	exportSVGCmd.Flags().IntVar(&chartWidth, "width", 800, "chart width")
	exportSVGCmd.Flags().IntVar(&chartHeight, "height", 300, "per-chart height")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available device presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
			return nil
		},
	}

	molCmd := &cobra.Command{
		Use:   "mol",
		Short: "build and inspect molecule files",
	}
	molNewCmd := &cobra.Command{
		Use:   "new",
		Short: "write a molecule file",
		RunE:  molNew,
	}
	molNewCmd.Flags().StringVar(&molKind, "kind", "linear", "molecule kind (linear, ring)")
	molNewCmd.Flags().IntVar(&molNodes, "nodes", 3, "number of nodes")
	molNewCmd.Flags().StringVar(&outFile, "out", "molecule.mmb", "output file")
	molNewCmd.Flags().StringVar(&paramsFile, "params", "", "coupling sheet baked into nodes and edges")
	molInfoCmd := &cobra.Command{
		Use:   "info [file]",
		Short: "describe a molecule file",
		Args:  cobra.ExactArgs(1),
		RunE:  molInfo,
	}
	molCmd.AddCommand(molNewCmd, molInfoCmd)

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "measure Monte Carlo throughput",
		RunE:  benchThroughput,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency and correlation analysis of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	rootCmd.AddCommand(runCmd, sweepCmd, liveCmd, listCmd, plotCmd, reportCmd,
		exportCmd, exportJSONCmd, exportSVGCmd, presetsCmd, molCmd, benchCmd, analyzeCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSetupFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use a device preset")
	cmd.Flags().StringVar(&paramsFile, "params", "", "coupling sheet path")
	cmd.Flags().Uint64Var(&sweeps, "sweeps", 0, "Monte Carlo steps")
	cmd.Flags().Uint64Var(&freq, "freq", 0, "steps between snapshots")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 picks one)")
	cmd.Flags().IntVar(&runs, "runs", 0, "independent replicas")
	cmd.Flags().BoolVar(&randomize, "randomize", true, "scatter the initial state")
	cmd.Flags().StringVar(&model, "model", "", "spin model (continuous, up_down)")
}

// loadSetup merges preset, config file, coupling sheet and flags, in
// that order of increasing precedence.
func loadSetup(cmd *cobra.Command) (*config.Config, *config.ParamSet, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		c := *p
		cfg = &c
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("sweeps") {
		cfg.Simulation.Sweeps = sweeps
	}
	if cmd.Flags().Changed("freq") {
		cfg.Simulation.RecordEvery = freq
	}
	if cmd.Flags().Changed("seed") {
		cfg.Simulation.Seed = seed
	}
	if cmd.Flags().Changed("runs") {
		cfg.Simulation.Runs = runs
	}
	if cmd.Flags().Changed("randomize") {
		cfg.Simulation.Randomize = randomize
	}
	if cmd.Flags().Changed("model") {
		cfg.Simulation.Model = model
	}
	if cmd.Flags().Changed("params") {
		cfg.ParamsFile = paramsFile
	}
	if cfg.Simulation.Runs < 1 {
		cfg.Simulation.Runs = 1
	}
	if cfg.Simulation.Model == "" {
		cfg.Simulation.Model = "continuous"
	}

	set := &config.ParamSet{Params: msd.DefaultParameters()}
	if cfg.ParamsFile != "" {
		loaded, err := config.LoadParams(cfg.ParamsFile)
		if err != nil {
			return nil, nil, err
		}
		set = loaded
	}
	for _, key := range set.Unknown {
		fmt.Fprintf(os.Stderr, "warning: ignoring unknown coupling %q\n", key)
	}
	return cfg, set, nil
}

// buildEngine assembles one ready-to-run engine from the merged setup.
func buildEngine(cfg *config.Config, set *config.ParamSet) (*msd.Engine, error) {
	lat := msd.New(cfg.Geometry.Geometry())
	lat.SetParameters(set.Params)

	proto, err := cfg.Molecule.Build(set.Params)
	if err != nil {
		return nil, err
	}
	if proto != nil {
		if err := lat.EmbedMolecule(proto); err != nil {
			return nil, err
		}
	}

	flip, err := cfg.Simulation.Flip()
	if err != nil {
		return nil, err
	}
	engine := msd.NewEngine(lat, msd.EngineConfig{Seed: cfg.Simulation.Seed, Flip: flip})
	if cfg.Simulation.Randomize {
		engine.Randomize(false)
	}
	applySpinSeeds(lat, set.Spins)
	return engine, nil
}

// applySpinSeeds rescales seeded sites to the requested norm, keeping
// their direction.
func applySpinSeeds(lat *msd.Lattice, seeds []config.SpinSeed) {
	for _, s := range seeds {
		a := lat.Index(s.X, s.Y, s.Z)
		spin, err := lat.Spin(a)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: no site at [%d %d %d], skipping spin seed\n", s.X, s.Y, s.Z)
			continue
		}
		if err := lat.SetSpin(a, spin.WithNorm(s.Norm)); err != nil {
			fmt.Fprintf(os.Stderr, "warning: spin seed [%d %d %d]: %v\n", s.X, s.Y, s.Z, err)
		}
	}
}

// withFinal ensures the record ends on the final state without
// duplicating a snapshot that already landed on it.
func withFinal(record []msd.Results, final msd.Results) []msd.Results {
	if len(record) > 0 && record[len(record)-1] == final {
		return record
	}
	return append(record, final)
}

func summarize(record []msd.Results, kT float64, n int) map[string]float64 {
	summary := map[string]float64{}
	if u, err := stats.MeanEnergy(record, msd.RegionAll); err == nil {
		summary["mean_energy"] = u
	}
	summary["specific_heat"] = stats.SpecificHeat(record, msd.RegionAll, kT, n)
	if m, err := stats.MeanMag(record, stats.MagTotal, msd.RegionAll); err == nil {
		summary["mean_M_x"] = m.X
		summary["mean_M_y"] = m.Y
		summary["mean_M_z"] = m.Z
	}
	if chi, err := stats.Susceptibility(record, msd.RegionAll, kT, n); err == nil {
		summary["susceptibility"] = chi
	}
	return summary
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, set, err := loadSetup(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	sim := cfg.Simulation
	meta := storage.RunMetadata{
		Model:       sim.Model,
		Sweeps:      sim.Sweeps,
		RecordEvery: sim.RecordEvery,
		Geometry:    cfg.Geometry.Geometry(),
		Params:      set.Params,
	}

	fmt.Printf("running %d replica(s), %d steps each...\n", sim.Runs, sim.Sweeps)
	start := time.Now()

	type finished struct {
		seed    int64
		record  []msd.Results
		n       int
		summary map[string]float64
	}
	var done []finished

	if sim.Runs == 1 {
		engine, err := buildEngine(cfg, set)
		if err != nil {
			return err
		}
		engine.MetropolisRecord(sim.Sweeps, sim.RecordEvery)
		lat := engine.Lattice()
		record := withFinal(engine.Record(), lat.Results())
		done = append(done, finished{
			seed:   engine.Seed(),
			record: record,
			n:      lat.Counts().N,
		})
	} else {
		if len(set.Spins) > 0 {
			fmt.Fprintln(os.Stderr, "warning: spin seeds are ignored for multi-replica runs")
		}
		flip, err := cfg.Simulation.Flip()
		if err != nil {
			return err
		}
		proto, err := cfg.Molecule.Build(set.Params)
		if err != nil {
			return err
		}
		ens := msd.NewEnsemble(msd.EnsembleConfig{
			Geometry:    cfg.Geometry.Geometry(),
			Params:      set.Params,
			Molecule:    proto,
			Randomize:   sim.Randomize,
			Sweeps:      sim.Sweeps,
			RecordEvery: sim.RecordEvery,
			NumRuns:     sim.Runs,
			SeedStart:   sim.Seed,
			Flip:        flip,
		})
		results, err := ens.Run(context.Background())
		if err != nil {
			return err
		}
		n := msd.New(cfg.Geometry.Geometry()).Counts().N
		for _, r := range results {
			record := withFinal(r.Record, r.Final)
			done = append(done, finished{seed: r.Seed, record: record, n: n})
		}
	}

	elapsed := time.Since(start)
	fmt.Printf("completed in %v\n\n", elapsed)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tSEED\t<U>\tC\t<M_z>\tCHI")
	for i := range done {
		d := &done[i]
		d.summary = summarize(d.record, set.Params.KT, d.n)
		fmt.Fprintf(w, "%d\t%d\t%.6f\t%.6f\t%.6f\t%.6f\n",
			i, d.seed,
			d.summary["mean_energy"], d.summary["specific_heat"],
			d.summary["mean_M_z"], d.summary["susceptibility"])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	for _, d := range done {
		meta.Seed = d.seed
		meta.Summary = d.summary
		runID, err := st.Save(meta, d.record)
		if err != nil {
			return err
		}
		fmt.Printf("saved %s (%d snapshots)\n", runID, len(d.record))
	}
	return nil
}

// setCoupling writes one sweepable coupling into p.
func setCoupling(p *msd.Parameters, name string, v float64) error {
	switch name {
	case "kT":
		p.KT = v
	case "B_x":
		p.B.X = v
	case "B_y":
		p.B.Y = v
	case "B_z":
		p.B.Z = v
	default:
		return fmt.Errorf("cannot sweep %q (try kT, B_x, B_y, B_z)", name)
	}
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, set, err := loadSetup(cmd)
	if err != nil {
		return err
	}
	if points < 2 {
		return fmt.Errorf("need at least 2 points, got %d", points)
	}

	sim := cfg.Simulation
	fmt.Printf("sweeping %s from %g to %g over %d points (%d steps each)\n\n",
		coupling, from, to, points, sim.Sweeps)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t<U>\tC\t|<M>|\tCHI\n", coupling)

	heats := make([]float64, 0, points)
	mags := make([]float64, 0, points)
	rows := make([][]string, 0, points+1)
	rows = append(rows, []string{coupling, "mean_U", "specific_heat", "mean_M", "susceptibility"})
	for i := 0; i < points; i++ {
		v := from + (to-from)*float64(i)/float64(points-1)
		pointSet := *set
		if err := setCoupling(&pointSet.Params, coupling, v); err != nil {
			return err
		}

		engine, err := buildEngine(cfg, &pointSet)
		if err != nil {
			return err
		}
		engine.MetropolisRecord(sim.Sweeps, sim.RecordEvery)
		lat := engine.Lattice()
		record := withFinal(engine.Record(), lat.Results())

		kT := pointSet.Params.KT
		n := lat.Counts().N
		meanU, _ := stats.MeanEnergy(record, msd.RegionAll)
		heat := stats.SpecificHeat(record, msd.RegionAll, kT, n)
		meanM, _ := stats.MeanMag(record, stats.MagTotal, msd.RegionAll)
		chi, _ := stats.Susceptibility(record, msd.RegionAll, kT, n)

		heats = append(heats, heat)
		mags = append(mags, meanM.Norm())
		fmt.Fprintf(w, "%.4f\t%.6f\t%.6f\t%.6f\t%.6f\n", v, meanU, heat, meanM.Norm(), chi)
		rows = append(rows, []string{
			strconv.FormatFloat(v, 'g', -1, 64),
			strconv.FormatFloat(meanU, 'g', -1, 64),
			strconv.FormatFloat(heat, 'g', -1, 64),
			strconv.FormatFloat(meanM.Norm(), 'g', -1, 64),
			strconv.FormatFloat(chi, 'g', -1, 64),
		})
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if sweepOut != "" {
		f, err := os.Create(sweepOut)
		if err != nil {
			return err
		}
		cw := csv.NewWriter(f)
		if err := cw.WriteAll(rows); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Printf("\nwrote %s\n", sweepOut)
	}

	fmt.Println()
	fmt.Println(asciigraph.Plot(heats, asciigraph.Height(10), asciigraph.Width(70),
		asciigraph.Caption(fmt.Sprintf("specific heat vs %s", coupling))))
	fmt.Println()
	fmt.Println(asciigraph.Plot(mags, asciigraph.Height(10), asciigraph.Width(70),
		asciigraph.Caption(fmt.Sprintf("|<M>| vs %s", coupling))))
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, set, err := loadSetup(cmd)
	if err != nil {
		return err
	}
	engine, err := buildEngine(cfg, set)
	if err != nil {
		return err
	}
	return tui.Run(engine, tickSteps)
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tSTEPS\tSEED\tkT\tSIZE")
	for _, run := range runs {
		g := run.Geometry
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.3f\t%dx%dx%d\n",
			run.ID,
			run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Sweeps,
			run.Seed,
			run.Params.KT,
			g.Width, g.Height, g.Depth,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	record, err := st.LoadRecord(runID)
	if err != nil {
		return err
	}
	if len(record) < 2 {
		return fmt.Errorf("not enough snapshots to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("snapshots: %d\n\n", len(record))

	type trace struct {
		caption string
		value   func(r msd.Results) float64
	}
	traces := []trace{
		{"total energy U", func(r msd.Results) float64 { return r.U }},
		{"molecule energy Um", func(r msd.Results) float64 { return r.Um }},
		{"|M|", func(r msd.Results) float64 { return r.M.Norm() }},
		{"M_z", func(r msd.Results) float64 { return r.M.Z }},
		{"|Mm|", func(r msd.Results) float64 { return r.Mm.Norm() }},
	}
	for _, tr := range traces {
		data := make([]float64, len(record))
		for i, snap := range record {
			data[i] = tr.value(snap)
		}
		fmt.Println(asciigraph.Plot(data,
			asciigraph.Height(10), asciigraph.Width(80),
			asciigraph.Caption(tr.caption)))
		fmt.Println()
	}
	return nil
}

func reportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	record, err := st.LoadRecord(runID)
	if err != nil {
		return err
	}

	lat := msd.New(meta.Geometry)
	counts := lat.Counts()
	kT := meta.Params.KT

	fmt.Printf("run: %s  (kT=%.4f, %d snapshots)\n\n", meta.ID, kT, len(record))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "REGION\tSITES\t<U>\tC\t<M_z>\tCHI")
	for _, reg := range []msd.Region{msd.RegionAll, msd.RegionL, msd.RegionR, msd.RegionM} {
		n := counts.Of(reg)
		meanU, err := stats.MeanEnergy(record, reg)
		if err != nil {
			return err
		}
		heat := stats.SpecificHeat(record, reg, kT, n)
		meanM, err := stats.MeanMag(record, stats.MagTotal, reg)
		if err != nil {
			return err
		}
		chi, err := stats.Susceptibility(record, reg, kT, n)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%v\t%d\t%.6f\t%.6f\t%.6f\t%.6f\n", reg, n, meanU, heat, meanM.Z, chi)
	}
	for _, reg := range []msd.Region{msd.RegionML, msd.RegionMR, msd.RegionLR} {
		meanU, err := stats.MeanEnergy(record, reg)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%v\t-\t%.6f\t-\t-\t-\n", reg, meanU)
	}
	return w.Flush()
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportJSONRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	record, err := st.LoadRecord(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSONStdout(*meta, record)
}

func exportSVGRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	record, err := st.LoadRecord(args[0])
	if err != nil {
		return err
	}
	if err := export.WriteChart(outFile, record, chartWidth, chartHeight); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outFile)
	return nil
}

func molNew(cmd *cobra.Command, args []string) error {
	params := msd.DefaultParameters()
	if paramsFile != "" {
		set, err := config.LoadParams(paramsFile)
		if err != nil {
			return err
		}
		params = set.Params
	}

	proto, err := config.MoleculeConfig{Kind: molKind, Nodes: molNodes}.Build(params)
	if err != nil {
		return err
	}
	if proto == nil {
		return fmt.Errorf("kind is required")
	}

	data, err := proto.MarshalBinary()
	if err != nil {
		return err
	}
	if err := os.WriteFile(outFile, data, 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d nodes, %d edges, %d bytes)\n", outFile, proto.Nodes(), proto.Edges(), len(data))
	return nil
}

func molInfo(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	proto := new(molecule.Prototype)
	if err := proto.UnmarshalBinary(data); err != nil {
		return err
	}

	left, right := proto.Leads()
	fmt.Printf("nodes: %d\nedges: %d\nleads: %d (left), %d (right)\n\n", proto.Nodes(), proto.Edges(), left, right)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NODE\tSm\tFm\tJe0m\tAm")
	for i := 0; i < proto.Nodes(); i++ {
		node, err := proto.Node(i)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%d\t%g\t%g\t%g\t(%g %g %g)\n",
			i, node.Sm, node.Fm, node.Je0m, node.Am.X, node.Am.Y, node.Am.Z)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "EDGE\tNODES\tJm\tJe1m\tJeem\tbm\tDm")
	for e := 0; e < proto.Edges(); e++ {
		edge, err := proto.Edge(e)
		if err != nil {
			return err
		}
		a, b, err := proto.Endpoints(e)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%d\t%d-%d\t%g\t%g\t%g\t%g\t(%g %g %g)\n",
			e, a, b, edge.Jm, edge.Je1m, edge.Jeem, edge.Bqm, edge.Dm.X, edge.Dm.Y, edge.Dm.Z)
	}
	return w.Flush()
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	record, err := st.LoadRecord(runID)
	if err != nil {
		return err
	}
	if len(record) < 4 {
		return fmt.Errorf("not enough snapshots to analyze (%d)", len(record))
	}

	mz := make([]float64, len(record))
	energy := make([]float64, len(record))
	for i, snap := range record {
		mz[i] = snap.M.Z
		energy[i] = snap.U
	}

	fmt.Printf("run: %s  (%d snapshots, %d steps apart)\n\n", meta.ID, len(record), meta.RecordEvery)

	ps := analysis.Spectrum(mz)
	plotData := ps[:len(ps)/2]
	fmt.Println(asciigraph.Plot(plotData,
		asciigraph.Height(12), asciigraph.Width(80),
		asciigraph.Caption("M_z magnitude spectrum")))
	fmt.Println()

	if bin := analysis.DominantBin(ps); bin > 0 {
		period := float64(len(record)) / float64(bin) * float64(meta.RecordEvery)
		fmt.Printf("dominant M_z period: %.0f steps\n", period)
	} else {
		fmt.Println("no dominant M_z frequency")
	}

	tauM := analysis.IntegratedTime(mz)
	tauU := analysis.IntegratedTime(energy)
	fmt.Printf("autocorrelation time: M_z %.1f snapshots, U %.1f snapshots\n", tauM, tauU)
	if tau := max(tauM, tauU); tau > 2 {
		fmt.Printf("snapshots are correlated; consider freq >= %.0f\n", tau*float64(meta.RecordEvery))
	}
	return nil
}

func benchThroughput(cmd *cobra.Command, args []string) error {
	sizes := []int{5, 11, 17}
	const steps = 200_000

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SIZE\tSITES\tSTEPS\tTIME\tSTEPS/SEC")
	for _, size := range sizes {
		lat := msd.New(msd.FullGeometry(size, size, size))
		engine := msd.NewEngine(lat, msd.EngineConfig{Seed: 42})
		engine.Randomize(false)

		start := time.Now()
		engine.Metropolis(steps)
		elapsed := time.Since(start)

		fmt.Fprintf(w, "%dx%dx%d\t%d\t%d\t%v\t%s\n",
			size, size, size, lat.Counts().N, steps, elapsed.Round(time.Millisecond),
			strconv.FormatFloat(float64(steps)/elapsed.Seconds(), 'f', 0, 64))
	}
	return w.Flush()
}
