package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/guptarohit/asciigraph"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/san-kum/physim/internal/config"
	"github.com/san-kum/physim/internal/ecs"
	"github.com/san-kum/physim/internal/metrics"
	"github.com/san-kum/physim/internal/scenario"
	"github.com/san-kum/physim/internal/simd"
	"github.com/san-kum/physim/internal/storage"
)

var (
	configFile string
	dt         float64
	steps      int
	integrator string
	bodies     int
	seed       int64
	sequential bool
	csvPath    string
	plot       bool
	profiling  bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "physim",
		Short: "ECS physics simulation engine",
	}

	runCmd := &cobra.Command{
		Use:   "run [scenario]",
		Short: "run a simulation scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "yaml configuration file")
	runCmd.Flags().Float64Var(&dt, "dt", 0, "timestep (overrides config)")
	runCmd.Flags().IntVar(&steps, "steps", 0, "step count (overrides config)")
	runCmd.Flags().StringVar(&integrator, "integrator", "", "verlet or rk4")
	runCmd.Flags().IntVar(&bodies, "bodies", 0, "body count for generated scenarios")
	runCmd.Flags().Int64Var(&seed, "seed", 0, "random seed for generated scenarios")
	runCmd.Flags().BoolVar(&sequential, "sequential", false, "strict sequential stage execution")
	runCmd.Flags().StringVar(&csvPath, "csv", "", "write per-step diagnostics to a CSV file")
	runCmd.Flags().BoolVar(&plot, "plot", false, "print an ascii plot of total energy")
	runCmd.Flags().BoolVar(&profiling, "profile", false, "write a CPU profile for this run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list available scenarios",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(strings.Join(scenario.Names(), "\n"))
		},
	}

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "validate a configuration file and its timestep",
		RunE:  validateConfig,
	}
	validateCmd.Flags().StringVar(&configFile, "config", "", "yaml configuration file")

	backendCmd := &cobra.Command{
		Use:   "backend",
		Short: "show the selected bulk-update backend and run a demo sweep",
		Run:   showBackend,
	}

	rootCmd.AddCommand(runCmd, listCmd, validateCmd, backendCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if dt > 0 {
		cfg.Dt = dt
	}
	if steps > 0 {
		cfg.Steps = steps
	}
	if integrator != "" {
		cfg.Integrator = integrator
	}
	if bodies > 0 {
		cfg.Bodies = bodies
	}
	if seed != 0 {
		cfg.Seed = seed
	}
	if sequential {
		cfg.Sequential = true
	}
	if cfg.Backend == "scalar" {
		simd.SetBackend(simd.Scalar())
	}
	return cfg, cfg.Validate()
}

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.Scenario = args[0]

	build, err := scenario.Get(cfg.Scenario)
	if err != nil {
		return err
	}
	eng, err := build(cfg)
	if err != nil {
		return err
	}

	if err := eng.Integrator().ValidateTimestep(); err != nil {
		fmt.Fprintf(os.Stderr, "timestep advisory: %v\n", err)
	}

	if profiling {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	}

	rec := storage.NewRecorder()
	energySeries := make([]float64, 0, cfg.Steps)
	eng.AddObserver(func(step int, t float64, w *ecs.World) {
		ents := w.Entities()
		ke := metrics.Kinetic(w, ents)
		pe := metrics.GravitationalPotential(w, ents, cfg.Gravity.G, cfg.Gravity.Softening)
		energySeries = append(energySeries, ke+pe)
		if csvPath != "" {
			positions := make([]ecs.Vec3, 0, len(ents))
			for _, e := range ents {
				if p, ok := w.Positions.Get(e); ok {
					positions = append(positions, p)
				}
			}
			rec.Record(storage.Sample{Step: step, Time: t, Kinetic: ke, Potential: pe, Positions: positions})
		}
	})

	if err := eng.Run(context.Background(), cfg.Steps); err != nil {
		return err
	}

	fmt.Printf("scenario %s: %d bodies, %d steps, t=%.4f (%s)\n",
		cfg.Scenario, eng.World().EntityCount(), eng.Steps(), eng.Time(), eng.Integrator().Name())
	if n := len(energySeries); n > 0 {
		fmt.Printf("energy: initial %.6e final %.6e\n", energySeries[0], energySeries[n-1])
	}

	if plot && len(energySeries) > 1 {
		fmt.Println(asciigraph.Plot(energySeries,
			asciigraph.Height(12),
			asciigraph.Caption("total energy")))
	}

	if csvPath != "" {
		if err := rec.WriteCSV(csvPath); err != nil {
			return err
		}
		fmt.Printf("wrote %d samples to %s\n", rec.Len(), csvPath)
	}
	return nil
}

// showBackend reports the CPU feature pick and drives one bulk update over a
// structure-of-arrays store so the vector path is observable end to end.
func showBackend(cmd *cobra.Command, args []string) {
	b := simd.Select()
	fmt.Printf("backend: %s (width %d)\n", b.Name(), b.Width())
	fmt.Printf("avx2: %v  avx512: %v\n", simd.HasAVX2(), simd.HasAVX512())

	positions := ecs.NewVec3SoAStore()
	velocities := ecs.NewVec3SoAStore()
	accels := ecs.NewVec3SoAStore()
	reg := ecs.NewRegistry()
	for i := 0; i < 1000; i++ {
		e := reg.Create()
		positions.Insert(e, ecs.Vec3{X: float64(i)})
		velocities.Insert(e, ecs.Vec3{X: 1})
		accels.Insert(e, ecs.Vec3{Y: -9.81})
	}

	px, py, pz := positions.FieldArraysMut()
	vx, vy, vz := velocities.FieldArraysMut()
	ax, ay, az := accels.FieldArrays()
	const dt = 0.01
	simd.UpdatePositionsSoA(px, py, pz, vx, vy, vz, ax, ay, az, dt)
	simd.UpdateVelocitiesSoA(vx, vy, vz, ax, ay, az, dt)

	fmt.Printf("demo: advanced %d bodies one step; body0 at (%.4f, %.6f)\n", positions.Len(), px[0], py[0])
}

func validateConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	integ, err := scenario.NewIntegrator(cfg)
	if err != nil {
		return err
	}
	if err := integ.ValidateTimestep(); err != nil {
		fmt.Printf("timestep advisory: %v\n", err)
	} else {
		fmt.Printf("timestep %g ok\n", integ.Timestep())
	}
	fmt.Println("configuration valid")
	return nil
}
