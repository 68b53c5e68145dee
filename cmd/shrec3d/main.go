package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gonum.org/v1/gonum/mat"

	"github.com/chromoscope/shrec3d/loader"
	"github.com/chromoscope/shrec3d/pkg/core"
	"github.com/chromoscope/shrec3d/pkg/synth"
)

var (
	cfgFile  string
	logLevel string
	workers  int
	version  = "0.1.0" // Will be set during build
)

func main() {
	cobra.OnInitialize(initConfig)

	rootCmd := &cobra.Command{
		Use:   "shrec3d",
		Short: "ShRec3D - 3D structure reconstruction from contact matrices",
		Long: `ShRec3D reconstructs approximate 3D coordinates for a set of points
from a pairwise contact-frequency matrix, via shortest-path distance
inference followed by classical multidimensional scaling.`,
		Version: version,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.shrec3d.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0, "worker goroutines for distance inference (0 = all CPUs)")

	// Add commands
	rootCmd.AddCommand(reconstructCmd)
	rootCmd.AddCommand(synthesizeCmd)
	rootCmd.AddCommand(roundtripCmd)

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".shrec3d"
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigName(".shrec3d")
	}

	// Read environment variables
	viper.AutomaticEnv()
	viper.SetEnvPrefix("SHREC3D")

	// Read in config
	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}

	if viper.IsSet("log_level") {
		logLevel = viper.GetString("log_level")
	}
	if viper.IsSet("workers") {
		workers = viper.GetInt("workers")
	}
}

// buildLogger creates a zap logger honoring the --log-level flag.
func buildLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(logLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	return cfg.Build()
}

// reconstructCmd runs the full pipeline on a contact matrix from disk.
var reconstructCmd = &cobra.Command{
	Use:   "reconstruct",
	Short: "Reconstruct 3D coordinates from a contact matrix",
	Long: `Reconstruct loads a contact-frequency matrix from CSV, infers all-pairs
distances over the contact graph, embeds them into 3D via classical MDS,
and writes the resulting coordinates to CSV or JSON.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		contactsPath, _ := cmd.Flags().GetString("contacts")
		outPath, _ := cmd.Flags().GetString("out")
		format, _ := cmd.Flags().GetString("format")

		logger, err := buildLogger()
		if err != nil {
			return err
		}
		defer logger.Sync()

		contacts, err := loader.LoadMatrixCSV(contactsPath, logger)
		if err != nil {
			return fmt.Errorf("failed to load contact matrix: %w", err)
		}

		opts := core.DefaultOptions()
		opts.Workers = workers
		opts.Logger = logger
		rec, err := core.New(opts)
		if err != nil {
			return err
		}

		coords, err := rec.Reconstruct(contacts)
		if err != nil {
			return fmt.Errorf("reconstruction failed: %w", err)
		}

		switch format {
		case "json":
			err = loader.SaveCoordinatesJSON(outPath, coords)
		case "csv":
			err = loader.SaveCoordinatesCSV(outPath, coords)
		default:
			return fmt.Errorf("unknown output format %q (want csv or json)", format)
		}
		if err != nil {
			return fmt.Errorf("failed to write coordinates: %w", err)
		}

		n, _ := contacts.Dims()
		logger.Info("reconstruction complete",
			zap.Int("points", n),
			zap.String("output", outPath))
		return nil
	},
}

// synthesizeCmd derives a binary contact matrix from known coordinates.
var synthesizeCmd = &cobra.Command{
	Use:   "synthesize",
	Short: "Derive a contact matrix from known coordinates",
	Long: `Synthesize loads a coordinate matrix from CSV and writes the binary
contact matrix obtained by thresholding pairwise Euclidean distances at
the given epsilon. Useful for building round-trip test fixtures.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		coordsPath, _ := cmd.Flags().GetString("coords")
		outPath, _ := cmd.Flags().GetString("out")
		epsilon, _ := cmd.Flags().GetFloat64("epsilon")

		logger, err := buildLogger()
		if err != nil {
			return err
		}
		defer logger.Sync()

		coords, err := loader.LoadMatrixCSV(coordsPath, logger)
		if err != nil {
			return fmt.Errorf("failed to load coordinates: %w", err)
		}

		contacts, err := synth.Contacts(coords, epsilon)
		if err != nil {
			return fmt.Errorf("synthesis failed: %w", err)
		}

		if err := loader.SaveMatrixCSV(outPath, contacts); err != nil {
			return fmt.Errorf("failed to write contact matrix: %w", err)
		}

		n, _ := coords.Dims()
		logger.Info("contact matrix written",
			zap.Int("points", n),
			zap.Float64("epsilon", epsilon),
			zap.String("output", outPath))
		return nil
	},
}

// roundtripCmd synthesizes contacts from coordinates, reconstructs, and
// reports how well the shape survived.
var roundtripCmd = &cobra.Command{
	Use:   "roundtrip",
	Short: "Measure shape recovery through a synthesize-reconstruct cycle",
	Long: `Roundtrip thresholds known coordinates into a contact matrix, runs the
reconstruction pipeline on it, and prints the RMS difference between the
original and reconstructed pairwise-distance matrices. Without --coords it
uses a built-in 11-point demonstration figure.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		coordsPath, _ := cmd.Flags().GetString("coords")
		epsilon, _ := cmd.Flags().GetFloat64("epsilon")

		logger, err := buildLogger()
		if err != nil {
			return err
		}
		defer logger.Sync()

		var coords *mat.Dense
		if coordsPath == "" {
			coords = demoCoordinates()
			logger.Info("no coordinates given, using built-in demo figure")
		} else {
			coords, err = loader.LoadMatrixCSV(coordsPath, logger)
			if err != nil {
				return fmt.Errorf("failed to load coordinates: %w", err)
			}
		}

		contacts, err := synth.Contacts(coords, epsilon)
		if err != nil {
			return fmt.Errorf("synthesis failed: %w", err)
		}

		opts := core.DefaultOptions()
		opts.Workers = workers
		opts.Logger = logger
		rec, err := core.New(opts)
		if err != nil {
			return err
		}

		reconstructed, err := rec.Reconstruct(contacts)
		if err != nil {
			return fmt.Errorf("reconstruction failed: %w", err)
		}

		rmsErr, err := core.RoundTripError(coords, reconstructed)
		if err != nil {
			return err
		}

		n, _ := coords.Dims()
		fmt.Printf("points: %d  epsilon: %g  rms distance error: %g\n", n, epsilon, rmsErr)
		return nil
	},
}

// demoCoordinates is an 11-point planar figure of two adjoining squares,
// spaced so that epsilon 0.21 connects each point to its grid neighbours.
func demoCoordinates() *mat.Dense {
	return mat.NewDense(11, 3, []float64{
		1.2, 0, 0,
		1.4, 0, 0,
		1.4, 0.2, 0,
		1.4, 0.4, 0,
		1.6, 0, 0,
		1.6, 0.4, 0,
		1.8, 0, 0,
		1.8, 0.4, 0,
		2.0, 0, 0,
		2.0, 0.2, 0,
		2.0, 0.4, 0,
	})
}

func init() {
	reconstructCmd.Flags().String("contacts", "", "path to the contact matrix CSV (required)")
	reconstructCmd.Flags().String("out", "coordinates.csv", "output path for reconstructed coordinates")
	reconstructCmd.Flags().String("format", "csv", "output format: csv or json")
	_ = reconstructCmd.MarkFlagRequired("contacts")

	synthesizeCmd.Flags().String("coords", "", "path to the coordinate matrix CSV (required)")
	synthesizeCmd.Flags().String("out", "contacts.csv", "output path for the contact matrix")
	synthesizeCmd.Flags().Float64("epsilon", 0.2, "contact distance threshold")
	_ = synthesizeCmd.MarkFlagRequired("coords")

	roundtripCmd.Flags().String("coords", "", "path to the coordinate matrix CSV (demo figure if omitted)")
	roundtripCmd.Flags().Float64("epsilon", 0.21, "contact distance threshold")
}
