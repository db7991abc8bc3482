package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"clipforge/internal/accel"
	"clipforge/internal/api"
	"clipforge/internal/config"
	"clipforge/internal/engine"
	"clipforge/internal/exporter"
	"clipforge/internal/logging"
	"clipforge/internal/media"
	"clipforge/internal/preview"
	"clipforge/internal/timeline"
	"clipforge/pkg/util"
)

var (
	cfgFile string
	verbose bool
)

func main() {
	ctx := context.Background()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "clipforge",
	Short: "clipforge - timeline-based video editing and export",
	Long:  "Assemble clips on a multi-track timeline, attach effects and text overlays, and export a single file or an HLS package.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Init(verbose)

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		ctx := config.WithConfig(cmd.Context(), cfg)
		cmd.SetContext(ctx)

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./clipforge.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	exportCmd.Flags().StringP("format", "f", "mp4", "output format (mp4|hls)")
	exportCmd.Flags().StringP("quality", "q", "medium", "quality preset (low|medium|high)")
	exportCmd.Flags().StringP("output", "o", ".", "directory to write artifacts into")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(configCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local editing API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		bridge := accel.NewLogging(log.Logger)
		bridge.InitProject(cfg.Output.Width, cfg.Output.Height, cfg.Output.FrameRate)

		library := media.NewLibrary(log.Logger)
		tl := timeline.New(log.Logger, bridge)
		eng := engine.NewFFmpeg(log.Logger, cfg.Engine, cfg.WorkDir)
		exp := exporter.New(log.Logger, eng, cfg.Export)

		server := api.NewServer(&api.ServerConfig{
			Port:     cfg.Server.Port,
			Library:  library,
			Timeline: tl,
			Exporter: exp,
			Preview:  preview.NewPlayer(cfg.Output.FrameRate),
			Logger:   log.Logger,
		})

		errCh := make(chan error, 1)
		go func() { errCh <- server.Start() }()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return err
		case sig := <-sigCh:
			log.Info().Str("signal", sig.String()).Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		}
	},
}

var exportCmd = &cobra.Command{
	Use:   "export [project file]",
	Short: "Export a project file without the API",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())
		ctx := cmd.Context()

		format, _ := cmd.Flags().GetString("format")
		quality, _ := cmd.Flags().GetString("quality")
		outDir, _ := cmd.Flags().GetString("output")

		project, err := loadProject(args[0])
		if err != nil {
			return err
		}

		eng := engine.NewFFmpeg(log.Logger, cfg.Engine, cfg.WorkDir)
		if err := eng.Load(ctx); err != nil {
			return err
		}

		library := media.NewLibrary(log.Logger)
		tl := timeline.New(log.Logger, accel.Nop{})
		if err := buildTimeline(ctx, project, library, tl, eng); err != nil {
			return err
		}

		exp := exporter.New(log.Logger, eng, cfg.Export)
		if _, err := exp.Start(ctx, tl.Snapshot(), exporter.Request{
			Format:  exporter.Format(format),
			Quality: exporter.Quality(quality),
		}); err != nil {
			return err
		}

		job, err := exp.Wait(ctx)
		if err != nil {
			return err
		}
		if job.Stage == exporter.StageFailed {
			for _, line := range job.LogTail {
				fmt.Fprintln(os.Stderr, line)
			}
			return fmt.Errorf("export failed: %s", job.Err)
		}

		if err := util.EnsureDir(outDir); err != nil {
			return err
		}
		for _, artifact := range job.Artifacts {
			data, err := exp.ReadArtifact(artifact.Name)
			if err != nil {
				return err
			}
			dest := filepath.Join(outDir, artifact.Name)
			if err := os.WriteFile(dest, data, 0644); err != nil {
				return err
			}
			log.Info().Str("artifact", dest).Int("bytes", artifact.Size).Msg("artifact written")
		}

		return nil
	},
}

var probeCmd = &cobra.Command{
	Use:   "probe [video file]",
	Short: "Print metadata for a video file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		eng := engine.NewFFmpeg(log.Logger, cfg.Engine, cfg.WorkDir)
		if err := eng.Load(cmd.Context()); err != nil {
			return err
		}

		info, err := eng.Probe(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("%s: %dx%d, %.2f fps, %v, video=%s audio=%s\n",
			info.FilePath, info.Width, info.Height, info.FPS, info.Duration, info.VideoCodec, info.AudioCodec)
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Config management commands",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		fmt.Print(string(data))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
}
