package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"

	"github.com/born-ml/arenaml/internal/config"
	"github.com/born-ml/arenaml/internal/runlog"
	"github.com/born-ml/arenaml/internal/serve"
	"github.com/born-ml/arenaml/internal/tensor"
	"github.com/born-ml/arenaml/internal/trainer"
)

// trainFlags registers the config path and the overrides shared by every
// command that trains.
type trainFlags struct {
	cfgPath   *string
	data      *string
	batchSize *int
	epochs    *int
	lr        *float64
	logEvery  *int
	seed      *int64
	history   *string
}

func addTrainFlags(fs *flag.FlagSet) *trainFlags {
	return &trainFlags{
		cfgPath:   fs.String("config", "configs/iris.yaml", "Path to YAML config"),
		data:      fs.String("data", "", "Override data file"),
		batchSize: fs.Int("batch-size", 0, "Batch size"),
		epochs:    fs.Int("epochs", 0, "Number of training epochs"),
		lr:        fs.Float64("lr", 0, "SGD learning rate"),
		logEvery:  fs.Int("log-every", 0, "Log every N steps"),
		seed:      fs.Int64("seed", 0, "PRNG seed (0 = crypto/rand)"),
		history:   fs.String("history", "", "SQLite file recording the run"),
	}
}

func (f *trainFlags) load() *config.Config {
	cfg, err := config.Load(*f.cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg.ApplyOverrides(config.Overrides{
		Data:      *f.data,
		BatchSize: *f.batchSize,
		Epochs:    *f.epochs,
		LR:        float32(*f.lr),
		LogEvery:  *f.logEvery,
		Seed:      *f.seed,
		History:   *f.history,
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	return cfg
}

func train(ctx context.Context, cfg *config.Config) *trainer.Session {
	s, err := trainer.Run(ctx, cfg, log.Default())
	if err != nil {
		log.Fatalf("training failed: %v", err)
	}
	if s.Result.Steps == 0 {
		log.Fatalf("training ran no steps")
	}
	return s
}

func runTrain(args []string) {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
	tf := addTrainFlags(fs)
	printWeights := fs.Bool("print-weights", false, "Print the trained weights and bias")
	_ = fs.Parse(args)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := train(ctx, tf.load())
	fmt.Printf("run:      %s\n", s.RunID)
	fmt.Printf("steps:    %d (%d epochs)\n", s.Result.Steps, s.Result.Epochs)
	fmt.Printf("loss:     %.6f\n", s.Result.LastLoss)
	fmt.Printf("accuracy: %.2f%%\n", s.Accuracy*100)

	if *printWeights {
		lin := s.Model.Linear()
		_ = tensor.Fprint(os.Stdout, "W", lin.Weight())
		_ = tensor.Fprint(os.Stdout, "b", lin.Bias())
	}
}

func runInfer(args []string) {
	fs := flag.NewFlagSet("infer", flag.ExitOnError)
	tf := addTrainFlags(fs)
	sample := fs.String("sample", "", "Comma separated feature values, e.g. 5.1,3.5,1.4,0.2")
	_ = fs.Parse(args)

	if *sample == "" {
		log.Fatalf("-sample is required")
	}
	cfg := tf.load()
	values, err := trainer.ParseSample(*sample, len(cfg.FeatureColumns))
	if err != nil {
		log.Fatalf("bad sample: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	s := train(ctx, cfg)

	// The model takes exactly N rows; the sample goes in row 0.
	n := s.Model.Config().N
	in, err := tensor.New(s.Arena, n, len(values))
	if err != nil {
		log.Fatalf("input buffer: %v", err)
	}
	probs, err := tensor.New(s.Arena, n, len(s.Classes))
	if err != nil {
		log.Fatalf("output buffer: %v", err)
	}
	if err := in.FillScalar(0); err != nil {
		log.Fatalf("input buffer: %v", err)
	}
	if err := in.FillRow(0, values); err != nil {
		log.Fatalf("input buffer: %v", err)
	}
	if err := s.Model.Infer(in, probs); err != nil {
		log.Fatalf("inference failed: %v", err)
	}

	row, err := probs.Row(0)
	if err != nil {
		log.Fatalf("inference failed: %v", err)
	}
	best, err := probs.ArgMaxRow(0)
	if err != nil {
		log.Fatalf("inference failed: %v", err)
	}
	for i, name := range s.Classes {
		fmt.Printf("%-20s %.3f\n", name, row[i])
	}
	fmt.Printf("prediction: %s\n", s.Classes[best])
}

func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	tf := addTrainFlags(fs)
	listen := fs.String("listen", "", "Override listen address")
	_ = fs.Parse(args)

	cfg := tf.load()
	cfg.ApplyOverrides(config.Overrides{Listen: *listen})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	s := train(ctx, cfg)

	srv, err := serve.New(s.Arena, s.Model, s.Features, s.Classes, log.Default())
	if err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
	httpSrv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	log.Printf("run=%s serving on %s", s.RunID, cfg.Listen)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server failed: %v", err)
	}
}

func runHistory(args []string) {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	path := fs.String("history", "arenaml-history.db", "SQLite history file")
	limit := fs.Int("limit", 20, "Number of runs to list")
	run := fs.String("run", "", "Print the loss curve of this run id")
	_ = fs.Parse(args)

	ctx := context.Background()
	store, err := runlog.Open(ctx, *path)
	if err != nil {
		log.Fatalf("failed to open history: %v", err)
	}
	defer store.Close()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()

	if *run != "" {
		id, err := uuid.Parse(*run)
		if err != nil {
			log.Fatalf("bad run id: %v", err)
		}
		curve, err := store.Curve(ctx, id)
		if err != nil {
			log.Fatalf("failed to read curve: %v", err)
		}
		fmt.Fprintln(w, "STEP\tEPOCH\tLOSS")
		for _, p := range curve {
			fmt.Fprintf(w, "%d\t%d\t%.6f\n", p.Step, p.Epoch, p.Loss)
		}
		return
	}

	runs, err := store.Runs(ctx, *limit)
	if err != nil {
		log.Fatalf("failed to list runs: %v", err)
	}
	fmt.Fprintln(w, "RUN\tSTARTED\tSTEPS\tEPOCHS\tLOSS\tSTATUS")
	for _, r := range runs {
		state := "ok"
		switch {
		case r.Err != "":
			state = r.Err
		case r.FinishedAt.IsZero():
			state = "unfinished"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%.6f\t%s\n",
			r.ID, r.StartedAt.Format(time.RFC3339), r.Steps, r.Epochs, r.LastLoss, state)
	}
}
