package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	"github.com/samuelfneumann/offpolicy/agent/offpolicy"
	"github.com/samuelfneumann/offpolicy/experiment/checkpointer"
	"github.com/samuelfneumann/offpolicy/experiment/trackers"
	"github.com/samuelfneumann/offpolicy/expreplay"
	ts "github.com/samuelfneumann/offpolicy/timestep"
	"github.com/samuelfneumann/offpolicy/utils/intutils"
	"github.com/samuelfneumann/offpolicy/utils/progressbar"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/stat"
	"gorgonia.org/tensor"
)

const (
	obsDim        = 3
	episodeLength = 100
)

func main() {
	steps := flag.Int("steps", 20_000, "number of environment steps")
	seed := flag.Uint64("seed", 192382, "random seed")
	configFile := flag.String("config", "", "JSON file of learner options "+
		"overriding the defaults")
	dir := flag.String("checkpoint", "", "directory to checkpoint the "+
		"replay buffer to")
	every := flag.Int("every", 5_000, "steps between checkpoints")
	compression := flag.String("compression", "zstd", "checkpoint "+
		"compression: none, lz4, or zstd")
	returnsFile := flag.String("returns", "", "file to save episodic "+
		"returns to")
	flag.Parse()

	config := offpolicy.Default()
	config.Replay.MaxSize = 50_000
	config.BatchSize = 64
	config.Seed = *seed
	if *configFile != "" {
		data, err := os.ReadFile(*configFile)
		if err != nil {
			log.Fatalf("could not read config: %v", err)
		}
		config, err = config.Override(data)
		if err != nil {
			log.Fatalf("could not override config: %v", err)
		}
	}

	// Create the learner
	bounds := []r1.Interval{{Min: -1, Max: 1}}
	linear := newLinearCritic(obsDim, len(bounds))
	optimizer := &sgd{critic: linear, learningRate: 0.01, gamma: 0.99}
	learner, err := offpolicy.New(linear, optimizer, []int{obsDim}, bounds,
		config)
	if err != nil {
		log.Fatalf("could not create learner: %v", err)
	}
	optimizer.targets = func() *tensor.Dense { return learner.Targets()[0] }

	// Create the checkpointer
	ctx := context.Background()
	var check checkpointer.Checkpointer
	var sink checkpointer.Sink
	if *dir != "" {
		c, err := checkpointer.ParseCompression(*compression)
		if err != nil {
			log.Fatal(err)
		}
		sink, err = checkpointer.NewFileSink(*dir)
		if err != nil {
			log.Fatal(err)
		}
		check, err = checkpointer.NewNStep(*every, learner.Replay(),
			func() string { return "replay.bin" }, sink, c)
		if err != nil {
			log.Fatal(err)
		}
	}

	env := newDrift(*seed)
	step := env.reset(0)
	returns := trackers.NewReturn()
	if err := returns.Track(step); err != nil {
		log.Fatal(err)
	}
	bar := progressbar.NewManualProgressBar(40, *steps)
	for i := 1; i <= *steps; i++ {
		action := learner.SelectAction([]float64{-env.position()})
		next := env.step(action, i)

		t := ts.NewTransition(step, mat.NewVecDense(1, action), next, nil)
		if err := learner.Observe(t); err != nil {
			log.Fatalf("could not observe transition: %v", err)
		}
		if err := learner.Step(); err != nil {
			log.Fatalf("could not step learner: %v", err)
		}

		if check != nil {
			if err := check.Checkpoint(ctx, next); err != nil {
				log.Fatalf("could not checkpoint: %v", err)
			}
		}

		if err := returns.Track(next); err != nil {
			log.Fatal(err)
		}

		step = next
		if step.Last() {
			step = env.reset(i)
			if err := returns.Track(step); err != nil {
				log.Fatal(err)
			}
		}

		bar.Increment()
		if i%500 == 0 || i == *steps {
			stats := learner.Stats()
			bar.Display(fmt.Sprintf("loss: %.4f", stats["loss"]))
		}
	}
	bar.Close()

	stats := learner.Stats()
	log.Printf("gradient steps: %v, target updates: %v, buffer size: %v",
		stats[offpolicy.StatGradientSteps], stats[offpolicy.StatTargetUpdates],
		stats[offpolicy.StatBufferSize])
	if episodes := returns.Data(); len(episodes) > 0 {
		last := episodes[intutils.Max(0, len(episodes)-10):]
		log.Printf("episodes: %v, mean return of last %v: %.4f",
			len(episodes), len(last), stat.Mean(last, nil))
	}
	if *returnsFile != "" {
		if err := trackers.SaveFile(*returnsFile, returns); err != nil {
			log.Fatalf("could not save returns: %v", err)
		}
	}
	log.Printf("critic weights: %v", linear.weights.Data())
	log.Printf("target weights: %v", learner.Targets()[0].Data())

	if sink != nil && *steps >= *every {
		restored := &expreplay.Buffer{}
		if err := checkpointer.Restore(ctx, sink, "replay.bin",
			restored); err != nil {
			log.Fatalf("could not restore checkpoint: %v", err)
		}
		log.Printf("restored checkpoint with %v transitions",
			restored.Len())
	}
}

// drift is a one dimensional task where an agent must keep a point,
// which drifts randomly, close to the origin
type drift struct {
	rng *rand.Rand
	obs []float64 // Position, velocity, time remaining
}

func newDrift(seed uint64) *drift {
	return &drift{rng: rand.New(rand.NewSource(seed)), obs: make([]float64, 3)}
}

func (d *drift) position() float64 {
	return d.obs[0]
}

func (d *drift) reset(n int) ts.TimeStep {
	d.obs = []float64{d.rng.Float64()*2 - 1, 0, 1}
	return ts.New(ts.First, 0, 1, mat.NewVecDense(obsDim, copyOf(d.obs)), n)
}

func (d *drift) step(action []float64, n int) ts.TimeStep {
	velocity := 0.9*d.obs[1] + 0.1*action[0] + 0.01*d.rng.NormFloat64()
	position := math.Max(-2, math.Min(2, d.obs[0]+velocity))
	remaining := d.obs[2] - 1.0/episodeLength
	d.obs = []float64{position, velocity, remaining}

	reward := -position * position
	stepType := ts.Mid
	discount := 1.0
	if remaining <= 1e-9 {
		stepType = ts.Last
		discount = 0
	}
	return ts.New(stepType, reward, discount,
		mat.NewVecDense(obsDim, copyOf(d.obs)), n)
}

func copyOf(x []float64) []float64 {
	out := make([]float64, len(x))
	copy(out, x)
	return out
}
