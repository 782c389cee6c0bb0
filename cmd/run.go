/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/gospectral/InputParameters"
	"github.com/notargets/gospectral/model_problems"
	"github.com/notargets/gospectral/utils"
)

type RunOptions struct {
	InputFile      string
	ParallelDegree int    // Overrides the input file when positive
	Profile        string // "", "cpu" or "mem"
	ProfilePath    string
	Perf           bool
	Verbose        bool
}

// RunCmd represents the run command
var RunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation described by a YAML input parameters file",
	Long: `
Runs the solver named in the input parameters file until the end time or the
last iteration. With -p greater than one the domain is split in slabs, one per
rank, each rank running in its own goroutine.

gospectral run -I params.yaml -p 2 --profile cpu`,
	Run: func(cmd *cobra.Command, args []string) {
		ro := &RunOptions{}
		ro.InputFile, _ = cmd.Flags().GetString("inputParametersFile")
		ro.ParallelDegree = viper.GetInt("parallel_degree")
		ro.Profile = viper.GetString("profile")
		ro.ProfilePath = viper.GetString("profile_path")
		ro.Perf = viper.GetBool("perf")
		ro.Verbose = viper.GetBool("verbose")
		ip, err := processInput(ro)
		if err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		err = Run(ctx, ro, ip, os.Stdout)
		stop()
		if err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(RunCmd)
	RunCmd.Flags().StringP("inputParametersFile", "I", "", "YAML file for input parameters, see \"gospectral params\" for an example")
	RunCmd.Flags().IntP("parallelDegree", "p", 0, "number of ranks, overrides ParallelDegree of the input file")
	RunCmd.Flags().String("profile", "", "write a profile of the run: cpu or mem")
	RunCmd.Flags().String("profilePath", ".", "directory receiving the profile")
	RunCmd.Flags().Bool("perf", false, "count the instructions retired by the run (linux)")
	RunCmd.Flags().BoolP("verbose", "v", false, "print the progress of the time stepping")
	for key, flag := range map[string]string{
		"parallel_degree": "parallelDegree",
		"profile":         "profile",
		"profile_path":    "profilePath",
		"perf":            "perf",
		"verbose":         "verbose",
	} {
		if err := viper.BindPFlag(key, RunCmd.Flags().Lookup(flag)); err != nil {
			panic(err)
		}
	}
}

func processInput(ro *RunOptions) (ip *InputParameters.Parameters, err error) {
	var (
		data []byte
	)
	if len(ro.InputFile) == 0 {
		err = fmt.Errorf("must supply an input parameters file (-I, --inputParametersFile), \"gospectral params\" prints an example")
		return
	}
	if data, err = os.ReadFile(ro.InputFile); err != nil {
		return
	}
	ip = InputParameters.NewParameters()
	if err = ip.Parse(data); err != nil {
		return nil, err
	}
	if ro.ParallelDegree > 0 {
		ip.ParallelDegree = ro.ParallelDegree
	}
	if ro.Verbose {
		ip.Verbose = true
	}
	if err = ip.Validate(); err != nil {
		return nil, err
	}
	return
}

// Run executes the simulation with the profiling options of ro, progress goes to w
func Run(ctx context.Context, ro *RunOptions, ip *InputParameters.Parameters, w io.Writer) (err error) {
	var (
		start = time.Now()
		mode  func(p *profile.Profile)
	)
	switch ro.Profile {
	case "":
	case "cpu":
		mode = profile.CPUProfile
	case "mem":
		mode = profile.MemProfile
	default:
		return fmt.Errorf("%w: unknown profile [%s], use cpu or mem", utils.ErrConfiguration, ro.Profile)
	}
	if mode != nil {
		path := ro.ProfilePath
		if path == "" {
			path = "."
		}
		defer profile.Start(mode, profile.ProfilePath(path), profile.NoShutdownHook, profile.Quiet).Stop()
	}
	if ip.Verbose {
		ip.Print(w)
	}
	if ro.Perf {
		var (
			ran    bool
			runErr error
			count  uint64
		)
		count, err = countInstructions(func() error {
			ran = true
			runErr = RunSimulation(ctx, ip, w)
			return runErr
		})
		switch {
		case ran:
			if runErr != nil {
				return runErr
			}
			if err == nil {
				fmt.Fprintf(w, "Instructions retired: %d\n", count)
			}
		default:
			fmt.Fprintf(w, "Instruction counting unavailable: %s\n", err.Error())
			if err = RunSimulation(ctx, ip, w); err != nil {
				return
			}
		}
	} else if err = RunSimulation(ctx, ip, w); err != nil {
		return
	}
	fmt.Fprintf(w, "Elapsed time: %v\n", time.Since(start))
	return nil
}

// RunSimulation runs one rank per goroutine and returns the first error of any rank.
// A single rank runs on the calling goroutine.
func RunSimulation(ctx context.Context, ip *InputParameters.Parameters, w io.Writer) (err error) {
	var (
		NP   = ip.ParallelDegree
		errs = make([]error, NP)
		wg   sync.WaitGroup
	)
	runRank := func(comm utils.Communicator) (err error) {
		var sim *model_problems.Simul
		if sim, err = model_problems.NewSimul(ip, comm, w); err != nil {
			return
		}
		return sim.Run(ctx)
	}
	if NP == 1 {
		return runRank(utils.NewSequential())
	}
	comms := utils.NewThreadGroup(NP)
	for np := 0; np < NP; np++ {
		wg.Add(1)
		go func(np int) {
			defer wg.Done()
			errs[np] = runRank(comms[np])
		}(np)
	}
	wg.Wait()
	for _, err = range errs {
		if err != nil {
			return
		}
	}
	return nil
}
