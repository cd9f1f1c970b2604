// Command smol runs small demonstration circuits over simulated parties.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hashcloak/smol-mpc/core/algebra"
	"github.com/hashcloak/smol-mpc/core/mpc"
	"github.com/hashcloak/smol-mpc/core/vm/process"
)

func main() {
	command := &cobra.Command{
		Use:   "smol",
		Short: "Simulate secure multiparty computations",
	}
	addSumCmd(command)
	addScaleCmd(command)

	if err := command.Execute(); err != nil {
		os.Exit(1)
	}
}

// addSumCmd adds the demo where every party contributes a private value and
// all parties learn only the sum.
func addSumCmd(command *cobra.Command) {
	var seed string
	var inputs []int64
	var verbose bool

	sumCmd := &cobra.Command{
		Use:   "sum",
		Short: "Sum one private input per party",
		Long:  "Each party secret-shares its private input; the parties add the shares locally and open only the total.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(inputs) < 2 {
				return fmt.Errorf("need at least two inputs, got %d", len(inputs))
			}

			n := len(inputs)
			sessionInputs := mpc.Inputs{}
			program := process.Program{}

			// Refs 0..n-1 hold the plaintext inputs, n..2n-1 the shared
			// values, 2n the running sum and 2n+1 the opened total.
			for party := 0; party < n; party++ {
				in, shared := process.Ref(party), process.Ref(n+party)
				sessionInputs[uint64(party)] = map[process.Ref]algebra.Element{
					in: algebra.NewElement(uint64(inputs[party])),
				}
				program = append(program,
					process.InstInput(in, uint64(party)),
					process.InstShare(shared, in, uint64(party)),
				)
			}

			sum, total := process.Ref(2*n), process.Ref(2*n+1)
			program = append(program, process.InstAdd(sum, process.Ref(n), process.Ref(n+1)))
			for party := 2; party < n; party++ {
				program = append(program, process.InstAdd(sum, sum, process.Ref(n+party)))
			}
			program = append(program,
				process.InstOpen(total, sum),
				process.InstOutput(total),
			)

			return runProgram(n, seed, verbose, program, sessionInputs, total)
		},
	}

	sumCmd.Flags().StringVar(&seed, "seed", "", "Seed for the session randomness")
	sumCmd.Flags().Int64SliceVar(&inputs, "inputs", []int64{10, 20, 5}, "One private input per party")
	sumCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log protocol rounds")

	command.AddCommand(sumCmd)
}

// addScaleCmd adds the demo where one party's private value is scaled by a
// public constant without being revealed.
func addScaleCmd(command *cobra.Command) {
	var seed string
	var parties int
	var input, scalar int64
	var verbose bool

	scaleCmd := &cobra.Command{
		Use:   "scale",
		Short: "Scale one private input by a public constant",
		Long:  "Party zero secret-shares its private input; every party scales its share locally and the product is opened.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if parties < 2 {
				return fmt.Errorf("need at least two parties, got %d", parties)
			}

			const (
				in     = process.Ref(0)
				shared = process.Ref(1)
				scaled = process.Ref(2)
				result = process.Ref(3)
			)

			sessionInputs := mpc.Inputs{
				0: {in: algebra.NewElement(uint64(input))},
			}
			program := process.Program{
				process.InstInput(in, 0),
				process.InstShare(shared, in, 0),
				process.InstScalarMul(scaled, shared, algebra.NewElement(uint64(scalar))),
				process.InstOpen(result, scaled),
				process.InstOutput(result),
			}

			return runProgram(parties, seed, verbose, program, sessionInputs, result)
		},
	}

	scaleCmd.Flags().StringVar(&seed, "seed", "", "Seed for the session randomness")
	scaleCmd.Flags().IntVarP(&parties, "parties", "p", 2, "Number of simulated parties")
	scaleCmd.Flags().Int64Var(&input, "input", 7, "Private input of party zero")
	scaleCmd.Flags().Int64Var(&scalar, "scalar", 6, "Public scaling constant")
	scaleCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log protocol rounds")

	command.AddCommand(scaleCmd)
}

func runProgram(n int, seed string, verbose bool, program process.Program, inputs mpc.Inputs, result process.Ref) error {
	logger := zerolog.Nop()
	if verbose {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger().Level(zerolog.DebugLevel)
	}

	session, err := mpc.NewSession(n, []byte(seed), mpc.WithLogger(logger))
	if err != nil {
		return err
	}

	outputs, err := session.Run(nil, program, inputs)
	if err != nil {
		return err
	}

	for party := 0; party < n; party++ {
		fmt.Printf("party %d: %v\n", party, outputs[uint64(party)][result])
	}
	return nil
}
