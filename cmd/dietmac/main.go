// Command dietmac runs the authenticated gate-evaluation engine end to end:
// in-process with both roles (demo), or as one side of a TCP session
// (prove / verify). The gate stream is derived from a shared seed so both
// sides evaluate the same circuit.
package main

import (
	"fmt"
	"math/rand"
	"net"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/paralmehmet/swanky/channel"
	"github.com/paralmehmet/swanky/dietmac"
	"github.com/paralmehmet/swanky/fcom"
	"github.com/paralmehmet/swanky/field/f61p"
	"github.com/paralmehmet/swanky/logger"
	"github.com/paralmehmet/swanky/rng"
)

var (
	flagGates      int
	flagSeed       int64
	flagAddr       string
	flagNoBatching bool
	flagProgress   bool
)

func engineOptions() []dietmac.Option {
	var opts []dietmac.Option
	if flagNoBatching {
		opts = append(opts, dietmac.WithNoBatching())
	}
	return opts
}

// gateChoice mirrors the per-step decisions on both sides.
type gateChoice struct {
	op   int
	cst  f61p.Element
	pick int
}

func choices(n int, seed int64) []gateChoice {
	r := rand.New(rand.NewSource(seed))
	out := make([]gateChoice, n)
	for i := range out {
		out[i] = gateChoice{
			op:   r.Intn(5),
			cst:  f61p.FromUint64(r.Uint64()),
			pick: r.Int(),
		}
	}
	return out
}

func runProver(conn net.Conn) error {
	f := f61p.Field{}
	ch := channel.New(conn)
	p, err := dietmac.NewProver[f61p.Element, f61p.Element](f, ch, rng.New([]byte("dietmac demo prover")), fcom.LpnSetupMedium, fcom.LpnExtendMedium, engineOptions()...)
	if err != nil {
		return err
	}
	defer p.Close()

	var bar *progressbar.ProgressBar
	if flagProgress {
		bar = progressbar.Default(int64(flagGates), "proving")
	}

	wires := []fcom.MacProver[f61p.Element, f61p.Element]{p.InputPublic(f.ClearOne())}
	witness := rand.New(rand.NewSource(flagSeed ^ 0x5eed))
	for _, c := range choices(flagGates, flagSeed) {
		a := wires[c.pick%len(wires)]
		b := wires[(c.pick/7)%len(wires)]
		var out fcom.MacProver[f61p.Element, f61p.Element]
		switch c.op {
		case 0:
			out, err = p.Add(a, b)
		case 1:
			out, err = p.AddConst(a, c.cst)
		case 2:
			out, err = p.MulConst(a, c.cst)
		case 3:
			out, err = p.Mul(a, b)
		case 4:
			out, err = p.InputPrivate(f61p.FromUint64(witness.Uint64()))
		}
		if err != nil {
			return err
		}
		// Assert a freshly built zero now and then, to keep the queue warm.
		if c.pick%64 == 0 {
			neg, err := p.MulConst(out, f.ClearNeg(f.ClearOne()))
			if err != nil {
				return err
			}
			z, err := p.Add(out, neg)
			if err != nil {
				return err
			}
			if err := p.AssertZero(z); err != nil {
				return err
			}
		}
		wires = append(wires, out)
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if err := p.Finalize(); err != nil {
		return err
	}
	s := p.Stats()
	log := logger.Logger()
	log.Info().
		Uint64("mul", s.Mul).
		Uint64("assert_zero", s.AssertZero).
		Uint64("zk_mult_check", s.ZKMultCheck).
		Msg("prover finished")
	return nil
}

func runVerifier(conn net.Conn) error {
	f := f61p.Field{}
	ch := channel.New(conn)
	v, err := dietmac.NewVerifier[f61p.Element, f61p.Element](f, ch, rng.New([]byte("dietmac demo verifier")), fcom.LpnSetupMedium, fcom.LpnExtendMedium, engineOptions()...)
	if err != nil {
		return err
	}
	defer v.Close()

	wires := []fcom.MacVerifier[f61p.Element]{v.InputPublic(f.ClearOne())}
	for _, c := range choices(flagGates, flagSeed) {
		a := wires[c.pick%len(wires)]
		b := wires[(c.pick/7)%len(wires)]
		var out fcom.MacVerifier[f61p.Element]
		switch c.op {
		case 0:
			out, err = v.Add(a, b)
		case 1:
			out, err = v.AddConst(a, c.cst)
		case 2:
			out, err = v.MulConst(a, c.cst)
		case 3:
			out, err = v.Mul(a, b)
		case 4:
			out, err = v.InputPrivate()
		}
		if err != nil {
			return err
		}
		if c.pick%64 == 0 {
			neg, err := v.MulConst(out, f.ClearNeg(f.ClearOne()))
			if err != nil {
				return err
			}
			z, err := v.Add(out, neg)
			if err != nil {
				return err
			}
			if err := v.AssertZero(z); err != nil {
				return err
			}
		}
		wires = append(wires, out)
	}
	if err := v.Finalize(); err != nil {
		return err
	}
	s := v.Stats()
	log := logger.Logger()
	log.Info().
		Uint64("mul", s.Mul).
		Uint64("zk_mult_check", s.ZKMultCheck).
		Msg("verifier finished")
	return nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "dietmac",
		Short: "authenticated gate evaluation over IT-MACs",
	}
	rootCmd.PersistentFlags().IntVar(&flagGates, "gates", 100_000, "number of gates to evaluate")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 42, "shared seed for the demo gate stream")
	rootCmd.PersistentFlags().BoolVar(&flagNoBatching, "no-batching", false, "flush every zero assertion immediately")
	rootCmd.PersistentFlags().BoolVar(&flagProgress, "progress", true, "display a progress bar on the prover")

	demoCmd := &cobra.Command{
		Use:   "demo",
		Short: "run prover and verifier in-process",
		RunE: func(cmd *cobra.Command, args []string) error {
			c1, c2 := net.Pipe()
			defer c1.Close()
			defer c2.Close()
			var g errgroup.Group
			g.Go(func() error { return runProver(c1) })
			g.Go(func() error { return runVerifier(c2) })
			return g.Wait()
		},
	}

	proveCmd := &cobra.Command{
		Use:   "prove",
		Short: "connect to a verifier and run the prover role",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := net.Dial("tcp", flagAddr)
			if err != nil {
				return err
			}
			defer conn.Close()
			return runProver(conn)
		},
	}
	proveCmd.Flags().StringVar(&flagAddr, "addr", "localhost:9583", "verifier address")

	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "listen for a prover and run the verifier role",
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := net.Listen("tcp", flagAddr)
			if err != nil {
				return err
			}
			defer l.Close()
			conn, err := l.Accept()
			if err != nil {
				return err
			}
			defer conn.Close()
			return runVerifier(conn)
		},
	}
	verifyCmd.Flags().StringVar(&flagAddr, "addr", "localhost:9583", "listen address")

	rootCmd.AddCommand(demoCmd, proveCmd, verifyCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
