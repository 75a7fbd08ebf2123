package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sakif/password-analyzer/internal/apperror"
	"github.com/sakif/password-analyzer/internal/cracker"
	"github.com/sakif/password-analyzer/internal/service"
	"github.com/sakif/password-analyzer/internal/strength"
)

func (c *cli) newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Score passwords and simulate attacks against them",
		Long: `Score passwords and simulate attacks against them.

The crack simulator is a demonstration: it waits a few seconds and decides
from simple rules (short lowercase passwords, common words, your username).
No hash is computed and no wordlist is read.`,
	}

	cmd.AddCommand(c.newStrengthCmd())
	cmd.AddCommand(c.newCrackCmd())
	cmd.AddCommand(c.newBatchCmd())
	cmd.AddCommand(c.newWordlistsCmd())

	return cmd
}

func (c *cli) newStrengthCmd() *cobra.Command {
	var strategy string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "strength [PASSWORD]",
		Short: "Score a password",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := c.passwordArg(cmd, args, "Password: ")
			if err != nil {
				return err
			}

			reports, err := c.app.Analyzer.Strength(cmd.Context(), strategy, password)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd, reports)
			}

			for i, r := range reports {
				if i > 0 {
					cmd.Println()
				}
				printReport(cmd, r)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&strategy, "strategy", strength.NameWeighted,
		fmt.Sprintf("scoring strategy: %s or %s", strings.Join(strength.Names, ", "), service.StrategyAll))
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func printReport(cmd *cobra.Command, r strength.Report) {
	cmd.Printf("%-9s %3d/%-3d %s\n", r.Strategy, r.Score, r.Max, strings.ToUpper(string(r.Category)))
	for _, s := range r.Suggestions {
		cmd.Printf("  - %s\n", s)
	}
}

func (c *cli) newCrackCmd() *cobra.Command {
	var method, wordlist, username string
	var jsonOutput, transcript bool

	cmd := &cobra.Command{
		Use:   "crack [PASSWORD]",
		Short: "Simulate one cracking run",
		Long: `Simulate one cracking run. Progress goes to stderr; Ctrl-C stops the run.
The username defaults to the signed-in user's, or "user".`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := cracker.ParseMethod(method)
			if err != nil {
				return apperror.ValidationFailed("method", err.Error())
			}
			password, err := c.passwordArg(cmd, args, "Password: ")
			if err != nil {
				return err
			}

			req := cracker.Request{Password: password, Username: username, Method: m, Wordlist: wordlist}
			stderr := cmd.ErrOrStderr()
			if transcript {
				for _, line := range c.app.Analyzer.Transcript(req, 0) {
					fmt.Fprintln(stderr, line)
				}
			}

			bar := newProgressBar(stderr, cracker.Label(req))
			res, err := c.app.Analyzer.Crack(cmd.Context(), req, bar.Update)
			if err != nil {
				return err
			}

			if jsonOutput {
				return printJSON(cmd, res)
			}
			printResult(cmd, res)
			return nil
		},
	}

	cmd.Flags().StringVar(&method, "method", string(cracker.Dictionary), "dictionary or bruteforce")
	cmd.Flags().StringVar(&wordlist, "wordlist", cracker.DefaultWordlist, "wordlist for the dictionary method (see analyze wordlists)")
	cmd.Flags().StringVar(&username, "username", "", "username the attacker knows")
	cmd.Flags().BoolVar(&transcript, "transcript", false, "print a hashcat-style status block before the run")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func printResult(cmd *cobra.Command, res cracker.Result) {
	w := newTable(cmd.OutOrStdout())
	fmt.Fprintf(w, "Attack:\t%s\n", res.WordlistOrMethod)
	if res.Cracked {
		fmt.Fprintf(w, "Result:\tCRACKED\n")
	} else {
		fmt.Fprintf(w, "Result:\tnot cracked\n")
	}
	fmt.Fprintf(w, "Time:\t%s\n", res.TimeTaken)
	fmt.Fprintf(w, "Attempts:\t%s\n", cracker.FormatCount(int64(res.Attempts)))
	_ = w.Flush()
}

func (c *cli) newBatchCmd() *cobra.Command {
	var username string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "batch [PASSWORD]",
		Short: "Run the dictionary simulation against every wordlist",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := c.passwordArg(cmd, args, "Password: ")
			if err != nil {
				return err
			}

			var bar *progressBar
			current := -1
			res, err := c.app.Analyzer.Batch(cmd.Context(), password, username, func(i int, wl cracker.Wordlist, pct float64) {
				if i != current {
					current = i
					bar = newProgressBar(cmd.ErrOrStderr(), fmt.Sprintf("[%d/%d] %s", i+1, len(cracker.Wordlists), wl.ID))
				}
				bar.Update(pct)
			})
			if err != nil {
				return err
			}

			if jsonOutput {
				return printJSON(cmd, res)
			}
			for i, r := range res.Results {
				if i > 0 {
					cmd.Println()
				}
				printResult(cmd, r)
			}
			cmd.Println()
			if res.Cracked {
				cmd.Println("Verdict: VULNERABLE - at least one wordlist cracked this password.")
			} else {
				cmd.Println("Verdict: resisted every wordlist.")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "username the attacker knows")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func (c *cli) newWordlistsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "wordlists",
		Short: "List the wordlists the simulator knows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lists := c.app.Analyzer.Wordlists()
			if jsonOutput {
				return printJSON(cmd, lists)
			}

			w := newTable(cmd.OutOrStdout())
			fmt.Fprintln(w, "ID\tNAME\tENTRIES")
			for _, wl := range lists {
				entries := "unknown"
				if wl.Entries > 0 {
					entries = cracker.FormatCount(wl.Entries)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", wl.ID, wl.Name, entries)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}
