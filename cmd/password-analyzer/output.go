package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/sakif/password-analyzer/internal/model"
)

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to format JSON: %w", err)
	}
	return nil
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func printUser(cmd *cobra.Command, u *model.User) {
	w := newTable(cmd.OutOrStdout())
	fmt.Fprintf(w, "ID:\t%s\n", u.ID)
	fmt.Fprintf(w, "Username:\t%s\n", u.Username)
	fmt.Fprintf(w, "Full name:\t%s\n", u.FullName)
	fmt.Fprintf(w, "Email:\t%s\n", u.Email)
	fmt.Fprintf(w, "Verified:\t%s\n", yesNo(u.IsVerified))
	if u.Bio != "" {
		fmt.Fprintf(w, "Bio:\t%s\n", u.Bio)
	}
	fmt.Fprintf(w, "Avatar:\t%s\n", u.AvatarURL)
	if u.PasswordStrength != "" {
		fmt.Fprintf(w, "Password strength:\t%s\n", u.PasswordStrength)
	}
	if u.GitHubID != 0 {
		fmt.Fprintf(w, "GitHub id:\t%d\n", u.GitHubID)
	}
	if u.LastLogin != nil {
		fmt.Fprintf(w, "Last login:\t%s\n", u.LastLogin.Local().Format(time.DateTime))
	}
	fmt.Fprintf(w, "Member since:\t%s\n", u.CreatedAt.Local().Format(time.DateOnly))
	_ = w.Flush()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// progressBar draws a percentage bar on w. On a terminal the bar redraws
// in place; otherwise one line is written per whole ten percent so logs
// and pipes stay readable.
type progressBar struct {
	w     io.Writer
	label string
	tty   bool
	last  int
}

const barWidth = 30

func newProgressBar(w io.Writer, label string) *progressBar {
	tty := false
	if f, ok := w.(*os.File); ok {
		tty = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &progressBar{w: w, label: label, tty: tty, last: -1}
}

func (p *progressBar) Update(percent float64) {
	pct := int(percent)
	if p.tty {
		filled := pct * barWidth / 100
		fmt.Fprintf(p.w, "\r%s [%s%s] %3d%%", p.label,
			strings.Repeat("#", filled), strings.Repeat(".", barWidth-filled), pct)
		if pct >= 100 {
			fmt.Fprintln(p.w)
		}
		return
	}

	step := pct / 10 * 10
	if step > p.last {
		p.last = step
		fmt.Fprintf(p.w, "%s %d%%\n", p.label, step)
	}
}
