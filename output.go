package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

const (
	ansiReset  = "\033[0m"
	ansiBold   = "\033[1m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
)

// ShouldUseColor returns true when ANSI colors should be used on stdout.
// It respects NO_COLOR, CLICOLOR_FORCE, CLICOLOR, and TTY detection.
func ShouldUseColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if strings.TrimSpace(os.Getenv("CLICOLOR_FORCE")) == "1" {
		return true
	}
	if strings.TrimSpace(os.Getenv("CLICOLOR")) == "0" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

type painter bool

func (p painter) paint(code, s string) string {
	if !p {
		return s
	}
	return code + s + ansiReset
}

// PrintRoute writes one line per node: its label, nearest exit, distance and
// path. Exits are green, unreachable nodes red.
func PrintRoute(w io.Writer, g *Graph, res *RouteResult, color bool) {
	p := painter(color)
	exits := make(map[int]bool, len(res.ExitIDs))
	for _, id := range res.ExitIDs {
		exits[id] = true
	}

	fmt.Fprintln(w, p.paint(ansiBold, fmt.Sprintf("%-12s %-12s %10s  %s", "NODE", "EXIT", "DISTANCE", "PATH")))
	for _, id := range g.NodeIDs() {
		n, _ := g.Node(id)
		name := nodeName(id)

		switch {
		case exits[id]:
			fmt.Fprintln(w, p.paint(ansiGreen, fmt.Sprintf("%-12s %-12s %10.1f  %s", name, "(exit)", 0.0, formatPath(n.Path))))
		case len(n.Path) == 0:
			fmt.Fprintln(w, p.paint(ansiRed, fmt.Sprintf("%-12s %-12s %10s  %s", name, "-", "-", "unreachable")))
		default:
			exitID := res.NearestExit[id]
			fmt.Fprintf(w, "%-12s %-12s %10.1f  %s\n", name, nodeName(exitID), res.Distance(id), formatPath(n.Path))
		}
	}

	if len(res.Unreachable) > 0 {
		fmt.Fprintln(w, p.paint(ansiYellow, fmt.Sprintf("%d of %d nodes cannot reach an exit", len(res.Unreachable), g.Len())))
	}
}

// nodeName shows extracted nodes by label and instance, and interactive nodes
// by plain id
func nodeName(id int) string {
	if pid := PanopticID(id); pid.Label().IsRoutable() {
		return pid.String()
	}
	return fmt.Sprint(id)
}

func formatPath(path []int) string {
	parts := make([]string, len(path))
	for i, id := range path {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, " -> ")
}
