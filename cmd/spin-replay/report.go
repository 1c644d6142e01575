package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	appsession "roulette-oracle/internal/app/session"
)

const reportCategories = 8

func writeReport(w io.Writer, s *appsession.Session) error {
	fmt.Fprintf(w, "session %s, %d spins\n\n", s.ID, s.Len())

	p, err := s.Predict()
	switch {
	case errors.Is(err, appsession.ErrInsufficientData):
		fmt.Fprintf(w, "predictions need %d spins\n", appsession.MinPredictionSpins)
		return nil
	case err != nil:
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STRATEGY\tSTATUS\tCONF\tNUMBERS")
	for _, o := range p.Consensus.Results {
		conf, nums := "-", ""
		if o.Result != nil {
			conf = fmt.Sprintf("%.0f", o.Result.Confidence)
			nums = joinInts(o.Result.Numbers)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", o.Name, o.Status, conf, nums)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nconsensus from %d strategies\n", p.Consensus.ActiveCount)
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NUMBER\tCOLOR\tVOTES\tCONF")
	for _, pr := range p.Consensus.Predictions {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d%%\n", pr.Number, pr.Color, pr.VoteCount, pr.Confidence)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w, "\ncategories")
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, c := range p.Categories {
		if i == reportCategories {
			break
		}
		fmt.Fprintf(tw, "%s\t%s\t%.1f\n", c.Label, c.Payout, c.Score)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	v, err := s.Agent()
	if errors.Is(err, appsession.ErrInsufficientData) {
		fmt.Fprintf(w, "\nagent needs %d spins\n", appsession.MinAgentSpins)
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\nagent state %s, %d states, epsilon %.3f\n", v.State, v.StateCount, v.Epsilon)
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, r := range v.Actions {
		fmt.Fprintf(tw, "%s\t%.4f\n", r.Label, r.Q)
	}
	return tw.Flush()
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, " ")
}
