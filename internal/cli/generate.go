package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/suPer8Hu/linkedcraft/internal/generate"
	"github.com/suPer8Hu/linkedcraft/internal/session"
)

var ErrSignedOut = errors.New("not signed in; run `linkedcraft session signin`")

func NewGenerateCommand(opts *RootOptions) *cobra.Command {
	var form generate.Form
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate one post and print it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, opts, form, timeout)
		},
	}

	f := cmd.Flags()
	f.StringVar(&form.Topic, "topic", "", "post topic (required)")
	f.StringSliceVar(&form.WritingStyles, "style", nil, "writing style, repeatable")
	f.StringSliceVar(&form.Industries, "industry", nil, "industry, repeatable")
	f.StringArrayVar(&form.JobDescriptions, "job", nil, "job description, repeatable")
	f.StringSliceVar(&form.ContentCategories, "category", nil, "content category, repeatable")
	f.StringSliceVar(&form.PostingGoals, "goal", nil, "posting goal, repeatable")
	f.StringVar(&form.CustomCTA, "cta", "", "custom call to action")
	f.StringVar(&form.FineTuningNotes, "notes", "", "fine tuning notes")
	f.DurationVar(&timeout, "wait", 0, "give up after this long (0 waits indefinitely)")
	_ = cmd.MarkFlagRequired("topic")
	return cmd
}

func runGenerate(cmd *cobra.Command, opts *RootOptions, form generate.Form, timeout time.Duration) error {
	req, err := form.Parse()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	b, closeFn, err := opts.Deps.Backend(ctx, opts.Config)
	if err != nil {
		return err
	}
	defer closeFn()

	st, err := readState(ctx, b)
	if err != nil {
		return err
	}
	if session.Decide(st) != session.DecisionRender {
		return ErrSignedOut
	}

	sess, err := b.FetchCurrentSession(ctx)
	if err == nil && sess != nil && sess.AccessToken != "" {
		ctx = generate.WithAccessToken(ctx, sess.AccessToken)
	}

	p := generate.NewPipeline(opts.Deps.Generator(opts.Config))
	if _, err := p.Submit(ctx, req); err != nil {
		return err
	}

	waitCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	out, err := p.Wait(waitCtx)
	if err != nil {
		p.Clear()
		return fmt.Errorf("generation abandoned: %w", err)
	}

	w := cmd.OutOrStdout()
	if opts.Format == "json" {
		if err := json.NewEncoder(w).Encode(out); err != nil {
			return err
		}
	} else if out.State == generate.StateSucceeded {
		fmt.Fprintln(w, out.Content)
	}
	if out.State == generate.StateFailed {
		return errors.New(out.Reason)
	}
	return nil
}
