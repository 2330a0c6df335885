package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/store"
	"github.com/spf13/cobra"
)

func replayCmd(flags *globalFlags) *cobra.Command {
	var (
		asJSON  bool
		profile string
	)

	cmd := &cobra.Command{
		Use:   "replay <file.json>",
		Short: "Run a recorded landmark sequence and print each frame result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := flags.load()
			if err != nil {
				return err
			}

			tuning := cfg.Tuning()
			if profile != "" {
				st, err := store.New(cfg.Store.Path)
				if err != nil {
					return fmt.Errorf("open store: %w", err)
				}
				p, err := st.Profiles().GetByName(profile)
				st.Close()
				if err != nil {
					return fmt.Errorf("profile %q: %w", profile, err)
				}
				tuning = p.Tuning
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			rec, err := app.ReadRecording(f)
			if err != nil {
				return err
			}

			return replay(cmd.OutOrStdout(), rec, tuning, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print one JSON FrameResult per line")
	cmd.Flags().StringVar(&profile, "profile", "", "Use the tuning of a stored profile")
	return cmd
}

func replay(w io.Writer, rec *app.Recording, tuning app.Tuning, asJSON bool) error {
	session := app.NewSession(tuning)
	enc := json.NewEncoder(w)

	var err error
	session.Replay(rec, time.Unix(0, 0).UTC(), func(r app.FrameResult) {
		if err != nil {
			return
		}
		if asJSON {
			err = enc.Encode(r)
			return
		}
		_, err = fmt.Fprintln(w, formatResult(r))
	})
	return err
}

func formatResult(r app.FrameResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%4d %-9s %-5s", r.Sequence, r.Mode, r.Gesture)
	if !r.Tracked {
		b.WriteString(" lost")
	} else {
		fmt.Fprintf(&b, " cursor=(%.3f,%.3f)", r.Cursor.X, r.Cursor.Y)
	}
	if r.GlobalVelocity.Moving(0) {
		fmt.Fprintf(&b, " yaw=%.4f pitch=%.4f", r.GlobalVelocity.Yaw, r.GlobalVelocity.Pitch)
	}
	if r.Pan != nil {
		fmt.Fprintf(&b, " pan=(%.3f,%.3f)", r.Pan.X, r.Pan.Y)
	}
	for _, in := range r.Intents {
		b.WriteString(" ")
		b.WriteString(in.String())
	}
	return b.String()
}
