package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"vtimeline/internal/engine"
	"vtimeline/internal/logger"
	"vtimeline/internal/media"
	"vtimeline/internal/project"
	"vtimeline/internal/timeline"
)

func newPlayCommand(newLogger func() logger.Logger) *cobra.Command {
	var startFrame int64
	var tickMs int
	var loadDelayMs int

	cmd := &cobra.Command{
		Use:   "play <project.json>",
		Short: "Play a project headlessly against a simulated surface",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()

			proj, err := project.Load(args[0])
			if err != nil {
				return err
			}

			surface := media.NewSim(media.SimConfig{
				Durations: proj.Sources,
				// Locators absent from the registry still play; an hour of
				// simulated media is enough for any sensible clip.
				DefaultDuration: 3600,
				LoadDelay:       time.Duration(loadDelayMs) * time.Millisecond,
				Logger:          log,
			})

			eng, err := engine.New(engine.Config{
				Surface:      surface,
				FPS:          proj.FPS,
				TickInterval: time.Duration(tickMs) * time.Millisecond,
				Logger:       log,
			})
			if err != nil {
				return err
			}
			defer eng.Destroy()

			if err := eng.Load(proj.Clips); err != nil {
				return err
			}

			done := make(chan struct{})
			// Log one scrubber line per timeline second rather than per tick.
			step := int64(proj.FPS)
			if step < 1 {
				step = 1
			}
			var lastLogged int64 = -1
			eng.OnFrameUpdate(func(frame int64) {
				if lastLogged < 0 || frame/step != lastLogged/step || frame == eng.TotalFrames() {
					lastLogged = frame
					clip := "(gap)"
					if seg, ok := eng.ActiveSegment(); ok {
						clip = seg.ClipID
					}
					log.Infof("frame %d/%d  %s  clip=%s", frame, eng.TotalFrames(),
						timeline.Timecode(frame, proj.FPS), clip)
				}
				if frame >= eng.TotalFrames() {
					select {
					case <-done:
					default:
						close(done)
					}
				}
			})
			eng.OnError(func(err error) {
				log.Errorf("playback error: %v", err)
			})

			if startFrame > 0 {
				if err := eng.Seek(float64(startFrame)); err != nil {
					return err
				}
			}
			if err := eng.Play(); err != nil {
				return err
			}
			log.Infof("playing %q: %d frames at %.3g fps", proj.Name, eng.TotalFrames(), proj.FPS)

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
			select {
			case <-done:
				log.Infof("playback finished")
			case <-quit:
				log.Infof("interrupted at frame %d", eng.CurrentFrame())
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&startFrame, "start", 0, "Frame to seek to before playing")
	cmd.Flags().IntVar(&tickMs, "tick", 16, "Scheduling tick interval in milliseconds")
	cmd.Flags().IntVar(&loadDelayMs, "load-delay", 0, "Simulated source load latency in milliseconds")
	return cmd
}
