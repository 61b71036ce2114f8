package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"vtimeline/internal/project"
	"vtimeline/internal/timeline"
)

func newInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <project.json>",
		Short: "Show the segment list derived from a project file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := project.Load(args[0])
			if err != nil {
				return err
			}
			segments, err := timeline.Build(proj.Clips)
			if err != nil {
				return err
			}

			tw := table.NewWriter()
			tw.SetOutputMirror(cmd.OutOrStdout())
			tw.SetStyle(table.StyleRounded)
			tw.AppendHeader(table.Row{"Clip", "Timeline", "Frames", "Source", "Trim"})
			for _, row := range segmentRows(segments, proj.FPS) {
				tw.AppendRow(table.Row{row[0], row[1], row[2], row[3], row[4]})
			}
			tw.AppendFooter(table.Row{"Total", timeline.Timecode(timeline.TotalFrames(segments), proj.FPS),
				fmt.Sprintf("%d", timeline.TotalFrames(segments)), "", ""})
			tw.Render()
			return nil
		},
	}
}

// segmentRows flattens the segment list into display rows, inserting a row
// for every gap between consecutive segments.
func segmentRows(segments []timeline.Segment, fps float64) [][]string {
	rows := make([][]string, 0, len(segments))
	var cursor int64
	for _, seg := range segments {
		if seg.Start > cursor {
			rows = append(rows, []string{
				"(gap)",
				fmt.Sprintf("%d-%d", cursor, seg.Start),
				fmt.Sprintf("%d", seg.Start-cursor),
				"",
				"",
			})
		}
		rows = append(rows, []string{
			seg.ClipID,
			fmt.Sprintf("%d-%d", seg.Start, seg.End),
			fmt.Sprintf("%d", seg.Frames()),
			seg.Source,
			fmt.Sprintf("%s - %s", timeline.Timecode(seg.SourceIn, fps), timeline.Timecode(seg.SourceOut, fps)),
		})
		cursor = seg.End
	}
	return rows
}
