package cmd

import (
	"fmt"
	"strconv"

	"LrcSync/core/lyrics"

	"github.com/spf13/cobra"
)

var locateDelay float64

var locateCmd = &cobra.Command{
	Use:   "locate <file|-> <position>",
	Short: "查询播放位置对应的歌词行",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		loadConfig()

		position, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("无效的播放位置 %q: %w", args[1], err)
		}

		doc, err := readDocument(args[0])
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("delay") {
			doc.SetTimeDelay(locateDelay)
		}

		current, next := doc.Locate(position)
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "position: %s  timeDelay: %gs\n", lyrics.FormatTimestamp(position), doc.TimeDelay())
		fmt.Fprintf(out, "current:  %s\n", lineOrNone(current))
		fmt.Fprintf(out, "next:     %s\n", lineOrNone(next))
		return nil
	},
}

func lineOrNone(l *lyrics.Line) string {
	if l == nil {
		return "(none)"
	}
	return l.String()
}

func init() {
	locateCmd.Flags().Float64Var(&locateDelay, "delay", 0, "覆盖文件中的 timeDelay（秒）")
	rootCmd.AddCommand(locateCmd)
}
