package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"LrcSync/core/lyrics"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	parseTable bool
	parseDelay float64
)

var parseCmd = &cobra.Command{
	Use:   "parse <file|->",
	Short: "解析 LRC 文件并输出调试信息",
	Long:  `解析 LRC 文件（- 表示标准输入），默认输出 Describe 文本，--table 时以表格列出每一行。`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		loadConfig()

		doc, err := readDocument(args[0])
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("delay") {
			doc.SetTimeDelay(parseDelay)
		}

		if parseTable {
			renderLines(cmd.OutOrStdout(), doc)
			return nil
		}
		_, err = io.WriteString(cmd.OutOrStdout(), doc.Describe())
		return err
	},
}

// readDocument 读取并解析文件，path 为 - 时读标准输入
func readDocument(path string) (*lyrics.Document, error) {
	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("读取歌词失败: %w", err)
	}

	doc, err := lyrics.Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

func renderLines(w io.Writer, doc *lyrics.Document) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Time", "Shifted", "Text"})

	delay := doc.TimeDelay()
	for i, line := range doc.Lines() {
		t.AppendRow(table.Row{
			strconv.Itoa(i),
			lyrics.FormatTimestamp(line.Timestamp),
			lyrics.FormatTimestamp(line.Timestamp - delay),
			line.Text,
		})
	}
	t.AppendFooter(table.Row{"", "offset", strconv.Itoa(doc.Offset()) + "ms", strconv.Itoa(doc.Len()) + " lines"})
	t.Render()
}

func init() {
	parseCmd.Flags().BoolVar(&parseTable, "table", false, "以表格形式输出")
	parseCmd.Flags().Float64Var(&parseDelay, "delay", 0, "覆盖文件中的 timeDelay（秒）")
	rootCmd.AddCommand(parseCmd)
}
