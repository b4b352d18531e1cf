/*
Copyright © 2025 Ambor <saltbo@foxmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eslsoft/wordgym/internal/usecase/backup"
)

const (
	exportOutputKey = "backup.export.output"
	exportGzipKey   = "backup.export.gzip"
	exportTablesKey = "backup.export.tables"
	exportBatchKey  = "backup.export.batch_size"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "导出词库、收藏与测验记录为 JSONL 备份",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		ctx := cmd.Context()

		outputPath := viper.GetString(exportOutputKey)
		gzipEnabled := viper.GetBool(exportGzipKey)
		if outputPath == "" {
			outputPath = defaultExportFilename(gzipEnabled, time.Now())
		}

		c, cleanup, err := initContainer(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		service, err := backupService(c, viper.GetInt(exportBatchKey))
		if err != nil {
			return fmt.Errorf("创建备份服务失败: %w", err)
		}

		writer, closeOutput, err := openOutput(cmd.OutOrStdout(), outputPath, gzipEnabled)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := closeOutput(); cerr != nil && err == nil {
				err = cerr
			}
		}()

		opts := []backup.ExportOption{backup.WithProgressReporter(newCLIProgress(cmd.ErrOrStderr()))}
		if tables := tablesFromConfig(exportTablesKey); len(tables) > 0 {
			opts = append(opts, backup.WithTables(tables))
		}
		if err := service.Export(ctx, writer, opts...); err != nil {
			return fmt.Errorf("导出备份失败: %w", err)
		}

		if outputPath == "-" {
			cmd.PrintErrln("导出完成: 输出到标准输出")
		} else {
			cmd.Printf("导出完成: %s\n", outputPath)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	flags := exportCmd.Flags()
	flags.StringP("output", "o", "", "备份输出文件路径，使用 - 表示标准输出")
	flags.Bool("gzip", false, "使用 gzip 压缩输出 (.gz 后缀自动启用)")
	flags.StringSlice("tables", nil, "仅导出指定表 (words, favorites, quiz_records)，逗号分隔或重复指定")
	flags.Int("batch-size", 0, "导出批处理大小 (默认 512)")

	bindFlagToViper(exportOutputKey, flags.Lookup("output"))
	bindFlagToViper(exportGzipKey, flags.Lookup("gzip"))
	bindFlagToViper(exportTablesKey, flags.Lookup("tables"))
	bindFlagToViper(exportBatchKey, flags.Lookup("batch-size"))
}

func defaultExportFilename(gzipEnabled bool, now time.Time) string {
	name := "wordgym-backup-" + now.UTC().Format("20060102-150405") + ".jsonl"
	if gzipEnabled {
		name += ".gz"
	}
	return name
}

// tableProgress is the running state of one exported table.
type tableProgress struct {
	total, done, printed, step int
}

// cliProgress prints backup progress lines, throttled to roughly twenty per table.
type cliProgress struct {
	out    io.Writer
	tables map[string]*tableProgress
}

func newCLIProgress(out io.Writer) *cliProgress {
	return &cliProgress{out: out, tables: make(map[string]*tableProgress)}
}

func (p *cliProgress) StartTable(table string, total int) {
	total = max(total, 0)
	p.tables[table] = &tableProgress{total: total, step: progressStep(total)}
	fmt.Fprintf(p.out, "开始导出 %s (共 %d 行)\n", table, total)
}

func (p *cliProgress) Increment(table string, delta int) {
	tp, ok := p.tables[table]
	if !ok || delta <= 0 {
		return
	}
	tp.done += delta
	if tp.done == tp.total || tp.printed == 0 || tp.done-tp.printed >= tp.step {
		p.print(table, tp)
	}
}

func (p *cliProgress) FinishTable(table string) {
	tp, ok := p.tables[table]
	if !ok {
		return
	}
	delete(p.tables, table)
	if tp.done != tp.printed {
		p.print(table, tp)
	}
	fmt.Fprintf(p.out, "完成导出 %s: %s 行\n", table, tp.ratio())
}

func (p *cliProgress) print(table string, tp *tableProgress) {
	tp.printed = tp.done
	fmt.Fprintf(p.out, "导出进度 %s: %s\n", table, tp.ratio())
}

func (tp *tableProgress) ratio() string {
	if tp.total > 0 {
		return fmt.Sprintf("%d/%d", tp.done, tp.total)
	}
	return fmt.Sprint(tp.done)
}

// progressStep prints about every 5%, bounded to [1, 1000] rows.
func progressStep(total int) int {
	if total <= 0 {
		return 1000
	}
	return min(max(total/20, 1), 1000)
}
