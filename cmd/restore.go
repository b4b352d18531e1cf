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

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eslsoft/wordgym/internal/usecase/backup"
)

const (
	restoreInputKey  = "backup.restore.input"
	restoreGzipKey   = "backup.restore.gzip"
	restoreTablesKey = "backup.restore.tables"
)

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "从 JSONL 备份恢复词库、收藏与测验记录",
	Long:  "按备份中的表整体替换现有数据，保留单词 ID 与主题排序。备份中未包含的表保持不变。",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		ctx := cmd.Context()

		inputPath := viper.GetString(restoreInputKey)
		gzipEnabled := viper.GetBool(restoreGzipKey)
		tableList := tablesFromConfig(restoreTablesKey)

		if inputPath == "" {
			return fmt.Errorf("请通过 --input 指定备份文件或使用 - 表示标准输入")
		}

		c, cleanup, err := initContainer(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		reader, closeInput, err := openInput(cmd.InOrStdin(), inputPath, gzipEnabled)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := closeInput(); cerr != nil && err == nil {
				err = cerr
			}
		}()

		var importOpts []backup.ImportOption
		if len(tableList) > 0 {
			importOpts = append(importOpts, backup.WithImportTables(tableList))
		}

		if err := c.Backup.Import(ctx, reader, importOpts...); err != nil {
			return fmt.Errorf("恢复备份失败: %w", err)
		}

		if inputPath == "-" {
			cmd.Println("恢复完成: 数据来源于标准输入")
		} else {
			cmd.Printf("恢复完成: %s\n", inputPath)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(restoreCmd)

	restoreCmd.Flags().StringP("input", "i", "", "备份文件路径，使用 - 表示标准输入")
	restoreCmd.Flags().Bool("gzip", false, "输入为 gzip 压缩格式")
	restoreCmd.Flags().StringSlice("tables", nil, "仅恢复指定表，逗号分隔或重复指定")

	bindRestoreConfig()
}

func bindRestoreConfig() {
	bindFlagToViper(restoreInputKey, restoreCmd.Flags().Lookup("input"))
	bindFlagToViper(restoreGzipKey, restoreCmd.Flags().Lookup("gzip"))
	bindFlagToViper(restoreTablesKey, restoreCmd.Flags().Lookup("tables"))
}
