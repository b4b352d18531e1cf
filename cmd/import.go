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
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eslsoft/wordgym/internal/usecase"
	"github.com/eslsoft/wordgym/pkg/rowparser"
)

const (
	importFileKey    = "dataset.import.file"
	importGzipKey    = "dataset.import.gzip"
	importSheetKey   = "dataset.import.sheet"
	importForceKey   = "dataset.import.force"
	importReplaceKey = "dataset.import.replace"
	importModeKey    = "dataset.import.mode"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "导入词库 (CSV/TSV/JSON 文件或发布的试算表)",
	Long: `将词汇行合并进现有词库。以 (单词, 学制) 为键去重合并，新词分配递增 ID。
使用 --file 读取本地文件 (- 表示标准输入，.gz 自动解压)，或使用 --sheet 从 sheet.url 拉取。`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		ctx := cmd.Context()

		inputPath := viper.GetString(importFileKey)
		fromSheet := viper.GetBool(importSheetKey)
		if inputPath == "" && !fromSheet {
			return fmt.Errorf("请通过 --file 指定词库文件，或使用 --sheet 从试算表导入")
		}

		opts := usecase.ImportOptions{Replace: viper.GetBool(importReplaceKey)}
		if mode := strings.TrimSpace(viper.GetString(importModeKey)); mode != "" {
			opts.Mode = rowparser.ModeFromFormat(mode)
		}
		if cmd.Flags().Changed("override-examples") {
			override, _ := cmd.Flags().GetBool("override-examples")
			opts.OverrideExamples = &override
		}

		c, cleanup, err := initContainer(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		if err := c.Datasets.Load(ctx); err != nil {
			return fmt.Errorf("加载词库失败: %w", err)
		}

		var res *usecase.ImportResult
		if fromSheet {
			res, err = c.Datasets.Refresh(ctx, viper.GetBool(importForceKey), opts)
		} else {
			var text string
			text, err = readAllInput(cmd.InOrStdin(), inputPath, viper.GetBool(importGzipKey))
			if err != nil {
				return err
			}
			res, err = c.Datasets.ImportText(ctx, text, opts)
		}
		if err != nil {
			return fmt.Errorf("导入词库失败: %w", err)
		}

		for _, warning := range res.Warnings {
			cmd.PrintErrf("警告: %s\n", warning)
		}
		stats := res.Stats
		cmd.Printf("导入完成: 新增 %d, 合并 %d, 替换 %d, 跳过 %d, 词库共 %d 词\n",
			stats.Added, stats.Merged, stats.Replaced, stats.Skipped(), stats.TotalAfter)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringP("file", "f", "", "词库文件路径，使用 - 表示标准输入")
	importCmd.Flags().Bool("gzip", false, "输入为 gzip 压缩格式")
	importCmd.Flags().Bool("sheet", false, "从 sheet.url 指向的试算表导入")
	importCmd.Flags().Bool("force", false, "忽略试算表缓存，强制重新下载")
	importCmd.Flags().Bool("replace", false, "导入前清空现有词库")
	importCmd.Flags().String("mode", "", "强制文本格式 (csv 或 tsv)，默认自动识别")
	importCmd.Flags().Bool("override-examples", false, "允许导入的例句覆盖已有例句")

	bindImportConfig()
}

func bindImportConfig() {
	bindFlagToViper(importFileKey, importCmd.Flags().Lookup("file"))
	bindFlagToViper(importGzipKey, importCmd.Flags().Lookup("gzip"))
	bindFlagToViper(importSheetKey, importCmd.Flags().Lookup("sheet"))
	bindFlagToViper(importForceKey, importCmd.Flags().Lookup("force"))
	bindFlagToViper(importReplaceKey, importCmd.Flags().Lookup("replace"))
	bindFlagToViper(importModeKey, importCmd.Flags().Lookup("mode"))
}

func readAllInput(in io.Reader, path string, gzipEnabled bool) (text string, err error) {
	reader, closeInput, err := openInput(in, path, gzipEnabled)
	if err != nil {
		return "", err
	}
	defer func() {
		if cerr := closeInput(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("读取输入失败: %w", err)
	}
	return string(data), nil
}
