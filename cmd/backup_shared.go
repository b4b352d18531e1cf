package cmd

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/eslsoft/wordgym/internal/adapter/repository"
	"github.com/eslsoft/wordgym/internal/app"
	"github.com/eslsoft/wordgym/internal/usecase/backup"
)

func tablesFromConfig(key string) []string {
	return normalizeTables(viper.GetStringSlice(key))
}

func normalizeTables(values []string) []string {
	var result []string
	for _, value := range values {
		name := strings.TrimSpace(value)
		if name == "" {
			continue
		}
		result = append(result, strings.ToLower(name))
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func bindFlagToViper(key string, flag *pflag.Flag) {
	if flag == nil {
		return
	}
	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// backupService returns the wired service, or a fresh one when a batch size is requested.
func backupService(c *app.Container, batchSize int) (*backup.Service, error) {
	if batchSize <= 0 {
		return c.Backup, nil
	}
	return backup.NewService(
		repository.NewWordRepository(c.Driver),
		repository.NewFavoriteRepository(c.Driver),
		repository.NewQuizRecordRepository(c.Driver),
		backup.WithBatchSize(batchSize),
	)
}

// openOutput creates path for writing, "-" meaning out. Paths ending in .gz are compressed even
// without gzipEnabled. The returned closer flushes gzip before closing the file.
func openOutput(out io.Writer, path string, gzipEnabled bool) (io.Writer, func() error, error) {
	var (
		writer  = out
		closers []func() error
	)
	if path != "-" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("创建输出目录失败: %w", err)
		}
		file, err := os.Create(filepath.Clean(path))
		if err != nil {
			return nil, nil, fmt.Errorf("创建备份文件失败: %w", err)
		}
		writer = file
		closers = append(closers, file.Close)
		if strings.HasSuffix(strings.ToLower(path), ".gz") {
			gzipEnabled = true
		}
	}
	if gzipEnabled {
		gz := gzip.NewWriter(writer)
		writer = gz
		closers = append([]func() error{gz.Close}, closers...)
	}
	return writer, closeAll(closers), nil
}

// openInput opens path for reading, "-" meaning in. Paths ending in .gz are decompressed even
// without gzipEnabled.
func openInput(in io.Reader, path string, gzipEnabled bool) (io.Reader, func() error, error) {
	var (
		reader  = in
		closers []func() error
	)
	if path != "-" {
		file, err := os.Open(filepath.Clean(path))
		if err != nil {
			return nil, nil, fmt.Errorf("打开文件失败: %w", err)
		}
		reader = file
		closers = append(closers, file.Close)
		if strings.HasSuffix(strings.ToLower(path), ".gz") {
			gzipEnabled = true
		}
	}
	if gzipEnabled {
		gzr, err := gzip.NewReader(reader)
		if err != nil {
			_ = closeAll(closers)()
			return nil, nil, fmt.Errorf("创建 gzip 读取器失败: %w", err)
		}
		reader = gzr
		closers = append([]func() error{gzr.Close}, closers...)
	}
	return reader, closeAll(closers), nil
}

// closeAll runs every closer in order and keeps the first error.
func closeAll(closers []func() error) func() error {
	return func() error {
		var firstErr error
		for _, closer := range closers {
			if err := closer(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}
}
