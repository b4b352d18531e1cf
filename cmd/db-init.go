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
	"context"
	"fmt"
	"hash/crc32"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eslsoft/wordgym/internal/usecase"
)

const (
	dbInitSeedKey = "dataset.seed_path"
)

// dbInitCmd brings the schema up to date, then seeds an empty dataset from the bundled word list.
var dbInitCmd = &cobra.Command{
	Use:   "db-init",
	Short: "初始化数据库并导入初始词库",
	Long: `执行数据库迁移并从 dataset.seed_path 导入初始词库 (本地 CSV/TSV/JSON 文件或 http(s) 地址)。
已有词库时默认跳过导入，可使用 --force 清空后重新导入。注意: go-sqlite3 需要 CGO_ENABLED=1 构建。如需仅迁移不导入，可使用 --schema-only。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		schemaOnly, _ := cmd.Flags().GetBool("schema-only")
		force, _ := cmd.Flags().GetBool("force")
		cacheDir, _ := cmd.Flags().GetString("cache-dir")
		noCache, _ := cmd.Flags().GetBool("no-cache")

		c, cleanup, err := initContainer(ctx)
		if err != nil {
			return err
		}
		defer cleanup()
		logger := c.Logger
		logger.Info("数据库迁移完成")
		if schemaOnly {
			return nil
		}

		seed := strings.TrimSpace(viper.GetString(dbInitSeedKey))
		if seed == "" {
			logger.Info("未配置 dataset.seed_path，跳过词库导入")
			return nil
		}

		if err := c.Datasets.Load(ctx); err != nil {
			return fmt.Errorf("加载词库失败: %w", err)
		}
		if existing := len(c.Datasets.Snapshot(ctx)); existing > 0 && !force {
			logger.Infof("词库已有 %d 词，跳过导入 (使用 --force 重新导入)", existing)
			return nil
		}

		start := time.Now()
		text, err := loadSeed(ctx, seed, cacheDir, noCache)
		if err != nil {
			return err
		}
		res, err := c.Datasets.ImportText(ctx, text, usecase.ImportOptions{Replace: force})
		if err != nil {
			return fmt.Errorf("导入初始词库失败: %w", err)
		}
		logger.Infof("导入完成: %d 词, 跳过 %d 行, 耗时 %s", res.Stats.TotalAfter, res.Stats.Skipped(), time.Since(start))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbInitCmd)
	dbInitCmd.Flags().String("seed", "", "初始词库路径或 http(s) 地址 (默认: dataset.seed_path)")
	dbInitCmd.Flags().Bool("schema-only", false, "仅执行数据库迁移，不导入词库")
	dbInitCmd.Flags().Bool("force", false, "清空现有词库后重新导入")
	dbInitCmd.Flags().String("cache-dir", "", "远程词库缓存目录 (默认: 用户缓存目录/wordgym)")
	dbInitCmd.Flags().Bool("no-cache", false, "忽略本地缓存, 强制重新下载")

	bindFlagToViper(dbInitSeedKey, dbInitCmd.Flags().Lookup("seed"))
}

// loadSeed reads a local seed file, or downloads a remote one through the cache directory.
func loadSeed(ctx context.Context, seed, cacheDirFlag string, noCache bool) (string, error) {
	if !isRemote(seed) {
		return readAllInput(os.Stdin, seed, false)
	}

	cacheDir, cachePath, fromCache, err := prepareCachePath(seed, cacheDirFlag, noCache)
	if err != nil {
		return "", err
	}
	if !fromCache {
		if err := os.MkdirAll(cacheDir, 0o755); err != nil {
			return "", fmt.Errorf("创建缓存目录失败: %w", err)
		}
		if err := downloadFile(ctx, seed, cachePath); err != nil {
			return "", err
		}
	}
	return readAllInput(os.Stdin, cachePath, false)
}

func isRemote(seed string) bool {
	u, err := url.Parse(seed)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func downloadFile(ctx context.Context, rawURL, dst string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("下载失败: %s", resp.Status)
	}
	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		_ = os.Remove(dst)
		return err
	}
	return f.Close()
}

func prepareCachePath(rawURL, cacheDirFlag string, noCache bool) (string, string, bool, error) {
	var base string
	if cacheDirFlag != "" {
		base = cacheDirFlag
	} else {
		userCache, err := os.UserCacheDir()
		if err != nil {
			return "", "", false, fmt.Errorf("获取用户缓存目录失败: %w", err)
		}
		base = filepath.Join(userCache, "wordgym")
	}
	// stable filename from URL hash, keeping a .gz suffix so the reader decompresses it
	ext := ".txt"
	if u, err := url.Parse(rawURL); err == nil {
		if e := strings.ToLower(path.Ext(u.Path)); e == ".gz" || e == ".csv" || e == ".tsv" || e == ".json" {
			ext = e
		}
	}
	name := fmt.Sprintf("seed-%08x%s", crc32.ChecksumIEEE([]byte(rawURL)), ext)
	cachePath := filepath.Join(base, name)
	if !noCache {
		if st, err := os.Stat(cachePath); err == nil && st.Size() > 0 {
			return base, cachePath, true, nil
		}
	}
	return base, cachePath, false, nil
}
