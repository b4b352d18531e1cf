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
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eslsoft/wordgym/internal/usecase"
)

const (
	serveRefreshKey = "serve.refresh"
	servePortKey    = "server.http_port"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动 Connect + HTTP API 服务",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		c, cleanup, err := initContainer(ctx)
		if err != nil {
			return err
		}
		defer cleanup()
		logger := c.Logger

		if err := c.Datasets.Load(ctx); err != nil {
			return fmt.Errorf("加载词库失败: %w", err)
		}

		// An empty dataset pulls the sheet once at startup; --refresh always does.
		if c.Config.Sheet.URL != "" && (viper.GetBool(serveRefreshKey) || len(c.Datasets.Snapshot(ctx)) == 0) {
			if res, err := c.Datasets.Refresh(ctx, true, usecase.ImportOptions{}); err != nil {
				logger.WithError(err).Warn("initial sheet refresh failed, serving the stored dataset")
			} else {
				logger.Infof("sheet refreshed: %d words", res.Stats.TotalAfter)
			}
		}

		errCh := make(chan error, 1)
		go func() { errCh <- c.Server.StartHTTP() }()

		// Graceful shutdown
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-sigCh:
			logger.Infof("received signal: %s, shutting down", sig)
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return c.Server.Shutdown(shutdownCtx)
		case err := <-errCh:
			return err
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Bool("refresh", false, "启动时强制从试算表刷新词库")
	serveCmd.Flags().Int("port", 0, "HTTP 监听端口 (默认 8080)")

	bindFlagToViper(serveRefreshKey, serveCmd.Flags().Lookup("refresh"))
	bindFlagToViper(servePortKey, serveCmd.Flags().Lookup("port"))
}
