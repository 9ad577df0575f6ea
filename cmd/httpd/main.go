/*
 * Copyright 2024 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */
package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rulego/httpd"
	"github.com/rulego/httpd/config"
)

const (
	version = "1.0.0"
)

var (
	// 配置文件
	configFile string
	// 路由配置文件，覆盖配置文件中的routes
	routesFile string
	// 工作者数量，覆盖配置文件中的workers
	workers int
)

var rootCmd = &cobra.Command{
	Use:     "httpd",
	Short:   "httpd - HTTP/1.1 server with nginx-style routing",
	Version: version,
	Long: `httpd serves HTTP/1.1 requests with handlers selected by an ordered routing
table. Routes are read from a json, yaml or toml configuration tree.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.SetVersionTemplate("httpd v{{.Version}}\n")
	rootCmd.Flags().StringVarP(&configFile, "config", "c", "", "ini配置文件")
	rootCmd.Flags().StringVarP(&routesFile, "routes", "r", "", "路由配置文件(json/yaml/toml)")
	rootCmd.Flags().IntVarP(&workers, "workers", "w", 0, "工作者数量")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	settings, err := LoadSettings(configFile)
	if err != nil {
		return fmt.Errorf("load config %s: %w", configFile, err)
	}
	if cmd.Flags().Changed("routes") {
		settings.Routes = routesFile
	}
	if cmd.Flags().Changed("workers") {
		settings.Workers = workers
	}
	if settings.Routes == "" {
		return ErrRoutesRequired
	}

	logger := settings.newLogger()
	tree, err := config.Load(settings.Routes)
	if err != nil {
		return fmt.Errorf("load routes %s: %w", settings.Routes, err)
	}
	logger.Printf("use config file=%s routes=%s", configFile, settings.Routes)

	srv, err := httpd.NewServer(tree, settings.Options(logger)...)
	if err != nil {
		return err
	}
	if err := srv.Start(); err != nil {
		return err
	}

	sigs := make(chan os.Signal, 1)
	// 监听系统信号，包括中断信号和终止信号
	signal.Notify(sigs, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	srv.Stop()
	log.Println("stopped server")
	return nil
}
